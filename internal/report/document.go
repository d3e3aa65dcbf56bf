// Package report exports a session's prediction history as a fixed-layout
// table: one header row followed by one row per event, oldest first.
//
// Rendering is pluggable through Renderer. Output depends only on the
// snapshot and the generation time handed to the exporter, so the same
// inputs always produce the same bytes.
package report

import (
	"strconv"
	"strings"
	"time"

	"battery-health/internal/session"
)

// Title is printed at the top of every rendered report.
const Title = "Battery Health Prediction Report"

// Columns is the fixed column order of the report table.
var Columns = [5]string{"Time", "Health %", "Est. Life", "Rec. Load", "Suitability"}

// Row is one rendered event.
type Row [5]string

// Document is the renderer-independent report content.
type Document struct {
	Title       string
	SessionID   string
	GeneratedAt time.Time
	Header      Row
	Rows        []Row
}

// BuildDocument lays out the snapshot as report rows.
func BuildDocument(sessionID string, snapshot []session.Event, generatedAt time.Time) Document {
	doc := Document{
		Title:       Title,
		SessionID:   sessionID,
		GeneratedAt: generatedAt,
		Header:      Row(Columns),
		Rows:        make([]Row, 0, len(snapshot)),
	}
	for _, e := range snapshot {
		doc.Rows = append(doc.Rows, Row{
			e.Time.Format("15:04:05"),
			FormatScore(e.Score) + "%",
			e.RemainingLife,
			e.RecommendedLoad,
			e.Suitability,
		})
	}
	return doc
}

// FormatScore prints a score with the shortest exact representation and
// at least one decimal, e.g. 85.3 and 80.0.
func FormatScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', -1, 64)
	if strings.ContainsAny(s, ".NI") {
		return s
	}
	return s + ".0"
}

// Records returns the header followed by the data rows.
func (d Document) Records() [][]string {
	out := make([][]string, 0, len(d.Rows)+1)
	out = append(out, d.Header[:])
	for i := range d.Rows {
		out = append(out, d.Rows[i][:])
	}
	return out
}
