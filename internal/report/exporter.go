package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"battery-health/internal/session"

	"github.com/rs/zerolog/log"
)

// ErrExportUnavailable is returned when no renderer is registered for the
// requested format.
var ErrExportUnavailable = errors.New("report export unavailable")

// Format describes how an exported report is served.
type Format struct {
	Name        string
	ContentType string
	Extension   string
}

// Built-in formats.
var (
	FormatPDF  = Format{"pdf", "application/pdf", "pdf"}
	FormatCSV  = Format{"csv", "text/csv", "csv"}
	FormatText = Format{"text", "text/plain; charset=utf-8", "txt"}
	FormatJSON = Format{"json", "application/json", "json"}
)

// Report is a rendered export.
type Report struct {
	Format   Format
	Filename string
	Rows     int
	Data     []byte
}

// Archive retains exported reports.
type Archive interface {
	SaveReport(sessionID, format string, at time.Time, data []byte) error
}

// MetricsInterface defines metrics methods needed by the exporter
type MetricsInterface interface {
	ExportsInc(format string)
	ExportFailuresInc()
}

type registration struct {
	format   Format
	renderer Renderer
}

// Exporter renders session snapshots in the registered formats.
type Exporter struct {
	renderers map[string]registration
	now       func() time.Time
	archive   Archive
	metrics   MetricsInterface
}

// NewExporter creates an exporter with no formats registered.
func NewExporter(metrics MetricsInterface) *Exporter {
	return &Exporter{
		renderers: make(map[string]registration),
		now:       time.Now,
		metrics:   metrics,
	}
}

// NewDefaultExporter registers every built-in format.
func NewDefaultExporter(metrics MetricsInterface) *Exporter {
	x := NewExporter(metrics)
	x.Register(FormatPDF, PDFRenderer{})
	x.Register(FormatCSV, CSVRenderer{})
	x.Register(FormatText, TextRenderer{})
	x.Register(FormatJSON, JSONRenderer{})
	return x
}

// Register binds a renderer to a format. A nil renderer disables the format.
func (x *Exporter) Register(f Format, r Renderer) {
	if r == nil {
		delete(x.renderers, f.Name)
		return
	}
	x.renderers[f.Name] = registration{format: f, renderer: r}
}

// SetClock replaces the generation timestamp source.
func (x *Exporter) SetClock(now func() time.Time) { x.now = now }

// SetArchive keeps a copy of every successful export.
func (x *Exporter) SetArchive(a Archive) { x.archive = a }

// Formats lists the registered format names, sorted.
func (x *Exporter) Formats() []string {
	if x == nil {
		return nil
	}
	names := make([]string, 0, len(x.renderers))
	for name := range x.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export renders the snapshot in the named format.
func (x *Exporter) Export(format, sessionID string, snapshot []session.Event) (*Report, error) {
	if x == nil {
		return nil, ErrExportUnavailable
	}

	reg, ok := x.renderers[format]
	if !ok {
		x.fail()
		return nil, fmt.Errorf("%w: format %q", ErrExportUnavailable, format)
	}

	at := x.now()
	doc := BuildDocument(sessionID, snapshot, at)
	data, err := reg.renderer.Render(doc)
	if err != nil {
		x.fail()
		log.Error().Err(err).Str("format", format).Str("session_id", sessionID).Msg("report rendering failed")
		return nil, fmt.Errorf("render %s report: %w", format, err)
	}

	if x.metrics != nil {
		x.metrics.ExportsInc(format)
	}
	if x.archive != nil {
		if err := x.archive.SaveReport(sessionID, format, at, data); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to archive report")
		}
	}

	log.Info().
		Str("format", format).
		Str("session_id", sessionID).
		Int("rows", len(doc.Rows)).
		Int("bytes", len(data)).
		Msg("report exported")

	return &Report{
		Format:   reg.format,
		Filename: "Battery_Prediction_Report." + reg.format.Extension,
		Rows:     len(doc.Rows),
		Data:     data,
	}, nil
}

func (x *Exporter) fail() {
	if x.metrics != nil {
		x.metrics.ExportFailuresInc()
	}
}
