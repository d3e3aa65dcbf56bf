package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-pdf/fpdf"
)

// Renderer turns a document into its serialized form.
type Renderer interface {
	Render(doc Document) ([]byte, error)
}

// CSVRenderer writes the table as comma separated values.
type CSVRenderer struct{}

func (CSVRenderer) Render(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(doc.Records()); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// JSONRenderer writes the document with its rows keyed by column name.
type JSONRenderer struct{}

func (JSONRenderer) Render(doc Document) ([]byte, error) {
	rows := make([]map[string]string, 0, len(doc.Rows))
	for _, r := range doc.Rows {
		m := make(map[string]string, len(Columns))
		for i, col := range Columns {
			m[col] = r[i]
		}
		rows = append(rows, m)
	}

	return json.MarshalIndent(map[string]interface{}{
		"title":        doc.Title,
		"session_id":   doc.SessionID,
		"generated_at": doc.GeneratedAt,
		"columns":      Columns,
		"rows":         rows,
	}, "", "  ")
}

// textWidths are the character widths of the text table columns.
var textWidths = [5]int{10, 10, 17, 19, 13}

// TextRenderer draws a bordered plain-text table.
type TextRenderer struct{}

func (TextRenderer) Render(doc Document) ([]byte, error) {
	rows := make([][]string, len(doc.Rows))
	for i := range doc.Rows {
		rows[i] = doc.Rows[i][:]
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(_, col int) lipgloss.Style {
			return lipgloss.NewStyle().Width(textWidths[col]).Padding(0, 1)
		}).
		Headers(doc.Header[:]...).
		Rows(rows...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", doc.Title)
	fmt.Fprintf(&buf, "Report Generated: %s\n\n", doc.GeneratedAt.Format("2006-01-02 15:04"))
	buf.WriteString(t.String())
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// pdfWidths are the A4 column widths in millimetres.
var pdfWidths = [5]float64{20, 20, 40, 40, 70}

// core PDF fonts only cover cp1252
var pdfReplacer = strings.NewReplacer("≤", "<=", "≥", ">=")

// PDFRenderer lays the table out on A4 pages.
type PDFRenderer struct{}

func (PDFRenderer) Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetCatalogSort(true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(pdfReplacer.Replace(s)) }

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(190, 15, text(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 10, "Report Generated: "+doc.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	for i, h := range doc.Header {
		pdf.CellFormat(pdfWidths[i], 10, text(h), "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range doc.Rows {
		for i, c := range r {
			pdf.CellFormat(pdfWidths[i], 10, text(c), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
