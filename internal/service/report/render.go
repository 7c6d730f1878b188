package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/jwalitptl/vet-admin-api/internal/model"
)

// RenderCSV writes the title, subtitle and each section as a heading row, a
// header row and the data rows, separated by blank lines.
func RenderCSV(t *model.ReportTable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{{t.Title}, {t.Subtitle}}
	for _, sec := range t.Sections {
		records = append(records, []string{}, []string{sec.Heading}, sec.Columns)
		records = append(records, sec.Rows...)
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

const (
	pdfLineHeight = 6.0
	pdfFont       = "Helvetica"
)

// RenderPDF lays each section out as a bordered table on A4 portrait pages.
func RenderPDF(t *model.ReportTable) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(t.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, tr(t.Title), "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 10)
	pdf.CellFormat(0, pdfLineHeight, tr(t.Subtitle), "", 1, "L", false, 0, "")

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	for _, sec := range t.Sections {
		pdf.Ln(4)
		pdf.SetFont(pdfFont, "B", 12)
		pdf.CellFormat(0, 8, tr(sec.Heading), "", 1, "L", false, 0, "")
		if len(sec.Columns) == 0 {
			continue
		}
		colWidth := usable / float64(len(sec.Columns))

		pdf.SetFont(pdfFont, "B", 9)
		pdf.SetFillColor(229, 231, 235)
		for _, col := range sec.Columns {
			pdf.CellFormat(colWidth, pdfLineHeight, tr(col), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont(pdfFont, "", 9)
		if len(sec.Rows) == 0 {
			pdf.CellFormat(usable, pdfLineHeight, "No data", "1", 1, "C", false, 0, "")
			continue
		}
		for _, row := range sec.Rows {
			for i := range sec.Columns {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				pdf.CellFormat(colWidth, pdfLineHeight, tr(cell), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
