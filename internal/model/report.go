package model

import (
	"time"
)

type ReportType string

const (
	ReportTypeFinancial ReportType = "financial"
	ReportTypeClinical  ReportType = "clinical"
	ReportTypeInventory ReportType = "inventory"
	ReportTypeStaff     ReportType = "staff"
)

type ReportFormat string

const (
	ReportFormatPDF ReportFormat = "pdf"
	ReportFormatCSV ReportFormat = "csv"
)

// ContentType is the MIME type served on download.
func (f ReportFormat) ContentType() string {
	if f == ReportFormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls on a day inside the period, inclusive.
func (p Period) Contains(t time.Time) bool {
	day := StartOfDay(t.In(p.Start.Location()))
	return !day.Before(StartOfDay(p.Start)) && !day.After(StartOfDay(p.End))
}

type Report struct {
	Base
	Title       string       `json:"title"`
	Type        ReportType   `json:"type"`
	Period      Period       `json:"period"`
	Format      ReportFormat `json:"format"`
	GeneratedAt time.Time    `json:"generated_at"`
	GeneratedBy string       `json:"generated_by,omitempty"`
	Size        int          `json:"size"`
	Content     []byte       `json:"-"`
}

// Filename is the download name, e.g. financial-2024-05-01-2024-05-31.csv.
func (r *Report) Filename() string {
	return string(r.Type) + "-" + r.Period.Start.Format(DateLayout) + "-" +
		r.Period.End.Format(DateLayout) + "." + string(r.Format)
}

// ReportTable is the renderer-neutral body of a report.
type ReportTable struct {
	Title    string
	Subtitle string
	Sections []ReportSection
}

type ReportSection struct {
	Heading string
	Columns []string
	Rows    [][]string
}

type GenerateReportRequest struct {
	Type   ReportType   `json:"type" binding:"required,oneof=financial clinical inventory staff"`
	Format ReportFormat `json:"format" binding:"required,oneof=pdf csv"`
	Start  string       `json:"start" binding:"omitempty,yyyymmdd"`
	End    string       `json:"end" binding:"omitempty,yyyymmdd"`
}
