package models

import (
	"fmt"
	"strings"
	"time"
)

// ReportType selects the entity list a report is built from.
type ReportType string

const (
	ReportCattle ReportType = "cattle"
	ReportSales  ReportType = "sales"
	ReportHealth ReportType = "health"
	ReportFeed   ReportType = "feed"
)

// ParseReportType normalizes a report type and reports whether it is known.
func ParseReportType(value string) (ReportType, bool) {
	t := ReportType(strings.ToLower(strings.TrimSpace(value)))
	switch t {
	case ReportCattle, ReportSales, ReportHealth, ReportFeed:
		return t, true
	default:
		return "", false
	}
}

// ReportFormat is the output encoding of a report download.
type ReportFormat string

const (
	FormatCSV  ReportFormat = "csv"
	FormatJSON ReportFormat = "json"
	FormatPDF  ReportFormat = "pdf"
)

// ParseReportFormat normalizes a format and reports whether it is known.
func ParseReportFormat(value string) (ReportFormat, bool) {
	f := ReportFormat(strings.ToLower(strings.TrimSpace(value)))
	switch f {
	case FormatCSV, FormatJSON, FormatPDF:
		return f, true
	default:
		return "", false
	}
}

// ContentType is the MIME type served for the format.
func (f ReportFormat) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// ReportFilename follows {type}-report-{YYYY-MM-DD}.{ext}.
func ReportFilename(t ReportType, f ReportFormat, at time.Time) string {
	return fmt.Sprintf("%s-report-%s.%s", t, at.Format(DateLayout), f)
}

// DateLayout is the calendar date format used in reports and filenames.
const DateLayout = "2006-01-02"

// Table is the field-ordered tabular form of a report, shared by CSV, PDF and Sheets output.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Document is a rendered report ready for download.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}
