// Package export renders attendance reports as CSV, PDF and XLSX files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"rollbook/internal/attendance"
	"rollbook/internal/i18n"
)

// Format is an export file type.
type Format string

const (
	CSV  Format = "csv"
	PDF  Format = "pdf"
	XLSX Format = "xlsx"
)

// ParseFormat accepts a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, PDF, XLSX:
		return f, nil
	default:
		return "", &attendance.ValidationError{Field: "format", Reason: "must be csv, pdf or xlsx"}
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case PDF:
		return "application/pdf"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename returns attendance_report_<today>.<ext>.
func Filename(f Format, today time.Time) string {
	return fmt.Sprintf("attendance_report_%s.%s", today.Format(time.DateOnly), f)
}

// Document is a localised report ready to be written in any format.
type Document struct {
	Title     string
	Generated string
	StatsLine string
	Header    []string
	Rows      [][]string
	Stats     attendance.Stats
}

// Build localises a report. It fails with an EmptyResultError when the
// report matched no records.
func Build(rep attendance.Report, lang string, today time.Time) (Document, error) {
	if err := rep.RequireRecords(); err != nil {
		return Document{}, err
	}
	t := func(key string) string { return i18n.T(lang, key) }

	doc := Document{
		Title:     t("attendanceReport"),
		Generated: fmt.Sprintf("%s: %s", t("generatedOn"), i18n.FormatDate(lang, today.Format(time.DateOnly))),
		StatsLine: fmt.Sprintf("%s: %d | %s: %d | %s: %.1f%%",
			t("totalPresent"), rep.Stats.PresentCount,
			t("totalAbsent"), rep.Stats.AbsentCount,
			t("attendanceRate"), rep.Stats.Rate),
		Header: []string{t("date"), t("student"), t("section"), t("status")},
		Rows:   make([][]string, 0, len(rep.Rows)),
		Stats:  rep.Stats,
	}
	for _, r := range rep.Rows {
		doc.Rows = append(doc.Rows, []string{
			i18n.FormatDate(lang, r.Record.Date),
			r.Student.Name,
			r.Section.Name,
			t(statusKey(r.Record.Present)),
		})
	}
	return doc, nil
}

// Write renders doc in the given format.
func Write(w io.Writer, f Format, doc Document) error {
	switch f {
	case CSV:
		return WriteCSV(w, doc)
	case PDF:
		return WritePDF(w, doc)
	case XLSX:
		return WriteXLSX(w, doc)
	default:
		return fmt.Errorf("export: unsupported format %q", f)
	}
}

func statusKey(present bool) string {
	if present {
		return "present"
	}
	return "absent"
}
