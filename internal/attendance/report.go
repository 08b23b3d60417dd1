package attendance

import (
	"cmp"
	"iter"
	"math"
	"slices"
)

// ReportFilter selects records for a report. Empty From or To leaves that
// end of the date range open; SectionID is AllSections, empty, or a section id.
type ReportFilter struct {
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	SectionID string `json:"section,omitempty"`
}

func (f ReportFilter) sectionOrAll() string {
	if f.SectionID == "" {
		return AllSections
	}
	return f.SectionID
}

// Match reports whether a record falls inside the filter.
func (f ReportFilter) Match(r Record) bool {
	if f.From != "" && r.Date < f.From {
		return false
	}
	if f.To != "" && r.Date > f.To {
		return false
	}
	return sectionMatches(f.SectionID, r.SectionID)
}

// Stats aggregates a set of attendance records.
type Stats struct {
	TotalRecords     int     `json:"totalRecords"`
	PresentCount     int     `json:"presentCount"`
	AbsentCount      int     `json:"absentCount"`
	DistinctStudents int     `json:"distinctStudents"`
	Rate             float64 `json:"rate"`
}

// ReportRow is a record joined with its student and section.
type ReportRow struct {
	Record  Record
	Student Student
	Section Section
}

// Report is the filtered record set with its stats, ready for display or export.
type Report struct {
	Filter ReportFilter
	Stats  Stats
	Rows   []ReportRow
}

// Empty reports whether the filter matched no records at all.
func (r Report) Empty() bool { return r.Stats.TotalRecords == 0 }

// ReportView yields the records matching the filter in storage order.
func (t *Tracker) ReportView(f ReportFilter) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, r := range t.records {
			if f.Match(r) && !yield(r) {
				return
			}
		}
	}
}

// Summarize computes stats over a record sequence. Rate is a percentage
// rounded to one decimal and is 0 for an empty sequence.
func Summarize(records iter.Seq[Record]) Stats {
	var s Stats
	students := make(map[string]struct{})
	for r := range records {
		s.TotalRecords++
		if r.Present {
			s.PresentCount++
		}
		students[r.StudentID] = struct{}{}
	}
	s.AbsentCount = s.TotalRecords - s.PresentCount
	s.DistinctStudents = len(students)
	if s.TotalRecords > 0 {
		s.Rate = math.Round(float64(s.PresentCount)/float64(s.TotalRecords)*1000) / 10
	}
	return s
}

// Report builds the stats and display rows for a filter. Rows are sorted by
// date, newest first; records whose student or section no longer exists are
// counted in Stats but left out of Rows.
func (t *Tracker) Report(f ReportFilter) Report {
	rep := Report{Filter: f, Stats: Summarize(t.ReportView(f)), Rows: []ReportRow{}}
	for r := range t.ReportView(f) {
		st, ok := t.Student(r.StudentID)
		if !ok {
			continue
		}
		sec, ok := t.Section(r.SectionID)
		if !ok {
			continue
		}
		rep.Rows = append(rep.Rows, ReportRow{Record: r, Student: st, Section: sec})
	}
	slices.SortStableFunc(rep.Rows, func(a, b ReportRow) int {
		return cmp.Compare(b.Record.Date, a.Record.Date)
	})
	return rep
}

// RequireRecords returns an EmptyResultError when the report matched nothing.
func (r Report) RequireRecords() error {
	if r.Empty() {
		return &EmptyResultError{Filter: r.Filter}
	}
	return nil
}
