package attendance

import (
	"iter"
	"strings"
)

// AttendanceRow is one (student, section) line of the attendance sheet for a date.
type AttendanceRow struct {
	Student Student
	Section Section
	Date    string
	Mark    Mark
}

// Present reports whether the row is marked present. Unmarked reads as absent.
func (r AttendanceRow) Present() bool { return r.Mark == Present }

// StudentView is a student with its resolved sections.
type StudentView struct {
	Student  Student
	Sections []Section
}

// SectionView is a section with the number of students in it.
type SectionView struct {
	Section      Section
	StudentCount int
}

// AttendanceView yields one row per (student, section) membership, restricted
// to sections that exist. sectionFilter is AllSections, empty, or a section id;
// nameSearch is a case-insensitive substring of the student name.
func (t *Tracker) AttendanceView(date, sectionFilter, nameSearch string) iter.Seq[AttendanceRow] {
	search := strings.ToLower(nameSearch)
	return func(yield func(AttendanceRow) bool) {
		for _, st := range t.students {
			if !nameMatches(st.Name, search) {
				continue
			}
			for _, sectionID := range st.SectionIDs {
				if !sectionMatches(sectionFilter, sectionID) {
					continue
				}
				sec, ok := t.Section(sectionID)
				if !ok {
					continue
				}
				row := AttendanceRow{
					Student: cloneStudent(st),
					Section: sec,
					Date:    date,
					Mark:    t.markFor(st.ID, sectionID, date),
				}
				if !yield(row) {
					return
				}
			}
		}
	}
}

// StudentsView yields students whose name contains nameSearch, ignoring case.
func (t *Tracker) StudentsView(nameSearch string) iter.Seq[StudentView] {
	search := strings.ToLower(nameSearch)
	return func(yield func(StudentView) bool) {
		for _, st := range t.students {
			if !nameMatches(st.Name, search) {
				continue
			}
			view := StudentView{Student: cloneStudent(st), Sections: []Section{}}
			for _, id := range st.SectionIDs {
				if sec, ok := t.Section(id); ok {
					view.Sections = append(view.Sections, sec)
				}
			}
			if !yield(view) {
				return
			}
		}
	}
}

// SectionsView yields every section with a live student count.
func (t *Tracker) SectionsView() iter.Seq[SectionView] {
	return func(yield func(SectionView) bool) {
		for _, sec := range t.sections {
			n := 0
			for _, st := range t.students {
				if st.InSection(sec.ID) {
					n++
				}
			}
			if !yield(SectionView{Section: sec, StudentCount: n}) {
				return
			}
		}
	}
}

// MarkFor returns the mark for a (student, section, date) triple.
func (t *Tracker) MarkFor(studentID, sectionID, date string) Mark {
	return t.markFor(studentID, sectionID, date)
}

func (t *Tracker) markFor(studentID, sectionID, date string) Mark {
	for _, r := range t.records {
		if r.matches(studentID, sectionID, date) {
			return markOf(r.Present)
		}
	}
	return Unmarked
}

func nameMatches(name, lowerSearch string) bool {
	return lowerSearch == "" || strings.Contains(strings.ToLower(name), lowerSearch)
}

func sectionMatches(filter, sectionID string) bool {
	return filter == "" || filter == AllSections || filter == sectionID
}
