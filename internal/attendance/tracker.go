package attendance

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

func newID() string { return uuid.NewString() }

// Tracker holds the students, sections and attendance records of one session.
// Queries never mutate it; mutations never persist it. It is not safe for
// concurrent use: callers serialise access (see the session package).
type Tracker struct {
	students []Student
	sections []Section
	records  []Record
}

// New creates a tracker over copies of the given collections.
func New(students []Student, sections []Section, records []Record) *Tracker {
	t := &Tracker{
		students: make([]Student, 0, len(students)),
		sections: slices.Clone(sections),
		records:  slices.Clone(records),
	}
	for _, s := range students {
		t.students = append(t.students, cloneStudent(s))
	}
	return t
}

// Students returns a copy of every student in display order.
func (t *Tracker) Students() []Student {
	out := make([]Student, 0, len(t.students))
	for _, s := range t.students {
		out = append(out, cloneStudent(s))
	}
	return out
}

// Sections returns a copy of every section in display order.
func (t *Tracker) Sections() []Section {
	return append(make([]Section, 0, len(t.sections)), t.sections...)
}

// Records returns a copy of every attendance record.
func (t *Tracker) Records() []Record {
	return append(make([]Record, 0, len(t.records)), t.records...)
}

// Student looks a student up by id.
func (t *Tracker) Student(id string) (Student, bool) {
	if i := t.studentIndex(id); i >= 0 {
		return cloneStudent(t.students[i]), true
	}
	return Student{}, false
}

// Section looks a section up by id.
func (t *Tracker) Section(id string) (Section, bool) {
	if i := t.sectionIndex(id); i >= 0 {
		return t.sections[i], true
	}
	return Section{}, false
}

// MarkAttendance sets the present flag for a (student, section, date) triple,
// replacing the existing record or appending a new one.
func (t *Tracker) MarkAttendance(studentID, sectionID, date string, present bool) Record {
	for i := range t.records {
		if t.records[i].matches(studentID, sectionID, date) {
			t.records[i].Present = present
			return t.records[i]
		}
	}
	rec := Record{
		ID:        newID(),
		StudentID: studentID,
		SectionID: sectionID,
		Date:      date,
		Present:   present,
	}
	t.records = append(t.records, rec)
	return rec
}

// SaveStudent creates a student, or updates one in place when existingID is set.
func (t *Tracker) SaveStudent(name string, sectionIDs []string, existingID string) (Student, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Student{}, &ValidationError{Field: "name", Reason: "required"}
	}
	ids := normalizeIDs(sectionIDs)
	if len(ids) == 0 {
		return Student{}, &ValidationError{Field: "sectionIds", Reason: "at least one section required"}
	}

	if existingID == "" {
		st := Student{ID: newID(), Name: name, SectionIDs: ids}
		t.students = append(t.students, st)
		return cloneStudent(st), nil
	}

	i := t.studentIndex(existingID)
	if i < 0 {
		return Student{}, fmt.Errorf("student %s: %w", existingID, ErrNotFound)
	}
	t.students[i].Name = name
	t.students[i].SectionIDs = ids
	return cloneStudent(t.students[i]), nil
}

// DeleteStudent removes a student and every record referencing it.
// It reports whether the student existed.
func (t *Tracker) DeleteStudent(id string) bool {
	i := t.studentIndex(id)
	if i >= 0 {
		t.students = slices.Delete(t.students, i, i+1)
	}
	t.records = slices.DeleteFunc(t.records, func(r Record) bool { return r.StudentID == id })
	return i >= 0
}

// SaveSection creates a section, or updates one in place when existingID is set.
func (t *Tracker) SaveSection(name, color, existingID string) (Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Section{}, &ValidationError{Field: "name", Reason: "required"}
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = DefaultSectionColor
	}
	if err := validate.Var(color, "iscolor"); err != nil {
		return Section{}, &ValidationError{Field: "color", Reason: "must be a hex, rgb(a) or hsl(a) color"}
	}

	if existingID == "" {
		sec := Section{ID: newID(), Name: name, Color: color}
		t.sections = append(t.sections, sec)
		return sec, nil
	}

	i := t.sectionIndex(existingID)
	if i < 0 {
		return Section{}, fmt.Errorf("section %s: %w", existingID, ErrNotFound)
	}
	t.sections[i].Name = name
	t.sections[i].Color = color
	return t.sections[i], nil
}

// DeleteSection removes a section, strips it from every student and removes
// every record referencing it. It reports whether the section existed.
func (t *Tracker) DeleteSection(id string) bool {
	i := t.sectionIndex(id)
	if i >= 0 {
		t.sections = slices.Delete(t.sections, i, i+1)
	}
	for j := range t.students {
		t.students[j].SectionIDs = slices.DeleteFunc(t.students[j].SectionIDs, func(s string) bool { return s == id })
	}
	t.records = slices.DeleteFunc(t.records, func(r Record) bool { return r.SectionID == id })
	return i >= 0
}

func (t *Tracker) studentIndex(id string) int {
	return slices.IndexFunc(t.students, func(s Student) bool { return s.ID == id })
}

func (t *Tracker) sectionIndex(id string) int {
	return slices.IndexFunc(t.sections, func(s Section) bool { return s.ID == id })
}

// normalizeIDs trims ids, drops blanks and keeps the first of any duplicates.
func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func cloneStudent(s Student) Student {
	s.SectionIDs = append(make([]string, 0, len(s.SectionIDs)), s.SectionIDs...)
	return s
}
