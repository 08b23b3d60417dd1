package attendance

import "fmt"

// AllSections is the section filter value that matches every section.
const AllSections = "all"

// DefaultSectionColor is used when a section is saved without a color.
const DefaultSectionColor = "#3b82f6"

// Student is a person who belongs to one or more sections.
type Student struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	SectionIDs []string `json:"sectionIds"`
}

// InSection reports whether the student belongs to the section.
func (s Student) InSection(sectionID string) bool {
	for _, id := range s.SectionIDs {
		if id == sectionID {
			return true
		}
	}
	return false
}

// Section is a named, colored group of students.
type Section struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Record is one present/absent mark for a student in a section on a date.
// Date is an ISO YYYY-MM-DD string, so string comparison orders by date.
type Record struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	SectionID string `json:"sectionId"`
	Date      string `json:"date"`
	Present   bool   `json:"present"`
}

func (r Record) matches(studentID, sectionID, date string) bool {
	return r.StudentID == studentID && r.SectionID == sectionID && r.Date == date
}

// Mark is the attendance state read for a (student, section, date) triple.
type Mark int

const (
	// Unmarked means no record exists yet.
	Unmarked Mark = iota
	Present
	Absent
)

func markOf(present bool) Mark {
	if present {
		return Present
	}
	return Absent
}

// String returns the lower-case name used in JSON and locale keys.
func (m Mark) String() string {
	switch m {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "unmarked"
	}
}

// MarshalText encodes the mark by name.
func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mark name.
func (m *Mark) UnmarshalText(b []byte) error {
	switch string(b) {
	case "present":
		*m = Present
	case "absent":
		*m = Absent
	case "unmarked", "":
		*m = Unmarked
	default:
		return fmt.Errorf("unknown mark %q", b)
	}
	return nil
}

// DefaultSections returns the sections seeded into an empty store.
func DefaultSections() []Section {
	return []Section{
		{ID: newID(), Name: "Art", Color: "#f59e0b"},
		{ID: newID(), Name: "Sports", Color: "#10b981"},
		{ID: newID(), Name: "Science", Color: "#3b82f6"},
	}
}
