package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rollbook/internal/attendance"
	"rollbook/internal/store"
)

type attendanceRow struct {
	StudentID    string          `json:"studentId"`
	StudentName  string          `json:"studentName"`
	SectionID    string          `json:"sectionId"`
	SectionName  string          `json:"sectionName"`
	SectionColor string          `json:"sectionColor"`
	Date         string          `json:"date"`
	Mark         attendance.Mark `json:"mark"`
	Present      bool            `json:"present"`
}

func (s *Server) listAttendance(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = s.now().Format(time.DateOnly)
	}
	if err := checkDate("date", date); err != nil {
		s.fail(c, err)
		return
	}
	section := c.Query("section")
	if section == "" {
		section = attendance.AllSections
	}

	rows := []attendanceRow{}
	s.sess.Read(func(tr *attendance.Tracker, _ store.Prefs) {
		for row := range tr.AttendanceView(date, section, c.Query("q")) {
			rows = append(rows, attendanceRow{
				StudentID:    row.Student.ID,
				StudentName:  row.Student.Name,
				SectionID:    row.Section.ID,
				SectionName:  row.Section.Name,
				SectionColor: row.Section.Color,
				Date:         row.Date,
				Mark:         row.Mark,
				Present:      row.Present(),
			})
		}
	})
	c.JSON(http.StatusOK, gin.H{"date": date, "section": section, "rows": rows})
}

type markRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	SectionID string `json:"sectionId" binding:"required"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Present   *bool  `json:"present" binding:"required"`
}

func (s *Server) markAttendance(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}
	var rec attendance.Record
	err := s.sess.Mutate(c.Request.Context(), "mark_attendance", func(tr *attendance.Tracker) error {
		if _, ok := tr.Student(req.StudentID); !ok {
			return fmt.Errorf("student %q: %w", req.StudentID, attendance.ErrNotFound)
		}
		if _, ok := tr.Section(req.SectionID); !ok {
			return fmt.Errorf("section %q: %w", req.SectionID, attendance.ErrNotFound)
		}
		rec = tr.MarkAttendance(req.StudentID, req.SectionID, req.Date, *req.Present)
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type studentView struct {
	attendance.Student
	Sections []attendance.Section `json:"sections"`
}

func (s *Server) listStudents(c *gin.Context) {
	out := []studentView{}
	s.sess.Read(func(tr *attendance.Tracker, _ store.Prefs) {
		for v := range tr.StudentsView(c.Query("q")) {
			out = append(out, studentView{Student: v.Student, Sections: nonNil(v.Sections)})
		}
	})
	c.JSON(http.StatusOK, gin.H{"students": out})
}

type studentRequest struct {
	Name       string   `json:"name"`
	SectionIDs []string `json:"sectionIds"`
}

func (s *Server) saveStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}
	id := c.Param("id")
	var saved attendance.Student
	err := s.sess.Mutate(c.Request.Context(), "save_student", func(tr *attendance.Tracker) error {
		var err error
		saved, err = tr.SaveStudent(req.Name, req.SectionIDs, id)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(createdOrOK(id), saved)
}

func (s *Server) deleteStudent(c *gin.Context) {
	id := c.Param("id")
	err := s.sess.Mutate(c.Request.Context(), "delete_student", func(tr *attendance.Tracker) error {
		if !tr.DeleteStudent(id) {
			return fmt.Errorf("student %q: %w", id, attendance.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type sectionView struct {
	attendance.Section
	StudentCount int `json:"studentCount"`
}

func (s *Server) listSections(c *gin.Context) {
	out := []sectionView{}
	s.sess.Read(func(tr *attendance.Tracker, _ store.Prefs) {
		for v := range tr.SectionsView() {
			out = append(out, sectionView{Section: v.Section, StudentCount: v.StudentCount})
		}
	})
	c.JSON(http.StatusOK, gin.H{"sections": out})
}

type sectionRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) saveSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}
	id := c.Param("id")
	var saved attendance.Section
	err := s.sess.Mutate(c.Request.Context(), "save_section", func(tr *attendance.Tracker) error {
		var err error
		saved, err = tr.SaveSection(req.Name, req.Color, id)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(createdOrOK(id), saved)
}

func (s *Server) deleteSection(c *gin.Context) {
	id := c.Param("id")
	err := s.sess.Mutate(c.Request.Context(), "delete_section", func(tr *attendance.Tracker) error {
		if !tr.DeleteSection(id) {
			return fmt.Errorf("section %q: %w", id, attendance.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func createdOrOK(existingID string) int {
	if existingID == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
