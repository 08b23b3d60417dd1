package httpapi

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"rollbook/internal/attendance"
	"rollbook/internal/export"
	"rollbook/internal/i18n"
	"rollbook/internal/metrics"
	"rollbook/internal/store"
)

type reportRow struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	SectionID   string `json:"sectionId"`
	SectionName string `json:"sectionName"`
	Present     bool   `json:"present"`
}

func filterFrom(c *gin.Context) (attendance.ReportFilter, error) {
	f := attendance.ReportFilter{
		From:      c.Query("from"),
		To:        c.Query("to"),
		SectionID: c.Query("section"),
	}
	if err := checkDate("from", f.From); err != nil {
		return f, err
	}
	return f, checkDate("to", f.To)
}

// snapshotReport builds the report and picks the language: an explicit lang
// query wins over the stored preference.
func (s *Server) snapshotReport(c *gin.Context, f attendance.ReportFilter) (attendance.Report, string) {
	var (
		rep  attendance.Report
		lang string
	)
	s.sess.Read(func(tr *attendance.Tracker, p store.Prefs) {
		rep = tr.Report(f)
		lang = p.Language
	})
	if q := c.Query("lang"); q != "" {
		lang = i18n.Resolve(q)
	}
	return rep, lang
}

func (s *Server) report(c *gin.Context) {
	f, err := filterFrom(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	rep, lang := s.snapshotReport(c, f)

	rows := make([]reportRow, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, reportRow{
			ID:          r.Record.ID,
			Date:        r.Record.Date,
			StudentID:   r.Student.ID,
			StudentName: r.Student.Name,
			SectionID:   r.Section.ID,
			SectionName: r.Section.Name,
			Present:     r.Record.Present,
		})
	}
	resp := gin.H{"filter": rep.Filter, "stats": rep.Stats, "rows": rows}
	if rep.Empty() {
		resp["message"] = i18n.T(lang, "noAttendance")
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) exportReport(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		s.fail(c, err)
		return
	}
	f, err := filterFrom(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	rep, lang := s.snapshotReport(c, f)
	today := s.now()

	doc, err := export.Build(rep, lang, today)
	if err != nil {
		metrics.Exports.WithLabelValues(string(format), metrics.Invalid).Inc()
		s.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, doc); err != nil {
		metrics.Exports.WithLabelValues(string(format), metrics.Failed).Inc()
		s.fail(c, err)
		return
	}
	metrics.Exports.WithLabelValues(string(format), metrics.OK).Inc()
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(format, today)+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

type exportRequest struct {
	Format   string `json:"format" binding:"required"`
	From     string `json:"from"`
	To       string `json:"to"`
	Section  string `json:"section"`
	Language string `json:"language"`
}

func (s *Server) enqueueExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := checkDate("from", req.From); err != nil {
		s.fail(c, err)
		return
	}
	if err := checkDate("to", req.To); err != nil {
		s.fail(c, err)
		return
	}
	lang := req.Language
	if lang != "" {
		lang = i18n.Resolve(lang)
	}

	job, err := export.Enqueue(c.Request.Context(), s.jobs, export.Job{
		Format:      format,
		Filter:      attendance.ReportFilter{From: req.From, To: req.To, SectionID: req.Section},
		Language:    lang,
		RequestedAt: s.now().UTC(),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID, "format": job.Format})
}
