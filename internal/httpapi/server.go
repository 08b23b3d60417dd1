// Package httpapi exposes the attendance session over JSON HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rollbook/internal/httpmiddleware"
	"rollbook/internal/queue"
	"rollbook/internal/session"
)

// Server holds the handler dependencies.
type Server struct {
	sess *session.Session
	jobs queue.Queue
	log  *zap.Logger
	now  func() time.Time
}

// Options tune the router middleware.
type Options struct {
	// RateLimitPerMin is the per-IP budget; zero disables limiting.
	RateLimitPerMin int
}

// New builds a Server. jobs receives async export requests.
func New(sess *session.Session, jobs queue.Queue, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{sess: sess, jobs: jobs, log: log, now: time.Now}
}

// Router wires middleware and routes.
func (s *Server) Router(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(httpmiddleware.Recovery(s.log))
	r.Use(httpmiddleware.AccessLog(s.log, "/healthz", "/metrics"))
	r.Use(httpmiddleware.CORS())
	r.Use(httpmiddleware.SecurityHeaders())
	if opts.RateLimitPerMin > 0 {
		r.Use(httpmiddleware.NewTokenBucket(opts.RateLimitPerMin, opts.RateLimitPerMin).Middleware())
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.health)

	v1 := r.Group("/v1")
	v1.GET("/attendance", s.listAttendance)
	v1.PUT("/attendance", s.markAttendance)

	v1.GET("/students", s.listStudents)
	v1.POST("/students", s.saveStudent)
	v1.PUT("/students/:id", s.saveStudent)
	v1.DELETE("/students/:id", s.deleteStudent)

	v1.GET("/sections", s.listSections)
	v1.POST("/sections", s.saveSection)
	v1.PUT("/sections/:id", s.saveSection)
	v1.DELETE("/sections/:id", s.deleteSection)

	v1.GET("/reports", s.report)
	v1.GET("/reports/export", s.exportReport)
	v1.POST("/reports/exports", s.enqueueExport)

	v1.GET("/preferences", s.getPrefs)
	v1.PUT("/preferences", s.updatePrefs)
	v1.POST("/preferences/theme/toggle", s.toggleTheme)

	return r
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.sess.Ping(ctx); err != nil {
		s.log.Warn("store ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": true})
}
