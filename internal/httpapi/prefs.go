package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) getPrefs(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Prefs())
}

type prefsRequest struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

func (s *Server) updatePrefs(c *gin.Context) {
	var req prefsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}
	p, err := s.sess.UpdatePrefs(c.Request.Context(), req.Language, req.Theme)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) toggleTheme(c *gin.Context) {
	p, err := s.sess.ToggleTheme(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
