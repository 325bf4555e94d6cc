package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

func (s *Server) staticPath(parts ...string) (string, bool) {
	if s.staticDir == "" {
		return "", false
	}
	p := filepath.Join(append([]string{s.staticDir}, parts...)...)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return p, false
	}
	return p, true
}

func (s *Server) serveIndex(c *gin.Context) {
	p, ok := s.staticPath("index.html")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "index.html not found at " + p, "static_dir": s.staticDir})
		return
	}
	c.File(p)
}

// serveAppJS serves the client bundle as an ES module from static/js.
func (s *Server) serveAppJS(c *gin.Context) {
	p, ok := s.staticPath("js", "app.js")
	if !ok {
		c.Data(http.StatusNotFound, "application/javascript", []byte(fmt.Sprintf("console.error('app.js not found at %s');", p)))
		return
	}
	data, err := os.ReadFile(p)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", data)
}

func (s *Server) serveIcon(c *gin.Context) {
	p, ok := s.staticPath("vite.svg")
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Content-Type", "image/svg+xml")
	c.File(p)
}
