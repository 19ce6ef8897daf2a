// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/literature-helper/internal/assistant"
	"github.com/pdiddy/literature-helper/internal/export"
	"github.com/pdiddy/literature-helper/internal/pipeline"
	"github.com/pdiddy/literature-helper/internal/session"
	"github.com/pdiddy/literature-helper/pkg/types"
)

var (
	errNoSession     = errors.New("session not found")
	errNoReport      = errors.New("no run in this session yet")
	errHelpDisabled  = errors.New("help assistant is not configured")
	errBadFormat     = errors.New("format must be bib, md or csl")
	errPaperNotFound = errors.New("paper index out of range")
)

// --- sessions ---

func (s *Server) registerSessionRoutes(r *gin.Engine) {
	g := r.Group("/api/sessions")
	g.POST("", s.handleCreateSession)
	g.DELETE("/:id", s.handleEndSession)
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess := s.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID})
}

func (s *Server) handleEndSession(c *gin.Context) {
	if !s.sessions.End(c.Param("id")) {
		errorJSON(c, http.StatusNotFound, errNoSession)
		return
	}
	c.Status(http.StatusNoContent)
}

// lookup resolves :id to an existing session or aborts with 404.
func (s *Server) lookup(c *gin.Context) (*session.Session, bool) {
	sess, ok := s.sessions.Lookup(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusNotFound, errNoSession)
	}
	return sess, ok
}

// --- runs and exports ---

func (s *Server) registerRunRoutes(r *gin.Engine) {
	r.GET("/api/sources", s.handleSources)

	g := r.Group("/api/sessions/:id")
	g.POST("/runs", s.handleRun)
	g.GET("/report", s.handleReport)
	g.GET("/export", s.handleExportRun)
	g.GET("/papers/:index/export", s.handleExportPaper)
}

func (s *Server) handleSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": s.pipeline.Sources.Names()})
}

// runRequest is the body of POST /runs. An omitted threshold takes the
// pipeline default rather than zero.
type runRequest struct {
	Query           string   `json:"query"`
	Source          string   `json:"source"`
	Count           int      `json:"count"`
	Threshold       *float64 `json:"threshold"`
	Save            bool     `json:"save"`
	AllowDuplicates bool     `json:"allow_duplicates"`
}

func (r runRequest) pipelineRequest(p *pipeline.Pipeline) pipeline.Request {
	threshold := p.DefaultThreshold()
	if r.Threshold != nil {
		threshold = *r.Threshold
	}
	return pipeline.Request{
		Query:           r.Query,
		Source:          r.Source,
		Count:           r.Count,
		Threshold:       threshold,
		Save:            r.Save,
		AllowDuplicates: r.AllowDuplicates,
	}
}

// handleRun executes a run in the session, creating the session on first
// use. Runs within one session are serialized.
func (s *Server) handleRun(c *gin.Context) {
	var body runRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	req := body.pipelineRequest(s.pipeline)

	sess, _ := s.sessions.Get(c.Param("id"))

	var report *types.Report
	var err error
	sess.Exclusive(func() {
		report, err = s.pipeline.Run(c.Request.Context(), req)
		if err == nil {
			sess.SetReport(report)
		}
	})
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest):
		errorJSON(c, http.StatusBadRequest, err)
		return
	case err != nil:
		s.log.Warn("run aborted", zap.String("session", sess.ID), zap.Error(err))
		errorJSON(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "report": report})
}

func (s *Server) handleReport(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	report := sess.Report()
	if report == nil {
		errorJSON(c, http.StatusNotFound, errNoReport)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleExportPaper(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	report := sess.Report()
	if report == nil {
		errorJSON(c, http.StatusNotFound, errNoReport)
		return
	}
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil || i < 0 || i >= len(report.Papers) {
		errorJSON(c, http.StatusNotFound, errPaperNotFound)
		return
	}
	writeExport(c, c.DefaultQuery("format", "bib"), report.Papers[i].Paper.Title, report.Papers[i:i+1])
}

func (s *Server) handleExportRun(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	report := sess.Report()
	if report == nil {
		errorJSON(c, http.StatusNotFound, errNoReport)
		return
	}
	writeExport(c, c.DefaultQuery("format", "bib"), report.Query, report.Papers)
}

// writeExport renders results in format and sends them as an attachment
// named after title.
func writeExport(c *gin.Context, format, title string, results []types.PaperResult) {
	var buf bytes.Buffer
	var contentType string
	switch strings.ToLower(format) {
	case "bib", "bibtex":
		format, contentType = "bib", "application/x-bibtex; charset=utf-8"
		for i, r := range results {
			if i > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(r.BibTeX)
		}
	case "md", "markdown":
		format, contentType = "md", "text/markdown; charset=utf-8"
		for i, r := range results {
			if i > 0 {
				buf.WriteString("\n---\n\n")
			}
			buf.WriteString(r.Digest)
		}
	case "csl", "yaml":
		format, contentType = "yaml", "application/yaml; charset=utf-8"
		if err := export.WriteCSL(&buf, results); err != nil {
			errorJSON(c, http.StatusInternalServerError, err)
			return
		}
	default:
		errorJSON(c, http.StatusBadRequest, errBadFormat)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(title, format)))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// --- help chat ---

type helpRequest struct {
	Question string `json:"question" binding:"required"`
}

func (s *Server) registerHelpRoutes(r *gin.Engine) {
	g := r.Group("/api/sessions/:id/help")
	g.GET("", s.handleHelpHistory)
	g.POST("", s.handleHelp)
}

func (s *Server) handleHelpHistory(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": sess.History()})
}

// handleHelp answers one question, creating the session on first use.
func (s *Server) handleHelp(c *gin.Context) {
	if s.assistant == nil {
		errorJSON(c, http.StatusServiceUnavailable, errHelpDisabled)
		return
	}
	var req helpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	sess, _ := s.sessions.Get(c.Param("id"))
	reply, err := s.assistant.Ask(c.Request.Context(), sess, req.Question)
	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion):
		errorJSON(c, http.StatusBadRequest, err)
		return
	case err != nil:
		s.log.Warn("help request failed", zap.String("session", sess.ID), zap.Error(err))
		errorJSON(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "reply": reply})
}
