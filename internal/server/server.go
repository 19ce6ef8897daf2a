// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes runs, exports and the help chat over a JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/literature-helper/internal/assistant"
	"github.com/pdiddy/literature-helper/internal/logging"
	"github.com/pdiddy/literature-helper/internal/pipeline"
	"github.com/pdiddy/literature-helper/internal/session"
)

// Server holds the components shared by all requests. Per-user state lives
// in the session store.
type Server struct {
	pipeline  *pipeline.Pipeline
	assistant *assistant.Assistant
	sessions  *session.Store
	log       *zap.Logger
}

// New returns a Server. A nil assistant disables the help endpoints.
func New(p *pipeline.Pipeline, a *assistant.Assistant, sessions *session.Store, log *zap.Logger) *Server {
	return &Server{pipeline: p, assistant: a, sessions: sessions, log: logging.OrNop(log)}
}

// Router constructs the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", handleHealth)
	s.registerSessionRoutes(r)
	s.registerRunRoutes(r)
	s.registerHelpRoutes(r)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger logs one line per request through zap.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func errorJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
