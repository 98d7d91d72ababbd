// Package server exposes a completed benchmark run over HTTP.
//
// The server loads one results file at startup and serves the raw rows plus
// the derived analysis (per-model and per-prompt-style statistics, winners,
// bias tables) as JSON. It is a read-only viewer: nothing mutates the
// results after load.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	apperrors "github.com/notenlabs/gradebench/internal/errors"
	"github.com/notenlabs/gradebench/pkg/analysis"
	"github.com/notenlabs/gradebench/pkg/bench"
)

// Timeouts bounds connection lifecycle phases of the HTTP server.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Idle     time.Duration
	Shutdown time.Duration
}

// Server serves benchmark results and analysis over HTTP.
type Server struct {
	host     string
	port     int
	router   chi.Router
	timeouts Timeouts

	version string
	results []bench.AttemptResult
	report  *analysis.Report
	loaded  time.Time
}

// New creates a server for the given result set.
//
// The analysis report is computed once here; request handlers only
// serialize.
func New(host string, port int, version string, results []bench.AttemptResult) *Server {
	s := &Server{
		host: host,
		port: port,
		timeouts: Timeouts{
			Read:     30 * time.Second,
			Write:    30 * time.Second,
			Idle:     120 * time.Second,
			Shutdown: 10 * time.Second,
		},
		version: version,
		results: results,
		report:  analysis.Analyze(results),
		loaded:  time.Now().UTC(),
	}
	s.router = s.buildRouter()
	return s
}

// SetTimeouts overrides the default connection timeouts. Zero fields keep
// their defaults.
func (s *Server) SetTimeouts(t Timeouts) {
	if t.Read > 0 {
		s.timeouts.Read = t.Read
	}
	if t.Write > 0 {
		s.timeouts.Write = t.Write
	}
	if t.Idle > 0 {
		s.timeouts.Idle = t.Idle
	}
	if t.Shutdown > 0 {
		s.timeouts.Shutdown = t.Shutdown
	}
}

// Handler returns the HTTP handler for testing and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Addr returns the host:port listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

// ListenAndServe runs the server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, logger *zap.Logger) error {
	httpSrv := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.timeouts.Read,
		WriteTimeout: s.timeouts.Write,
		IdleTimeout:  s.timeouts.Idle,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	logger.Info("Server listening",
		zap.String("addr", s.Addr()),
		zap.Int("results", len(s.results)))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeouts.Shutdown)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.NotFound(apperrors.NotFoundHandler)
	r.MethodNotAllowed(apperrors.MethodNotAllowedHandler)

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/api", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Get("/stats/models", s.handleModelStats)
		r.Get("/stats/prompts", s.handlePromptStats)
		r.Get("/winners", s.handleWinners)
		r.Get("/bias", s.handleBias)
		r.Get("/results", s.handleResults)
	})

	return r
}
