// Package ops serves the connector's health and status endpoints
package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"gcsbridge/internal/platform/logger"
	"gcsbridge/internal/services/connector/domain"
)

// Options configures the ops server
type Options struct {
	Port        int
	CORSOrigins []string
}

// Server exposes /healthz and /status
type Server struct {
	http   *http.Server
	log    logger.Logger
	status func() domain.Status
	ready  func(ctx context.Context) error
}

// New builds the ops server. status provides the connector snapshot; ready
// checks backing stores and may be nil when nothing needs pinging.
func New(o Options, status func() domain.Status, ready func(ctx context.Context) error) *Server {
	s := &Server{
		log:    *logger.Named("ops"),
		status: status,
		ready:  ready,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	origins := o.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", o.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run serves until ctx is done, then drains
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.http.Addr).Msg("ops server listening")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.log.Warn().Err(err).Msg("readiness check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable"))
			return
		}
	}
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.status()); err != nil {
		s.log.Error().Err(err).Msg("status encode failed")
	}
}
