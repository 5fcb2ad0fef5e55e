// Package server exposes the leaderboard aggregator over HTTP: the search
// endpoint, single-user lookups, location suggestions, and a health probe.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/git-ranked/gitranked/pkg/leaderboard"
	"github.com/git-ranked/gitranked/pkg/location"
)

const shutdownGrace = 10 * time.Second

// Server wires the HTTP surface around the aggregator.
type Server struct {
	board     *leaderboard.Service
	locations *location.Client
	logger    *log.Logger
	http      *http.Server
}

// New creates a server listening on addr.
func New(board *leaderboard.Service, locations *location.Client, logger *log.Logger, addr string) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		board:     board,
		locations: locations,
		logger:    logger.With("component", "server"),
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the route tree. Exposed separately so tests can drive the
// handlers without binding a socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/users/{login}", s.handleUser)
		r.Get("/locations", s.handleLocations)
	})
	r.Get("/healthz", s.handleHealth)

	return r
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
