// Package server exposes the sequence generator and study registry over HTTP.
//
// The API is a small chi router versioned under /v1:
//
//	POST   /v1/sequences                      generate one sequence
//	POST   /v1/studies                        register a design as a study
//	GET    /v1/studies                        list studies, newest first
//	GET    /v1/studies/{studyID}              fetch one study
//	DELETE /v1/studies/{studyID}              delete a study and its assignments
//	POST   /v1/studies/{studyID}/assignments  generate the next assignment
//	GET    /v1/studies/{studyID}/assignments  list assignments in index order
//	GET    /v1/healthz                        liveness probe
//
// Responses are JSON. Errors share one envelope with a machine-readable
// code, for example {"error":{"code":"NOT_FOUND","message":"study not found"}}.
//
// Assignment indexes are allocated from the store's assignment count, so a
// participant's block can always be regenerated from the study seed and the
// index recorded here.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/seqlab/counterseq/pkg/store"
)

// Server routes API requests to a backing store.
// Create one with New; the zero value is not usable.
type Server struct {
	store  store.Store
	logger *log.Logger
	router *chi.Mux

	// assignMu serializes assignment creation per process so the
	// count-then-put index allocation stays dense under concurrent
	// requests.
	assignMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request logging and internal errors.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server backed by st.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:  st,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Get("/v1/healthz", s.handleHealthz)
	r.Post("/v1/sequences", s.handleCreateSequence)

	r.Route("/v1/studies", func(r chi.Router) {
		r.Post("/", s.handleCreateStudy)
		r.Get("/", s.handleListStudies)
		r.Route("/{studyID}", func(r chi.Router) {
			r.Get("/", s.handleGetStudy)
			r.Delete("/", s.handleDeleteStudy)
			r.Post("/assignments", s.handleCreateAssignment)
			r.Get("/assignments", s.handleListAssignments)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down gracefully with a 10 second drain window.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	s.logger.Info("listening", "addr", addr)
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
