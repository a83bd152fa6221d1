// Package server hosts the pipeline dispatcher behind a chi router with the
// standard outer middleware stack.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/phasegate/phasegate/internal/storage/sqldb"
)

type Server struct {
	Router *chi.Mux
	Port   int
	logger *slog.Logger
}

// New builds the outer router. The audit store is optional; when nil no
// audit middleware is installed.
func New(port int, logger *slog.Logger, audit *sqldb.Store) *Server {
	r := chi.NewRouter()

	// Apply middleware in order
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	if audit != nil {
		r.Use(AuditMiddleware(audit, logger))
	}
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(middleware.Recoverer)

	// Wrap with OpenTelemetry HTTP instrumentation
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "phasegate")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return &Server{
		Router: r,
		Port:   port,
		logger: logger,
	}
}

// Mount installs the pipeline dispatcher as the catch-all handler.
func (s *Server) Mount(dispatcher http.Handler) {
	s.Router.Handle("/*", dispatcher)
}

// Start serves until the listener fails. Most callers should prefer running
// the runtime engine, which owns graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting server", slog.Int("port", s.Port))
	return http.ListenAndServe(fmt.Sprintf(":%d", s.Port), s.Router)
}
