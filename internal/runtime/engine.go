// Package runtime provides the Engine struct and lifecycle management for
// the phase-ordered middleware pipeline server.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/phasegate/phasegate/internal/config"
	"github.com/phasegate/phasegate/internal/pipeline"
	"github.com/phasegate/phasegate/internal/registry"
	"github.com/phasegate/phasegate/internal/server"
	"github.com/phasegate/phasegate/internal/storage/sqldb"
	"github.com/phasegate/phasegate/internal/telemetry"
)

// Engine wires the registry, dispatcher, and HTTP server together and
// manages their lifecycle. It can be embedded in larger applications or run
// standalone from cmd/phasegate.
type Engine struct {
	// Dependencies (injected via options)
	cfgProvider   *config.Provider
	cfg           *config.Config
	registry      *registry.Registry
	logger        *slog.Logger
	phaseOrder    []string
	phaseOrderSet bool

	// Internal state
	dispatcher *pipeline.Dispatcher
	httpServer *http.Server
	audit      *sqldb.Store
	stopTracer func(context.Context) error

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// New creates an Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if e.registry == nil {
		e.registry = registry.New(e.logger)
	}

	return e, nil
}

// Registry returns the engine's middleware registry. Registrations made at
// any time take effect on the next dispatch.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Dispatcher returns the request dispatcher, or nil before Start.
func (e *Engine) Dispatcher() *pipeline.Dispatcher {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatcher
}

// Start loads configuration, builds the dispatcher, and starts the HTTP
// server. It returns once the server is listening in the background.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ctx, e.cancel = context.WithCancel(ctx)

	cfg, err := e.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Telemetry.Enabled {
		stop, err := telemetry.InitTracer(cfg.Telemetry.ServiceName, os.Stdout, e.logger)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		e.stopTracer = stop
	}

	if e.audit == nil && cfg.Storage.Driver == "sqlite" {
		store, err := sqldb.New(cfg.Storage.DSN)
		if err != nil {
			return fmt.Errorf("open audit store: %w", err)
		}
		e.audit = store
	}

	order := cfg.Pipeline.PhasesByOrder
	if e.phaseOrderSet {
		order = e.phaseOrder
	}
	e.dispatcher = pipeline.NewDispatcher(e.registry,
		pipeline.WithLogger(e.logger),
		pipeline.WithPhaseOrder(order),
	)

	srv := server.New(cfg.Server.Port, e.logger, e.audit)
	srv.Mount(e.dispatcher)

	e.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		e.logger.Info("HTTP server listening", slog.Int("port", cfg.Server.Port))
		if err := e.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	if e.cfgProvider != nil {
		go e.watchConfig()
	}

	e.logger.Info("engine started",
		slog.Int("port", cfg.Server.Port),
		slog.Int("middlewares", e.registry.Len()),
		slog.Any("phase_order", order))

	return nil
}

// Shutdown gracefully stops the engine.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.logger.Info("shutting down engine")

	if e.cancel != nil {
		e.cancel()
	}

	if e.httpServer != nil {
		if err := e.httpServer.Shutdown(ctx); err != nil {
			e.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
			return err
		}
	}

	if e.audit != nil {
		if err := e.audit.Close(); err != nil {
			e.logger.Error("failed to close audit store", slog.String("error", err.Error()))
		}
	}

	if e.stopTracer != nil {
		if err := e.stopTracer(ctx); err != nil {
			e.logger.Error("failed to stop tracing", slog.String("error", err.Error()))
		}
	}

	e.logger.Info("engine shutdown complete")
	return nil
}

func (e *Engine) loadConfig() (*config.Config, error) {
	if e.cfgProvider != nil {
		return e.cfgProvider.Load(e.ctx)
	}
	if e.cfg != nil {
		return e.cfg, nil
	}
	return config.Load("")
}

// watchConfig reloads the phase order when the config file changes. Any
// change invalidates the cached pipeline via SetPhaseOrder.
func (e *Engine) watchConfig() {
	onChange := func(cfg *config.Config) {
		if e.phaseOrderSet {
			// An explicit WithPhaseOrder pins the order; file reloads do
			// not override it.
			return
		}
		e.logger.Info("config changed, updating phase order",
			slog.Any("phase_order", cfg.Pipeline.PhasesByOrder))
		e.mu.Lock()
		d := e.dispatcher
		e.mu.Unlock()
		if d != nil {
			d.SetPhaseOrder(cfg.Pipeline.PhasesByOrder)
		}
	}

	if err := e.cfgProvider.Watch(e.ctx, onChange); err != nil && err != context.Canceled {
		e.logger.Error("config watch failed", slog.String("error", err.Error()))
	}
}
