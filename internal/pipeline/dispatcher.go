package pipeline

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/phasegate/phasegate/internal/registry"
	"github.com/phasegate/phasegate/internal/router"
)

// Dispatcher is the single entry point the HTTP layer mounts. It builds the
// pipeline lazily from the current registry snapshot and phase order, caches
// it, and serves every request from the cached chain until invalidated.
//
// The build path runs under a mutex, so concurrent first requests after an
// invalidation produce exactly one build. Registry changes flip a stale
// flag through a subscription installed before the snapshot is taken, so a
// registration landing while a build is in flight can never be lost: it is
// either in the snapshot or it marks the fresh build stale.
type Dispatcher struct {
	reg       *registry.Registry
	newRouter func() router.Router
	logger    *slog.Logger

	// stale is set by the registry subscription. It is an atomic rather
	// than mu-guarded state so the callback never blocks, even when a
	// change happens on the goroutine that is holding mu to build.
	stale atomic.Bool

	mu        sync.Mutex
	order     []string
	cached    http.Handler
	cancelSub func()
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithPhaseOrder sets the initial phase order.
func WithPhaseOrder(names []string) DispatcherOption {
	return func(d *Dispatcher) { d.order = append([]string(nil), names...) }
}

// WithRouterFactory overrides how the dispatcher obtains a fresh router for
// each build. The default builds onto a new Chain.
func WithRouterFactory(fn func() router.Router) DispatcherOption {
	return func(d *Dispatcher) { d.newRouter = fn }
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(reg *registry.Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		reg:       reg,
		newRouter: func() router.Router { return router.NewChain() },
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ServeHTTP delegates the request to the cached pipeline, building it first
// if necessary. A request keeps the pipeline it started with even if an
// invalidation lands mid-flight.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.current().ServeHTTP(w, r)
}

// SetPhaseOrder replaces the phase order configuration and invalidates the
// cached pipeline.
func (d *Dispatcher) SetPhaseOrder(names []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.order = append([]string(nil), names...)
	d.invalidateLocked()
}

// Invalidate drops the cached pipeline and cancels the registry
// subscription. The next request rebuilds from scratch.
func (d *Dispatcher) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invalidateLocked()
}

func (d *Dispatcher) invalidateLocked() {
	if d.cancelSub != nil {
		d.cancelSub()
		d.cancelSub = nil
	}
	if d.cached != nil {
		d.cached = nil
		d.logger.Debug("pipeline invalidated")
	}
}

// current returns the cached pipeline, building it on demand.
func (d *Dispatcher) current() http.Handler {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != nil && !d.stale.Load() {
		return d.cached
	}
	d.cached = nil

	// Subscribe before snapshotting: a registration landing from here on
	// either appears in the snapshot or flips the stale flag. Taking the
	// snapshot first would drop both.
	if d.cancelSub == nil {
		d.cancelSub = d.reg.Subscribe(func() { d.stale.Store(true) })
	}

	d.stale.Store(false)
	order := OrderConfig(d.order)
	entries := d.reg.Snapshot()
	phases := ResolvePhases(entries, order)
	built := Build(phases, d.newRouter())

	d.logger.Debug("pipeline built",
		slog.Int("entries", len(entries)),
		slog.Int("phases", len(phases)))

	if d.stale.Load() {
		// A change landed mid-build. Serve this pipeline for the current
		// request only and leave the cache empty so the next dispatch
		// rebuilds from a snapshot that includes the change.
		return built
	}

	d.cached = built
	return d.cached
}
