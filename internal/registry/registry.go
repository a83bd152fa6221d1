// Package registry holds the live collection of middleware registrations
// the dispatcher builds its pipeline from. It notifies subscribers on every
// change so cached pipelines can be invalidated.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/phasegate/phasegate/internal/router"
)

// Kind distinguishes the two handler variants. The variant is fixed at
// registration, never inferred from the handler itself.
type Kind int

const (
	// KindNormal handlers run during regular request processing.
	KindNormal Kind = iota
	// KindError handlers run only after an earlier handler has signaled
	// failure.
	KindError
)

// PhaseError is the reserved phase name forced onto error-handler
// registrations. PhaseFinal is reserved for handlers that must sort after
// everything else. Both are appended to any configured phase order.
const (
	PhaseError = "ERROR"
	PhaseFinal = "FINAL"
)

// Entry is one registered handler plus its tags. Entries are immutable once
// created; they leave the registry only through Deregister.
type Entry struct {
	Name   string
	Phase  string
	Path   string
	Method string
	Kind   Kind

	Handler      router.Handler
	ErrorHandler router.ErrorHandler
}

// Registry is an observable, ordered collection of entries.
type Registry struct {
	mu      sync.RWMutex
	entries []*Entry
	subs    map[uint64]func()
	nextSub uint64
	logger  *slog.Logger
}

// New creates an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		subs:   make(map[uint64]func()),
		logger: logger,
	}
}

// Register validates the spec and adds a normal-variant entry. Subscribers
// are notified after the entry is visible.
func (r *Registry) Register(h router.Handler, spec Spec) (*Entry, error) {
	if h == nil {
		return nil, &ConfigError{Reason: "handler must not be nil"}
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	e := &Entry{
		Name:    spec.Name,
		Phase:   spec.Phase,
		Path:    spec.Path,
		Method:  spec.Method,
		Kind:    KindNormal,
		Handler: h,
	}
	r.add(e)
	return e, nil
}

// RegisterError validates the spec and adds an error-variant entry. The
// phase tag is forced to PhaseError regardless of what the spec says.
func (r *Registry) RegisterError(h router.ErrorHandler, spec Spec) (*Entry, error) {
	if h == nil {
		return nil, &ConfigError{Reason: "handler must not be nil"}
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	e := &Entry{
		Name:         spec.Name,
		Phase:        PhaseError,
		Path:         spec.Path,
		Method:       spec.Method,
		Kind:         KindError,
		ErrorHandler: h,
	}
	r.add(e)
	return e, nil
}

func (r *Registry) add(e *Entry) {
	r.mu.Lock()
	if e.Name == "" {
		e.Name = fmt.Sprintf("middleware-%s", uuid.New().String())
	}
	r.entries = append(r.entries, e)
	r.mu.Unlock()

	r.logger.Debug("middleware registered",
		slog.String("name", e.Name),
		slog.String("phase", e.Phase),
		slog.String("path", e.Path),
		slog.String("method", e.Method))

	r.notify()
}

// Deregister removes the entry with the given name. It returns true if an
// entry was removed, in which case subscribers are notified.
func (r *Registry) Deregister(name string) bool {
	r.mu.Lock()
	removed := false
	for i, e := range r.entries {
		if e.Name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			removed = true
			break
		}
	}
	r.mu.Unlock()

	if removed {
		r.logger.Debug("middleware deregistered", slog.String("name", name))
		r.notify()
	}
	return removed
}

// Snapshot returns the entries in registration order. The returned slice is
// a copy; the entries themselves are shared and immutable.
func (r *Registry) Snapshot() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Subscribe registers a change callback and returns a cancel function. The
// callback fires after every registration and deregistration. Cancel is
// safe to call more than once.
func (r *Registry) Subscribe(fn func()) (cancel func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

func (r *Registry) notify() {
	r.mu.RLock()
	fns := make([]func(), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()

	// Callbacks run outside the lock so they may touch the registry.
	for _, fn := range fns {
		fn()
	}
}
