package runtime

import (
	"fmt"
	"log/slog"

	"github.com/phasegate/phasegate/internal/config"
	"github.com/phasegate/phasegate/internal/registry"
	"github.com/phasegate/phasegate/internal/storage/sqldb"
)

// Option is a functional option for configuring an Engine.
type Option func(*Engine) error

// WithFileConfig uses file-based configuration with hot-reload. The file is
// watched for changes; a change to the phase order invalidates the cached
// pipeline.
func WithFileConfig(path string) Option {
	return func(e *Engine) error {
		provider, err := config.NewProvider(path, e.logger)
		if err != nil {
			return fmt.Errorf("create file config provider: %w", err)
		}
		e.cfgProvider = provider
		return nil
	}
}

// WithConfig uses a static, pre-built configuration. No hot-reload.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) error {
		if cfg == nil {
			return fmt.Errorf("config must not be nil")
		}
		e.cfg = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithPhaseOrder pins the phase order explicitly. It overrides the order in
// the configuration, including later reloads of a watched config file.
func WithPhaseOrder(names []string) Option {
	return func(e *Engine) error {
		e.phaseOrder = append([]string(nil), names...)
		e.phaseOrderSet = true
		return nil
	}
}

// WithAuditStore uses an existing audit store instead of opening one from
// the storage configuration. The engine closes it on Shutdown.
func WithAuditStore(store *sqldb.Store) Option {
	return func(e *Engine) error {
		if store == nil {
			return fmt.Errorf("audit store must not be nil")
		}
		e.audit = store
		return nil
	}
}

// WithRegistry uses an existing middleware registry instead of creating an
// empty one. Useful when registrations happen before the engine exists.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) error {
		if reg == nil {
			return fmt.Errorf("registry must not be nil")
		}
		e.registry = reg
		return nil
	}
}
