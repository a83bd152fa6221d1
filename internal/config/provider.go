package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Provider loads configuration from a file and watches it for changes,
// calling a reload callback on every write.
type Provider struct {
	path   string
	logger *slog.Logger
}

// NewProvider creates a file-based config provider.
func NewProvider(path string, logger *slog.Logger) (*Provider, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{path: path, logger: logger}, nil
}

// Load reads the current configuration from the file.
func (p *Provider) Load(ctx context.Context) (*Config, error) {
	cfg, err := Load(p.path)
	if err != nil {
		return nil, err
	}

	p.logger.Info("config loaded", slog.String("path", p.path))
	return cfg, nil
}

// Watch watches the config file and calls onChange with the reloaded
// configuration on every write. It blocks until ctx is canceled or the
// watcher fails to start.
func (p *Provider) Watch(ctx context.Context, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.path); err != nil {
		return fmt.Errorf("watch %s: %w", p.path, err)
	}

	p.logger.Info("watching config file for changes", slog.String("path", p.path))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("config watch stopped")
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write != fsnotify.Write {
				continue
			}

			p.logger.Info("config file changed, reloading", slog.String("path", event.Name))

			cfg, err := Load(p.path)
			if err != nil {
				p.logger.Error("failed to reload config",
					slog.String("error", err.Error()),
					slog.String("path", p.path))
				continue
			}

			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("config watch error", slog.String("error", err.Error()))
		}
	}
}
