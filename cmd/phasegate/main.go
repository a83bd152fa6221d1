package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/phasegate/phasegate/internal/builtin"
	"github.com/phasegate/phasegate/internal/registry"
	"github.com/phasegate/phasegate/internal/router"
	"github.com/phasegate/phasegate/internal/runtime"
)

func main() {
	// Load .env if present; real env vars win.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	opts := []runtime.Option{runtime.WithLogger(logger)}
	if path := os.Getenv("PHASEGATE_CONFIG"); path != "" {
		opts = append(opts, runtime.WithFileConfig(path))
	}

	eng, err := runtime.New(opts...)
	if err != nil {
		logger.Error("failed to create engine", slog.String("error", err.Error()))
		os.Exit(1)
	}

	reg := eng.Registry()
	if err := builtin.RegisterDefaults(reg, logger); err != nil {
		logger.Error("failed to register builtins", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := registerDemo(reg, logger); err != nil {
		logger.Error("failed to register demo handlers", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	if err := eng.Start(ctx); err != nil {
		logger.Error("failed to start engine", slog.String("error", err.Error()))
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := eng.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// registerDemo wires a minimal pipeline so the server answers something out
// of the box: CORS in its own phase plus a hello route.
func registerDemo(reg *registry.Registry, logger *slog.Logger) error {
	if _, err := reg.Register(builtin.CORS("*"), registry.Spec{
		Name:  "cors",
		Phase: "cors",
	}); err != nil {
		return err
	}

	if _, err := reg.Register(builtin.RequestLog(logger), registry.Spec{
		Name:  "request-log",
		Phase: "log",
	}); err != nil {
		return err
	}

	hello := func(w http.ResponseWriter, r *http.Request, next router.Next) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("hello from phasegate\n"))
	}
	if _, err := reg.Register(hello, registry.Spec{
		Name:   "hello",
		Phase:  "route",
		Path:   "/hello",
		Method: http.MethodGet,
	}); err != nil {
		return err
	}

	return nil
}
