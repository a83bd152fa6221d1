// Package builtin provides stock pipeline middleware: CORS, request
// logging, panic recovery, and a JSON error responder for the ERROR phase.
package builtin

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phasegate/phasegate/internal/registry"
	"github.com/phasegate/phasegate/internal/router"
)

// CORS answers preflight requests and stamps CORS headers on everything
// else before continuing the chain.
func CORS(allowOrigin string) router.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return func(w http.ResponseWriter, r *http.Request, next router.Next) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(nil)
	}
}

// RequestLog logs each request passing through the pipeline, then
// continues.
func RequestLog(logger *slog.Logger) router.Handler {
	return func(w http.ResponseWriter, r *http.Request, next router.Next) {
		start := time.Now()
		next(nil)
		logger.Debug("pipeline handled request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)))
	}
}

// Recovery converts a panic anywhere downstream into error flow, so the
// ERROR-phase handlers produce the response instead of the connection
// dying.
func Recovery() router.Handler {
	return func(w http.ResponseWriter, r *http.Request, next router.Next) {
		defer func() {
			if v := recover(); v != nil {
				next(fmt.Errorf("handler panic: %v", v))
			}
		}()
		next(nil)
	}
}

// JSONError renders the pending error as a JSON body. It terminates error
// flow; it never calls next.
func JSONError(logger *slog.Logger) router.ErrorHandler {
	return func(err error, w http.ResponseWriter, r *http.Request, next router.Next) {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	}
}

// RegisterDefaults installs the stock middleware set: recovery first (no
// phase, so it sorts ahead of every configured phase), then the JSON error
// responder in the reserved ERROR phase.
func RegisterDefaults(reg *registry.Registry, logger *slog.Logger) error {
	if _, err := reg.Register(Recovery(), registry.Spec{Name: "recovery"}); err != nil {
		return fmt.Errorf("register recovery middleware: %w", err)
	}
	if _, err := reg.RegisterError(JSONError(logger), registry.Spec{Name: "json-error"}); err != nil {
		return fmt.Errorf("register error responder: %w", err)
	}
	return nil
}
