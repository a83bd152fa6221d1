package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phasegate/phasegate/internal/storage/sqldb"
)

// AuditMiddleware records every completed request in the audit store.
// Recording failures are logged and attached to the request log fields,
// never surfaced to the client.
func AuditMiddleware(store *sqldb.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			rec := &sqldb.AuditRecord{
				RequestID: RequestID(r.Context()),
				Method:    r.Method,
				Path:      r.URL.Path,
				Status:    wrapped.statusCode,
				Duration:  time.Since(start),
			}
			if err := store.Record(r.Context(), rec); err != nil {
				AddError(r.Context(), err)
				logger.Error("failed to record audit entry",
					slog.String("request_id", rec.RequestID),
					slog.String("error", err.Error()))
			}
		})
	}
}
