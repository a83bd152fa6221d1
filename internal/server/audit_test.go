package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phasegate/phasegate/internal/storage/sqldb"
)

func TestAuditMiddleware_RecordsRequest(t *testing.T) {
	store, err := sqldb.New("file:auditmw1?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	srv := New(0, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), store)
	srv.Mount(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	srv.Router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/thing", nil))

	recs, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d audit records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Method != "GET" || rec.Path != "/thing" || rec.Status != http.StatusNoContent {
		t.Errorf("record = %+v, want GET /thing 204", rec)
	}
	if rec.RequestID == "" {
		t.Error("record missing request ID")
	}
}

func TestAuditMiddleware_RecordFailureStaysServerSide(t *testing.T) {
	store, err := sqldb.New("file:auditmw2?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	store.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := LoggingMiddleware(logger)(AuditMiddleware(store, logger)(ok))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/thing", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, audit failure must not reach the client", rec.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "failed to record audit entry") {
		t.Errorf("record failure not logged:\n%s", out)
	}
	if !strings.Contains(out, "error=") {
		t.Errorf("record failure not attached to the request log:\n%s", out)
	}
}
