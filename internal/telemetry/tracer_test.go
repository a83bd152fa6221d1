package telemetry

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracer_ExportsSpansOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stop, err := InitTracer("tracer-test", &buf, logger)
	if err != nil {
		t.Fatalf("InitTracer() error = %v", err)
	}
	if stop == nil {
		t.Fatal("InitTracer() returned nil shutdown func")
	}

	_, span := otel.Tracer("tracer-test").Start(context.Background(), "unit-span")
	span.End()

	if err := stop(context.Background()); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "unit-span") {
		t.Errorf("exported output missing span name, got:\n%s", out)
	}
	if !strings.Contains(out, "tracer-test") {
		t.Errorf("exported output missing service name, got:\n%s", out)
	}
}
