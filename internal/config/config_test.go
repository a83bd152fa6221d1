package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "phasegate" {
		t.Errorf("Telemetry.ServiceName = %q, want phasegate", cfg.Telemetry.ServiceName)
	}
	if len(cfg.Pipeline.PhasesByOrder) != 0 {
		t.Errorf("PhasesByOrder = %v, want empty", cfg.Pipeline.PhasesByOrder)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
pipeline:
  phases_by_order: [log, cors, auth, route]
storage:
  driver: sqlite
  dsn: ":memory:"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	want := []string{"log", "cors", "auth", "route"}
	if len(cfg.Pipeline.PhasesByOrder) != len(want) {
		t.Fatalf("PhasesByOrder = %v, want %v", cfg.Pipeline.PhasesByOrder, want)
	}
	for i := range want {
		if cfg.Pipeline.PhasesByOrder[i] != want[i] {
			t.Errorf("PhasesByOrder[%d] = %q, want %q", i, cfg.Pipeline.PhasesByOrder[i], want[i])
		}
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	t.Setenv("PHASEGATE_SERVER_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want env override 7070", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}
