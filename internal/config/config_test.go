package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
	if !cfg.Dataset.Watch {
		t.Error("Dataset.Watch should default to true")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  port: 9090
  base_path: /bandrec/
dataset:
  path: /srv/bands.csv
  watch: false
logging:
  level: debug
  format: text
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	// Trailing slash should be trimmed during validation.
	if cfg.Server.BasePath != "/bandrec" {
		t.Errorf("BasePath = %q, want /bandrec", cfg.Server.BasePath)
	}
	if cfg.Dataset.Path != "/srv/bands.csv" {
		t.Errorf("Dataset.Path = %q", cfg.Dataset.Path)
	}
	if cfg.Dataset.Watch {
		t.Error("Dataset.Watch = true, want false")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BR_PORT", "7070")
	t.Setenv("BR_DATASET_PATH", "/tmp/other.csv")
	t.Setenv("BR_DATASET_WATCH", "false")
	t.Setenv("BR_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Dataset.Path != "/tmp/other.csv" {
		t.Errorf("Dataset.Path = %q", cfg.Dataset.Path)
	}
	if cfg.Dataset.Watch {
		t.Error("Dataset.Watch = true, want false")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("BR_PORT", "0")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for port 0")
	}
}
