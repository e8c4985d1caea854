package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidLevelAndFormat(t *testing.T) {
	for _, s := range []string{"debug", "info", "warn", "error"} {
		if !ValidLevel(s) {
			t.Errorf("ValidLevel(%q) = false", s)
		}
	}
	if ValidLevel("trace") {
		t.Error("ValidLevel(trace) = true")
	}
	if !ValidFormat("text") || !ValidFormat("json") {
		t.Error("text/json should be valid formats")
	}
	if ValidFormat("xml") {
		t.Error("ValidFormat(xml) = true")
	}
}

func TestManagerSetLevel(t *testing.T) {
	mgr, logger := NewManager(Config{Level: "info", Format: "text"})
	defer mgr.Close() //nolint:errcheck

	if logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("debug should be disabled at info level")
	}

	mgr.SetLevel("debug")
	if !logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("debug should be enabled after SetLevel")
	}
	if mgr.Config().Level != "debug" {
		t.Errorf("Config().Level = %q, want debug", mgr.Config().Level)
	}
}

func TestConfigString(t *testing.T) {
	c := Config{Level: "info", Format: "json"}
	if got := c.String(); got != "level=info format=json" {
		t.Errorf("String() = %q", got)
	}

	c.FilePath = "/var/log/bandrec.log"
	c.FileMaxSizeMB = 10
	c.FileMaxFiles = 2
	c.FileMaxAgeDays = 7
	want := "level=info format=json file=/var/log/bandrec.log max_size=10MB max_files=2 max_age=7d"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
