package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stagewire/cuemesh/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"json to stdout", config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}},
		{"text to stderr", config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}},
		{"unknown values fall back", config.LoggingConfig{Level: "loud", Format: "xml", Output: "pipe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if logger := New(tt.cfg, "0.1.0"); logger == nil {
				t.Fatal("New() = nil")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"shouting", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWith(t *testing.T) {
	logger := New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "0.1.0")

	child := logger.With("component", "transport")
	if child == nil {
		t.Fatal("With() = nil")
	}
	if child == logger {
		t.Error("With() returned the parent logger")
	}
}

func TestDefault(t *testing.T) {
	if logger := Default(); logger == nil {
		t.Fatal("Default() = nil")
	}
}

func TestDefaultFieldsAppearInOutput(t *testing.T) {
	var buf bytes.Buffer

	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}).
		WithAttrs([]slog.Attr{
			slog.String("service", "cuemesh"),
			slog.String("version", "test"),
		})

	logger := &Logger{Logger: slog.New(handler)}
	logger.Info("cue pointer moved", "group", 3)

	output := buf.String()
	if !strings.Contains(output, `"service":"cuemesh"`) {
		t.Errorf("output missing service field: %s", output)
	}
	if !strings.Contains(output, `"version":"test"`) {
		t.Errorf("output missing version field: %s", output)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "cue pointer moved" {
		t.Errorf("msg = %v, want %q", entry["msg"], "cue pointer moved")
	}
	if entry["group"] != float64(3) {
		t.Errorf("group = %v, want 3", entry["group"])
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer

	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: parseLevel("info")})
	logger := &Logger{Logger: slog.New(handler)}

	logger.Debug("daemon fetch returned nothing")
	if buf.Len() != 0 {
		t.Errorf("debug line emitted at info level: %s", buf.String())
	}

	logger.Warn("show compiled with warnings")
	if buf.Len() == 0 {
		t.Error("warn line suppressed at info level")
	}
}
