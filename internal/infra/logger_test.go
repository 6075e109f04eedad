package infra

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_WritesFile(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Dir = t.TempDir()
	cfg.Logging.Level = "debug"
	cfg.Console.Enabled = true

	logger := NewLogger(cfg)
	logger.Debug("hello", slog.String("k", "v"))

	data, err := os.ReadFile(filepath.Join(cfg.Logging.Dir, "app.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected log output in app.log")
	}
}
