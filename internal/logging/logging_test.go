package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ssebasarias/Dahell/internal/logtail"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dahell.log")

	logger, level, err := New(Options{File: path, Level: "debug"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if level.Level() != zapcore.DebugLevel {
		t.Fatalf("level = %v, want debug", level.Level())
	}
	logger.With(zap.String("component", "test")).Warn("hello", zap.Int("n", 3))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	entry := logtail.Parse(strings.TrimSpace(string(data)))
	if entry.Message != "hello" || entry.Level != "warn" || entry.Component != "test" {
		t.Fatalf("entry = %#v", entry)
	}
	if entry.Time.IsZero() {
		t.Fatalf("expected RFC3339 timestamp, got %s", data)
	}
}

func TestParseLevel(t *testing.T) {
	for raw, want := range map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	} {
		level, err := ParseLevel(raw)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", raw, err)
		}
		if level.Level() != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, level.Level(), want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNew_EmptyFileFails(t *testing.T) {
	if _, _, err := New(Options{}); err == nil {
		t.Fatalf("expected error for empty log file")
	}
}
