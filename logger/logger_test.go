package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"runetick/config"
)

// go test -v --run TestNewInvalidLevel
func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

// go test -v --run TestNewWritesFile
func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runetick.log")

	log, err := New(config.LogConfig{
		Level:       "info",
		Format:      "json",
		OutputFile:  path,
		Environment: "prod",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	log.Info("price refreshed")
	log.Debug("below level")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"price refreshed"`) || !strings.Contains(out, `"service":"runetick"`) {
		t.Errorf("unexpected log output: %s", out)
	}
	if strings.Contains(out, "below level") {
		t.Error("debug entry should be filtered at info level")
	}
}
