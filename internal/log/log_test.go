package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitLevelFiltersOutput(t *testing.T) {
	defer SetOutput(os.Stderr)

	if err := Init(Options{Level: "warn"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	var buf bytes.Buffer
	SetOutput(&buf)

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info to be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("Expected warning in output, got %q", out)
	}

	if err := Init(Options{Level: "info"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init(Options{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestWithFieldsAndFile(t *testing.T) {
	defer func() {
		_ = Init(Options{Level: "info"})
	}()

	path := filepath.Join(t.TempDir(), "sunmap.log")
	if err := Init(Options{Level: "info", File: path}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	WithFields(Fields{"run_id": "abc", "height_ft": 3.0}).Info("run started")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "run_id=abc") {
		t.Errorf("Expected run_id field in log file, got %q", string(data))
	}
}
