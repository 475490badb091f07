package scenescanner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanSceneDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"front.yml", "back.yaml", "side.JSON", "notes.txt", ".hidden.yaml", "run.config.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "archive.yaml"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	scenes, err := ScanSceneDirectory(dir)
	if err != nil {
		t.Fatalf("ScanSceneDirectory failed: %v", err)
	}

	if len(scenes) != 3 {
		t.Fatalf("Expected 3 scenes, got %d: %+v", len(scenes), scenes)
	}
	want := []struct{ name, format string }{{"back", "yaml"}, {"front", "yaml"}, {"side", "json"}}
	for i, w := range want {
		if scenes[i].Name != w.name || scenes[i].Format != w.format {
			t.Errorf("Scene %d: expected %s (%s), got %s (%s)", i, w.name, w.format, scenes[i].Name, scenes[i].Format)
		}
	}
	if scenes[0].Path != filepath.Join(dir, "back.yaml") {
		t.Errorf("Expected full path, got %s", scenes[0].Path)
	}
}

func TestScanSceneDirectoryMissing(t *testing.T) {
	if _, err := ScanSceneDirectory(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected error for missing directory")
	}
}
