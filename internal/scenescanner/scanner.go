package scenescanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneEntry represents a scene file found in a scene directory
type SceneEntry struct {
	Name   string // Display name (file name without extension)
	Path   string // Full path to the scene file
	Format string // "yaml" or "json"
}

// sceneFormats maps accepted extensions to loader formats
var sceneFormats = map[string]string{
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
}

// ScanSceneDirectory lists the scene files in dir, sorted by name.
// Subdirectories and hidden files are skipped; so are files using the
// ".config." infix, which hold run settings rather than scenes.
func ScanSceneDirectory(dir string) ([]SceneEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene directory: %w", err)
	}

	var scenes []SceneEntry
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.Contains(strings.ToLower(name), ".config.") {
			continue
		}

		ext := strings.ToLower(filepath.Ext(name))
		format, ok := sceneFormats[ext]
		if !ok {
			continue
		}

		scenes = append(scenes, SceneEntry{
			Name:   strings.TrimSuffix(name, filepath.Ext(name)),
			Path:   filepath.Join(dir, name),
			Format: format,
		})
	}

	sort.Slice(scenes, func(i, j int) bool { return scenes[i].Name < scenes[j].Name })
	return scenes, nil
}
