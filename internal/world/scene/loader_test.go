package scene

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const yardYAML = `
name: backyard
location:
  latitude: 39.74
  longitude: -104.99
  timezone: America/Denver
orientation_deg_cw_from_north: 12.5
objects:
  - type: structure
    name: house
    height_ft: 22
    footprint: [[0, 0], [30, 0], [30, 20], [0, 20]]
  - type: fence
    name: back fence
    height_ft: 6
    polyline: [[0, 40], [30, 40], [30, 25]]
  - type: tree
    name: maple
    height_ft: 35
    center: [15, 32]
    radius_ft: 8
  - type: deck
    height_ft: 2
    footprint: [[0, 20], [10, 20], [10, 26], [0, 26], [0, 20]]
`

func TestParseYAMLScene(t *testing.T) {
	sc, err := Parse([]byte(yardYAML), "yaml")
	if err != nil {
		t.Fatalf("Failed to parse scene: %v", err)
	}

	if sc.Name != "backyard" {
		t.Errorf("Expected name 'backyard', got '%s'", sc.Name)
	}
	if sc.Location.Timezone != "America/Denver" {
		t.Errorf("Expected timezone 'America/Denver', got '%s'", sc.Location.Timezone)
	}
	if sc.OrientationDeg != 12.5 {
		t.Errorf("Expected orientation 12.5, got %f", sc.OrientationDeg)
	}

	// house + 2 fence legs + tree + deck
	if len(sc.Obstacles) != 5 {
		t.Fatalf("Expected 5 obstacles, got %d", len(sc.Obstacles))
	}

	if sc.Obstacles[1].Name != "back fence/1" || sc.Obstacles[2].Name != "back fence/2" {
		t.Errorf("Expected fence legs to be numbered, got '%s' and '%s'", sc.Obstacles[1].Name, sc.Obstacles[2].Name)
	}

	tree := sc.Obstacles[3]
	if len(tree.Footprint) != treeSegments {
		t.Errorf("Expected tree footprint with %d vertices, got %d", treeSegments, len(tree.Footprint))
	}

	deck := sc.Obstacles[4]
	if deck.Name != "deck#3" {
		t.Errorf("Expected default name 'deck#3', got '%s'", deck.Name)
	}
	if len(deck.Footprint) != 4 {
		t.Errorf("Expected closing vertex to be dropped, got %d vertices", len(deck.Footprint))
	}

	// Inferred bounds: objects span x [0, 30], y [0, 40.164]
	if math.Abs(sc.Bounds.XMin-(-DefaultPaddingFt)) > 1e-9 {
		t.Errorf("Expected x_min %f, got %f", -DefaultPaddingFt, sc.Bounds.XMin)
	}
	if math.Abs(sc.Bounds.YMax-(40+FenceHalfThicknessFt+DefaultPaddingFt)) > 1e-9 {
		t.Errorf("Expected y_max %f, got %f", 40+FenceHalfThicknessFt+DefaultPaddingFt, sc.Bounds.YMax)
	}
}

func TestFenceLegIsThinRectangle(t *testing.T) {
	sc, err := Parse([]byte(yardYAML), "yaml")
	if err != nil {
		t.Fatalf("Failed to parse scene: %v", err)
	}

	leg := sc.Obstacles[1]
	b := leg.Footprint.Bound()
	if math.Abs((b.Max[1]-b.Min[1])-2*FenceHalfThicknessFt) > 1e-9 {
		t.Errorf("Expected fence thickness %f, got %f", 2*FenceHalfThicknessFt, b.Max[1]-b.Min[1])
	}
	if math.Abs((b.Max[0]-b.Min[0])-30) > 1e-9 {
		t.Errorf("Expected flat caps (length 30), got %f", b.Max[0]-b.Min[0])
	}
}

func TestParseJSONWithExplicitBounds(t *testing.T) {
	data := `{
		"location": {"latitude": 51.5, "longitude": -0.12, "timezone": "Europe/London"},
		"bounds": {"x_min": -5, "x_max": 25, "y_min": -5},
		"objects": [
			{"type": "structure", "name": "shed", "height_ft": 8,
			 "footprint": [[0, 0], [10, 0], [10, 10], [0, 10]]}
		]
	}`

	sc, err := Parse([]byte(data), "json")
	if err != nil {
		t.Fatalf("Failed to parse scene: %v", err)
	}

	if sc.Bounds.XMin != -5 || sc.Bounds.XMax != 25 || sc.Bounds.YMin != -5 {
		t.Errorf("Expected explicit edges to be kept, got %+v", sc.Bounds)
	}
	if math.Abs(sc.Bounds.YMax-(10+DefaultPaddingFt)) > 1e-9 {
		t.Errorf("Expected inferred y_max %f, got %f", 10+DefaultPaddingFt, sc.Bounds.YMax)
	}
}

func TestParseValidationErrors(t *testing.T) {
	loc := `location: {latitude: 40, longitude: -105, timezone: UTC}
`
	tests := []struct {
		name      string
		body      string
		wantObj   string
		wantField string
	}{
		{"missing location", "objects: []\n", "", "location"},
		{"no objects no bounds", loc, "", "bounds"},
		{"two vertices", loc + "objects:\n  - {type: structure, name: a, height_ft: 3, footprint: [[0,0],[1,1]]}\n", "a", "footprint"},
		{"zero height", loc + "objects:\n  - {type: structure, name: b, height_ft: 0, footprint: [[0,0],[1,0],[1,1]]}\n", "b", "height_ft"},
		{"negative height", loc + "objects:\n  - {type: deck, name: c, height_ft: -2, footprint: [[0,0],[1,0],[1,1]]}\n", "c", "height_ft"},
		{"missing height", loc + "objects:\n  - {type: deck, name: d, footprint: [[0,0],[1,0],[1,1]]}\n", "d", "height_ft"},
		{"collinear footprint", loc + "objects:\n  - {type: structure, name: e, height_ft: 3, footprint: [[0,0],[1,0],[2,0]]}\n", "e", "footprint"},
		{"self-intersecting footprint", loc + "objects:\n  - {type: structure, name: h, height_ft: 5, footprint: [[0,0],[10,10],[10,0],[0,20]]}\n", "h", "footprint"},
		{"bad tree radius", loc + "objects:\n  - {type: tree, name: f, height_ft: 3, center: [0, 0], radius_ft: 0}\n", "f", "radius_ft"},
		{"unknown type", loc + "objects:\n  - {type: pond, name: g, height_ft: 3}\n", "g", "type"},
		{"degenerate bounds", loc + "bounds: {x_min: 0, x_max: 0, y_min: 0, y_max: 5}\n", "", "bounds.x_max"},
	}

	for _, tc := range tests {
		_, err := Parse([]byte(tc.body), "yaml")
		var sve *SceneValidationError
		if !errors.As(err, &sve) {
			t.Errorf("%s: expected SceneValidationError, got %v", tc.name, err)
			continue
		}
		if sve.Object != tc.wantObj || sve.Field != tc.wantField {
			t.Errorf("%s: expected object %q field %q, got object %q field %q", tc.name, tc.wantObj, tc.wantField, sve.Object, sve.Field)
		}
	}
}

func TestLoadFileByExtension(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "garden.yml")
	if err := os.WriteFile(path, []byte(yardYAML), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	sc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Failed to load scene: %v", err)
	}
	if len(sc.Obstacles) != 5 {
		t.Errorf("Expected 5 obstacles, got %d", len(sc.Obstacles))
	}

	txt := filepath.Join(dir, "garden.txt")
	if err := os.WriteFile(txt, []byte(yardYAML), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	if _, err := LoadFile(txt); err == nil {
		t.Error("Expected error for unsupported extension")
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
