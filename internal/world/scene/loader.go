package scene

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"chosenoffset.com/sunmap/internal/core/shadows"
)

const (
	// FenceHalfThicknessFt treats a fence as a ~2 inch thick vertical surface
	FenceHalfThicknessFt = 0.164

	// treeSegments is the vertex count of the polygon approximating a canopy
	treeSegments = 64
)

// LocationData is the "location" section of a scene file
type LocationData struct {
	Latitude  *float64 `yaml:"latitude" json:"latitude"`
	Longitude *float64 `yaml:"longitude" json:"longitude"`
	Timezone  string   `yaml:"timezone" json:"timezone"`
}

// BoundsData is the optional "bounds" section; any missing edge is inferred
type BoundsData struct {
	XMin      *float64 `yaml:"x_min" json:"x_min"`
	XMax      *float64 `yaml:"x_max" json:"x_max"`
	YMin      *float64 `yaml:"y_min" json:"y_min"`
	YMax      *float64 `yaml:"y_max" json:"y_max"`
	PaddingFt *float64 `yaml:"padding_ft" json:"padding_ft"`
}

// ObjectData describes one obstacle in a scene file
type ObjectData struct {
	Type      string      `yaml:"type" json:"type"`           // structure, deck, fence, tree
	Name      string      `yaml:"name" json:"name"`           // Optional display name
	HeightFt  *float64    `yaml:"height_ft" json:"height_ft"` // Required for every type
	Footprint [][]float64 `yaml:"footprint" json:"footprint"` // structure/deck outline
	Polyline  [][]float64 `yaml:"polyline" json:"polyline"`   // fence path
	Center    []float64   `yaml:"center" json:"center"`       // tree trunk position
	RadiusFt  float64     `yaml:"radius_ft" json:"radius_ft"` // tree canopy radius
}

// SceneData represents a scene file before validation
type SceneData struct {
	Name           string        `yaml:"name" json:"name"`
	Location       *LocationData `yaml:"location" json:"location"`
	OrientationDeg float64       `yaml:"orientation_deg_cw_from_north" json:"orientation_deg_cw_from_north"`
	Bounds         *BoundsData   `yaml:"bounds" json:"bounds"`
	Objects        []ObjectData  `yaml:"objects" json:"objects"`
}

// LoadFile loads a scene from a YAML or JSON file, chosen by extension
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file %s: %w", path, err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	sc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Parse decodes and validates scene data. Format is "yaml", "yml" or "json".
func Parse(data []byte, format string) (*Scene, error) {
	var raw SceneData
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse scene yaml: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse scene json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scene format %q: must be yaml or json", format)
	}

	return Build(&raw)
}

// Build converts decoded scene data into a validated Scene
func Build(raw *SceneData) (*Scene, error) {
	if raw.Location == nil {
		return nil, &SceneValidationError{Field: "location", Reason: "section is required"}
	}
	loc, err := buildLocation(raw.Location)
	if err != nil {
		return nil, err
	}

	var obstacles []shadows.Obstacle
	for i, obj := range raw.Objects {
		parsed, err := buildObject(obj, i)
		if err != nil {
			return nil, err
		}
		obstacles = append(obstacles, parsed...)
	}

	bounds, err := resolveBounds(raw.Bounds, obstacles)
	if err != nil {
		return nil, err
	}

	return New(raw.Name, loc, raw.OrientationDeg, obstacles, bounds)
}

func buildLocation(data *LocationData) (Location, error) {
	if data.Latitude == nil {
		return Location{}, &SceneValidationError{Field: "location.latitude", Reason: "is required"}
	}
	if data.Longitude == nil {
		return Location{}, &SceneValidationError{Field: "location.longitude", Reason: "is required"}
	}
	if *data.Latitude < -90 || *data.Latitude > 90 {
		return Location{}, &SceneValidationError{Field: "location.latitude", Reason: fmt.Sprintf("%g is outside [-90, 90]", *data.Latitude)}
	}
	if *data.Longitude < -180 || *data.Longitude > 180 {
		return Location{}, &SceneValidationError{Field: "location.longitude", Reason: fmt.Sprintf("%g is outside [-180, 180]", *data.Longitude)}
	}
	if data.Timezone == "" {
		return Location{}, &SceneValidationError{Field: "location.timezone", Reason: "is required"}
	}

	return Location{
		Latitude:  *data.Latitude,
		Longitude: *data.Longitude,
		Timezone:  data.Timezone,
	}, nil
}

// buildObject expands one scene object into one or more obstacles
func buildObject(obj ObjectData, index int) ([]shadows.Obstacle, error) {
	kind := strings.ToLower(obj.Type)
	name := obj.Name
	if name == "" {
		name = fmt.Sprintf("%s#%d", kind, index)
	}

	if kind == "" {
		return nil, &SceneValidationError{Object: name, Field: "type", Reason: "is required"}
	}
	if obj.HeightFt == nil {
		return nil, &SceneValidationError{Object: name, Field: "height_ft", Reason: "is required"}
	}
	height := *obj.HeightFt

	switch kind {
	case "structure", "deck":
		if obj.Footprint == nil {
			return nil, &SceneValidationError{Object: name, Field: "footprint", Reason: "is required for " + kind}
		}
		footprint, err := toPoints(obj.Footprint, name, "footprint")
		if err != nil {
			return nil, err
		}
		o := shadows.Obstacle{Name: name, Kind: kind, Footprint: footprint, HeightFt: height}
		if err := ValidateObstacle(o, index); err != nil {
			return nil, err
		}
		return []shadows.Obstacle{o}, nil

	case "fence":
		if obj.Polyline == nil {
			return nil, &SceneValidationError{Object: name, Field: "polyline", Reason: "is required for fence"}
		}
		path, err := toPoints(obj.Polyline, name, "polyline")
		if err != nil {
			return nil, err
		}
		return fenceSegments(name, path, height, index)

	case "tree":
		if len(obj.Center) != 2 {
			return nil, &SceneValidationError{Object: name, Field: "center", Reason: "must be [x, y]"}
		}
		if !(obj.RadiusFt > 0) {
			return nil, &SceneValidationError{Object: name, Field: "radius_ft", Reason: "must be > 0"}
		}
		o := shadows.Obstacle{
			Name:      name,
			Kind:      kind,
			Footprint: Circle(shadows.Point{obj.Center[0], obj.Center[1]}, obj.RadiusFt, treeSegments),
			HeightFt:  height,
		}
		if err := ValidateObstacle(o, index); err != nil {
			return nil, err
		}
		return []shadows.Obstacle{o}, nil
	}

	return nil, &SceneValidationError{Object: name, Field: "type", Reason: fmt.Sprintf("unsupported object type %q", kind)}
}

func toPoints(coords [][]float64, name, field string) (shadows.Polygon, error) {
	points := make(shadows.Polygon, 0, len(coords))
	for i, c := range coords {
		if len(c) != 2 {
			return nil, &SceneValidationError{Object: name, Field: field, Reason: fmt.Sprintf("entry %d must be an [x, y] pair", i)}
		}
		points = append(points, shadows.Point{c[0], c[1]})
	}

	// A trailing copy of the first vertex is allowed and dropped
	if field == "footprint" && len(points) > 3 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}
	return points, nil
}

// fenceSegments turns each leg of a fence polyline into a thin rectangle.
// Separate legs keep shadow hulls tight around corners.
func fenceSegments(name string, path shadows.Polygon, height float64, index int) ([]shadows.Obstacle, error) {
	if len(path) < 2 {
		return nil, &SceneValidationError{Object: name, Field: "polyline", Reason: "needs at least 2 points"}
	}

	var legs []shadows.Obstacle
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		dx, dy := b[0]-a[0], b[1]-a[1]
		length := math.Hypot(dx, dy)
		if length == 0 {
			return nil, &SceneValidationError{Object: name, Field: "polyline", Reason: fmt.Sprintf("points %d and %d coincide", i, i+1)}
		}

		// Unit normal scaled to the half thickness
		nx := -dy / length * FenceHalfThicknessFt
		ny := dx / length * FenceHalfThicknessFt

		legName := name
		if len(path) > 2 {
			legName = fmt.Sprintf("%s/%d", name, i+1)
		}
		leg := shadows.Obstacle{
			Name: legName,
			Kind: "fence",
			Footprint: shadows.Polygon{
				{a[0] - nx, a[1] - ny},
				{b[0] - nx, b[1] - ny},
				{b[0] + nx, b[1] + ny},
				{a[0] + nx, a[1] + ny},
			},
			HeightFt: height,
		}
		if err := ValidateObstacle(leg, index); err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}

	return legs, nil
}

// Circle approximates a circle with a regular polygon
func Circle(center shadows.Point, radius float64, segments int) shadows.Polygon {
	poly := make(shadows.Polygon, segments)
	for i := range poly {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		poly[i] = shadows.Point{
			center[0] + radius*math.Cos(theta),
			center[1] + radius*math.Sin(theta),
		}
	}
	return poly
}

// resolveBounds uses explicit edges where given and infers the rest
func resolveBounds(data *BoundsData, obstacles []shadows.Obstacle) (Bounds, error) {
	padding := DefaultPaddingFt
	if data != nil && data.PaddingFt != nil {
		padding = *data.PaddingFt
		if padding < 0 {
			return Bounds{}, &SceneValidationError{Field: "bounds.padding_ft", Reason: "must be >= 0"}
		}
	}

	inferred, ok := InferBounds(obstacles, padding)
	if !ok {
		if data == nil || data.XMin == nil || data.XMax == nil || data.YMin == nil || data.YMax == nil {
			return Bounds{}, &SceneValidationError{
				Field:  "bounds",
				Reason: "a scene without objects requires x_min, x_max, y_min and y_max",
			}
		}
	}

	b := inferred
	if data != nil {
		if data.XMin != nil {
			b.XMin = *data.XMin
		}
		if data.XMax != nil {
			b.XMax = *data.XMax
		}
		if data.YMin != nil {
			b.YMin = *data.YMin
		}
		if data.YMax != nil {
			b.YMax = *data.YMax
		}
	}

	return b, b.Validate()
}
