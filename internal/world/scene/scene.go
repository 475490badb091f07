// Package scene holds the yard model: obstacles with footprints and heights,
// the site location, and the rectangular region sampled by the exposure grid.
// All coordinates are in feet in the yard's local frame.
package scene

import (
	"fmt"
	"math"

	"chosenoffset.com/sunmap/internal/core/shadows"
)

// DefaultPaddingFt is added around the obstacle bounding box when bounds are inferred
const DefaultPaddingFt = 6.56

// Location identifies where the yard is on Earth
type Location struct {
	Latitude  float64
	Longitude float64
	Timezone  string // IANA name, e.g. "America/Denver"
}

// Bounds is the rectangle covered by the sampling grid
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Width returns the X span of the bounds
func (b Bounds) Width() float64 { return b.XMax - b.XMin }

// Height returns the Y span of the bounds
func (b Bounds) Height() float64 { return b.YMax - b.YMin }

// Validate checks that the bounds form a non-degenerate rectangle
func (b Bounds) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{{"x_min", b.XMin}, {"x_max", b.XMax}, {"y_min", b.YMin}, {"y_max", b.YMax}} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &SceneValidationError{Field: "bounds." + f.name, Reason: "must be finite"}
		}
	}
	if b.XMax <= b.XMin {
		return &SceneValidationError{Field: "bounds.x_max", Reason: fmt.Sprintf("x_max %g must exceed x_min %g", b.XMax, b.XMin)}
	}
	if b.YMax <= b.YMin {
		return &SceneValidationError{Field: "bounds.y_max", Reason: fmt.Sprintf("y_max %g must exceed y_min %g", b.YMax, b.YMin)}
	}
	return nil
}

// Scene is a validated yard, read-only once loaded
type Scene struct {
	Name           string
	Location       Location
	OrientationDeg float64 // Yard +Y axis, clockwise from true north
	Obstacles      []shadows.Obstacle
	Bounds         Bounds
}

// Projector returns a shadow projector for this yard at the given evaluation height
func (s *Scene) Projector(evalHeightFt float64) shadows.Projector {
	return shadows.Projector{
		EvalHeightFt:   evalHeightFt,
		OrientationDeg: s.OrientationDeg,
	}
}

// New validates obstacles and bounds and returns the scene
func New(name string, loc Location, orientationDeg float64, obstacles []shadows.Obstacle, bounds Bounds) (*Scene, error) {
	for i, o := range obstacles {
		if err := ValidateObstacle(o, i); err != nil {
			return nil, err
		}
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	return &Scene{
		Name:           name,
		Location:       loc,
		OrientationDeg: orientationDeg,
		Obstacles:      obstacles,
		Bounds:         bounds,
	}, nil
}

// ValidateObstacle checks vertex count, height and footprint area
func ValidateObstacle(o shadows.Obstacle, index int) error {
	name := o.Name
	if name == "" {
		name = fmt.Sprintf("#%d", index)
	}

	if len(o.Footprint) < 3 {
		return &SceneValidationError{Object: name, Field: "footprint", Reason: fmt.Sprintf("has %d vertices, need at least 3", len(o.Footprint))}
	}
	for i, v := range o.Footprint {
		if math.IsNaN(v[0]) || math.IsNaN(v[1]) || math.IsInf(v[0], 0) || math.IsInf(v[1], 0) {
			return &SceneValidationError{Object: name, Field: "footprint", Reason: fmt.Sprintf("vertex %d is not finite", i)}
		}
		if next := o.Footprint[(i+1)%len(o.Footprint)]; next == v {
			return &SceneValidationError{Object: name, Field: "footprint", Reason: fmt.Sprintf("vertex %d repeats its neighbour", i)}
		}
	}
	if shadows.SelfIntersects(o.Footprint) {
		return &SceneValidationError{Object: name, Field: "footprint", Reason: "self-intersecting"}
	}
	if shadows.Area(o.Footprint) <= 0 {
		return &SceneValidationError{Object: name, Field: "footprint", Reason: "polygon has zero area"}
	}
	if !(o.HeightFt > 0) || math.IsInf(o.HeightFt, 0) {
		return &SceneValidationError{Object: name, Field: "height_ft", Reason: fmt.Sprintf("must be > 0, got %g", o.HeightFt)}
	}
	return nil
}

// InferBounds returns the obstacle bounding box grown by padding on every side
func InferBounds(obstacles []shadows.Obstacle, paddingFt float64) (Bounds, bool) {
	if len(obstacles) == 0 {
		return Bounds{}, false
	}

	b := Bounds{
		XMin: math.Inf(1), XMax: math.Inf(-1),
		YMin: math.Inf(1), YMax: math.Inf(-1),
	}
	for _, o := range obstacles {
		ob := o.Footprint.Bound()
		b.XMin = math.Min(b.XMin, ob.Min[0])
		b.XMax = math.Max(b.XMax, ob.Max[0])
		b.YMin = math.Min(b.YMin, ob.Min[1])
		b.YMax = math.Max(b.YMax, ob.Max[1])
	}

	b.XMin -= paddingFt
	b.XMax += paddingFt
	b.YMin -= paddingFt
	b.YMax += paddingFt
	return b, true
}
