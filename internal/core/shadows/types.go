package shadows

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Point represents a ground-plane position in feet (X east, Y north in yard coordinates)
type Point = orb.Point

// Polygon is an implicitly closed ring of at least three vertices.
// The closing vertex is never repeated.
type Polygon []Point

// Ring returns the polygon as an orb ring (not closed)
func (p Polygon) Ring() orb.Ring {
	return orb.Ring(p)
}

// Bound returns the axis-aligned bounding box of the polygon
func (p Polygon) Bound() orb.Bound {
	return orb.Ring(p).Bound()
}

// Obstacle is a vertical prism standing on the ground plane
type Obstacle struct {
	Name      string  // Identifier reported in errors
	Kind      string  // "structure", "deck", "fence", "tree"
	Footprint Polygon // Ground outline
	HeightFt  float64 // Height above ground, always > 0
}

// SunPosition is the apparent position of the sun for one instant
type SunPosition struct {
	AzimuthDeg   float64 // Compass bearing, clockwise from north, [0, 360)
	ElevationDeg float64 // Angle above the horizon, (-90, 90]
}

// IsNight reports whether the sun is at or below the horizon
func (s SunPosition) IsNight() bool {
	return s.ElevationDeg <= 0
}

// Shadow is the ground-plane region one obstacle occludes for one sun position
type Shadow struct {
	Obstacle string
	Polygon  Polygon
	Bound    orb.Bound
}

// Frame holds every shadow cast for a single time step.
// When Night is set, Shadows is empty and every point is unlit.
type Frame struct {
	Sun     SunPosition
	Night   bool
	Shadows []Shadow
}

// GeometryError reports a malformed polygon found while projecting shadows
type GeometryError struct {
	Obstacle string
	Reason   string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry error for obstacle %q: %s", e.Obstacle, e.Reason)
}
