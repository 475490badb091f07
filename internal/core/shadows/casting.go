package shadows

import (
	"fmt"
	"math"
)

// minHullArea is the smallest shadow hull area (square feet) that is not degenerate
const minHullArea = 1e-12

// Projector casts obstacle shadows onto a horizontal evaluation plane
type Projector struct {
	// EvalHeightFt is the height of the sampled plane above ground. Obstacles no
	// taller than this plane cast no shadow on it.
	EvalHeightFt float64

	// OrientationDeg rotates the yard +Y axis clockwise from true north.
	// Sun azimuths are converted into yard coordinates before projecting.
	OrientationDeg float64
}

// ShadowLength returns the horizontal length of the shadow cast by a vertical
// edge of the given height. The sun must be above the horizon; the result is
// not clamped and grows without bound as the elevation approaches zero.
func ShadowLength(heightFt, elevationDeg float64) float64 {
	return heightFt / math.Tan(elevationDeg*math.Pi/180)
}

// Displacement returns the ground-plane vector from an obstacle vertex to the
// shadow of its top. The direction points away from the sun, measured in the
// compass convention where 0 degrees is +Y and angles grow clockwise.
func Displacement(heightFt float64, sun SunPosition) (dx, dy float64) {
	length := ShadowLength(heightFt, sun.ElevationDeg)
	bearing := (sun.AzimuthDeg + 180) * math.Pi / 180
	return length * math.Sin(bearing), length * math.Cos(bearing)
}

// LocalSun converts a true-north sun position into yard coordinates
func (p Projector) LocalSun(sun SunPosition) SunPosition {
	az := math.Mod(sun.AzimuthDeg-p.OrientationDeg, 360)
	if az < 0 {
		az += 360
	}
	return SunPosition{AzimuthDeg: az, ElevationDeg: sun.ElevationDeg}
}

// Project computes the shadow one obstacle casts for a sun above the horizon.
// The shadow is the convex hull of the footprint and the footprint translated
// by the displacement vector, so it covers the obstacle's own base. The second
// return value is false when the obstacle does not reach the evaluation plane.
func (p Projector) Project(obstacle Obstacle, sun SunPosition) (Shadow, bool, error) {
	if len(obstacle.Footprint) < 3 {
		return Shadow{}, false, &GeometryError{
			Obstacle: obstacle.Name,
			Reason:   fmt.Sprintf("footprint has %d vertices, need at least 3", len(obstacle.Footprint)),
		}
	}

	// Night has no per-obstacle shadow; Cast reports it as a whole frame
	effective := obstacle.HeightFt - p.EvalHeightFt
	if effective <= 0 || sun.IsNight() {
		return Shadow{}, false, nil
	}

	local := p.LocalSun(sun)
	dx, dy := Displacement(effective, local)
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return Shadow{}, false, &GeometryError{
			Obstacle: obstacle.Name,
			Reason:   fmt.Sprintf("non-finite displacement for sun az=%.3f el=%.3f", sun.AzimuthDeg, sun.ElevationDeg),
		}
	}

	vertices := make([]Point, 0, 2*len(obstacle.Footprint))
	for _, v := range obstacle.Footprint {
		vertices = append(vertices, v, Point{v[0] + dx, v[1] + dy})
	}

	hull := ConvexHull(vertices)
	if len(hull) < 3 || Area(hull) < minHullArea {
		return Shadow{}, false, &GeometryError{
			Obstacle: obstacle.Name,
			Reason:   "degenerate shadow hull (zero area footprint)",
		}
	}

	return Shadow{
		Obstacle: obstacle.Name,
		Polygon:  hull,
		Bound:    hull.Bound(),
	}, true, nil
}

// Cast projects every obstacle for one sun position. A sun at or below the
// horizon yields a night frame with no shadows.
func (p Projector) Cast(obstacles []Obstacle, sun SunPosition) (Frame, error) {
	if sun.IsNight() {
		return Frame{Sun: sun, Night: true}, nil
	}

	frame := Frame{Sun: sun, Shadows: make([]Shadow, 0, len(obstacles))}
	for _, obstacle := range obstacles {
		shadow, casts, err := p.Project(obstacle, sun)
		if err != nil {
			return Frame{}, err
		}
		if casts {
			frame.Shadows = append(frame.Shadows, shadow)
		}
	}

	return frame, nil
}
