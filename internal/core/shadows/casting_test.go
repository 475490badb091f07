package shadows

import (
	"errors"
	"math"
	"testing"
)

func square(name string, x0, y0, size, height float64) Obstacle {
	return Obstacle{
		Name: name,
		Kind: "structure",
		Footprint: Polygon{
			{x0, y0},
			{x0 + size, y0},
			{x0 + size, y0 + size},
			{x0, y0 + size},
		},
		HeightFt: height,
	}
}

func TestShadowLengthDecreasesWithElevation(t *testing.T) {
	previous := math.Inf(1)
	for el := 1.0; el <= 90; el += 0.5 {
		length := ShadowLength(10, el)
		if length >= previous {
			t.Fatalf("Expected shadow length to decrease at elevation %.1f, got %f after %f", el, length, previous)
		}
		previous = length
	}

	if got := ShadowLength(10, 90); got > 1e-9 {
		t.Errorf("Expected shadow length near 0 at zenith, got %g", got)
	}
	if got := ShadowLength(10, 89.999); got > 0.001 {
		t.Errorf("Expected shadow length to approach 0 near zenith, got %g", got)
	}
}

func TestDisplacementPointsAwayFromSun(t *testing.T) {
	tests := []struct {
		azimuth float64
		wantDX  float64
		wantDY  float64
	}{
		{180, 0, 10},  // Sun in the south, shadow to the north
		{0, 0, -10},   // Sun in the north, shadow to the south
		{90, -10, 0},  // Sun in the east, shadow to the west
		{270, 10, 0},  // Sun in the west, shadow to the east
	}

	for _, tc := range tests {
		dx, dy := Displacement(10, SunPosition{AzimuthDeg: tc.azimuth, ElevationDeg: 45})
		if math.Abs(dx-tc.wantDX) > 1e-9 || math.Abs(dy-tc.wantDY) > 1e-9 {
			t.Errorf("Displacement(az=%.0f) = (%f, %f), want (%f, %f)", tc.azimuth, dx, dy, tc.wantDX, tc.wantDY)
		}
	}
}

func TestProjectSquareAtFortyFiveDegrees(t *testing.T) {
	box := square("shed", 0, 0, 10, 10)
	shadow, casts, err := Projector{}.Project(box, SunPosition{AzimuthDeg: 180, ElevationDeg: 45})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if !casts {
		t.Fatal("Expected the shed to cast a shadow")
	}

	if math.Abs(shadow.Bound.Max[1]-20) > 1e-9 {
		t.Errorf("Expected shadow to reach y=20, got %f", shadow.Bound.Max[1])
	}
	if math.Abs(Area(shadow.Polygon)-200) > 1e-6 {
		t.Errorf("Expected shadow area 200, got %f", Area(shadow.Polygon))
	}

	if PointInPolygon(Point{5, 25}, shadow.Polygon) {
		t.Error("Expected (5, 25) to be outside the shadow")
	}
	if !PointInPolygon(Point{5, 15}, shadow.Polygon) {
		t.Error("Expected (5, 15) to be inside the shadow")
	}
	if !PointInPolygon(Point{5, 5}, shadow.Polygon) {
		t.Error("Expected the footprint itself to be shadowed")
	}
}

func TestProjectHonorsEvaluationHeight(t *testing.T) {
	box := square("fence", 0, 0, 10, 6)
	sun := SunPosition{AzimuthDeg: 180, ElevationDeg: 45}

	shadow, casts, err := Projector{EvalHeightFt: 4}.Project(box, sun)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if !casts {
		t.Fatal("Expected obstacle taller than the plane to cast a shadow")
	}
	if math.Abs(shadow.Bound.Max[1]-12) > 1e-9 {
		t.Errorf("Expected shadow to reach y=12 with 2ft effective height, got %f", shadow.Bound.Max[1])
	}

	_, casts, err = Projector{EvalHeightFt: 6}.Project(box, sun)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if casts {
		t.Error("Expected obstacle at the plane height to cast no shadow")
	}
}

func TestProjectHonorsOrientation(t *testing.T) {
	box := square("shed", 0, 0, 10, 10)

	// Yard rotated 90 degrees: true-south sun is at local azimuth 90 (east)
	shadow, _, err := Projector{OrientationDeg: 90}.Project(box, SunPosition{AzimuthDeg: 180, ElevationDeg: 45})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if math.Abs(shadow.Bound.Min[0]+10) > 1e-9 {
		t.Errorf("Expected shadow to extend to x=-10, got %f", shadow.Bound.Min[0])
	}
	if math.Abs(shadow.Bound.Max[1]-10) > 1e-9 {
		t.Errorf("Expected shadow to stay within y<=10, got %f", shadow.Bound.Max[1])
	}
}

func TestProjectRejectsDegenerateFootprint(t *testing.T) {
	line := Obstacle{
		Name:      "sliver",
		Footprint: Polygon{{0, 0}, {5, 0}, {10, 0}},
		HeightFt:  5,
	}

	// Sun along the line keeps every displaced vertex collinear
	_, _, err := Projector{}.Project(line, SunPosition{AzimuthDeg: 90, ElevationDeg: 30})
	var geomErr *GeometryError
	if !errors.As(err, &geomErr) {
		t.Fatalf("Expected GeometryError, got %v", err)
	}
	if geomErr.Obstacle != "sliver" {
		t.Errorf("Expected obstacle 'sliver' in error, got '%s'", geomErr.Obstacle)
	}

	_, _, err = Projector{}.Project(Obstacle{Name: "pair", Footprint: Polygon{{0, 0}, {1, 1}}, HeightFt: 1},
		SunPosition{AzimuthDeg: 180, ElevationDeg: 30})
	if !errors.As(err, &geomErr) {
		t.Fatalf("Expected GeometryError for two-vertex footprint, got %v", err)
	}
}

func TestCastNightShortCircuit(t *testing.T) {
	obstacles := []Obstacle{square("a", 0, 0, 10, 10), square("b", 20, 20, 5, 3)}

	for _, el := range []float64{0, -5, -89} {
		frame, err := Projector{}.Cast(obstacles, SunPosition{AzimuthDeg: 200, ElevationDeg: el})
		if err != nil {
			t.Fatalf("Cast failed: %v", err)
		}
		if !frame.Night {
			t.Errorf("Expected night frame at elevation %.0f", el)
		}
		if len(frame.Shadows) != 0 {
			t.Errorf("Expected no shadows at night, got %d", len(frame.Shadows))
		}
	}
}

func TestCastSkipsObstaclesBelowPlane(t *testing.T) {
	obstacles := []Obstacle{square("tall", 0, 0, 10, 10), square("deck", 20, 0, 10, 1)}

	frame, err := Projector{EvalHeightFt: 2}.Cast(obstacles, SunPosition{AzimuthDeg: 180, ElevationDeg: 40})
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if len(frame.Shadows) != 1 {
		t.Fatalf("Expected 1 shadow, got %d", len(frame.Shadows))
	}
	if frame.Shadows[0].Obstacle != "tall" {
		t.Errorf("Expected shadow of 'tall', got '%s'", frame.Shadows[0].Obstacle)
	}
}
