package shadows

import (
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestPointInPolygonBoundaryCountsAsInside(t *testing.T) {
	sq := Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{"interior", Point{5, 5}, true},
		{"bottom edge", Point{5, 0}, true},
		{"right edge", Point{10, 3}, true},
		{"top edge", Point{2, 10}, true},
		{"corner", Point{0, 0}, true},
		{"far corner", Point{10, 10}, true},
		{"just outside", Point{10.001, 5}, false},
		{"outside", Point{-1, -1}, false},
		{"above", Point{5, 25}, false},
	}

	for _, tc := range tests {
		if got := PointInPolygon(tc.point, sq); got != tc.want {
			t.Errorf("%s: PointInPolygon(%v) = %v, want %v", tc.name, tc.point, got, tc.want)
		}
	}
}

func TestPointInPolygonNonConvex(t *testing.T) {
	// L-shaped polygon with the notch at the top right
	ell := Polygon{{0, 0}, {10, 0}, {10, 4}, {4, 4}, {4, 10}, {0, 10}}

	if !PointInPolygon(Point{2, 8}, ell) {
		t.Error("Expected (2, 8) inside the upright arm")
	}
	if !PointInPolygon(Point{8, 2}, ell) {
		t.Error("Expected (8, 2) inside the foot")
	}
	if PointInPolygon(Point{8, 8}, ell) {
		t.Error("Expected (8, 8) in the notch to be outside")
	}
	if !PointInPolygon(Point{4, 7}, ell) {
		t.Error("Expected the inner edge x=4 to count as inside")
	}
}

func TestConvexHull(t *testing.T) {
	points := []Point{
		{0, 0}, {10, 0}, {10, 10}, {0, 10},
		{5, 5}, // interior
		{5, 0}, // collinear on an edge
		{0, 0}, // duplicate
	}

	hull := ConvexHull(points)
	if len(hull) != 4 {
		t.Fatalf("Expected 4 hull vertices, got %d: %s", len(hull), spew.Sdump(hull))
	}

	// Counter-clockwise orientation means positive signed area
	signed := 0.0
	for i := range hull {
		j := (i + 1) % len(hull)
		signed += hull[i][0]*hull[j][1] - hull[j][0]*hull[i][1]
	}
	if signed <= 0 {
		t.Errorf("Expected counter-clockwise hull, got signed area %f", signed/2)
	}

	if math.Abs(Area(hull)-100) > 1e-9 {
		t.Errorf("Expected hull area 100, got %f", Area(hull))
	}
}

func TestConvexHullDegenerate(t *testing.T) {
	if hull := ConvexHull([]Point{{1, 1}, {1, 1}}); len(hull) != 1 {
		t.Errorf("Expected 1 vertex for duplicate points, got %d", len(hull))
	}
	if hull := ConvexHull([]Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}); len(hull) >= 3 {
		t.Errorf("Expected collinear points to collapse, got %s", spew.Sdump(hull))
	}
}

func TestHullCoversNonConvexFootprint(t *testing.T) {
	ell := Obstacle{
		Name:      "ell",
		Footprint: Polygon{{0, 0}, {10, 0}, {10, 4}, {4, 4}, {4, 10}, {0, 10}},
		HeightFt:  5,
	}

	shadow, _, err := Projector{}.Project(ell, SunPosition{AzimuthDeg: 180, ElevationDeg: 60})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	// The hull over-approximates the notch of a concave footprint
	if !PointInPolygon(Point{8, 8}, shadow.Polygon) {
		t.Error("Expected the hull to include the footprint notch")
	}
	for _, v := range ell.Footprint {
		if !PointInPolygon(v, shadow.Polygon) {
			t.Errorf("Expected footprint vertex %v inside the shadow hull", v)
		}
	}
}

func TestSelfIntersects(t *testing.T) {
	tests := []struct {
		name    string
		polygon Polygon
		want    bool
	}{
		{"square", Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, false},
		{"triangle", Polygon{{0, 0}, {4, 0}, {0, 3}}, false},
		{"concave L", Polygon{{0, 0}, {10, 0}, {10, 4}, {4, 4}, {4, 10}, {0, 10}}, false},
		{"balanced bowtie", Polygon{{0, 0}, {10, 10}, {10, 0}, {0, 10}}, true},
		{"lopsided bowtie", Polygon{{0, 0}, {10, 10}, {10, 0}, {0, 20}}, true},
		{"vertex touching edge", Polygon{{0, 0}, {10, 0}, {10, 10}, {5, 0}, {0, 10}}, true},
		{"spike folding back", Polygon{{0, 0}, {10, 0}, {5, 0}, {5, 5}}, true},
	}

	for _, tc := range tests {
		if got := SelfIntersects(tc.polygon); got != tc.want {
			t.Errorf("%s: SelfIntersects = %v, want %v", tc.name, got, tc.want)
		}
	}
}
