package shadows

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// boundaryTolerance is the distance (feet) within which a point counts as on an edge
const boundaryTolerance = 1e-9

// PointInPolygon tests if a point is inside or on the boundary of a polygon.
// The polygon may be non-convex. Points on an edge count as inside.
func PointInPolygon(point Point, polygon Polygon) bool {
	if len(polygon) < 3 {
		return false
	}

	bound := polygon.Bound().Pad(boundaryTolerance)
	if !bound.Contains(point) {
		return false
	}

	if OnBoundary(point, polygon) {
		return true
	}

	return planar.RingContains(polygon.Ring(), point)
}

// OnBoundary reports whether the point lies on any edge of the polygon
func OnBoundary(point Point, polygon Polygon) bool {
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		if onSegment(point, polygon[j], polygon[i]) {
			return true
		}
		j = i
	}
	return false
}

// onSegment checks if p lies on the closed segment a-b
func onSegment(p, a, b Point) bool {
	abx := b[0] - a[0]
	aby := b[1] - a[1]
	apx := p[0] - a[0]
	apy := p[1] - a[1]

	length := math.Hypot(abx, aby)
	if length < boundaryTolerance {
		return math.Hypot(apx, apy) <= boundaryTolerance
	}

	// Perpendicular distance from the supporting line
	if math.Abs(abx*apy-aby*apx)/length > boundaryTolerance {
		return false
	}

	// Projection must fall within the segment
	t := (apx*abx + apy*aby) / (length * length)
	slack := boundaryTolerance / length
	return t >= -slack && t <= 1+slack
}

// cross returns the z component of (a-o) x (b-o)
func cross(o, a, b Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// ConvexHull returns the convex hull of the points in counter-clockwise order
// using Andrew's monotone chain. Collinear points along an edge are dropped.
// Fewer than three points are returned when the input is degenerate.
func ConvexHull(points []Point) Polygon {
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	// Remove exact duplicates
	unique := pts[:0]
	for _, p := range pts {
		if len(unique) == 0 || p != unique[len(unique)-1] {
			unique = append(unique, p)
		}
	}
	pts = unique

	if len(pts) < 3 {
		return Polygon(pts)
	}

	hull := make([]Point, 0, 2*len(pts))

	// Lower hull
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Upper hull
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Last point repeats the first
	return Polygon(hull[:len(hull)-1])
}

// Area returns the unsigned area of the polygon
func Area(polygon Polygon) float64 {
	if len(polygon) < 3 {
		return 0
	}
	return math.Abs(planar.Area(closed(polygon)))
}

// closed returns a copy of the ring with the first vertex appended
func closed(polygon Polygon) orb.Ring {
	ring := make(orb.Ring, len(polygon), len(polygon)+1)
	copy(ring, polygon)
	return append(ring, polygon[0])
}

// SelfIntersects reports whether any two non-adjacent edges of the polygon
// touch or cross, or two adjacent edges fold back over each other
func SelfIntersects(polygon Polygon) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}

	for i := 0; i < n; i++ {
		a, b := polygon[i], polygon[(i+1)%n]

		// Adjacent edge doubling back along the same line
		if c := polygon[(i+2)%n]; c != a && onSegment(c, a, b) {
			return true
		}

		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // shares vertex 0
			}
			if segmentsTouch(a, b, polygon[j], polygon[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// segmentsTouch checks if the closed segments p1-p2 and q1-q2 share any point
func segmentsTouch(p1, p2, q1, q2 Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return onSegment(p1, q1, q2) || onSegment(p2, q1, q2) ||
		onSegment(q1, p1, p2) || onSegment(q2, p1, p2)
}
