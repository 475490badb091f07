package shadows

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
)

// Index answers "is this point shadowed" queries for one frame.
// Shadow bounding boxes live in an R-tree so each query only runs the exact
// polygon test against shadows whose box contains the point.
type Index struct {
	night bool
	tree  *rtreego.Rtree
	size  int
}

// spatialShadow adapts a Shadow to the rtreego.Spatial interface
type spatialShadow struct {
	shadow *Shadow
	rect   rtreego.Rect
}

// Bounds implements the rtreego.Spatial interface
func (s *spatialShadow) Bounds() rtreego.Rect {
	return s.rect
}

// NewIndex builds a query index over the shadows of a frame
func NewIndex(frame Frame) (*Index, error) {
	idx := &Index{night: frame.Night}
	if frame.Night || len(frame.Shadows) == 0 {
		return idx, nil
	}

	idx.tree = rtreego.NewTree(2, 2, 8)
	for i := range frame.Shadows {
		shadow := &frame.Shadows[i]
		bound := shadow.Bound.Pad(boundaryTolerance)

		// Create a rectangle with the bottom-left corner at the bound minimum,
		// padded so zero-width boxes remain valid
		rect, err := rtreego.NewRect(
			rtreego.Point{bound.Min[0], bound.Min[1]},
			[]float64{bound.Max[0] - bound.Min[0], bound.Max[1] - bound.Min[1]},
		)
		if err != nil {
			return nil, &GeometryError{
				Obstacle: shadow.Obstacle,
				Reason:   fmt.Sprintf("invalid shadow bounds: %v", err),
			}
		}
		idx.tree.Insert(&spatialShadow{shadow: shadow, rect: rect})
		idx.size++
	}

	return idx, nil
}

// Len returns the number of indexed shadows
func (idx *Index) Len() int {
	return idx.size
}

// Shadowed reports whether the point lies inside or on the boundary of any shadow.
// Every point is shadowed at night.
func (idx *Index) Shadowed(point Point) bool {
	if idx.night {
		return true
	}
	if idx.tree == nil {
		return false
	}

	query := rtreego.Point{point[0], point[1]}.ToRect(boundaryTolerance)
	for _, candidate := range idx.tree.SearchIntersect(query) {
		if PointInPolygon(point, candidate.(*spatialShadow).shadow.Polygon) {
			return true
		}
	}

	return false
}
