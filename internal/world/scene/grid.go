package scene

import (
	"math"

	"chosenoffset.com/sunmap/internal/core/shadows"
)

// gridSlack absorbs floating point noise when counting samples per axis
const gridSlack = 1e-9

// Grid is a fixed lattice of sample points covering a rectangle.
// Rows walk +Y from YMin, columns walk +X from XMin.
type Grid struct {
	XMin, YMin   float64
	ResolutionFt float64
	Cols, Rows   int
}

// BuildGrid lays a lattice over the bounds, inclusive of both edges.
// Each axis holds ceil(span/resolution)+1 points, so the last sample may sit
// up to one step beyond the max bound.
func BuildGrid(bounds Bounds, resolutionFt float64) (*Grid, error) {
	if !(resolutionFt > 0) || math.IsInf(resolutionFt, 0) {
		return nil, &InvalidResolutionError{Resolution: resolutionFt}
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	return &Grid{
		XMin:         bounds.XMin,
		YMin:         bounds.YMin,
		ResolutionFt: resolutionFt,
		Cols:         axisCount(bounds.Width(), resolutionFt),
		Rows:         axisCount(bounds.Height(), resolutionFt),
	}, nil
}

func axisCount(span, resolution float64) int {
	return int(math.Ceil(span/resolution-gridSlack)) + 1
}

// Len returns the number of sample points
func (g *Grid) Len() int {
	return g.Rows * g.Cols
}

// X returns the x coordinate of a column
func (g *Grid) X(col int) float64 {
	return g.XMin + float64(col)*g.ResolutionFt
}

// Y returns the y coordinate of a row
func (g *Grid) Y(row int) float64 {
	return g.YMin + float64(row)*g.ResolutionFt
}

// Point returns the sample point at (row, col)
func (g *Grid) Point(row, col int) shadows.Point {
	return shadows.Point{g.X(col), g.Y(row)}
}

// Xs returns every column coordinate
func (g *Grid) Xs() []float64 {
	xs := make([]float64, g.Cols)
	for c := range xs {
		xs[c] = g.X(c)
	}
	return xs
}

// Ys returns every row coordinate
func (g *Grid) Ys() []float64 {
	ys := make([]float64, g.Rows)
	for r := range ys {
		ys[r] = g.Y(r)
	}
	return ys
}

// Cell returns the (row, col) nearest to a point and whether it lies on the grid
func (g *Grid) Cell(p shadows.Point) (row, col int, ok bool) {
	col = int(math.Round((p[0] - g.XMin) / g.ResolutionFt))
	row = int(math.Round((p[1] - g.YMin) / g.ResolutionFt))
	ok = row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
	return row, col, ok
}
