// Package exposure turns shadow frames into per-point sun exposure.
//
// Evaluate classifies every grid point as lit or shadowed for a single frame.
// An Accumulator folds those classifications over a time series, and Engine
// drives the whole run from sun positions to an accumulated result.
package exposure

import (
	"fmt"

	"chosenoffset.com/sunmap/internal/core/shadows"
	"chosenoffset.com/sunmap/internal/world/scene"
)

// LitMatrix holds one step of lit flags in row-major order.
// Row r, column c is the grid point at (grid.X(c), grid.Y(r)).
type LitMatrix struct {
	Rows, Cols int
	Lit        []bool
}

// NewLitMatrix returns a matrix with every point shadowed
func NewLitMatrix(rows, cols int) *LitMatrix {
	return &LitMatrix{Rows: rows, Cols: cols, Lit: make([]bool, rows*cols)}
}

// At reports whether the point at (row, col) is lit
func (m *LitMatrix) At(row, col int) bool {
	return m.Lit[row*m.Cols+col]
}

// Set marks the point at (row, col)
func (m *LitMatrix) Set(row, col int, lit bool) {
	m.Lit[row*m.Cols+col] = lit
}

// Count returns the number of lit points
func (m *LitMatrix) Count() int {
	n := 0
	for _, lit := range m.Lit {
		if lit {
			n++
		}
	}
	return n
}

// Evaluate classifies each grid point for one frame.
// A point is shadowed when it lies inside or on the edge of any shadow.
// At night every point is shadowed.
func Evaluate(grid *scene.Grid, frame shadows.Frame) (*LitMatrix, error) {
	lit := NewLitMatrix(grid.Rows, grid.Cols)
	if frame.Night {
		return lit, nil
	}

	idx, err := shadows.NewIndex(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to index shadows: %w", err)
	}

	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			lit.Set(r, c, !idx.Shadowed(grid.Point(r, c)))
		}
	}
	return lit, nil
}
