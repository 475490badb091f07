package exposure

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Unit selects how a finalized exposure matrix is expressed
type Unit string

const (
	UnitFraction Unit = "fraction" // Share of samples lit, in [0, 1]
	UnitMinutes  Unit = "minutes"  // Lit samples times the step length
)

// ParseUnit accepts "fraction" or "minutes", case-insensitively
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case UnitFraction:
		return UnitFraction, nil
	case UnitMinutes:
		return UnitMinutes, nil
	}
	return "", fmt.Errorf("unknown exposure unit %q: must be minutes or fraction", s)
}

// State is the lifecycle stage of an Accumulator
type State int

const (
	StateInit State = iota
	StateStepping
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateStepping:
		return "stepping"
	case StateFinalized:
		return "finalized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrShapeMismatch = errors.New("exposure: matrix shape does not match accumulator")
	ErrNoSteps       = errors.New("exposure: cannot finalize without any steps")
	ErrFinalized     = errors.New("exposure: accumulator already finalized")
)

// Accumulator counts, per grid point, how many steps it was lit.
// Counts only grow. Once finalized it rejects further input.
type Accumulator struct {
	counts *mat.Dense
	steps  int
	state  State
}

// NewAccumulator returns a zeroed accumulator for a rows x cols grid
func NewAccumulator(rows, cols int) (*Accumulator, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("exposure: invalid accumulator shape %dx%d", rows, cols)
	}
	return &Accumulator{counts: mat.NewDense(rows, cols, nil)}, nil
}

// Dims returns the accumulator shape
func (a *Accumulator) Dims() (rows, cols int) {
	return a.counts.Dims()
}

// Steps returns the number of steps folded in so far
func (a *Accumulator) Steps() int {
	return a.steps
}

// State returns the lifecycle stage
func (a *Accumulator) State() State {
	return a.state
}

// Counts returns a copy of the raw lit counts
func (a *Accumulator) Counts() *mat.Dense {
	return mat.DenseCopyOf(a.counts)
}

// Accumulate folds one step into the counts
func (a *Accumulator) Accumulate(lit *LitMatrix) error {
	if a.state == StateFinalized {
		return ErrFinalized
	}
	rows, cols := a.counts.Dims()
	if lit.Rows != rows || lit.Cols != cols || len(lit.Lit) != rows*cols {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrShapeMismatch, lit.Rows, lit.Cols, rows, cols)
	}

	raw := a.counts.RawMatrix()
	for r := 0; r < rows; r++ {
		row := raw.Data[r*raw.Stride : r*raw.Stride+cols]
		for c, on := range lit.Lit[r*cols : (r+1)*cols] {
			if on {
				row[c]++
			}
		}
	}
	a.steps++
	a.state = StateStepping
	return nil
}

// Merge adds another partial accumulator into this one.
// The other accumulator is left unchanged.
func (a *Accumulator) Merge(other *Accumulator) error {
	if a.state == StateFinalized || other.state == StateFinalized {
		return ErrFinalized
	}
	rows, cols := a.counts.Dims()
	or, oc := other.counts.Dims()
	if rows != or || cols != oc {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrShapeMismatch, or, oc, rows, cols)
	}

	if other.steps == 0 {
		return nil
	}
	a.counts.Add(a.counts, other.counts)
	a.steps += other.steps
	a.state = StateStepping
	return nil
}

// Finalize converts counts into the requested unit and closes the accumulator.
// Fraction divides by the step count. Minutes multiplies counts by the step
// length, which equals fraction x step minutes x total steps.
func (a *Accumulator) Finalize(unit Unit, step time.Duration) (*mat.Dense, error) {
	if a.state == StateFinalized {
		return nil, ErrFinalized
	}
	if a.steps == 0 {
		return nil, ErrNoSteps
	}

	out := mat.DenseCopyOf(a.counts)
	switch unit {
	case UnitFraction:
		out.Scale(1/float64(a.steps), out)
	case UnitMinutes:
		if step <= 0 {
			return nil, fmt.Errorf("exposure: step length must be > 0 for minutes, got %s", step)
		}
		out.Scale(step.Minutes(), out)
	default:
		return nil, fmt.Errorf("unknown exposure unit %q", unit)
	}

	a.state = StateFinalized
	return out, nil
}
