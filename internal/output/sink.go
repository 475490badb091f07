// Package output writes finished exposure maps to files.
//
// Every format is a Sink. Sinks receive the same Result and decide on their
// own file names from a shared prefix, so a run can fan out to several of
// them with Multi.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"chosenoffset.com/sunmap/internal/core/exposure"
	"chosenoffset.com/sunmap/internal/world/scene"
)

// Result is a finalized exposure map with the geometry needed to place it
type Result struct {
	Scene    *scene.Scene
	Grid     *scene.Grid
	HeightFt float64
	Unit     exposure.Unit
	Values   *mat.Dense // Rows x Cols, row 0 at Grid.YMin
	Steps    int
	Step     time.Duration
	Start    time.Time
	End      time.Time
}

// Sink consumes a result
type Sink interface {
	Write(r *Result) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(r *Result) error

func (f SinkFunc) Write(r *Result) error {
	return f(r)
}

// Multi writes to every sink and joins their errors
type Multi []Sink

func (m Multi) Write(r *Result) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// heightLabel formats a height for file names: 0 -> "0", 3.5 -> "3.5"
func heightLabel(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// PathFor builds "<prefix>_<kind>_<height>ft.<ext>"
func PathFor(prefix, kind string, heightFt float64, ext string) string {
	return fmt.Sprintf("%s_%s_%sft.%s", prefix, kind, heightLabel(heightFt), ext)
}

// ensureDir creates the directory that will hold path
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}

// UnitLabel describes the values of a unit for legends and headers
func UnitLabel(u exposure.Unit) string {
	if u == exposure.UnitFraction {
		return "Fraction of samples in direct sun"
	}
	return "Minutes of direct sun"
}
