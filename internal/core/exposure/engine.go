package exposure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"chosenoffset.com/sunmap/internal/core/shadows"
	"chosenoffset.com/sunmap/internal/ephemeris"
	"chosenoffset.com/sunmap/internal/log"
	"chosenoffset.com/sunmap/internal/world/scene"
)

// Engine runs the shadow pipeline for one scene at one evaluation height.
// Its fields are read-only once a run starts and may be shared by workers.
type Engine struct {
	Grid      *scene.Grid
	Obstacles []shadows.Obstacle
	Projector shadows.Projector
	Provider  ephemeris.Provider

	Latitude, Longitude float64

	// Workers is the number of goroutines evaluating steps. Values below 2
	// run single-threaded.
	Workers int
}

// NewEngine prepares an engine for a scene sampled on a grid at the given height
func NewEngine(sc *scene.Scene, grid *scene.Grid, evalHeightFt float64, provider ephemeris.Provider) *Engine {
	return &Engine{
		Grid:      grid,
		Obstacles: sc.Obstacles,
		Projector: sc.Projector(evalHeightFt),
		Provider:  provider,
		Latitude:  sc.Location.Latitude,
		Longitude: sc.Location.Longitude,
		Workers:   1,
	}
}

// Frame computes the sun position and shadows for one instant
func (e *Engine) Frame(t time.Time) (shadows.Frame, error) {
	sun, err := e.Provider.Position(t, e.Latitude, e.Longitude)
	if err != nil {
		var ee *ephemeris.EphemerisError
		if !errors.As(err, &ee) {
			err = &ephemeris.EphemerisError{Time: t, Err: err}
		}
		return shadows.Frame{}, err
	}

	frame, err := e.Projector.Cast(e.Obstacles, sun)
	if err != nil {
		return shadows.Frame{}, fmt.Errorf("failed to cast shadows at %s: %w", t.Format(time.RFC3339), err)
	}
	return frame, nil
}

// Step evaluates which grid points are lit at one instant
func (e *Engine) Step(t time.Time) (*LitMatrix, error) {
	frame, err := e.Frame(t)
	if err != nil {
		return nil, err
	}
	return Evaluate(e.Grid, frame)
}

// Run folds every instant of the series into a new accumulator.
// Any failure, including cancellation of ctx, aborts the run and no
// accumulator is returned.
func (e *Engine) Run(ctx context.Context, series *ephemeris.Series) (*Accumulator, error) {
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > series.Len() {
		workers = series.Len()
	}

	started := time.Now()
	var (
		acc *Accumulator
		err error
	)
	if workers <= 1 {
		acc, err = e.runSerial(ctx, series)
	} else {
		acc, err = e.runParallel(ctx, series, workers)
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"steps":   acc.Steps(),
		"points":  e.Grid.Len(),
		"workers": workers,
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Debug("exposure run complete")
	return acc, nil
}

func (e *Engine) runSerial(ctx context.Context, series *ephemeris.Series) (*Accumulator, error) {
	acc, err := NewAccumulator(e.Grid.Rows, e.Grid.Cols)
	if err != nil {
		return nil, err
	}

	for _, t := range series.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lit, err := e.Step(t)
		if err != nil {
			return nil, err
		}
		if err := acc.Accumulate(lit); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// runParallel strides the series across workers. Each worker owns a partial
// accumulator; partials are merged once every worker has finished.
func (e *Engine) runParallel(ctx context.Context, series *ephemeris.Series, workers int) (*Accumulator, error) {
	partials := make([]*Accumulator, workers)
	for w := range partials {
		acc, err := NewAccumulator(e.Grid.Rows, e.Grid.Cols)
		if err != nil {
			return nil, err
		}
		partials[w] = acc
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		acc := partials[w]
		start := w
		g.Go(func() error {
			for i := start; i < series.Len(); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				lit, err := e.Step(series.At(i))
				if err != nil {
					return err
				}
				if err := acc.Accumulate(lit); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := partials[0]
	for _, p := range partials[1:] {
		if err := total.Merge(p); err != nil {
			return nil, err
		}
	}
	return total, nil
}
