// Package app wires configuration, scenes, the exposure engine and the
// output sinks into complete runs.
package app

import (
	"context"
	"fmt"
	"time"

	"chosenoffset.com/sunmap/internal/core/exposure"
	"chosenoffset.com/sunmap/internal/core/shadows"
	"chosenoffset.com/sunmap/internal/ephemeris"
	"chosenoffset.com/sunmap/internal/log"
	"chosenoffset.com/sunmap/internal/output"
	"chosenoffset.com/sunmap/internal/scenescanner"
	"chosenoffset.com/sunmap/internal/simulation"
	"chosenoffset.com/sunmap/internal/world/scene"
)

// Runner executes the configured simulations
type Runner struct {
	Config   *simulation.Config
	Provider ephemeris.Provider
	RunID    string
}

// SceneRun is everything produced for one scene
type SceneRun struct {
	Scene   *scene.Scene
	Prefix  string
	Results []*output.Result // One per height, in configured order
	Frame   *shadows.Frame   // Ground-level shadows at ShadowsAt, if requested
}

// SceneFile is a loaded scene and the file name it came from
type SceneFile struct {
	Name  string // File name without extension
	Scene *scene.Scene
}

// LoadScenes loads the configured scene file or every scene in the directory
func (r *Runner) LoadScenes() ([]SceneFile, error) {
	if r.Config.Scene.Path != "" {
		sc, err := scene.LoadFile(r.Config.Scene.Path)
		if err != nil {
			return nil, err
		}
		return []SceneFile{{Name: sc.Name, Scene: sc}}, nil
	}

	entries, err := scenescanner.ScanSceneDirectory(r.Config.Scene.Dir)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no scene files found in %s", r.Config.Scene.Dir)
	}

	files := make([]SceneFile, 0, len(entries))
	for _, e := range entries {
		sc, err := scene.LoadFile(e.Path)
		if err != nil {
			return nil, err
		}
		files = append(files, SceneFile{Name: e.Name, Scene: sc})
	}
	return files, nil
}

// Run simulates every configured scene. In directory mode each scene's
// outputs are prefixed with its file name.
func (r *Runner) Run(ctx context.Context) ([]*SceneRun, error) {
	files, err := r.LoadScenes()
	if err != nil {
		return nil, err
	}

	runs := make([]*SceneRun, 0, len(files))
	for _, f := range files {
		prefix := r.Config.Output.Prefix
		if r.Config.Scene.Dir != "" {
			prefix = fmt.Sprintf("%s_%s", prefix, f.Name)
		}
		run, err := r.RunScene(ctx, f.Scene, prefix)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", f.Name, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// RunScene simulates one scene at every configured height and writes outputs
// under prefix
func (r *Runner) RunScene(ctx context.Context, sc *scene.Scene, prefix string) (*SceneRun, error) {
	cfg := r.Config
	logger := log.WithFields(log.Fields{"run_id": r.RunID, "scene": sc.Name})

	start, end, err := cfg.ParseWindow(sc.Location.Timezone)
	if err != nil {
		return nil, err
	}
	series, err := ephemeris.NewSeries(start, end, cfg.StepDuration(), cfg.Window.IncludeEnd)
	if err != nil {
		return nil, err
	}
	grid, err := scene.BuildGrid(sc.Bounds, cfg.Grid.ResolutionFt)
	if err != nil {
		return nil, err
	}
	unit, err := exposure.ParseUnit(cfg.Output.Unit)
	if err != nil {
		return nil, err
	}

	var shadowsAt time.Time
	if cfg.Output.ShadowsAt != "" {
		loc := start.Location()
		shadowsAt, err = simulation.ParseLocalTime(cfg.Output.ShadowsAt, loc)
		if err != nil {
			return nil, err
		}
	}

	logger.Infof("simulating %d steps on a %dx%d grid from %s to %s",
		series.Len(), grid.Cols, grid.Rows, start.Format(time.RFC3339), end.Format(time.RFC3339))

	run := &SceneRun{Scene: sc, Prefix: prefix}
	if !shadowsAt.IsZero() {
		ground, err := exposure.NewEngine(sc, grid, 0, r.Provider).Frame(shadowsAt)
		if err != nil {
			return nil, err
		}
		run.Frame = &ground
	}

	for _, h := range cfg.Grid.HeightsFt {
		engine := exposure.NewEngine(sc, grid, h, r.Provider)
		engine.Workers = cfg.Grid.Workers

		var frame *shadows.Frame
		if !shadowsAt.IsZero() {
			f, err := engine.Frame(shadowsAt)
			if err != nil {
				return nil, err
			}
			frame = &f
		}

		acc, err := engine.Run(ctx, series)
		if err != nil {
			return nil, err
		}
		values, err := acc.Finalize(unit, series.Step)
		if err != nil {
			return nil, err
		}

		result := &output.Result{
			Scene:    sc,
			Grid:     grid,
			HeightFt: h,
			Unit:     unit,
			Values:   values,
			Steps:    acc.Steps(),
			Step:     series.Step,
			Start:    start,
			End:      end,
		}
		if err := r.Sinks(prefix, frame).Write(result); err != nil {
			return nil, fmt.Errorf("failed to write outputs for %gft: %w", h, err)
		}
		logger.WithField("height_ft", h).Infof("exposure map complete (%d steps)", acc.Steps())
		run.Results = append(run.Results, result)
	}

	if cfg.Output.SaveSceneOverhead {
		if err := output.SaveOverhead(sc, run.Frame, prefix, 0); err != nil {
			return nil, fmt.Errorf("failed to save scene overhead: %w", err)
		}
		logger.Infof("scene overhead saved to %s", output.OverheadPath(prefix))
	}
	return run, nil
}

// Sinks returns the configured file outputs for one height
func (r *Runner) Sinks(prefix string, frame *shadows.Frame) output.Multi {
	cfg := r.Config
	var sinks output.Multi
	if cfg.HasFormat(simulation.FormatPNG) {
		sinks = append(sinks, &output.Heatmap{Prefix: prefix})
	}
	if cfg.HasFormat(simulation.FormatCSV) {
		sinks = append(sinks, &output.CSV{Prefix: prefix})
	}
	if cfg.HasFormat(simulation.FormatGeoJSON) {
		sinks = append(sinks, &output.GeoJSON{Prefix: prefix, Frame: frame})
	}
	if cfg.HasFormat(simulation.FormatSummary) {
		sinks = append(sinks, &output.SummaryJSON{Prefix: prefix})
	}
	return sinks
}
