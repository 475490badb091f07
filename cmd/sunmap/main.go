package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"chosenoffset.com/sunmap/internal/app"
	"chosenoffset.com/sunmap/internal/ephemeris"
	"chosenoffset.com/sunmap/internal/log"
	"chosenoffset.com/sunmap/internal/output"
	ebitenrender "chosenoffset.com/sunmap/internal/render/ebiten"
	"chosenoffset.com/sunmap/internal/simulation"
	"chosenoffset.com/sunmap/internal/ui/viewer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("sunmap", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "sunmap: backyard sun exposure simulation")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Usage: sunmap --scene yard.yaml --start 2024-06-21T05:00 --end 2024-06-21T21:00 --output-prefix out/yard")
		fmt.Fprintln(os.Stderr)
		fs.PrintDefaults()
	}
	simulation.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := simulation.LoadDotEnv(".env"); err != nil {
		return err
	}
	configPath, _ := fs.GetString("config")
	cfg, err := simulation.LoadConfig(configPath, fs)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.Init(log.Options{Level: cfg.Log.Level, File: cfg.Log.File}); err != nil {
		return err
	}

	provider, err := ephemeris.NewCachedProvider(ephemeris.NewNOAA())
	if err != nil {
		return fmt.Errorf("failed to create ephemeris cache: %w", err)
	}
	defer provider.Close()

	runID := uuid.NewString()
	log.WithFields(log.Fields{"run_id": runID, "heights_ft": cfg.Grid.HeightsFt, "workers": cfg.Grid.Workers}).Info("sunmap starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &app.Runner{Config: cfg, Provider: provider, RunID: runID}
	runs, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	for _, r := range runs {
		for _, res := range r.Results {
			if cfg.HasFormat(simulation.FormatPNG) {
				fmt.Printf("Heatmap saved to %s\n", (&output.Heatmap{Prefix: r.Prefix}).Path(res.HeightFt))
			}
		}
		if cfg.Output.SaveSceneOverhead {
			fmt.Printf("Scene overhead saved to %s\n", output.OverheadPath(r.Prefix))
		}
	}

	if cfg.Output.View {
		first := runs[0]
		v, err := viewer.New(ebitenrender.NewRenderer(), ebitenrender.NewInputManager(), first.Results, first.Frame)
		if err != nil {
			return err
		}
		return viewer.Run(ebitenrender.NewEngine(), v)
	}
	return nil
}
