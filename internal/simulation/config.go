// Package simulation holds the run configuration for a sun exposure simulation.
// Values are layered: command line flags over SUNMAP_* environment variables
// over an optional config file over built-in defaults.
package simulation

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SUNMAP_GRID_RESOLUTION_FT
const EnvPrefix = "SUNMAP"

// Output formats understood by the CLI
const (
	FormatPNG     = "png"
	FormatCSV     = "csv"
	FormatGeoJSON = "geojson"
	FormatSummary = "summary"
)

// Config holds everything needed to run one or more simulations
type Config struct {
	Scene  SceneConfig  `mapstructure:"scene" json:"scene"`
	Window WindowConfig `mapstructure:"window" json:"window"`
	Grid   GridConfig   `mapstructure:"grid" json:"grid"`
	Output OutputConfig `mapstructure:"output" json:"output"`
	Log    LogConfig    `mapstructure:"log" json:"log"`
}

// SceneConfig selects the scene file, or a directory of scenes for batch runs
type SceneConfig struct {
	Path string `mapstructure:"path" json:"path"`
	Dir  string `mapstructure:"dir" json:"dir"`
}

// WindowConfig defines the simulated time window in the scene's local time
type WindowConfig struct {
	Start       string `mapstructure:"start" json:"start"`               // "2006-01-02T15:04"
	End         string `mapstructure:"end" json:"end"`                   // "2006-01-02T15:04"
	StepMinutes int    `mapstructure:"step_minutes" json:"step_minutes"` // Sample spacing
	IncludeEnd  bool   `mapstructure:"include_end" json:"include_end"`   // Sample the end instant too
}

// GridConfig defines where exposure is sampled
type GridConfig struct {
	HeightsFt    []float64 `mapstructure:"heights_ft" json:"heights_ft"`       // One heatmap per height
	ResolutionFt float64   `mapstructure:"resolution_ft" json:"resolution_ft"` // Sample spacing in feet
	Workers      int       `mapstructure:"workers" json:"workers"`             // Parallel step workers
}

// OutputConfig defines what a run writes
type OutputConfig struct {
	Prefix            string   `mapstructure:"prefix" json:"prefix"`
	Formats           []string `mapstructure:"formats" json:"formats"`
	Unit              string   `mapstructure:"unit" json:"unit"` // minutes or fraction
	SaveSceneOverhead bool     `mapstructure:"save_scene_overhead" json:"save_scene_overhead"`
	ShadowsAt         string   `mapstructure:"shadows_at" json:"shadows_at"` // Instant drawn into GeoJSON
	View              bool     `mapstructure:"view" json:"view"`             // Open the interactive viewer
}

// LogConfig controls the process logger
type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
	File  string `mapstructure:"file" json:"file"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			StepMinutes: 15,
			IncludeEnd:  true,
		},
		Grid: GridConfig{
			HeightsFt:    []float64{0},
			ResolutionFt: 0.82,
			Workers:      1,
		},
		Output: OutputConfig{
			Formats: []string{FormatPNG},
			Unit:    "minutes",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// flagKeys maps command line flag names to config keys
var flagKeys = map[string]string{
	"scene":               "scene.path",
	"scene-dir":           "scene.dir",
	"start":               "window.start",
	"end":                 "window.end",
	"step-minutes":        "window.step_minutes",
	"include-end":         "window.include_end",
	"height-ft":           "grid.heights_ft",
	"grid-resolution-ft":  "grid.resolution_ft",
	"workers":             "grid.workers",
	"output-prefix":       "output.prefix",
	"output":              "output.formats",
	"unit":                "output.unit",
	"save-scene-overhead": "output.save_scene_overhead",
	"shadows-at":          "output.shadows_at",
	"view":                "output.view",
	"log-level":           "log.level",
	"log-file":            "log.file",
}

// RegisterFlags adds every configurable flag to fs. Flag defaults are left
// empty so unset flags never mask lower layers.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Config file (yaml, json or toml)")
	fs.String("scene", "", "Path to scene YAML or JSON")
	fs.String("scene-dir", "", "Directory of scenes to run in batch")
	fs.String("start", "", `Start datetime "YYYY-MM-DDTHH:MM" (scene local time)`)
	fs.String("end", "", `End datetime "YYYY-MM-DDTHH:MM" (scene local time)`)
	fs.Int("step-minutes", 15, "Step size in minutes")
	fs.Bool("include-end", true, "Sample the end instant when it falls on a step")
	fs.StringSlice("height-ft", []string{"0"}, "Heights above ground to evaluate, in feet (repeatable)")
	fs.Float64("grid-resolution-ft", 0.82, "Grid spacing in feet")
	fs.Int("workers", 1, "Parallel step workers")
	fs.String("output-prefix", "", "Prefix for output files")
	fs.StringSlice("output", []string{FormatPNG}, "Outputs to write: png, csv, geojson, summary")
	fs.String("unit", "minutes", "Exposure unit: minutes or fraction")
	fs.Bool("save-scene-overhead", false, "Save overhead scene rendering for sanity checking")
	fs.String("shadows-at", "", "Instant whose shadows are added to the GeoJSON output")
	fs.Bool("view", false, "Open the interactive heatmap viewer")
	fs.String("log-level", "info", "Log level")
	fs.String("log-file", "", "Also write logs to this rotating file")
}

// LoadDotEnv loads KEY=VALUE files into the environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig builds a Config from defaults, the optional config file at path,
// SUNMAP_* environment variables and any flags that were set on fs.
func LoadConfig(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			// Only explicitly set flags take part, defaults live in setDefaults
			if !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("scene.path", c.Scene.Path)
	v.SetDefault("scene.dir", c.Scene.Dir)
	v.SetDefault("window.start", c.Window.Start)
	v.SetDefault("window.end", c.Window.End)
	v.SetDefault("window.step_minutes", c.Window.StepMinutes)
	v.SetDefault("window.include_end", c.Window.IncludeEnd)
	v.SetDefault("grid.heights_ft", c.Grid.HeightsFt)
	v.SetDefault("grid.resolution_ft", c.Grid.ResolutionFt)
	v.SetDefault("grid.workers", c.Grid.Workers)
	v.SetDefault("output.prefix", c.Output.Prefix)
	v.SetDefault("output.formats", c.Output.Formats)
	v.SetDefault("output.unit", c.Output.Unit)
	v.SetDefault("output.save_scene_overhead", c.Output.SaveSceneOverhead)
	v.SetDefault("output.shadows_at", c.Output.ShadowsAt)
	v.SetDefault("output.view", c.Output.View)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.file", c.Log.File)
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if (c.Scene.Path == "") == (c.Scene.Dir == "") {
		return fmt.Errorf("exactly one of scene or scene-dir is required")
	}
	if c.Window.Start == "" || c.Window.End == "" {
		return fmt.Errorf("start and end are required")
	}
	if c.Window.StepMinutes <= 0 {
		return fmt.Errorf("step-minutes must be > 0, got %d", c.Window.StepMinutes)
	}
	if len(c.Grid.HeightsFt) == 0 {
		return fmt.Errorf("at least one height-ft is required")
	}
	for _, h := range c.Grid.HeightsFt {
		if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
			return fmt.Errorf("height-ft must be a finite value >= 0, got %g", h)
		}
	}
	if !(c.Grid.ResolutionFt > 0) || math.IsInf(c.Grid.ResolutionFt, 0) {
		return fmt.Errorf("grid-resolution-ft must be > 0, got %g", c.Grid.ResolutionFt)
	}
	if c.Grid.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Grid.Workers)
	}
	switch strings.ToLower(c.Output.Unit) {
	case "minutes", "fraction":
	default:
		return fmt.Errorf("unit must be minutes or fraction, got %q", c.Output.Unit)
	}
	for _, f := range c.Output.Formats {
		switch strings.ToLower(f) {
		case FormatPNG, FormatCSV, FormatGeoJSON, FormatSummary:
		default:
			return fmt.Errorf("unknown output %q: must be png, csv, geojson or summary", f)
		}
	}
	if c.Output.Prefix == "" && (len(c.Output.Formats) > 0 || c.Output.SaveSceneOverhead) {
		return fmt.Errorf("output-prefix is required when writing outputs")
	}
	return nil
}

// StepDuration returns the sample spacing
func (c *Config) StepDuration() time.Duration {
	return time.Duration(c.Window.StepMinutes) * time.Minute
}

// HasFormat reports whether an output format was requested
func (c *Config) HasFormat(format string) bool {
	for _, f := range c.Output.Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// localLayouts are the accepted forms for window times without an offset
var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseLocalTime parses a window time. Times without an offset are read in
// loc; times with an offset are converted to loc.
func ParseLocalTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime format: %s", value)
}

// ParseWindow resolves the start and end of the window in the given timezone
func (c *Config) ParseWindow(timezone string) (start, end time.Time, err error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	start, err = ParseLocalTime(c.Window.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = ParseLocalTime(c.Window.End, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end time must be after start time")
	}
	return start, end, nil
}
