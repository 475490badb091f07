package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"chosenoffset.com/sunmap/internal/core/exposure"
)

// summaryPlaces is the rounding applied to every reported statistic
const summaryPlaces = 2

// Summary describes an exposure map in a few numbers
type Summary struct {
	Scene       string          `json:"scene"`
	HeightFt    float64         `json:"height_ft"`
	Unit        exposure.Unit   `json:"unit"`
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	StepMinutes float64         `json:"step_minutes"`
	Steps       int             `json:"steps"`
	Points      int             `json:"points"`
	Min         decimal.Decimal `json:"min"`
	Max         decimal.Decimal `json:"max"`
	Mean        decimal.Decimal `json:"mean"`
	Median      decimal.Decimal `json:"median"`
	StdDev      decimal.Decimal `json:"std_dev"`

	// FullSunShare is the share of points that were lit at every step
	FullSunShare decimal.Decimal `json:"full_sun_share"`
	// FullShadeShare is the share of points that were never lit
	FullShadeShare decimal.Decimal `json:"full_shade_share"`
}

// Summarize computes statistics over a result
func Summarize(r *Result) Summary {
	values := flatten(r.Values)
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	// The value a point reaches when it is lit at every step
	full := 1.0
	if r.Unit == exposure.UnitMinutes {
		full = float64(r.Steps) * r.Step.Minutes()
	}

	var sun, shade int
	for _, v := range values {
		if v >= full-1e-9 {
			sun++
		}
		if v <= 1e-9 {
			shade++
		}
	}

	n := float64(len(values))
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}

	name := ""
	if r.Scene != nil {
		name = r.Scene.Name
	}
	return Summary{
		Scene:          name,
		HeightFt:       r.HeightFt,
		Unit:           r.Unit,
		Start:          r.Start,
		End:            r.End,
		StepMinutes:    r.Step.Minutes(),
		Steps:          r.Steps,
		Points:         len(values),
		Min:            round(floats.Min(values)),
		Max:            round(floats.Max(values)),
		Mean:           round(mean),
		Median:         round(stat.Quantile(0.5, stat.Empirical, sorted, nil)),
		StdDev:         round(std),
		FullSunShare:   round(float64(sun) / n),
		FullShadeShare: round(float64(shade) / n),
	}
}

// flatten copies a matrix into a row-major slice
func flatten(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	data := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		data = append(data, m.RawRowView(r)...)
	}
	return data
}

func round(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(summaryPlaces)
}

// SummaryJSON writes "<prefix>_summary_<height>ft.json"
type SummaryJSON struct {
	Prefix string
}

// Path returns the file written for a height
func (s *SummaryJSON) Path(heightFt float64) string {
	return PathFor(s.Prefix, "summary", heightFt, "json")
}

func (s *SummaryJSON) Write(r *Result) error {
	data, err := json.MarshalIndent(Summarize(r), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	path := s.Path(r.HeightFt)
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}
	return nil
}
