package output

import (
	"image"

	"gonum.org/v1/gonum/mat"

	"chosenoffset.com/sunmap/internal/core/exposure"
)

const (
	defaultCellPx = 4
	legendGapPx   = 6
	legendWidthPx = 16
)

// Heatmap writes "<prefix>_heatmap_<height>ft.png"
type Heatmap struct {
	Prefix string
	CellPx int // Pixels per grid sample, default 4
}

// Path returns the file written for a height
func (h *Heatmap) Path(heightFt float64) string {
	return PathFor(h.Prefix, "heatmap", heightFt, "png")
}

func (h *Heatmap) Write(r *Result) error {
	cell := h.CellPx
	if cell <= 0 {
		cell = defaultCellPx
	}
	return SavePNG(RenderHeatmap(r, cell), h.Path(r.HeightFt))
}

// Range returns the value span mapped onto the color ramp. Fractions always
// use [0, 1]; minutes stretch from the smallest to the largest value.
func Range(unit exposure.Unit, values *mat.Dense) (lo, hi float64) {
	if unit == exposure.UnitFraction {
		return 0, 1
	}
	return mat.Min(values), mat.Max(values)
}

// Normalize maps v into [0, 1] for the given span. A flat span maps to 1
// when it is positive so a fully lit yard draws bright.
func Normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		if hi > 0 {
			return 1
		}
		return 0
	}
	return (v - lo) / (hi - lo)
}

// RenderHeatmap draws the exposure map with north up and a legend bar on
// the right. Grid row 0 (the southern edge) is the bottom pixel row.
func RenderHeatmap(r *Result, cellPx int) *image.RGBA {
	rows, cols := r.Values.Dims()
	mapW, mapH := cols*cellPx, rows*cellPx
	img := image.NewRGBA(image.Rect(0, 0, mapW+legendGapPx+legendWidthPx, mapH))
	fill(img, img.Bounds(), sceneColors.Background)

	lo, hi := Range(r.Unit, r.Values)
	for row := 0; row < rows; row++ {
		py := (rows - 1 - row) * cellPx
		for col := 0; col < cols; col++ {
			c := Ramp(Normalize(r.Values.At(row, col), lo, hi))
			px := col * cellPx
			fill(img, image.Rect(px, py, px+cellPx, py+cellPx), c)
		}
	}

	// Legend: bright at the top
	x0 := mapW + legendGapPx
	for y := 0; y < mapH; y++ {
		t := 1.0
		if mapH > 1 {
			t = 1 - float64(y)/float64(mapH-1)
		}
		fill(img, image.Rect(x0, y, x0+legendWidthPx, y+1), Ramp(t))
	}
	return img
}
