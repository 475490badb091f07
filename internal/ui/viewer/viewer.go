// Package viewer is an interactive window for browsing exposure heatmaps.
// Left and right cycle through evaluation heights, space flips between the
// heatmap and the overhead scene, S toggles the shadow overlay and escape
// quits. Hovering a cell shows its value.
package viewer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"chosenoffset.com/sunmap/internal/core/exposure"
	"chosenoffset.com/sunmap/internal/core/shadows"
	"chosenoffset.com/sunmap/internal/output"
	"chosenoffset.com/sunmap/internal/render"
)

const (
	screenWidth  = 960
	screenHeight = 720
	margin       = 16
	statusHeight = 40
)

var (
	backgroundColor = color.RGBA{20, 20, 24, 255}
	textColor       = color.RGBA{230, 230, 230, 255}
	cursorColor     = color.RGBA{80, 220, 255, 255}
)

// Layer is one evaluation height ready for display
type Layer struct {
	Result *output.Result

	heatmap image.Image
	cellPx  int
	tex     render.Image
}

// Viewer implements render.Game
type Viewer struct {
	renderer render.Renderer
	input    render.InputManager

	layers  []*Layer
	current int

	overhead       image.Image // Scene without shadows
	overheadShadow image.Image // Scene under the shadows of Frame, may be nil
	overheadTex    map[bool]render.Image

	showOverhead bool
	showShadows  bool

	hover string
}

// New builds a viewer over finished results. frame, when not nil, supplies
// the shadows drawn in the overhead view.
func New(renderer render.Renderer, input render.InputManager, results []*output.Result, frame *shadows.Frame) (*Viewer, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("viewer needs at least one result")
	}

	v := &Viewer{
		renderer:    renderer,
		input:       input,
		overheadTex: map[bool]render.Image{},
		showShadows: frame != nil,
	}
	for _, r := range results {
		rows, cols := r.Values.Dims()
		cell := fitCell(rows, cols)
		v.layers = append(v.layers, &Layer{
			Result:  r,
			heatmap: output.RenderHeatmap(r, cell),
			cellPx:  cell,
		})
	}

	sc := results[0].Scene
	pxPerFt := fitScale(sc.Bounds.Width(), sc.Bounds.Height())
	v.overhead = output.RenderOverhead(sc, nil, pxPerFt)
	if frame != nil {
		v.overheadShadow = output.RenderOverhead(sc, frame, pxPerFt)
	}
	return v, nil
}

// fitCell picks the largest whole cell size that fits the map area
func fitCell(rows, cols int) int {
	availW := screenWidth - 2*margin - 40 // legend
	availH := screenHeight - 2*margin - statusHeight
	cell := int(math.Min(float64(availW/cols), float64(availH/rows)))
	if cell < 1 {
		cell = 1
	}
	return cell
}

// fitScale picks pixels per foot so the overhead view fits the map area
func fitScale(widthFt, heightFt float64) float64 {
	availW := float64(screenWidth - 2*margin)
	availH := float64(screenHeight - 2*margin - statusHeight)
	return math.Max(0.5, math.Min(availW/widthFt, availH/heightFt))
}

// Current returns the layer on screen
func (v *Viewer) Current() *Layer {
	return v.layers[v.current]
}

// Hover returns the status text for the cell under the cursor
func (v *Viewer) Hover() string {
	return v.hover
}

// ShowingOverhead reports whether the overhead scene is on screen
func (v *Viewer) ShowingOverhead() bool {
	return v.showOverhead
}

// Update handles input
func (v *Viewer) Update() error {
	if v.input.IsKeyJustPressed(render.KeyEscape) {
		return render.ErrQuit
	}
	if v.input.IsKeyJustPressed(render.KeyRight) {
		v.current = (v.current + 1) % len(v.layers)
	}
	if v.input.IsKeyJustPressed(render.KeyLeft) {
		v.current = (v.current - 1 + len(v.layers)) % len(v.layers)
	}
	if v.input.IsKeyJustPressed(render.KeySpace) {
		v.showOverhead = !v.showOverhead
	}
	if v.input.IsKeyJustPressed(render.KeyS) && v.overheadShadow != nil {
		v.showShadows = !v.showShadows
	}

	v.hover = ""
	if !v.showOverhead {
		x, y := v.input.GetCursorPosition()
		if row, col, ok := v.CellAt(x, y); ok {
			l := v.Current()
			g := l.Result.Grid
			v.hover = fmt.Sprintf("(%.2f, %.2f) ft: %s", g.X(col), g.Y(row), formatValue(l.Result, l.Result.Values.At(row, col)))
		}
	}
	return nil
}

// CellAt maps a screen position to the grid cell drawn there
func (v *Viewer) CellAt(x, y int) (row, col int, ok bool) {
	l := v.Current()
	rows, cols := l.Result.Values.Dims()
	px, py := x-margin, y-margin
	if px < 0 || py < 0 {
		return 0, 0, false
	}
	col = px / l.cellPx
	row = rows - 1 - py/l.cellPx
	if col >= cols || row < 0 {
		return 0, 0, false
	}
	return row, col, true
}

func formatValue(r *output.Result, value float64) string {
	if r.Unit == exposure.UnitFraction {
		return fmt.Sprintf("%.0f%% sun", value*100)
	}
	return fmt.Sprintf("%.0f min sun", value)
}

// Draw renders the current view
func (v *Viewer) Draw(screen render.Image) {
	screen.Fill(backgroundColor)

	geoM := render.NewGeoM()
	geoM.Translate(margin, margin)
	opts := &render.DrawImageOptions{GeoM: geoM}

	l := v.Current()
	if v.showOverhead {
		screen.DrawImage(v.overheadTexture(), opts)
	} else {
		if l.tex == nil {
			l.tex = v.renderer.NewImageFromImage(l.heatmap)
		}
		screen.DrawImage(l.tex, opts)
		v.drawCursor(screen, l)
	}

	status := fmt.Sprintf("%s  height %sft  %d steps  [%d/%d]", l.Result.Scene.Name,
		heightLabel(l.Result.HeightFt), l.Result.Steps, v.current+1, len(v.layers))
	if v.hover != "" {
		status += "  " + v.hover
	}
	v.renderer.DrawText(screen, status, margin, screenHeight-statusHeight+8, textColor, 1)
	v.renderer.DrawText(screen, output.UnitLabel(l.Result.Unit)+"   arrows: height  space: overhead  S: shadows  esc: quit",
		margin, screenHeight-statusHeight+22, textColor, 1)
}

func (v *Viewer) overheadTexture() render.Image {
	shaded := v.showShadows && v.overheadShadow != nil
	if tex, ok := v.overheadTex[shaded]; ok {
		return tex
	}
	src := v.overhead
	if shaded {
		src = v.overheadShadow
	}
	tex := v.renderer.NewImageFromImage(src)
	v.overheadTex[shaded] = tex
	return tex
}

func (v *Viewer) drawCursor(screen render.Image, l *Layer) {
	x, y := v.input.GetCursorPosition()
	row, col, ok := v.CellAt(x, y)
	if !ok {
		return
	}
	rows, _ := l.Result.Values.Dims()
	cx := float32(margin + col*l.cellPx)
	cy := float32(margin + (rows-1-row)*l.cellPx)
	v.renderer.StrokeRect(screen, cx, cy, float32(l.cellPx), float32(l.cellPx), 1, cursorColor)
}

func heightLabel(h float64) string {
	return fmt.Sprintf("%g", h)
}

// Layout returns a fixed logical screen size
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// Run opens a window and blocks until the viewer quits
func Run(engine render.Engine, v *Viewer) error {
	engine.SetWindowSize(screenWidth, screenHeight)
	engine.SetWindowTitle("sunmap: " + v.layers[0].Result.Scene.Name)
	engine.SetWindowResizable(true)
	return engine.RunGame(v)
}
