package output

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
)

// inferno holds evenly spaced stops of a perceptually uniform dark-to-bright ramp
var inferno = []color.RGBA{
	{0x00, 0x00, 0x04, 0xff},
	{0x1b, 0x0c, 0x41, 0xff},
	{0x4a, 0x0c, 0x6b, 0xff},
	{0x78, 0x1c, 0x6d, 0xff},
	{0xa5, 0x2c, 0x60, 0xff},
	{0xcf, 0x44, 0x46, 0xff},
	{0xed, 0x69, 0x25, 0xff},
	{0xfb, 0x9b, 0x06, 0xff},
	{0xf7, 0xd1, 0x3d, 0xff},
	{0xfc, 0xff, 0xa4, 0xff},
}

// Ramp maps t in [0, 1] onto the heatmap ramp. Values outside are clamped.
func Ramp(t float64) color.RGBA {
	if math.IsNaN(t) || t <= 0 {
		return inferno[0]
	}
	if t >= 1 {
		return inferno[len(inferno)-1]
	}

	pos := t * float64(len(inferno)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := inferno[i], inferno[i+1]
	return color.RGBA{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: 0xff,
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// Colors used by the overhead scene rendering
var sceneColors = struct {
	Background color.RGBA
	Border     color.RGBA
	Shadow     color.RGBA
	Kinds      map[string]color.RGBA
	Unknown    color.RGBA
}{
	Background: color.RGBA{245, 243, 235, 255}, // Paper
	Border:     color.RGBA{120, 120, 120, 255}, // Bounds frame
	Shadow:     color.RGBA{60, 60, 90, 110},    // Translucent shade
	Kinds: map[string]color.RGBA{
		"structure": {70, 90, 160, 255}, // Blue
		"deck":      {150, 110, 70, 255},
		"fence":     {90, 70, 50, 255},
		"tree":      {60, 140, 70, 255}, // Canopy green
	},
	Unknown: color.RGBA{200, 0, 200, 255},
}

// KindColor returns the fill color for an obstacle kind
func KindColor(kind string) color.RGBA {
	if c, ok := sceneColors.Kinds[kind]; ok {
		return c
	}
	return sceneColors.Unknown
}

// fill paints a solid rectangle
func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

// SavePNG saves an image to a PNG file, creating parent directories
func SavePNG(img image.Image, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Darken returns a darker version of a color
func Darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}
