package output

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"chosenoffset.com/sunmap/internal/core/shadows"
	"chosenoffset.com/sunmap/internal/world/scene"
)

// outlineShade darkens a kind color for its footprint outline
const outlineShade = 0.6

// OverheadPath returns "<prefix>_scene_overhead.png"
func OverheadPath(prefix string) string {
	return prefix + "_scene_overhead.png"
}

// SaveOverhead renders the scene from above and writes it as a PNG
func SaveOverhead(sc *scene.Scene, frame *shadows.Frame, prefix string, pxPerFt float64) error {
	return SavePNG(RenderOverhead(sc, frame, pxPerFt), OverheadPath(prefix))
}

// RenderOverhead draws obstacles filled by kind, optionally under the shadows
// of one frame, with north up. pxPerFt defaults to 8.
func RenderOverhead(sc *scene.Scene, frame *shadows.Frame, pxPerFt float64) *image.RGBA {
	if !(pxPerFt > 0) {
		pxPerFt = 8
	}
	b := sc.Bounds
	w := int(math.Ceil(b.Width()*pxPerFt)) + 1
	h := int(math.Ceil(b.Height()*pxPerFt)) + 1
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(img, img.Bounds(), sceneColors.Background)

	// toYard maps a pixel center back into yard feet
	toYard := func(px, py int) shadows.Point {
		return shadows.Point{
			b.XMin + (float64(px)+0.5)/pxPerFt,
			b.YMax - (float64(py)+0.5)/pxPerFt,
		}
	}
	toPixels := func(bound shadows.Polygon) image.Rectangle {
		bb := bound.Bound()
		return image.Rect(
			int(math.Floor((bb.Min[0]-b.XMin)*pxPerFt)),
			int(math.Floor((b.YMax-bb.Max[1])*pxPerFt)),
			int(math.Ceil((bb.Max[0]-b.XMin)*pxPerFt))+1,
			int(math.Ceil((b.YMax-bb.Min[1])*pxPerFt))+1,
		).Intersect(img.Bounds())
	}

	for _, o := range sc.Obstacles {
		fillPolygon(img, o.Footprint, toPixels(o.Footprint), toYard, KindColor(o.Kind), draw.Src)
	}
	if frame != nil && !frame.Night {
		for _, s := range frame.Shadows {
			fillPolygon(img, s.Polygon, toPixels(s.Polygon), toYard, sceneColors.Shadow, draw.Over)
		}
	}
	for _, o := range sc.Obstacles {
		strokePolygon(img, o.Footprint, b, pxPerFt, Darken(KindColor(o.Kind), outlineShade))
	}

	// Frame the bounds
	border := sceneColors.Border
	fill(img, image.Rect(0, 0, w, 1), border)
	fill(img, image.Rect(0, h-1, w, h), border)
	fill(img, image.Rect(0, 0, 1, h), border)
	fill(img, image.Rect(w-1, 0, w, h), border)
	return img
}

// fillPolygon paints every pixel in area whose center lies in poly
func fillPolygon(img *image.RGBA, poly shadows.Polygon, area image.Rectangle, toYard func(px, py int) shadows.Point, c color.RGBA, op draw.Op) {
	src := &image.Uniform{c}
	for py := area.Min.Y; py < area.Max.Y; py++ {
		for px := area.Min.X; px < area.Max.X; px++ {
			if shadows.PointInPolygon(toYard(px, py), poly) {
				draw.Draw(img, image.Rect(px, py, px+1, py+1), src, image.Point{}, op)
			}
		}
	}
}

// strokePolygon traces each edge at half-pixel steps
func strokePolygon(img *image.RGBA, poly shadows.Polygon, b scene.Bounds, pxPerFt float64, c color.RGBA) {
	for i := range poly {
		a, e := poly[i], poly[(i+1)%len(poly)]
		steps := int(math.Ceil(math.Hypot(e[0]-a[0], e[1]-a[1])*pxPerFt*2)) + 1
		for k := 0; k <= steps; k++ {
			t := float64(k) / float64(steps)
			x := a[0] + t*(e[0]-a[0])
			y := a[1] + t*(e[1]-a[1])
			px := int(math.Floor((x - b.XMin) * pxPerFt))
			py := int(math.Floor((b.YMax - y) * pxPerFt))
			img.SetRGBA(px, py, c)
		}
	}
}
