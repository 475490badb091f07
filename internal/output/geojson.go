package output

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"chosenoffset.com/sunmap/internal/core/shadows"
	"chosenoffset.com/sunmap/internal/world/scene"
)

// Feature layers in the overhead collection
const (
	LayerBounds   = "bounds"
	LayerObstacle = "obstacle"
	LayerShadow   = "shadow"
)

// GeoJSON writes an overhead diagram to "<prefix>_overhead_<height>ft.geojson".
// Coordinates are yard-local feet, not longitude and latitude.
type GeoJSON struct {
	Prefix string

	// Frame, when set, adds its shadow hulls to the diagram
	Frame *shadows.Frame
}

// Path returns the file written for a height
func (g *GeoJSON) Path(heightFt float64) string {
	return PathFor(g.Prefix, "overhead", heightFt, "geojson")
}

func (g *GeoJSON) Write(r *Result) error {
	fc := Overhead(r.Scene, g.Frame)
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode geojson: %w", err)
	}

	path := g.Path(r.HeightFt)
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write geojson %s: %w", path, err)
	}
	return nil
}

// Overhead builds a feature collection of the yard bounds, every obstacle and
// optionally the shadows of one frame
func Overhead(sc *scene.Scene, frame *shadows.Frame) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	b := sc.Bounds
	bounds := geojson.NewFeature(orb.Bound{
		Min: orb.Point{b.XMin, b.YMin},
		Max: orb.Point{b.XMax, b.YMax},
	}.ToPolygon())
	bounds.Properties["layer"] = LayerBounds
	bounds.Properties["name"] = sc.Name
	bounds.Properties["units"] = "ft"
	bounds.Properties["orientation_deg_cw_from_north"] = sc.OrientationDeg
	fc.Append(bounds)

	for _, o := range sc.Obstacles {
		f := geojson.NewFeature(toPolygon(o.Footprint))
		f.Properties["layer"] = LayerObstacle
		f.Properties["name"] = o.Name
		f.Properties["kind"] = o.Kind
		f.Properties["height_ft"] = o.HeightFt
		fc.Append(f)
	}

	if frame != nil && !frame.Night {
		for _, s := range frame.Shadows {
			f := geojson.NewFeature(toPolygon(s.Polygon))
			f.Properties["layer"] = LayerShadow
			f.Properties["obstacle"] = s.Obstacle
			f.Properties["sun_azimuth_deg"] = frame.Sun.AzimuthDeg
			f.Properties["sun_elevation_deg"] = frame.Sun.ElevationDeg
			fc.Append(f)
		}
	}
	return fc
}

// toPolygon returns a closed single-ring orb polygon
func toPolygon(p shadows.Polygon) orb.Polygon {
	ring := make(orb.Ring, 0, len(p)+1)
	ring = append(ring, p...)
	if len(p) > 0 && p[0] != p[len(p)-1] {
		ring = append(ring, p[0])
	}
	return orb.Polygon{ring}
}
