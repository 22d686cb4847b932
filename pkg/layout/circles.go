package layout

import (
	"math"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
)

// CityCircle is a city disc in pixel space.
type CityCircle struct {
	Center geo.Point `json:"center"`
	Radius float64   `json:"radius"`
}

// Bounds returns the circle's bounding rectangle.
func (c CityCircle) Bounds() geo.Rect {
	return geo.Rect{
		X: c.Center.X - c.Radius,
		Y: c.Center.Y - c.Radius,
		W: 2 * c.Radius,
		H: 2 * c.Radius,
	}
}

// CityCircles maps region -> city -> circle.
type CityCircles map[string]map[string]CityCircle

// Lookup returns the circle for a region/city pair.
func (cc CityCircles) Lookup(region, city string) (CityCircle, bool) {
	c, ok := cc[region][city]
	return c, ok
}

// ComputeCityCircles resolves the configured city circles relative to their
// region rectangles. Cities without a circle are omitted.
func ComputeCityCircles(regions []config.Region, rects RegionRects) CityCircles {
	out := make(CityCircles, len(regions))
	for _, reg := range regions {
		rect, ok := rects[reg.Name]
		if !ok {
			continue
		}
		short := math.Min(rect.W, rect.H)
		for _, city := range reg.Cities {
			if city.Circle == nil {
				continue
			}
			if out[reg.Name] == nil {
				out[reg.Name] = make(map[string]CityCircle)
			}
			out[reg.Name][city.Name] = CityCircle{
				Center: geo.Point{
					X: rect.X + city.Circle.X/100*rect.W,
					Y: rect.Y + city.Circle.Y/100*rect.H,
				},
				Radius: city.Circle.Radius / 100 * short,
			}
		}
	}
	return out
}
