package nav

import (
	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
	"github.com/audth517/Japan-Receipt-Map/pkg/place"
)

// HitTest returns the index of the first point whose hit area contains the
// world position, or -1. Circles hit within radius*slop of their center;
// thumbnails hit inside their rectangle scaled by slop about its center.
func HitTest(points []place.PlacedPoint, wx, wy, slop float64) int {
	p := geo.Point{X: wx, Y: wy}
	for i := range points {
		if Hits(&points[i], p, slop) {
			return i
		}
	}
	return -1
}

// Hits reports whether p falls in pt's hit area.
func Hits(pt *place.PlacedPoint, p geo.Point, slop float64) bool {
	if pt.Thumb != nil {
		r := *pt.Thumb
		grown := r.Inset(-(slop - 1) * min(r.W, r.H) / 2)
		return grown.Contains(p)
	}
	r := pt.Radius * slop
	return p.DistanceSq(pt.Center()) <= r*r
}
