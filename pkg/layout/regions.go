// Package layout resolves percentage-based region templates into pixel
// rectangles for a given viewport.
package layout

import (
	"math"
	"sort"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
)

// RegionRects maps region names to their pixel rectangles.
type RegionRects map[string]geo.Rect

// ComputeRegionRects resolves each region's percentage rectangle against the
// viewport. With BasisSquare every percentage is taken of a centered square
// of side min(w, h); with BasisViewport x/w use the width and y/h the height.
// The result depends only on its arguments.
func ComputeRegionRects(regions []config.Region, basis config.Basis, w, h float64) RegionRects {
	ox, oy, bw, bh := Basis(basis, w, h)
	rects := make(RegionRects, len(regions))
	for _, reg := range regions {
		p := reg.Rect
		rects[reg.Name] = geo.Rect{
			X: ox + p.X/100*bw,
			Y: oy + p.Y/100*bh,
			W: p.W / 100 * bw,
			H: p.H / 100 * bh,
		}
	}
	return rects
}

// Basis returns the origin and size percentages are resolved against.
func Basis(basis config.Basis, w, h float64) (ox, oy, bw, bh float64) {
	if basis == config.BasisSquare {
		base := math.Min(w, h)
		return (w - base) / 2, (h - base) / 2, base, base
	}
	return 0, 0, w, h
}

// Bounds returns the union of all region rectangles.
func (rr RegionRects) Bounds() geo.Rect {
	var b geo.Rect
	for _, name := range rr.Names() {
		b = b.Union(rr[name])
	}
	return b
}

// Names returns the region names in sorted order.
func (rr RegionRects) Names() []string {
	names := make([]string, 0, len(rr))
	for name := range rr {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegionAt returns the first region (in name order) whose rectangle contains
// p, or "" when none does.
func (rr RegionRects) RegionAt(p geo.Point) string {
	for _, name := range rr.Names() {
		if rr[name].Contains(p) {
			return name
		}
	}
	return ""
}
