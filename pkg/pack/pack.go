// Package pack places rectangles inside a boolean mask grid without overlap,
// first-fit in row-major order.
//
// The scan is O(rects x grid area) in the worst case. That is fine for a few
// hundred receipts per city; a skyline or shelf packer would be needed for
// much larger inputs.
package pack

import (
	"image"

	"github.com/audth517/Japan-Receipt-Map/pkg/mask"
)

// Size is a rectangle size in grid cells.
type Size struct {
	W, H int
}

// Placement is the outcome for one input rectangle.
type Placement struct {
	Index  int             `json:"index"`
	Rect   image.Rectangle `json:"rect"`
	Placed bool            `json:"placed"`
}

// Pack places each size in input order at the first row-major grid position
// where its whole footprint is inside the mask and does not overlap a
// previously placed rectangle. Sizes that fit nowhere are returned with
// Placed false.
func Pack(grid mask.Reader, sizes []Size) []Placement {
	st := mask.NewSumTable(grid)
	b := grid.Bounds()
	out := make([]Placement, len(sizes))
	placed := make([]image.Rectangle, 0, len(sizes))

	for i, sz := range sizes {
		out[i] = Placement{Index: i}
		if sz.W <= 0 || sz.H <= 0 || sz.W > b.Dx() || sz.H > b.Dy() {
			continue
		}
		if r, ok := firstFit(st, b, sz, placed); ok {
			out[i].Rect = r
			out[i].Placed = true
			placed = append(placed, r)
		}
	}
	return out
}

func firstFit(st *mask.SumTable, b image.Rectangle, sz Size, placed []image.Rectangle) (image.Rectangle, bool) {
	for y := b.Min.Y; y+sz.H <= b.Max.Y; y++ {
		for x := b.Min.X; x+sz.W <= b.Max.X; x++ {
			r := image.Rect(x, y, x+sz.W, y+sz.H)
			if hit, ok := overlapping(r, placed); ok {
				// Every x before hit's right edge overlaps it too.
				x = hit.Max.X - 1
				continue
			}
			if st.Full(r) {
				return r, true
			}
		}
	}
	return image.Rectangle{}, false
}

func overlapping(r image.Rectangle, placed []image.Rectangle) (image.Rectangle, bool) {
	for _, p := range placed {
		if r.Overlaps(p) {
			return p, true
		}
	}
	return image.Rectangle{}, false
}

// Count returns how many placements succeeded.
func Count(ps []Placement) int {
	n := 0
	for _, p := range ps {
		if p.Placed {
			n++
		}
	}
	return n
}
