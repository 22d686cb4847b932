package mask

import "image"

// Reader is a read-only view of a boolean grid.
type Reader interface {
	At(x, y int) bool
	Bounds() image.Rectangle
}

// Grid is a compact bit grid. Bits outside Rect read as false and ignore
// writes.
type Grid struct {
	Bytes  []byte
	Stride int
	Rect   image.Rectangle
}

// NewGrid returns a cleared grid covering r.
func NewGrid(r image.Rectangle) *Grid {
	w, h := r.Dx(), r.Dy()
	stride := (w + 7) / 8
	return &Grid{
		Bytes:  make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// Bounds returns the bounds of the grid.
func (g *Grid) Bounds() image.Rectangle {
	return g.Rect
}

// maskIndex returns the bit mask and byte index for the bit at a point.
func (g *Grid) maskIndex(x, y int) (byte, int) {
	x -= g.Rect.Min.X
	y -= g.Rect.Min.Y
	return 1 << uint(x&7), y*g.Stride + x>>3
}

// At returns whether the bit is set at a point.
func (g *Grid) At(x, y int) bool {
	if !image.Pt(x, y).In(g.Rect) {
		return false
	}
	mask, index := g.maskIndex(x, y)
	return g.Bytes[index]&mask != 0
}

// Set sets or resets the bit at a point.
func (g *Grid) Set(x, y int, bit bool) {
	if !image.Pt(x, y).In(g.Rect) {
		return
	}
	mask, index := g.maskIndex(x, y)
	if bit {
		g.Bytes[index] |= mask
	} else {
		g.Bytes[index] &^= mask
	}
}

// Count returns the number of set bits.
func (g *Grid) Count() int {
	n := 0
	for y := g.Rect.Min.Y; y < g.Rect.Max.Y; y++ {
		for x := g.Rect.Min.X; x < g.Rect.Max.X; x++ {
			if g.At(x, y) {
				n++
			}
		}
	}
	return n
}

// SumTable is a summed-area table over a Reader, answering "how many set
// cells lie in this rectangle" in constant time.
type SumTable struct {
	rect   image.Rectangle
	stride int
	sums   []int32 // (w+1)*(h+1), row 0 and column 0 are zero
}

// NewSumTable builds the table for r.
func NewSumTable(r Reader) *SumTable {
	b := r.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := w + 1
	sums := make([]int32, stride*(h+1))
	for y := 0; y < h; y++ {
		var row int32
		for x := 0; x < w; x++ {
			if r.At(x+b.Min.X, y+b.Min.Y) {
				row++
			}
			sums[(y+1)*stride+x+1] = sums[y*stride+x+1] + row
		}
	}
	return &SumTable{rect: b, stride: stride, sums: sums}
}

// Bounds returns the bounds of the source grid.
func (s *SumTable) Bounds() image.Rectangle {
	return s.rect
}

// Count returns the number of set cells inside q, clipped to the bounds.
func (s *SumTable) Count(q image.Rectangle) int {
	q = q.Intersect(s.rect)
	if q.Empty() {
		return 0
	}
	x0, y0 := q.Min.X-s.rect.Min.X, q.Min.Y-s.rect.Min.Y
	x1, y1 := q.Max.X-s.rect.Min.X, q.Max.Y-s.rect.Min.Y
	v := s.sums[y1*s.stride+x1] - s.sums[y0*s.stride+x1] - s.sums[y1*s.stride+x0] + s.sums[y0*s.stride+x0]
	return int(v)
}

// Full reports whether every cell of q is set. Rectangles reaching outside
// the bounds are never full.
func (s *SumTable) Full(q image.Rectangle) bool {
	if q.Empty() || !q.In(s.rect) {
		return false
	}
	return s.Count(q) == q.Dx()*q.Dy()
}
