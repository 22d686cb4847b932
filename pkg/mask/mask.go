// Package mask classifies the pixels of per-city mask images into usable
// area and samples positions from it.
package mask

import (
	"image"
	"image/color"
	"math"

	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
)

// Options controls pixel classification.
type Options struct {
	Target    color.NRGBA
	Tolerance uint8
	Margin    float64 // fraction of width/height excluded on each side
	Stride    int     // sample every Stride-th pixel; < 1 means 1
}

// CityMask is the set of inside pixels of one city mask image, in image
// pixel space.
type CityMask struct {
	Points []image.Point   `json:"-"`
	Bounds image.Rectangle `json:"bounds"` // bounding box of Points, Max exclusive
	Size   image.Point     `json:"size"`   // source image dimensions
	Count  int             `json:"count"`
	grid   *Grid
	stride int
	center geo.Point
}

// Empty reports whether no usable pixel was found.
func (m *CityMask) Empty() bool {
	return m == nil || len(m.Points) == 0
}

// Inside reports whether the pixel at (x, y) was classified as inside.
// Pixels between stride samples take the class of the sample at or above
// and to the left of them.
func (m *CityMask) Inside(x, y int) bool {
	if m == nil || m.grid == nil {
		return false
	}
	if m.stride > 1 && x >= 0 && y >= 0 {
		x -= x % m.stride
		y -= y % m.stride
	}
	return m.grid.At(x, y)
}

// Grid returns the classification grid in image pixel space.
func (m *CityMask) Grid() Reader {
	return m.grid
}

// Centroid returns the mean of the inside points.
func (m *CityMask) Centroid() geo.Point {
	if m.Empty() {
		return geo.Origin
	}
	return m.center
}

// Build scans img and collects every pixel that has nonzero alpha, lies
// within Tolerance of Target on each channel, and lies inside the margin.
// Coordinates are relative to the image's top-left corner. A mask with no
// inside pixels is valid and signals that callers should fall back.
func Build(img image.Image, opts Options) *CityMask {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	m := &CityMask{
		Size: image.Pt(w, h),
		grid: NewGrid(image.Rect(0, 0, w, h)),
	}

	stride := opts.Stride
	if stride < 1 {
		stride = 1
	}
	m.stride = stride
	mx := opts.Margin * float64(w)
	my := opts.Margin * float64(h)

	at := pixelReader(img)
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := -1, -1
	var sx, sy float64

	for y := 0; y < h; y += stride {
		if float64(y) < my || float64(y) >= float64(h)-my {
			continue
		}
		for x := 0; x < w; x += stride {
			if float64(x) < mx || float64(x) >= float64(w)-mx {
				continue
			}
			c := at(x+b.Min.X, y+b.Min.Y)
			if !matches(c, opts.Target, opts.Tolerance) {
				continue
			}
			m.Points = append(m.Points, image.Pt(x, y))
			m.grid.Set(x, y, true)
			sx += float64(x)
			sy += float64(y)
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}

	m.Count = len(m.Points)
	if m.Count > 0 {
		m.Bounds = image.Rect(minX, minY, maxX+1, maxY+1)
		m.center = geo.Point{X: sx / float64(m.Count), Y: sy / float64(m.Count)}
	}
	return m
}

func matches(c, target color.NRGBA, tol uint8) bool {
	if c.A == 0 {
		return false
	}
	return absDiff(c.R, target.R) <= tol &&
		absDiff(c.G, target.G) <= tol &&
		absDiff(c.B, target.B) <= tol
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// pixelReader returns a non-premultiplied pixel accessor, reading *image.NRGBA
// directly and converting everything else through the color model.
func pixelReader(img image.Image) func(x, y int) color.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return func(x, y int) color.NRGBA {
			i := n.PixOffset(x, y)
			p := n.Pix[i : i+4 : i+4]
			return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
		}
	}
	return func(x, y int) color.NRGBA {
		return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	}
}
