// Package place positions receipts on the map: inside their city's mask
// when one is usable, inside a configured city circle in circle mode, and
// uniformly inside the region rectangle otherwise.
package place

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
	"github.com/audth517/Japan-Receipt-Map/pkg/layout"
	"github.com/audth517/Japan-Receipt-Map/pkg/mask"
	"github.com/audth517/Japan-Receipt-Map/pkg/pricescale"
	"github.com/audth517/Japan-Receipt-Map/pkg/receipt"
	"github.com/audth517/Japan-Receipt-Map/pkg/validation"
)

// ErrMissingLayout tags records whose region has no rectangle.
var ErrMissingLayout = errors.New("no layout for region")

// PlacedPoint is a receipt with its computed position and size.
type PlacedPoint struct {
	ID       string    `json:"id"`
	Filename string    `json:"filename,omitempty"`
	Region   string    `json:"region"`
	City     string    `json:"city"`
	Category string    `json:"category"`
	Price    float64   `json:"price"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Radius   float64   `json:"radius"`
	Thumb    *geo.Rect `json:"thumb,omitempty"`
}

// Center returns the point's position.
func (p PlacedPoint) Center() geo.Point {
	return geo.Point{X: p.X, Y: p.Y}
}

// Anchor is a position in region unit space: (0,0) is the region
// rectangle's top-left corner and (1,1) its bottom-right.
type Anchor struct {
	U, V float64
}

// Project maps the anchor into a region rectangle.
func (a Anchor) Project(r geo.Rect) geo.Point {
	return r.Lerp(a.U, a.V)
}

// Source records which strategy produced an anchor.
type Source string

const (
	SourceMask    Source = "mask"
	SourceCircle  Source = "circle"
	SourceUniform Source = "uniform"
)

// Placer computes anchors and placed points. Rand must not be shared with
// another goroutine.
type Placer struct {
	Mode            config.PlacementMode
	Scale           pricescale.Scale
	Rand            *rand.Rand
	CentralFraction float64
	CentralMin      int

	// Regions supplies city circles for circle mode.
	Regions []config.Region

	central map[*mask.CityMask][]image.Point
}

// New returns a Placer configured from cfg whose price scale spans the
// valid prices of records.
func New(cfg *config.SceneConfig, records []receipt.Receipt, rng *rand.Rand) *Placer {
	var rg pricescale.Range
	for _, r := range records {
		if r.Price.Valid {
			rg.Observe(r.Price.Value)
		}
	}
	if rng == nil {
		rng = NewRand(cfg.Placement.Seed)
	}
	return &Placer{
		Mode: cfg.Placement.Mode,
		Scale: pricescale.Scale{
			Range:    rg,
			OutMin:   cfg.PriceScale.OutMin,
			OutMax:   cfg.PriceScale.OutMax,
			Midpoint: cfg.PriceScale.Midpoint,
		},
		Rand:            rng,
		CentralFraction: cfg.Placement.CentralFraction,
		CentralMin:      cfg.Placement.CentralMin,
		Regions:         cfg.Regions,
	}
}

// NewRand returns a generator for seed, or a time-seeded one when seed is 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Anchors picks an anchor for every record whose region has a rectangle.
// Records without one are left out and reported. This is the only step that
// consumes randomness; callers keep the result and reproject on resize.
func (p *Placer) Anchors(records []receipt.Receipt, rects layout.RegionRects, masks mask.Set) (map[string]Anchor, map[string]Source, *validation.Report) {
	report := validation.NewReport()
	anchors := make(map[string]Anchor, len(records))
	sources := make(map[string]Source, len(records))

	var circles layout.CityCircles
	if p.Mode == config.PlacementCircle {
		circles = layout.ComputeCityCircles(p.Regions, rects)
	}

	dropped := 0
	for i, r := range records {
		rect, ok := rects[r.Region]
		if !ok {
			dropped++
			report.AddWarning(validation.Result{
				Level:       validation.LevelPlacement,
				Code:        validation.CodeMissingLayout,
				Message:     fmt.Sprintf("receipt %s dropped: %v %q", r.ID, ErrMissingLayout, r.Region),
				Path:        fmt.Sprintf("receipts[%d].region", i),
				ActualValue: r.Region,
			})
			continue
		}

		if c, ok := circles.Lookup(r.Region, r.City); ok && c.Radius > 0 {
			anchors[r.ID] = p.sampleCircle(c, rect)
			sources[r.ID] = SourceCircle
			continue
		}
		if m := masks.Lookup(r.Region, r.City); !m.Empty() {
			anchors[r.ID] = p.sampleMask(m)
			sources[r.ID] = SourceMask
			continue
		}
		anchors[r.ID] = Anchor{U: p.Rand.Float64(), V: p.Rand.Float64()}
		sources[r.ID] = SourceUniform
	}

	if dropped > 0 {
		log.Printf("placement: dropped %d receipt(s) with no region layout", dropped)
	}
	return anchors, sources, report
}

// Project builds placed points from anchors, preserving record order.
// Records without an anchor are skipped.
func (p *Placer) Project(records []receipt.Receipt, anchors map[string]Anchor, rects layout.RegionRects) []PlacedPoint {
	out := make([]PlacedPoint, 0, len(anchors))
	for _, r := range records {
		a, ok := anchors[r.ID]
		if !ok {
			continue
		}
		rect, ok := rects[r.Region]
		if !ok {
			continue
		}
		pos := a.Project(rect)
		out = append(out, PlacedPoint{
			ID:       r.ID,
			Filename: r.Filename,
			Region:   r.Region,
			City:     r.City,
			Category: r.Category,
			Price:    r.Price.Value,
			X:        pos.X,
			Y:        pos.Y,
			Radius:   p.Scale.Size(r.Price.Sized()),
		})
	}
	return out
}

// PlaceAll anchors and projects records in one step.
func (p *Placer) PlaceAll(records []receipt.Receipt, rects layout.RegionRects, masks mask.Set) ([]PlacedPoint, *validation.Report) {
	anchors, _, report := p.Anchors(records, rects, masks)
	return p.Project(records, anchors, rects), report
}

// sampleMask draws a mask pixel, preferring the pixels near the centroid so
// points stay away from ragged mask edges.
func (p *Placer) sampleMask(m *mask.CityMask) Anchor {
	pts := p.centralPoints(m)
	if len(pts) <= p.CentralMin {
		pts = m.Points
	}
	pt := pts[p.Rand.Intn(len(pts))]
	return Anchor{
		U: geo.Clamp01(float64(pt.X) / float64(m.Size.X)),
		V: geo.Clamp01(float64(pt.Y) / float64(m.Size.Y)),
	}
}

func (p *Placer) centralPoints(m *mask.CityMask) []image.Point {
	if pts, ok := p.central[m]; ok {
		return pts
	}
	if p.central == nil {
		p.central = make(map[*mask.CityMask][]image.Point)
	}
	c := m.Centroid()
	limit := p.CentralFraction * float64(m.Size.X) * float64(m.Size.Y)
	var pts []image.Point
	for _, pt := range m.Points {
		dx, dy := float64(pt.X)-c.X, float64(pt.Y)-c.Y
		if dx*dx+dy*dy < limit {
			pts = append(pts, pt)
		}
	}
	p.central[m] = pts
	return pts
}

// sampleCircle draws a uniform point inside c and expresses it relative to
// the region rectangle.
func (p *Placer) sampleCircle(c layout.CityCircle, rect geo.Rect) Anchor {
	angle := p.Rand.Float64() * 2 * math.Pi
	d := c.Radius * math.Sqrt(p.Rand.Float64())
	x := c.Center.X + math.Cos(angle)*d
	y := c.Center.Y + math.Sin(angle)*d
	if rect.W <= 0 || rect.H <= 0 {
		return Anchor{U: 0.5, V: 0.5}
	}
	return Anchor{
		U: geo.Clamp01((x - rect.X) / rect.W),
		V: geo.Clamp01((y - rect.Y) / rect.H),
	}
}
