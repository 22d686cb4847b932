package place

import (
	"fmt"
	"image"
	"math"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
	"github.com/audth517/Japan-Receipt-Map/pkg/layout"
	"github.com/audth517/Japan-Receipt-Map/pkg/mask"
	"github.com/audth517/Japan-Receipt-Map/pkg/pack"
	"github.com/audth517/Japan-Receipt-Map/pkg/pricescale"
	"github.com/audth517/Japan-Receipt-Map/pkg/receipt"
	"github.com/audth517/Japan-Receipt-Map/pkg/validation"
)

// ThumbOptions sizes packed thumbnails, in screen pixels.
type ThumbOptions struct {
	MinWidth float64
	MaxWidth float64
	Aspect   float64 // height / width when a receipt has no known image size
	CellSize float64
}

// ThumbOptionsFrom reads thumbnail sizing from the configuration.
func ThumbOptionsFrom(cfg *config.SceneConfig) ThumbOptions {
	return ThumbOptions{
		MinWidth: cfg.Thumbnails.MinWidth,
		MaxWidth: cfg.Thumbnails.MaxWidth,
		Aspect:   cfg.Thumbnails.Aspect,
		CellSize: cfg.Thumbnails.CellSize,
	}
}

type cityKey struct {
	region, city string
}

// PlaceThumbnails packs one thumbnail per point inside its city's mask,
// remapped into screen space. Points are processed city by city in input
// order. Placed points get Thumb set and are moved to the thumbnail center;
// points that do not fit keep their position and a nil Thumb.
//
// aspects maps receipt IDs to height/width ratios; missing IDs use
// opts.Aspect.
func (p *Placer) PlaceThumbnails(points []PlacedPoint, rects layout.RegionRects, masks mask.Set, opts ThumbOptions, aspects map[string]float64) *validation.Report {
	report := validation.NewReport()

	cell := opts.CellSize
	if cell <= 0 {
		cell = 2
	}
	width := pricescale.Scale{Range: p.Scale.Range, OutMin: opts.MinWidth, OutMax: opts.MaxWidth}

	var order []cityKey
	groups := make(map[cityKey][]int)
	for i, pt := range points {
		k := cityKey{pt.Region, pt.City}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		rect, ok := rects[k.region]
		if !ok {
			continue
		}
		m := masks.Lookup(k.region, k.city)
		area := cityArea(rect, m)
		grid := cellGrid(area, rect, m, cell)

		idx := groups[k]
		sizes := make([]pack.Size, len(idx))
		for j, i := range idx {
			w := width.Size(math.Max(points[i].Price, 1))
			asp := opts.Aspect
			if a, ok := aspects[points[i].ID]; ok && a > 0 {
				asp = a
			}
			sizes[j] = pack.Size{
				W: max(1, int(math.Ceil(w/cell))),
				H: max(1, int(math.Ceil(w*asp/cell))),
			}
		}

		for j, pl := range pack.Pack(grid, sizes) {
			i := idx[j]
			if !pl.Placed {
				points[i].Thumb = nil
				report.AddWarning(validation.Result{
					Level:       validation.LevelPlacement,
					Code:        validation.CodeUnplaced,
					Message:     fmt.Sprintf("no room for thumbnail of %s in %s/%s", points[i].ID, k.region, k.city),
					Path:        points[i].ID,
					ActualValue: fmt.Sprintf("%dx%d cells", sizes[j].W, sizes[j].H),
				})
				continue
			}
			r := geo.Rect{
				X: area.X + float64(pl.Rect.Min.X)*cell,
				Y: area.Y + float64(pl.Rect.Min.Y)*cell,
				W: float64(pl.Rect.Dx()) * cell,
				H: float64(pl.Rect.Dy()) * cell,
			}
			points[i].Thumb = &r
			c := r.Center()
			points[i].X, points[i].Y = c.X, c.Y
		}
	}
	return report
}

// cityArea is the screen rectangle covering the mask's inside pixels, or the
// whole region when the mask is unusable.
func cityArea(rect geo.Rect, m *mask.CityMask) geo.Rect {
	if m.Empty() {
		return rect
	}
	sx := rect.W / float64(m.Size.X)
	sy := rect.H / float64(m.Size.Y)
	return geo.Rect{
		X: rect.X + float64(m.Bounds.Min.X)*sx,
		Y: rect.Y + float64(m.Bounds.Min.Y)*sy,
		W: float64(m.Bounds.Dx()) * sx,
		H: float64(m.Bounds.Dy()) * sy,
	}
}

// cellGrid rasterizes area into cells of the given size. A cell is usable
// when it lies fully inside area and its center maps onto an inside mask
// pixel.
func cellGrid(area, rect geo.Rect, m *mask.CityMask, cell float64) *mask.Grid {
	gw := int(math.Floor(area.W/cell + 1e-9))
	gh := int(math.Floor(area.H/cell + 1e-9))
	g := mask.NewGrid(image.Rect(0, 0, max(gw, 0), max(gh, 0)))
	for j := 0; j < gh; j++ {
		for i := 0; i < gw; i++ {
			if m.Empty() {
				g.Set(i, j, true)
				continue
			}
			cx := area.X + (float64(i)+0.5)*cell
			cy := area.Y + (float64(j)+0.5)*cell
			mx := int((cx - rect.X) / rect.W * float64(m.Size.X))
			my := int((cy - rect.Y) / rect.H * float64(m.Size.Y))
			g.Set(i, j, m.Inside(mx, my))
		}
	}
	return g
}

// Layout projects anchors into rects and, in thumbnail mode, packs
// thumbnails. It performs no random draws, so it is safe to call on every
// resize.
func (p *Placer) Layout(records []receipt.Receipt, anchors map[string]Anchor, rects layout.RegionRects, masks mask.Set, opts ThumbOptions, aspects map[string]float64) ([]PlacedPoint, *validation.Report) {
	points := p.Project(records, anchors, rects)
	if p.Mode != config.PlacementThumbnail {
		return points, validation.NewReport()
	}
	return points, p.PlaceThumbnails(points, rects, masks, opts, aspects)
}
