// Package render draws scene snapshots to raster images with fogleman/gg.
package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
	"github.com/audth517/Japan-Receipt-Map/pkg/nav"
	"github.com/audth517/Japan-Receipt-Map/pkg/place"
	"github.com/audth517/Japan-Receipt-Map/pkg/scene"
	"github.com/audth517/Japan-Receipt-Map/pkg/stats"
)

var (
	paper      = color.NRGBA{245, 245, 245, 255}
	ink        = color.NRGBA{0, 0, 0, 255}
	faint      = color.NRGBA{220, 220, 220, 255}
	muted      = color.NRGBA{120, 120, 120, 255}
	dimmed     = color.NRGBA{255, 255, 255, 80}
	pointFill  = color.NRGBA{255, 255, 255, 255}
	pointEdge  = color.NRGBA{160, 160, 160, 255}
	regionTint = color.NRGBA{235, 235, 235, 255}
)

// Options controls drawing.
type Options struct {
	Config      *config.SceneConfig
	Backgrounds map[string]image.Image
	Title       string
	FontSize    float64 // 0 means 14
}

var (
	fontOnce sync.Once
	ttf      *truetype.Font
	fontErr  error
)

func face(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		ttf, fontErr = truetype.Parse(gomono.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse font: %w", fontErr)
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Draw renders a snapshot at its viewport size.
func Draw(snap *scene.Snapshot, opts Options) (image.Image, error) {
	dc, err := draw(snap, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// SavePNG renders a snapshot to a PNG file.
func SavePNG(path string, snap *scene.Snapshot, opts Options) error {
	dc, err := draw(snap, opts)
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}

type painter struct {
	dc   *gg.Context
	snap *scene.Snapshot
	opts Options
	size float64
}

func draw(snap *scene.Snapshot, opts Options) (*gg.Context, error) {
	if snap == nil {
		return nil, fmt.Errorf("nothing to render")
	}
	w, h := int(snap.Viewport.W), int(snap.Viewport.H)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid viewport %vx%v", snap.Viewport.W, snap.Viewport.H)
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Title == "" {
		opts.Title = "Japan Receipts"
	}
	size := opts.FontSize
	if size <= 0 {
		size = 14
	}

	f, err := face(size)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(paper)
	dc.Clear()
	dc.SetFontFace(f)

	p := &painter{dc: dc, snap: snap, opts: opts, size: size}
	p.regions()
	p.points()
	p.hud()
	return dc, nil
}

func (p *painter) toScreen(x, y float64) (float64, float64) {
	v := p.snap.View
	return x*v.Scale + v.OffsetX, y*v.Scale + v.OffsetY
}

func (p *painter) screenRect(r geo.Rect) geo.Rect {
	x, y := p.toScreen(r.X, r.Y)
	return geo.Rect{X: x, Y: y, W: r.W * p.snap.View.Scale, H: r.H * p.snap.View.Scale}
}

// regions draws backgrounds, fading out unfocused regions as the camera
// fade rises.
func (p *painter) regions() {
	dc := p.dc
	for _, reg := range p.snap.Regions {
		sr := p.screenRect(reg.Rect)
		if img := p.opts.Backgrounds[reg.Name]; img != nil {
			b := img.Bounds()
			if b.Dx() > 0 && b.Dy() > 0 {
				dc.Push()
				dc.Translate(sr.X, sr.Y)
				dc.Scale(sr.W/float64(b.Dx()), sr.H/float64(b.Dy()))
				dc.DrawImage(img, -b.Min.X, -b.Min.Y)
				dc.Pop()
			}
		} else {
			dc.SetColor(regionTint)
			dc.DrawRectangle(sr.X, sr.Y, sr.W, sr.H)
			dc.Fill()
		}

		if !reg.Focused && p.snap.Fade > 0 {
			dc.SetColor(color.NRGBA{245, 245, 245, uint8(200 * geo.Clamp01(p.snap.Fade))})
			dc.DrawRectangle(sr.X, sr.Y, sr.W, sr.H)
			dc.Fill()
		}

		dc.SetLineWidth(1)
		dc.SetColor(faint)
		dc.DrawRectangle(sr.X, sr.Y, sr.W, sr.H)
		dc.Stroke()
	}
}

func (p *painter) fillFor(pt *place.PlacedPoint) color.Color {
	switch p.snap.Nav.Mode {
	case nav.ModeOverview:
		return pointFill
	case nav.ModeRegion:
		if p.snap.InFocus(pt) {
			return pointFill
		}
		return dimmed
	default:
		if !p.snap.Highlighted(pt) {
			return dimmed
		}
		c := p.opts.Config.CategoryColor(pt.Category)
		c.A = 230
		return c
	}
}

func (p *painter) shape(pt *place.PlacedPoint) {
	if pt.Thumb != nil {
		r := p.screenRect(*pt.Thumb)
		p.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		return
	}
	x, y := p.toScreen(pt.X, pt.Y)
	p.dc.DrawCircle(x, y, pt.Radius*p.snap.View.Scale)
}

func (p *painter) points() {
	dc := p.dc
	for i := range p.snap.Points {
		pt := &p.snap.Points[i]
		p.shape(pt)
		dc.SetColor(p.fillFor(pt))
		dc.FillPreserve()
		dc.SetLineWidth(1)
		dc.SetColor(pointEdge)
		dc.Stroke()
	}

	if sel := p.snap.Selected; sel != nil {
		p.shape(sel)
		dc.SetLineWidth(3)
		dc.SetColor(p.opts.Config.CategoryColor(sel.Category))
		dc.Stroke()
	}
	if hov := p.snap.Hovered; hov != nil {
		p.shape(hov)
		dc.SetLineWidth(2)
		dc.SetColor(ink)
		dc.Stroke()
	}
}

// Hint returns the instruction line shown for a navigation state.
func Hint(st nav.State) string {
	switch st.Mode {
	case nav.ModeRegion:
		return fmt.Sprintf("Focused: %s  (click a receipt to open its city, background to return)", st)
	case nav.ModeCity:
		return fmt.Sprintf("Focused: %s  (click a receipt to filter its category)", st)
	case nav.ModeCategory:
		return fmt.Sprintf("Focused: %s  (click the category again to clear)", st)
	default:
		return "Click a receipt to focus on its region."
	}
}

// Describe returns the two-line label for a point.
func Describe(pt *place.PlacedPoint) (string, string) {
	return pt.Region + " / " + pt.City,
		fmt.Sprintf("%s [%s] (%s)", pt.ID, pt.Category, stats.FormatYen(pt.Price))
}

func (p *painter) hud() {
	dc := p.dc
	lh := p.size * 1.4
	h := p.snap.Viewport.H

	dc.SetColor(ink)
	dc.DrawString(p.opts.Title, 20, 20+p.size)
	dc.SetColor(muted)
	dc.DrawString(Hint(p.snap.Nav), 20, 20+p.size+lh)

	if hov := p.snap.Hovered; hov != nil {
		l1, l2 := Describe(hov)
		dc.SetColor(ink)
		dc.DrawString(l1, 20, h-20-lh)
		dc.DrawString(l2, 20, h-20)
	}

	if sel := p.snap.Selected; sel != nil {
		l1, l2 := Describe(sel)
		lines := []string{"Selected", l1, l2}
		if sel.Filename != "" {
			lines = append(lines, sel.Filename)
		}
		p.panel(lines, p.snap.Viewport.W-20, 20)
	}

	p.legend()
}

// panel draws right-aligned boxed text with its top-right corner at (x, y).
func (p *painter) panel(lines []string, x, y float64) {
	dc := p.dc
	lh := p.size * 1.4
	wMax := 0.0
	for _, l := range lines {
		if w, _ := dc.MeasureString(l); w > wMax {
			wMax = w
		}
	}
	bw, bh := wMax+16, float64(len(lines))*lh+8
	dc.SetColor(color.NRGBA{255, 255, 255, 230})
	dc.DrawRectangle(x-bw, y, bw, bh)
	dc.FillPreserve()
	dc.SetLineWidth(1)
	dc.SetColor(muted)
	dc.Stroke()
	dc.SetColor(ink)
	for i, l := range lines {
		dc.DrawString(l, x-bw+8, y+4+float64(i+1)*lh-lh*0.3)
	}
}

// legend lists category colors and counts for the focused city.
func (p *painter) legend() {
	st := p.snap.Nav
	if st.Mode != nav.ModeCity && st.Mode != nav.ModeCategory {
		return
	}
	if p.snap.Summary == nil {
		return
	}
	cs := p.snap.Summary.City(st.Region, st.City)
	if cs == nil {
		return
	}
	dc := p.dc
	lh := p.size * 1.4
	x := p.snap.Viewport.W - 220
	y := p.snap.Viewport.H - 20 - float64(len(cs.Categories))*lh
	for i, b := range cs.Categories {
		cy := y + float64(i)*lh
		dc.SetColor(p.opts.Config.CategoryColor(b.Name))
		dc.DrawCircle(x, cy-p.size/3, p.size/2.5)
		dc.Fill()
		if st.Mode == nav.ModeCategory && b.Name == st.Category {
			dc.SetColor(ink)
		} else {
			dc.SetColor(muted)
		}
		dc.DrawString(fmt.Sprintf("%-10s %3d  %s", b.Name, b.Count, stats.FormatYen(b.Spend)), x+12, cy)
	}
}
