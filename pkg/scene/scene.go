// Package scene owns one interactive receipt map: the placed points, the
// region layout, the camera and the navigation state. A State is driven by
// discrete events and a per-frame Tick, and must be used from a single
// goroutine.
package scene

import (
	"errors"
	"fmt"
	"image"
	"math/rand"

	"github.com/audth517/Japan-Receipt-Map/pkg/assets"
	"github.com/audth517/Japan-Receipt-Map/pkg/camera"
	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
	"github.com/audth517/Japan-Receipt-Map/pkg/layout"
	"github.com/audth517/Japan-Receipt-Map/pkg/mask"
	"github.com/audth517/Japan-Receipt-Map/pkg/nav"
	"github.com/audth517/Japan-Receipt-Map/pkg/place"
	"github.com/audth517/Japan-Receipt-Map/pkg/receipt"
	"github.com/audth517/Japan-Receipt-Map/pkg/stats"
	"github.com/audth517/Japan-Receipt-Map/pkg/validation"
)

// ErrNoBundle is returned when a scene is built without assets.
var ErrNoBundle = errors.New("scene: nil asset bundle")

// State is a live scene.
type State struct {
	cfg         *config.SceneConfig
	records     []receipt.Receipt
	masks       mask.Set
	backgrounds map[string]image.Image
	aspects     map[string]float64

	placer  *place.Placer
	anchors map[string]place.Anchor
	sources map[string]place.Source

	viewport      geo.Size
	rects         layout.RegionRects
	bounds        geo.Rect
	layoutVersion int

	points        []place.PlacedPoint
	index         map[string]int
	pointsVersion int
	layoutReport  *validation.Report

	cam     *camera.Camera
	nav     nav.State
	hover   int
	pointer geo.Point
	frame   int

	summary *stats.Summary
	report  *validation.Report
}

// New builds a scene from a fully loaded bundle for a vw x vh viewport.
// Masks are classified and receipts anchored exactly once here; later
// events only reproject. rng may be nil to seed from the configuration.
func New(cfg *config.SceneConfig, b *assets.Bundle, vw, vh float64, rng *rand.Rand) (*State, error) {
	if b == nil {
		return nil, ErrNoBundle
	}
	report := validation.ValidateSchema(cfg)
	if !report.Valid {
		return nil, fmt.Errorf("invalid configuration: %s: %s", report.Summary, report.Errors[0].Message)
	}

	records, dataReport := receipt.Normalize(b.Receipts, cfg)
	report.Merge(dataReport)

	masks, maskReport := mask.BuildSet(cfg, b.Masks)
	report.Merge(maskReport)

	s := &State{
		cfg:           cfg,
		records:       records,
		masks:         masks,
		backgrounds:   b.Backgrounds,
		aspects:       b.Aspects(records),
		placer:        place.New(cfg, records, rng),
		cam:           camera.New(cfg.Camera.Ease, cfg.Camera.FadeEase),
		nav:           nav.Overview(),
		hover:         -1,
		pointsVersion: -1,
		report:        report,
	}
	s.relayout(vw, vh)

	var placeReport *validation.Report
	s.anchors, s.sources, placeReport = s.placer.Anchors(records, s.rects, masks)
	report.Merge(placeReport)

	summary, statsReport := stats.Summarize(records, s.Points(), cfg)
	s.summary = summary
	report.Merge(statsReport)

	s.cam.ResetToFit(s.bounds, vw, vh, cfg.Camera.Margin)
	return s, nil
}

// relayout recomputes region rectangles for a viewport and invalidates the
// projected points.
func (s *State) relayout(w, h float64) {
	s.viewport = geo.Size{W: w, H: h}
	s.rects = layout.ComputeRegionRects(s.cfg.Regions, s.cfg.Canvas.Basis, w, h)
	s.bounds = s.rects.Bounds()
	s.layoutVersion++
}

// Points returns the placed points for the current layout, reprojecting
// only when the layout changed since the last call. The slice is owned by
// the State.
func (s *State) Points() []place.PlacedPoint {
	if s.pointsVersion == s.layoutVersion {
		return s.points
	}
	s.points, s.layoutReport = s.placer.Layout(s.records, s.anchors, s.rects, s.masks, place.ThumbOptionsFrom(s.cfg), s.aspects)
	s.index = make(map[string]int, len(s.points))
	for i, p := range s.points {
		s.index[p.ID] = i
	}
	s.pointsVersion = s.layoutVersion
	return s.points
}

// Point returns the point with the given ID, or nil.
func (s *State) Point(id string) *place.PlacedPoint {
	pts := s.Points()
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return &pts[i]
}

// Source reports how a point's anchor was chosen.
func (s *State) Source(id string) place.Source {
	return s.sources[id]
}

// hitAt returns the index of the point under a screen position, or -1.
func (s *State) hitAt(sx, sy float64) int {
	wx, wy := s.cam.ScreenToWorld(sx, sy)
	return nav.HitTest(s.Points(), wx, wy, s.cfg.Interaction.HitSlop)
}

func (s *State) pointAt(i int) *place.PlacedPoint {
	if i < 0 {
		return nil
	}
	return &s.points[i]
}

// PointerMove updates the hovered point and reports whether it changed.
func (s *State) PointerMove(sx, sy float64) bool {
	s.pointer = geo.Point{X: sx, Y: sy}
	prev := s.hover
	s.hover = s.hitAt(sx, sy)
	return prev != s.hover
}

// Click runs a navigation transition for a click at a screen position.
func (s *State) Click(sx, sy float64) nav.State {
	hit := s.pointAt(s.hitAt(sx, sy))
	next, target := s.nav.Click(hit)
	s.nav = next
	s.aim(target, false)
	return s.nav
}

// DoubleClick toggles the detail selection for the point at a screen
// position. It does not change the focus.
func (s *State) DoubleClick(sx, sy float64) nav.State {
	s.nav = s.nav.DoubleClick(s.pointAt(s.hitAt(sx, sy)))
	return s.nav
}

// Resize recomputes the layout for a new viewport and snaps the camera to
// the current focus.
func (s *State) Resize(w, h float64) {
	if w <= 0 || h <= 0 || (w == s.viewport.W && h == s.viewport.H) {
		return
	}
	s.relayout(w, h)
	s.hover = -1
	s.aim(targetFor(s.nav), true)
}

// Tick advances the camera one frame and reports whether it is still
// moving.
func (s *State) Tick() bool {
	s.cam.Update()
	s.frame++
	return !s.cam.Settled()
}

func targetFor(st nav.State) nav.Target {
	switch st.Mode {
	case nav.ModeRegion:
		return nav.Target{Kind: nav.TargetRegion, Region: st.Region}
	case nav.ModeCity, nav.ModeCategory:
		return nav.Target{Kind: nav.TargetCity, Region: st.Region, City: st.City}
	default:
		return nav.Target{Kind: nav.TargetAll}
	}
}

// aim points the camera at a navigation target. Overview resets instantly;
// region and city focus ease unless snap is set.
func (s *State) aim(t nav.Target, snap bool) {
	margin := s.cfg.Camera.Margin
	w, h := s.viewport.W, s.viewport.H
	switch t.Kind {
	case nav.TargetNone:
		return
	case nav.TargetAll:
		s.cam.ResetToFit(s.bounds, w, h, margin)
		s.cam.SetFade(0)
	case nav.TargetRegion:
		s.cam.SetViewport(w, h)
		s.cam.FocusOn(s.rects[t.Region], margin, 0, 0)
		s.cam.SetFade(1)
	case nav.TargetCity:
		s.cam.SetViewport(w, h)
		regionScale := camera.FitScale(s.rects[t.Region], w, h, margin)
		s.cam.FocusOn(s.CityBounds(t.Region, t.City), margin, regionScale, regionScale*s.cfg.Camera.MaxCityZoom)
		s.cam.SetFade(1)
	}
	if snap {
		s.cam.Snap()
	}
}

// CityBounds returns the extent of a city's points including their radius
// or thumbnail. A city with no points falls back to its region rectangle.
func (s *State) CityBounds(region, city string) geo.Rect {
	var b geo.Rect
	for _, p := range s.Points() {
		if p.Region != region || p.City != city {
			continue
		}
		r := geo.Rect{X: p.X - p.Radius, Y: p.Y - p.Radius, W: 2 * p.Radius, H: 2 * p.Radius}
		if p.Thumb != nil {
			r = *p.Thumb
		}
		b = b.Union(r)
	}
	if b == (geo.Rect{}) {
		return s.rects[region]
	}
	return b
}

// Nav returns the navigation state.
func (s *State) Nav() nav.State { return s.nav }

// Camera returns the camera. Callers must not retain it across goroutines.
func (s *State) Camera() *camera.Camera { return s.cam }

// Hovered returns the point under the pointer, or nil.
func (s *State) Hovered() *place.PlacedPoint {
	s.Points()
	return s.pointAt(s.hover)
}

// Selected returns the point under detail inspection, or nil.
func (s *State) Selected() *place.PlacedPoint {
	if s.nav.Selected == "" {
		return nil
	}
	return s.Point(s.nav.Selected)
}

// Rects returns the current region rectangles.
func (s *State) Rects() layout.RegionRects { return s.rects }

// Viewport returns the current viewport size.
func (s *State) Viewport() geo.Size { return s.viewport }

// Background returns a region's background image, or nil.
func (s *State) Background(region string) image.Image { return s.backgrounds[region] }

// Config returns the scene configuration.
func (s *State) Config() *config.SceneConfig { return s.cfg }

// Records returns the normalized receipts.
func (s *State) Records() []receipt.Receipt { return s.records }

// Summary returns the aggregate statistics computed at build time.
func (s *State) Summary() *stats.Summary { return s.summary }

// Report returns every finding from building the scene plus those of the
// current layout.
func (s *State) Report() *validation.Report {
	s.Points()
	r := validation.NewReport()
	r.Merge(s.report)
	r.Merge(s.layoutReport)
	return r
}

// Snapshot captures the render model for the current frame. The returned
// value shares nothing mutable with the State.
func (s *State) Snapshot() *Snapshot {
	pts := s.Points()
	points := make([]place.PlacedPoint, len(pts))
	copy(points, pts)

	snap := &Snapshot{
		Metadata: Metadata{
			Version:       s.cfg.Version,
			Mode:          s.cfg.Placement.Mode,
			Bounds:        s.bounds,
			LayoutVersion: s.layoutVersion,
			Frame:         s.frame,
			Settled:       s.cam.Settled(),
		},
		View:     s.cam.Current,
		Fade:     s.cam.Fade,
		Viewport: s.viewport,
		Nav:      s.nav,
		Points:   points,
		Groups:   buildGroups(points),
		Summary:  s.summary,
	}
	if s.hover >= 0 && s.hover < len(points) {
		snap.Hovered = &points[s.hover]
	}
	if i, ok := s.index[s.nav.Selected]; ok {
		snap.Selected = &points[i]
	}
	for _, reg := range s.cfg.Regions {
		r, ok := s.rects[reg.Name]
		if !ok {
			continue
		}
		snap.Regions = append(snap.Regions, RegionView{
			Name:    reg.Name,
			Rect:    r,
			Focused: s.nav.Region == reg.Name,
		})
	}
	return snap
}
