// Package camera implements an eased 2D view transform:
// screen = world*Scale + Offset.
package camera

import (
	"math"

	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
)

const settleEpsilon = 1e-3

// View is one affine view state.
type View struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Camera holds the current view, the view it is easing toward, and a fade
// scalar used to cross-fade region imagery.
type Camera struct {
	Current    View    `json:"current"`
	Target     View    `json:"target"`
	Fade       float64 `json:"fade"`
	TargetFade float64 `json:"target_fade"`

	// Ease and FadeEase are the fractions of the remaining distance covered
	// per Update, in (0, 1].
	Ease     float64 `json:"-"`
	FadeEase float64 `json:"-"`

	// Viewport is the screen size last passed to ResetToFit or SetViewport.
	Viewport geo.Size `json:"viewport"`
}

// New returns an identity camera.
func New(ease, fadeEase float64) *Camera {
	return &Camera{
		Current:  View{Scale: 1},
		Target:   View{Scale: 1},
		Ease:     ease,
		FadeEase: fadeEase,
	}
}

// Update moves the current view and fade one step toward their targets.
// There is no velocity state, so motion never overshoots.
func (c *Camera) Update() {
	c.Current.Scale += (c.Target.Scale - c.Current.Scale) * c.Ease
	c.Current.OffsetX += (c.Target.OffsetX - c.Current.OffsetX) * c.Ease
	c.Current.OffsetY += (c.Target.OffsetY - c.Current.OffsetY) * c.Ease
	c.Fade += (c.TargetFade - c.Fade) * c.FadeEase
	if c.Current.Scale <= 0 {
		c.Current.Scale = c.Target.Scale
	}
}

// Settled reports whether the current view and fade are within a small
// epsilon of their targets.
func (c *Camera) Settled() bool {
	return math.Abs(c.Target.Scale-c.Current.Scale) < settleEpsilon*c.Target.Scale &&
		math.Abs(c.Target.OffsetX-c.Current.OffsetX) < settleEpsilon*math.Max(1, c.Viewport.W) &&
		math.Abs(c.Target.OffsetY-c.Current.OffsetY) < settleEpsilon*math.Max(1, c.Viewport.H) &&
		math.Abs(c.TargetFade-c.Fade) < settleEpsilon
}

// ScreenToWorld inverts the current transform.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	wx = (sx - c.Current.OffsetX) / c.Current.Scale
	wy = (sy - c.Current.OffsetY) / c.Current.Scale
	return
}

// WorldToScreen applies the current transform.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	sx = wx*c.Current.Scale + c.Current.OffsetX
	sy = wy*c.Current.Scale + c.Current.OffsetY
	return
}

// SetViewport records the screen size used by FocusOn.
func (c *Camera) SetViewport(w, h float64) {
	c.Viewport = geo.Size{W: w, H: h}
}

// FitScale returns the scale that fits bounds into a w x h viewport leaving
// margin (a fraction of each dimension) on every side. Bounds with no
// extent in either direction fit at scale 1.
func FitScale(bounds geo.Rect, w, h, margin float64) float64 {
	availW := w * (1 - 2*margin)
	availH := h * (1 - 2*margin)
	s := math.Inf(1)
	if bounds.W > 0 {
		s = availW / bounds.W
	}
	if bounds.H > 0 {
		s = math.Min(s, availH/bounds.H)
	}
	if math.IsInf(s, 1) || s <= 0 || math.IsNaN(s) {
		return 1
	}
	return s
}

// fit returns the view centering bounds at the given scale.
func (c *Camera) fit(bounds geo.Rect, s float64) View {
	center := bounds.Center()
	return View{
		Scale:   s,
		OffsetX: c.Viewport.W/2 - center.X*s,
		OffsetY: c.Viewport.H/2 - center.Y*s,
	}
}

// ResetToFit snaps both current and target views to fit bounds into a
// w x h viewport.
func (c *Camera) ResetToFit(bounds geo.Rect, w, h, margin float64) {
	c.SetViewport(w, h)
	v := c.fit(bounds, FitScale(bounds, w, h, margin))
	c.Current = v
	c.Target = v
}

// FocusOn sets only the target view to fit bounds, so the camera eases
// there. The scale is clamped into [minScale, maxScale]; a zero bound is
// ignored. It returns the target scale.
func (c *Camera) FocusOn(bounds geo.Rect, margin, minScale, maxScale float64) float64 {
	s := FitScale(bounds, c.Viewport.W, c.Viewport.H, margin)
	if minScale > 0 && s < minScale {
		s = minScale
	}
	if maxScale > 0 && s > maxScale {
		s = maxScale
	}
	c.Target = c.fit(bounds, s)
	return s
}

// Snap jumps the current view and fade to their targets.
func (c *Camera) Snap() {
	c.Current = c.Target
	c.Fade = c.TargetFade
}

// SetFade sets the fade target.
func (c *Camera) SetFade(target float64) {
	c.TargetFade = geo.Clamp01(target)
}
