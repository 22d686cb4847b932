package camera

import (
	"math"
	"testing"

	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScreenWorldRoundTrip(t *testing.T) {
	c := New(0.1, 0.08)
	c.Current = View{Scale: 2.5, OffsetX: -40, OffsetY: 13}

	for _, p := range []geo.Point{{X: 0, Y: 0}, {X: 100, Y: 250}, {X: -3.5, Y: 7.25}} {
		sx, sy := c.WorldToScreen(p.X, p.Y)
		wx, wy := c.ScreenToWorld(sx, sy)
		if !approx(wx, p.X) || !approx(wy, p.Y) {
			t.Errorf("round trip of %v = (%v,%v)", p, wx, wy)
		}
	}
}

func TestResetToFit(t *testing.T) {
	c := New(0.1, 0.08)
	bounds := geo.R(0, 0, 200, 100)
	c.ResetToFit(bounds, 1000, 1000, 0.1)

	// available 800x800: min(800/200, 800/100) = 4
	if c.Current.Scale != 4 {
		t.Errorf("scale = %v, want 4", c.Current.Scale)
	}
	if c.Current != c.Target {
		t.Errorf("current %v != target %v after reset", c.Current, c.Target)
	}
	sx, sy := c.WorldToScreen(100, 50)
	if !approx(sx, 500) || !approx(sy, 500) {
		t.Errorf("bounds center maps to (%v,%v), want (500,500)", sx, sy)
	}
}

func TestFitScaleDegenerateBounds(t *testing.T) {
	tests := []struct {
		name   string
		bounds geo.Rect
		want   float64
	}{
		{"point", geo.R(5, 5, 0, 0), 1},
		{"horizontal line", geo.R(0, 0, 100, 0), 5},
		{"vertical line", geo.R(0, 0, 0, 250), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitScale(tt.bounds, 500, 500, 0); got != tt.want {
				t.Errorf("FitScale = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFocusOnEasesAndClamps(t *testing.T) {
	c := New(0.1, 0.08)
	c.ResetToFit(geo.R(0, 0, 1000, 1000), 1000, 1000, 0)
	start := c.Current

	s := c.FocusOn(geo.R(100, 100, 10, 10), 0, 1, 4)
	if s != 4 {
		t.Errorf("clamped scale = %v, want 4", s)
	}
	if c.Current != start {
		t.Error("FocusOn must not move the current view")
	}

	prev := math.Abs(c.Target.Scale - c.Current.Scale)
	for i := 0; i < 200; i++ {
		c.Update()
		d := math.Abs(c.Target.Scale - c.Current.Scale)
		if d > prev {
			t.Fatalf("step %d: distance grew from %v to %v", i, prev, d)
		}
		if c.Current.Scale > c.Target.Scale {
			t.Fatalf("step %d: overshoot %v > %v", i, c.Current.Scale, c.Target.Scale)
		}
		prev = d
	}
	if !c.Settled() {
		t.Errorf("camera not settled after 200 updates: %+v", c)
	}

	s = c.FocusOn(geo.R(0, 0, 1000, 1000), 0, 2, 0)
	if s != 2 {
		t.Errorf("min-clamped scale = %v, want 2", s)
	}
}

func TestFade(t *testing.T) {
	c := New(0.1, 0.5)
	c.SetFade(3)
	if c.TargetFade != 1 {
		t.Errorf("target fade = %v, want clamped 1", c.TargetFade)
	}
	c.Update()
	if c.Fade != 0.5 {
		t.Errorf("fade after one update = %v, want 0.5", c.Fade)
	}
}

func TestSnap(t *testing.T) {
	c := New(0.1, 0.1)
	c.SetViewport(100, 100)
	c.FocusOn(geo.R(0, 0, 10, 10), 0, 0, 0)
	c.SetFade(1)
	c.Snap()
	if c.Current != c.Target || c.Fade != 1 {
		t.Errorf("after Snap current=%v target=%v fade=%v", c.Current, c.Target, c.Fade)
	}
	if !c.Settled() {
		t.Error("snapped camera should be settled")
	}
}
