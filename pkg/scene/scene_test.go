package scene

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audth517/Japan-Receipt-Map/pkg/assets"
	"github.com/audth517/Japan-Receipt-Map/pkg/camera"
	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
	"github.com/audth517/Japan-Receipt-Map/pkg/nav"
	"github.com/audth517/Japan-Receipt-Map/pkg/place"
	"github.com/audth517/Japan-Receipt-Map/pkg/receipt"
	"github.com/audth517/Japan-Receipt-Map/pkg/validation"
)

func blankImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func discImage(w, h int) *image.NRGBA {
	img := blankImage(w, h)
	cx, cy, r := float64(w)/2, float64(h)/2, float64(min(w, h))/3
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= r {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			}
		}
	}
	return img
}

func e2eBundle() *assets.Bundle {
	return &assets.Bundle{
		Receipts: []receipt.Receipt{
			{ID: "r1", Region: "Kyushu", City: "Fukuoka", Category: "RC", Price: receipt.P(800)},
			{ID: "r2", Region: "Kyushu", City: "Fukuoka", Category: "CS", Price: receipt.P(8000)},
		},
		Masks: map[string]map[string]image.Image{
			"Kyushu": {"Fukuoka": blankImage(50, 50)},
		},
	}
}

func newScene(t testing.TB, cfg *config.SceneConfig, b *assets.Bundle) *State {
	t.Helper()
	s, err := New(cfg, b, 1000, 1000, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return s
}

func screenOf(s *State, p *place.PlacedPoint) (float64, float64) {
	return s.Camera().WorldToScreen(p.X, p.Y)
}

func TestEndToEnd(t *testing.T) {
	s := newScene(t, config.Default(), e2eBundle())

	kyushu := s.Rects()["Kyushu"]
	require.Equal(t, geo.R(0, 800, 140, 190), kyushu)

	r1, r2 := s.Point("r1"), s.Point("r2")
	require.NotNil(t, r1)
	require.NotNil(t, r2)
	for _, p := range []*place.PlacedPoint{r1, r2} {
		assert.True(t, kyushu.Contains(p.Center()), "%s at %v outside %v", p.ID, p.Center(), kyushu)
		assert.Equal(t, place.SourceUniform, s.Source(p.ID), "empty mask forces fallback")
	}
	assert.Greater(t, r2.Radius, r1.Radius)
	assert.Equal(t, 1, s.Report().CountCode(validation.CodeEmptyMask))

	sx, sy := screenOf(s, r1)
	st := s.Click(sx, sy)
	assert.Equal(t, nav.ModeRegion, st.Mode)
	assert.Equal(t, "Kyushu", st.Region)
}

func TestDrillDownAndBack(t *testing.T) {
	s := newScene(t, config.Default(), e2eBundle())
	fit := s.Camera().Current.Scale

	r1 := s.Point("r1")
	s.Click(screenOf(s, r1))
	assert.Greater(t, s.Camera().Target.Scale, fit, "region focus zooms in")
	assert.Equal(t, fit, s.Camera().Current.Scale, "focus eases instead of snapping")
	assert.Equal(t, 1.0, s.Camera().TargetFade)

	for i := 0; i < 500 && s.Tick(); i++ {
	}
	assert.True(t, s.Camera().Settled())

	st := s.Click(screenOf(s, s.Point("r1")))
	require.Equal(t, nav.ModeCity, st.Mode)
	assert.Equal(t, "Fukuoka", st.City)
	regionScale := camera.FitScale(s.Rects()["Kyushu"], 1000, 1000, s.Config().Camera.Margin)
	assert.LessOrEqual(t, s.Camera().Target.Scale, regionScale*s.Config().Camera.MaxCityZoom+1e-9)
	assert.GreaterOrEqual(t, s.Camera().Target.Scale, regionScale-1e-9)

	st = s.Click(screenOf(s, s.Point("r1")))
	assert.Equal(t, nav.ModeCategory, st.Mode)
	assert.Equal(t, "RC", st.Category)

	// Screen origin is far outside Kyushu at this zoom.
	st = s.Click(0, 0)
	assert.Equal(t, nav.ModeCity, st.Mode)
	st = s.Click(0, 0)
	assert.Equal(t, nav.ModeRegion, st.Mode)
	st = s.Click(0, 0)
	assert.Equal(t, nav.ModeOverview, st.Mode)
	assert.Empty(t, st.Region)
	assert.Equal(t, fit, s.Camera().Current.Scale, "overview resets instantly")
	assert.Equal(t, 0.0, s.Camera().TargetFade)
}

func TestHoverAndDoubleClick(t *testing.T) {
	s := newScene(t, config.Default(), e2eBundle())
	r1 := s.Point("r1")
	sx, sy := screenOf(s, r1)

	assert.True(t, s.PointerMove(sx, sy))
	require.NotNil(t, s.Hovered())
	assert.False(t, s.PointerMove(sx, sy), "same point, no change")

	st := s.DoubleClick(sx, sy)
	assert.Equal(t, nav.ModeOverview, st.Mode, "double click never navigates")
	require.NotNil(t, s.Selected())
	assert.Equal(t, s.Hovered().ID, s.Selected().ID)

	snap := s.Snapshot()
	require.NotNil(t, snap.Selected)
	require.NotNil(t, snap.Hovered)

	s.DoubleClick(0, 0)
	assert.Nil(t, s.Selected())
}

func TestPointsReprojectOnlyOnResize(t *testing.T) {
	s := newScene(t, config.Default(), e2eBundle())

	a := s.Points()
	b := s.Points()
	require.NotEmpty(t, a)
	assert.Same(t, &a[0], &b[0], "no reprojection without a layout change")

	before := s.Rects()["Kyushu"]
	u := (a[0].X - before.X) / before.W
	v := (a[0].Y - before.Y) / before.H

	s.Resize(1000, 1000)
	assert.Same(t, &a[0], &s.Points()[0], "same size is a no-op")

	s.Resize(2000, 1600)
	after := s.Rects()["Kyushu"]
	p := s.Points()[0]
	assert.InDelta(t, after.X+u*after.W, p.X, 1e-9, "anchor kept across resize")
	assert.InDelta(t, after.Y+v*after.H, p.Y, 1e-9)
	assert.Equal(t, geo.Size{W: 2000, H: 1600}, s.Viewport())
	assert.True(t, s.Camera().Settled(), "resize snaps the camera")
}

func TestResizeKeepsFocus(t *testing.T) {
	s := newScene(t, config.Default(), e2eBundle())
	s.Click(screenOf(s, s.Point("r1")))
	s.Resize(800, 600)

	assert.Equal(t, nav.ModeRegion, s.Nav().Mode)
	k := s.Rects()["Kyushu"].Center()
	sx, sy := s.Camera().WorldToScreen(k.X, k.Y)
	assert.InDelta(t, 400, sx, 1e-6)
	assert.InDelta(t, 300, sy, 1e-6)
}

func TestNewErrors(t *testing.T) {
	_, err := New(config.Default(), nil, 100, 100, nil)
	assert.ErrorIs(t, err, ErrNoBundle)

	cfg := config.Default()
	cfg.Canvas.Width = -1
	_, err = New(cfg, e2eBundle(), 100, 100, nil)
	assert.Error(t, err)
}

func largeBundle(n int) *assets.Bundle {
	cfg := config.Default()
	rng := rand.New(rand.NewSource(4))
	b := &assets.Bundle{Masks: make(map[string]map[string]image.Image)}
	for _, reg := range cfg.Regions {
		b.Masks[reg.Name] = make(map[string]image.Image)
		for _, c := range reg.Cities {
			b.Masks[reg.Name][c.Name] = discImage(120, 90)
		}
	}
	cats := []string{"RC", "CS", "Food", "Goods", "Transport", "Service", "Other", "Bogus"}
	for i := 0; i < n; i++ {
		reg := cfg.Regions[rng.Intn(len(cfg.Regions))]
		city := reg.Cities[rng.Intn(len(reg.Cities))]
		b.Receipts = append(b.Receipts, receipt.Receipt{
			ID:       fmt.Sprintf("rcpt-%04d", i),
			Region:   reg.Name,
			City:     city.Name,
			Category: cats[rng.Intn(len(cats))],
			Price:    receipt.P(float64(50 + rng.Intn(20000))),
		})
	}
	b.Receipts = append(b.Receipts, receipt.Receipt{ID: "lost", Region: "Okinawa", Price: receipt.P(300)})
	return b
}

func TestSnapshotValidates(t *testing.T) {
	s := newScene(t, config.Default(), largeBundle(300))

	snap := s.Snapshot()
	assert.Len(t, snap.Points, 300)
	assert.Equal(t, 1, s.Report().CountCode(validation.CodeMissingLayout))
	assert.Equal(t, 1, s.Summary().Dropped)

	r := Validate(snap)
	assert.True(t, r.Valid, "%v", r.Errors)

	for _, p := range snap.Points {
		assert.Equal(t, place.SourceMask, s.Source(p.ID))
	}

	snap.Points[0].ID = snap.Points[1].ID
	assert.False(t, Validate(snap).Valid, "duplicate IDs must fail")
}

func TestValidateCatchesStructuralProblems(t *testing.T) {
	s := newScene(t, config.Default(), largeBundle(20))

	snap := s.Snapshot()
	snap.Points[0].X = -500
	r := Validate(snap)
	assert.False(t, r.Valid, "point outside its region")

	snap = s.Snapshot()
	snap.Groups.Regions["Kyushu"] = append(snap.Groups.Regions["Kyushu"], "ghost")
	assert.False(t, Validate(snap).Valid, "orphaned group reference")

	snap = s.Snapshot()
	snap.Points[0].Radius = 0
	r = Validate(snap)
	assert.True(t, r.Valid)
	assert.NotEmpty(t, r.Warnings)

	snap = s.Snapshot()
	snap.Nav = nav.State{Mode: nav.ModeCity, City: "Tokyo"}
	assert.False(t, Validate(snap).Valid)

	assert.False(t, Validate(nil).Valid)
}

func TestThumbnailScene(t *testing.T) {
	cfg := config.Default()
	cfg.Placement.Mode = config.PlacementThumbnail
	s := newScene(t, cfg, largeBundle(120))

	snap := s.Snapshot()
	placed := 0
	for _, p := range snap.Points {
		if p.Thumb != nil {
			placed++
		}
	}
	assert.Positive(t, placed)
	assert.Equal(t, len(snap.Points)-placed, s.Report().CountCode(validation.CodeUnplaced))

	r := Validate(snap)
	assert.True(t, r.Valid, "%v", r.Errors)
}

func TestCircleScene(t *testing.T) {
	cfg := config.Default()
	cfg.Placement.Mode = config.PlacementCircle
	s := newScene(t, cfg, largeBundle(100))

	for _, p := range s.Points() {
		assert.Equal(t, place.SourceCircle, s.Source(p.ID))
	}
	assert.True(t, Validate(s.Snapshot()).Valid)
}

func TestSnapshotIsDetached(t *testing.T) {
	s := newScene(t, config.Default(), e2eBundle())
	snap := s.Snapshot()
	snap.Points[0].X = 12345
	assert.NotEqual(t, 12345.0, s.Points()[0].X)
}

func BenchmarkNew(b *testing.B) {
	for _, n := range []int{100, 1000} {
		bundle := largeBundle(n)
		b.Run(fmt.Sprintf("receipts=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := New(config.Default(), bundle, 1000, 1000, rand.New(rand.NewSource(int64(i)))); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkTickAndHover(b *testing.B) {
	s := newScene(b, config.Default(), largeBundle(500))
	for i := 0; i < b.N; i++ {
		s.Tick()
		s.PointerMove(float64(i%1000), float64((i/1000)%1000))
	}
}
