package layout

import (
	"math"
	"testing"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func rectApprox(a, b geo.Rect) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.W, b.W) && approx(a.H, b.H)
}

func TestComputeRegionRectsSquare(t *testing.T) {
	regions := config.Default().Regions
	rects := ComputeRegionRects(regions, config.BasisSquare, 1000, 1000)

	want := geo.R(0, 800, 140, 190)
	if got := rects["Kyushu"]; !rectApprox(got, want) {
		t.Errorf("Kyushu = %+v, want %+v", got, want)
	}
	if len(rects) != len(regions) {
		t.Errorf("got %d rects, want %d", len(rects), len(regions))
	}
}

func TestComputeRegionRectsSquareCentersWideViewport(t *testing.T) {
	regions := []config.Region{{Name: "A", Rect: config.PercentRect{X: 0, Y: 0, W: 100, H: 100}}}
	rects := ComputeRegionRects(regions, config.BasisSquare, 1600, 800)
	if got := rects["A"]; !rectApprox(got, geo.R(400, 0, 800, 800)) {
		t.Errorf("square basis on wide viewport = %+v, want {400 0 800 800}", got)
	}
}

func TestComputeRegionRectsViewport(t *testing.T) {
	regions := []config.Region{{Name: "A", Rect: config.PercentRect{X: 10, Y: 20, W: 50, H: 25}}}
	rects := ComputeRegionRects(regions, config.BasisViewport, 1200, 600)
	if got := rects["A"]; !rectApprox(got, geo.R(120, 120, 600, 150)) {
		t.Errorf("viewport basis = %+v, want {120 120 600 150}", got)
	}
}

func TestComputeRegionRectsIsPure(t *testing.T) {
	regions := config.Default().Regions
	a := ComputeRegionRects(regions, config.BasisSquare, 900, 700)
	_ = ComputeRegionRects(regions, config.BasisSquare, 300, 200)
	b := ComputeRegionRects(regions, config.BasisSquare, 900, 700)
	for name, r := range a {
		if b[name] != r {
			t.Errorf("%s differs between identical calls: %+v vs %+v", name, r, b[name])
		}
	}
}

func TestBounds(t *testing.T) {
	rr := RegionRects{
		"A": geo.R(0, 0, 10, 10),
		"B": geo.R(20, 30, 10, 10),
	}
	if got := rr.Bounds(); got != geo.R(0, 0, 30, 40) {
		t.Errorf("Bounds = %+v, want {0 0 30 40}", got)
	}
	if got := rr.RegionAt(geo.Pt(25, 35)); got != "B" {
		t.Errorf("RegionAt = %q, want B", got)
	}
	if got := rr.RegionAt(geo.Pt(15, 15)); got != "" {
		t.Errorf("RegionAt outside = %q, want empty", got)
	}
}

func TestComputeCityCircles(t *testing.T) {
	regions := []config.Region{{
		Name: "Kyushu",
		Rect: config.PercentRect{X: 0, Y: 80, W: 14, H: 19},
		Cities: []config.City{
			{Name: "Fukuoka", Circle: &config.Circle{X: 50, Y: 50, Radius: 50}},
			{Name: "Kagoshima"},
		},
	}}
	rects := ComputeRegionRects(regions, config.BasisSquare, 1000, 1000)
	circles := ComputeCityCircles(regions, rects)

	c, ok := circles.Lookup("Kyushu", "Fukuoka")
	if !ok {
		t.Fatal("Fukuoka circle missing")
	}
	if !approx(c.Center.X, 70) || !approx(c.Center.Y, 895) || !approx(c.Radius, 70) {
		t.Errorf("Fukuoka circle = %+v, want center (70,895) r 70", c)
	}
	if _, ok := circles.Lookup("Kyushu", "Kagoshima"); ok {
		t.Error("city without circle should be omitted")
	}
}
