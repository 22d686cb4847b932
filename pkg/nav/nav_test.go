package nav

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
	"github.com/audth517/Japan-Receipt-Map/pkg/place"
)

func pt(id, region, city, category string) *place.PlacedPoint {
	return &place.PlacedPoint{ID: id, Region: region, City: city, Category: category, Radius: 5}
}

var (
	fukuokaRC = pt("r1", "Kyushu", "Fukuoka", "RC")
	fukuokaCS = pt("r2", "Kyushu", "Fukuoka", "CS")
	kagoshima = pt("r3", "Kyushu", "Kagoshima", "Food")
	tokyo     = pt("r4", "Honshu", "Tokyo", "CS")
)

func TestClickTransitions(t *testing.T) {
	region := State{Mode: ModeRegion, Region: "Kyushu"}
	city := State{Mode: ModeCity, Region: "Kyushu", City: "Fukuoka"}
	category := State{Mode: ModeCategory, Region: "Kyushu", City: "Fukuoka", Category: "RC"}

	tests := []struct {
		name       string
		from       State
		hit        *place.PlacedPoint
		want       State
		wantTarget Target
	}{
		{"overview point", Overview(), fukuokaRC, region, Target{Kind: TargetRegion, Region: "Kyushu"}},
		{"overview empty", Overview(), nil, Overview(), Target{}},
		{"region same region", region, fukuokaRC, city, Target{Kind: TargetCity, Region: "Kyushu", City: "Fukuoka"}},
		{"region other region", region, tokyo, State{Mode: ModeRegion, Region: "Honshu"}, Target{Kind: TargetRegion, Region: "Honshu"}},
		{"region empty", region, nil, Overview(), Target{Kind: TargetAll}},
		{"city same city", city, fukuokaRC, category, Target{}},
		{"city other city", city, kagoshima, State{Mode: ModeCity, Region: "Kyushu", City: "Kagoshima"}, Target{Kind: TargetCity, Region: "Kyushu", City: "Kagoshima"}},
		{"city other region", city, tokyo, State{Mode: ModeRegion, Region: "Honshu"}, Target{Kind: TargetRegion, Region: "Honshu"}},
		{"city empty", city, nil, region, Target{Kind: TargetRegion, Region: "Kyushu"}},
		{"category same category clears", category, fukuokaRC, city, Target{}},
		{"category switches category", category, fukuokaCS, State{Mode: ModeCategory, Region: "Kyushu", City: "Fukuoka", Category: "CS"}, Target{}},
		{"category other city", category, kagoshima, State{Mode: ModeCity, Region: "Kyushu", City: "Kagoshima"}, Target{Kind: TargetCity, Region: "Kyushu", City: "Kagoshima"}},
		{"category other region", category, tokyo, State{Mode: ModeRegion, Region: "Honshu"}, Target{Kind: TargetRegion, Region: "Honshu"}},
		{"category empty", category, nil, city, Target{Kind: TargetCity, Region: "Kyushu", City: "Fukuoka"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, target := tt.from.Click(tt.hit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantTarget, target)
			assert.NoError(t, got.Valid())
		})
	}
}

func TestRoundTripToOverview(t *testing.T) {
	s, _ := Overview().Click(fukuokaRC)
	require.Equal(t, ModeRegion, s.Mode)
	require.Equal(t, "Kyushu", s.Region)

	s, target := s.Click(nil)
	assert.Equal(t, ModeOverview, s.Mode)
	assert.Empty(t, s.Region)
	assert.Equal(t, TargetAll, target.Kind)
}

func TestDoubleClickOnlyTouchesSelection(t *testing.T) {
	s := State{Mode: ModeCity, Region: "Kyushu", City: "Fukuoka"}

	s = s.DoubleClick(fukuokaCS)
	assert.Equal(t, "r2", s.Selected)
	assert.Equal(t, ModeCity, s.Mode)
	assert.Equal(t, "Fukuoka", s.City)

	s = s.DoubleClick(tokyo)
	assert.Equal(t, "r4", s.Selected)
	assert.Equal(t, "Kyushu", s.Region, "selecting a point in another region must not refocus")

	s = s.DoubleClick(tokyo)
	assert.Empty(t, s.Selected)

	s = s.DoubleClick(fukuokaRC).DoubleClick(nil)
	assert.Empty(t, s.Selected)
}

func TestSelectionSurvivesClicks(t *testing.T) {
	s := Overview().DoubleClick(tokyo)
	s, _ = s.Click(fukuokaRC)
	assert.Equal(t, "r4", s.Selected)
}

func TestFocusInvariantUnderRandomSequences(t *testing.T) {
	hits := []*place.PlacedPoint{
		nil, fukuokaRC, fukuokaCS, kagoshima, tokyo,
		pt("r5", "Honshu", "Osaka", "Goods"),
		pt("r6", "Hokkaido", "Sapporo", "Food"),
	}
	rng := rand.New(rand.NewSource(11))
	for seq := 0; seq < 500; seq++ {
		s := Overview()
		for step := 0; step < 30; step++ {
			hit := hits[rng.Intn(len(hits))]
			if rng.Intn(5) == 0 {
				s = s.DoubleClick(hit)
			} else {
				s, _ = s.Click(hit)
			}
			require.NoError(t, s.Valid(), "sequence %d step %d", seq, step)
			if s.City != "" {
				require.NotEmpty(t, s.Region)
			}
		}
	}
}

func TestValidRejectsInconsistentStates(t *testing.T) {
	bad := []State{
		{Mode: ModeOverview, Region: "Kyushu"},
		{Mode: ModeRegion},
		{Mode: ModeCity, City: "Fukuoka"},
		{Mode: ModeCategory, Region: "Kyushu", Category: "CS"},
		{Mode: ModeCity, Region: "Kyushu", City: "Fukuoka", Category: "CS"},
	}
	for _, s := range bad {
		assert.Error(t, s.Valid(), "%+v", s)
	}
}

func TestHitTest(t *testing.T) {
	points := []place.PlacedPoint{
		{ID: "a", X: 10, Y: 10, Radius: 5},
		{ID: "b", X: 14, Y: 10, Radius: 5},
		{ID: "c", X: 100, Y: 100, Radius: 2, Thumb: &geo.Rect{X: 90, Y: 90, W: 20, H: 20}},
	}

	assert.Equal(t, 0, HitTest(points, 12, 10, 1.4), "overlap resolves to the first match")
	assert.Equal(t, 1, HitTest(points, 20, 10, 1.4), "6 away from b is inside 5*1.4")
	assert.Equal(t, -1, HitTest(points, 22, 10, 1.4))
	assert.Equal(t, -1, HitTest(points, 20, 10, 1.0), "no slop")
	assert.Equal(t, 2, HitTest(points, 92, 108, 1.4), "inside the thumbnail, far from its radius")
	assert.Equal(t, 2, HitTest(points, 113, 100, 1.4), "inside the grown thumbnail")
	assert.Equal(t, -1, HitTest(points, 115, 100, 1.4))
	assert.Equal(t, -1, HitTest(nil, 0, 0, 1.4))
}
