package scene

import (
	"sort"

	"github.com/audth517/Japan-Receipt-Map/pkg/camera"
	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/geo"
	"github.com/audth517/Japan-Receipt-Map/pkg/nav"
	"github.com/audth517/Japan-Receipt-Map/pkg/place"
	"github.com/audth517/Japan-Receipt-Map/pkg/stats"
)

// Snapshot is the render model for one frame: everything a renderer needs,
// detached from the live State.
type Snapshot struct {
	Metadata Metadata            `json:"metadata"`
	View     camera.View         `json:"view"`
	Fade     float64             `json:"fade"`
	Viewport geo.Size            `json:"viewport"`
	Nav      nav.State           `json:"nav"`
	Hovered  *place.PlacedPoint  `json:"hovered,omitempty"`
	Selected *place.PlacedPoint  `json:"selected,omitempty"`
	Regions  []RegionView        `json:"regions"`
	Points   []place.PlacedPoint `json:"points"`
	Groups   Groups              `json:"groups"`
	Summary  *stats.Summary      `json:"summary,omitempty"`
}

// Metadata holds scene-level information.
type Metadata struct {
	Version       string               `json:"version"`
	Mode          config.PlacementMode `json:"mode"`
	Bounds        geo.Rect             `json:"bounds"`
	LayoutVersion int                  `json:"layout_version"`
	Frame         int                  `json:"frame"`
	Settled       bool                 `json:"settled"`
}

// RegionView is one region rectangle as drawn this frame.
type RegionView struct {
	Name    string   `json:"name"`
	Rect    geo.Rect `json:"rect"`
	Focused bool     `json:"focused"`
}

// Groups index point IDs for fast filtering. City keys are "region/city".
type Groups struct {
	Regions    map[string][]string `json:"regions"`
	Cities     map[string][]string `json:"cities"`
	Categories map[string][]string `json:"categories"`
}

// CityKey is the Groups.Cities key for a city.
func CityKey(region, city string) string {
	return region + "/" + city
}

func newGroups() Groups {
	return Groups{
		Regions:    make(map[string][]string),
		Cities:     make(map[string][]string),
		Categories: make(map[string][]string),
	}
}

func buildGroups(points []place.PlacedPoint) Groups {
	g := newGroups()
	for _, p := range points {
		g.Regions[p.Region] = append(g.Regions[p.Region], p.ID)
		k := CityKey(p.Region, p.City)
		g.Cities[k] = append(g.Cities[k], p.ID)
		g.Categories[p.Category] = append(g.Categories[p.Category], p.ID)
	}
	return g
}

// InFocus reports whether a point belongs to the focused region or city.
// Everything is in focus in the overview.
func (s *Snapshot) InFocus(p *place.PlacedPoint) bool {
	switch s.Nav.Mode {
	case nav.ModeRegion:
		return p.Region == s.Nav.Region
	case nav.ModeCity, nav.ModeCategory:
		return p.Region == s.Nav.Region && p.City == s.Nav.City
	default:
		return true
	}
}

// Highlighted reports whether a point is emphasized: in focus and, when a
// category is focused, of that category.
func (s *Snapshot) Highlighted(p *place.PlacedPoint) bool {
	if !s.InFocus(p) {
		return false
	}
	return s.Nav.Mode != nav.ModeCategory || p.Category == s.Nav.Category
}

// sortedKeys returns map keys in order, for deterministic output.
func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
