// Package nav is the drill-down navigation state machine:
// overview, region, city and category focus.
package nav

import (
	"fmt"

	"github.com/audth517/Japan-Receipt-Map/pkg/place"
)

// Mode is the current drill-down depth.
type Mode string

const (
	ModeOverview Mode = "overview"
	ModeRegion   Mode = "region"
	ModeCity     Mode = "city"
	ModeCategory Mode = "category"
)

// State is the navigation focus. Empty strings mean "not focused".
type State struct {
	Mode     Mode   `json:"mode"`
	Region   string `json:"region,omitempty"`
	City     string `json:"city,omitempty"`
	Category string `json:"category,omitempty"`
	Selected string `json:"selected,omitempty"` // ID of the point under detail inspection
}

// TargetKind says what the camera should frame after a transition.
type TargetKind int

const (
	// TargetNone leaves the camera where it is.
	TargetNone TargetKind = iota
	// TargetAll resets to the bounds of every region.
	TargetAll
	// TargetRegion focuses a region rectangle.
	TargetRegion
	// TargetCity focuses a city's points, clamped relative to its region.
	TargetCity
)

func (k TargetKind) String() string {
	switch k {
	case TargetAll:
		return "all"
	case TargetRegion:
		return "region"
	case TargetCity:
		return "city"
	default:
		return "none"
	}
}

// Target is the camera intent produced by a transition.
type Target struct {
	Kind   TargetKind
	Region string
	City   string
}

// Overview is the initial state.
func Overview() State {
	return State{Mode: ModeOverview}
}

func regionState(s State, region string) (State, Target) {
	return State{Mode: ModeRegion, Region: region, Selected: s.Selected},
		Target{Kind: TargetRegion, Region: region}
}

func cityState(s State, region, city string) (State, Target) {
	return State{Mode: ModeCity, Region: region, City: city, Selected: s.Selected},
		Target{Kind: TargetCity, Region: region, City: city}
}

// Click applies a click that hit the given point, or nothing when hit is
// nil, and returns the new state with the camera intent.
func (s State) Click(hit *place.PlacedPoint) (State, Target) {
	switch s.Mode {
	case ModeRegion:
		switch {
		case hit == nil:
			return State{Mode: ModeOverview, Selected: s.Selected}, Target{Kind: TargetAll}
		case hit.Region == s.Region:
			return cityState(s, s.Region, hit.City)
		default:
			return regionState(s, hit.Region)
		}

	case ModeCity, ModeCategory:
		switch {
		case hit == nil && s.Mode == ModeCategory:
			return cityState(s, s.Region, s.City)
		case hit == nil:
			return regionState(s, s.Region)
		case hit.Region != s.Region:
			return regionState(s, hit.Region)
		case hit.City != s.City:
			return cityState(s, s.Region, hit.City)
		case s.Mode == ModeCategory && hit.Category == s.Category:
			next := s
			next.Mode = ModeCity
			next.Category = ""
			return next, Target{}
		default:
			next := s
			next.Mode = ModeCategory
			next.Category = hit.Category
			return next, Target{}
		}

	default:
		if hit == nil {
			return State{Mode: ModeOverview, Selected: s.Selected}, Target{}
		}
		return regionState(s, hit.Region)
	}
}

// DoubleClick toggles the detail selection without touching the focus.
func (s State) DoubleClick(hit *place.PlacedPoint) State {
	switch {
	case hit == nil, hit.ID == s.Selected:
		s.Selected = ""
	default:
		s.Selected = hit.ID
	}
	return s
}

// Valid checks that the mode matches the deepest focus field and that no
// deeper field is set without its parent.
func (s State) Valid() error {
	want := ModeOverview
	switch {
	case s.Category != "":
		want = ModeCategory
	case s.City != "":
		want = ModeCity
	case s.Region != "":
		want = ModeRegion
	}
	if s.Mode != want {
		return fmt.Errorf("mode %q does not match focus %+v", s.Mode, s)
	}
	if s.City != "" && s.Region == "" {
		return fmt.Errorf("city %q focused without a region", s.City)
	}
	if s.Category != "" && s.City == "" {
		return fmt.Errorf("category %q focused without a city", s.Category)
	}
	return nil
}

// String renders the focus path, e.g. "Kyushu / Fukuoka / CS".
func (s State) String() string {
	switch s.Mode {
	case ModeRegion:
		return s.Region
	case ModeCity:
		return s.Region + " / " + s.City
	case ModeCategory:
		return s.Region + " / " + s.City + " / " + s.Category
	default:
		return "Japan"
	}
}
