package scene

import (
	"fmt"

	"github.com/audth517/Japan-Receipt-Map/pkg/place"
	"github.com/audth517/Japan-Receipt-Map/pkg/validation"
)

// containTolerance absorbs floating point error at rectangle edges.
const containTolerance = 1e-6

// Validate performs structural checks on a snapshot: point identity, group
// index consistency, sizes, containment in region rectangles and thumbnail
// overlap.
func Validate(snap *Snapshot) *validation.Report {
	r := validation.NewReport()

	if snap == nil {
		r.AddError(validation.Result{
			Level:   validation.LevelScene,
			Message: "snapshot is nil",
		})
		return r
	}

	validatePointIDs(snap, r)
	validateGroupIndices(snap, r)
	validatePointSizes(snap, r)
	validateContainment(snap, r)
	validateThumbnailOverlap(snap, r)
	if err := snap.Nav.Valid(); err != nil {
		r.AddError(validation.Result{
			Level:   validation.LevelScene,
			Message: err.Error(),
			Path:    "nav",
		})
	}

	return r
}

func validatePointIDs(snap *Snapshot, r *validation.Report) {
	seen := make(map[string]int, len(snap.Points))

	for i, p := range snap.Points {
		if p.ID == "" {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("point at index %d has empty ID", i),
				Path:        fmt.Sprintf("points[%d].id", i),
				ActualValue: "",
				Expected:    "non-empty string",
			})
			continue
		}
		if prev, exists := seen[p.ID]; exists {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("duplicate point ID %q at indices %d and %d", p.ID, prev, i),
				Path:        fmt.Sprintf("points[%d].id", i),
				ActualValue: p.ID,
			})
		}
		seen[p.ID] = i
	}
}

func validateGroupIndices(snap *Snapshot, r *validation.Report) {
	byID := make(map[string]int, len(snap.Points))
	for i, p := range snap.Points {
		byID[p.ID] = i
	}

	check := func(groupType, name string, ids []string, belongs func(i int) bool) {
		for _, id := range ids {
			i, ok := byID[id]
			if !ok {
				r.AddError(validation.Result{
					Level:       validation.LevelScene,
					Message:     fmt.Sprintf("group %s.%s references non-existent point %q", groupType, name, id),
					Path:        fmt.Sprintf("groups.%s.%s", groupType, name),
					ActualValue: id,
					Expected:    "existing point ID",
				})
				continue
			}
			if !belongs(i) {
				r.AddError(validation.Result{
					Level:       validation.LevelScene,
					Message:     fmt.Sprintf("point %q is listed in group %s.%s it does not belong to", id, groupType, name),
					Path:        fmt.Sprintf("groups.%s.%s", groupType, name),
					ActualValue: id,
				})
			}
		}
	}

	for _, name := range sortedKeys(snap.Groups.Regions) {
		check("regions", name, snap.Groups.Regions[name], func(i int) bool {
			return snap.Points[i].Region == name
		})
	}
	for _, name := range sortedKeys(snap.Groups.Cities) {
		check("cities", name, snap.Groups.Cities[name], func(i int) bool {
			return CityKey(snap.Points[i].Region, snap.Points[i].City) == name
		})
	}
	for _, name := range sortedKeys(snap.Groups.Categories) {
		check("categories", name, snap.Groups.Categories[name], func(i int) bool {
			return snap.Points[i].Category == name
		})
	}

	listed := 0
	for _, ids := range snap.Groups.Regions {
		listed += len(ids)
	}
	if listed != len(snap.Points) {
		r.AddError(validation.Result{
			Level:       validation.LevelScene,
			Message:     fmt.Sprintf("region groups list %d points, scene has %d", listed, len(snap.Points)),
			Path:        "groups.regions",
			ActualValue: listed,
		})
	}
}

func validatePointSizes(snap *Snapshot, r *validation.Report) {
	for i, p := range snap.Points {
		if p.Radius <= 0 {
			r.AddWarning(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("point %q has non-positive radius %.2f", p.ID, p.Radius),
				Path:        fmt.Sprintf("points[%d].radius", i),
				ActualValue: p.Radius,
				Expected:    "radius > 0",
			})
		}
		if p.Thumb != nil && (p.Thumb.W <= 0 || p.Thumb.H <= 0) {
			r.AddWarning(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("point %q has an empty thumbnail %.2f x %.2f", p.ID, p.Thumb.W, p.Thumb.H),
				Path:        fmt.Sprintf("points[%d].thumb", i),
				ActualValue: fmt.Sprintf("%.2f x %.2f", p.Thumb.W, p.Thumb.H),
				Expected:    "both dimensions > 0",
			})
		}
	}
}

func validateContainment(snap *Snapshot, r *validation.Report) {
	rects := make(map[string]int, len(snap.Regions))
	for i, reg := range snap.Regions {
		rects[reg.Name] = i
	}

	for i, p := range snap.Points {
		ri, ok := rects[p.Region]
		if !ok {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Code:        validation.CodeMissingLayout,
				Message:     fmt.Sprintf("point %q is in region %q which has no rectangle", p.ID, p.Region),
				Path:        fmt.Sprintf("points[%d].region", i),
				ActualValue: p.Region,
			})
			continue
		}
		rect := snap.Regions[ri].Rect
		if !rect.Inset(-containTolerance).Contains(p.Center()) {
			r.AddError(validation.Result{
				Level:        validation.LevelScene,
				Message:      fmt.Sprintf("point %q at (%.2f, %.2f) lies outside region %s", p.ID, p.X, p.Y, p.Region),
				Path:         fmt.Sprintf("points[%d]", i),
				ActualValue:  fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y),
				ConflictWith: p.Region,
			})
		}
		if p.Thumb != nil && !rect.ContainsRect(*p.Thumb, containTolerance) {
			r.AddError(validation.Result{
				Level:        validation.LevelScene,
				Message:      fmt.Sprintf("thumbnail of %q extends outside region %s", p.ID, p.Region),
				Path:         fmt.Sprintf("points[%d].thumb", i),
				ConflictWith: p.Region,
			})
		}
	}
}

func validateThumbnailOverlap(snap *Snapshot, r *validation.Report) {
	for i := range snap.Points {
		a := snap.Points[i].Thumb
		if a == nil {
			continue
		}
		for j := i + 1; j < len(snap.Points); j++ {
			b := snap.Points[j].Thumb
			if b == nil || !a.Overlaps(*b) {
				continue
			}
			res := validation.Result{
				Level:        validation.LevelScene,
				Message:      fmt.Sprintf("thumbnails of %q and %q overlap", snap.Points[i].ID, snap.Points[j].ID),
				Path:         fmt.Sprintf("points[%d].thumb", i),
				ConflictWith: snap.Points[j].ID,
			}
			// Cities are packed independently, so only same-city overlap is
			// a packing failure.
			if sameCity(&snap.Points[i], &snap.Points[j]) {
				r.AddError(res)
			} else {
				r.AddWarning(res)
			}
		}
	}
}

func sameCity(a, b *place.PlacedPoint) bool {
	return a.Region == b.Region && a.City == b.City
}
