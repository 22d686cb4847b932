package mask

import (
	"fmt"
	"image"
	"log"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/validation"
)

// Set holds every city mask keyed by region, then city.
type Set map[string]map[string]*CityMask

// Lookup returns the mask for a region/city pair, or nil.
func (s Set) Lookup(region, city string) *CityMask {
	return s[region][city]
}

// Put stores a mask.
func (s Set) Put(region, city string, m *CityMask) {
	if s[region] == nil {
		s[region] = make(map[string]*CityMask)
	}
	s[region][city] = m
}

// BuildSet classifies every loaded mask image using the configured colors.
// Cities whose mask has no inside pixels are kept (empty) and reported; the
// placer falls back to rectangle placement for them.
func BuildSet(cfg *config.SceneConfig, images map[string]map[string]image.Image) (Set, *validation.Report) {
	report := validation.NewReport()
	set := make(Set)

	for ri, reg := range cfg.Regions {
		for ci, city := range reg.Cities {
			img := images[reg.Name][city.Name]
			if img == nil {
				continue
			}
			path := fmt.Sprintf("regions[%d].cities[%d].mask", ri, ci)

			target, tol, err := cfg.MaskColor(&reg.Cities[ci])
			if err != nil {
				report.AddError(validation.Result{
					Level:       validation.LevelSchema,
					Message:     fmt.Sprintf("mask color for %s/%s: %v", reg.Name, city.Name, err),
					Path:        path,
					ActualValue: city.Color,
				})
				continue
			}

			m := Build(img, Options{
				Target:    target,
				Tolerance: uint8(clampInt(tol, 0, 255)),
				Margin:    cfg.Mask.Margin,
				Stride:    cfg.Mask.Stride,
			})
			set.Put(reg.Name, city.Name, m)

			if m.Empty() {
				log.Printf("mask %s/%s: no usable pixels, falling back to region placement", reg.Name, city.Name)
				report.AddInfo(validation.Result{
					Level:   validation.LevelPlacement,
					Code:    validation.CodeEmptyMask,
					Message: fmt.Sprintf("mask for %s/%s has no usable pixels; receipts use uniform region placement", reg.Name, city.Name),
					Path:    path,
				})
			}
		}
	}
	return set, report
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
