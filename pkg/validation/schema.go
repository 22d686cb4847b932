package validation

import (
	"fmt"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
)

// ValidateSchema performs schema validation on a parsed SceneConfig.
// It checks structural correctness before any scene is built.
func ValidateSchema(c *config.SceneConfig) *Report {
	r := NewReport()

	validateCanvas(c, r)
	validateRegions(c, r)
	validatePriceScale(c, r)
	validatePlacement(c, r)
	validateMask(c, r)
	validateThumbnails(c, r)
	validateCamera(c, r)
	validateInteraction(c, r)
	validateCategories(c, r)

	return r
}

func validateCanvas(c *config.SceneConfig, r *Report) {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "canvas width and height must be greater than 0",
			Path:        "canvas",
			ActualValue: fmt.Sprintf("%vx%v", c.Canvas.Width, c.Canvas.Height),
			Expected:    "> 0",
		})
	}
	switch c.Canvas.Basis {
	case config.BasisViewport, config.BasisSquare:
	default:
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("unknown canvas basis %q", c.Canvas.Basis),
			Path:        "canvas.basis",
			ActualValue: c.Canvas.Basis,
			Expected:    "viewport or square",
		})
	}
}

func validateRegions(c *config.SceneConfig, r *Report) {
	if len(c.Regions) == 0 {
		r.AddError(Result{
			Level:    LevelSchema,
			Message:  "regions must contain at least one region",
			Path:     "regions",
			Expected: "at least 1 region",
		})
		return
	}

	seen := make(map[string]int, len(c.Regions))
	for i, reg := range c.Regions {
		path := fmt.Sprintf("regions[%d]", i)
		if reg.Name == "" {
			r.AddError(Result{
				Level:    LevelSchema,
				Message:  fmt.Sprintf("%s has an empty name", path),
				Path:     path + ".name",
				Expected: "non-empty string",
			})
		} else if prev, dup := seen[reg.Name]; dup {
			r.AddError(Result{
				Level:        LevelSchema,
				Message:      fmt.Sprintf("duplicate region name %q", reg.Name),
				Path:         path + ".name",
				ActualValue:  reg.Name,
				ConflictWith: fmt.Sprintf("regions[%d]", prev),
			})
		} else {
			seen[reg.Name] = i
		}

		validatePercentRect(reg.Rect, path+".rect", r)

		if len(reg.Cities) == 0 {
			r.AddWarning(Result{
				Level:   LevelSchema,
				Message: fmt.Sprintf("region %s has no cities; all of its receipts use rectangle placement", reg.Name),
				Path:    path + ".cities",
			})
		}

		cities := make(map[string]bool, len(reg.Cities))
		for j, city := range reg.Cities {
			cpath := fmt.Sprintf("%s.cities[%d]", path, j)
			if city.Name == "" {
				r.AddError(Result{
					Level:    LevelSchema,
					Message:  fmt.Sprintf("%s has an empty name", cpath),
					Path:     cpath + ".name",
					Expected: "non-empty string",
				})
				continue
			}
			if cities[city.Name] {
				r.AddError(Result{
					Level:       LevelSchema,
					Message:     fmt.Sprintf("duplicate city %q in region %s", city.Name, reg.Name),
					Path:        cpath + ".name",
					ActualValue: city.Name,
				})
			}
			cities[city.Name] = true

			if city.Color != "" {
				if _, err := config.ParseHexColor(city.Color); err != nil {
					r.AddError(Result{
						Level:       LevelSchema,
						Message:     err.Error(),
						Path:        cpath + ".color",
						ActualValue: city.Color,
						Expected:    "#rrggbb",
					})
				}
			}
			if city.Tolerance != nil && (*city.Tolerance < 0 || *city.Tolerance > 255) {
				r.AddError(Result{
					Level:       LevelSchema,
					Message:     fmt.Sprintf("%s tolerance must be in [0,255]", cpath),
					Path:        cpath + ".tolerance",
					ActualValue: *city.Tolerance,
					Expected:    "0-255",
				})
			}
			if city.Circle != nil && city.Circle.Radius <= 0 {
				r.AddError(Result{
					Level:       LevelSchema,
					Message:     fmt.Sprintf("%s circle radius must be > 0", cpath),
					Path:        cpath + ".circle.radius",
					ActualValue: city.Circle.Radius,
					Expected:    "> 0",
				})
			}
			if city.Mask == "" && c.Placement.Mode != config.PlacementCircle {
				r.AddInfo(Result{
					Level:   LevelSchema,
					Message: fmt.Sprintf("city %s/%s has no mask; its receipts use rectangle placement", reg.Name, city.Name),
					Path:    cpath + ".mask",
				})
			}
		}
	}
}

func validatePercentRect(p config.PercentRect, path string, r *Report) {
	vals := map[string]float64{"x": p.X, "y": p.Y, "w": p.W, "h": p.H}
	for _, name := range []string{"x", "y", "w", "h"} {
		v := vals[name]
		if v < 0 || v > 100 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s.%s must be a percentage", path, name),
				Path:        path + "." + name,
				ActualValue: v,
				Expected:    "0-100",
			})
		}
	}
	if p.W <= 0 || p.H <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("%s must have positive width and height", path),
			Path:        path,
			ActualValue: fmt.Sprintf("%vx%v", p.W, p.H),
			Expected:    "> 0",
		})
	}
}

func validatePriceScale(c *config.SceneConfig, r *Report) {
	ps := c.PriceScale
	if ps.OutMin <= 0 || ps.OutMax < ps.OutMin {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("price_scale output range %.1f-%.1f is invalid", ps.OutMin, ps.OutMax),
			Path:        "price_scale",
			ActualValue: fmt.Sprintf("%.1f-%.1f", ps.OutMin, ps.OutMax),
			Expected:    "0 < out_min <= out_max",
		})
	}
	if ps.Midpoint < ps.OutMin || ps.Midpoint > ps.OutMax {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     "price_scale.midpoint lies outside the output range",
			Path:        "price_scale.midpoint",
			ActualValue: ps.Midpoint,
		})
	}
}

func validatePlacement(c *config.SceneConfig, r *Report) {
	switch c.Placement.Mode {
	case config.PlacementMask, config.PlacementCircle, config.PlacementThumbnail:
	default:
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("unknown placement mode %q", c.Placement.Mode),
			Path:        "placement.mode",
			ActualValue: c.Placement.Mode,
			Expected:    "mask, circle or thumbnail",
		})
	}
	if c.Placement.CentralFraction <= 0 || c.Placement.CentralFraction > 1 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "placement.central_fraction must be in (0,1]",
			Path:        "placement.central_fraction",
			ActualValue: c.Placement.CentralFraction,
			Expected:    "(0,1]",
		})
	}
	if c.Placement.CentralMin < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "placement.central_min must be >= 0",
			Path:        "placement.central_min",
			ActualValue: c.Placement.CentralMin,
		})
	}
}

func validateMask(c *config.SceneConfig, r *Report) {
	if _, err := config.ParseHexColor(c.Mask.Color); err != nil {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     err.Error(),
			Path:        "mask.color",
			ActualValue: c.Mask.Color,
			Expected:    "#rrggbb",
		})
	}
	if c.Mask.Tolerance < 0 || c.Mask.Tolerance > 255 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "mask.tolerance must be in [0,255]",
			Path:        "mask.tolerance",
			ActualValue: c.Mask.Tolerance,
			Expected:    "0-255",
		})
	}
	if c.Mask.Margin < 0 || c.Mask.Margin >= 0.5 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "mask.margin must be in [0,0.5)",
			Path:        "mask.margin",
			ActualValue: c.Mask.Margin,
			Expected:    "0 <= margin < 0.5",
		})
	}
	if c.Mask.Stride < 1 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "mask.stride must be >= 1",
			Path:        "mask.stride",
			ActualValue: c.Mask.Stride,
		})
	}
}

func validateThumbnails(c *config.SceneConfig, r *Report) {
	th := c.Thumbnails
	if th.MinWidth <= 0 || th.MaxWidth < th.MinWidth {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "thumbnails width range is invalid",
			Path:        "thumbnails",
			ActualValue: fmt.Sprintf("%.1f-%.1f", th.MinWidth, th.MaxWidth),
			Expected:    "0 < min_width <= max_width",
		})
	}
	if th.Aspect <= 0 || th.CellSize <= 0 {
		r.AddError(Result{
			Level:    LevelSchema,
			Message:  "thumbnails aspect and cell_size must be > 0",
			Path:     "thumbnails",
			Expected: "> 0",
		})
	}
}

func validateCamera(c *config.SceneConfig, r *Report) {
	cam := c.Camera
	for name, v := range map[string]float64{"ease": cam.Ease, "fade_ease": cam.FadeEase} {
		if v <= 0 || v > 1 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("camera.%s must be in (0,1]", name),
				Path:        "camera." + name,
				ActualValue: v,
				Expected:    "(0,1]",
			})
		}
	}
	if cam.Margin < 0 || cam.Margin >= 0.5 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "camera.margin must be in [0,0.5)",
			Path:        "camera.margin",
			ActualValue: cam.Margin,
		})
	}
	if cam.MaxCityZoom < 1 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "camera.max_city_zoom must be >= 1",
			Path:        "camera.max_city_zoom",
			ActualValue: cam.MaxCityZoom,
			Expected:    ">= 1",
		})
	}
}

func validateInteraction(c *config.SceneConfig, r *Report) {
	if c.Interaction.HitSlop < 1 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "interaction.hit_slop must be >= 1",
			Path:        "interaction.hit_slop",
			ActualValue: c.Interaction.HitSlop,
			Expected:    ">= 1",
		})
	}
	if c.Interaction.DoubleClickMS <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "interaction.double_click_ms must be > 0",
			Path:        "interaction.double_click_ms",
			ActualValue: c.Interaction.DoubleClickMS,
		})
	}
}

func validateCategories(c *config.SceneConfig, r *Report) {
	hasOther := false
	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		path := fmt.Sprintf("categories[%d]", i)
		if cat.Code == config.OtherCategory {
			hasOther = true
		}
		if seen[cat.Code] {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("duplicate category code %q", cat.Code),
				Path:        path + ".code",
				ActualValue: cat.Code,
			})
		}
		seen[cat.Code] = true
		if _, err := config.ParseHexColor(cat.Color); err != nil {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     err.Error(),
				Path:        path + ".color",
				ActualValue: cat.Color,
				Expected:    "#rrggbb",
			})
		}
	}
	if !hasOther {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("categories must include the %q fallback", config.OtherCategory),
			Path:        "categories",
			Expected:    config.OtherCategory,
			Suggestions: []string{fmt.Sprintf("Add {code: %s, label: Other, color: \"#b4b4b4\"}", config.OtherCategory)},
		})
	}
}
