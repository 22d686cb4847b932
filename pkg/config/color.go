package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor parses "#rrggbb" or "#rgb" into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// MaskColor returns the target color and tolerance for a city's mask,
// applying the city's overrides on top of the mask defaults.
func (c *SceneConfig) MaskColor(city *City) (color.NRGBA, int, error) {
	hex := c.Mask.Color
	tol := c.Mask.Tolerance
	if city != nil {
		if city.Color != "" {
			hex = city.Color
		}
		if city.Tolerance != nil {
			tol = *city.Tolerance
		}
	}
	col, err := ParseHexColor(hex)
	return col, tol, err
}

// CategoryColor returns the display color of a category code, falling back
// to the Other category and then to mid grey.
func (c *SceneConfig) CategoryColor(code string) color.NRGBA {
	for _, want := range []string{code, OtherCategory} {
		if cat := c.CategoryByCode(want); cat != nil {
			if col, err := ParseHexColor(cat.Color); err == nil {
				return col
			}
		}
	}
	return color.NRGBA{R: 180, G: 180, B: 180, A: 0xff}
}
