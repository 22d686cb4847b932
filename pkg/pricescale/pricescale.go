// Package pricescale maps heavy-tailed prices onto a visual size range with
// log interpolation.
package pricescale

import "math"

// RadiusFor maps price into [outMin, outMax] on a log scale between minPrice
// and maxPrice. Prices below 1 are treated as 1. When the range is
// degenerate the midpoint of the output range is returned.
func RadiusFor(price, minPrice, maxPrice, outMin, outMax float64) float64 {
	return radiusFor(price, minPrice, maxPrice, outMin, outMax, (outMin+outMax)/2)
}

func radiusFor(price, minPrice, maxPrice, outMin, outMax, mid float64) float64 {
	if minPrice == maxPrice || minPrice <= 0 || maxPrice <= 0 {
		return mid
	}
	t := (math.Log(math.Max(price, 1)) - math.Log(minPrice)) / (math.Log(maxPrice) - math.Log(minPrice))
	if math.IsNaN(t) {
		return mid
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return outMin + t*(outMax-outMin)
}

// Range accumulates the min and max of valid prices. Prices <= 0 and
// non-finite values are ignored.
type Range struct {
	Min, Max float64
	n        int
}

// Observe adds a price to the range.
func (r *Range) Observe(price float64) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return
	}
	if r.n == 0 || price < r.Min {
		r.Min = price
	}
	if r.n == 0 || price > r.Max {
		r.Max = price
	}
	r.n++
}

// Count returns the number of observed prices.
func (r Range) Count() int { return r.n }

// Empty reports whether no valid price was observed.
func (r Range) Empty() bool { return r.n == 0 }

// Scale is a configured price-to-size mapping over an observed range.
type Scale struct {
	Range    Range
	OutMin   float64
	OutMax   float64
	Midpoint float64
}

// Size maps a price through the scale. An empty or degenerate range yields
// the midpoint.
func (s Scale) Size(price float64) float64 {
	mid := s.Midpoint
	if mid == 0 {
		mid = (s.OutMin + s.OutMax) / 2
	}
	if s.Range.Empty() {
		return mid
	}
	return radiusFor(price, s.Range.Min, s.Range.Max, s.OutMin, s.OutMax, mid)
}
