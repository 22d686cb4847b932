// Package stats aggregates receipts per region, city and category for
// legends, panels and the summary command.
package stats

import (
	"fmt"
	"sort"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/place"
	"github.com/audth517/Japan-Receipt-Map/pkg/pricescale"
	"github.com/audth517/Japan-Receipt-Map/pkg/receipt"
	"github.com/audth517/Japan-Receipt-Map/pkg/validation"
)

// Bucket is a count and total spend for one grouping.
type Bucket struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Spend float64 `json:"spend"`
}

func (b *Bucket) add(p place.PlacedPoint) {
	b.Count++
	if p.Price > 0 {
		b.Spend += p.Price
	}
}

// CityStats is the breakdown of one city.
type CityStats struct {
	Bucket
	Categories []Bucket `json:"categories"`
}

// RegionStats is the breakdown of one region.
type RegionStats struct {
	Bucket
	Cities []CityStats `json:"cities"`
}

// Summary is the aggregate view of a placed scene.
type Summary struct {
	Receipts        int           `json:"receipts"`
	Placed          int           `json:"placed"`
	Dropped         int           `json:"dropped"`
	MalformedPrices int           `json:"malformed_prices"`
	TotalSpend      float64       `json:"total_spend"`
	MinPrice        float64       `json:"min_price"`
	MaxPrice        float64       `json:"max_price"`
	Regions         []RegionStats `json:"regions"`
	Categories      []Bucket      `json:"categories"`
}

// Summarize aggregates placed points. Records are only used for the input
// totals; dropped records never appear in a breakdown. Regions, cities and
// the global category list follow configuration order. Unconfigured regions
// are appended alphabetically and unconfigured cities in the order seen.
// Per-city categories are ordered by count.
func Summarize(records []receipt.Receipt, points []place.PlacedPoint, cfg *config.SceneConfig) (*Summary, *validation.Report) {
	report := validation.NewReport()
	s := &Summary{
		Receipts: len(records),
		Placed:   len(points),
		Dropped:  len(records) - len(points),
	}

	var rg pricescale.Range
	for _, r := range records {
		if !r.Price.Valid {
			s.MalformedPrices++
			continue
		}
		rg.Observe(r.Price.Value)
	}
	if !rg.Empty() {
		s.MinPrice, s.MaxPrice = rg.Min, rg.Max
	}

	regionIdx := make(map[string]int)
	cityIdx := make(map[[2]string]int)
	catIdx := make(map[[3]string]int)
	globalCat := make(map[string]int)

	for _, reg := range cfg.Regions {
		regionIdx[reg.Name] = len(s.Regions)
		rs := RegionStats{Bucket: Bucket{Name: reg.Name}}
		for _, c := range reg.Cities {
			cityIdx[[2]string{reg.Name, c.Name}] = len(rs.Cities)
			rs.Cities = append(rs.Cities, CityStats{Bucket: Bucket{Name: c.Name}})
		}
		s.Regions = append(s.Regions, rs)
	}
	for _, cat := range cfg.Categories {
		globalCat[cat.Code] = len(s.Categories)
		s.Categories = append(s.Categories, Bucket{Name: cat.Code})
	}

	for _, p := range points {
		s.TotalSpend += max(p.Price, 0)

		ri, ok := regionIdx[p.Region]
		if !ok {
			ri = len(s.Regions)
			regionIdx[p.Region] = ri
			s.Regions = append(s.Regions, RegionStats{Bucket: Bucket{Name: p.Region}})
		}
		rs := &s.Regions[ri]
		rs.add(p)

		ck := [2]string{p.Region, p.City}
		ci, ok := cityIdx[ck]
		if !ok {
			ci = len(rs.Cities)
			cityIdx[ck] = ci
			rs.Cities = append(rs.Cities, CityStats{Bucket: Bucket{Name: p.City}})
		}
		cs := &rs.Cities[ci]
		cs.add(p)

		kk := [3]string{p.Region, p.City, p.Category}
		ki, ok := catIdx[kk]
		if !ok {
			ki = len(cs.Categories)
			catIdx[kk] = ki
			cs.Categories = append(cs.Categories, Bucket{Name: p.Category})
		}
		cs.Categories[ki].add(p)

		gi, ok := globalCat[p.Category]
		if !ok {
			gi = len(s.Categories)
			globalCat[p.Category] = gi
			s.Categories = append(s.Categories, Bucket{Name: p.Category})
		}
		s.Categories[gi].add(p)
	}

	configured := len(cfg.Regions)
	sort.SliceStable(s.Regions[configured:], func(i, j int) bool {
		return s.Regions[configured+i].Name < s.Regions[configured+j].Name
	})
	for i := range s.Regions {
		cities := s.Regions[i].Cities
		for j := range cities {
			sortBuckets(cities[j].Categories)
		}
	}

	for _, rs := range s.Regions[:configured] {
		for _, cs := range rs.Cities {
			if cs.Count == 0 {
				report.AddInfo(validation.Result{
					Level:   validation.LevelData,
					Message: fmt.Sprintf("no receipts placed in %s/%s", rs.Name, cs.Name),
					Path:    rs.Name + "/" + cs.Name,
				})
			}
		}
	}
	return s, report
}

// sortBuckets orders by count, then name.
func sortBuckets(b []Bucket) {
	sort.SliceStable(b, func(i, j int) bool {
		if b[i].Count != b[j].Count {
			return b[i].Count > b[j].Count
		}
		return b[i].Name < b[j].Name
	})
}

// Region returns the breakdown for a region, or nil.
func (s *Summary) Region(name string) *RegionStats {
	for i := range s.Regions {
		if s.Regions[i].Name == name {
			return &s.Regions[i]
		}
	}
	return nil
}

// City returns the breakdown for a city, or nil.
func (s *Summary) City(region, city string) *CityStats {
	rs := s.Region(region)
	if rs == nil {
		return nil
	}
	for i := range rs.Cities {
		if rs.Cities[i].Name == city {
			return &rs.Cities[i]
		}
	}
	return nil
}
