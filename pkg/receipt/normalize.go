package receipt

import (
	"fmt"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/validation"
)

// Normalize returns a copy of records with categories mapped onto the
// configured set and IDs made unique. Malformed prices are kept (sized as
// 1) and reported. Unknown cities of known regions are reported as info;
// unknown regions are left for the placer to drop.
func Normalize(records []Receipt, cfg *config.SceneConfig) ([]Receipt, *validation.Report) {
	report := validation.NewReport()
	out := make([]Receipt, len(records))
	seen := make(map[string]int, len(records))

	for i, r := range records {
		r.Category = cfg.NormalizeCategory(r.Category)
		if r.ID == "" {
			r.ID = fmt.Sprintf("receipt_%05d", i)
			report.AddWarning(validation.Result{
				Level:       validation.LevelData,
				Code:        validation.CodeMissingID,
				Message:     fmt.Sprintf("receipt at index %d has no id; assigned %s", i, r.ID),
				Path:        fmt.Sprintf("receipts[%d].id", i),
				ActualValue: "",
			})
		}
		if n := seen[r.ID]; n > 0 {
			orig := r.ID
			for seen[r.ID] > 0 {
				n++
				r.ID = fmt.Sprintf("%s#%d", orig, n)
			}
			report.AddWarning(validation.Result{
				Level:       validation.LevelData,
				Code:        validation.CodeMissingID,
				Message:     fmt.Sprintf("duplicate receipt id %q at index %d; renamed to %s", orig, i, r.ID),
				Path:        fmt.Sprintf("receipts[%d].id", i),
				ActualValue: orig,
			})
			seen[orig] = n
		}
		seen[r.ID] = 1
		if err := r.Price.Err(); err != nil {
			report.AddWarning(validation.Result{
				Level:    validation.LevelData,
				Code:     validation.CodeMalformedPrice,
				Message:  fmt.Sprintf("receipt %s: %v; sized as price 1", r.ID, err),
				Path:     fmt.Sprintf("receipts[%d].price", i),
				Expected: "number > 0",
			})
		}
		if reg := cfg.RegionByName(r.Region); reg != nil && reg.CityByName(r.City) == nil {
			report.AddInfo(validation.Result{
				Level:       validation.LevelData,
				Code:        validation.CodeUnknownCity,
				Message:     fmt.Sprintf("receipt %s: city %q is not configured in %s; placed anywhere in the region", r.ID, r.City, r.Region),
				Path:        fmt.Sprintf("receipts[%d].city", i),
				ActualValue: r.City,
			})
		}
		out[i] = r
	}
	return out, report
}
