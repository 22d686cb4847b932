package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/audth517/Japan-Receipt-Map/pkg/stats"
	"github.com/audth517/Japan-Receipt-Map/pkg/validation"
)

func printResult(r validation.Result, details bool) {
	fmt.Printf("  [%s] %s\n", r.Level, r.Message)
	if !details {
		return
	}
	if r.Path != "" {
		fmt.Printf("    -> %s = %v\n", r.Path, r.ActualValue)
	}
	if r.Expected != "" {
		fmt.Printf("    expected: %s\n", r.Expected)
	}
	if r.ConflictWith != "" {
		fmt.Printf("    conflicts with: %s\n", r.ConflictWith)
	}
	for _, s := range r.Suggestions {
		fmt.Printf("    * %s\n", s)
	}
}

// perCodeLimit caps how many findings with the same code are listed.
const perCodeLimit = 5

func printSection(title string, results []validation.Result, details bool) {
	if len(results) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", title, len(results))
	shown := map[string]int{}
	for _, res := range results {
		if res.Code != "" && shown[res.Code] >= perCodeLimit {
			shown[res.Code]++
			continue
		}
		shown[res.Code]++
		printResult(res, details)
	}
	codes := make([]string, 0, len(shown))
	for code := range shown {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if n := shown[code]; code != "" && n > perCodeLimit {
			fmt.Printf("  ... and %d more %s\n", n-perCodeLimit, code)
		}
	}
	fmt.Println()
}

func printValidationReport(r *validation.Report) {
	printSection("ERRORS", r.Errors, true)
	printSection("WARNINGS", r.Warnings, true)
	printSection("INFO", r.Info, false)

	if counts := r.Counts(); len(counts) > 0 {
		codes := make([]string, 0, len(counts))
		for code := range counts {
			if code != "" {
				codes = append(codes, code)
			}
		}
		sort.Strings(codes)
		if len(codes) > 0 {
			fmt.Println("By code:")
		}
		for _, code := range codes {
			fmt.Printf("  %-20s %d\n", code, counts[code])
		}
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printSummary(w io.Writer, s *stats.Summary) {
	fmt.Fprintln(w, "Receipt Summary")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Receipts:          %d\n", s.Receipts)
	fmt.Fprintf(w, "  Placed:            %d\n", s.Placed)
	fmt.Fprintf(w, "  Dropped:           %d\n", s.Dropped)
	fmt.Fprintf(w, "  Malformed prices:  %d\n", s.MalformedPrices)
	fmt.Fprintf(w, "  Total spend:       %s\n", stats.FormatYen(s.TotalSpend))
	fmt.Fprintf(w, "  Price range:       %s - %s\n", stats.FormatYen(s.MinPrice), stats.FormatYen(s.MaxPrice))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Region\tCity\tReceipts\tSpend\t")
	fmt.Fprintln(tw, "------\t----\t--------\t-----\t")
	for _, r := range s.Regions {
		fmt.Fprintf(tw, "%s\t\t%d\t%s\t\n", r.Name, r.Count, stats.FormatCompact(r.Spend))
		for _, c := range r.Cities {
			fmt.Fprintf(tw, "\t%s\t%d\t%s\t\n", c.Name, c.Count, stats.FormatCompact(c.Spend))
		}
	}
	tw.Flush()
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Category\tReceipts\tSpend\t")
	fmt.Fprintln(tw, "--------\t--------\t-----\t")
	for _, b := range s.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%s\t\n", b.Name, b.Count, stats.FormatCompact(b.Spend))
	}
	tw.Flush()
}
