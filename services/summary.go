package services

import (
	"fmt"
	"sort"
	"strings"

	"wallapop-poller/models"
	"wallapop-poller/utils"
)

// SummaryService assembles and prints the end-of-run report.
type SummaryService struct {
	logger *utils.Logger
}

// NewSummaryService creates a SummaryService with the given logger.
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Build computes the run report from the stage counts and the enriched
// cohort.
func (s *SummaryService) Build(acquired, batchDupes, apparelRemoved, alreadyKnown int, enriched []models.Listing) *models.RunReport {
	report := &models.RunReport{
		Acquired:        acquired,
		BatchDuplicates: batchDupes,
		ApparelRemoved:  apparelRemoved,
		AlreadyKnown:    alreadyKnown,
		NewListings:     len(enriched),
	}

	var total float64
	var priced int
	for _, l := range enriched {
		if price, ok := l.Price(); ok && price > 0 {
			total += price
			priced++
		}
	}
	if priced > 0 {
		report.MeanPrice = round2(total / float64(priced))
	}

	risky := make([]models.Listing, 0, len(enriched))
	for _, l := range enriched {
		if e, ok := l.Enrichment(); ok && e.RiskScore > 0 {
			risky = append(risky, l)
		}
	}
	sort.SliceStable(risky, func(i, j int) bool {
		ei, _ := risky[i].Enrichment()
		ej, _ := risky[j].Enrichment()
		return ei.RiskScore > ej.RiskScore
	})
	if len(risky) > 5 {
		risky = risky[:5]
	}
	report.TopRisk = risky

	return report
}

// Print writes the human-readable run summary to stdout. Advisory only,
// nothing parses this.
func (s *SummaryService) Print(r *models.RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📡 WALLAPOP MOTORCYCLE RUN SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Pipeline\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Acquired from search     : \033[1m%d\033[0m\n", r.Acquired)
	fmt.Printf("  Batch duplicates removed : \033[1m%d\033[0m\n", r.BatchDuplicates)
	fmt.Printf("  Apparel/gear removed     : \033[1m%d\033[0m\n", r.ApparelRemoved)
	fmt.Printf("  Already persisted today  : \033[1m%d\033[0m\n", r.AlreadyKnown)
	fmt.Printf("  New listings this run    : \033[1;32m%d\033[0m\n", r.NewListings)
	fmt.Println()

	fmt.Printf("\033[1;33m  Cohort\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.MeanPrice > 0 {
		fmt.Printf("  Mean price : \033[1;32m%.2f €\033[0m\n", r.MeanPrice)
	} else {
		fmt.Printf("  No price data in cohort\n")
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Highest Risk Listings\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopRisk) == 0 {
		fmt.Printf("  No risk signals detected\n")
	} else {
		for i, l := range r.TopRisk {
			e, _ := l.Enrichment()
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;31m%3d\033[0m\n",
				i+1, truncate(l.Title(), 38), e.RiskScore)
		}
	}
	fmt.Println()

	if r.NewListings == 0 {
		fmt.Printf("  Run completed with zero new items.\n")
	} else if r.Published {
		fmt.Printf("  Run completed with %d new items persisted and published.\n", r.NewListings)
	} else {
		fmt.Printf("  Run completed with %d new items persisted.\n", r.NewListings)
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

// truncate shortens to max runes, not bytes, so accented titles never end
// on a partial rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
