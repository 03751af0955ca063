package services

import (
	"strings"
	"time"
	"unicode/utf8"

	"wallapop-poller/keywords"
	"wallapop-poller/models"
	"wallapop-poller/utils"
)

// Enricher computes the derived risk and pricing signals for one cohort:
// the full set of new, filtered listings from a single run. Price and seller
// statistics are relative to that cohort only, never to historical data.
type Enricher struct {
	logger *utils.Logger
}

// NewEnricher creates an Enricher with the given logger.
func NewEnricher(logger *utils.Logger) *Enricher {
	return &Enricher{logger: logger}
}

// Enrich returns one annotated clone per input listing, same order. Inputs
// are never mutated.
func (e *Enricher) Enrich(cohort []models.Listing) []models.Listing {
	mean, priced := cohortMeanPrice(cohort)
	sellerCounts := countBySeller(cohort)

	enriched := make([]models.Listing, 0, len(cohort))
	for _, item := range cohort {
		enriched = append(enriched, e.enrichOne(item, mean, priced, sellerCounts))
	}

	e.logger.Info("[enrich] Enriched %d listings (cohort mean price %.2f over %d priced)",
		len(enriched), mean, priced)
	return enriched
}

func (e *Enricher) enrichOne(item models.Listing, mean float64, priced int, sellerCounts map[string]int) models.Listing {
	out := item.Clone()

	// Geopoint for the index's geo mapping; source location stays as
	// received when either coordinate is missing.
	if lat, lon, ok := item.Coordinates(); ok {
		loc, isMap := out["location"].(map[string]any)
		if !isMap {
			loc = make(map[string]any, 1)
			out["location"] = loc
		}
		loc["geopoint"] = map[string]any{"lat": lat, "lon": lon}
	}

	out["crawl_timestamp"] = time.Now().UTC().Format(time.RFC3339)

	price, hasPrice := positivePrice(item)
	rpi := relativePriceIndex(price, hasPrice, mean, priced)
	out["relative_price_index"] = rpi

	text := item.SearchText()
	found, categories := keywords.DetectRisk(text)
	sellerCount := sellerCounts[item.SellerID()]

	score := riskScore(item, mean, priced > 0, sellerCount, categories, strings.ToLower(text))

	unique := uniqueTerms(found)
	description := item.Description()
	out["enrichment"] = models.Enrichment{
		SuspiciousKeywords:      unique,
		SuspiciousKeywordsCount: len(unique),
		RiskScore:               score,
		RelativePriceIndex:      rpi,
		SellerItemsToday:        sellerCount,
		DescriptionLength:       utf8.RuneCountInString(description),
		HasImages:               item.ImageCount() > 0,
		ImageCount:              item.ImageCount(),
	}

	return out
}

// cohortMeanPrice averages the strictly positive prices in the cohort and
// returns how many listings contributed.
func cohortMeanPrice(cohort []models.Listing) (float64, int) {
	var total float64
	var count int
	for _, item := range cohort {
		if price, ok := positivePrice(item); ok {
			total += price
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return total / float64(count), count
}

func countBySeller(cohort []models.Listing) map[string]int {
	counts := make(map[string]int)
	for _, item := range cohort {
		if seller := item.SellerID(); seller != "" {
			counts[seller]++
		}
	}
	return counts
}

// positivePrice treats missing, zero and negative prices alike: the listing
// has no usable price. It still gets enriched with the default index.
func positivePrice(item models.Listing) (float64, bool) {
	price, ok := item.Price()
	if !ok || price <= 0 {
		return 0, false
	}
	return price, true
}

func relativePriceIndex(price float64, hasPrice bool, mean float64, priced int) float64 {
	if !hasPrice || priced == 0 || mean == 0 {
		return 1.0
	}
	return round2(price / mean)
}

// riskScore accumulates the additive heuristics and clamps at 100. The two
// price-deviation tiers are mutually exclusive; everything else stacks.
func riskScore(item models.Listing, mean float64, cohortPriced bool, sellerCount int, categories map[keywords.Category]bool, textLower string) int {
	score := 0

	if categories[keywords.CriticalLegal] ||
		categories[keywords.CriticalIntegrity] ||
		categories[keywords.CriticalFraud] {
		score += 30
	}

	if categories[keywords.GeneralUrgency] || categories[keywords.GeneralPriceBased] {
		score += 15
	}

	if cohortPriced {
		if price, ok := positivePrice(item); ok {
			switch {
			case price < mean*0.4:
				score += 40
			case price < mean*0.6:
				score += 20
			}

			if price < mean*0.7 && keywords.HasConditionClaim(textLower) {
				score += 20
			}
		}
	}

	if d := item.Description(); d != "" && utf8.RuneCountInString(d) < 50 {
		score += 10
	}

	if sellerCount > 3 {
		score += 20
	}

	if item.ImageCount() == 0 {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	unique := make([]string, 0, len(terms))
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		unique = append(unique, term)
	}
	return unique
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
