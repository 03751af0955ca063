package models

import (
	"strconv"
)

// Listing is a single marketplace item exactly as the search API returned it.
// It is map-backed rather than a fixed struct because the pipeline must carry
// every field the marketplace sends through to the dataset and the index
// unmodified, including fields we never look at.
type Listing map[string]any

// ID returns the listing identifier as a string, or "" when absent.
// Wallapop has shipped ids both as JSON strings and as numbers, so both
// decode to the same key here.
func (l Listing) ID() string {
	switch v := l["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Title returns the listing title, or "" when absent.
func (l Listing) Title() string {
	return l.stringField("title")
}

// Description returns the listing description, or "" when absent.
func (l Listing) Description() string {
	return l.stringField("description")
}

// SellerID returns the seller identifier, or "" when absent.
func (l Listing) SellerID() string {
	return l.stringField("user_id")
}

// Price returns the listing price amount. ok is false when the listing has
// no price object or no numeric amount.
func (l Listing) Price() (float64, bool) {
	price, isMap := l["price"].(map[string]any)
	if !isMap {
		return 0, false
	}
	amount, isNum := price["amount"].(float64)
	return amount, isNum
}

// Coordinates returns the listing's latitude/longitude. ok is false unless
// both values are present.
func (l Listing) Coordinates() (lat, lon float64, ok bool) {
	loc, isMap := l["location"].(map[string]any)
	if !isMap {
		return 0, 0, false
	}
	lat, latOK := loc["latitude"].(float64)
	lon, lonOK := loc["longitude"].(float64)
	return lat, lon, latOK && lonOK
}

// ImageCount returns the number of image references on the listing.
func (l Listing) ImageCount() int {
	images, isSlice := l["images"].([]any)
	if !isSlice {
		return 0
	}
	return len(images)
}

// SearchText returns the text the keyword classifiers run against:
// title and description joined by a space.
func (l Listing) SearchText() string {
	return l.Title() + " " + l.Description()
}

// Enrichment returns the typed enrichment payload attached by the enricher.
// ok is false on listings that have not been enriched in this process.
func (l Listing) Enrichment() (Enrichment, bool) {
	e, ok := l["enrichment"].(Enrichment)
	return e, ok
}

// Clone returns a copy of the listing safe to annotate. The top-level map
// and the location sub-map (the only one the pipeline writes into) are
// copied; everything else is shared with the original.
func (l Listing) Clone() Listing {
	out := make(Listing, len(l)+4)
	for k, v := range l {
		out[k] = v
	}
	if loc, isMap := l["location"].(map[string]any); isMap {
		locCopy := make(map[string]any, len(loc)+1)
		for k, v := range loc {
			locCopy[k] = v
		}
		out["location"] = locCopy
	}
	return out
}

func (l Listing) stringField(key string) string {
	s, _ := l[key].(string)
	return s
}
