package models

// TerminationReason records why acquisition stopped paginating a query.
type TerminationReason string

const (
	// ReasonExhausted means a page came back empty.
	ReasonExhausted TerminationReason = "exhausted"
	// ReasonLastPage means a page came back shorter than the page size.
	ReasonLastPage TerminationReason = "last_page"
	// ReasonFetchError means a request failed; the items gathered before the
	// failure are still returned. Partial success is success.
	ReasonFetchError TerminationReason = "fetch_error"
)

// FetchResult is the outcome of paginating one search query to completion
// or to the first failure.
type FetchResult struct {
	Items  []Listing
	Pages  int
	Reason TerminationReason
}

// Enrichment is the derived-signal payload attached to every listing that
// passes the filters.
type Enrichment struct {
	SuspiciousKeywords      []string `json:"suspicious_keywords"`
	SuspiciousKeywordsCount int      `json:"suspicious_keywords_count"`
	RiskScore               int      `json:"risk_score"`
	RelativePriceIndex      float64  `json:"relative_price_index"`
	SellerItemsToday        int      `json:"seller_items_today"`
	DescriptionLength       int      `json:"description_length"`
	HasImages               bool     `json:"has_images"`
	ImageCount              int      `json:"image_count"`
}

// RunReport holds the per-stage counts for the end-of-run summary.
type RunReport struct {
	Acquired        int
	BatchDuplicates int
	ApparelRemoved  int
	AlreadyKnown    int
	NewListings     int
	MeanPrice       float64
	TopRisk         []Listing
	Published       bool
}
