package wallapop

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wallapop-poller/config"
	"wallapop-poller/models"
	"wallapop-poller/utils"
)

// apiHost is sent as the Host header on every request, regardless of the
// configured endpoint, so a proxy in front of the API still routes it.
const apiHost = "api.wallapop.com"

// Query is one search to paginate: free-text keywords plus the marketplace
// category identifier.
type Query struct {
	Keywords   string
	CategoryID string
}

// Client drives the Wallapop search API. No location parameters are sent on
// purpose, so a query covers the whole territory instead of a radius.
type Client struct {
	cfg    *config.Config
	logger *utils.Logger
	http   *http.Client
}

// searchResponse mirrors only the path down to the item list; each item is
// kept as a raw map so unknown marketplace fields survive untouched.
type searchResponse struct {
	Data struct {
		Section struct {
			Payload struct {
				Items []models.Listing `json:"items"`
			} `json:"payload"`
		} `json:"section"`
	} `json:"data"`
}

// New creates a ready-to-use search client.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
		http: &http.Client{
			Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second,
		},
	}
}

// FetchAll paginates a query until exhaustion and returns everything it
// gathered. A failed page ends the query early with whatever was accumulated;
// it never retries and never returns an error. Between full pages it sleeps
// the configured delay to bound the request rate.
func (c *Client) FetchAll(q Query) models.FetchResult {
	var all []models.Listing
	offset := 0
	pages := 0

	for {
		items, err := c.fetchPage(q, offset)
		if err != nil {
			c.logger.Warn("[wallapop] Page at offset %d failed: %v — keeping %d items gathered so far",
				offset, err, len(all))
			return models.FetchResult{Items: all, Pages: pages, Reason: models.ReasonFetchError}
		}
		pages++

		if len(items) == 0 {
			return models.FetchResult{Items: all, Pages: pages, Reason: models.ReasonExhausted}
		}

		all = append(all, items...)
		c.logger.Debug("[wallapop] Page %d (offset %d) — %d items, %d total",
			pages, offset, len(items), len(all))

		if len(items) < c.cfg.PageSize {
			return models.FetchResult{Items: all, Pages: pages, Reason: models.ReasonLastPage}
		}

		offset += c.cfg.PageSize
		time.Sleep(time.Duration(c.cfg.PageDelayMs) * time.Millisecond)
	}
}

// fetchPage requests a single page of same-day results, newest first.
func (c *Client) fetchPage(q Query, offset int) ([]models.Listing, error) {
	params := url.Values{}
	params.Set("source", "search_box")
	params.Set("keywords", q.Keywords)
	params.Set("category_id", q.CategoryID)
	params.Set("time_filter", "today")
	params.Set("order_by", "newest")
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(c.cfg.PageSize))

	req, err := http.NewRequest(http.MethodGet, c.cfg.WallapopURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Host = apiHost
	req.Header.Set("X-DeviceOS", "0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	return body.Data.Section.Payload.Items, nil
}
