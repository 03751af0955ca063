package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wallapop-poller/config"
	"wallapop-poller/models"
	"wallapop-poller/utils"
)

// BulkPublisher indexes enriched listings into Elasticsearch through the
// _bulk endpoint: one action line plus one document line per listing,
// newline-delimited JSON. The document id is the listing id, so re-indexing
// the same listing overwrites instead of duplicating.
type BulkPublisher struct {
	baseURL string
	index   string
	client  *http.Client
	logger  *utils.Logger
	retry   *utils.RetryConfig
}

// NewBulkPublisher creates a publisher for the configured index.
func NewBulkPublisher(cfg *config.Config, logger *utils.Logger) *BulkPublisher {
	return &BulkPublisher{
		baseURL: cfg.ElasticURL,
		index:   cfg.ElasticIndex,
		client: &http.Client{
			Timeout: time.Duration(cfg.PublishTimeoutSec) * time.Second,
		},
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: 2,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Publish sends all listings in a single bulk request. Failures are returned
// for the caller to report; local persistence has already happened by then,
// so the caller treats this as best-effort.
func (p *BulkPublisher) Publish(listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	payload, err := p.bulkBody(listings)
	if err != nil {
		return err
	}

	return p.retry.Do("bulk-publish", func() error {
		resp, err := p.client.Post(p.baseURL+"/_bulk", "application/x-ndjson", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("elastic: post bulk: %w", err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("elastic: bulk returned %s", resp.Status)
		}

		p.logger.Info("[elastic] Indexed %d documents into %q", len(listings), p.index)
		return nil
	})
}

func (p *BulkPublisher) bulkBody(listings []models.Listing) ([]byte, error) {
	var buf bytes.Buffer
	for _, l := range listings {
		action, err := json.Marshal(map[string]any{
			"index": map[string]any{"_index": p.index, "_id": l.ID()},
		})
		if err != nil {
			return nil, fmt.Errorf("elastic: marshal action: %w", err)
		}
		doc, err := json.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("elastic: marshal document %s: %w", l.ID(), err)
		}
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
