package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"wallapop-poller/models"
	"wallapop-poller/utils"
)

// PostgresWriter mirrors a flat projection of each enriched listing into
// PostgreSQL for ad-hoc SQL queries. It is an optional sink; the daily
// dataset file stays the source of truth.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		return nil, err
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS enriched_listings (
			id                   SERIAL PRIMARY KEY,
			listing_id           TEXT         UNIQUE NOT NULL,
			title                TEXT         NOT NULL DEFAULT '',
			price                NUMERIC(12,2),
			seller_id            TEXT         NOT NULL DEFAULT '',
			risk_score           INT          NOT NULL DEFAULT 0,
			relative_price_index NUMERIC(8,2) NOT NULL DEFAULT 1,
			crawl_timestamp      TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			document             JSONB        NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_enriched_risk   ON enriched_listings(risk_score);
		CREATE INDEX IF NOT EXISTS idx_enriched_seller ON enriched_listings(seller_id);
		CREATE INDEX IF NOT EXISTS idx_enriched_crawl  ON enriched_listings(crawl_timestamp);
	`)
	return err
}

// Write batch-inserts the enriched listings. Listings already mirrored keep
// their first row (the dataset file has the same last-write semantics per
// day via the identity ledger).
func (pw *PostgresWriter) Write(listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []models.Listing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*8)

	for idx, l := range batch {
		doc, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("postgres: marshal document %s: %w", l.ID(), err)
		}

		var price sql.NullFloat64
		if amount, ok := l.Price(); ok {
			price = sql.NullFloat64{Float64: amount, Valid: true}
		}

		enr, _ := l.Enrichment()
		ts, _ := l["crawl_timestamp"].(string)
		if ts == "" {
			ts = time.Now().UTC().Format(time.RFC3339)
		}

		base := idx * 8
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		valueArgs = append(valueArgs,
			l.ID(), l.Title(), price, l.SellerID(),
			enr.RiskScore, enr.RelativePriceIndex, ts, doc)
	}

	query := fmt.Sprintf(`
		INSERT INTO enriched_listings
			(listing_id, title, price, seller_id, risk_score, relative_price_index, crawl_timestamp, document)
		VALUES %s
		ON CONFLICT (listing_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// Close closes the database connection.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
