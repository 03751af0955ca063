package main

import (
	"os"
	"strings"
	"time"

	"wallapop-poller/config"
	"wallapop-poller/models"
	"wallapop-poller/scraper/wallapop"
	"wallapop-poller/services"
	"wallapop-poller/storage"
	"wallapop-poller/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Wallapop motorcycle poller starting ===")
	logger.Info("Config — endpoint: %s | page size: %d | delay: %dms | index: %s",
		cfg.WallapopURL, cfg.PageSize, cfg.PageDelayMs, cfg.ElasticIndex)

	datasetPath := storage.DailyFilename(cfg.DataDir, time.Now())
	ledger := storage.LoadExistingIDs(datasetPath, logger)
	logger.Info("Identity ledger: %d ids already persisted for today", ledger.Size())

	// One query per configured keyword, all against the motorbike category.
	// No coordinates are sent, so the search covers the whole territory.
	client := wallapop.New(cfg, logger)
	var acquired []models.Listing
	for _, kw := range strings.Split(cfg.SearchKeywords, ",") {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		query := wallapop.Query{Keywords: kw, CategoryID: cfg.SearchCategoryID}
		logger.Info("Searching %q (category %s)", query.Keywords, query.CategoryID)

		result := client.FetchAll(query)
		logger.Info(" → %d items over %d pages (%s)", len(result.Items), result.Pages, result.Reason)
		acquired = append(acquired, result.Items...)
	}

	deduper := services.NewDeduper(logger)
	unique, batchDupes := deduper.DedupeBatch(acquired)

	apparelFilter := services.NewApparelFilter(logger)
	vehicles, apparelRemoved := apparelFilter.Filter(unique)

	fresh, alreadyKnown := deduper.FilterKnown(vehicles, ledger)

	enricher := services.NewEnricher(logger)
	enriched := enricher.Enrich(fresh)

	summary := services.NewSummaryService(logger)
	report := summary.Build(len(acquired), batchDupes, apparelRemoved, alreadyKnown, enriched)

	if len(enriched) == 0 {
		logger.Info("No new listings to persist.")
		summary.Print(report)
		return
	}

	writer, err := storage.NewDailyWriter(datasetPath)
	if err != nil {
		logger.Error("Failed to open dataset file: %v", err)
		os.Exit(1)
	}
	defer writer.Close()

	if err := writer.Append(enriched); err != nil {
		logger.Error("Dataset write failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Appended %d listings to %s", len(enriched), datasetPath)

	publisher := storage.NewBulkPublisher(cfg, logger)
	if err := publisher.Publish(enriched); err != nil {
		logger.Warn("Bulk publish failed (local dataset already saved): %v", err)
	} else {
		report.Published = true
	}

	if cfg.PostgresEnabled {
		mirrorToPostgres(cfg, logger, enriched)
	}

	summary.Print(report)
}

// mirrorToPostgres is best-effort: the dataset file and index publish define
// run success, the SQL mirror never does.
func mirrorToPostgres(cfg *config.Config, logger *utils.Logger, enriched []models.Listing) {
	pg, err := storage.NewPostgresWriter(cfg.DSN(), logger)
	if err != nil {
		logger.Warn("PostgreSQL mirror unavailable: %v", err)
		return
	}
	defer pg.Close()

	if err := pg.Write(enriched); err != nil {
		logger.Warn("PostgreSQL mirror write failed: %v", err)
		return
	}
	logger.Info("Mirrored %d listings to PostgreSQL (table: enriched_listings)", len(enriched))
}
