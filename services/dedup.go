package services

import (
	"wallapop-poller/models"
	"wallapop-poller/utils"
)

// Deduper removes repeated listings, both inside one acquired batch and
// against the ids already persisted for the day.
type Deduper struct {
	logger *utils.Logger
}

// NewDeduper creates a Deduper with the given logger.
func NewDeduper(logger *utils.Logger) *Deduper {
	return &Deduper{logger: logger}
}

// DedupeBatch keeps the first occurrence of each listing id and counts the
// rest as removed. Listings without an id are always dropped. Order is
// preserved.
func (d *Deduper) DedupeBatch(items []models.Listing) ([]models.Listing, int) {
	seen := utils.NewIDSet()
	unique := make([]models.Listing, 0, len(items))
	removed := 0

	for _, item := range items {
		id := item.ID()
		if id == "" || !seen.Add(id) {
			removed++
			continue
		}
		unique = append(unique, item)
	}

	d.logger.Info("[dedup] Batch: %d → %d listings (%d duplicates removed)",
		len(items), len(unique), removed)
	return unique, removed
}

// FilterKnown drops listings whose id is already in the day's identity
// ledger. The ledger is read-only here. Order is preserved.
func (d *Deduper) FilterKnown(items []models.Listing, ledger *utils.IDSet) ([]models.Listing, int) {
	fresh := make([]models.Listing, 0, len(items))
	removed := 0

	for _, item := range items {
		if ledger.Contains(item.ID()) {
			removed++
			continue
		}
		fresh = append(fresh, item)
	}

	d.logger.Info("[dedup] Ledger: %d already persisted today, %d new", removed, len(fresh))
	return fresh, removed
}
