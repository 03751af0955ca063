package services

import (
	"wallapop-poller/keywords"
	"wallapop-poller/models"
	"wallapop-poller/utils"
)

// ApparelFilter drops listings that are riding gear or accessories instead
// of vehicles.
type ApparelFilter struct {
	logger *utils.Logger
}

// NewApparelFilter creates an ApparelFilter with the given logger.
func NewApparelFilter(logger *utils.Logger) *ApparelFilter {
	return &ApparelFilter{logger: logger}
}

// Filter removes every listing whose title or description matches an apparel
// term. Order is preserved.
func (f *ApparelFilter) Filter(items []models.Listing) ([]models.Listing, int) {
	kept := make([]models.Listing, 0, len(items))
	removed := 0

	for _, item := range items {
		if keywords.IsApparel(item.Title(), item.Description()) {
			f.logger.Debug("[apparel] Dropping %q", item.Title())
			removed++
			continue
		}
		kept = append(kept, item)
	}

	f.logger.Info("[apparel] Removed %d gear/accessory listings, %d vehicles kept",
		removed, len(kept))
	return kept, removed
}
