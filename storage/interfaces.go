package storage

import "wallapop-poller/models"

// EnrichedWriter is the interface any local persistence backend must satisfy.
type EnrichedWriter interface {
	Append(listings []models.Listing) error
	Close() error
}

// Publisher pushes enriched listings to an external index.
type Publisher interface {
	Publish(listings []models.Listing) error
}
