package storage

import (
	"github.com/gridcrawl/gridcrawl/internal/types"
)

// Sink persists a scraped record sequence. Sinks are pure persistence:
// no transformation, field order preserved.
type Sink interface {
	// Write persists the batch.
	Write(records []*types.ProductRecord) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the sink identifier.
	Name() string
}
