package ports

import (
	"context"

	"github.com/taskmaster/taskstore/internal/domain/entities"
)

// WriteResult reports the outcome of a successful store write.
type WriteResult struct {
	// Changed is false when the candidate matched the stored document and
	// nothing was written.
	Changed bool `json:"changed"`
}

// StoreRepository defines the interface for store persistence
type StoreRepository interface {
	// Load never fails: unreadable or unparseable data yields the default
	// store.
	Load(ctx context.Context) *entities.Store
	// Write coerces candidate and persists it when it differs from the
	// stored document. Returns entities.ErrInvalidInput for non-object
	// candidates and wraps entities.ErrStoreWrite on I/O failure.
	Write(ctx context.Context, candidate any) (WriteResult, error)
	// Update applies mutate to the freshly loaded store, serialized with
	// every other write, and persists the result if it changed.
	Update(ctx context.Context, mutate func(*entities.Store) error) (WriteResult, error)
}
