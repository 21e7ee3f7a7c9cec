package storage

import (
	"context"
	"fmt"

	"realestate-pipeline/models"
)

// Store is the persistence contract the pipeline depends on. Both the
// PostgreSQL store and the in-memory store satisfy it.
type Store interface {
	// Save upserts one listing inside a single transaction. If a listing
	// with the same URL exists and its price differs, the old price is
	// appended to the price history before the update.
	Save(ctx context.Context, listing *models.Listing) (models.SaveOutcome, error)

	// FindByURL returns the listing with the given URL, or nil if absent.
	FindByURL(ctx context.Context, url string) (*models.Listing, error)

	// ListByCity returns all listings whose city matches exactly, in
	// insertion order. Used as the blocking key for duplicate detection.
	ListByCity(ctx context.Context, city string) ([]*models.Listing, error)

	// History returns a listing's price history ordered by recording time.
	History(ctx context.Context, listingID int64) ([]*models.PriceHistoryEntry, error)

	// PriceDrops returns listings currently priced below their most
	// recent historical price.
	PriceDrops(ctx context.Context) ([]*models.PriceDrop, error)

	Close() error
}

// StoreError wraps any persistence-layer failure so callers can treat
// connectivity loss and constraint violations uniformly.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
