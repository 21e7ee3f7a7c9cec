package storage

import (
	"context"
	"sync"
	"time"

	"realestate-pipeline/models"
)

// MemoryStore is an in-process Store used in offline mode and in tests.
// It applies exactly the same upsert-with-history semantics as the
// PostgreSQL store.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	byURL    map[string]*models.Listing
	byOrder  []*models.Listing
	history  map[int64][]*models.PriceHistoryEntry
	historyN int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:  1,
		byURL:   make(map[string]*models.Listing),
		history: make(map[int64][]*models.PriceHistoryEntry),
	}
}

func copyListing(l *models.Listing) *models.Listing {
	c := *l
	return &c
}

// Save upserts a listing, appending the old price to history when the
// price changed. The stored state is only mutated once the whole unit of
// work is known to succeed, mirroring the transactional store.
func (m *MemoryStore) Save(ctx context.Context, l *models.Listing) (models.SaveOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byURL[l.URL]
	if !ok {
		stored := copyListing(l)
		stored.ID = m.nextID
		m.nextID++
		if stored.UpdatedAt.IsZero() {
			stored.UpdatedAt = stored.ScrapedAt
		}
		m.byURL[stored.URL] = stored
		m.byOrder = append(m.byOrder, stored)
		l.ID = stored.ID
		return models.OutcomeCreated, nil
	}

	l.ID = existing.ID

	if !nullFloatEqual(existing.Price, l.Price) {
		now := time.Now().UTC()
		m.historyN++
		m.history[existing.ID] = append(m.history[existing.ID], &models.PriceHistoryEntry{
			ID:         m.historyN,
			ListingID:  existing.ID,
			Price:      existing.Price.Float64,
			RecordedAt: now,
		})
		existing.Price = l.Price
		existing.ListingStatus = l.ListingStatus
		existing.UpdatedAt = now
		return models.OutcomePriceChanged, nil
	}

	existing.ListingStatus = l.ListingStatus
	return models.OutcomeUnchanged, nil
}

// FindByURL returns the listing with the given URL, or nil if absent.
func (m *MemoryStore) FindByURL(ctx context.Context, url string) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.byURL[url]
	if !ok {
		return nil, nil
	}
	return copyListing(l), nil
}

// ListByCity returns listings in the given city in insertion order.
func (m *MemoryStore) ListByCity(ctx context.Context, city string) ([]*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Listing
	for _, l := range m.byOrder {
		if l.City == city {
			out = append(out, copyListing(l))
		}
	}
	return out, nil
}

// History returns a listing's price history, oldest first.
func (m *MemoryStore) History(ctx context.Context, listingID int64) ([]*models.PriceHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.history[listingID]
	out := make([]*models.PriceHistoryEntry, len(entries))
	for i, e := range entries {
		c := *e
		out[i] = &c
	}
	return out, nil
}

// PriceDrops returns listings currently cheaper than their most recent
// historical price.
func (m *MemoryStore) PriceDrops(ctx context.Context) ([]*models.PriceDrop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var drops []*models.PriceDrop
	for _, l := range m.byOrder {
		entries := m.history[l.ID]
		if len(entries) == 0 || !l.Price.Valid {
			continue
		}
		last := entries[len(entries)-1]
		if l.Price.Float64 < last.Price {
			drops = append(drops, &models.PriceDrop{
				Address:      l.Address,
				CurrentPrice: l.Price.Float64,
				OldPrice:     last.Price,
				DropAmount:   last.Price - l.Price.Float64,
			})
		}
	}
	return drops, nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
