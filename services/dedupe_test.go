package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"realestate-pipeline/models"
	"realestate-pipeline/storage"
)

func seedListing(t *testing.T, store storage.Store, address, city, url string) {
	t.Helper()
	_, err := store.Save(context.Background(), &models.Listing{
		Address:       address,
		City:          city,
		State:         "TX",
		Price:         sql.NullFloat64{Float64: 100000, Valid: true},
		ListingStatus: models.StatusActive,
		URL:           url,
		ScrapedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed %q: %v", address, err)
	}
}

func TestFindDuplicateFuzzyMatch(t *testing.T) {
	store := storage.NewMemoryStore()
	seedListing(t, store, "1234 Main Street", "Austin", "http://test.com/1")

	matcher := NewDuplicateMatcher(store, 85, newTestLogger())

	match, err := matcher.FindDuplicate(context.Background(), "1234 Main St.", "Austin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil {
		t.Fatal("expected '1234 Main St.' to match '1234 Main Street'")
	}
	if match.Address != "1234 Main Street" {
		t.Errorf("matched wrong listing: %q", match.Address)
	}
}

func TestFindDuplicateDistinctAddress(t *testing.T) {
	store := storage.NewMemoryStore()
	seedListing(t, store, "1234 Main Street", "Austin", "http://test.com/1")

	matcher := NewDuplicateMatcher(store, 85, newTestLogger())

	match, err := matcher.FindDuplicate(context.Background(), "5678 Oak Avenue", "Austin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Errorf("'5678 Oak Avenue' must not match, got %q", match.Address)
	}
}

func TestFindDuplicateCityScoping(t *testing.T) {
	store := storage.NewMemoryStore()
	seedListing(t, store, "1234 Main Street", "Dallas", "http://test.com/1")

	matcher := NewDuplicateMatcher(store, 85, newTestLogger())

	// Identical address, different city: never a duplicate.
	match, err := matcher.FindDuplicate(context.Background(), "1234 Main Street", "Austin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Errorf("cross-city match must never happen, got %q in %q", match.Address, match.City)
	}
}

func TestFindDuplicateTieKeepsFirst(t *testing.T) {
	store := storage.NewMemoryStore()
	seedListing(t, store, "42 Elm St", "Austin", "http://test.com/first")
	seedListing(t, store, "42 Elm St", "Austin2", "http://test.com/other-city")
	seedListing(t, store, "42 Elm St", "Austin", "http://test.com/second")

	matcher := NewDuplicateMatcher(store, 85, newTestLogger())

	match, err := matcher.FindDuplicate(context.Background(), "42 Elm St", "Austin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.URL != "http://test.com/first" {
		t.Errorf("tie must keep the first candidate in store order, got %s", match.URL)
	}
}

func TestFindDuplicateEmptyCity(t *testing.T) {
	store := storage.NewMemoryStore()
	matcher := NewDuplicateMatcher(store, 85, newTestLogger())

	match, err := matcher.FindDuplicate(context.Background(), "1 Nowhere Ln", "Ghost Town")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Error("no candidates should mean no match")
	}
}

func TestThresholdFallback(t *testing.T) {
	store := storage.NewMemoryStore()
	for _, bad := range []int{0, -5, 101} {
		m := NewDuplicateMatcher(store, bad, newTestLogger())
		if m.threshold != DefaultDedupeThreshold {
			t.Errorf("threshold %d should fall back to %d, got %d",
				bad, DefaultDedupeThreshold, m.threshold)
		}
	}
}
