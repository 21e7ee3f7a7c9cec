package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"realestate-pipeline/models"
)

func price(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func testListing(url string, p float64) *models.Listing {
	return &models.Listing{
		Address:       "999 History Lane",
		City:          "Test City",
		State:         "TX",
		Price:         price(p),
		Bedrooms:      3,
		Bathrooms:     2,
		SquareFeet:    2000,
		ListingStatus: models.StatusActive,
		URL:           url,
		ScrapedAt:     time.Now().UTC(),
	}
}

func TestSaveCreatesNewListing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	outcome, err := store.Save(ctx, testListing("http://test.com/1", 500000))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if outcome != models.OutcomeCreated {
		t.Errorf("expected created, got %s", outcome)
	}

	got, err := store.FindByURL(ctx, "http://test.com/1")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got == nil {
		t.Fatal("listing not found after save")
	}
	if got.Price.Float64 != 500000 {
		t.Errorf("stored price = %v; want 500000", got.Price.Float64)
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	url := "http://test.com/idempotent"

	if _, err := store.Save(ctx, testListing(url, 500000)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	outcome, err := store.Save(ctx, testListing(url, 500000))
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if outcome != models.OutcomeUnchanged {
		t.Errorf("identical save should be unchanged, got %s", outcome)
	}

	got, _ := store.FindByURL(ctx, url)
	history, _ := store.History(ctx, got.ID)
	if len(history) != 0 {
		t.Errorf("identical saves must not create history, got %d entries", len(history))
	}
}

func TestSaveRecordsPriceHistory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	url := "http://test-history.com/house1"

	if _, err := store.Save(ctx, testListing(url, 500000)); err != nil {
		t.Fatalf("first save: %v", err)
	}

	outcome, err := store.Save(ctx, testListing(url, 450000))
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if outcome != models.OutcomePriceChanged {
		t.Errorf("expected price_changed, got %s", outcome)
	}

	got, _ := store.FindByURL(ctx, url)
	if got.Price.Float64 != 450000 {
		t.Errorf("current price = %v; want 450000", got.Price.Float64)
	}

	history, _ := store.History(ctx, got.ID)
	if len(history) != 1 {
		t.Fatalf("expected exactly 1 history entry, got %d", len(history))
	}
	if history[0].Price != 500000 {
		t.Errorf("history must hold the OLD price 500000, got %v", history[0].Price)
	}
}

func TestSaveUpdatesStatusWithoutHistory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	url := "http://test.com/status"

	if _, err := store.Save(ctx, testListing(url, 300000)); err != nil {
		t.Fatalf("first save: %v", err)
	}

	update := testListing(url, 300000)
	update.ListingStatus = models.StatusPending
	outcome, err := store.Save(ctx, update)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if outcome != models.OutcomeUnchanged {
		t.Errorf("expected unchanged, got %s", outcome)
	}

	got, _ := store.FindByURL(ctx, url)
	if got.ListingStatus != models.StatusPending {
		t.Errorf("status not updated, got %q", got.ListingStatus)
	}
	history, _ := store.History(ctx, got.ID)
	if len(history) != 0 {
		t.Errorf("status-only update must not create history, got %d entries", len(history))
	}
}

func TestHistoryOrderReflectsChangeOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	url := "http://test.com/order"

	for _, p := range []float64{500000, 480000, 450000} {
		if _, err := store.Save(ctx, testListing(url, p)); err != nil {
			t.Fatalf("save at %v: %v", p, err)
		}
	}

	got, _ := store.FindByURL(ctx, url)
	history, _ := store.History(ctx, got.ID)
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].Price != 500000 || history[1].Price != 480000 {
		t.Errorf("history order wrong: got %v then %v", history[0].Price, history[1].Price)
	}
}

func TestPriceDrops(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	dropped := testListing("http://test.com/drop", 500000)
	if _, err := store.Save(ctx, dropped); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, testListing("http://test.com/drop", 450000)); err != nil {
		t.Fatal(err)
	}

	raised := testListing("http://test.com/raise", 200000)
	raised.Address = "1 Up St"
	if _, err := store.Save(ctx, raised); err != nil {
		t.Fatal(err)
	}
	up := testListing("http://test.com/raise", 250000)
	up.Address = "1 Up St"
	if _, err := store.Save(ctx, up); err != nil {
		t.Fatal(err)
	}

	drops, err := store.PriceDrops(ctx)
	if err != nil {
		t.Fatalf("price drops: %v", err)
	}
	if len(drops) != 1 {
		t.Fatalf("expected 1 price drop, got %d", len(drops))
	}
	if drops[0].Address != "999 History Lane" || drops[0].DropAmount != 50000 {
		t.Errorf("unexpected drop: %+v", drops[0])
	}
}

func TestFindByURLMissing(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.FindByURL(context.Background(), "http://nowhere.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing URL, got %+v", got)
	}
}

func TestListByCityScoping(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	a := testListing("http://test.com/a", 100000)
	a.City = "Austin"
	b := testListing("http://test.com/b", 200000)
	b.City = "Dallas"
	c := testListing("http://test.com/c", 300000)
	c.City = "Austin"

	for _, l := range []*models.Listing{a, b, c} {
		if _, err := store.Save(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	austin, err := store.ListByCity(ctx, "Austin")
	if err != nil {
		t.Fatal(err)
	}
	if len(austin) != 2 {
		t.Fatalf("expected 2 Austin listings, got %d", len(austin))
	}
	if austin[0].URL != "http://test.com/a" {
		t.Errorf("insertion order not preserved: first is %s", austin[0].URL)
	}
}
