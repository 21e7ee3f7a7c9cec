package models

import (
	"database/sql"
	"time"
)

// RawListing holds unprocessed data exactly as a source returned it.
// Every value-bearing field is a string because sources disagree on
// formatting — cleaning happens in services.Cleaner.
type RawListing struct {
	Address      string
	City         string
	State        string
	ZipCode      string
	Price        string
	Bedrooms     string
	Bathrooms    string
	SquareFeet   string
	PropertyType string
	URL          string
	SourceName   string
}

// Listing is the cleaned, geocoded record ready for PostgreSQL storage.
// Exactly one Listing exists per URL; the URL never changes after creation.
type Listing struct {
	ID            int64
	Address       string
	City          string
	State         string
	ZipCode       string
	Price         sql.NullFloat64
	Bedrooms      int
	Bathrooms     int
	SquareFeet    int
	PropertyType  string
	ListingStatus string
	SourceName    string
	Latitude      sql.NullFloat64
	Longitude     sql.NullFloat64
	ScrapedAt     time.Time
	UpdatedAt     time.Time
	URL           string
}

// PriceHistoryEntry records the price a listing had *before* a change was
// stored. Rows are append-only — never updated or deleted.
type PriceHistoryEntry struct {
	ID         int64
	ListingID  int64
	Price      float64
	RecordedAt time.Time
}

// SaveOutcome tells the caller what a Store.Save call actually did.
type SaveOutcome int

const (
	OutcomeCreated SaveOutcome = iota
	OutcomePriceChanged
	OutcomeUnchanged
)

func (o SaveOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomePriceChanged:
		return "price_changed"
	case OutcomeUnchanged:
		return "unchanged"
	}
	return "unknown"
}

// Property type classifications.
const (
	TypeHouse        = "house"
	TypeCondo        = "condo"
	TypeTownhouse    = "townhouse"
	TypeApartment    = "apartment"
	TypeMultiFamily  = "multi_family"
	TypeLand         = "land"
	TypeManufactured = "manufactured"
	TypeOther        = "other"
)

// Listing status classifications.
const (
	StatusActive     = "active"
	StatusPending    = "pending"
	StatusSold       = "sold"
	StatusOffMarket  = "off_market"
	StatusComingSoon = "coming_soon"
	StatusContingent = "contingent"
)

// SourceStats counts what happened to one source's listings during a run.
type SourceStats struct {
	Source       string
	Fetched      int
	Created      int
	PriceChanged int
	Unchanged    int
	Duplicates   int
	Failed       int
	FetchErr     error
}

// RunReport summarizes a full pipeline run across all sources.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Sources    []*SourceStats
}

// TotalStored returns how many listings were written (created or updated).
func (r *RunReport) TotalStored() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Created + s.PriceChanged + s.Unchanged
	}
	return total
}

// FailedSources lists the names of sources whose fetch failed outright.
func (r *RunReport) FailedSources() []string {
	var names []string
	for _, s := range r.Sources {
		if s.FetchErr != nil {
			names = append(names, s.Source)
		}
	}
	return names
}

// PriceDrop is a listing currently priced below its most recent
// historical price.
type PriceDrop struct {
	Address      string
	CurrentPrice float64
	OldPrice     float64
	DropAmount   float64
}
