package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"realestate-pipeline/models"
	"realestate-pipeline/scraper"
	"realestate-pipeline/storage"
	"realestate-pipeline/utils"
)

// Pipeline sequences normalization, duplicate detection, geocoding and
// persistence for every listing each source returns. Sources run one at a
// time; a failing source never aborts the run.
type Pipeline struct {
	store    storage.Store
	cleaner  *Cleaner
	matcher  *DuplicateMatcher
	geocoder *GeocodeCache
	logger   *utils.Logger
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(store storage.Store, cleaner *Cleaner, matcher *DuplicateMatcher,
	geocoder *GeocodeCache, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		store:    store,
		cleaner:  cleaner,
		matcher:  matcher,
		geocoder: geocoder,
		logger:   logger,
	}
}

// RunOnce processes every source sequentially and returns a report of what
// happened, including which sources or listings failed. Listings are
// persisted in the order their source returned them.
func (p *Pipeline) RunOnce(ctx context.Context, sources []scraper.Source, pagesPerSource int) *models.RunReport {
	report := &models.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	p.logger.Info("[pipeline] Run %s starting — %d sources, %d pages each",
		report.RunID, len(sources), pagesPerSource)

	for _, source := range sources {
		stats := &models.SourceStats{Source: source.Name()}
		report.Sources = append(report.Sources, stats)

		p.logger.Info("[pipeline] Launching source: %s", source.Name())

		raws, err := source.Fetch(ctx, pagesPerSource)
		if err != nil {
			p.logger.Error("[pipeline] Source %s failed, skipping: %v", source.Name(), err)
			stats.FetchErr = err
			continue
		}
		stats.Fetched = len(raws)

		for _, raw := range raws {
			if err := p.processListing(ctx, raw, stats); err != nil {
				stats.Failed++
				p.logger.Error("[pipeline] Listing %s failed: %v", raw.URL, err)
			}
		}
	}

	report.FinishedAt = time.Now().UTC()
	p.logger.Info("[pipeline] Run %s finished — %d stored, %d sources failed",
		report.RunID, report.TotalStored(), len(report.FailedSources()))
	return report
}

// processListing runs one listing through clean → dedupe → geocode → save.
// A duplicate match is a skip, not an error.
func (p *Pipeline) processListing(ctx context.Context, raw *models.RawListing, stats *models.SourceStats) error {
	listing := p.cleaner.CleanListing(raw)
	if listing.URL == "" {
		return fmt.Errorf("listing %q has no URL", listing.Address)
	}

	duplicate, err := p.matcher.FindDuplicate(ctx, listing.Address, listing.City)
	if err != nil {
		return err
	}
	if duplicate != nil {
		stats.Duplicates++
		p.logger.Info("[pipeline] Skipping fuzzy duplicate: %q matches stored %q",
			listing.Address, duplicate.Address)
		return nil
	}

	fullAddress := fmt.Sprintf("%s, %s, %s", listing.Address, listing.City, listing.State)
	if lat, lon, ok := p.geocoder.Geocode(fullAddress); ok {
		listing.Latitude = sql.NullFloat64{Float64: lat, Valid: true}
		listing.Longitude = sql.NullFloat64{Float64: lon, Valid: true}
	}

	outcome, err := p.store.Save(ctx, listing)
	if err != nil {
		return err
	}

	switch outcome {
	case models.OutcomeCreated:
		stats.Created++
	case models.OutcomePriceChanged:
		stats.PriceChanged++
	case models.OutcomeUnchanged:
		stats.Unchanged++
	}
	return nil
}
