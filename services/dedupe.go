package services

import (
	"context"
	"fmt"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"realestate-pipeline/models"
	"realestate-pipeline/storage"
	"realestate-pipeline/utils"
)

// DefaultDedupeThreshold is the similarity score (0–100) at or above which
// two addresses are treated as the same real-world listing.
const DefaultDedupeThreshold = 85

// DuplicateMatcher finds stored listings whose address is a near-duplicate
// of a new one. Matching is scoped to a single city, which keeps the scan
// linear in the size of that city rather than the whole table.
type DuplicateMatcher struct {
	store     storage.Store
	threshold int
	logger    *utils.Logger
}

// NewDuplicateMatcher creates a matcher over the given store. A threshold
// outside (0, 100] falls back to the default.
func NewDuplicateMatcher(store storage.Store, threshold int, logger *utils.Logger) *DuplicateMatcher {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultDedupeThreshold
	}
	return &DuplicateMatcher{store: store, threshold: threshold, logger: logger}
}

// FindDuplicate returns the stored listing whose address best matches
// newAddress within the same city, if that match scores at or above the
// threshold. Ties keep the first candidate in store order. A nil result
// means "no duplicate — safe to persist as new".
func (d *DuplicateMatcher) FindDuplicate(ctx context.Context, newAddress, city string) (*models.Listing, error) {
	candidates, err := d.store.ListByCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("dedupe: candidate lookup for %q: %w", city, err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var best *models.Listing
	highest := 0

	for _, candidate := range candidates {
		// Opts enable ASCII-only cleansing so scoring matches canonical
		// fuzzywuzzy token_sort_ratio (full_process), which this port
		// disables by default.
		score := fuzzy.TokenSortRatio(newAddress, candidate.Address, true, true)
		if score > highest {
			highest = score
			best = candidate
		}
	}

	if highest >= d.threshold {
		d.logger.Warn("[dedupe] Potential duplicate (score %d%%): new %q vs stored %q",
			highest, newAddress, best.Address)
		return best, nil
	}

	return nil, nil
}
