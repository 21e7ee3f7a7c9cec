package services

import (
	"context"
	"fmt"
	"strings"

	"realestate-pipeline/models"
	"realestate-pipeline/storage"
	"realestate-pipeline/utils"
)

// ReportService renders a pipeline run report for the terminal.
type ReportService struct {
	store  storage.Store
	logger *utils.Logger
}

func NewReportService(store storage.Store, logger *utils.Logger) *ReportService {
	return &ReportService{store: store, logger: logger}
}

// Print writes a per-source summary of the run plus any detected price
// drops across the stored data.
func (s *ReportService) Print(ctx context.Context, r *models.RunReport) {
	sep := strings.Repeat("═", 62)
	thin := strings.Repeat("─", 62)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  INGESTION RUN %s\033[0m\n", r.RunID)
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("  Started:  %s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Finished: %s\n", r.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Stored:   %d listings\n\n", r.TotalStored())

	fmt.Printf("  %-14s %8s %8s %8s %8s %6s %6s\n",
		"SOURCE", "FETCHED", "NEW", "REPRICE", "SAME", "DUPES", "FAIL")
	fmt.Println("  " + thin)

	for _, src := range r.Sources {
		if src.FetchErr != nil {
			fmt.Printf("  %-14s \033[31mFETCH FAILED: %v\033[0m\n", src.Source, src.FetchErr)
			continue
		}
		fmt.Printf("  %-14s %8d %8d %8d %8d %6d %6d\n",
			src.Source, src.Fetched, src.Created, src.PriceChanged,
			src.Unchanged, src.Duplicates, src.Failed)
	}

	if failed := r.FailedSources(); len(failed) > 0 {
		fmt.Printf("\n  \033[33mFailed sources: %s\033[0m\n", strings.Join(failed, ", "))
	}

	drops, err := s.store.PriceDrops(ctx)
	if err != nil {
		s.logger.Error("[report] Could not compute price drops: %v", err)
		return
	}
	if len(drops) > 0 {
		fmt.Printf("\n  PRICE DROPS\n")
		fmt.Println("  " + thin)
		for _, d := range drops {
			fmt.Printf("  %-32s $%11.0f → $%11.0f  (−$%.0f)\n",
				d.Address, d.OldPrice, d.CurrentPrice, d.DropAmount)
		}
	}

	fmt.Println()
}
