package redfin

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"realestate-pipeline/models"
	"realestate-pipeline/utils"
)

const sourceName = "Redfin"

var cities = []string{"Dallas", "Fort Worth", "Arlington"}
var streets = []string{"Main St", "Cooper St", "Division St", "Abrams Rd"}

// Source simulates the Redfin feed: five townhouse listings per page in
// the Dallas–Fort Worth area.
type Source struct {
	logger *utils.Logger
	rng    *rand.Rand
}

func New(logger *utils.Logger) *Source {
	return &Source{logger: logger, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *Source) Name() string { return sourceName }

func (s *Source) Fetch(ctx context.Context, pages int) ([]*models.RawListing, error) {
	s.logger.Info("[redfin] Fetching %d pages", pages)

	seen := make(map[string]struct{})
	var all []*models.RawListing

	for page := 1; page <= pages; page++ {
		for i := 0; i < 5; i++ {
			id := 10000 + s.rng.Intn(90000)
			url := fmt.Sprintf("http://redfin.com/listing/%d", id)
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}

			all = append(all, &models.RawListing{
				Address:      fmt.Sprintf("%d %s", 100+s.rng.Intn(9900), streets[s.rng.Intn(len(streets))]),
				City:         cities[s.rng.Intn(len(cities))],
				State:        "TX",
				ZipCode:      fmt.Sprintf("76%03d", 100+s.rng.Intn(900)),
				Price:        fmt.Sprintf("$%d,000", 250+s.rng.Intn(401)),
				Bedrooms:     fmt.Sprintf("%d", 2+s.rng.Intn(4)),
				Bathrooms:    fmt.Sprintf("%d", 1+s.rng.Intn(4)),
				SquareFeet:   fmt.Sprintf("%d", 1200+s.rng.Intn(2301)),
				PropertyType: models.TypeTownhouse,
				URL:          url,
				SourceName:   sourceName,
			})
		}
	}

	s.logger.Info("[redfin] Fetch complete — %d listings", len(all))
	return all, nil
}
