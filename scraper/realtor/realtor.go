package realtor

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"realestate-pipeline/models"
	"realestate-pipeline/utils"
)

const sourceName = "Realtor.com"

var cities = []string{"Austin", "Round Rock", "Georgetown"}
var streets = []string{"Congress Ave", "Lamar Blvd", "6th St", "Burnet Rd"}

// Source simulates the Realtor.com feed: five single-family listings per
// page in the Austin metro, at the pricier end of the market.
type Source struct {
	logger *utils.Logger
	rng    *rand.Rand
}

func New(logger *utils.Logger) *Source {
	return &Source{logger: logger, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *Source) Name() string { return sourceName }

func (s *Source) Fetch(ctx context.Context, pages int) ([]*models.RawListing, error) {
	s.logger.Info("[realtor] Fetching %d pages", pages)

	seen := make(map[string]struct{})
	var all []*models.RawListing

	for page := 1; page <= pages; page++ {
		for i := 0; i < 5; i++ {
			id := 10000 + s.rng.Intn(90000)
			url := fmt.Sprintf("http://realtor.com/realestateandhomes-detail/%d", id)
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}

			all = append(all, &models.RawListing{
				Address:      fmt.Sprintf("%d %s", 100+s.rng.Intn(9900), streets[s.rng.Intn(len(streets))]),
				City:         cities[s.rng.Intn(len(cities))],
				State:        "TX",
				ZipCode:      fmt.Sprintf("78%03d", 100+s.rng.Intn(900)),
				Price:        fmt.Sprintf("$%d,000", 450+s.rng.Intn(751)),
				Bedrooms:     fmt.Sprintf("%d Beds", 3+s.rng.Intn(4)),
				Bathrooms:    fmt.Sprintf("%d Baths", 2+s.rng.Intn(4)),
				SquareFeet:   fmt.Sprintf("%d sqft", 2000+s.rng.Intn(3001)),
				PropertyType: models.TypeHouse,
				URL:          url,
				SourceName:   sourceName,
			})
		}
	}

	s.logger.Info("[realtor] Fetch complete — %d listings", len(all))
	return all, nil
}
