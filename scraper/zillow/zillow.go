package zillow

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"realestate-pipeline/models"
	"realestate-pipeline/scraper"
	"realestate-pipeline/utils"
)

const sourceName = "Zillow"

type location struct {
	city      string
	state     string
	zip       string
	basePrice int
}

var locations = []location{
	{"Austin", "TX", "78701", 450000},
	{"Dallas", "TX", "75201", 350000},
	{"Houston", "TX", "77002", 300000},
	{"San Antonio", "TX", "78205", 280000},
}

var streetNames = []string{"Oak", "Maple", "Pine", "Cedar", "Elm", "Main", "Washington", "Lake", "Hill"}
var streetTypes = []string{"St", "Ave", "Blvd", "Ln", "Dr", "Ct"}

// Source simulates the Zillow feed. Pages are fetched through the shared
// HTTP client (the mock base URL keeps it offline); the listing data
// itself is generated with realistic formatting noise so the cleaning
// stage has real work to do.
type Source struct {
	client  *scraper.Client
	baseURL string
	logger  *utils.Logger
	rng     *rand.Rand
}

// New creates the Zillow source.
func New(client *scraper.Client, logger *utils.Logger) *Source {
	return &Source{
		client:  client,
		baseURL: "http://mock-zillow.com",
		logger:  logger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Source) Name() string { return sourceName }

// Fetch retrieves the given number of pages and returns their listings in
// page order. URLs are unique within one call.
func (s *Source) Fetch(ctx context.Context, pages int) ([]*models.RawListing, error) {
	s.logger.Info("[zillow] Starting fetch — target: %d pages", pages)

	seen := make(map[string]struct{})
	var all []*models.RawListing

	for page := 1; page <= pages; page++ {
		pageURL := fmt.Sprintf("%s/homes/Austin-TX_rb/%d_p/", s.baseURL, page)
		if _, err := s.client.FetchPage(ctx, pageURL); err != nil {
			return nil, fmt.Errorf("zillow: page %d: %w", page, err)
		}

		count := 10 + s.rng.Intn(6)
		s.logger.Debug("[zillow] Page %d yielded %d listings", page, count)

		for i := 0; i < count; i++ {
			l := s.generateListing()
			if _, dup := seen[l.URL]; dup {
				continue
			}
			seen[l.URL] = struct{}{}
			all = append(all, l)
		}
	}

	s.logger.Info("[zillow] Fetch complete — %d listings", len(all))
	return all, nil
}

func (s *Source) generateListing() *models.RawListing {
	loc := locations[s.rng.Intn(len(locations))]
	street := streetNames[s.rng.Intn(len(streetNames))]
	stType := streetTypes[s.rng.Intn(len(streetTypes))]
	num := 100 + s.rng.Intn(9900)

	sqft := 1200 + s.rng.Intn(3301)
	price := loc.basePrice + sqft*150 + s.rng.Intn(100001) - 50000
	price = price / 1000 * 1000

	return &models.RawListing{
		Address:      fmt.Sprintf("%d %s %s", num, street, stType),
		City:         loc.city,
		State:        loc.state,
		ZipCode:      loc.zip,
		Price:        fmt.Sprintf("$%d", price),
		Bedrooms:     fmt.Sprintf("%d bd", 2+s.rng.Intn(4)),
		Bathrooms:    fmt.Sprintf("%d ba", 1+s.rng.Intn(4)),
		SquareFeet:   fmt.Sprintf("%d sqft", sqft),
		PropertyType: models.TypeHouse,
		URL:          fmt.Sprintf("https://zillow.com/homedetails/%d-%s-%s", num, street, stType),
		SourceName:   sourceName,
	}
}
