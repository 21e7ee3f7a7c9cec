package services

import (
	"database/sql"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"realestate-pipeline/models"
	"realestate-pipeline/utils"
)

var (
	// priceStripRegexp removes everything that is not a digit or decimal point.
	priceStripRegexp = regexp.MustCompile(`[^\d.]`)
	// digitRunRegexp captures the first run of digits in a string.
	digitRunRegexp = regexp.MustCompile(`\d+`)
)

var titleCaser = cases.Title(language.AmericanEnglish)

// CleanPrice strips currency symbols, commas and whitespace from a raw
// price string and parses the remainder as a float.
// "$450,000.00" → 450000. Unparseable or empty input yields a null price.
func CleanPrice(raw string) sql.NullFloat64 {
	if strings.TrimSpace(raw) == "" {
		return sql.NullFloat64{}
	}

	cleaned := priceStripRegexp.ReplaceAllString(raw, "")
	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: val, Valid: true}
}

// CleanCity trims and title-cases a city name: " austin " → "Austin".
// Empty input yields "Unknown".
func CleanCity(raw string) string {
	city := strings.TrimSpace(raw)
	if city == "" {
		return "Unknown"
	}
	return titleCaser.String(strings.ToLower(city))
}

// CleanState trims, uppercases and truncates to two characters.
// Note this is naive truncation, not an abbreviation lookup: "Texas"
// becomes "TE". Downstream consumers depend on this behavior.
func CleanState(raw string) string {
	state := strings.ToUpper(strings.TrimSpace(raw))
	if state == "" {
		return "XX"
	}
	if len(state) > 2 {
		state = state[:2]
	}
	return state
}

// CleanCount normalizes bed/bath/sqft values: "3 bd" → 3, "-2" → 2,
// garbage → 0.
func CleanCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	// Numeric input keeps its magnitude; no negative bedrooms.
	if val, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(math.Abs(val))
	}

	if match := digitRunRegexp.FindString(raw); match != "" {
		if n, err := strconv.Atoi(match); err == nil {
			return n
		}
	}
	return 0
}

// CleanAddress trims the address; empty input yields "Unknown Address".
func CleanAddress(raw string) string {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return "Unknown Address"
	}
	return addr
}

// Cleaner turns RawListings into clean, validated Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// CleanListing normalizes every field of a raw listing. It is total:
// unparseable fields get documented defaults, never an error.
func (c *Cleaner) CleanListing(raw *models.RawListing) *models.Listing {
	price := CleanPrice(raw.Price)
	if !price.Valid && raw.Price != "" {
		c.logger.Warn("[cleaner] Could not convert price: %q (%s)", raw.Price, raw.URL)
	}

	return &models.Listing{
		Address:       CleanAddress(raw.Address),
		City:          CleanCity(raw.City),
		State:         CleanState(raw.State),
		ZipCode:       strings.TrimSpace(raw.ZipCode),
		Price:         price,
		Bedrooms:      CleanCount(raw.Bedrooms),
		Bathrooms:     CleanCount(raw.Bathrooms),
		SquareFeet:    CleanCount(raw.SquareFeet),
		PropertyType:  strings.ToLower(strings.TrimSpace(raw.PropertyType)),
		ListingStatus: models.StatusActive,
		SourceName:    raw.SourceName,
		ScrapedAt:     time.Now().UTC(),
		URL:           strings.TrimSpace(raw.URL),
	}
}
