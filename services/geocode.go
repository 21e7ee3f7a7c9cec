package services

import (
	"time"

	geo "github.com/codingsince1985/geo-golang"

	"realestate-pipeline/utils"
)

type coordinates struct {
	lat float64
	lon float64
}

// GeocodeCache resolves addresses to coordinates through an external
// provider, memoizing successful lookups for the lifetime of the process.
// Cache keys are exact address strings; addresses differing by a single
// character resolve separately.
type GeocodeCache struct {
	geocoder geo.Geocoder
	logger   *utils.Logger

	// interRequestDelay is slept before every provider call so the free
	// Nominatim tier's one-request-per-second rule is respected.
	interRequestDelay time.Duration

	cache map[string]coordinates

	// sleep is swappable for tests.
	sleep func(time.Duration)
}

// NewGeocodeCache wraps the given provider with an empty cache.
func NewGeocodeCache(geocoder geo.Geocoder, interRequestDelay time.Duration, logger *utils.Logger) *GeocodeCache {
	return &GeocodeCache{
		geocoder:          geocoder,
		logger:            logger,
		interRequestDelay: interRequestDelay,
		cache:             make(map[string]coordinates),
		sleep:             time.Sleep,
	}
}

// Geocode returns (lat, lon, true) for the given full address string, or
// (0, 0, false) when the provider times out, errors, or finds nothing.
// Failures are not cached, so a later call may still succeed.
func (g *GeocodeCache) Geocode(fullAddress string) (float64, float64, bool) {
	if c, hit := g.cache[fullAddress]; hit {
		return c.lat, c.lon, true
	}

	g.sleep(g.interRequestDelay)

	g.logger.Debug("[geocode] Resolving: %s", fullAddress)
	location, err := g.geocoder.Geocode(fullAddress)
	if err != nil {
		g.logger.Warn("[geocode] Provider error for %q: %v", fullAddress, err)
		return 0, 0, false
	}
	if location == nil {
		g.logger.Debug("[geocode] No result for %q", fullAddress)
		return 0, 0, false
	}

	g.cache[fullAddress] = coordinates{lat: location.Lat, lon: location.Lng}
	return location.Lat, location.Lng, true
}

// CacheSize returns how many addresses have been resolved so far.
func (g *GeocodeCache) CacheSize() int {
	return len(g.cache)
}
