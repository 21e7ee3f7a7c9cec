package utils

import (
	"math/rand"
	"time"
)

// RateLimiter paces outbound calls by sleeping a random duration before
// each one. Stateless: no shared counters, no last-request tracking.
type RateLimiter struct {
	Min    time.Duration
	Max    time.Duration
	Logger *Logger

	// sleep is swappable for tests.
	sleep func(time.Duration)
}

// NewRateLimiter creates a RateLimiter pacing between min and max.
func NewRateLimiter(min, max time.Duration, logger *Logger) *RateLimiter {
	if max < min {
		max = min
	}
	return &RateLimiter{Min: min, Max: max, Logger: logger, sleep: time.Sleep}
}

// Delay blocks for a uniformly random duration in [Min, Max].
func (rl *RateLimiter) Delay() {
	span := rl.Max - rl.Min
	wait := rl.Min
	if span > 0 {
		wait += time.Duration(rand.Int63n(int64(span) + 1))
	}
	if rl.Logger != nil {
		rl.Logger.Debug("[rate-limit] waiting %v before next request", wait.Round(time.Millisecond))
	}
	rl.sleep(wait)
}
