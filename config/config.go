package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Offline switches storage to the in-memory store and keeps the
	// simulated sources from touching the network.
	Offline bool

	PagesPerSource int

	DedupeThreshold int

	RetryMaxAttempts int
	RetryDelay       time.Duration

	RateLimitMin time.Duration
	RateLimitMax time.Duration

	GeocodeDelay time.Duration
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "realestate"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "realestate123"),
		PostgresDB:       getEnv("POSTGRES_DB", "real_estate_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		Offline: getEnv("OFFLINE", "") != "",

		PagesPerSource: getEnvInt("PAGES_PER_SOURCE", 1),

		DedupeThreshold: getEnvInt("DEDUPE_THRESHOLD", 85),

		RetryMaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryDelay:       getEnvDuration("RETRY_DELAY_MS", 2000),

		RateLimitMin: getEnvDuration("RATE_LIMIT_MIN_MS", 2000),
		RateLimitMax: getEnvDuration("RATE_LIMIT_MAX_MS", 5000),

		GeocodeDelay: getEnvDuration("GEOCODE_DELAY_MS", 1100),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallbackMs int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackMs)) * time.Millisecond
}
