package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Open-data portal
	PortalURL            string
	SocrataToken         string
	CommitteeDataset     string
	ContributionsDataset string
	ExpendituresDataset  string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	TransactionsTTL time.Duration
	MetadataTTL     time.Duration

	// Observability
	OTLPEndpoint string

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from environment variables with defaults.
// The dataset identifiers default to the IECDB publications on
// data.iowa.gov but stay configurable for test fixtures and mirrors.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PortalURL:            getEnv("PORTAL_URL", "https://data.iowa.gov"),
		SocrataToken:         getEnv("SOCRATA_TOKEN", ""),
		CommitteeDataset:     getEnv("COMMITTEE_DATASET", "5dtu-swbk"),
		ContributionsDataset: getEnv("CONTRIBUTIONS_DATASET", "smfg-ds7h"),
		ExpendituresDataset:  getEnv("EXPENDITURES_DATASET", "3adi-mht4"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 60*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 8),

		TransactionsTTL: getEnvDuration("TRANSACTIONS_TTL", time.Hour),
		MetadataTTL:     getEnvDuration("METADATA_TTL", time.Hour),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return fallback
}
