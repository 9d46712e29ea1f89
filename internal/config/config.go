package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all tool settings, populated from environment variables.
type Config struct {
	// Address construction. Every lookup is suffixed with District and Region
	// so bare school and Mandal names resolve inside the right area.
	District string
	Region   string

	// Geocoding provider.
	NominatimURL    string
	UserAgent       string
	GeocodeTimeout  time.Duration
	GeocodeInterval time.Duration // minimum spacing between external calls

	// Durable address cache.
	CachePath string

	// Ranking.
	DefaultPriority []string

	// Web front end.
	HTTPAddr        string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	geocodeInterval, err := parseDuration("GEOCODE_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		District:        envOrDefault("DISTRICT", "Guntur"),
		Region:          envOrDefault("REGION", "Andhra Pradesh"),
		NominatimURL:    envOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		UserAgent:       envOrDefault("NOMINATIM_USER_AGENT", "teacher-transfer-tool/1.0"),
		GeocodeTimeout:  geocodeTimeout,
		GeocodeInterval: geocodeInterval,
		CachePath:       envOrDefault("CACHE_PATH", "geo_cache.json"),
		DefaultPriority: ParsePriority(os.Getenv("DEFAULT_PRIORITY")),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.District == "" {
		return nil, fmt.Errorf("DISTRICT must not be empty")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("REGION must not be empty")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("NOMINATIM_USER_AGENT must not be empty")
	}

	return cfg, nil
}

// ParsePriority splits a whitespace-separated list of category tokens, most
// preferred first. An empty input yields the built-in default order 4 3 2 1.
func ParsePriority(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return []string{"4", "3", "2", "1"}
	}
	return fields
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}
