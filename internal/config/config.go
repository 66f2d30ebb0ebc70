package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port              string
	JWTSecret         string
	TokenTTL          time.Duration
	UpstreamBaseURL   string
	UpstreamTimeout   time.Duration
	SQLitePath        string
	CacheTTL          time.Duration
	PageSize          int
	FetchLimit        int
	PhoneRegion       string
	RateLimitUpstream RateLimitConfig

	// AdminEmail/AdminPassword seed the initial admin account; the embedded
	// database starts empty, so without them only self-service member
	// registration is possible.
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:        parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:9000"),
		UpstreamTimeout: parseDuration(getEnv("UPSTREAM_TIMEOUT", "15s"), 15*time.Second),
		SQLitePath:      getEnv("SQLITE_PATH", "dashboard.db"),
		CacheTTL:        parseDuration(getEnv("DASHBOARD_CACHE_TTL", "5m"), 5*time.Minute),
		PageSize:        parseInt(getEnv("PAGE_SIZE", "100"), 100),
		FetchLimit:      parseInt(getEnv("CONTACT_FETCH_LIMIT", "10000"), 10000),
		PhoneRegion:     strings.ToUpper(getEnv("PHONE_REGION", "US")),
		AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_UPSTREAM", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_UPSTREAM value: %w", err)
	}
	cfg.RateLimitUpstream = rl

	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 10000
	}

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(input string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return fallback
	}
	return value
}
