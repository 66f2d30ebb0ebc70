package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("UPSTREAM_BASE_URL", "http://backend")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("DASHBOARD_CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT_UPSTREAM", "10/min")
	t.Setenv("PHONE_REGION", "id")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWTSecret != "super-secret" || cfg.Port != "9000" || cfg.UpstreamBaseURL != "http://backend" {
		t.Fatalf("unexpected config values: %+v", cfg)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("expected token ttl 2h, got %s", cfg.TokenTTL)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Fatalf("expected cache ttl 90s, got %s", cfg.CacheTTL)
	}
	if cfg.RateLimitUpstream.Requests != 10 || cfg.RateLimitUpstream.Interval != time.Minute {
		t.Fatalf("unexpected rate limit config: %+v", cfg.RateLimitUpstream)
	}
	if cfg.PhoneRegion != "ID" {
		t.Fatalf("expected phone region upper-cased, got %s", cfg.PhoneRegion)
	}

	// invalid rate limit should error
	os.Unsetenv("RATE_LIMIT_UPSTREAM")
	t.Setenv("RATE_LIMIT_UPSTREAM", "xyz")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid rate limit")
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "JWT_SECRET", "UPSTREAM_BASE_URL", "DASHBOARD_CACHE_TTL", "PAGE_SIZE", "CONTACT_FETCH_LIMIT", "RATE_LIMIT_UPSTREAM"} {
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl default, got %s", cfg.CacheTTL)
	}
	if cfg.PageSize != 100 || cfg.FetchLimit != 10000 {
		t.Fatalf("unexpected pagination defaults: %+v", cfg)
	}
}

func TestParseRateLimit(t *testing.T) {
	cfg, err := parseRateLimit("5/sec")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Requests != 5 || cfg.Interval != time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := parseRateLimit("bad-format"); err == nil {
		t.Fatalf("expected error for malformed value")
	}
	if _, err := parseRateLimit("0/min"); err == nil {
		t.Fatalf("expected error for zero requests")
	}
	if _, err := parseRateLimit("5/day"); err == nil {
		t.Fatalf("expected error for unsupported unit")
	}
}
