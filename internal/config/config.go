package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Cache backends.
const (
	CacheBackendMemory   = "memory"
	CacheBackendPostgres = "postgres"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// SMTPConfig holds the outgoing mail settings used for lead notifications.
// An empty Addr disables mail delivery.
type SMTPConfig struct {
	Addr     string
	User     string
	Password string
	From     string
	To       []string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	Port            string
	RatesAPIURL     string
	RatesAPIIDToken bool // rates API sits behind Cloud Run IAM
	CacheTTL        time.Duration
	CacheBackend    string
	RateLimitScrape RateLimitConfig
	RateLimitLeads  RateLimitConfig
	TokenTTL        time.Duration
	StaticDir       string
	StaticBaseURL   string
	StaticCron      bool
	RenderConfig    string
	PhoneRegion     string
	AdminEmail      string
	AdminPassword   string
	SMTP            SMTPConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
		Port:            getEnv("PORT", "8080"),
		RatesAPIURL:     strings.TrimRight(getEnv("RATES_API_URL", "https://api.rolloffrates.com"), "/"),
		RatesAPIIDToken: parseBool(os.Getenv("RATES_API_IDTOKEN")),
		TokenTTL:        parseDuration(getEnv("JWT_TTL", "24h")),
		StaticDir:       getEnv("STATIC_DIR", "public"),
		StaticBaseURL:   strings.TrimRight(getEnv("STATIC_BASE_URL", "http://localhost:8080"), "/"),
		StaticCron:      parseBool(os.Getenv("STATIC_CRON")),
		RenderConfig:    os.Getenv("RENDER_CONFIG"),
		PhoneRegion:     strings.ToUpper(getEnv("PHONE_REGION", "US")),
		AdminEmail:      strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		SMTP: SMTPConfig{
			Addr:     os.Getenv("SMTP_ADDR"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("LEAD_NOTIFY_FROM", "no-reply@rolloffrates.com"),
			To:       splitList(os.Getenv("LEAD_NOTIFY_TO")),
		},
	}

	ttl, err := parseTTL(getEnv("CACHE_TTL", "3600"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL value: %w", err)
	}
	cfg.CacheTTL = ttl

	switch backend := strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendMemory)); backend {
	case CacheBackendMemory, CacheBackendPostgres:
		cfg.CacheBackend = backend
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND value: %q", backend)
	}
	if cfg.CacheBackend == CacheBackendPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("CACHE_BACKEND=postgres requires DATABASE_URL")
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SCRAPE", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SCRAPE value: %w", err)
	}
	cfg.RateLimitScrape = rl

	rl, err = parseRateLimit(getEnv("RATE_LIMIT_LEADS", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_LEADS value: %w", err)
	}
	cfg.RateLimitLeads = rl

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

// parseTTL accepts a bare number of seconds or a Go duration string.
func parseTTL(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("ttl must be positive, got %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("ttl must be positive, got %s", d)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func parseBool(input string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(input))
	return err == nil && b
}

func splitList(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
