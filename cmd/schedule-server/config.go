package main

import (
	"errors"
	"fmt"
	"schedule-backend/lib/scrapers/skola24"
	"schedule-backend/services/schedule"
	"time"
)

type RateLimitConfig struct {
	PerSecond float64 `json:"per_second"`
	Burst     int     `json:"burst"`
}

type LessonCacheConfig struct {
	Size int `json:"size"`
	// go duration string, ex. "10m"
	Ttl string `json:"ttl"`
}

type Config struct {
	Port int `json:"port"`
	// HS256 key the bearer tokens are signed with, usually `${JWT_SECRET}`
	JwtSecret        string            `json:"jwt_secret"`
	TokenTtl         string            `json:"token_ttl"`
	RequestTimeout   string            `json:"request_timeout"`
	AllowedOrigins   []string          `json:"allowed_origins"`
	RateLimit        RateLimitConfig   `json:"rate_limit"`
	LessonCache      LessonCacheConfig `json:"lesson_cache"`
	BrowserTransport bool              `json:"browser_transport"`
	// overrides of the upstream urls, unset fields use the production urls
	Endpoints skola24.Endpoints `json:"endpoints"`
}

// minimum key length for HS256
const minSecretLength = 32

type settings struct {
	port    int
	client  skola24.Options
	service schedule.Options
	handler schedule.HandlerOptions
}

func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", name)
	}
	return d, nil
}

// resolve validates the config and fills in defaults.
func (c Config) resolve() (settings, error) {
	if c.JwtSecret == "" {
		return settings{}, errors.New("jwt_secret is required")
	}
	if len(c.JwtSecret) < minSecretLength {
		return settings{}, fmt.Errorf("jwt_secret must be at least %d bytes", minSecretLength)
	}

	tokenTtl, err := parseDuration("token_ttl", c.TokenTtl, schedule.DefaultTokenTTL)
	if err != nil {
		return settings{}, err
	}
	requestTimeout, err := parseDuration("request_timeout", c.RequestTimeout, 2*time.Minute)
	if err != nil {
		return settings{}, err
	}
	cacheTtl, err := parseDuration("lesson_cache.ttl", c.LessonCache.Ttl, 10*time.Minute)
	if err != nil {
		return settings{}, err
	}

	port := c.Port
	if port == 0 {
		port = 8000
	}
	rateLimit := c.RateLimit
	if rateLimit.PerSecond == 0 {
		rateLimit = RateLimitConfig{PerSecond: 5, Burst: 5}
	}
	origins := c.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return settings{
		port: port,
		client: skola24.Options{
			Endpoints:         c.Endpoints,
			RequestsPerSecond: rateLimit.PerSecond,
			Burst:             rateLimit.Burst,
			BrowserTransport:  c.BrowserTransport,
		},
		service: schedule.Options{
			Tokens:          schedule.NewTokenIssuer([]byte(c.JwtSecret), tokenTtl),
			LessonCacheSize: c.LessonCache.Size,
			LessonCacheTTL:  cacheTtl,
		},
		handler: schedule.HandlerOptions{
			AllowedOrigins: origins,
			RequestTimeout: requestTimeout,
		},
	}, nil
}
