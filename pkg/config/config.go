package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"taskapp/pkg"
)

// RateLimitConfig is a fixed-window budget for one route.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// ResponseCacheConfig controls response caching for one route.
type ResponseCacheConfig struct {
	TTL     time.Duration
	Enabled bool
}

// AppConfig holds every runtime setting the server needs. Values come
// from the environment (a .env file is honored when present).
type AppConfig struct {
	Environment string
	Port        string
	CORSOrigin  string

	DatabaseURL  string
	DatabasePath string
	RedisURL     string

	MetricsPort  string
	OTLPEndpoint string

	RateLimitEnabled bool
	RateLimitConfigs map[string]RateLimitConfig

	CacheEnabled bool
	CacheConfigs map[string]ResponseCacheConfig

	EnforceHTTPS bool
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Environment: "development",
		Port:        pkg.GetServerPort(),
		CORSOrigin:  "*",

		MetricsPort:  "9091",
		OTLPEndpoint: "localhost:4317",

		RateLimitEnabled: true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"/tasks": {
				Requests: 100,
				Window:   15 * time.Minute,
			},
			"default": {
				Requests: 60,
				Window:   time.Minute,
			},
		},

		CacheEnabled: true,
		CacheConfigs: map[string]ResponseCacheConfig{
			"/tasks": {
				TTL:     3 * time.Second,
				Enabled: true,
			},
		},

		EnforceHTTPS: false,
	}
}

// Load reads the environment over the defaults.
func Load() *AppConfig {
	_ = godotenv.Load()

	cfg := GetDefaultConfig()

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Environment = env
	}

	if os.Getenv("GIN_MODE") == "release" {
		cfg.Environment = "production"
		cfg.EnforceHTTPS = true
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		cfg.CORSOrigin = origin
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DatabasePath = os.Getenv("DATABASE_PATH")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	if port := os.Getenv("METRICS_PORT"); port != "" {
		cfg.MetricsPort = port
	}

	if endpoint := os.Getenv("OTLP_ENDPOINT"); endpoint != "" {
		cfg.OTLPEndpoint = endpoint
	}

	if os.Getenv("RATE_LIMIT_DISABLED") == "true" {
		cfg.RateLimitEnabled = false
	}

	if os.Getenv("RESPONSE_CACHE_DISABLED") == "true" {
		cfg.CacheEnabled = false
	}

	return cfg
}
