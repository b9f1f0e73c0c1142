package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr        string
	Environment string

	DatabaseURL string

	RedisURL      string
	StatsCacheTTL time.Duration

	KafkaBrokers string
	MatchTopic   string

	JWTSigningKey string
	DemoMode      bool

	RequestBodyLimit int64
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:             envOr("LIAISON_ADDR", ":8080"),
		Environment:      envOr("LIAISON_ENV", "development"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		StatsCacheTTL:    envDuration("STATS_CACHE_TTL", 30*time.Second),
		KafkaBrokers:     os.Getenv("KAFKA_BROKERS"),
		MatchTopic:       envOr("KAFKA_MATCH_TOPIC", "liaison.matches"),
		JWTSigningKey:    os.Getenv("JWT_SIGNING_KEY"),
		DemoMode:         os.Getenv("DEMO_MODE") == "true",
		RequestBodyLimit: envInt64("REQUEST_BODY_LIMIT", 1<<20),
	}

	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
