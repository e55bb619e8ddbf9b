// Package config assembles process configuration from the environment so
// main stays lean. Rules and catalog content live in their own YAML files;
// this covers only the wiring around the engine.
package config

import (
	"os"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr string

	CatalogPath string
	RulesPath   string

	// PostgresDSN enables the PostGIS geometry store; empty means the
	// in-memory fixture store.
	PostgresDSN string

	Redis RedisConfig

	// KafkaBrokers enables the Kafka audit publisher; empty means audit
	// events are logged only.
	KafkaBrokers []string
	KafkaTopic   string

	LayerTimeout time.Duration
}

// RedisConfig captures Redis connection settings for the layer query cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:         envOr("SEIA_ADDR", ":8080"),
		CatalogPath:  envOr("SEIA_CATALOG_PATH", "configs/catalog.yaml"),
		RulesPath:    envOr("SEIA_RULES_PATH", "configs/rules.yaml"),
		PostgresDSN:  os.Getenv("SEIA_POSTGRES_DSN"),
		KafkaTopic:   envOr("SEIA_KAFKA_TOPIC", "seia.audit"),
		LayerTimeout: durationOr("SEIA_LAYER_TIMEOUT", 3*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("SEIA_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			CacheTTL:     durationOr("SEIA_CACHE_TTL", 15*time.Minute),
		},
	}
	if brokers := os.Getenv("SEIA_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
