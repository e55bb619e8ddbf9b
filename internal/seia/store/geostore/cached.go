package geostore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/ports"
	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
)

const (
	// Redis key prefix for cached layer query results
	layerCacheKeyPrefix = "seia:layer:"

	defaultCacheTTL = 15 * time.Minute
)

// Cached is a Redis read-through cache in front of another geometry store.
// Layer datasets change rarely and footprints repeat across drafts of the
// same submission, so identical queries within the TTL skip PostGIS
// entirely. Cache failures fall through to the inner store.
type Cached struct {
	inner  ports.GeometryStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// CachedOption configures a Cached store.
type CachedOption func(*Cached)

// WithCacheTTL overrides the cache entry lifetime.
func WithCacheTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger for cache-failure warnings.
func WithCacheLogger(logger *slog.Logger) CachedOption {
	return func(c *Cached) {
		c.logger = logger
	}
}

// NewCached wraps a geometry store with a Redis read-through cache.
func NewCached(inner ports.GeometryStore, client *redis.Client, opts ...CachedOption) (*Cached, error) {
	if inner == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "inner geometry store is required")
	}
	if client == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "redis client is required")
	}
	c := &Cached{inner: inner, client: client, ttl: defaultCacheTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// QueryLayer implements ports.GeometryStore.
func (c *Cached) QueryLayer(ctx context.Context, datasetRef string, geom *models.ProjectGeometry, bufferMeters float64) ([]ports.FeatureMatch, error) {
	key, err := cacheKey(datasetRef, geom, bufferMeters)
	if err != nil {
		return c.inner.QueryLayer(ctx, datasetRef, geom, bufferMeters)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var matches []ports.FeatureMatch
		if err := json.Unmarshal(payload, &matches); err == nil {
			return matches, nil
		}
		// Corrupt entry; fall through and overwrite it.
	} else if !errors.Is(err, redis.Nil) {
		c.logWarn(ctx, "layer cache read failed", "dataset", datasetRef, "error", err)
	}

	matches, err := c.inner.QueryLayer(ctx, datasetRef, geom, bufferMeters)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(matches); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logWarn(ctx, "layer cache write failed", "dataset", datasetRef, "error", err)
		}
	}
	return matches, nil
}

// cacheKey hashes the full query identity: dataset, buffer, and footprint.
func cacheKey(datasetRef string, geom *models.ProjectGeometry, bufferMeters float64) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%.3f|", datasetRef, bufferMeters)
	if err := json.NewEncoder(h).Encode(geom.Polygons); err != nil {
		return "", err
	}
	return layerCacheKeyPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

func (c *Cached) logWarn(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, args...)
	}
}
