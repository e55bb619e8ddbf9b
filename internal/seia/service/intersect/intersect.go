// Package intersect runs the project footprint against every catalog layer.
// Layer queries hit an external geometry store, so this is the only part of
// the engine that blocks: queries fan out in parallel with a per-layer
// timeout, and a failing layer degrades the analysis instead of failing it.
package intersect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/catalog"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/metrics"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/ports"
	id "github.com/Ignacio1972/mineria-sub004/pkg/domain"
	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
	"github.com/Ignacio1972/mineria-sub004/pkg/platform/circuit"
)

const defaultLayerTimeout = 3 * time.Second

// Failure reasons recorded on degraded layers.
const (
	reasonTimeout     = "timeout"
	reasonQueryError  = "query_error"
	reasonCircuitOpen = "circuit_open"
)

// Service queries the geometry store for every catalog layer and converts
// feature matches into intersection results. One breaker per layer keeps a
// flapping dataset from stalling every analysis on its timeout.
type Service struct {
	store        ports.GeometryStore
	catalog      *catalog.Catalog
	layerTimeout time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer

	breakerMu sync.Mutex
	breakers  map[id.LayerID]*circuit.Breaker
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLayerTimeout bounds each geometry-store query.
func WithLayerTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.layerTimeout = d
		}
	}
}

// New constructs a Service.
func New(store ports.GeometryStore, cat *catalog.Catalog, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "geometry store is required")
	}
	if cat == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "layer catalog is required")
	}
	s := &Service{
		store:        store,
		catalog:      cat,
		layerTimeout: defaultLayerTimeout,
		tracer:       otel.Tracer("seia/intersect"),
		breakers:     make(map[id.LayerID]*circuit.Breaker, cat.Len()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Analyze queries every catalog layer for the geometry. Layers that fail or
// time out are returned as failures; the successful results stand on their
// own. The only fatal input is a nil geometry, which the models constructor
// makes unrepresentable for callers building geometry the normal way.
func (s *Service) Analyze(ctx context.Context, geom *models.ProjectGeometry) ([]models.IntersectionResult, []models.LayerFailure, error) {
	if geom == nil {
		return nil, nil, dErrors.New(dErrors.CodeInvalidGeometry, "geometry is required")
	}

	ctx, span := s.tracer.Start(ctx, "intersect.Analyze",
		trace.WithAttributes(attribute.Int("layers", s.catalog.Len())))
	defer span.End()

	layers := s.catalog.List()

	// Per-layer slots; each goroutine writes only its own index.
	perLayer := make([][]models.IntersectionResult, len(layers))
	failures := make([]*models.LayerFailure, len(layers))

	g, gctx := errgroup.WithContext(ctx)
	for i, layer := range layers {
		g.Go(func() error {
			results, failure := s.queryLayer(gctx, layer, geom)
			perLayer[i] = results
			failures[i] = failure
			return nil
		})
	}
	// Workers never return errors; the group is used for fan-out and
	// context propagation only.
	_ = g.Wait()

	var out []models.IntersectionResult
	var failed []models.LayerFailure
	for i := range layers {
		out = append(out, perLayer[i]...)
		if failures[i] != nil {
			failed = append(failed, *failures[i])
		}
	}
	span.SetAttributes(
		attribute.Int("matches", len(out)),
		attribute.Int("degraded", len(failed)),
	)
	return out, failed, nil
}

func (s *Service) queryLayer(ctx context.Context, layer models.GeoLayer, geom *models.ProjectGeometry) ([]models.IntersectionResult, *models.LayerFailure) {
	breaker := s.breakerFor(layer.ID)
	if breaker.IsOpen() {
		// Probe even while open so successes can close the breaker, but
		// with a much shorter budget than a healthy layer gets.
		probeCtx, cancel := context.WithTimeout(ctx, s.layerTimeout/4)
		defer cancel()
		matches, err := s.store.QueryLayer(probeCtx, layer.DatasetRef, geom, layer.BufferMeters)
		if err != nil {
			breaker.RecordFailure()
			return nil, s.fail(ctx, layer, reasonCircuitOpen, err)
		}
		if _, change := breaker.RecordSuccess(); change.Closed {
			s.logInfo(ctx, "layer circuit closed", "layer", layer.ID)
		}
		return convert(layer, geom, matches), nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.layerTimeout)
	defer cancel()

	start := time.Now()
	matches, err := s.store.QueryLayer(queryCtx, layer.DatasetRef, geom, layer.BufferMeters)
	s.metrics.ObserveLayerQuery(layer.ID.String(), time.Since(start))

	if err != nil {
		if _, change := breaker.RecordFailure(); change.Opened {
			s.logWarn(ctx, "layer circuit opened", "layer", layer.ID, "error", err)
		}
		reason := reasonQueryError
		if errors.Is(err, context.DeadlineExceeded) {
			reason = reasonTimeout
		}
		return nil, s.fail(ctx, layer, reason, err)
	}
	breaker.RecordSuccess()
	return convert(layer, geom, matches), nil
}

func (s *Service) fail(ctx context.Context, layer models.GeoLayer, reason string, err error) *models.LayerFailure {
	s.metrics.IncrementDegraded(layer.ID.String(), reason)
	s.logWarn(ctx, "layer query failed",
		"layer", layer.ID,
		"reason", reason,
		"error", err,
	)
	return &models.LayerFailure{
		LayerID: layer.ID,
		Reason:  fmt.Sprintf("%s: %v", reason, err),
	}
}

// convert maps store matches to domain results. The store reports metric
// areas and distances; the fraction is derived against the project area.
func convert(layer models.GeoLayer, geom *models.ProjectGeometry, matches []ports.FeatureMatch) []models.IntersectionResult {
	results := make([]models.IntersectionResult, 0, len(matches))
	for _, m := range matches {
		if m.Overlaps {
			fraction := 0.0
			if geom.AreaHectares > 0 {
				fraction = m.AffectedAreaHa / geom.AreaHectares
			}
			results = append(results, models.NewOverlap(layer.ID, m.Name, m.AffectedAreaHa, fraction))
			continue
		}
		results = append(results, models.NewProximity(layer.ID, m.Name, m.DistanceMeters))
	}
	return results
}

func (s *Service) breakerFor(layerID id.LayerID) *circuit.Breaker {
	s.breakerMu.Lock()
	defer s.breakerMu.Unlock()
	b, ok := s.breakers[layerID]
	if !ok {
		b = circuit.New(layerID.String())
		s.breakers[layerID] = b
	}
	return b
}

func (s *Service) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, args...)
	}
}

func (s *Service) logInfo(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}
