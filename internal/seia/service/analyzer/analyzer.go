// Package analyzer composes the full analysis pipeline: spatial
// intersection, trigger evaluation, matrix scoring, classification, and
// alert synthesis. The service owns the orchestration and the audit trail;
// every stage past the intersector is a pure function.
package analyzer

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/catalog"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/config"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/metrics"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/ports"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/service/alerts"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/service/classify"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/service/matrix"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/service/triggers"
	id "github.com/Ignacio1972/mineria-sub004/pkg/domain"
	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
	audit "github.com/Ignacio1972/mineria-sub004/pkg/platform/audit"
)

//go:generate mockgen -source=analyzer.go -destination=mocks/mocks.go -package=mocks Intersector

// Intersector is the one blocking stage of the pipeline.
type Intersector interface {
	Analyze(ctx context.Context, geom *models.ProjectGeometry) ([]models.IntersectionResult, []models.LayerFailure, error)
}

// Service runs complete analyses. Safe for concurrent use: all state is
// read-only after construction.
type Service struct {
	cfg         *config.Config
	catalog     *catalog.Catalog
	intersector Intersector

	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	now            func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the evaluation timestamp source. Tests use it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service.
func New(cfg *config.Config, cat *catalog.Catalog, intersector Intersector, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "rules config is required")
	}
	if cat == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "layer catalog is required")
	}
	if intersector == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "intersector is required")
	}
	s := &Service{
		cfg:         cfg,
		catalog:     cat,
		intersector: intersector,
		tracer:      otel.Tracer("seia/analyzer"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run executes one full analysis. Layer-query failures degrade the result
// rather than failing it; the only errors returned are invalid input.
func (s *Service) Run(ctx context.Context, geom *models.ProjectGeometry, attrs models.ProjectAttributes) (*models.AnalysisResult, error) {
	analysisID := id.NewAnalysisID()
	start := s.now()

	ctx, span := s.tracer.Start(ctx, "analyzer.Run",
		trace.WithAttributes(attribute.String("analysis_id", analysisID.String())))
	defer span.End()

	intersections, degraded, err := s.intersector.Analyze(ctx, geom)
	if err != nil {
		ports.LogAudit(ctx, s.logger, s.auditPublisher, analysisID.String(),
			audit.EventAnalysisRejected, map[string]any{
				"error": err.Error(),
			})
		return nil, err
	}

	trigs := triggers.Evaluate(s.cfg, s.catalog, intersections, attrs)
	score := matrix.Score(s.cfg.Matrix, attrs)
	classification := classify.Classify(s.cfg.Classifier, trigs, score)
	alertList := alerts.Synthesize(s.cfg, s.catalog, trigs, intersections)

	result := &models.AnalysisResult{
		ID:             analysisID,
		Intersections:  intersections,
		DegradedLayers: degraded,
		Triggers:       trigs,
		MatrixScore:    score,
		Classification: classification,
		Alerts:         alertList,
		EvaluatedAt:    start.UTC(),
	}

	s.metrics.IncrementOutcome(string(classification.Pathway), string(classification.Rule))
	s.metrics.ObserveAnalyzeLatency(s.now().Sub(start))
	span.SetAttributes(
		attribute.String("pathway", string(classification.Pathway)),
		attribute.String("rule", string(classification.Rule)),
		attribute.Int("triggers", len(trigs)),
		attribute.Int("degraded_layers", len(degraded)),
	)

	action := audit.EventAnalysisCompleted
	fields := map[string]any{
		"pathway":    string(classification.Pathway),
		"rule":       string(classification.Rule),
		"confidence": classification.Confidence,
		"triggers":   len(trigs),
		"alerts":     len(alertList),
	}
	if len(degraded) > 0 {
		action = audit.EventAnalysisDegraded
		names := make([]string, 0, len(degraded))
		for _, f := range degraded {
			names = append(names, f.LayerID.String())
		}
		fields["degraded_layers"] = names
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, analysisID.String(), action, fields)

	return result, nil
}
