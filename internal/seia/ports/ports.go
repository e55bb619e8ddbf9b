// Package ports defines shared interfaces for the seia module. Interfaces
// live here when consumed by multiple services to avoid duplication.
package ports

import (
	"context"
	"log/slog"
	"time"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	audit "github.com/Ignacio1972/mineria-sub004/pkg/platform/audit"
)

// FeatureMatch is one feature a geometry store found for a layer query:
// either an overlap (with the affected metric area) or a proximity match
// (with the metric distance to the feature). All measurement happens inside
// the store in a metric projection; degrees never cross this boundary as
// areas or distances.
type FeatureMatch struct {
	Name           string
	Overlaps       bool
	AffectedAreaHa float64
	DistanceMeters float64
}

// GeometryStore answers per-layer spatial queries against an external
// feature dataset.
type GeometryStore interface {
	// QueryLayer returns every feature of the dataset that overlaps the
	// geometry or lies within bufferMeters of it.
	QueryLayer(ctx context.Context, datasetRef string, geom *models.ProjectGeometry, bufferMeters float64) ([]FeatureMatch, error)
}

// AuditPublisher emits audit events for classification runs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit logs an audit-worthy occurrence and, when a publisher is
// configured, emits it to the audit trail. Publish failures are logged and
// swallowed: the audit trail must never fail an analysis.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, analysisID string, action audit.Action, fields map[string]any) {
	if logger != nil {
		attrs := make([]any, 0, 2*len(fields)+4)
		attrs = append(attrs, "analysis_id", analysisID, "action", string(action))
		for k, v := range fields {
			attrs = append(attrs, k, v)
		}
		logger.InfoContext(ctx, "audit event", attrs...)
	}
	if publisher == nil {
		return
	}
	event := audit.Event{
		AnalysisID: analysisID,
		Action:     action,
		OccurredAt: time.Now().UTC(),
		Fields:     fields,
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "audit emit failed", "action", string(action), "error", err)
	}
}
