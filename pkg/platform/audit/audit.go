// Package audit defines the audit trail event model. Analyses are
// classification acts with legal consequences, so each completed run leaves
// a traceable record through a pluggable publisher.
package audit

import "time"

// Action names an auditable occurrence.
type Action string

const (
	// EventAnalysisCompleted records a finished classification.
	EventAnalysisCompleted Action = "analysis_completed"
	// EventAnalysisDegraded records a run where one or more layer queries
	// failed and the result was computed from partial spatial evidence.
	EventAnalysisDegraded Action = "analysis_degraded"
	// EventAnalysisRejected records an analysis aborted on invalid input.
	EventAnalysisRejected Action = "analysis_rejected"
)

// Event is one audit record.
type Event struct {
	AnalysisID string         `json:"analysis_id"`
	Action     Action         `json:"action"`
	OccurredAt time.Time      `json:"occurred_at"`
	Fields     map[string]any `json:"fields,omitempty"`
}
