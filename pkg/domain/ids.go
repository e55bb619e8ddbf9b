// Package domain defines the typed identifiers shared across the engine.
//
// Distinct Go types keep analysis, alert, and layer identifiers from being
// mixed up at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
)

// AnalysisID identifies one engine invocation. Assigned by the engine so
// downstream audit records and exports can reference the run.
type AnalysisID uuid.UUID

// AlertID identifies a synthesized alert within an analysis.
type AlertID uuid.UUID

// LayerID identifies a catalog layer. Values come from the catalog file, not
// from the database, so this stays a string key rather than a UUID.
type LayerID string

// NewAnalysisID returns a fresh random analysis identifier.
func NewAnalysisID() AnalysisID { return AnalysisID(uuid.New()) }

// NewAlertID returns a fresh random alert identifier.
func NewAlertID() AlertID { return AlertID(uuid.New()) }

func (id AnalysisID) String() string { return uuid.UUID(id).String() }
func (id AlertID) String() string    { return uuid.UUID(id).String() }
func (id LayerID) String() string    { return string(id) }

// ParseAnalysisID validates and parses an analysis identifier.
// IDs must be valid, non-nil UUIDs.
func ParseAnalysisID(s string) (AnalysisID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return AnalysisID(uuid.Nil), err
	}
	return AnalysisID(u), nil
}

// ParseLayerID validates a layer identifier from external input.
func ParseLayerID(s string) (LayerID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "layer id cannot be empty")
	}
	return LayerID(s), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid id format")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil uuid")
	}
	return u, nil
}
