package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
)

// TestParseAnalysisID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs".
func TestParseAnalysisID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAnalysisID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseAnalysisID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseAnalysisID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseAnalysisID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, AnalysisID(valid), id)
	})
}

func TestParseLayerID(t *testing.T) {
	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseLayerID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts catalog-style key", func(t *testing.T) {
		id, err := ParseLayerID("snaspe")
		require.NoError(t, err)
		assert.Equal(t, LayerID("snaspe"), id)
	})
}
