package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeNotFound, "layer missing")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches code through wrapping", func(t *testing.T) {
		inner := New(CodeUnavailable, "store down")
		outer := Wrap(inner, CodeInternal, "query failed")
		assert.True(t, HasCode(outer, CodeInternal))
		assert.True(t, HasCode(outer, CodeUnavailable))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		inner := New(CodeInvalidGeometry, "zero area")
		outer := fmt.Errorf("analyze: %w", inner)
		assert.True(t, HasCode(outer, CodeInvalidGeometry))
	})

	t.Run("untagged error matches nothing", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("returns outermost code", func(t *testing.T) {
		inner := New(CodeUnavailable, "store down")
		outer := Wrap(inner, CodeInternal, "query failed")
		assert.Equal(t, CodeInternal, CodeOf(outer))
	})

	t.Run("untagged error defaults to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil error yields nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("cause stays reachable via errors.Is", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeUnavailable, "geometry store")
		require.Error(t, err)
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "connection refused")
	})
}
