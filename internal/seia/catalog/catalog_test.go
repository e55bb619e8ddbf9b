package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
)

func validLayers() []models.GeoLayer {
	return []models.GeoLayer{
		{
			ID:             "snaspe",
			DisplayName:    "Áreas protegidas SNASPE",
			BufferMeters:   3000,
			TriggerLetters: []models.Letter{models.LetterD},
			DatasetRef:     "gis.snaspe",
			AlertOnOverlap: true,
		},
		{
			ID:             "glaciares",
			DisplayName:    "Glaciares",
			BufferMeters:   5000,
			TriggerLetters: []models.Letter{models.LetterB, models.LetterD},
			DatasetRef:     "gis.glaciares",
			AlertOnOverlap: true,
		},
	}
}

func TestNew(t *testing.T) {
	t.Run("valid layers build an ordered catalog", func(t *testing.T) {
		c, err := New(validLayers())
		require.NoError(t, err)
		assert.Equal(t, 2, c.Len())
		listed := c.List()
		assert.Equal(t, validLayers(), listed)
	})

	t.Run("empty catalog rejected", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		layers := validLayers()
		layers[1].ID = layers[0].ID
		_, err := New(layers)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	t.Run("negative buffer rejected", func(t *testing.T) {
		layers := validLayers()
		layers[0].BufferMeters = -1
		_, err := New(layers)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	t.Run("missing dataset ref rejected", func(t *testing.T) {
		layers := validLayers()
		layers[0].DatasetRef = ""
		_, err := New(layers)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
	})
}

func TestGet(t *testing.T) {
	c, err := New(validLayers())
	require.NoError(t, err)

	t.Run("known id", func(t *testing.T) {
		layer, err := c.Get("glaciares")
		require.NoError(t, err)
		assert.Equal(t, "Glaciares", layer.DisplayName)
	})

	t.Run("unknown id is a not-found error", func(t *testing.T) {
		_, err := c.Get("salares")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestList_Immutability(t *testing.T) {
	c, err := New(validLayers())
	require.NoError(t, err)

	listed := c.List()
	listed[0].BufferMeters = 999999

	again, err := c.Get("snaspe")
	require.NoError(t, err)
	assert.Equal(t, 3000.0, again.BufferMeters, "mutating List output must not touch the catalog")
}

func TestLoad(t *testing.T) {
	t.Run("loads a valid file", func(t *testing.T) {
		path := writeCatalog(t, `
layers:
  - id: snaspe
    display_name: "Áreas protegidas SNASPE"
    buffer_meters: 3000
    trigger_letters: [d]
    dataset_ref: gis.snaspe
    alert_on_overlap: true
  - id: humedales
    display_name: "Humedales y sitios Ramsar"
    buffer_meters: 2000
    trigger_letters: [b, d]
    dataset_ref: gis.humedales
`)
		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2, c.Len())

		layer, err := c.Get("humedales")
		require.NoError(t, err)
		assert.Equal(t, []models.Letter{models.LetterB, models.LetterD}, layer.TriggerLetters)
		assert.False(t, layer.AlertOnOverlap)
	})

	t.Run("unknown letter in file rejected", func(t *testing.T) {
		path := writeCatalog(t, `
layers:
  - id: snaspe
    display_name: SNASPE
    buffer_meters: 3000
    trigger_letters: [z]
    dataset_ref: gis.snaspe
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	t.Run("missing file rejected", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
	})
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
