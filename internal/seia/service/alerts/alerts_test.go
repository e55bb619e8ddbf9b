package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/catalog"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/config"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	id "github.com/Ignacio1972/mineria-sub004/pkg/domain"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]models.GeoLayer{
		{
			ID:             id.LayerID("glaciares"),
			DisplayName:    "Glaciares",
			BufferMeters:   2000,
			TriggerLetters: []models.Letter{models.LetterD},
			DatasetRef:     "glaciares_v2",
			AlertOnOverlap: true,
		},
		{
			ID:             id.LayerID("caminos"),
			DisplayName:    "Red Vial",
			BufferMeters:   100,
			TriggerLetters: []models.Letter{models.LetterE},
			DatasetRef:     "vialidad",
		},
	})
	require.NoError(t, err)
	return cat
}

func TestSynthesize_FromTriggers(t *testing.T) {
	cfg := config.DefaultConfig()
	cat := testCatalog(t)

	trigs := []models.Trigger{
		{
			Letter:      models.LetterD,
			Description: cfg.Letters[models.LetterD].Description,
			Detail:      "Intersección con Glaciar Tapado",
			Severity:    models.SeverityCritica,
		},
	}
	got := Synthesize(cfg, cat, trigs, nil)

	require.Len(t, got, 1)
	a := got[0]
	assert.NotEqual(t, id.AlertID{}, a.ID)
	assert.Equal(t, models.SeverityCritica, a.Severity)
	assert.Equal(t, models.AlertCategoryTrigger, a.Category)
	assert.Contains(t, a.Title, "Letra d)")
	assert.Equal(t, "Intersección con Glaciar Tapado", a.Description)
	assert.Equal(t, cfg.Letters[models.LetterD].Actions, a.RequiredActions)
}

func TestSynthesize_FromOverlaps(t *testing.T) {
	cfg := config.DefaultConfig()
	cat := testCatalog(t)

	t.Run("alert-worthy inside match produces a layer alert", func(t *testing.T) {
		got := Synthesize(cfg, cat, nil, []models.IntersectionResult{
			models.NewOverlap(id.LayerID("glaciares"), "Glaciar Tapado", 3.25, 0.021),
		})

		require.Len(t, got, 1)
		a := got[0]
		assert.Equal(t, models.AlertCategoryLayer, a.Category)
		assert.Equal(t, models.SeverityAlta, a.Severity)
		assert.Contains(t, a.Title, "Glaciares")
		assert.Contains(t, a.Description, "3.25 ha")
		assert.Contains(t, a.Description, "2.1%")
		assert.NotEmpty(t, a.RequiredActions)
	})

	t.Run("layers without the overlap flag stay silent", func(t *testing.T) {
		got := Synthesize(cfg, cat, nil, []models.IntersectionResult{
			models.NewOverlap(id.LayerID("caminos"), "Ruta B-55", 0.4, 0.002),
		})
		assert.Empty(t, got)
	})

	t.Run("proximity matches never produce layer alerts", func(t *testing.T) {
		got := Synthesize(cfg, cat, nil, []models.IntersectionResult{
			models.NewProximity(id.LayerID("glaciares"), "Glaciar Tapado", 1400),
		})
		assert.Empty(t, got)
	})
}

func TestSynthesize_Ordering(t *testing.T) {
	cfg := config.DefaultConfig()
	cat := testCatalog(t)

	trigs := []models.Trigger{
		{Letter: models.LetterE, Description: "paisaje", Severity: models.SeverityMedia},
		{Letter: models.LetterD, Description: "glaciar", Severity: models.SeverityCritica},
		{Letter: models.LetterB, Description: "recursos", Severity: models.SeverityMedia},
	}
	overlap := models.NewOverlap(id.LayerID("glaciares"), "Glaciar Tapado", 3.25, 0.021)

	got := Synthesize(cfg, cat, trigs, []models.IntersectionResult{overlap})
	require.Len(t, got, 4)

	// CRITICA first, then the ALTA layer alert, then the two MEDIA triggers
	// in generation order.
	assert.Equal(t, models.SeverityCritica, got[0].Severity)
	assert.Equal(t, models.AlertCategoryLayer, got[1].Category)
	assert.Contains(t, got[2].Title, "Letra e)")
	assert.Contains(t, got[3].Title, "Letra b)")
}

func TestSynthesize_NoInputs(t *testing.T) {
	got := Synthesize(config.DefaultConfig(), testCatalog(t), nil, nil)
	assert.Empty(t, got)
}
