// Package alerts turns triggers and spatial findings into the user-facing
// alert records a reviewer acts on. Synthesis is pure; alert IDs are the
// only generated state.
package alerts

import (
	"fmt"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/catalog"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/config"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	id "github.com/Ignacio1972/mineria-sub004/pkg/domain"
)

// Synthesize builds one alert per trigger, with required actions from the
// letter's action template, plus one alert per inside match on a layer the
// catalog flags as alert-worthy. Alerts are grouped by severity from CRITICA
// down to INFO; within a group, generation order is preserved (triggers
// first, then layer overlaps in intersection order).
func Synthesize(cfg *config.Config, cat *catalog.Catalog, trigs []models.Trigger, intersections []models.IntersectionResult) []models.Alert {
	generated := make([]models.Alert, 0, len(trigs)+len(intersections))

	for _, trig := range trigs {
		generated = append(generated, models.Alert{
			ID:              id.NewAlertID(),
			Severity:        trig.Severity,
			Category:        models.AlertCategoryTrigger,
			Title:           fmt.Sprintf("Letra %s): %s", trig.Letter, trig.Description),
			Description:     trig.Detail,
			RequiredActions: cfg.Letters[trig.Letter].Actions,
		})
	}

	for _, res := range intersections {
		if !res.Inside {
			continue
		}
		layer, err := cat.Get(res.LayerID)
		if err != nil || !layer.AlertOnOverlap {
			continue
		}
		generated = append(generated, models.Alert{
			ID:       id.NewAlertID(),
			Severity: models.SeverityAlta,
			Category: models.AlertCategoryLayer,
			Title:    fmt.Sprintf("Intersección directa con %s", layer.DisplayName),
			Description: fmt.Sprintf("El polígono del proyecto intersecta %s: %.2f ha afectadas (%.1f%% de la superficie del proyecto)",
				res.FeatureName, res.AffectedAreaHa, res.IntersectionFraction*100),
			RequiredActions: []string{
				fmt.Sprintf("Verificar deslinde oficial de %s", res.FeatureName),
				"Evaluar relocalización parcial del proyecto",
			},
		})
	}

	// Stable severity bucketing; sort.SliceStable would also work but the
	// bucket pass keeps the ordering rule explicit.
	out := make([]models.Alert, 0, len(generated))
	for _, severity := range models.SeveritiesDescending {
		for _, a := range generated {
			if a.Severity == severity {
				out = append(out, a)
			}
		}
	}
	return out
}
