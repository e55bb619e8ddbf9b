// Package classify combines triggers and the matrix score into the final
// DIA/EIA verdict through ordered rule precedence: the first matching rule
// wins and later rules are never consulted.
//
// Classify is a pure function of its inputs. Reproducibility matters here:
// the verdict is audited, so identical triggers and score must always
// produce an identical Classification, justification text included.
package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/config"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
)

// Classify applies the precedence rules from the classifier configuration.
func Classify(cfg config.ClassifierConfig, triggers []models.Trigger, score models.MatrixScore) models.Classification {
	critical := countAtLeast(triggers, models.SeverityCritica)
	high := countAtLeast(triggers, models.SeverityAlta)

	var c models.Classification
	switch {
	case critical > 0:
		c = models.Classification{
			Pathway:    models.PathwayEIA,
			Confidence: cfg.CriticalConfidence,
			Rule:       models.RuleCriticalTrigger,
		}
	case high >= cfg.MultipleHighCount:
		c = models.Classification{
			Pathway:    models.PathwayEIA,
			Confidence: cfg.MultipleHighConfidence,
			Rule:       models.RuleMultipleHigh,
		}
	case score.TotalScore >= cfg.MatrixHighMin:
		c = models.Classification{
			Pathway:    models.PathwayEIA,
			Confidence: cfg.MatrixHighConfidence,
			Rule:       models.RuleMatrixHigh,
		}
	case score.TotalScore >= cfg.MatrixElevatedMin:
		c = models.Classification{
			Pathway:    models.PathwayEIA,
			Confidence: cfg.MatrixElevatedConfidence,
			Rule:       models.RuleMatrixElevated,
		}
	case score.TotalScore >= cfg.MitigationMin && len(triggers) > 0:
		c = models.Classification{
			Pathway:            models.PathwayDIA,
			Confidence:         cfg.MitigationConfidence,
			Rule:               models.RuleMitigableDIA,
			RequiresMitigation: true,
		}
	default:
		c = models.Classification{
			Pathway:    models.PathwayDIA,
			Confidence: cfg.DefaultConfidence,
			Rule:       models.RuleDefaultDIA,
		}
	}

	c.MatrixScore = score.TotalScore
	c.Justification = buildJustification(c, triggers, score)
	return c
}

func countAtLeast(triggers []models.Trigger, floor models.Severity) int {
	n := 0
	for _, t := range triggers {
		if t.Severity.AtLeast(floor) {
			n++
		}
	}
	return n
}

// buildJustification assembles the template-based explanation: which rule
// fired plus the top contributing triggers and factors. Free-text narrative
// belongs to the external report generator, not here.
func buildJustification(c models.Classification, triggers []models.Trigger, score models.MatrixScore) string {
	var b strings.Builder

	switch c.Rule {
	case models.RuleCriticalTrigger:
		b.WriteString("El proyecto debe ingresar como EIA: presenta al menos un efecto del Art. 11 con severidad CRITICA.")
	case models.RuleMultipleHigh:
		b.WriteString("El proyecto debe ingresar como EIA: concurren múltiples efectos del Art. 11 con severidad ALTA o superior.")
	case models.RuleMatrixHigh:
		b.WriteString(fmt.Sprintf("El proyecto debe ingresar como EIA: la matriz de dimensionamiento alcanza %.2f, sobre el umbral superior.", score.TotalScore))
	case models.RuleMatrixElevated:
		b.WriteString(fmt.Sprintf("El proyecto debe ingresar como EIA: la matriz de dimensionamiento alcanza %.2f, en el tramo elevado.", score.TotalScore))
	case models.RuleMitigableDIA:
		b.WriteString(fmt.Sprintf("El proyecto puede ingresar como DIA con medidas de mitigación comprometidas: matriz en %.2f con efectos del Art. 11 acotados.", score.TotalScore))
	case models.RuleDefaultDIA:
		b.WriteString("El proyecto puede ingresar como DIA: no se identifican efectos del Art. 11 ni dimensiones sobre umbral.")
	}

	if len(triggers) > 0 {
		top := topTriggers(triggers, 3)
		parts := make([]string, 0, len(top))
		for _, t := range top {
			parts = append(parts, fmt.Sprintf("letra %s) %s [%s]", t.Letter, t.Description, t.Severity))
		}
		b.WriteString(" Efectos principales: ")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(".")
	}

	exceeded := make([]string, 0, len(score.Factors))
	for _, f := range score.Factors {
		if f.Exceeded {
			exceeded = append(exceeded, fmt.Sprintf("%s (%.2f)", factorLabel(f.Factor), f.Contribution))
		}
	}
	if len(exceeded) > 0 {
		b.WriteString(" Dimensiones sobre umbral: ")
		b.WriteString(strings.Join(exceeded, ", "))
		b.WriteString(".")
	}

	return b.String()
}

// topTriggers returns up to n triggers ordered by severity descending, then
// letter ascending. The sort is stable and total so the justification text
// is reproducible.
func topTriggers(triggers []models.Trigger, n int) []models.Trigger {
	sorted := make([]models.Trigger, len(triggers))
	copy(sorted, triggers)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity.Rank() != sorted[j].Severity.Rank() {
			return sorted[i].Severity.Rank() > sorted[j].Severity.Rank()
		}
		return sorted[i].Letter < sorted[j].Letter
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func factorLabel(f models.Factor) string {
	switch f {
	case models.FactorSurface:
		return "superficie"
	case models.FactorWater:
		return "uso de agua"
	case models.FactorWorkforce:
		return "mano de obra"
	case models.FactorInvestment:
		return "inversión"
	case models.FactorLifetime:
		return "vida útil"
	}
	return string(f)
}
