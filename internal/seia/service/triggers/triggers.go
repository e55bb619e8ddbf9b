// Package triggers maps spatial findings and declared project attributes to
// the set of activated Art. 11 conditions. Evaluation is table-driven: the
// catalog says which letters a layer can activate, the rules config says how
// severe each activation is. The package is pure; callers own all I/O.
package triggers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/catalog"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/config"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	pstrings "github.com/Ignacio1972/mineria-sub004/pkg/platform/strings"
)

// candidate is one not-yet-merged trigger source for a letter.
type candidate struct {
	severity models.Severity
	detail   string
}

// Evaluate derives the Art. 11 trigger set from intersection results and
// declared attributes. Spatial and attribute sources for the same letter are
// merged into a single trigger: the higher severity wins and the details are
// joined. Intersections for layers absent from the catalog are skipped; the
// intersector never produces them. The result is ordered by severity
// descending, then letter ascending.
func Evaluate(cfg *config.Config, cat *catalog.Catalog, intersections []models.IntersectionResult, attrs models.ProjectAttributes) []models.Trigger {
	byLetter := make(map[models.Letter][]candidate)

	for _, res := range intersections {
		layer, err := cat.Get(res.LayerID)
		if err != nil {
			continue
		}
		for _, letter := range layer.TriggerLetters {
			rule, ok := cfg.Letters[letter]
			if !ok {
				continue
			}
			byLetter[letter] = append(byLetter[letter], spatialCandidate(rule, layer, res))
		}
	}

	for _, rule := range cfg.AttributeRules {
		cand, ok := attributeCandidate(rule, attrs)
		if !ok {
			continue
		}
		byLetter[rule.Letter] = append(byLetter[rule.Letter], cand)
	}

	out := make([]models.Trigger, 0, len(byLetter))
	for letter, cands := range byLetter {
		rule, ok := cfg.Letters[letter]
		if !ok {
			continue
		}
		out = append(out, merge(letter, rule, cands))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Severity.Rank() != out[j].Severity.Rank() {
			return out[i].Severity.Rank() > out[j].Severity.Rank()
		}
		return out[i].Letter < out[j].Letter
	})
	return out
}

func spatialCandidate(rule config.LetterRule, layer models.GeoLayer, res models.IntersectionResult) candidate {
	if res.Inside {
		return candidate{
			severity: rule.InsideSeverity,
			detail: fmt.Sprintf("Intersección con %s (%s): %.2f ha afectadas",
				res.FeatureName, layer.DisplayName, res.AffectedAreaHa),
		}
	}
	return candidate{
		severity: rule.NearbySeverity,
		detail: fmt.Sprintf("Proximidad a %s (%s): %.0f m",
			res.FeatureName, layer.DisplayName, *res.DistanceMeters),
	}
}

// attributeCandidate evaluates one attribute rule against the declared
// attributes. Unknown conditions are rejected by config validation, so the
// default branch is unreachable in a loaded config.
func attributeCandidate(rule config.AttributeRule, attrs models.ProjectAttributes) (candidate, bool) {
	switch rule.Condition {
	case config.ConditionPopulatedArea:
		if !attrs.InPopulatedArea {
			return candidate{}, false
		}
	case config.ConditionPopulationNearby:
		if attrs.NearbyPopulationCount < rule.MinPopulation {
			return candidate{}, false
		}
	default:
		return candidate{}, false
	}
	return candidate{severity: rule.Severity, detail: rule.Detail}, true
}

// merge collapses a letter's candidates into one trigger. Severity is the
// maximum across sources; details are deduplicated and joined in arrival
// order so spatial evidence precedes attribute evidence.
func merge(letter models.Letter, rule config.LetterRule, cands []candidate) models.Trigger {
	severity := cands[0].severity
	details := make([]string, 0, len(cands))
	for _, c := range cands {
		if c.severity.Rank() > severity.Rank() {
			severity = c.severity
		}
		details = append(details, c.detail)
	}

	return models.Trigger{
		Letter:      letter,
		Description: rule.Description,
		Detail:      strings.Join(pstrings.DedupeAndTrim(details), "; "),
		Severity:    severity,
		LegalBasis:  rule.LegalBasis,
		Weight:      rule.Weight,
	}
}
