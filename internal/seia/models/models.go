// Package models defines the entities exchanged between the SEIA engine
// stages: catalog layers, project geometry and attributes, intersection
// results, Art. 11 triggers, the decision matrix score, the final
// classification, and synthesized alerts.
package models

import (
	"time"

	id "github.com/Ignacio1972/mineria-sub004/pkg/domain"
	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
	"github.com/Ignacio1972/mineria-sub004/pkg/geo"
)

// Severity orders the impact of a trigger or alert.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityBaja    Severity = "BAJA"
	SeverityMedia   Severity = "MEDIA"
	SeverityAlta    Severity = "ALTA"
	SeverityCritica Severity = "CRITICA"
)

var severityRanks = map[Severity]int{
	SeverityInfo:    0,
	SeverityBaja:    1,
	SeverityMedia:   2,
	SeverityAlta:    3,
	SeverityCritica: 4,
}

// SeveritiesDescending lists all severities from most to least severe.
var SeveritiesDescending = []Severity{
	SeverityCritica, SeverityAlta, SeverityMedia, SeverityBaja, SeverityInfo,
}

// Rank returns the ordering position of the severity, INFO lowest.
func (s Severity) Rank() int { return severityRanks[s] }

// IsValid checks if the severity is one of the supported enum values.
func (s Severity) IsValid() bool {
	_, ok := severityRanks[s]
	return ok
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// OneBelow returns the severity one rank below s, saturating at INFO.
func (s Severity) OneBelow() Severity {
	r := s.Rank() - 1
	for sev, rank := range severityRanks {
		if rank == r {
			return sev
		}
	}
	return SeverityInfo
}

// ParseSeverity creates a Severity from a string, validating it.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid severity %q", s)
	}
	return sev, nil
}

// Pathway is the SEIA entry route the project must follow.
type Pathway string

const (
	PathwayDIA Pathway = "DIA"
	PathwayEIA Pathway = "EIA"
)

// IsValid checks if the pathway is one of the two SEIA routes.
func (p Pathway) IsValid() bool { return p == PathwayDIA || p == PathwayEIA }

// Letter is one of the six Art. 11 trigger letters.
type Letter string

const (
	LetterA Letter = "a"
	LetterB Letter = "b"
	LetterC Letter = "c"
	LetterD Letter = "d"
	LetterE Letter = "e"
	LetterF Letter = "f"
)

// AllLetters lists the Art. 11 letters in statutory order.
var AllLetters = []Letter{LetterA, LetterB, LetterC, LetterD, LetterE, LetterF}

// IsValid checks if the letter is within a-f.
func (l Letter) IsValid() bool {
	switch l {
	case LetterA, LetterB, LetterC, LetterD, LetterE, LetterF:
		return true
	}
	return false
}

// ParseLetter creates a Letter from a string, validating it.
func ParseLetter(s string) (Letter, error) {
	l := Letter(s)
	if !l.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid article 11 letter %q", s)
	}
	return l, nil
}

// GeoLayer is one catalog entry. Loaded once from configuration and
// read-only thereafter.
type GeoLayer struct {
	ID             id.LayerID
	DisplayName    string
	BufferMeters   float64
	TriggerLetters []Letter
	// DatasetRef is the opaque handle the geometry store resolves to its
	// backing dataset (a PostGIS table key for the SQL store).
	DatasetRef     string
	AlertOnOverlap bool
}

// Triggers reports whether the layer can activate the given letter.
func (l GeoLayer) Triggers(letter Letter) bool {
	for _, cand := range l.TriggerLetters {
		if cand == letter {
			return true
		}
	}
	return false
}

// ProjectGeometry is the project footprint: one or more polygons in
// geographic coordinates, with metric area and centroid derived at
// construction. Instances are never mutated after NewProjectGeometry.
type ProjectGeometry struct {
	Polygons     []geo.Ring
	AreaHectares float64
	Centroid     geo.Point
}

// NewProjectGeometry validates the rings and derives area and centroid.
// Empty input, zero-area rings, open rings, and self-intersecting rings are
// rejected with an invalid-geometry error.
func NewProjectGeometry(polygons []geo.Ring) (*ProjectGeometry, error) {
	if len(polygons) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidGeometry, "geometry has no polygons")
	}

	var totalM2 float64
	largestArea := -1.0
	var centroid geo.Point
	for i, ring := range polygons {
		if err := geo.ValidateRing(ring); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidGeometry, "invalid polygon ring")
		}
		area := geo.RingAreaM2(ring)
		totalM2 += area
		if area > largestArea {
			largestArea = area
			centroid = geo.Centroid(polygons[i])
		}
	}
	if totalM2 == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidGeometry, "geometry encloses no area")
	}

	return &ProjectGeometry{
		Polygons:     polygons,
		AreaHectares: totalM2 / 10000,
		Centroid:     centroid,
	}, nil
}

// ProjectAttributes are the declared facts about the project. Nil numeric
// fields mean "not declared" and are treated as not exceeding any threshold.
type ProjectAttributes struct {
	SurfaceHectares *float64
	WaterUseLPS     *float64
	PeakWorkforce   *int
	InvestmentMUSD  *float64
	LifetimeYears   *float64

	MiningType     string
	PrimaryMineral string

	// Population-risk declarations feed the attribute-derived letter a)
	// rules independently of geometry.
	InPopulatedArea       bool
	NearbyPopulationCount int
}

// IntersectionResult is one (layer, matched feature) spatial finding.
// Exactly one of Inside/Nearby holds: overlaps carry area figures, proximity
// matches carry the distance to the feature.
type IntersectionResult struct {
	LayerID     id.LayerID
	FeatureName string

	Inside bool

	// Overlap figures, set iff Inside.
	AffectedAreaHa       float64
	IntersectionFraction float64

	// DistanceMeters is set iff the match is proximity-only.
	DistanceMeters *float64
}

// Nearby reports a buffer-only match.
func (r IntersectionResult) Nearby() bool { return !r.Inside }

// NewOverlap builds an intersection result for a feature the project
// footprint overlaps.
func NewOverlap(layerID id.LayerID, featureName string, affectedHa, fraction float64) IntersectionResult {
	return IntersectionResult{
		LayerID:              layerID,
		FeatureName:          featureName,
		Inside:               true,
		AffectedAreaHa:       affectedHa,
		IntersectionFraction: fraction,
	}
}

// NewProximity builds an intersection result for a feature within the layer
// buffer but not overlapping.
func NewProximity(layerID id.LayerID, featureName string, distanceMeters float64) IntersectionResult {
	return IntersectionResult{
		LayerID:        layerID,
		FeatureName:    featureName,
		DistanceMeters: &distanceMeters,
	}
}

// LayerFailure marks a layer whose external query failed or timed out. The
// analysis proceeds without it; callers see which layers are incomplete.
type LayerFailure struct {
	LayerID id.LayerID
	Reason  string
}

// Trigger is one activated Art. 11 condition.
type Trigger struct {
	Letter      Letter
	Description string
	Detail      string
	Severity    Severity
	LegalBasis  string
	Weight      float64
}

// Factor names one decision-matrix dimension.
type Factor string

const (
	FactorSurface    Factor = "surface"
	FactorWater      Factor = "water"
	FactorWorkforce  Factor = "workforce"
	FactorInvestment Factor = "investment"
	FactorLifetime   Factor = "lifetime"
)

// MatrixFactors lists the factors in canonical scoring order.
var MatrixFactors = []Factor{
	FactorSurface, FactorWater, FactorWorkforce, FactorInvestment, FactorLifetime,
}

// FactorScore is one factor's threshold test outcome.
type FactorScore struct {
	Factor       Factor
	RawValue     *float64
	Threshold    float64
	Weight       float64
	Exceeded     bool
	Contribution float64
}

// MatrixScore aggregates the five factor tests. TotalScore is the sum of
// contributions and lies in [0,1].
type MatrixScore struct {
	Factors    []FactorScore
	TotalScore float64
}

// RuleTag names the classification rule that fired, in precedence order.
type RuleTag string

const (
	RuleCriticalTrigger RuleTag = "critical_trigger"
	RuleMultipleHigh    RuleTag = "multiple_high_triggers"
	RuleMatrixHigh      RuleTag = "matrix_high"
	RuleMatrixElevated  RuleTag = "matrix_elevated"
	RuleMitigableDIA    RuleTag = "dia_with_mitigation"
	RuleDefaultDIA      RuleTag = "dia_default"
)

// Classification is the engine verdict: pathway, confidence, and a
// template-assembled justification. Confidence-level bucketing for display
// is a UI concern; the engine emits the raw confidence and the rule tag.
type Classification struct {
	Pathway            Pathway
	Confidence         float64
	Rule               RuleTag
	RequiresMitigation bool
	Justification      string
	MatrixScore        float64
}

// Alert is a user-facing warning derived from a trigger or a layer overlap.
type Alert struct {
	ID              id.AlertID
	Severity        Severity
	Category        string
	Title           string
	Description     string
	RequiredActions []string
}

// Alert categories.
const (
	AlertCategoryTrigger = "articulo_11"
	AlertCategoryLayer   = "interseccion_capa"
)

// AnalysisResult is the full output of one engine invocation.
type AnalysisResult struct {
	ID             id.AnalysisID
	Intersections  []IntersectionResult
	DegradedLayers []LayerFailure
	Triggers       []Trigger
	MatrixScore    MatrixScore
	Classification Classification
	Alerts         []Alert
	EvaluatedAt    time.Time
}
