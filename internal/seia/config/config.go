// Package config holds the legal rule tables the engine evaluates against:
// the Art. 11 letter table, attribute-derived trigger rules, the decision
// matrix factors, and the classifier bands. Legal thresholds change, so all
// of it is file-driven and validated once at startup. Validation failures
// are configuration errors and must never surface at request time.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
)

const weightTolerance = 1e-9

// Config is the full rules table.
type Config struct {
	Letters        map[models.Letter]LetterRule `yaml:"letters"`
	AttributeRules []AttributeRule              `yaml:"attribute_rules"`
	Matrix         MatrixConfig                 `yaml:"matrix"`
	Classifier     ClassifierConfig             `yaml:"classifier"`
}

// LetterRule configures one Art. 11 letter: its severity per match kind,
// its weight in aggregate scoring, and the actions alerts demand.
type LetterRule struct {
	Description    string          `yaml:"description"`
	LegalBasis     string          `yaml:"legal_basis"`
	Weight         float64         `yaml:"weight"`
	InsideSeverity models.Severity `yaml:"inside_severity"`
	// NearbySeverity applies to buffer-only matches. When omitted it
	// defaults to one rank below InsideSeverity.
	NearbySeverity models.Severity `yaml:"nearby_severity"`
	Actions        []string        `yaml:"actions"`
}

// Attribute rule conditions.
const (
	ConditionPopulatedArea    = "populated_area"
	ConditionPopulationNearby = "population_nearby"
)

// AttributeRule fires a letter from declared project attributes,
// independent of geometry.
type AttributeRule struct {
	Letter        models.Letter   `yaml:"letter"`
	Condition     string          `yaml:"when"`
	MinPopulation int             `yaml:"min_population"`
	Severity      models.Severity `yaml:"severity"`
	Detail        string          `yaml:"detail"`
}

// MatrixConfig is the weighted threshold table of the decision matrix.
type MatrixConfig struct {
	Factors []MatrixFactor `yaml:"factors"`
}

// MatrixFactor is one matrix dimension. Overrides allow per-mining-type
// thresholds; the base Threshold applies when no override matches.
type MatrixFactor struct {
	Factor    models.Factor      `yaml:"factor"`
	Threshold float64            `yaml:"threshold"`
	Weight    float64            `yaml:"weight"`
	Overrides map[string]float64 `yaml:"overrides"`
}

// ThresholdFor resolves the threshold for a mining type.
func (f MatrixFactor) ThresholdFor(miningType string) float64 {
	if t, ok := f.Overrides[miningType]; ok {
		return t
	}
	return f.Threshold
}

// ClassifierConfig holds the precedence-rule confidences and the matrix
// score bands.
type ClassifierConfig struct {
	CriticalConfidence       float64 `yaml:"critical_confidence"`
	MultipleHighConfidence   float64 `yaml:"multiple_high_confidence"`
	MultipleHighCount        int     `yaml:"multiple_high_count"`
	MatrixHighMin            float64 `yaml:"matrix_high_min"`
	MatrixHighConfidence     float64 `yaml:"matrix_high_confidence"`
	MatrixElevatedMin        float64 `yaml:"matrix_elevated_min"`
	MatrixElevatedConfidence float64 `yaml:"matrix_elevated_confidence"`
	MitigationMin            float64 `yaml:"mitigation_min"`
	MitigationConfidence     float64 `yaml:"mitigation_confidence"`
	DefaultConfidence        float64 `yaml:"default_confidence"`
}

// DefaultConfig returns the rules table with the statutory defaults.
func DefaultConfig() *Config {
	return &Config{
		Letters: map[models.Letter]LetterRule{
			models.LetterA: {
				Description:    "Riesgo para la salud de la población",
				LegalBasis:     "Art. 11 letra a), Ley 19.300",
				Weight:         0.9,
				InsideSeverity: models.SeverityCritica,
				NearbySeverity: models.SeverityAlta,
				Actions: []string{
					"Elaborar estudio de riesgo sanitario",
					"Definir plan de monitoreo de calidad del aire y agua",
				},
			},
			models.LetterB: {
				Description:    "Efectos adversos sobre recursos naturales renovables",
				LegalBasis:     "Art. 11 letra b), Ley 19.300",
				Weight:         0.7,
				InsideSeverity: models.SeverityAlta,
				NearbySeverity: models.SeverityMedia,
				Actions: []string{
					"Caracterizar línea de base de flora y fauna",
					"Evaluar disponibilidad hídrica de la cuenca",
				},
			},
			models.LetterC: {
				Description:    "Reasentamiento o alteración de sistemas de vida de comunidades",
				LegalBasis:     "Art. 11 letra c), Ley 19.300",
				Weight:         0.8,
				InsideSeverity: models.SeverityCritica,
				NearbySeverity: models.SeverityAlta,
				Actions: []string{
					"Iniciar proceso de consulta indígena (Convenio 169 OIT)",
					"Levantar catastro de comunidades afectadas",
				},
			},
			models.LetterD: {
				Description:    "Localización próxima a áreas protegidas, humedales o glaciares",
				LegalBasis:     "Art. 11 letra d), Ley 19.300",
				Weight:         0.9,
				InsideSeverity: models.SeverityCritica,
				NearbySeverity: models.SeverityAlta,
				Actions: []string{
					"Solicitar pronunciamiento de CONAF",
					"Evaluar compatibilidad con el plan de manejo del área protegida",
				},
			},
			models.LetterE: {
				Description:    "Alteración del valor paisajístico o turístico",
				LegalBasis:     "Art. 11 letra e), Ley 19.300",
				Weight:         0.5,
				InsideSeverity: models.SeverityAlta,
				NearbySeverity: models.SeverityMedia,
				Actions: []string{
					"Elaborar estudio de impacto visual",
				},
			},
			models.LetterF: {
				Description:    "Alteración de monumentos o patrimonio cultural",
				LegalBasis:     "Art. 11 letra f), Ley 19.300",
				Weight:         0.6,
				InsideSeverity: models.SeverityAlta,
				NearbySeverity: models.SeverityMedia,
				Actions: []string{
					"Solicitar pronunciamiento del Consejo de Monumentos Nacionales",
					"Realizar prospección arqueológica",
				},
			},
		},
		AttributeRules: []AttributeRule{
			{
				Letter:    models.LetterA,
				Condition: ConditionPopulatedArea,
				Severity:  models.SeverityCritica,
				Detail:    "El proyecto se emplaza en un área poblada declarada",
			},
			{
				Letter:        models.LetterA,
				Condition:     ConditionPopulationNearby,
				MinPopulation: 100,
				Severity:      models.SeverityAlta,
				Detail:        "Población cercana declarada supera el umbral de riesgo",
			},
		},
		Matrix: MatrixConfig{
			Factors: []MatrixFactor{
				{Factor: models.FactorSurface, Threshold: 500, Weight: 0.30},
				{Factor: models.FactorWater, Threshold: 100, Weight: 0.25},
				{Factor: models.FactorWorkforce, Threshold: 500, Weight: 0.15},
				{Factor: models.FactorInvestment, Threshold: 100, Weight: 0.15},
				{Factor: models.FactorLifetime, Threshold: 20, Weight: 0.15},
			},
		},
		Classifier: ClassifierConfig{
			CriticalConfidence:       0.95,
			MultipleHighConfidence:   0.85,
			MultipleHighCount:        2,
			MatrixHighMin:            0.75,
			MatrixHighConfidence:     0.80,
			MatrixElevatedMin:        0.50,
			MatrixElevatedConfidence: 0.65,
			MitigationMin:            0.30,
			MitigationConfidence:     0.60,
			DefaultConfidence:        0.85,
		},
	}
}

// Load reads and validates a rules file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "reading rules file")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "parsing rules file")
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize fills defaults that the file may omit.
func (c *Config) normalize() {
	for letter, rule := range c.Letters {
		if rule.NearbySeverity == "" && rule.InsideSeverity.IsValid() {
			rule.NearbySeverity = rule.InsideSeverity.OneBelow()
			c.Letters[letter] = rule
		}
	}
	def := DefaultConfig().Classifier
	if c.Classifier == (ClassifierConfig{}) {
		c.Classifier = def
	}
	if c.Classifier.MultipleHighCount == 0 {
		c.Classifier.MultipleHighCount = def.MultipleHighCount
	}
}

// Validate checks the whole table. Any failure is fatal at startup.
func (c *Config) Validate() error {
	for _, letter := range models.AllLetters {
		rule, ok := c.Letters[letter]
		if !ok {
			return dErrors.Newf(dErrors.CodeConfiguration, "letter %s has no rule", letter)
		}
		if err := rule.validate(letter); err != nil {
			return err
		}
	}
	for letter := range c.Letters {
		if !letter.IsValid() {
			return dErrors.Newf(dErrors.CodeConfiguration, "unknown letter %q in rules table", letter)
		}
	}

	for i, rule := range c.AttributeRules {
		if !rule.Letter.IsValid() {
			return dErrors.Newf(dErrors.CodeConfiguration, "attribute rule %d: unknown letter %q", i, rule.Letter)
		}
		if rule.Condition != ConditionPopulatedArea && rule.Condition != ConditionPopulationNearby {
			return dErrors.Newf(dErrors.CodeConfiguration, "attribute rule %d: unknown condition %q", i, rule.Condition)
		}
		if !rule.Severity.IsValid() {
			return dErrors.Newf(dErrors.CodeConfiguration, "attribute rule %d: invalid severity %q", i, rule.Severity)
		}
		if rule.Condition == ConditionPopulationNearby && rule.MinPopulation <= 0 {
			return dErrors.Newf(dErrors.CodeConfiguration, "attribute rule %d: min_population must be positive", i)
		}
	}

	if err := c.Matrix.validate(); err != nil {
		return err
	}
	return c.Classifier.validate()
}

func (r LetterRule) validate(letter models.Letter) error {
	if !r.InsideSeverity.IsValid() {
		return dErrors.Newf(dErrors.CodeConfiguration, "letter %s: invalid inside_severity %q", letter, r.InsideSeverity)
	}
	if !r.NearbySeverity.IsValid() {
		return dErrors.Newf(dErrors.CodeConfiguration, "letter %s: invalid nearby_severity %q", letter, r.NearbySeverity)
	}
	if r.Weight < 0 || r.Weight > 1 {
		return dErrors.Newf(dErrors.CodeConfiguration, "letter %s: weight %.3f outside [0,1]", letter, r.Weight)
	}
	if r.Description == "" {
		return dErrors.Newf(dErrors.CodeConfiguration, "letter %s: description is required", letter)
	}
	return nil
}

func (m MatrixConfig) validate() error {
	if len(m.Factors) != len(models.MatrixFactors) {
		return dErrors.Newf(dErrors.CodeConfiguration,
			"matrix must define exactly %d factors, got %d", len(models.MatrixFactors), len(m.Factors))
	}
	seen := make(map[models.Factor]bool, len(m.Factors))
	var sum float64
	for _, f := range m.Factors {
		if !knownFactor(f.Factor) {
			return dErrors.Newf(dErrors.CodeConfiguration, "unknown matrix factor %q", f.Factor)
		}
		if seen[f.Factor] {
			return dErrors.Newf(dErrors.CodeConfiguration, "duplicate matrix factor %q", f.Factor)
		}
		seen[f.Factor] = true
		if f.Threshold <= 0 {
			return dErrors.Newf(dErrors.CodeConfiguration, "factor %s: threshold must be positive", f.Factor)
		}
		if f.Weight <= 0 || f.Weight > 1 {
			return dErrors.Newf(dErrors.CodeConfiguration, "factor %s: weight %.3f outside (0,1]", f.Factor, f.Weight)
		}
		for mt, override := range f.Overrides {
			if override <= 0 {
				return dErrors.Newf(dErrors.CodeConfiguration, "factor %s: override for %q must be positive", f.Factor, mt)
			}
		}
		sum += f.Weight
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return dErrors.Newf(dErrors.CodeConfiguration, "matrix weights sum to %s, want 1.0", fmtFloat(sum))
	}
	return nil
}

func (c ClassifierConfig) validate() error {
	confidences := []float64{
		c.CriticalConfidence, c.MultipleHighConfidence, c.MatrixHighConfidence,
		c.MatrixElevatedConfidence, c.MitigationConfidence, c.DefaultConfidence,
	}
	for _, conf := range confidences {
		if conf <= 0 || conf > 1 {
			return dErrors.Newf(dErrors.CodeConfiguration, "classifier confidence %s outside (0,1]", fmtFloat(conf))
		}
	}
	if c.MultipleHighCount < 1 {
		return dErrors.New(dErrors.CodeConfiguration, "multiple_high_count must be at least 1")
	}
	if !(0 < c.MitigationMin && c.MitigationMin < c.MatrixElevatedMin && c.MatrixElevatedMin < c.MatrixHighMin && c.MatrixHighMin <= 1) {
		return dErrors.New(dErrors.CodeConfiguration, "classifier score bands must satisfy 0 < mitigation < elevated < high <= 1")
	}
	return nil
}

func knownFactor(f models.Factor) bool {
	for _, known := range models.MatrixFactors {
		if f == known {
			return true
		}
	}
	return false
}

func fmtFloat(v float64) string { return fmt.Sprintf("%.4f", v) }
