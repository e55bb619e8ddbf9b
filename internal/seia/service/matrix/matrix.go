// Package matrix implements the decision matrix scorer: five independent
// threshold tests over declared project attributes, each contributing its
// fixed weight when exceeded.
//
// Score is pure domain logic - no I/O, no hidden state. Identical inputs
// produce bit-identical scores, which downstream audit depends on.
package matrix

import (
	"github.com/Ignacio1972/mineria-sub004/internal/seia/config"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
)

// Score evaluates the matrix factors against the attributes. Missing
// attribute values never exceed their threshold: a partial attribute set
// still yields a valid score.
func Score(cfg config.MatrixConfig, attrs models.ProjectAttributes) models.MatrixScore {
	factors := make([]models.FactorScore, 0, len(cfg.Factors))
	var total float64
	for _, fc := range cfg.Factors {
		raw := rawValue(fc.Factor, attrs)
		threshold := fc.ThresholdFor(attrs.MiningType)

		fs := models.FactorScore{
			Factor:    fc.Factor,
			RawValue:  raw,
			Threshold: threshold,
			Weight:    fc.Weight,
		}
		if raw != nil && *raw > threshold {
			fs.Exceeded = true
			fs.Contribution = fc.Weight
			total += fc.Weight
		}
		factors = append(factors, fs)
	}
	return models.MatrixScore{Factors: factors, TotalScore: total}
}

// rawValue extracts the attribute backing a factor. Nil means undeclared.
func rawValue(f models.Factor, attrs models.ProjectAttributes) *float64 {
	switch f {
	case models.FactorSurface:
		return attrs.SurfaceHectares
	case models.FactorWater:
		return attrs.WaterUseLPS
	case models.FactorWorkforce:
		if attrs.PeakWorkforce == nil {
			return nil
		}
		v := float64(*attrs.PeakWorkforce)
		return &v
	case models.FactorInvestment:
		return attrs.InvestmentMUSD
	case models.FactorLifetime:
		return attrs.LifetimeYears
	}
	return nil
}
