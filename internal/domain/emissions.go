package domain

import "math"

// Calculator converts a logged quantity into kg CO2 using an immutable
// factor table injected at construction time.
type Calculator struct {
	factors FactorTable
}

// NewCalculator builds a Calculator over the given table. Callers must not
// mutate the table after handing it over.
func NewCalculator(factors FactorTable) Calculator {
	return Calculator{factors: factors}
}

// Emission returns round2(factor * value). Types absent from the table
// yield 0 rather than an error.
func (c Calculator) Emission(activityType string, value float64) float64 {
	return round2(c.factors[activityType] * value)
}

// round2 rounds to two decimals, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
