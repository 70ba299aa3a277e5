package domain

// FactorTable maps an activity type to its emission factor in kg CO2 per
// unit (km, kWh, meal). Unknown types resolve to factor 0 so new or
// miscellaneous types never break computation.
type FactorTable map[string]float64

// DefaultFactors returns a fresh copy of the built-in factor table. Changing
// the table only affects emissions computed afterwards; stored emission
// values are never recalculated.
func DefaultFactors() FactorTable {
	return FactorTable{
		// Transport (per km)
		"car_petrol":   0.12,
		"car_diesel":   0.14,
		"car_electric": 0.05,
		"bus":          0.05,
		"train":        0.03,
		"flight_short": 0.255,
		"flight_long":  0.195,
		"bicycle":      0,
		"walking":      0,
		// Energy (per kWh)
		"electricity": 0.5,
		"natural_gas": 0.2,
		"heating_oil": 0.27,
		// Diet (per meal)
		"beef":       6.0,
		"pork":       3.5,
		"chicken":    2.5,
		"fish":       2.0,
		"vegetarian": 1.5,
		"vegan":      0.9,
	}
}
