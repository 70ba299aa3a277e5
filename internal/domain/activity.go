// Package domain defines the carbon accounting entities and the emission
// aggregation engine.
package domain

import "time"

// Category buckets an activity for breakdown reporting.
type Category string

const (
	CategoryTransport Category = "transport"
	CategoryEnergy    Category = "energy"
	CategoryDiet      Category = "diet"
	CategoryOther     Category = "other"
)

// Categories returns the closed category set in reporting order.
func Categories() []Category {
	return []Category{CategoryTransport, CategoryEnergy, CategoryDiet, CategoryOther}
}

// Known reports whether the category belongs to the closed set. Rows at rest
// may predate a schema change, so readers treat anything else as "other".
func (c Category) Known() bool {
	switch c {
	case CategoryTransport, CategoryEnergy, CategoryDiet, CategoryOther:
		return true
	}
	return false
}

// Activity is the canonical log entry stored in PostgreSQL. Emission is fixed
// at write time from (Type, Value) and is never recomputed when aggregating.
type Activity struct {
	ID        string
	UserID    string
	Category  Category
	Type      string
	Value     float64
	Unit      string
	Emission  float64   // kg CO2
	Date      time.Time // calendar date, midnight in the reporting location
	Notes     string
	CreatedAt time.Time
}

// Cursor models the pagination token for activity listings.
type Cursor struct {
	Date time.Time
	ID   string
}
