// Package events defines the payloads published to the activity event stream.
package events

import "time"

// ActivityChange is emitted for activity.logged and activity.updated. The
// emission carried here is the value fixed at write time, so downstream
// consumers see exactly what aggregation will sum.
type ActivityChange struct {
	ActivityID string    `json:"activity_id"`
	UserID     string    `json:"user_id"`
	Category   string    `json:"category"`
	Type       string    `json:"type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	EmissionKg float64   `json:"emission_kg"`
	Date       string    `json:"date"` // YYYY-MM-DD
	OccurredAt time.Time `json:"occurred_at"`
}

// ActivityDeleted is emitted when an activity is removed from a user's log.
type ActivityDeleted struct {
	ActivityID string    `json:"activity_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
