package domain

import "time"

// DefaultMonthlyGoal is the monthly emission budget, in kg CO2, assigned to
// new accounts.
const DefaultMonthlyGoal = 500

// User owns a set of activities and a monthly emission goal.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	MonthlyGoal  int // kg CO2 per month, always positive
	CreatedAt    time.Time
}
