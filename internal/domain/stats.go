package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidWindow rejects trend windows shorter than one day.
	ErrInvalidWindow = errors.New("trend window must be at least one day")
	// ErrInvalidGoal rejects non-positive monthly goals.
	ErrInvalidGoal = errors.New("monthly goal must be positive")
)

// EmissionStats is the derived per-request view of a user's totals. It is
// recomputed from the full activity set on every call, never cached.
type EmissionStats struct {
	Daily      float64
	Weekly     float64
	Monthly    float64
	ByCategory map[Category]float64
}

// TrendPoint is one day of the trend series.
type TrendPoint struct {
	Date     string // YYYY-MM-DD
	Emission float64
}

// ComputeStats sums stored emissions into daily/weekly/monthly totals and a
// monthly category breakdown. An activity counts toward a period when its
// calendar date falls in [periodStart, ref's date]; future-dated entries are
// outside every window. Each total is rounded once at the end, not per
// addend. Unknown categories land in the "other" bucket so rows written
// before a schema change cannot break read-side aggregation.
func ComputeStats(activities []Activity, ref time.Time) EmissionStats {
	today := StartOfDay(ref).Format(time.DateOnly)
	week := StartOfWeek(ref).Format(time.DateOnly)
	month := StartOfMonth(ref).Format(time.DateOnly)

	byCategory := make(map[Category]float64, 4)
	for _, c := range Categories() {
		byCategory[c] = 0
	}

	var daily, weekly, monthly float64
	for _, act := range activities {
		date := act.Date.Format(time.DateOnly)
		if date > today {
			continue
		}
		if date == today {
			daily += act.Emission
		}
		if date >= week {
			weekly += act.Emission
		}
		if date >= month {
			monthly += act.Emission
			byCategory[bucket(act.Category)] += act.Emission
		}
	}

	for c, v := range byCategory {
		byCategory[c] = round2(v)
	}
	return EmissionStats{
		Daily:      round2(daily),
		Weekly:     round2(weekly),
		Monthly:    round2(monthly),
		ByCategory: byCategory,
	}
}

func bucket(c Category) Category {
	if c.Known() {
		return c
	}
	return CategoryOther
}

// BuildTrend produces exactly windowDays points, oldest first, ending at
// ref's calendar date. Days without activity are zero-filled, never omitted.
// Only exact date matches contribute to a day's sum.
func BuildTrend(activities []Activity, windowDays int, ref time.Time) ([]TrendPoint, error) {
	if windowDays < 1 {
		return nil, ErrInvalidWindow
	}

	byDate := make(map[string]float64)
	for _, act := range activities {
		byDate[act.Date.Format(time.DateOnly)] += act.Emission
	}

	start := StartOfDay(ref).AddDate(0, 0, -(windowDays - 1))
	points := make([]TrendPoint, 0, windowDays)
	for i := 0; i < windowDays; i++ {
		date := start.AddDate(0, 0, i).Format(time.DateOnly)
		points = append(points, TrendPoint{Date: date, Emission: round2(byDate[date])})
	}
	return points, nil
}

// GoalStatus classifies goal consumption.
type GoalStatus string

const (
	GoalStatusGood    GoalStatus = "good"    // percentage <= 60
	GoalStatusWarning GoalStatus = "warning" // 60 < percentage <= 85
	GoalStatusDanger  GoalStatus = "danger"  // percentage > 85
)

// GoalProgress is the capped percentage of the monthly goal consumed.
type GoalProgress struct {
	Percentage float64
	Status     GoalStatus
}

// ProgressToGoal evaluates current against goal. The percentage is capped at
// 100 even when current exceeds the goal. goal <= 0 is a caller contract
// violation and fails with ErrInvalidGoal.
func ProgressToGoal(current, goal float64) (GoalProgress, error) {
	if goal <= 0 {
		return GoalProgress{}, ErrInvalidGoal
	}

	percentage := current / goal * 100
	if percentage > 100 {
		percentage = 100
	}

	status := GoalStatusDanger
	switch {
	case percentage <= 60:
		status = GoalStatusGood
	case percentage <= 85:
		status = GoalStatusWarning
	}
	return GoalProgress{Percentage: percentage, Status: status}, nil
}
