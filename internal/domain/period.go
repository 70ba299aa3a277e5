package domain

import "time"

// Period boundary helpers. All three read calendar fields in ref's location,
// so callers control the reporting timezone by choosing ref (the service
// passes UTC).

// StartOfDay truncates ref to midnight of the same calendar date.
func StartOfDay(ref time.Time) time.Time {
	y, m, d := ref.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ref.Location())
}

// StartOfWeek returns the Monday of the week containing ref, at midnight.
// A Sunday belongs to the week that started the previous Monday.
func StartOfWeek(ref time.Time) time.Time {
	day := StartOfDay(ref)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth returns the first of ref's month, at midnight.
func StartOfMonth(ref time.Time) time.Time {
	y, m, _ := ref.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
}
