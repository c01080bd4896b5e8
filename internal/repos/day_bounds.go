package repos

import "time"

// dayBounds normalizes a timestamp to the half-open UTC day window
// [start of day, start of next day).
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
