// internal/service/subscription/period.go
package subscription

import "time"

// addMonthsClamped adds calendar months, clamping to the last valid day of
// the target month instead of letting the date normalize forward the way
// time.AddDate does. Jan 31 + 1 month is Feb 28 (29 in leap years), not
// Mar 2. Expiry dates computed from month-end start dates stay at month
// ends.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	targetMonth := time.Date(year, month+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())

	lastDay := daysInMonth(targetMonth.Year(), targetMonth.Month())
	if day > lastDay {
		day = lastDay
	}

	return time.Date(targetMonth.Year(), targetMonth.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
