package utils

import (
	"time"
)

// ArchivePeriod names the month being closed by a rollover at now (the previous month)
func ArchivePeriod(now time.Time) string {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return firstOfMonth.AddDate(0, 0, -1).Format("2006-01")
}

// IsFirstDayOfMonth reports whether now falls on the 1st in its location
func IsFirstDayOfMonth(now time.Time) bool {
	return now.Day() == 1
}

// NextDailyCheck returns the next occurrence of hour:00 after now in now's location
func NextDailyCheck(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
