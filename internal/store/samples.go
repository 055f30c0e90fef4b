package store

import (
	"time"

	"countdown-cli/internal/model"
)

// SampleEvents returns the two demo events used when a store is seeded: next New Year's
// Day and a vacation two weeks out.
func SampleEvents(now time.Time) []model.CountdownEvent {
	loc := now.Location()
	newYear := time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, loc)
	vacation := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, loc).AddDate(0, 0, 14)

	return []model.CountdownEvent{
		{
			ID:         "sample-new-year",
			Title:      "New Year",
			TargetDate: newYear,
			ColorHex:   "#AF52DE",
			Repeat:     model.RepeatYearly,
		},
		{
			ID:         "sample-vacation",
			Title:      "Vacation",
			TargetDate: vacation,
			ColorHex:   "#34C759",
		},
	}
}
