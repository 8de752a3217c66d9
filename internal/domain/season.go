package domain

import (
	"fmt"
	"time"
)

// ResolveSeason maps a point in time to its July-June season label.
// Records are tagged at write time and the label is never recomputed, so
// season boundaries stay fixed even if this calendar logic changes later.
func ResolveSeason(t time.Time) string {
	year := t.Year()
	if t.Month() >= time.July {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

// CurrentSeason labels the season in progress.
func CurrentSeason() string {
	return ResolveSeason(time.Now())
}
