package sla

import (
	"fmt"
	"time"

	"github.com/spiffcs/slaclock/internal/constants"
)

// FormatCountdown renders the time left until dueAt as "+H:MM", or "-H:MM"
// once overdue. Both instants are truncated to the minute before
// differencing.
func FormatCountdown(dueAt, now time.Time) string {
	diff := dueAt.Truncate(time.Minute).Sub(now.Truncate(time.Minute))

	// Both truncate toward zero.
	hours := int64(diff / time.Hour)
	minutes := int64(diff / time.Minute)

	sign := "+"
	if hours < 0 || minutes < 0 {
		sign = "-"
	}

	return fmt.Sprintf("%s%d:%02d", sign, abs(hours), abs(minutes%60))
}

// FormatClock renders dueAt as a wall-clock time in now's location.
func FormatClock(dueAt, now time.Time) string {
	return dueAt.In(now.Location()).Format(constants.ClockLayout)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
