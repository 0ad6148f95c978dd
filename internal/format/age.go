package format

import (
	"time"

	"github.com/xeonx/timeago"
)

// Age describes how long ago since was, relative to now: "2 hours ago".
func Age(since, now time.Time) string {
	if since.IsZero() {
		return "-"
	}
	return timeago.English.FormatReference(since, now)
}
