package format

import "time"

// Urgency classifies how close a deadline is.
type Urgency int

const (
	// UrgencyNone is a deadline comfortably in the future.
	UrgencyNone Urgency = iota
	// UrgencySoon is a deadline within the warning window.
	UrgencySoon
	// UrgencyOverdue is a deadline that has passed.
	UrgencyOverdue
)

// SoonWindow is how close a deadline must be to count as soon.
const SoonWindow = time.Hour

// DetermineUrgency classifies dueAt at minute granularity, matching the
// countdown: a deadline in the current minute is not yet overdue.
func DetermineUrgency(dueAt, now time.Time) Urgency {
	left := dueAt.Truncate(time.Minute).Sub(now.Truncate(time.Minute))
	switch {
	case left < 0:
		return UrgencyOverdue
	case left <= SoonWindow:
		return UrgencySoon
	default:
		return UrgencyNone
	}
}

// Icon strings for display (renderers can apply their own styling)
const (
	// OverdueIcon is the SOS emoji for missed deadlines.
	OverdueIcon = "\U0001F198" // 🆘

	// SoonIcon is the lightning emoji for deadlines inside SoonWindow.
	// U+26A1 + U+FE0F forces emoji presentation.
	SoonIcon = "\u26A1\uFE0F" // ⚡️

	// PriorityIcon marks tickets on the priority SLA.
	PriorityIcon = "\U0001F525" // 🔥

	// IconWidth is the display width reserved for the icon column (emoji=2 + space=1).
	IconWidth = 3
)

// Icon returns the icon for u, or "" for UrgencyNone.
func (u Urgency) Icon() string {
	switch u {
	case UrgencyOverdue:
		return OverdueIcon
	case UrgencySoon:
		return SoonIcon
	default:
		return ""
	}
}

func (u Urgency) String() string {
	switch u {
	case UrgencyOverdue:
		return "overdue"
	case UrgencySoon:
		return "soon"
	default:
		return "ok"
	}
}
