package tui

import (
	"time"

	"github.com/spiffcs/slaclock/internal/menubar"
)

// Event is the interface for all TUI events.
type Event interface {
	isEvent()
}

// DisplayEvent carries a freshly rendered display.
type DisplayEvent struct {
	Display menubar.Display
	// Now is the instant the display was rendered at.
	Now time.Time
}

func (DisplayEvent) isEvent() {}

// StatusEvent shows a short-lived note under the display, e.g. after a
// config reload.
type StatusEvent struct {
	Message string
}

func (StatusEvent) isEvent() {}

// DoneEvent signals that the watcher has stopped.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}

// Action is a request from the TUI back to the watcher.
type Action int

const (
	ActionToggleTimerView Action = iota
	ActionToggleHideClock
	ActionToggleFilterPending
	ActionReload
)

func (a Action) String() string {
	switch a {
	case ActionToggleTimerView:
		return "toggle timer view"
	case ActionToggleHideClock:
		return "toggle hide clock"
	case ActionToggleFilterPending:
		return "toggle filter pending"
	case ActionReload:
		return "reload"
	default:
		return "unknown"
	}
}
