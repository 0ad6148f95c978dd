package format

import (
	"testing"
	"time"
)

func TestDetermineUrgency(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 30, 0, time.UTC)

	tests := []struct {
		name  string
		dueAt time.Time
		want  Urgency
	}{
		{"two hours out", now.Add(2 * time.Hour), UrgencyNone},
		{"just over an hour", now.Add(61 * time.Minute), UrgencyNone},
		{"exactly an hour", now.Add(time.Hour), UrgencySoon},
		{"same minute", now.Add(20 * time.Second), UrgencySoon},
		{"earlier in the same minute", now.Add(-20 * time.Second), UrgencySoon},
		{"one minute late", now.Add(-time.Minute), UrgencyOverdue},
		{"a day late", now.Add(-24 * time.Hour), UrgencyOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineUrgency(tt.dueAt, now); got != tt.want {
				t.Errorf("DetermineUrgency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUrgencyIcon(t *testing.T) {
	if UrgencyNone.Icon() != "" {
		t.Error("UrgencyNone should have no icon")
	}
	if UrgencySoon.Icon() != SoonIcon || UrgencyOverdue.Icon() != OverdueIcon {
		t.Error("unexpected urgency icons")
	}
	if DisplayWidth(SoonIcon) > IconWidth || DisplayWidth(OverdueIcon) > IconWidth {
		t.Error("icons must fit the icon column")
	}
}
