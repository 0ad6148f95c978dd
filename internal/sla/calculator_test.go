package sla

import (
	"errors"
	"testing"
	"time"

	"github.com/spiffcs/slaclock/internal/model"
)

func testConfig() Configuration {
	return Configuration{
		StartOfDay:       TimeOfDay{Hours: 9},
		EndOfDay:         TimeOfDay{Hours: 17},
		GeneralDuration:  3 * time.Hour,
		PriorityDuration: time.Hour,
		PriorityTag:      "priority-support",
	}
}

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func record(id int64, waitingSince string, tags ...string) model.RawTicketRecord {
	return model.RawTicketRecord{
		ID:           id,
		Number:       1000 + id,
		Status:       model.StatusActive,
		Tags:         tags,
		WaitingSince: model.TextTimestamp(waitingSince),
	}
}

func TestComputeTicketDeadlinePolicy(t *testing.T) {
	now := utc(2024, 3, 4, 12, 0)

	tests := []struct {
		name         string
		waitingSince string
		want         time.Time
	}{
		{"before window opens", "2024-03-04 07:30:00", utc(2024, 3, 4, 12, 0)},
		{"previous evening", "2024-03-03 20:00:00", utc(2024, 3, 4, 12, 0)},
		{"exactly at window open", "2024-03-04 09:00:00", utc(2024, 3, 4, 12, 0)},
		{"inside window", "2024-03-04 10:15:00", utc(2024, 3, 4, 13, 15)},
		{"exactly at window close", "2024-03-04 17:00:00", utc(2024, 3, 4, 20, 0)},
		{"after window closes", "2024-03-04 18:00:00", utc(2024, 3, 5, 12, 0)},
		{"iso text with zone", "2024-03-04T10:15:00+01:00", utc(2024, 3, 4, 12, 15)},
		{"iso text without zone", "2024-03-04T10:15:00", utc(2024, 3, 4, 13, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeTicket(record(1, tt.waitingSince), testConfig(), now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.DueAt.Equal(tt.want) {
				t.Errorf("DueAt = %v, want %v", got.DueAt, tt.want)
			}
		})
	}
}

func TestComputeTicketClockStart(t *testing.T) {
	now := utc(2024, 3, 4, 12, 0)

	tests := []struct {
		name         string
		waitingSince string
		want         time.Time
	}{
		{"before window opens", "2024-03-04 07:30:00", utc(2024, 3, 4, 9, 0)},
		{"inside window", "2024-03-04 10:15:00", utc(2024, 3, 4, 10, 15)},
		{"after window closes", "2024-03-04 18:00:00", utc(2024, 3, 5, 9, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeTicket(record(1, tt.waitingSince), testConfig(), now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.ClockStart.Equal(tt.want) {
				t.Errorf("ClockStart = %v, want %v", got.ClockStart, tt.want)
			}
			if got.DueAt.Sub(got.ClockStart) != 3*time.Hour {
				t.Errorf("DueAt - ClockStart = %v, want 3h", got.DueAt.Sub(got.ClockStart))
			}
		})
	}
}

func TestComputeTicketPriorityTag(t *testing.T) {
	now := utc(2024, 3, 4, 12, 0)
	cfg := testConfig()

	general, err := ComputeTicket(record(1, "2024-03-04 10:00:00", "billing"), cfg, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	priority, err := ComputeTicket(record(1, "2024-03-04 10:00:00", "billing", "priority-support"), cfg, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := utc(2024, 3, 4, 13, 0); !general.DueAt.Equal(want) {
		t.Errorf("general DueAt = %v, want %v", general.DueAt, want)
	}
	if want := utc(2024, 3, 4, 11, 0); !priority.DueAt.Equal(want) {
		t.Errorf("priority DueAt = %v, want %v", priority.DueAt, want)
	}
}

func TestComputeTicketMinuteDurations(t *testing.T) {
	cfg := testConfig()
	cfg.GeneralDuration = 2*time.Hour + 45*time.Minute
	cfg.StartOfDay = TimeOfDay{Hours: 8, Minutes: 30}

	got, err := ComputeTicket(record(1, "2024-03-04 06:00:00"), cfg, utc(2024, 3, 4, 7, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := utc(2024, 3, 4, 11, 15); !got.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want %v", got.DueAt, want)
	}
}

func TestComputeTicketCalendarRollover(t *testing.T) {
	tests := []struct {
		name         string
		now          time.Time
		waitingSince string
		duration     time.Duration
		want         time.Time
	}{
		{
			name:         "month end after hours",
			now:          utc(2024, 1, 31, 20, 0),
			waitingSince: "2024-01-31 18:00:00",
			duration:     3 * time.Hour,
			want:         utc(2024, 2, 1, 12, 0),
		},
		{
			name:         "leap day after hours",
			now:          utc(2024, 2, 28, 19, 0),
			waitingSince: "2024-02-28 18:30:00",
			duration:     3 * time.Hour,
			want:         utc(2024, 2, 29, 12, 0),
		},
		{
			name:         "year end after hours",
			now:          utc(2024, 12, 31, 23, 0),
			waitingSince: "2024-12-31 22:00:00",
			duration:     3 * time.Hour,
			want:         utc(2025, 1, 1, 12, 0),
		},
		{
			name:         "duration crosses midnight",
			now:          utc(2024, 3, 31, 16, 0),
			waitingSince: "2024-03-31 16:00:00",
			duration:     26 * time.Hour,
			want:         utc(2024, 4, 1, 18, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.GeneralDuration = tt.duration
			got, err := ComputeTicket(record(1, tt.waitingSince), cfg, tt.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.DueAt.Equal(tt.want) {
				t.Errorf("DueAt = %v, want %v", got.DueAt, tt.want)
			}
		})
	}
}

func TestComputeTicketWindowUsesNowLocation(t *testing.T) {
	cet := time.FixedZone("CET", 60*60)
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, cet)

	// 07:30 UTC is 08:30 CET, before the 09:00 CET window opens.
	got, err := ComputeTicket(record(1, "2024-03-04 07:30:00"), testConfig(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 3, 4, 12, 0, 0, 0, cet)
	if !got.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want %v", got.DueAt, want)
	}
	if !got.WaitingSince.Equal(utc(2024, 3, 4, 7, 30)) {
		t.Errorf("WaitingSince = %v, want 07:30 UTC", got.WaitingSince)
	}
}

func TestComputeTicketFallsBackToModifiedAt(t *testing.T) {
	r := record(7, "")
	r.ModifiedAt = model.TextTimestamp("2024-03-04T10:00:00Z")

	got, err := ComputeTicket(r, testConfig(), utc(2024, 3, 4, 12, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.WaitingSince.Equal(utc(2024, 3, 4, 10, 0)) {
		t.Errorf("WaitingSince = %v, want modifiedAt", got.WaitingSince)
	}
	if !got.DueAt.Equal(utc(2024, 3, 4, 13, 0)) {
		t.Errorf("DueAt = %v, want 13:00", got.DueAt)
	}
}

func TestComputeTicketStructuredTimestamp(t *testing.T) {
	r := record(8, "")
	r.WaitingSince = model.InstantTimestamp(utc(2024, 3, 4, 11, 0))

	got, err := ComputeTicket(r, testConfig(), utc(2024, 3, 4, 12, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.DueAt.Equal(utc(2024, 3, 4, 14, 0)) {
		t.Errorf("DueAt = %v, want 14:00", got.DueAt)
	}
}

func TestComputeTicketParseErrors(t *testing.T) {
	t.Run("malformed waitingSince", func(t *testing.T) {
		_, err := ComputeTicket(record(9, "yesterday-ish"), testConfig(), utc(2024, 3, 4, 12, 0))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ParseError, got %v", err)
		}
		if pe.TicketID != 9 || pe.Field != "waitingSince" || pe.Value != "yesterday-ish" {
			t.Errorf("unexpected ParseError fields: %+v", pe)
		}
	})

	t.Run("unknown zone abbreviation", func(t *testing.T) {
		_, err := ComputeTicket(record(11, "2024-03-04 10:00:00 XYZ"), testConfig(), utc(2024, 3, 4, 12, 0))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ParseError, got %v", err)
		}
		if !errors.Is(err, errUnknownZone) {
			t.Errorf("expected unknown zone error, got %v", err)
		}
	})

	t.Run("both timestamps unset", func(t *testing.T) {
		_, err := ComputeTicket(record(10, ""), testConfig(), utc(2024, 3, 4, 12, 0))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ParseError, got %v", err)
		}
		if pe.Field != "modifiedAt" {
			t.Errorf("Field = %q, want modifiedAt", pe.Field)
		}
	})
}

func TestComputeTicketCopiesFieldsAndNormalizesTags(t *testing.T) {
	r := model.RawTicketRecord{
		ID:           42,
		CustomerName: "Grace Hopper",
		Subject:      "Compiler bug",
		Number:       4242,
		Status:       model.StatusPending,
		WaitingSince: model.TextTimestamp("2024-03-04 10:00:00"),
	}

	got, err := ComputeTicket(r, testConfig(), utc(2024, 3, 4, 12, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 42 || got.CustomerName != "Grace Hopper" || got.Subject != "Compiler bug" ||
		got.Number != 4242 || got.Status != model.StatusPending {
		t.Errorf("fields not copied: %+v", got)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("Tags = %#v, want empty non-nil slice", got.Tags)
	}
}

func TestComputeTicketDeterministic(t *testing.T) {
	now := utc(2024, 3, 4, 12, 0)
	r := record(1, "2024-03-04 10:15:00", "priority-support")

	a, errA := ComputeTicket(r, testConfig(), now)
	b, errB := ComputeTicket(r, testConfig(), now)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if !a.DueAt.Equal(b.DueAt) || !a.WaitingSince.Equal(b.WaitingSince) {
		t.Errorf("results differ: %v vs %v", a, b)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2024-03-04 10:15:00", utc(2024, 3, 4, 10, 15), false},
		{"2024-03-04 10:15", utc(2024, 3, 4, 10, 15), false},
		{"2024-03-04T10:15:00Z", utc(2024, 3, 4, 10, 15), false},
		{"2024-03-04T10:15:00.500Z", utc(2024, 3, 4, 10, 15).Add(500 * time.Millisecond), false},
		{"2024-03-04T11:15:00+01:00", utc(2024, 3, 4, 10, 15), false},
		{"2024-03-04 10:15:00.250", utc(2024, 3, 4, 10, 15).Add(250 * time.Millisecond), false},
		{"2024-03-04 10:15:00 UTC", utc(2024, 3, 4, 10, 15), false},
		{"Mon, 04 Mar 2024 10:15:00 GMT", utc(2024, 3, 4, 10, 15), false},
		{"Mon, 04 Mar 2024 11:15:00 +0100", utc(2024, 3, 4, 10, 15), false},
		{"2024-03-04 10:15:00 XYZ", time.Time{}, true},
		{"Mon, 04 Mar 2024 10:15:00 QQT", time.Time{}, true},
		{"04/03/2024", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
