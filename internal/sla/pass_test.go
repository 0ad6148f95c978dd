package sla

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/spiffcs/slaclock/internal/log"
	"github.com/spiffcs/slaclock/internal/model"
)

func TestProcessEndToEnd(t *testing.T) {
	now := utc(2024, 3, 4, 12, 0)
	cfg := testConfig()
	cfg.FilterPending = true

	pending := func(id int64, ws string) model.RawTicketRecord {
		r := record(id, ws)
		r.Status = model.StatusPending
		return r
	}

	records := []model.RawTicketRecord{
		record(1, "2024-03-04 17:30:00"), // after hours: tomorrow 12:00
		pending(2, "2024-03-04 06:00:00"),
		record(3, "2024-03-04 10:30:00"), // inside: 13:30
		pending(4, "2024-03-04 11:00:00"),
		record(5, "2024-03-04 07:00:00"), // before hours: 12:00
	}

	pass, err := Process(records, cfg, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pass.Dropped) != 0 {
		t.Fatalf("unexpected dropped records: %v", pass.Dropped)
	}

	want := []struct {
		id    int64
		dueAt time.Time
	}{
		{5, utc(2024, 3, 4, 12, 0)},
		{3, utc(2024, 3, 4, 13, 30)},
		{1, utc(2024, 3, 5, 12, 0)},
	}

	if len(pass.Ranked) != len(want) {
		t.Fatalf("ranked %d tickets, want %d: %v", len(pass.Ranked), len(want), ids(pass.Ranked))
	}
	for i, w := range want {
		got := pass.Ranked[i]
		if got.ID != w.id || !got.DueAt.Equal(w.dueAt) {
			t.Errorf("ranked[%d] = (%d, %v), want (%d, %v)", i, got.ID, got.DueAt, w.id, w.dueAt)
		}
	}
	if !pass.Now.Equal(now) {
		t.Errorf("Now = %v, want %v", pass.Now, now)
	}
}

func TestProcessDropsBadRecords(t *testing.T) {
	var buf bytes.Buffer
	log.Initialize(log.LevelQuiet, &buf)

	records := []model.RawTicketRecord{
		record(1, "2024-03-04 10:00:00"),
		record(2, "not a time"),
		record(3, "2024-03-04 11:00:00"),
	}

	pass, err := Process(records, testConfig(), utc(2024, 3, 4, 12, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int64{1, 3}; !equalIDs(ids(pass.Ranked), want) {
		t.Errorf("ranked = %v, want %v", ids(pass.Ranked), want)
	}
	if len(pass.Dropped) != 1 {
		t.Fatalf("expected 1 dropped record, got %d", len(pass.Dropped))
	}
	var pe *ParseError
	if !errors.As(pass.Dropped[0], &pe) || pe.TicketID != 2 {
		t.Errorf("expected ParseError for ticket 2, got %v", pass.Dropped[0])
	}
	if !bytes.Contains(buf.Bytes(), []byte("dropping ticket")) {
		t.Errorf("expected a warning for the dropped ticket, got %q", buf.String())
	}
}

func TestProcessEmptyBatch(t *testing.T) {
	pass, err := Process(nil, testConfig(), utc(2024, 3, 4, 12, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pass.Empty() {
		t.Errorf("expected empty pass, got %v", ids(pass.Ranked))
	}
}

func TestProcessInvalidConfiguration(t *testing.T) {
	cfg := testConfig()
	cfg.GeneralDuration = 0

	pass, err := Process([]model.RawTicketRecord{record(1, "2024-03-04 10:00:00")}, cfg, utc(2024, 3, 4, 12, 0))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	var ce *ConfigurationError
	if !errors.As(err, &ce) || ce.Key != "slaGeneral" {
		t.Errorf("expected ConfigurationError for slaGeneral, got %v", err)
	}
	if !pass.Empty() {
		t.Error("an invalid configuration must not produce tickets")
	}
}

func TestConfigurationValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantKey string
	}{
		{"valid", func(*Configuration) {}, ""},
		{"start hour out of range", func(c *Configuration) { c.StartOfDay.Hours = 24 }, "slaStart.hours"},
		{"end minutes out of range", func(c *Configuration) { c.EndOfDay.Minutes = 60 }, "slaEnd.minutes"},
		{"negative start minutes", func(c *Configuration) { c.StartOfDay.Minutes = -1 }, "slaStart.minutes"},
		{"inverted window", func(c *Configuration) { c.EndOfDay = TimeOfDay{Hours: 8} }, "slaEnd"},
		{"zero priority duration", func(c *Configuration) { c.PriorityDuration = 0 }, "slaPriority"},
		{"empty priority tag", func(c *Configuration) { c.PriorityTag = "" }, "priorityTag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if ce.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", ce.Key, tt.wantKey)
			}
		})
	}
}

func TestDurationFor(t *testing.T) {
	cfg := testConfig()
	if got := cfg.DurationFor([]string{"a", "priority-support"}); got != time.Hour {
		t.Errorf("DurationFor(priority) = %v, want 1h", got)
	}
	if got := cfg.DurationFor(nil); got != 3*time.Hour {
		t.Errorf("DurationFor(nil) = %v, want 3h", got)
	}
}
