package sla

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spiffcs/slaclock/internal/model"
)

// zonelessLayouts are read as UTC. Fractional seconds are accepted after
// the seconds field.
var zonelessLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 MST",
	time.RFC1123Z,
	time.RFC1123,
}

var (
	errUnrecognized = errors.New("unrecognized timestamp format")
	errUnknownZone  = errors.New("unknown time zone abbreviation")
)

// ParseTimestamp interprets timestamp text from the mailbox page. Text
// without a zone is taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range zonedLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if strings.Contains(layout, "MST") && !knownZone(t) {
			name, _ := t.Zone()
			return time.Time{}, fmt.Errorf("%w %q", errUnknownZone, name)
		}
		return t, nil
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errUnrecognized
}

// knownZone reports whether an abbreviation parsed by time.Parse was
// resolved. Abbreviations it cannot resolve come back with a zero offset in
// a fabricated zone.
func knownZone(t time.Time) bool {
	name, offset := t.Zone()
	return offset != 0 || name == "UTC" || name == "GMT" || t.Location() == time.Local
}

// ResolveWaitingSince returns the instant the ticket started waiting,
// falling back to modifiedAt when waitingSince is unset.
func ResolveWaitingSince(r model.RawTicketRecord) (time.Time, error) {
	field, ts := "waitingSince", r.WaitingSince
	if ts.IsUnset() {
		field, ts = "modifiedAt", r.ModifiedAt
	}

	if ts.Structured {
		return ts.Instant, nil
	}
	if ts.Text == "" {
		return time.Time{}, &ParseError{
			TicketID: r.ID,
			Field:    field,
			Err:      errors.New("waitingSince and modifiedAt are both unset"),
		}
	}

	t, err := ParseTimestamp(ts.Text)
	if err != nil {
		return time.Time{}, &ParseError{TicketID: r.ID, Field: field, Value: ts.Text, Err: err}
	}
	return t, nil
}

// Window returns today's business window, where today is the calendar day
// containing now.
func (c Configuration) Window(now time.Time) (start, end time.Time) {
	return c.StartOfDay.On(now), c.EndOfDay.On(now)
}

// DueAt is the deadline for a ticket that arrived at waitingSince with an
// allowance of d.
func (c Configuration) DueAt(waitingSince time.Time, d time.Duration, now time.Time) time.Time {
	return c.ClockStart(waitingSince, now).Add(d)
}

// ClockStart returns the instant the SLA clock starts for a ticket that
// arrived at waitingSince:
//   - arrived before today's window opened: at window open;
//   - arrived after today's window closed: at tomorrow's window open;
//   - otherwise on arrival.
func (c Configuration) ClockStart(waitingSince, now time.Time) time.Time {
	start, end := c.Window(now)
	switch {
	case waitingSince.Before(start):
		return start
	case waitingSince.After(end):
		return start.AddDate(0, 0, 1)
	default:
		return waitingSince
	}
}

// ComputeTicket derives a Ticket with its deadline from a raw record. The
// result depends only on its arguments.
func ComputeTicket(r model.RawTicketRecord, cfg Configuration, now time.Time) (model.Ticket, error) {
	waitingSince, err := ResolveWaitingSince(r)
	if err != nil {
		return model.Ticket{}, err
	}

	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}

	return model.Ticket{
		ID:           r.ID,
		CustomerName: r.CustomerName,
		Subject:      r.Subject,
		Number:       r.Number,
		Status:       r.Status,
		Tags:         tags,
		WaitingSince: waitingSince,
		ClockStart:   cfg.ClockStart(waitingSince, now),
		DueAt:        cfg.DueAt(waitingSince, cfg.DurationFor(tags), now),
	}, nil
}
