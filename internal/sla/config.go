// Package sla computes ticket deadlines from business-hours settings and
// ranks tickets by urgency.
package sla

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock boundary of the business window.
type TimeOfDay struct {
	Hours   int `json:"hours" yaml:"hours"`
	Minutes int `json:"minutes" yaml:"minutes"`
}

// On returns the instant at this time of day on the calendar day of t, in
// t's location.
func (c TimeOfDay) On(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, c.Hours, c.Minutes, 0, 0, t.Location())
}

// String renders the time as HH:MM.
func (c TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hours, c.Minutes)
}

func (c TimeOfDay) minutesOfDay() int {
	return c.Hours*60 + c.Minutes
}

// Configuration is the snapshot of SLA settings used for one pass. It is
// read-only for the duration of the pass.
type Configuration struct {
	StartOfDay       TimeOfDay
	EndOfDay         TimeOfDay
	GeneralDuration  time.Duration
	PriorityDuration time.Duration
	FilterPending    bool
	PriorityTag      string
}

// Validate checks that a deadline can be computed from the configuration.
func (c Configuration) Validate() error {
	if err := validateTimeOfDay("slaStart", c.StartOfDay); err != nil {
		return err
	}
	if err := validateTimeOfDay("slaEnd", c.EndOfDay); err != nil {
		return err
	}
	if c.EndOfDay.minutesOfDay() < c.StartOfDay.minutesOfDay() {
		return &ConfigurationError{
			Key:    "slaEnd",
			Reason: fmt.Sprintf("end of day %s is before start of day %s", c.EndOfDay, c.StartOfDay),
		}
	}
	if c.GeneralDuration <= 0 {
		return &ConfigurationError{Key: "slaGeneral", Reason: "duration must be positive"}
	}
	if c.PriorityDuration <= 0 {
		return &ConfigurationError{Key: "slaPriority", Reason: "duration must be positive"}
	}
	if c.PriorityTag == "" {
		return &ConfigurationError{Key: "priorityTag", Reason: "tag name is empty"}
	}
	return nil
}

func validateTimeOfDay(key string, c TimeOfDay) error {
	if c.Hours < 0 || c.Hours > 23 {
		return &ConfigurationError{Key: key + ".hours", Reason: fmt.Sprintf("%d is outside 0-23", c.Hours)}
	}
	if c.Minutes < 0 || c.Minutes > 59 {
		return &ConfigurationError{Key: key + ".minutes", Reason: fmt.Sprintf("%d is outside 0-59", c.Minutes)}
	}
	return nil
}

// DurationFor returns the SLA allowance for a ticket with the given tags.
func (c Configuration) DurationFor(tags []string) time.Duration {
	for _, t := range tags {
		if t == c.PriorityTag {
			return c.PriorityDuration
		}
	}
	return c.GeneralDuration
}
