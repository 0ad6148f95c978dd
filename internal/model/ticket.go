// Package model holds the ticket records read from the mailbox page and the
// tickets derived from them.
package model

import (
	"slices"
	"time"
)

// Status is the conversation status code used by the mailbox application.
type Status int

const (
	StatusActive  Status = 1
	StatusPending Status = 2
	StatusClosed  Status = 3
	StatusSpam    Status = 4
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPending:
		return "pending"
	case StatusClosed:
		return "closed"
	case StatusSpam:
		return "spam"
	default:
		return "unknown"
	}
}

// Ticket is a ticket with a resolved arrival time and a computed deadline.
// A Ticket is built fresh on every pass and never modified afterwards.
type Ticket struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customer"`
	Subject      string    `json:"subject"`
	Number       int64     `json:"number"`
	Status       Status    `json:"status"`
	Tags         []string  `json:"tags"`
	WaitingSince time.Time `json:"waitingSince"`
	// ClockStart is when the SLA clock started: arrival, or the next window
	// open for tickets that arrived outside business hours.
	ClockStart time.Time `json:"clockStart"`
	DueAt      time.Time `json:"sla"`
}

// HasTag reports whether the ticket carries the named tag.
func (t Ticket) HasTag(name string) bool {
	return slices.Contains(t.Tags, name)
}
