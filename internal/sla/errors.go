package sla

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration matches any *ConfigurationError via errors.Is.
var ErrInvalidConfiguration = errors.New("invalid SLA configuration")

// ParseError reports a ticket timestamp that could not be interpreted.
// It is scoped to a single ticket.
type ParseError struct {
	TicketID int64
	Field    string
	Value    string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("ticket %d: %s: %v", e.TicketID, e.Field, e.Err)
	}
	return fmt.Sprintf("ticket %d: cannot parse %s %q: %v", e.TicketID, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a missing or malformed SLA setting. No
// deadline can be computed while it persists.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidConfiguration) true for any
// ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}
