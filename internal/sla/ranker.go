package sla

import (
	"sort"

	"github.com/spiffcs/slaclock/internal/model"
)

// Rank filters and orders tickets by urgency. Tickets are ordered by DueAt
// ascending; tickets sharing a DueAt are ordered by WaitingSince ascending.
// This equals sorting by arrival first and then stably by deadline.
// The input slice is not modified.
func Rank(tickets []model.Ticket, cfg Configuration) []model.Ticket {
	ranked := make([]model.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if cfg.FilterPending && t.Status == model.StatusPending {
			continue
		}
		ranked = append(ranked, t)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if !a.DueAt.Equal(b.DueAt) {
			return a.DueAt.Before(b.DueAt)
		}
		return a.WaitingSince.Before(b.WaitingSince)
	})

	return ranked
}

// Nearest returns the ticket with the nearest deadline. ok is false when
// nothing is ranked; callers must then show the "no SLA" state.
func Nearest(ranked []model.Ticket) (t model.Ticket, ok bool) {
	if len(ranked) == 0 {
		return model.Ticket{}, false
	}
	return ranked[0], true
}

// Top returns at most n tickets from the head of the ranking.
func Top(ranked []model.Ticket, n int) []model.Ticket {
	if n < 0 {
		n = 0
	}
	if len(ranked) < n {
		n = len(ranked)
	}
	return ranked[:n]
}
