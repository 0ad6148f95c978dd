package sla

import (
	"time"

	"github.com/spiffcs/slaclock/internal/log"
	"github.com/spiffcs/slaclock/internal/model"
)

// Pass is the result of computing and ranking one batch of records.
type Pass struct {
	// Now is the single instant used for every computation in the pass.
	Now time.Time
	// Ranked holds the filtered tickets, most urgent first.
	Ranked []model.Ticket
	// Dropped holds one error per record that could not be computed.
	Dropped []error
}

// Empty reports whether no ticket is tracked.
func (p Pass) Empty() bool {
	return len(p.Ranked) == 0
}

// Process computes every record against cfg and ranks the result. A record
// that fails is dropped and logged; it never aborts the pass. An invalid
// configuration is returned as a *ConfigurationError and no tickets are
// produced.
func Process(records []model.RawTicketRecord, cfg Configuration, now time.Time) (Pass, error) {
	if err := cfg.Validate(); err != nil {
		return Pass{Now: now}, err
	}

	tickets := make([]model.Ticket, 0, len(records))
	var dropped []error
	for _, r := range records {
		t, err := ComputeTicket(r, cfg, now)
		if err != nil {
			log.Warn("dropping ticket", "id", r.ID, "number", r.Number, "error", err)
			dropped = append(dropped, err)
			continue
		}
		log.Trace("computed deadline", "id", t.ID, "waitingSince", t.WaitingSince, "dueAt", t.DueAt)
		tickets = append(tickets, t)
	}

	ranked := Rank(tickets, cfg)
	log.Debug("ranked tickets", "records", len(records), "ranked", len(ranked), "dropped", len(dropped))

	return Pass{Now: now, Ranked: ranked, Dropped: dropped}, nil
}
