package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/spiffcs/slaclock/internal/format"
	"github.com/spiffcs/slaclock/internal/sla"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// JSONTicket is one ranked ticket in JSON output.
type JSONTicket struct {
	ID           int64     `json:"id"`
	Number       int64     `json:"number"`
	Customer     string    `json:"customer"`
	Subject      string    `json:"subject"`
	Status       string    `json:"status"`
	Tags         []string  `json:"tags"`
	WaitingSince time.Time `json:"waitingSince"`
	ClockStart   time.Time `json:"clockStart"`
	DueAt        time.Time `json:"sla"`
	Countdown    string    `json:"countdown"`
	Urgency      string    `json:"urgency"`
	URL          string    `json:"url,omitempty"`
}

// JSONOutput wraps the tickets with metadata for JSON output
type JSONOutput struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	Folder      string       `json:"folder,omitempty"`
	Tickets     []JSONTicket `json:"tickets"`
	Dropped     int          `json:"dropped"`
}

// Format outputs the ranked tickets as JSON
func (f *JSONFormatter) Format(r Report, w io.Writer) error {
	out := JSONOutput{
		GeneratedAt: r.Now,
		Folder:      r.Folder,
		Tickets:     make([]JSONTicket, 0, len(r.Tickets)),
		Dropped:     r.Dropped,
	}
	for _, t := range r.Tickets {
		out.Tickets = append(out.Tickets, JSONTicket{
			ID:           t.ID,
			Number:       t.Number,
			Customer:     t.CustomerName,
			Subject:      t.Subject,
			Status:       t.Status.String(),
			Tags:         t.Tags,
			WaitingSince: t.WaitingSince,
			ClockStart:   t.ClockStart,
			DueAt:        t.DueAt,
			Countdown:    sla.FormatCountdown(t.DueAt, r.Now),
			Urgency:      format.DetermineUrgency(t.DueAt, r.Now).String(),
			URL:          r.link(t),
		})
	}

	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}
