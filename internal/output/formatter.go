package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spiffcs/slaclock/internal/model"
	"github.com/spiffcs/slaclock/internal/urlutil"
	"golang.org/x/term"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatMarkdown:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be table, json or markdown)", s)
}

// Report is one ranked pass ready for printing.
type Report struct {
	Now        time.Time
	Folder     string
	MailboxURL string
	Tickets    []model.Ticket
	// Dropped counts records left out because they could not be read.
	Dropped     int
	PriorityTag string
}

// link returns the conversation URL for t, or "" when the mailbox URL is
// unusable.
func (r Report) link(t model.Ticket) string {
	u, err := urlutil.ConversationURL(r.MailboxURL, t.ID)
	if err != nil {
		return ""
	}
	return u
}

// Formatter defines the interface for output formatters
type Formatter interface {
	Format(r Report, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{Hyperlinks: term.IsTerminal(int(os.Stdout.Fd()))}
	}
}
