// Package menubar turns a scrape outcome into what the menu bar shows: a
// title, a header and the quick-access ticket items.
package menubar

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spiffcs/slaclock/config"
	"github.com/spiffcs/slaclock/internal/constants"
	"github.com/spiffcs/slaclock/internal/model"
	"github.com/spiffcs/slaclock/internal/scrape"
	"github.com/spiffcs/slaclock/internal/sla"
	"github.com/spiffcs/slaclock/internal/urlutil"
)

// Messages shown below the title.
const (
	LoginMessage    = "Sign in to Help Scout in the browser window"
	NoFolderMessage = "Open a mailbox folder, then run: slaclock config set mailboxFolderUrl <url>"
	OfflineMessage  = "You appear to be offline"
)

// Settings are the display preferences and the SLA snapshot for one render.
type Settings struct {
	TimerView  bool
	HideClock  bool
	MailboxURL string
	SLA        sla.Configuration
	// SLAErr is set when the configuration could not produce a snapshot.
	SLAErr error
}

// SettingsFrom reads the display settings from the merged configuration.
func SettingsFrom(c *config.Config) Settings {
	snapshot, err := c.SLAConfiguration()
	return Settings{
		TimerView:  c.IsTimerView(),
		HideClock:  c.IsHideClock(),
		MailboxURL: c.GetMailboxFolderURL(),
		SLA:        snapshot,
		SLAErr:     err,
	}
}

// Item is one menu entry.
type Item struct {
	Label   string
	URL     string
	Enabled bool
}

// Display is the rendered menu bar state.
type Display struct {
	Title   string
	Header  string
	Items   []Item
	Message string
	// Idle shows the idle icon; set when the page failed to load.
	Idle bool
	// Loading is set until the first outcome arrives.
	Loading bool
	// Ticking reports whether the title changes every minute.
	Ticking bool
	// Ranked is the full ranked list behind Items.
	Ranked  []model.Ticket
	Dropped int
}

// Render builds the display for outcome o at now.
func Render(o scrape.Outcome, s Settings, now time.Time) Display {
	var d Display

	switch o := o.(type) {
	case nil:
		d = Display{Loading: true}

	case scrape.Batch:
		d = renderBatch(o, s, now)

	case scrape.EmptyMailbox:
		d = Display{Title: huzzahTitle(o.Title)}
		if d.Title == "" {
			d.Title = constants.NoSLATitle
		}
		if o.Body != "" {
			d.Items = []Item{{Label: o.Body, URL: o.URL, Enabled: o.URL != ""}}
		}

	case scrape.LoginRequired:
		d = Display{Message: LoginMessage}

	case scrape.NoFolder:
		d = Display{
			Title:   constants.NoSLATitle,
			Items:   []Item{{Label: constants.NoFolderLabel}},
			Message: NoFolderMessage,
		}

	case scrape.Failure:
		d = Display{Title: constants.NoSLATitle, Idle: true, Message: failureMessage(o.Err)}

	default:
		d = Display{Title: constants.NoSLATitle, Message: fmt.Sprintf("unsupported outcome %T", o)}
	}

	if s.HideClock {
		d.Title = ""
	}
	return d
}

func renderBatch(b scrape.Batch, s Settings, now time.Time) Display {
	d := Display{Header: b.Title, Dropped: len(b.Errors)}

	if s.SLAErr != nil {
		d.Title = constants.NoSLATitle
		d.Message = s.SLAErr.Error()
		return d
	}

	pass, err := sla.Process(b.Records, s.SLA, now)
	if err != nil {
		d.Title = constants.NoSLATitle
		d.Message = err.Error()
		return d
	}
	d.Dropped += len(pass.Dropped)
	d.Ranked = pass.Ranked

	nearest, ok := sla.Nearest(pass.Ranked)
	if !ok {
		d.Title = constants.NoSLATitle
		return d
	}

	if s.TimerView {
		d.Title = sla.FormatCountdown(nearest.DueAt, now)
		d.Ticking = true
	} else {
		d.Title = sla.FormatClock(nearest.DueAt, now)
	}

	for _, t := range sla.Top(pass.Ranked, constants.QuickAccessSize) {
		link, err := urlutil.ConversationURL(s.MailboxURL, t.ID)
		if err != nil {
			link = ""
		}
		d.Items = append(d.Items, Item{
			Label:   fmt.Sprintf("%d — %s", t.Number, sla.FormatCountdown(t.DueAt, now)),
			URL:     link,
			Enabled: link != "",
		})
	}
	return d
}

// huzzahTitle keeps the first letter and lower-cases the rest.
func huzzahTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(title)
	return title[:size] + strings.ToLower(title[size:])
}

func failureMessage(err error) string {
	switch {
	case err == nil:
		return OfflineMessage
	case errors.Is(err, scrape.ErrOffline):
		return OfflineMessage
	default:
		return err.Error()
	}
}

// String renders the display as a single line.
func (d Display) String() string {
	var parts []string
	if d.Loading {
		parts = append(parts, "loading…")
	}
	if d.Title != "" {
		parts = append(parts, d.Title)
	}
	if d.Header != "" {
		parts = append(parts, "["+d.Header+"]")
	}
	for _, it := range d.Items {
		parts = append(parts, it.Label)
	}
	if d.Message != "" {
		parts = append(parts, "("+d.Message+")")
	}
	return strings.Join(parts, "  ")
}
