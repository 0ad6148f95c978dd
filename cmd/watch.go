package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/slaclock/config"
	"github.com/spiffcs/slaclock/internal/clock"
	"github.com/spiffcs/slaclock/internal/log"
	"github.com/spiffcs/slaclock/internal/menubar"
	"github.com/spiffcs/slaclock/internal/scrape"
	"github.com/spiffcs/slaclock/internal/tui"
	"golang.org/x/sync/errgroup"
)

// toggleKeys maps TUI actions to the boolean config keys they flip.
var toggleKeys = map[tui.Action]string{
	tui.ActionToggleTimerView:     "timerView",
	tui.ActionToggleHideClock:     "hideClock",
	tui.ActionToggleFilterPending: "filterPending",
}

// NewCmdWatch creates the watch command.
func NewCmdWatch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show a live SLA countdown (same as root slaclock)",
		Long: `Opens the mailbox folder in a browser, keeps the nearest SLA deadline
on screen and re-renders it every minute and whenever the folder changes.

Sign in to Help Scout in the browser window the first time; the session is
kept in the slaclock browser profile.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}

	addWatchFlags(cmd, opts)
	return cmd
}

// addWatchFlags adds the watch-specific flags to a command.
func addWatchFlags(cmd *cobra.Command, opts *Options) {
	addSourceFlags(cmd, opts)

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTriStateFlag(&opts.TUI), "tui", "Enable/disable the live TUI (default: auto-detect)")
}

// addSourceFlags adds the flags shared by every command that reads tickets.
func addSourceFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read tickets from a JSON file instead of the browser")
	cmd.Flags().StringVar(&opts.FolderURL, "folder", "", "Mailbox folder URL (overrides mailbox_folder_url)")
	cmd.Flags().Var(newTriStateFlag(&opts.Headless), "headless", "Run the browser without a window (default: from config)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
}

func runWatch(cmd *cobra.Command, opts *Options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	useTUI := shouldUseTUI(opts)

	// Initialize logging - suppress logs during TUI to avoid interleaving with display
	if useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Watch closes the browser when it returns.
	source, _ := newSource(cfg, opts)

	s, err := newSession(cfg, opts, source, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	cw, err := config.NewWatcher()
	if err != nil {
		log.Warn("config changes will not be picked up", "error", err)
	}

	return s.run(ctx, cw, useTUI)
}

// session is one live watch: the latest outcome, the settings it is
// rendered with, and the minute clock.
type session struct {
	opts     *Options
	source   scrape.Source
	settings menubar.Settings
	folder   string
	last     scrape.Outcome
	clock    *clock.Clock
	ticks    chan time.Time
	out      io.Writer
	events   chan tui.Event
	lastLine string
	now      func() time.Time
}

func newSession(cfg *config.Config, opts *Options, source scrape.Source, out io.Writer) (*session, error) {
	s := &session{
		opts:   opts,
		source: source,
		ticks:  make(chan time.Time, 1),
		out:    out,
		now:    time.Now,
	}
	s.apply(cfg)

	c, err := clock.New(func(now time.Time) {
		select {
		case s.ticks <- now:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	s.clock = c
	return s, nil
}

// apply takes the settings from a freshly loaded config.
func (s *session) apply(cfg *config.Config) {
	s.settings = menubar.SettingsFrom(cfg)
	folder := mailboxURL(cfg, s.opts)
	if s.folder != "" && folder != s.folder && s.opts.Input == "" {
		log.Info("mailbox folder changed; restart slaclock to follow it", "folder", folder)
	}
	s.folder = folder
	s.settings.MailboxURL = folder
	if s.settings.SLAErr != nil {
		log.Warn("invalid SLA configuration", "error", s.settings.SLAErr)
	}
}

// run drives the source, config watcher, clock and display until ctx is
// done or the TUI exits.
func (s *session) run(ctx context.Context, cw *config.Watcher, useTUI bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	outcomes := make(chan scrape.Outcome, 1)
	g.Go(func() error {
		return s.source.Watch(ctx, outcomes)
	})

	var updates <-chan *config.Config
	if cw != nil {
		updates = cw.Updates()
		g.Go(func() error {
			return cw.Run(ctx)
		})
	}

	var actions chan tui.Action
	if useTUI {
		s.events = make(chan tui.Event, 16)
		actions = make(chan tui.Action, 4)
		events := s.events
		g.Go(func() error {
			// Quitting the TUI ends the session
			defer cancel()
			return tui.Run(events, actions)
		})
	}

	g.Go(func() error {
		defer s.clock.Stop()
		if s.events != nil {
			defer close(s.events)
		}
		return s.loop(ctx, outcomes, updates, actions)
	})

	return g.Wait()
}

func (s *session) loop(ctx context.Context, outcomes <-chan scrape.Outcome, updates <-chan *config.Config, actions <-chan tui.Action) error {
	s.render(ctx, s.now())

	for {
		select {
		case <-ctx.Done():
			return nil

		case o := <-outcomes:
			log.Debug("mailbox outcome", "outcome", fmt.Sprintf("%T", o))
			if f, ok := o.(scrape.Failure); ok {
				log.Warn("mailbox failed to load", "error", f.Err)
			}
			s.last = o
			s.render(ctx, s.now())

		case cfg, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			s.apply(cfg)
			s.notify("Configuration reloaded")
			s.render(ctx, s.now())

		case now := <-s.ticks:
			s.render(ctx, now)

		case a := <-actions:
			s.handle(ctx, a)
		}
	}
}

// handle carries out a TUI request.
func (s *session) handle(ctx context.Context, a tui.Action) {
	log.Debug("action", "action", a.String())

	if a == tui.ActionReload {
		s.source.Refresh()
		return
	}

	key, ok := toggleKeys[a]
	if !ok {
		return
	}
	if err := config.UpdateGlobal(func(c *config.Config) error {
		return c.Toggle(key)
	}); err != nil {
		log.Warn("failed to save setting", "key", key, "error", err)
		s.notify("Could not save " + key + ": " + err.Error())
		return
	}

	// Reload here as well; the watcher misses a config directory created
	// by this save.
	cfg, err := config.Load()
	if err != nil {
		log.Warn("failed to reload config", "error", err)
		return
	}
	s.apply(cfg)
	s.render(ctx, s.now())
}

// render rebuilds the display at now and keeps the clock in step with it.
func (s *session) render(ctx context.Context, now time.Time) {
	d := menubar.Render(s.last, s.settings, now)
	s.clock.Sync(d.Ticking)

	if s.events != nil {
		select {
		case s.events <- tui.DisplayEvent{Display: d, Now: now}:
		case <-ctx.Done():
		}
		return
	}

	line := d.String()
	if line == s.lastLine {
		return
	}
	s.lastLine = line
	fmt.Fprintf(s.out, "%s  %s\n", now.Format("15:04"), line)
}

// notify shows a short note in the TUI, or logs it in plain mode.
func (s *session) notify(msg string) {
	if s.events != nil {
		tui.SendEvent(s.events, tui.StatusEvent{Message: msg})
		return
	}
	log.Info(msg)
}
