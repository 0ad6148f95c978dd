package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/slaclock/config"
	"github.com/spiffcs/slaclock/internal/log"
	"github.com/spiffcs/slaclock/internal/menubar"
	"github.com/spiffcs/slaclock/internal/output"
	"github.com/spiffcs/slaclock/internal/scrape"
	"github.com/spiffcs/slaclock/internal/sla"
)

// NewCmdList creates the list command.
func NewCmdList(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the tracked tickets once, nearest deadline first",
		Long: `Reads the mailbox folder once and prints every tracked ticket with its
deadline, countdown, waiting time and link.

Use --input to rank a JSON dump of ticket records instead of opening the
browser.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	addListFlags(cmd, opts)
	return cmd
}

// addListFlags adds the list-specific flags to a command.
func addListFlags(cmd *cobra.Command, opts *Options) {
	addSourceFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Show at most this many tickets (0 = all)")
}

func runList(cmd *cobra.Command, opts *Options) error {
	log.Initialize(opts.Verbosity, os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	source, closeSource := newSource(cfg, opts)
	defer closeSource()

	o, err := source.Scrape(cmd.Context())
	if err != nil {
		return err
	}

	return printOutcome(o, cfg, opts, time.Now(), cmd.OutOrStdout())
}

// printOutcome ranks a single outcome and prints it in the chosen format.
func printOutcome(o scrape.Outcome, cfg *config.Config, opts *Options, now time.Time, w io.Writer) error {
	name := opts.Format
	if name == "" {
		name = cfg.GetDefaultFormat()
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}

	report, err := buildReport(o, cfg, opts, now)
	if err != nil {
		return err
	}

	return output.NewFormatter(format).Format(report, w)
}

// buildReport turns an outcome into a report, or an error when there is
// nothing to rank.
func buildReport(o scrape.Outcome, cfg *config.Config, opts *Options, now time.Time) (output.Report, error) {
	report := output.Report{
		Now:         now,
		MailboxURL:  mailboxURL(cfg, opts),
		PriorityTag: cfg.GetPriorityTag(),
	}

	switch o := o.(type) {
	case scrape.Batch:
		snapshot, err := cfg.SLAConfiguration()
		if err != nil {
			return report, err
		}
		for _, e := range o.Errors {
			log.Warn("skipping unreadable record", "error", e)
		}

		pass, err := sla.Process(o.Records, snapshot, now)
		if err != nil {
			return report, err
		}

		report.Folder = o.Title
		report.Tickets = pass.Ranked
		if opts.Limit > 0 {
			report.Tickets = sla.Top(pass.Ranked, opts.Limit)
		}
		report.Dropped = len(o.Errors) + len(pass.Dropped)
		return report, nil

	case scrape.EmptyMailbox:
		report.Folder = o.Title
		return report, nil

	case scrape.LoginRequired:
		return report, errors.New(menubar.LoginMessage)

	case scrape.NoFolder:
		return report, errors.New(menubar.NoFolderMessage)

	case scrape.Failure:
		if o.Err == nil {
			return report, scrape.ErrOffline
		}
		return report, o.Err

	default:
		return report, fmt.Errorf("unsupported outcome %T", o)
	}
}

