package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spiffcs/slaclock/internal/cache"
	"github.com/spiffcs/slaclock/internal/constants"
	"github.com/spiffcs/slaclock/internal/log"
	"github.com/spiffcs/slaclock/internal/update"
)

// Version information, set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo sets the version information (called from main).
func SetVersionInfo(v, c, d string) {
	if v != "" {
		version = v
	}
	if c != "" {
		commit = c
	}
	if d != "" {
		date = d
	}
}

// NewCmdVersion creates the version command.
func NewCmdVersion() *cobra.Command {
	var check, refresh bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "slaclock %s\n", version)
			fmt.Fprintf(w, "  commit: %s\n", commit)
			fmt.Fprintf(w, "  built:  %s\n", date)

			if !check {
				return nil
			}
			var opts []update.Option
			if store, err := cache.New("releases"); err != nil {
				log.Debug("release cache unavailable", "error", err)
			} else {
				opts = releaseCacheOptions(store, refresh)
			}
			checker, err := update.NewChecker(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			res, err := checker.Check(cmd.Context(), version)
			return printUpdate(w, res, err)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Clear the cached release before checking")
	return cmd
}

// releaseCacheOptions caches release lookups in store. With refresh the
// store is emptied first so the check goes to GitHub.
func releaseCacheOptions(store *cache.Cache, refresh bool) []update.Option {
	if refresh {
		if err := store.Clear(); err != nil {
			log.Warn("failed to clear release cache", "error", err)
			return nil
		}
	}
	return []update.Option{update.WithCache(store, constants.ReleaseCacheTTL)}
}

func printUpdate(w io.Writer, res update.Result, err error) error {
	switch {
	case errors.Is(err, update.ErrNoRelease):
		fmt.Fprintln(w, "\nNo published release yet.")
		return nil
	case err != nil:
		return fmt.Errorf("update check failed: %w", err)
	case res.Available:
		fmt.Fprintf(w, "\nA new version is available: %s\n  %s\n", res.Latest, res.URL)
	default:
		fmt.Fprintf(w, "\nYou are running the latest version (%s).\n", res.Latest)
	}
	return nil
}
