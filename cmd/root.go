package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := NewOptions()

	rootCmd := &cobra.Command{
		Use:   "slaclock",
		Short: "Help Scout SLA countdown",
		Long: `Watches a Help Scout mailbox folder and shows how long you have until
the next conversation misses its SLA. Deadlines honor a daily business
window and a shorter allowance for priority-tagged conversations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add watch flags to root command so `slaclock` and `slaclock watch` work identically
	addWatchFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdWatch(opts))
	rootCmd.AddCommand(NewCmdList(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
