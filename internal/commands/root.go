package commands

import (
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/buildinfo"
)

type rootOptions struct {
	verbose bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Personal budget tracking and bill reminders",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "human-readable debug logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newBudgetCommand(opts))
	rootCmd.AddCommand(newBillsCommand(opts))
	rootCmd.AddCommand(newNormalizeCommand(opts))

	return rootCmd
}
