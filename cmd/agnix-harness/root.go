package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agnix-harness",
	Short: "Real-world validation harness for agnix",
	Long: `agnix-harness clones repositories from a YAML manifest, runs the agnix
linter against each one, and persists per-repository results.

Results are cached on disk: a repository with an existing result record is
never re-cloned or re-validated, so interrupted batches resume where they
left off.

Core capabilities:
- Filters the manifest by status, category, and URL substring
- Clones shallowly with bounded time and no credential prompts
- Validates repositories in parallel with per-repo timeouts
- Aggregates diagnostics into a per-rule frequency report`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)
}
