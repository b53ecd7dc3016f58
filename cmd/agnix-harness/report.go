package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/avifenesh/agnix-harness/internal/report"
	"github.com/avifenesh/agnix-harness/internal/results"
)

var (
	reportOutputDir string
	reportTopRules  int
	reportPerRepo   bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Re-aggregate existing results without running anything",
	Long: `Read the result records under <output-dir>/results and print the
aggregate summary. No repositories are cloned and agnix is not invoked.

Useful after a batch completes, or while one is still running in another
terminal.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOutputDir, "output-dir", "validation-output", "Output directory holding results")
	reportCmd.Flags().IntVar(&reportTopRules, "top", 20, "Number of rules to show in the frequency table")
	reportCmd.Flags().BoolVar(&reportPerRepo, "per-repo", false, "Also print one status line per repository")
}

func runReport(cmd *cobra.Command, args []string) error {
	resultsDir := filepath.Join(reportOutputDir, "results")
	if _, err := os.Stat(resultsDir); err != nil {
		return fmt.Errorf("results directory not found: %s", resultsDir)
	}

	store, err := results.NewStore(resultsDir)
	if err != nil {
		return err
	}
	records, err := store.List()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if reportPerRepo {
		for _, rec := range records {
			fmt.Println(report.StatusLine(rec))
		}
	}

	fmt.Printf("Results: %d repos\n", len(records))
	report.Summarize(records).Render(os.Stdout, reportTopRules)
	return nil
}
