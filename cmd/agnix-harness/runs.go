package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/avifenesh/agnix-harness/internal/runlog"
)

var (
	runsOutputDir string
	runsLimit     int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent harness runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsOutputDir, "output-dir", "validation-output", "Output directory holding the run log")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Number of runs to show")
}

func runRuns(cmd *cobra.Command, args []string) error {
	dbPath := filepath.Join(runsOutputDir, "runs.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	db, err := runlog.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.RecentRuns(runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %s  %d repos, %d failures, %d clean, %d diagnostics  (%s)\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Total, r.Failures, r.CleanRepos, r.TotalDiagnostics,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String())
	}
	return nil
}
