package main

import (
	"fmt"
	"os"
	osexec "os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/avifenesh/agnix-harness/internal/agnix"
	"github.com/avifenesh/agnix-harness/internal/clone"
	"github.com/avifenesh/agnix-harness/internal/config"
	"github.com/avifenesh/agnix-harness/internal/exec"
	"github.com/avifenesh/agnix-harness/internal/harness"
	"github.com/avifenesh/agnix-harness/internal/manifest"
	"github.com/avifenesh/agnix-harness/internal/report"
	"github.com/avifenesh/agnix-harness/internal/results"
	"github.com/avifenesh/agnix-harness/internal/runlog"
)

var (
	validateManifest  string
	validateOutputDir string
	validateAgnixBin  string
	validateParallel  int
	validateTimeout   int
	validateSkipClone bool
	validateFilter    string
	validateCategory  string
	validateStatus    string
	validateLimit     int
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Clone and validate every repository in the manifest",
	Long: `Clone repositories from the manifest and run agnix against each one.

Each repository's result is written to <output-dir>/results/<slug>.json.
Repositories with an existing result file are skipped entirely, so an
interrupted batch can be resumed by re-running the same command.

Per-repository failures (clone errors, agnix timeouts, unparseable output)
are recorded and do not affect the exit code. The command exits non-zero
only when the manifest or the agnix binary cannot be found.

Examples:
  agnix-harness validate --repos-file repos.yaml
  agnix-harness validate --category agents --limit 50
  agnix-harness validate --skip-clone --parallel 8`,
	RunE: runValidate,
}

func init() {
	defaults := config.Default()
	f := validateCmd.Flags()
	f.StringVar(&validateManifest, "repos-file", defaults.Manifest, "Path to the repository manifest")
	f.StringVar(&validateOutputDir, "output-dir", defaults.OutputDir, "Output directory for clones and results")
	f.StringVar(&validateAgnixBin, "agnix-bin", defaults.AgnixBin, "Path to the agnix binary")
	f.IntVar(&validateParallel, "parallel", defaults.Parallel, "Parallel clone/validate workers")
	f.IntVar(&validateTimeout, "timeout", int(defaults.Timeout.Seconds()), "Timeout per repository (seconds)")
	f.BoolVar(&validateSkipClone, "skip-clone", false, "Reuse existing clones without fetching")
	f.StringVar(&validateFilter, "filter", "", "Filter repositories by URL substring")
	f.StringVar(&validateCategory, "category", "", "Filter repositories by category")
	f.StringVar(&validateStatus, "status", manifest.StatusPending, "Filter repositories by status")
	f.IntVar(&validateLimit, "limit", 0, "Limit the number of repositories processed")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyConfigDefaults(cmd, cfg)

	entries, err := manifest.Load(validateManifest, manifest.Filter{
		Status:       validateStatus,
		Category:     validateCategory,
		URLSubstring: validateFilter,
		Limit:        validateLimit,
	})
	if err != nil {
		return err
	}

	binPath, err := resolveAgnixBin(validateAgnixBin)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No repos matched filters.")
		return nil
	}

	extraArgs, err := cfg.ExtraArgList()
	if err != nil {
		return err
	}

	outputDir, err := filepath.Abs(validateOutputDir)
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}
	store, err := results.NewStore(filepath.Join(outputDir, "results"))
	if err != nil {
		return err
	}

	fmt.Printf("Processing %d repos (parallel=%d, timeout=%ds)\n",
		len(entries), validateParallel, validateTimeout)

	runner := exec.NewRunner()
	started := time.Now()
	h := harness.New(harness.Config{
		Entries:   entries,
		ClonesDir: filepath.Join(outputDir, "clones"),
		Store:     store,
		Cloner:    clone.NewManager(runner),
		Invoker:   agnix.NewInvoker(binPath, extraArgs, runner),
		Workers:   validateParallel,
		Timeout:   time.Duration(validateTimeout) * time.Second,
		SkipClone: validateSkipClone,
		OnResult: func(rec *results.Record) {
			fmt.Println(report.StatusLine(rec))
		},
	})
	records, failures := h.Run(cmd.Context())

	fmt.Printf("\nDone: %d/%d repos, %d failures\n", len(entries), len(entries), failures)

	summary := report.Summarize(records)
	summary.Render(os.Stdout, 20)

	recordRun(outputDir, &runlog.Run{
		ManifestPath:     validateManifest,
		StartedAt:        started,
		FinishedAt:       time.Now(),
		Total:            len(entries),
		Failures:         failures,
		CleanRepos:       summary.CleanRepos,
		TotalDiagnostics: summary.TotalDiagnostics,
	})

	return nil
}

// applyConfigDefaults fills in flags the user did not set from the loaded
// configuration, so config values apply without shadowing explicit flags.
func applyConfigDefaults(cmd *cobra.Command, cfg *config.Config) {
	if !cmd.Flags().Changed("repos-file") {
		validateManifest = cfg.Manifest
	}
	if !cmd.Flags().Changed("output-dir") {
		validateOutputDir = cfg.OutputDir
	}
	if !cmd.Flags().Changed("agnix-bin") {
		validateAgnixBin = cfg.AgnixBin
	}
	if !cmd.Flags().Changed("parallel") {
		validateParallel = cfg.Parallel
	}
	if !cmd.Flags().Changed("timeout") {
		validateTimeout = int(cfg.Timeout.Seconds())
	}
}

// resolveAgnixBin verifies the agnix binary exists, either as a path or via
// PATH lookup, and returns the path to invoke.
func resolveAgnixBin(bin string) (string, error) {
	if strings.ContainsRune(bin, os.PathSeparator) {
		abs, err := filepath.Abs(bin)
		if err != nil {
			return "", fmt.Errorf("resolve agnix binary: %w", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("agnix binary not found: %s", abs)
		}
		return abs, nil
	}

	path, err := osexec.LookPath(bin)
	if err != nil {
		return "", fmt.Errorf("agnix binary not found: %s", bin)
	}
	return path, nil
}

// recordRun appends the run to the history database. Best effort: history
// must never fail a completed batch.
func recordRun(outputDir string, run *runlog.Run) {
	db, err := runlog.Open(filepath.Join(outputDir, "runs.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: open run log: %v\n", err)
		return
	}
	defer db.Close()

	if err := db.RecordRun(run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: record run: %v\n", err)
	}
}
