// Package harness drives the clone → validate → persist pipeline for every
// manifest entry across a bounded pool of workers.
//
// Each entry is processed to completion by a single worker; entries never
// affect each other's scheduling, and completion order follows external I/O
// latency, not submission order. Progress counters are owned by the single
// collector goroutine receiving completions, so no locking is needed beyond
// the result store's own write discipline.
package harness

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avifenesh/agnix-harness/internal/agnix"
	"github.com/avifenesh/agnix-harness/internal/manifest"
	"github.com/avifenesh/agnix-harness/internal/results"
)

// DefaultWorkers is the worker count used when none is configured.
const DefaultWorkers = 4

// progressEvery is the completion interval between progress lines.
const progressEvery = 10

// Cloner materializes a workspace for a repository URL.
type Cloner interface {
	Clone(ctx context.Context, url, targetDir, branch string) (success bool, message string)
}

// Invoker runs the validation tool against a workspace.
type Invoker interface {
	Invoke(ctx context.Context, targetDir string, timeout time.Duration) *agnix.Outcome
}

// Config wires the harness dependencies.
type Config struct {
	// Entries are the manifest entries to process.
	Entries []manifest.Entry
	// ClonesDir is the root directory for workspaces, one per slug.
	ClonesDir string
	// Store persists one record per slug.
	Store *results.Store
	// Cloner materializes workspaces.
	Cloner Cloner
	// Invoker runs the tool.
	Invoker Invoker
	// Workers bounds the number of entries processed concurrently.
	Workers int
	// Timeout bounds a single tool invocation.
	Timeout time.Duration
	// SkipClone reuses existing workspaces without fetching. An entry
	// without a workspace is recorded as a clone failure.
	SkipClone bool
	// OnResult, if set, is called from the collector for every completed
	// record, in completion order.
	OnResult func(*results.Record)
	// Progress receives progress and worker-fault lines. Defaults to
	// os.Stdout.
	Progress io.Writer
}

// Runner executes one harness batch.
type Runner struct {
	cfg Config
}

// New creates a Runner, applying defaults for Workers and Progress.
func New(cfg Config) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Progress == nil {
		cfg.Progress = os.Stdout
	}
	return &Runner{cfg: cfg}
}

// completion carries one finished entry from a worker to the collector.
// err is set only for unmodeled worker faults; modeled failures (clone or
// tool errors) arrive as regular records.
type completion struct {
	entry manifest.Entry
	rec   *results.Record
	err   error
}

// Run processes every entry and returns the completed records in completion
// order, along with the harness-level failure count. Per-entry failures are
// recorded in the store and do not count as harness failures.
func (r *Runner) Run(ctx context.Context) ([]*results.Record, int) {
	total := len(r.cfg.Entries)

	jobs := make(chan manifest.Entry)
	completions := make(chan completion)

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				rec, err := r.processEntry(ctx, entry)
				completions <- completion{entry: entry, rec: rec, err: err}
			}
		}()
	}

	go func() {
		for _, entry := range r.cfg.Entries {
			jobs <- entry
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(completions)
	}()

	// Collector owns the progress counters.
	var records []*results.Record
	done := 0
	failed := 0
	for c := range completions {
		done++
		if c.err != nil {
			failed++
			fmt.Fprintf(r.cfg.Progress, "  ERROR: %s -- %v\n", c.entry.URL, c.err)
		} else {
			records = append(records, c.rec)
			if r.cfg.OnResult != nil {
				r.cfg.OnResult(c.rec)
			}
		}

		if done%progressEvery == 0 {
			fmt.Fprintf(r.cfg.Progress, "--- Progress: %d/%d done, %d failures ---\n",
				done, total, failed)
		}
	}

	return records, failed
}

// processEntry runs the per-entry pipeline, converting panics into errors so
// one faulty entry cannot take down the batch.
func (r *Runner) processEntry(ctx context.Context, entry manifest.Entry) (rec *results.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			rec = nil
			err = fmt.Errorf("worker panic: %v", p)
		}
	}()
	return r.process(ctx, entry)
}

// process is the per-entry state machine: cache check, then clone, then
// invoke, then persist. A cache hit skips everything; a clone failure skips
// invocation. The record is persisted exactly once per processing attempt.
func (r *Runner) process(ctx context.Context, entry manifest.Entry) (*results.Record, error) {
	slug := manifest.Slug(entry.URL)

	cached, err := r.cfg.Store.Get(slug)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	rec := &results.Record{
		URL:        entry.URL,
		Slug:       slug,
		Categories: append([]string{}, entry.Categories...),
	}
	cloneDir := filepath.Join(r.cfg.ClonesDir, slug)

	if !r.cfg.SkipClone {
		ok, msg := r.cfg.Cloner.Clone(ctx, entry.URL, cloneDir, entry.Branch)
		if !ok {
			rec.CloneError = msg
			return rec, r.cfg.Store.Put(rec)
		}
	}

	if _, statErr := os.Stat(cloneDir); statErr != nil {
		rec.CloneError = "clone directory not found (run without --skip-clone)"
		return rec, r.cfg.Store.Put(rec)
	}

	rec.CloneSuccess = true
	rec.Agnix = r.cfg.Invoker.Invoke(ctx, cloneDir, r.cfg.Timeout)

	return rec, r.cfg.Store.Put(rec)
}
