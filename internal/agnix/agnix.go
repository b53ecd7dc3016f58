// Package agnix invokes the agnix linter and models its JSON output.
package agnix

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/avifenesh/agnix-harness/internal/exec"
)

// maxFiles caps the number of files agnix inspects per repository, bounding
// worst-case runtime on very large clones.
const maxFiles = 5000

// Output is the JSON document agnix emits with --format json.
type Output struct {
	// Version of agnix that produced this output.
	Version string `json:"version"`
	// FilesChecked is the number of unique files checked.
	FilesChecked int `json:"files_checked"`
	// Diagnostics lists the findings.
	Diagnostics []Diagnostic `json:"diagnostics"`
	// Summary holds counts by severity level.
	Summary Summary `json:"summary"`
}

// Diagnostic is a single finding.
type Diagnostic struct {
	// Level is the severity: error, warning, or info.
	Level string `json:"level"`
	// Rule is the rule identifier (e.g. AS-004).
	Rule string `json:"rule"`
	// File is the path of the offending file.
	File string `json:"file"`
	// Line is the 1-based line number.
	Line int `json:"line"`
	// Column is the 1-based column number.
	Column int `json:"column"`
	// Message describes the finding.
	Message string `json:"message"`
	// Suggestion optionally proposes a fix.
	Suggestion string `json:"suggestion,omitempty"`
}

// Summary holds diagnostic counts by severity level.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// Outcome captures one agnix run, successful or not. Every failure mode is
// encoded as a value; invocation never surfaces an error to callers.
type Outcome struct {
	// ExitCode is the process exit status, or -1 when the run timed out
	// or never launched.
	ExitCode int `json:"exit_code"`
	// Output is the parsed JSON document, or nil when stdout was not
	// valid JSON.
	Output *Output `json:"output"`
	// Stderr is the trimmed standard error text.
	Stderr string `json:"stderr,omitempty"`
	// WallTimeMS is the measured wall-clock duration. On timeout it is
	// the synthetic value timeout*1000, not a measurement; on launch
	// failure it is zero.
	WallTimeMS int64 `json:"wall_time_ms"`
}

// Invoker runs the agnix binary against target directories.
type Invoker struct {
	bin       string
	extraArgs []string
	runner    exec.CommandRunner
}

// NewInvoker creates an invoker for the given agnix binary. extraArgs are
// appended to every invocation after the fixed arguments.
func NewInvoker(bin string, extraArgs []string, runner exec.CommandRunner) *Invoker {
	return &Invoker{bin: bin, extraArgs: extraArgs, runner: runner}
}

// Invoke runs agnix against targetDir under the given timeout. The three
// failure encodings are distinguishable: a timeout yields exit code -1 with
// the synthetic wall time, a launch failure yields exit code -1 with zero
// wall time, and a completed run whose stdout is not valid JSON keeps the
// real exit code and measured wall time with a nil Output.
func (i *Invoker) Invoke(ctx context.Context, targetDir string, timeout time.Duration) *Outcome {
	args := []string{targetDir, "--format", "json", "--max-files", strconv.Itoa(maxFiles)}
	args = append(args, i.extraArgs...)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res, err := i.runner.Capture(runCtx, "", i.bin, args...)
	wallTime := time.Since(start).Milliseconds()

	if runCtx.Err() == context.DeadlineExceeded {
		return &Outcome{
			ExitCode:   -1,
			Stderr:     "agnix timeout",
			WallTimeMS: timeout.Milliseconds(),
		}
	}
	if err != nil {
		return &Outcome{
			ExitCode: -1,
			Stderr:   err.Error(),
		}
	}

	outcome := &Outcome{
		ExitCode:   res.ExitCode,
		Stderr:     strings.TrimSpace(string(res.Stderr)),
		WallTimeMS: wallTime,
	}

	var parsed Output
	if jsonErr := json.Unmarshal(res.Stdout, &parsed); jsonErr == nil {
		outcome.Output = &parsed
	}

	return outcome
}
