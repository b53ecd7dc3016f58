// Package exec provides an interface for command execution.
package exec

import (
	"context"
)

// Result holds the captured output of a completed command.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the command's exit status.
	ExitCode int
}

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking command execution in tests.
type CommandRunner interface {
	// Run executes a command and returns combined stdout/stderr output.
	// The working directory is set to workDir if non-empty; extraEnv
	// entries are appended to the inherited environment.
	Run(ctx context.Context, workDir string, extraEnv []string, name string, args ...string) (output []byte, err error)

	// Capture executes a command with stdout and stderr captured
	// separately. A command that runs to completion with a non-zero exit
	// status is not an error; the status is reported in Result.ExitCode.
	// A non-nil error means the command could not be started or was
	// killed before completing.
	Capture(ctx context.Context, workDir string, name string, args ...string) (*Result, error)
}
