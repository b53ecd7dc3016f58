// Package clone materializes remote repositories as local workspaces.
//
// A workspace is a shallow, single-branch clone bound to a repository slug.
// An existing target directory is trusted as-is and never re-fetched or
// verified; removing a stale workspace is a manual operation.
package clone

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avifenesh/agnix-harness/internal/exec"
)

// DefaultTimeout bounds a single clone.
const DefaultTimeout = 120 * time.Second

// cloneEnv disables interactive credential prompts and system-level git
// configuration so clones behave the same on every machine.
var cloneEnv = []string{
	"GIT_CONFIG_NOSYSTEM=1",
	"GIT_TERMINAL_PROMPT=0",
}

// Manager performs clones through a CommandRunner.
type Manager struct {
	runner  exec.CommandRunner
	timeout time.Duration
}

// NewManager creates a clone manager with the default timeout.
func NewManager(runner exec.CommandRunner) *Manager {
	return &Manager{runner: runner, timeout: DefaultTimeout}
}

// Clone ensures a local copy of url exists at targetDir, optionally pinned to
// branch. It returns true with "already cloned" if the directory exists, and
// false with an error message on any failure. After a failure the directory
// may or may not exist; callers must not treat it as a valid workspace.
func (m *Manager) Clone(ctx context.Context, url, targetDir, branch string) (bool, string) {
	if _, err := os.Stat(targetDir); err == nil {
		return true, "already cloned"
	}

	if err := os.MkdirAll(filepath.Dir(targetDir), 0755); err != nil {
		return false, err.Error()
	}

	args := []string{"clone", "--depth", "1", "--single-branch"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, url, targetDir)

	cloneCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	out, err := m.runner.Run(cloneCtx, "", cloneEnv, "git", args...)
	if cloneCtx.Err() == context.DeadlineExceeded {
		return false, "clone timeout"
	}
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return false, msg
	}

	return true, "ok"
}
