package clone

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/avifenesh/agnix-harness/internal/exec"
)

// fakeRunner records the git invocation and returns canned results.
type fakeRunner struct {
	calls   int
	name    string
	args    []string
	env     []string
	output  []byte
	err     error
	blockOn bool
}

func (f *fakeRunner) Run(ctx context.Context, workDir string, extraEnv []string, name string, args ...string) ([]byte, error) {
	f.calls++
	f.name = name
	f.args = args
	f.env = extraEnv
	if f.blockOn {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.output, f.err
}

func (f *fakeRunner) Capture(ctx context.Context, workDir string, name string, args ...string) (*exec.Result, error) {
	return &exec.Result{}, nil
}

func TestCloneAlreadyCloned(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	m := NewManager(runner)

	ok, msg := m.Clone(context.Background(), "https://github.com/acme/alpha", dir, "")
	if !ok {
		t.Fatal("expected success for existing directory")
	}
	if msg != "already cloned" {
		t.Errorf("expected message %q, got %q", "already cloned", msg)
	}
	if runner.calls != 0 {
		t.Errorf("expected no git invocation, got %d", runner.calls)
	}
}

func TestCloneBuildsShallowCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "acme--alpha")
	runner := &fakeRunner{}
	m := NewManager(runner)

	ok, msg := m.Clone(context.Background(), "https://github.com/acme/alpha", target, "main")
	if !ok {
		t.Fatalf("expected success, got %q", msg)
	}
	if msg != "ok" {
		t.Errorf("expected message ok, got %q", msg)
	}

	if runner.name != "git" {
		t.Fatalf("expected git, got %q", runner.name)
	}
	got := strings.Join(runner.args, " ")
	want := "clone --depth 1 --single-branch --branch main https://github.com/acme/alpha " + target
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestCloneOmitsBranchWhenUnset(t *testing.T) {
	target := filepath.Join(t.TempDir(), "acme--alpha")
	runner := &fakeRunner{}
	m := NewManager(runner)

	m.Clone(context.Background(), "https://github.com/acme/alpha", target, "")
	for _, a := range runner.args {
		if a == "--branch" {
			t.Fatal("--branch must not be passed without a branch")
		}
	}
}

func TestCloneDisablesPromptsAndSystemConfig(t *testing.T) {
	target := filepath.Join(t.TempDir(), "acme--alpha")
	runner := &fakeRunner{}
	m := NewManager(runner)

	m.Clone(context.Background(), "https://github.com/acme/alpha", target, "")
	env := strings.Join(runner.env, " ")
	if !strings.Contains(env, "GIT_CONFIG_NOSYSTEM=1") {
		t.Error("expected GIT_CONFIG_NOSYSTEM=1 in clone environment")
	}
	if !strings.Contains(env, "GIT_TERMINAL_PROMPT=0") {
		t.Error("expected GIT_TERMINAL_PROMPT=0 in clone environment")
	}
}

func TestCloneFailureReturnsStderrText(t *testing.T) {
	target := filepath.Join(t.TempDir(), "acme--alpha")
	runner := &fakeRunner{
		output: []byte("fatal: repository not found\n"),
		err:    errors.New("exit status 128"),
	}
	m := NewManager(runner)

	ok, msg := m.Clone(context.Background(), "https://github.com/acme/alpha", target, "")
	if ok {
		t.Fatal("expected failure")
	}
	if msg != "fatal: repository not found" {
		t.Errorf("expected trimmed git output, got %q", msg)
	}
}

func TestCloneFailureFallsBackToError(t *testing.T) {
	target := filepath.Join(t.TempDir(), "acme--alpha")
	runner := &fakeRunner{err: errors.New("exec: \"git\": executable file not found")}
	m := NewManager(runner)

	ok, msg := m.Clone(context.Background(), "https://github.com/acme/alpha", target, "")
	if ok {
		t.Fatal("expected failure")
	}
	if !strings.Contains(msg, "not found") {
		t.Errorf("expected error text, got %q", msg)
	}
}

func TestCloneTimeout(t *testing.T) {
	target := filepath.Join(t.TempDir(), "acme--alpha")
	runner := &fakeRunner{blockOn: true}
	m := NewManager(runner)
	m.timeout = 50 * time.Millisecond

	ok, msg := m.Clone(context.Background(), "https://github.com/acme/alpha", target, "")
	if ok {
		t.Fatal("expected failure on timeout")
	}
	if msg != "clone timeout" {
		t.Errorf("expected message %q, got %q", "clone timeout", msg)
	}
}
