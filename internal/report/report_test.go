package report

import (
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/avifenesh/agnix-harness/internal/agnix"
	"github.com/avifenesh/agnix-harness/internal/results"
)

func init() {
	// Keep assertions on plain text.
	color.NoColor = true
}

func recordWithRules(url string, rules ...string) *results.Record {
	diags := make([]agnix.Diagnostic, 0, len(rules))
	for _, r := range rules {
		diags = append(diags, agnix.Diagnostic{Level: "warning", Rule: r})
	}
	return &results.Record{
		URL:          url,
		Slug:         "s",
		CloneSuccess: true,
		Agnix: &agnix.Outcome{
			Output: &agnix.Output{Diagnostics: diags},
		},
	}
}

func TestSummarize(t *testing.T) {
	records := []*results.Record{
		recordWithRules("r1", "R1", "R1", "R2"),
		recordWithRules("r2"),
		recordWithRules("r3", "R1"),
	}

	s := Summarize(records)

	if s.TotalDiagnostics != 4 {
		t.Errorf("expected 4 total diagnostics, got %d", s.TotalDiagnostics)
	}
	if s.RuleCounts["R1"] != 3 {
		t.Errorf("expected R1:3, got %d", s.RuleCounts["R1"])
	}
	if s.RuleCounts["R2"] != 1 {
		t.Errorf("expected R2:1, got %d", s.RuleCounts["R2"])
	}
	if s.CleanRepos != 1 {
		t.Errorf("expected 1 clean repo, got %d", s.CleanRepos)
	}
	if s.TotalRecords != 3 {
		t.Errorf("expected 3 records, got %d", s.TotalRecords)
	}
}

func TestSummarizeSkipsFailures(t *testing.T) {
	records := []*results.Record{
		{URL: "r1", CloneSuccess: false, CloneError: "clone timeout"},
		{URL: "r2", CloneSuccess: true, Agnix: &agnix.Outcome{ExitCode: -1, Stderr: "agnix timeout"}},
		recordWithRules("r3", "R1"),
	}

	s := Summarize(records)

	if s.CloneFailures != 1 {
		t.Errorf("expected 1 clone failure, got %d", s.CloneFailures)
	}
	if s.ToolFailures != 1 {
		t.Errorf("expected 1 tool failure, got %d", s.ToolFailures)
	}
	if s.TotalDiagnostics != 1 {
		t.Errorf("expected failures excluded from diagnostics, got %d", s.TotalDiagnostics)
	}
	if s.CleanRepos != 0 {
		t.Errorf("failed repos must not count as clean, got %d", s.CleanRepos)
	}
}

func TestTopRulesOrdering(t *testing.T) {
	s := &Summary{RuleCounts: map[string]int{"B": 2, "A": 2, "C": 5}}

	top := s.TopRules(2)
	if len(top) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(top))
	}
	if top[0].Rule != "C" || top[0].Count != 5 {
		t.Errorf("expected C:5 first, got %s:%d", top[0].Rule, top[0].Count)
	}
	if top[1].Rule != "A" {
		t.Errorf("expected ties broken by rule name, got %q", top[1].Rule)
	}
}

func TestStatusLineCloneFailure(t *testing.T) {
	line := StatusLine(&results.Record{URL: "https://x/y", CloneError: "clone timeout"})
	want := "  FAIL clone: https://x/y -- clone timeout"
	if line != want {
		t.Errorf("line = %q, want %q", line, want)
	}
}

func TestStatusLineToolFailure(t *testing.T) {
	line := StatusLine(&results.Record{
		URL:          "https://x/y",
		CloneSuccess: true,
		Agnix:        &agnix.Outcome{ExitCode: -1, Stderr: "agnix timeout"},
	})
	want := "  FAIL agnix: https://x/y -- agnix timeout"
	if line != want {
		t.Errorf("line = %q, want %q", line, want)
	}
}

func TestStatusLineClean(t *testing.T) {
	line := StatusLine(&results.Record{
		URL:          "https://x/y",
		CloneSuccess: true,
		Agnix: &agnix.Outcome{
			WallTimeMS: 87,
			Output:     &agnix.Output{FilesChecked: 4},
		},
	})
	want := "  CLEAN: https://x/y [4 files, 87ms]"
	if line != want {
		t.Errorf("line = %q, want %q", line, want)
	}
}

func TestStatusLineDiagnostics(t *testing.T) {
	line := StatusLine(&results.Record{
		URL:          "https://x/y",
		CloneSuccess: true,
		Agnix: &agnix.Outcome{
			WallTimeMS: 120,
			Output: &agnix.Output{
				FilesChecked: 9,
				Diagnostics: []agnix.Diagnostic{
					{Level: "error", Rule: "AS-004"},
					{Level: "warning", Rule: "AS-001"},
					{Level: "error", Rule: "AS-004"},
				},
				Summary: agnix.Summary{Errors: 2, Warnings: 1},
			},
		},
	})
	want := "  E=2 W=1 I=0: https://x/y [9 files, 120ms] AS-001(1), AS-004(2)"
	if line != want {
		t.Errorf("line = %q, want %q", line, want)
	}
}

func TestRender(t *testing.T) {
	records := []*results.Record{
		recordWithRules("r1", "R1", "R1", "R2"),
		recordWithRules("r2"),
	}

	var buf strings.Builder
	Summarize(records).Render(&buf, 20)
	out := buf.String()

	for _, want := range []string{
		"Total diagnostics: 3",
		"Clean repos: 1/2",
		"Top rules by frequency:",
		"  R1: 2",
		"  R2: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
}
