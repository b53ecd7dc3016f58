// Package report renders per-repository status lines and the aggregate
// summary over a set of validation records.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/avifenesh/agnix-harness/internal/agnix"
	"github.com/avifenesh/agnix-harness/internal/results"
)

// Summary aggregates a set of validation records. Diagnostic counts consider
// only records with a successful clone and parseable tool output; the
// denominators count every record.
type Summary struct {
	// TotalRecords is the number of records aggregated.
	TotalRecords int
	// TotalDiagnostics is the diagnostic count across all parseable runs.
	TotalDiagnostics int
	// CleanRepos counts parseable runs with zero diagnostics.
	CleanRepos int
	// CloneFailures counts records whose clone failed.
	CloneFailures int
	// ToolFailures counts records whose clone succeeded but whose tool
	// run produced no parseable output.
	ToolFailures int
	// RuleCounts maps rule identifiers to hit counts.
	RuleCounts map[string]int
}

// RuleCount pairs a rule identifier with its hit count.
type RuleCount struct {
	Rule  string
	Count int
}

// Summarize folds records into a Summary.
func Summarize(records []*results.Record) *Summary {
	s := &Summary{
		TotalRecords: len(records),
		RuleCounts:   make(map[string]int),
	}

	for _, rec := range records {
		if !rec.CloneSuccess {
			s.CloneFailures++
			continue
		}
		if rec.Agnix == nil || rec.Agnix.Output == nil {
			s.ToolFailures++
			continue
		}

		diags := rec.Agnix.Output.Diagnostics
		if len(diags) == 0 {
			s.CleanRepos++
		}
		s.TotalDiagnostics += len(diags)
		for _, d := range diags {
			s.RuleCounts[d.Rule]++
		}
	}

	return s
}

// TopRules returns up to n rules ordered by descending hit count, rule name
// breaking ties for determinism.
func (s *Summary) TopRules(n int) []RuleCount {
	rules := make([]RuleCount, 0, len(s.RuleCounts))
	for rule, count := range s.RuleCounts {
		rules = append(rules, RuleCount{Rule: rule, Count: count})
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Count != rules[j].Count {
			return rules[i].Count > rules[j].Count
		}
		return rules[i].Rule < rules[j].Rule
	})
	if n > 0 && len(rules) > n {
		rules = rules[:n]
	}
	return rules
}

// Render writes the aggregate summary, including the topN most frequent
// rules.
func (s *Summary) Render(w io.Writer, topN int) {
	fmt.Fprintf(w, "\nTotal diagnostics: %d\n", s.TotalDiagnostics)
	fmt.Fprintf(w, "Clean repos: %d/%d\n", s.CleanRepos, s.TotalRecords)
	if s.CloneFailures > 0 || s.ToolFailures > 0 {
		fmt.Fprintf(w, "Clone failures: %d, agnix failures: %d\n", s.CloneFailures, s.ToolFailures)
	}
	fmt.Fprintf(w, "\nTop rules by frequency:\n")
	for _, rc := range s.TopRules(topN) {
		fmt.Fprintf(w, "  %s: %d\n", rc.Rule, rc.Count)
	}
}

// StatusLine formats the per-repository line streamed as each record
// completes. Clone failures, tool failures, clean repos, and
// diagnostic-bearing repos are visually distinct.
func StatusLine(rec *results.Record) string {
	if !rec.CloneSuccess {
		msg := rec.CloneError
		if msg == "" {
			msg = "?"
		}
		return fmt.Sprintf("  %s: %s -- %s", color.RedString("FAIL clone"), rec.URL, msg)
	}

	if rec.Agnix == nil || rec.Agnix.Output == nil {
		msg := "?"
		if rec.Agnix != nil && rec.Agnix.Stderr != "" {
			msg = rec.Agnix.Stderr
		}
		return fmt.Sprintf("  %s: %s -- %s", color.RedString("FAIL agnix"), rec.URL, msg)
	}

	out := rec.Agnix.Output
	detail := fmt.Sprintf("%s [%d files, %dms]", rec.URL, out.FilesChecked, rec.Agnix.WallTimeMS)

	if len(out.Diagnostics) == 0 {
		return fmt.Sprintf("  %s: %s", color.GreenString("CLEAN"), detail)
	}

	status := fmt.Sprintf("E=%d W=%d I=%d",
		out.Summary.Errors, out.Summary.Warnings, out.Summary.Info)
	return fmt.Sprintf("  %s: %s %s", color.YellowString(status), detail, rulesHit(out.Diagnostics))
}

// rulesHit renders per-rule hit counts as "rule(count), ..." sorted by rule.
func rulesHit(diags []agnix.Diagnostic) string {
	counts := make(map[string]int)
	for _, d := range diags {
		counts[d.Rule]++
	}

	rules := make([]string, 0, len(counts))
	for rule := range counts {
		rules = append(rules, rule)
	}
	sort.Strings(rules)

	parts := make([]string, 0, len(rules))
	for _, rule := range rules {
		parts = append(parts, fmt.Sprintf("%s(%d)", rule, counts[rule]))
	}
	return strings.Join(parts, ", ")
}
