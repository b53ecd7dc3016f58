// Package manifest loads the repository manifest and applies selection filters.
// The manifest is a YAML document with a top-level "repos" list; all entry
// fields other than the URL are optional and default here, at the loader
// boundary.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// StatusPending is the status assumed for entries without an explicit status,
// and the default status filter.
const StatusPending = "pending"

// ErrNotFound indicates the manifest file does not exist.
var ErrNotFound = errors.New("manifest file not found")

// Entry describes one repository in the manifest.
type Entry struct {
	URL        string   `yaml:"url"`
	Branch     string   `yaml:"branch,omitempty"`
	Categories []string `yaml:"categories,omitempty"`
	Status     string   `yaml:"status,omitempty"`
}

// EffectiveStatus returns the entry's status, defaulting to pending.
func (e Entry) EffectiveStatus() string {
	if e.Status == "" {
		return StatusPending
	}
	return e.Status
}

// HasCategory reports whether the entry is tagged with the given category.
func (e Entry) HasCategory(category string) bool {
	for _, c := range e.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Slug derives the deterministic storage key for a repository URL: the last
// two path segments joined with "--". A URL with fewer than two segments
// degrades to the single trailing segment.
func Slug(url string) string {
	trimmed := strings.TrimRight(url, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return trimmed
	}
	return parts[len(parts)-2] + "--" + parts[len(parts)-1]
}

// Filter selects manifest entries. Filters apply in order: status, category,
// URL substring, then Limit truncates the result. Empty fields disable the
// corresponding filter.
type Filter struct {
	// Status keeps entries whose effective status matches exactly.
	Status string
	// Category keeps entries tagged with this category.
	Category string
	// URLSubstring keeps entries whose URL contains this string,
	// case-insensitively.
	URLSubstring string
	// Limit caps the filtered sequence at its first N entries. Zero means
	// no cap.
	Limit int
}

// Apply returns the entries matching the filter, preserving manifest order.
func (f Filter) Apply(entries []Entry) []Entry {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Status != "" && e.EffectiveStatus() != f.Status {
			continue
		}
		if f.Category != "" && !e.HasCategory(f.Category) {
			continue
		}
		if f.URLSubstring != "" &&
			!strings.Contains(strings.ToLower(e.URL), strings.ToLower(f.URLSubstring)) {
			continue
		}
		kept = append(kept, e)
	}
	if f.Limit > 0 && len(kept) > f.Limit {
		kept = kept[:f.Limit]
	}
	return kept
}

type document struct {
	Repos []Entry `yaml:"repos"`
}

// Load reads the manifest at path and returns the entries matching f, in
// manifest order. A missing file is reported as ErrNotFound.
func Load(path string, f Filter) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	return f.Apply(doc.Repos), nil
}
