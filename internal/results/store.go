// Package results persists one validation record per repository slug.
//
// Records are the resumability mechanism: a record present on disk
// short-circuits all future processing of its slug, so Put must never leave
// a partially-written file visible under the final name.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avifenesh/agnix-harness/internal/agnix"
)

// Record is the persisted outcome of processing one manifest entry.
type Record struct {
	URL          string         `json:"url"`
	Slug         string         `json:"slug"`
	Categories   []string       `json:"categories"`
	CloneSuccess bool           `json:"clone_success"`
	CloneError   string         `json:"clone_error,omitempty"`
	Agnix        *agnix.Outcome `json:"agnix"`
}

// Store persists records as one JSON file per slug.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create results directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the record file path for a slug.
func (s *Store) Path(slug string) string {
	return filepath.Join(s.dir, slug+".json")
}

// Get returns the record for a slug, or nil if no record exists.
func (s *Store) Get(slug string) (*Record, error) {
	data, err := os.ReadFile(s.Path(slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read record %s: %w", slug, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record %s: %w", slug, err)
	}
	return &rec, nil
}

// Put persists a record for its slug. The record is written to a temporary
// file in the same directory and renamed into place, so a concurrent reader
// sees either no record or the complete one.
func (s *Store) Put(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.Slug, err)
	}

	tmp, err := os.CreateTemp(s.dir, rec.Slug+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp record %s: %w", rec.Slug, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp record %s: %w", rec.Slug, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp record %s: %w", rec.Slug, err)
	}

	if err := os.Rename(tmp.Name(), s.Path(rec.Slug)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename record %s: %w", rec.Slug, err)
	}
	return nil
}

// List returns all persisted records, ordered by slug.
func (s *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read results directory: %w", err)
	}

	var records []*Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		slug := strings.TrimSuffix(e.Name(), ".json")
		rec, err := s.Get(slug)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Slug < records[j].Slug })
	return records, nil
}
