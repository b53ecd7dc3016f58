package runlog

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "runs.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
}

func TestRecordRunAssignsID(t *testing.T) {
	db := openTestDB(t)

	run := &Run{
		ManifestPath: "repos.yaml",
		StartedAt:    time.Now().Add(-time.Minute),
		FinishedAt:   time.Now(),
		Total:        10,
	}
	if err := db.RecordRun(run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if len(run.ID) != 8 {
		t.Errorf("expected 8-char generated ID, got %q", run.ID)
	}
}

func TestRecordAndRecentRuns(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &Run{
			ManifestPath:     "repos.yaml",
			StartedAt:        base.Add(time.Duration(i) * time.Hour),
			FinishedAt:       base.Add(time.Duration(i)*time.Hour + 10*time.Minute),
			Total:            50,
			Failures:         i,
			CleanRepos:       40 - i,
			TotalDiagnostics: 100 + i,
		}
		if err := db.RecordRun(run); err != nil {
			t.Fatalf("RecordRun %d failed: %v", i, err)
		}
	}

	runs, err := db.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Failures != 2 || runs[1].Failures != 1 {
		t.Errorf("expected most recent first, got failures %d, %d", runs[0].Failures, runs[1].Failures)
	}
	if runs[0].Total != 50 || runs[0].CleanRepos != 38 || runs[0].TotalDiagnostics != 102 {
		t.Errorf("unexpected run row: %+v", runs[0])
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if err := db.RecordRun(&Run{ManifestPath: "m", StartedAt: time.Now(), FinishedAt: time.Now()}); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected recorded run to survive reopen, got %d", len(runs))
	}
}
