package store

import (
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.CreateSchema(); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := setupTestStore(t)

	started := time.Now().Truncate(time.Second)
	runID, err := s.BeginRun("clean", started)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	deletions := []*Deletion{
		{RunID: runID, Path: "/repo/x86_64/r-gone-1.0.0-1-any.pkg.tar.zst", Package: "r-gone", Reason: "unknown-package", SizeBytes: 1024, DeletedAt: started},
		{RunID: runID, Path: "/repo/x86_64/r-ape-5.6.0-1-x86_64.pkg.tar.zst", Package: "r-ape", Reason: "superseded", SizeBytes: 2048, DeletedAt: started},
	}
	for _, d := range deletions {
		if err := s.RecordDeletion(d); err != nil {
			t.Fatalf("RecordDeletion failed: %v", err)
		}
	}

	if err := s.FinishRun(runID, 2, 3072); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Command != "clean" {
		t.Errorf("command = %q, want clean", run.Command)
	}
	if run.FilesRemoved != 2 || run.BytesReclaimed != 3072 {
		t.Errorf("totals = %d files / %d bytes", run.FilesRemoved, run.BytesReclaimed)
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("started_at = %v, want %v", run.StartedAt, started)
	}

	got, err := s.ListDeletions(runID)
	if err != nil {
		t.Fatalf("ListDeletions failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 deletions, got %d", len(got))
	}
	if got[0].Package != "r-gone" || got[0].Reason != "unknown-package" {
		t.Errorf("unexpected first deletion: %+v", got[0])
	}
	if got[1].SizeBytes != 2048 {
		t.Errorf("unexpected second deletion size: %d", got[1].SizeBytes)
	}
}

func TestListRunsOrderAndLimit(t *testing.T) {
	s := setupTestStore(t)

	for i := 0; i < 3; i++ {
		if _, err := s.BeginRun("sweep", time.Now()); err != nil {
			t.Fatalf("BeginRun failed: %v", err)
		}
	}

	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID <= runs[1].ID {
		t.Errorf("runs not newest-first: %d, %d", runs[0].ID, runs[1].ID)
	}
}

func TestTotalReclaimed(t *testing.T) {
	s := setupTestStore(t)

	total, err := s.TotalReclaimed()
	if err != nil {
		t.Fatalf("TotalReclaimed failed: %v", err)
	}
	if total != 0 {
		t.Errorf("empty store total = %d", total)
	}

	id1, _ := s.BeginRun("clean", time.Now())
	id2, _ := s.BeginRun("sweep", time.Now())
	s.FinishRun(id1, 1, 100)
	s.FinishRun(id2, 2, 250)

	total, err = s.TotalReclaimed()
	if err != nil {
		t.Fatalf("TotalReclaimed failed: %v", err)
	}
	if total != 350 {
		t.Errorf("total = %d, want 350", total)
	}
}
