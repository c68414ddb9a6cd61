package store

import (
	"fmt"
	"time"
)

// BeginRun inserts a new run row and returns its id.
func (s *Store) BeginRun(command string, startedAt time.Time) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (started_at, command) VALUES (?, ?)`,
		startedAt.Format(time.RFC3339), command,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// FinishRun stores the final totals for a run.
func (s *Store) FinishRun(runID int64, filesRemoved int, bytesReclaimed int64) error {
	_, err := s.db.Exec(
		`UPDATE runs SET files_removed = ?, bytes_reclaimed = ? WHERE id = ?`,
		filesRemoved, bytesReclaimed, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", runID, err)
	}
	return nil
}

// RecordDeletion appends one deletion to a run.
func (s *Store) RecordDeletion(d *Deletion) error {
	_, err := s.db.Exec(
		`INSERT INTO deletions (run_id, path, package, reason, size_bytes, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.RunID, d.Path, d.Package, d.Reason, d.SizeBytes,
		d.DeletedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record deletion of %s: %w", d.Path, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, command, files_removed, bytes_reclaimed
		 FROM runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var startedAt string
		if err := rows.Scan(&run.ID, &startedAt, &run.Command, &run.FilesRemoved, &run.BytesReclaimed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at for run %d: %w", run.ID, err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// ListDeletions returns every deletion recorded for a run, oldest first.
func (s *Store) ListDeletions(runID int64) ([]*Deletion, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, path, package, reason, size_bytes, deleted_at
		 FROM deletions WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list deletions for run %d: %w", runID, err)
	}
	defer rows.Close()

	var deletions []*Deletion
	for rows.Next() {
		var d Deletion
		var deletedAt string
		if err := rows.Scan(&d.ID, &d.RunID, &d.Path, &d.Package, &d.Reason, &d.SizeBytes, &deletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deletion: %w", err)
		}
		d.DeletedAt, err = time.Parse(time.RFC3339, deletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse deleted_at for deletion %d: %w", d.ID, err)
		}
		deletions = append(deletions, &d)
	}
	return deletions, rows.Err()
}

// TotalReclaimed returns the total bytes reclaimed across all runs.
func (s *Store) TotalReclaimed() (int64, error) {
	var total int64
	err := s.db.QueryRow(`SELECT COALESCE(SUM(bytes_reclaimed), 0) FROM runs`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum reclaimed bytes: %w", err)
	}
	return total, nil
}
