package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// InsertRun records the start of a sort run and returns its id.
func (s *Store) InsertRun(run *Run) (int64, error) {
	query := `
		INSERT INTO runs (started_at, results_file, input_root, output_root, image_count, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.Exec(query,
		run.StartedAt.Format(time.RFC3339),
		run.ResultsFile,
		run.InputRoot,
		run.OutputRoot,
		run.ImageCount,
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", mapSchemaErr(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// FinishRun marks a run complete and records its final counters.
func (s *Store) FinishRun(id int64, copied, errCount int) error {
	query := `
		UPDATE runs
		SET finished_at = ?, copied_count = ?, error_count = ?, status = ?
		WHERE id = ?
	`

	res, err := s.db.Exec(query,
		time.Now().Format(time.RFC3339), copied, errCount, StatusComplete, id)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", id, mapSchemaErr(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to finish run %d: %w", id, ErrRunNotFound)
	}
	return nil
}

// InsertRunFiles records the files a run copied, in a single transaction.
func (s *Store) InsertRunFiles(runID int64, files []*RunFile) error {
	if len(files) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO run_files (run_id, category, source_path, dest_path, size_bytes, checksum)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare run_files insert: %w", mapSchemaErr(err))
	}
	defer stmt.Close()

	for _, f := range files {
		if _, err := stmt.Exec(runID, f.Category, f.SourcePath, f.DestPath, f.SizeBytes, f.Checksum); err != nil {
			return fmt.Errorf("failed to insert run file %s: %w", f.DestPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run files: %w", err)
	}
	return nil
}

// GetRun retrieves a run by id.
func (s *Store) GetRun(id int64) (*Run, error) {
	query := `
		SELECT id, started_at, finished_at, results_file, input_root, output_root,
		       image_count, copied_count, error_count, status
		FROM runs
		WHERE id = ?
	`
	run, err := scanRun(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", id, mapSchemaErr(err))
	}
	return run, nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun() (*Run, error) {
	query := `
		SELECT id, started_at, finished_at, results_file, input_root, output_root,
		       image_count, copied_count, error_count, status
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`
	run, err := scanRun(s.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", mapSchemaErr(err))
	}
	return run, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]*Run, error) {
	query := `
		SELECT id, started_at, finished_at, results_file, input_root, output_root,
		       image_count, copied_count, error_count, status
		FROM runs
		ORDER BY started_at DESC, id DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", mapSchemaErr(err))
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// ListRunFiles returns the files a run copied.
func (s *Store) ListRunFiles(runID int64) ([]*RunFile, error) {
	query := `
		SELECT run_id, category, source_path, dest_path, size_bytes, checksum
		FROM run_files
		WHERE run_id = ?
		ORDER BY dest_path
	`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files for run %d: %w", runID, mapSchemaErr(err))
	}
	defer rows.Close()

	var files []*RunFile
	for rows.Next() {
		var f RunFile
		if err := rows.Scan(&f.RunID, &f.Category, &f.SourcePath, &f.DestPath, &f.SizeBytes, &f.Checksum); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		files = append(files, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list files for run %d: %w", runID, err)
	}
	return files, nil
}

// DeleteRun removes a run and, via cascade, its file records.
func (s *Store) DeleteRun(id int64) error {
	res, err := s.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run %d: %w", id, mapSchemaErr(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to delete run %d: %w", id, ErrRunNotFound)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var startedAt string
	var finishedAt sql.NullString

	err := row.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&run.ResultsFile,
		&run.InputRoot,
		&run.OutputRoot,
		&run.ImageCount,
		&run.CopiedCount,
		&run.ErrorCount,
		&run.Status,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if finishedAt.Valid && finishedAt.String != "" {
		run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse finished_at: %w", err)
		}
	}
	return &run, nil
}
