package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"lecturedl/internal/config"
)

const outcomeSucceeded = "succeeded"

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database under the state dir.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the database at path, creating the schema when needed.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts a run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, course_id, course_name, course_url, canonical_id, date_range, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CourseID,
		nullableString(run.CourseName),
		nullableString(run.CourseURL),
		nullableString(run.CanonicalID),
		nullableString(run.DateRange),
		StatusRunning,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the final counts and the per-recording outcomes.
func (s *Store) FinishRun(ctx context.Context, run Run, downloads []Download) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin finish tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE runs
         SET canonical_id = ?, status = ?, total = ?, succeeded = ?, failed = ?, canceled = ?,
             error_message = ?, finished_at = ?
         WHERE id = ?`,
		nullableString(run.CanonicalID),
		run.Status,
		run.Total,
		run.Succeeded,
		run.Failed,
		run.Canceled,
		nullableString(run.ErrorMessage),
		formatTime(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update run: %s not found", run.ID)
	}

	for _, d := range downloads {
		if d.FinishedAt.IsZero() {
			d.FinishedAt = run.FinishedAt
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO downloads (
                run_id, course_id, recording_key, filename, lecture_number, recording_date,
                outcome, path, size_bytes, error_message, finished_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			d.CourseID,
			d.RecordingKey,
			d.Filename,
			d.LectureNumber,
			nullableString(d.RecordingDate),
			d.Outcome,
			nullableString(d.Path),
			d.SizeBytes,
			nullableString(d.ErrorMessage),
			formatTime(d.FinishedAt),
		); err != nil {
			return fmt.Errorf("insert download %s: %w", d.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finish: %w", err)
	}
	return nil
}

// GetRun fetches a run by id. It returns nil when the run does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. courseID filters when set.
func (s *Store) ListRuns(ctx context.Context, courseID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if courseID = strings.TrimSpace(courseID); courseID != "" {
		query += ` WHERE course_id = ?`
		args = append(args, courseID)
	}
	query += ` ORDER BY started_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Downloads returns the recorded outcomes of a run in insertion order.
func (s *Store) Downloads(ctx context.Context, runID string) ([]Download, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+downloadColumns+` FROM downloads WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	defer rows.Close()

	var downloads []Download
	for rows.Next() {
		d, err := scanDownload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		downloads = append(downloads, *d)
	}
	return downloads, rows.Err()
}

// Completed maps recording keys that have a successful download for the
// course to the path they were written to.
func (s *Store) Completed(ctx context.Context, courseID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT recording_key, path FROM downloads
         WHERE course_id = ? AND outcome = ?
         ORDER BY id`,
		courseID, outcomeSucceeded,
	)
	if err != nil {
		return nil, fmt.Errorf("list completed: %w", err)
	}
	defer rows.Close()

	completed := make(map[string]string)
	for rows.Next() {
		var key string
		var path sql.NullString
		if err := rows.Scan(&key, &path); err != nil {
			return nil, fmt.Errorf("scan completed: %w", err)
		}
		completed[key] = path.String
	}
	return completed, rows.Err()
}

// Prune removes runs that started before cutoff along with their downloads.
// Returns the number of runs removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stamp := formatTime(cutoff)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM downloads WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, stamp,
	); err != nil {
		return 0, fmt.Errorf("prune downloads: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, stamp)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return removed, nil
}
