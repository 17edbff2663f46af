package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/burace17/disk-analyzer/internal/report"
	"github.com/burace17/disk-analyzer/internal/tree"
)

var ErrNotFound = errors.New("scan not found")

// Run is the summary of one scan. The tree itself is never stored.
type Run struct {
	ID          string         `json:"id"`
	StartedAt   time.Time      `json:"started_at"`
	Duration    time.Duration  `json:"duration"`
	Root        string         `json:"root"`
	TotalSize   int64          `json:"total_size"`
	Files       int            `json:"files"`
	Directories int            `json:"directories"`
	Errors      int            `json:"errors"`
	Outcome     report.Outcome `json:"outcome"`
	Error       string         `json:"error,omitempty"`
}

// NewRun summarizes a finished tree.
func NewRun(root *tree.Directory, started time.Time, duration time.Duration) Run {
	stats := tree.Collect(root)
	run := Run{
		ID:          uuid.NewString(),
		StartedAt:   started.UTC(),
		Duration:    duration,
		TotalSize:   stats.Bytes,
		Files:       stats.Files,
		Directories: stats.Directories,
		Errors:      stats.Errors,
		Outcome:     report.OutcomeOf(root),
	}
	if root != nil {
		run.Root = root.Path()
		if err := root.Err(); err != nil {
			run.Error = err.Error()
		}
	}
	return run
}

type DB struct {
	db *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	return &DB{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			root TEXT NOT NULL,
			total_size INTEGER NOT NULL,
			files INTEGER NOT NULL,
			directories INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			error TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_scans_root ON scans(root);
		CREATE INDEX IF NOT EXISTS idx_scans_started ON scans(started_at);
	`)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Record stores run, assigning an ID if it has none.
func (d *DB) Record(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	_, err := d.db.Exec(`
		INSERT INTO scans (id, started_at, duration_ms, root, total_size, files, directories, errors, outcome, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(), run.Root, run.TotalSize,
		run.Files, run.Directories, run.Errors, string(run.Outcome), nullString(run.Error))
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

const selectRuns = `
	SELECT id, started_at, duration_ms, root, total_size, files, directories, errors, outcome, error
	FROM scans`

func (d *DB) Search(query string) ([]Run, error) {
	pattern := "%" + query + "%"
	rows, err := d.db.Query(selectRuns+`
		WHERE root LIKE ?
		ORDER BY started_at DESC
	`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (d *DB) Since(t time.Time) ([]Run, error) {
	rows, err := d.db.Query(selectRuns+`
		WHERE started_at >= ?
		ORDER BY started_at DESC
	`, t.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (d *DB) Get(id string) (*Run, error) {
	rows, err := d.db.Query(selectRuns+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &runs[0], nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var run Run
		var started, durationMS int64
		var outcome string
		var errMsg sql.NullString

		err := rows.Scan(&run.ID, &started, &durationMS, &run.Root, &run.TotalSize,
			&run.Files, &run.Directories, &run.Errors, &outcome, &errMsg)
		if err != nil {
			return nil, err
		}

		run.StartedAt = time.UnixMilli(started).UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.Outcome = report.Outcome(outcome)
		if errMsg.Valid {
			run.Error = errMsg.String
		}

		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
