// Package runlog records script runs and the counts they collect in a
// sqlite database
package runlog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

var ErrRunNotFound = errors.New("run not found")

type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Run is one execution of a script
type Run struct {
	ID       uuid.UUID
	Script   string
	Number   int
	Status   Status
	Error    string
	Started  time.Time
	Finished time.Time
}

type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty run log path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run log %s: %w", path, err)
	}

	return &Store{
		db:  db,
		log: logger.NewLogger(coloransi.Color(coloransi.Cyan, coloransi.Black, "runlog")),
	}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			script TEXT NOT NULL,
			number INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			started TEXT NOT NULL,
			finished TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS runs_script ON runs(script, number);`,
		`CREATE TABLE IF NOT EXISTS counts (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (run_id, kind, name)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// Start records a new running run of script numbered after the last one
func (s *Store) Start(script string) (*Run, error) {
	var last sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(number) FROM runs WHERE script = ?`, script).Scan(&last); err != nil {
		return nil, err
	}

	run := &Run{
		ID:      uuid.New(),
		Script:  script,
		Number:  int(last.Int64) + 1,
		Status:  StatusRunning,
		Started: time.Now().UTC(),
	}
	_, err := s.db.Exec(`INSERT INTO runs (id, script, number, status, started) VALUES (?, ?, ?, ?, ?)`,
		run.ID.String(), run.Script, run.Number, string(run.Status), timestamp(run.Started))
	if err != nil {
		return nil, fmt.Errorf("start run of %s: %w", script, err)
	}
	s.log.Infoln("Run", run.Number, "of", script, "started", run.ID)
	return run, nil
}

func (s *Store) end(id uuid.UUID, status Status, message string) error {
	res, err := s.db.Exec(`UPDATE runs SET status = ?, error = ?, finished = ? WHERE id = ?`,
		string(status), message, timestamp(time.Now()), id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Finish marks the run done
func (s *Store) Finish(id uuid.UUID) error {
	return s.end(id, StatusDone, "")
}

// Fail marks the run failed with the error that stopped it
func (s *Store) Fail(id uuid.UUID, cause error) error {
	message := "unknown error"
	if cause != nil {
		message = cause.Error()
	}
	s.log.Warn("Run ", id, " failed: ", message)
	return s.end(id, StatusFailed, message)
}

// RecordCounts adds counts of kind (items, props, tiles) to the run.
// Recording the same name twice adds up.
func (s *Store) RecordCounts(id uuid.UUID, kind string, counts map[string]int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO counts (run_id, kind, name, count) VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, kind, name) DO UPDATE SET count = count + excluded.count`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for name, count := range counts {
		if _, err := stmt.Exec(id.String(), kind, name, count); err != nil {
			return fmt.Errorf("record %s %q: %w", kind, name, err)
		}
	}
	return tx.Commit()
}

// Counts returns the counts of kind recorded for one run
func (s *Store) Counts(id uuid.UUID, kind string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT name, count FROM counts WHERE run_id = ? AND kind = ?`, id.String(), kind)
	if err != nil {
		return nil, err
	}
	return scanCounts(rows)
}

// Totals sums the counts of kind over every finished run of script
func (s *Store) Totals(script, kind string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT c.name, SUM(c.count) FROM counts c
		JOIN runs r ON r.id = c.run_id
		WHERE r.script = ? AND r.status = ? AND c.kind = ?
		GROUP BY c.name`, script, string(StatusDone), kind)
	if err != nil {
		return nil, err
	}
	return scanCounts(rows)
}

func scanCounts(rows *sql.Rows) (map[string]int, error) {
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		out[name] = count
	}
	return out, rows.Err()
}

// Runs lists the runs of script, oldest first
func (s *Store) Runs(script string) ([]Run, error) {
	rows, err := s.db.Query(`SELECT id, number, status, error, started, finished FROM runs
		WHERE script = ? ORDER BY number`, script)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var id, status, started, finished string
		run := Run{Script: script}
		if err := rows.Scan(&id, &run.Number, &status, &run.Error, &started, &finished); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		run.Status = Status(status)
		if run.Started, err = parseTimestamp(started); err != nil {
			return nil, err
		}
		if run.Finished, err = parseTimestamp(finished); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Summary is the per status run count of a script
type Summary map[Status]int

func (s *Store) Summary(script string) (Summary, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM runs WHERE script = ? GROUP BY status`, script)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := Summary{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[Status(status)] = n
	}
	return out, rows.Err()
}

// SortedNames returns the names of counts, largest count first
func SortedNames(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
