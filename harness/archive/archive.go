// Package archive keeps a durable SQLite record of completed simulator runs
// and their region-of-interest statistics, replacing the walkthrough's
// grep-and-forget post-processing. It stores externally produced numbers; it
// computes nothing.
package archive

import (
	"database/sql"
	"fmt"
	"time"

	// SQLite driver registration.
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"

	"github.com/m5bench/m5bench/harness"
	"github.com/m5bench/m5bench/harness/stats"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	experiment  TEXT NOT NULL,
	outdir      TEXT NOT NULL,
	wall_micros INTEGER NOT NULL,
	recorded_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_stats (
	run_id TEXT NOT NULL REFERENCES runs(id),
	name   TEXT NOT NULL,
	value  REAL NOT NULL,
	raw    TEXT NOT NULL,
	PRIMARY KEY (run_id, name)
);
`

// Archive is a SQLite-backed run store.
type Archive struct {
	db *sql.DB
}

// RunRow is one archived run.
type RunRow struct {
	ID         string
	Experiment string
	OutDir     string
	WallTime   time.Duration
	RecordedAt time.Time
}

// Open opens (creating if necessary) the archive at path and registers a
// close hook so buffered writes survive atexit.Exit paths.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize archive schema: %w", err)
	}
	a := &Archive{db: db}
	atexit.Register(func() {
		if err := a.Close(); err != nil {
			logrus.Warnf("archive close: %v", err)
		}
	})
	return a, nil
}

// Close closes the underlying database. Safe to call more than once.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// RecordRun inserts the run and every statistic of its ROI block in one
// transaction.
func (a *Archive) RecordRun(res *harness.RunResult, roi *stats.Block) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, experiment, outdir, wall_micros, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		res.ID, res.Experiment, res.OutDir, res.WallTime.Microseconds(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", res.ID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO run_stats (run_id, name, value, raw) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statistics insert: %w", err)
	}
	defer stmt.Close()
	for _, line := range roi.Lines {
		if _, err := stmt.Exec(res.ID, line.Name, line.Value.Float, line.Value.Raw); err != nil {
			return fmt.Errorf("insert statistic %s for run %s: %w", line.Name, res.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", res.ID, err)
	}
	logrus.Infof("Archived run %s (%d statistics)", res.ID, roi.Len())
	return nil
}

// Runs returns all archived runs, newest first.
func (a *Archive) Runs() ([]RunRow, error) {
	rows, err := a.db.Query(
		`SELECT id, experiment, outdir, wall_micros, recorded_at FROM runs ORDER BY recorded_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var wallMicros, recorded int64
		if err := rows.Scan(&r.ID, &r.Experiment, &r.OutDir, &wallMicros, &recorded); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		r.WallTime = time.Duration(wallMicros) * time.Microsecond
		r.RecordedAt = time.Unix(recorded, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// StatRow is one archived statistic of a run.
type StatRow struct {
	Name  string
	Value float64
	Raw   string
}

// Stats returns every archived ROI statistic of a run, in name order. A run
// with no archived statistics yields no rows, not an error.
func (a *Archive) Stats(runID string) ([]StatRow, error) {
	rows, err := a.db.Query(
		`SELECT name, value, raw FROM run_stats WHERE run_id = ? ORDER BY name`, runID)
	if err != nil {
		return nil, fmt.Errorf("query statistics for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []StatRow
	for rows.Next() {
		var r StatRow
		if err := rows.Scan(&r.Name, &r.Value, &r.Raw); err != nil {
			return nil, fmt.Errorf("scan statistic row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stat returns one archived statistic for a run. The second return value is
// false when the run never reported that name.
func (a *Archive) Stat(runID, name string) (float64, bool, error) {
	var v float64
	err := a.db.QueryRow(
		`SELECT value FROM run_stats WHERE run_id = ? AND name = ?`, runID, name).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query statistic %s for run %s: %w", name, runID, err)
	}
	return v, true, nil
}
