// Package store keeps a history of headless scenario runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Run is one scenario run as recorded by the headless report.
type Run struct {
	ID           string
	Batch        string
	Scenario     string
	Seed         int64
	Ticks        int
	Winner       string // "red", "blue" or "draw"
	Survivors    [2]int
	Shots        [2]int
	Hits         [2]int
	Kills        [2]int
	FirstContact int // tick, -1 when the teams never met
	FirstKill    int
	RecordedAt   time.Time
}

// Tally counts outcomes of every recorded run of one scenario.
type Tally struct {
	Scenario string
	Runs     int
	Red      int
	Blue     int
	Draws    int
	AvgTicks float64
}

// RunStore is a SQLite-backed run history.
type RunStore struct {
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema.
func Open(path string) (*RunStore, error) {
	if path == "" {
		return nil, errors.New("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create db dir")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &RunStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return errors.Wrapf(err, "pragma %q", p)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			batch TEXT NOT NULL,
			scenario TEXT NOT NULL,
			seed INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			winner TEXT NOT NULL,
			red_survivors INTEGER NOT NULL,
			blue_survivors INTEGER NOT NULL,
			red_shots INTEGER NOT NULL,
			blue_shots INTEGER NOT NULL,
			red_hits INTEGER NOT NULL,
			blue_hits INTEGER NOT NULL,
			red_kills INTEGER NOT NULL,
			blue_kills INTEGER NOT NULL,
			first_contact INTEGER NOT NULL,
			first_kill INTEGER NOT NULL,
			recorded_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS runs_scenario ON runs(scenario, recorded_at);`,
		`CREATE INDEX IF NOT EXISTS runs_batch ON runs(batch);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}

// Close releases the database.
func (s *RunStore) Close() error { return s.db.Close() }

// Record inserts r. A zero RecordedAt is stamped with the current time.
func (s *RunStore) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		return errors.New("run without id")
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(id, batch, scenario, seed, ticks, winner,
			red_survivors, blue_survivors, red_shots, blue_shots,
			red_hits, blue_hits, red_kills, blue_kills,
			first_contact, first_kill, recorded_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Batch, r.Scenario, r.Seed, r.Ticks, r.Winner,
		r.Survivors[0], r.Survivors[1], r.Shots[0], r.Shots[1],
		r.Hits[0], r.Hits[1], r.Kills[0], r.Kills[1],
		r.FirstContact, r.FirstKill, r.RecordedAt.UnixMilli(),
	)
	return errors.Wrapf(err, "record run %s", r.ID)
}

// Runs lists recorded runs oldest first. An empty scenario lists all of them.
func (s *RunStore) Runs(ctx context.Context, scenario string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, batch, scenario, seed, ticks, winner,
			red_survivors, blue_survivors, red_shots, blue_shots,
			red_hits, blue_hits, red_kills, blue_kills,
			first_contact, first_kill, recorded_at
		FROM runs
		WHERE ? = '' OR scenario = ?
		ORDER BY recorded_at, id`, scenario, scenario)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var at int64
		if err := rows.Scan(&r.ID, &r.Batch, &r.Scenario, &r.Seed, &r.Ticks, &r.Winner,
			&r.Survivors[0], &r.Survivors[1], &r.Shots[0], &r.Shots[1],
			&r.Hits[0], &r.Hits[1], &r.Kills[0], &r.Kills[1],
			&r.FirstContact, &r.FirstKill, &at); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		r.RecordedAt = time.UnixMilli(at)
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate runs")
}

// Tallies summarises outcomes per scenario, sorted by scenario name.
func (s *RunStore) Tallies(ctx context.Context) ([]Tally, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT scenario, COUNT(*),
			SUM(CASE WHEN winner = 'red' THEN 1 ELSE 0 END),
			SUM(CASE WHEN winner = 'blue' THEN 1 ELSE 0 END),
			SUM(CASE WHEN winner = 'draw' THEN 1 ELSE 0 END),
			AVG(ticks)
		FROM runs
		GROUP BY scenario
		ORDER BY scenario`)
	if err != nil {
		return nil, errors.Wrap(err, "query tallies")
	}
	defer rows.Close()

	var out []Tally
	for rows.Next() {
		var t Tally
		if err := rows.Scan(&t.Scenario, &t.Runs, &t.Red, &t.Blue, &t.Draws, &t.AvgTicks); err != nil {
			return nil, errors.Wrap(err, "scan tally")
		}
		out = append(out, t)
	}
	return out, errors.Wrap(rows.Err(), "iterate tallies")
}
