// Package dexdb persists extraction runs to a SQLite database, so carved
// dex files stay queryable by location and checksum after the fact.
package dexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/samcharles93/oatdex/pkg/oat"
)

var ErrNotFound = errors.New("dexdb: database file not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	oat_version INTEGER NOT NULL,
	dex_count   INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS dexes (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	idx         INTEGER NOT NULL,
	location    TEXT NOT NULL,
	checksum    INTEGER NOT NULL,
	size        INTEGER NOT NULL,
	output_path TEXT NOT NULL,
	PRIMARY KEY (run_id, idx)
);
`

// Run is one recorded extraction.
type Run struct {
	ID         string
	Source     string
	OATVersion uint32
	DexCount   uint32
	CreatedAt  time.Time
}

// Dex is one carved file within a run.
type Dex struct {
	RunID      string
	Index      uint32
	Location   string
	Checksum   uint32
	Size       uint32
	OutputPath string
}

// DB wraps a dex database connection.
type DB struct {
	path string
	conn *sql.DB
}

// Open opens the database at path, creating it and its schema if needed.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("dexdb: ensure schema: %w", err)
	}
	return &DB{path: path, conn: conn}, nil
}

// OpenExisting opens an existing database and refuses to create one. This
// is the safe mode for query-only consumers.
func OpenExisting(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return Open(path)
}

func (d *DB) Close() error {
	if d == nil || d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}

// Name returns the database filename.
func (d *DB) Name() string {
	return filepath.Base(d.path)
}

// RecordRun inserts one extraction run with its carved dexes, atomically.
func (d *DB) RecordRun(ctx context.Context, source string, hdr oat.Header, artifacts []oat.Artifact) (Run, error) {
	run := Run{
		ID:         "run_" + uuid.NewString(),
		Source:     source,
		OATVersion: hdr.Version,
		DexCount:   hdr.EntryCount,
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, oat_version, dex_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.OATVersion, run.DexCount, run.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Run{}, fmt.Errorf("dexdb: insert run: %w", err)
	}

	for i, a := range artifacts {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO dexes (run_id, idx, location, checksum, size, output_path) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, a.Location, a.Checksum, a.Size, a.Path,
		)
		if err != nil {
			return Run{}, fmt.Errorf("dexdb: insert dex %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Runs lists recorded runs, newest first.
func (d *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, source, oat_version, dex_count, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Source, &r.OATVersion, &r.DexCount, &created); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("dexdb: run %s created_at: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunDexes lists the dexes of one run in record order.
func (d *DB) RunDexes(ctx context.Context, runID string) ([]Dex, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT run_id, idx, location, checksum, size, output_path FROM dexes WHERE run_id = ? ORDER BY idx`,
		runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var dexes []Dex
	for rows.Next() {
		var x Dex
		if err := rows.Scan(&x.RunID, &x.Index, &x.Location, &x.Checksum, &x.Size, &x.OutputPath); err != nil {
			return nil, err
		}
		dexes = append(dexes, x)
	}
	return dexes, rows.Err()
}

// Locations lists every distinct dex location ever recorded.
func (d *DB) Locations(ctx context.Context) ([]string, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT DISTINCT location FROM dexes ORDER BY location`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}
