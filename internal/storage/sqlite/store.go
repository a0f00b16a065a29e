// Package sqlite implements storage.Store on an embedded SQLite database. It serves
// single-process deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hongminglow/airfreight/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store is a SQLite-backed storage.Store. It holds a single connection, so writers are
// serialized and every transaction sees a stable snapshot.
type Store struct {
	queries
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("sqlite")

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	s := &Store{queries: queries{db: db}, db: db, log: log}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("sqlite storage ready", zap.String("path", path))
	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn("close database", zap.Error(err))
		}
	}
}

// InTx runs fn inside one SQLite transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	ctx = context.WithoutCancel(ctx)
	return storage.RetryConflicts(ctx, isBusy, func() (err error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() {
			if err != nil {
				if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
					s.log.Warn("rollback", zap.Error(rbErr))
				}
			}
		}()

		if err = fn(ctx, &queries{db: tx}); err != nil {
			return err
		}
		if err = tx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			funds REAL NOT NULL DEFAULT 0 CHECK (funds >= 0),
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS plane_models (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			cruise_speed REAL NOT NULL,
			cost REAL NOT NULL,
			cargo_capacity REAL NOT NULL,
			fuel_burn REAL NOT NULL,
			fuel_capacity REAL NOT NULL,
			passenger_seats INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS airports (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			elevation_m REAL NOT NULL DEFAULT 0,
			runway_length_m REAL NOT NULL DEFAULT 0,
			runway_width_m REAL NOT NULL DEFAULT 0,
			runway_lighted INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS airports_location_idx ON airports (latitude, longitude);`,
		`CREATE TABLE IF NOT EXISTS planes (
			tail_number TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			model_id TEXT NOT NULL,
			fuel REAL NOT NULL CHECK (fuel >= 0),
			condition REAL NOT NULL,
			upgrade_level INTEGER NOT NULL DEFAULT 0,
			location_kind TEXT NOT NULL,
			airport_id TEXT,
			origin_id TEXT,
			destination_id TEXT,
			departed_at INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS planes_location_kind_idx ON planes (location_kind);`,
		`CREATE TABLE IF NOT EXISTS packages (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			count INTEGER NOT NULL,
			unit_mass REAL NOT NULL,
			goal TEXT NOT NULL,
			payout REAL NOT NULL,
			expires_at INTEGER NOT NULL,
			location_kind TEXT NOT NULL,
			airport_id TEXT,
			tail_number TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS packages_airport_idx ON packages (airport_id);`,
		`CREATE INDEX IF NOT EXISTS packages_tail_number_idx ON packages (tail_number);`,
		`CREATE INDEX IF NOT EXISTS packages_expires_at_idx ON packages (expires_at);`,
		`CREATE TABLE IF NOT EXISTS sim_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_tick INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

func sqliteCode(err error) (int, bool) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() & 0xff, true
	}
	return 0, false
}

func isBusy(err error) bool {
	code, ok := sqliteCode(err)
	return ok && (code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED)
}

func isConstraint(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code == sqlite3.SQLITE_CONSTRAINT
}
