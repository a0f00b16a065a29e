package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for the simulation.
type Store struct {
	queries
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewStore connects to databaseURL and runs migrations.
func NewStore(ctx context.Context, databaseURL string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{queries: queries{db: pool}, pool: pool, log: log.Named("postgres")}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InTx runs fn in a SERIALIZABLE transaction, retrying serialization failures and deadlocks.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	ctx = context.WithoutCancel(ctx)
	attempt := 0
	return storage.RetryConflicts(ctx, isRetryable, func() error {
		attempt++
		if attempt > 1 {
			s.log.Debug("retrying transaction", zap.Int("attempt", attempt))
		}
		return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			return fn(ctx, &queries{db: tx, locking: true})
		})
	})
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			funds DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (funds >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS plane_models (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			cruise_speed DOUBLE PRECISION NOT NULL,
			cost DOUBLE PRECISION NOT NULL,
			cargo_capacity DOUBLE PRECISION NOT NULL,
			fuel_burn DOUBLE PRECISION NOT NULL,
			fuel_capacity DOUBLE PRECISION NOT NULL,
			passenger_seats INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS airports (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			elevation_m DOUBLE PRECISION NOT NULL DEFAULT 0,
			runway_length_m DOUBLE PRECISION NOT NULL DEFAULT 0,
			runway_width_m DOUBLE PRECISION NOT NULL DEFAULT 0,
			runway_lighted BOOLEAN NOT NULL DEFAULT FALSE
		);`,
		`CREATE INDEX IF NOT EXISTS airports_location_idx ON airports (latitude, longitude);`,
		`CREATE TABLE IF NOT EXISTS planes (
			tail_number TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			model_id TEXT NOT NULL REFERENCES plane_models(id),
			fuel DOUBLE PRECISION NOT NULL CHECK (fuel >= 0),
			condition DOUBLE PRECISION NOT NULL CHECK (condition BETWEEN 0 AND 100),
			upgrade_level INTEGER NOT NULL DEFAULT 0 CHECK (upgrade_level >= 0),
			location_kind TEXT NOT NULL CHECK (location_kind IN ('airport', 'en_route')),
			airport_id TEXT,
			origin_id TEXT,
			destination_id TEXT,
			departed_at TIMESTAMPTZ
		);`,
		`CREATE INDEX IF NOT EXISTS planes_location_kind_idx ON planes (location_kind);`,
		`CREATE TABLE IF NOT EXISTS packages (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			count INTEGER NOT NULL,
			unit_mass DOUBLE PRECISION NOT NULL,
			goal TEXT NOT NULL,
			payout DOUBLE PRECISION NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			location_kind TEXT NOT NULL CHECK (location_kind IN ('airport', 'plane')),
			airport_id TEXT,
			tail_number TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS packages_airport_idx ON packages (airport_id);`,
		`CREATE INDEX IF NOT EXISTS packages_tail_number_idx ON packages (tail_number);`,
		`CREATE INDEX IF NOT EXISTS packages_expires_at_idx ON packages (expires_at);`,
		`CREATE TABLE IF NOT EXISTS sim_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_tick TIMESTAMPTZ NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}
