package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the part of *pgxpool.Pool the repository uses
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		id           TEXT PRIMARY KEY,
		order_id     TEXT NOT NULL UNIQUE,
		event_id     TEXT NOT NULL,
		event_title  TEXT NOT NULL,
		event_date   TIMESTAMPTZ NOT NULL,
		venue        TEXT NOT NULL,
		total_amount BIGINT NOT NULL,
		status       TEXT NOT NULL,
		booking_date TIMESTAMPTZ NOT NULL,
		payment_id   TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS booking_seats (
		booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
		position   INT NOT NULL,
		seat       TEXT NOT NULL,
		PRIMARY KEY (booking_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		order_id       TEXT PRIMARY KEY,
		success        BOOLEAN NOT NULL,
		transaction_id TEXT,
		attempts       INT NOT NULL,
		failure_reason TEXT,
		recorded_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_event_id_idx ON bookings (event_id)`,
}

// Connect opens a pool and checks it can reach the server
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates the tables the repository needs if they do not exist
func Migrate(ctx context.Context, db DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
