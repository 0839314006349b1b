package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/community-events/internal/config"
)

// Storage provides SQLite-backed implementations of the persistence
// repositories. All repositories share one connection pool so ledger writes
// and snapshot reads observe the same database state.
type Storage struct {
	pool *ConnectionPool
}

// Open creates a Storage backed by the database at the given DSN.
func Open(dsn string, busyTimeout time.Duration) (*Storage, error) {
	pool, err := newConnectionPool(dsn, int(busyTimeout.Milliseconds()))
	if err != nil {
		return nil, err
	}
	return &Storage{pool: pool}, nil
}

// OpenFromConfig creates a Storage using the application configuration.
func OpenFromConfig(cfg config.Config) (*Storage, error) {
	return Open(cfg.SQLiteDSN, cfg.BusyTimeout)
}

// Close closes the underlying connection pool.
func (s *Storage) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Close()
}

// Ping verifies the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("storage is not open")
	}
	return s.pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	capacity INTEGER NOT NULL CHECK (capacity >= 0),
	waitlist_enabled INTEGER NOT NULL DEFAULT 0,
	version INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS participation_records (
	event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	status TEXT NOT NULL,
	waitlist_position INTEGER,
	registered_at TEXT NOT NULL,
	rejected_at TEXT,
	rejected_by TEXT,
	rejection_reason TEXT,
	reinstated_at TEXT,
	reinstated_by TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (event_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_participation_event_status
	ON participation_records(event_id, status);

CREATE TABLE IF NOT EXISTS availability_templates (
	facilitator_id TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	timezone TEXT NOT NULL,
	min_advance_notice_seconds INTEGER NOT NULL,
	max_advance_booking_days INTEGER NOT NULL,
	buffer_seconds INTEGER NOT NULL,
	session_lengths_minutes TEXT NOT NULL DEFAULT '',
	max_sessions_per_day INTEGER NOT NULL,
	active INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS availability_intervals (
	facilitator_id TEXT NOT NULL REFERENCES availability_templates(facilitator_id) ON DELETE CASCADE,
	weekday INTEGER NOT NULL CHECK (weekday >= 0 AND weekday <= 6),
	start_minute INTEGER NOT NULL,
	end_minute INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_availability_intervals_facilitator
	ON availability_intervals(facilitator_id, weekday, start_minute);

CREATE TABLE IF NOT EXISTS bookings (
	id TEXT PRIMARY KEY,
	facilitator_id TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bookings_facilitator_start
	ON bookings(facilitator_id, start_time);
`

// Migrate applies the database schema. It is idempotent and safe to call on
// every startup.
func (s *Storage) Migrate(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("storage is not open")
	}
	if _, err := s.pool.DB().ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
