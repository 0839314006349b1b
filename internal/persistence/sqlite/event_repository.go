package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/community-events/internal/persistence"
)

// CreateEvent inserts a new event row with its version counter at zero.
func (s *Storage) CreateEvent(ctx context.Context, event persistence.Event) error {
	query := `
		INSERT INTO events (id, title, capacity, waitlist_enabled, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.pool.DB().ExecContext(ctx, query,
		event.ID,
		event.Title,
		event.Capacity,
		boolToInt(event.WaitlistEnabled),
		event.Version,
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateEvent updates the event's capacity view. The version counter is left
// to the ledger writes that advance it.
func (s *Storage) UpdateEvent(ctx context.Context, event persistence.Event) error {
	query := `
		UPDATE events
		SET title = ?, capacity = ?, waitlist_enabled = ?, updated_at = ?
		WHERE id = ?`

	result, err := s.pool.DB().ExecContext(ctx, query,
		event.Title,
		event.Capacity,
		boolToInt(event.WaitlistEnabled),
		formatTime(event.UpdatedAt),
		event.ID,
	)
	if err != nil {
		return mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetEvent retrieves an event by its identifier.
func (s *Storage) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	query := `
		SELECT id, title, capacity, waitlist_enabled, version, created_at, updated_at
		FROM events
		WHERE id = ?`

	return scanEvent(s.pool.DB().QueryRowContext(ctx, query, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var (
		event              persistence.Event
		waitlistEnabled    int
		createdAt, updated string
	)
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Capacity,
		&waitlistEnabled,
		&event.Version,
		&createdAt,
		&updated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Event{}, persistence.ErrNotFound
		}
		return persistence.Event{}, mapError(err)
	}

	event.WaitlistEnabled = waitlistEnabled != 0
	if event.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = parseTime(updated); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
