package sqlite

import (
	"context"
	"fmt"

	"github.com/example/community-events/internal/persistence"
	"github.com/example/community-events/internal/timewindow"
)

// CreateBooking inserts a consumed facilitator window.
func (s *Storage) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	query := `
		INSERT INTO bookings (id, facilitator_id, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := s.pool.DB().ExecContext(ctx, query,
		booking.ID,
		booking.FacilitatorID,
		formatTime(booking.Start),
		formatTime(booking.End),
		formatTime(booking.CreatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// ListBookingWindows retrieves a facilitator's booked windows, optionally
// narrowed to a horizon, ordered by start time.
func (s *Storage) ListBookingWindows(ctx context.Context, filter persistence.BookingFilter) ([]timewindow.Window, error) {
	query := `SELECT start_time, end_time FROM bookings WHERE facilitator_id = ?`
	args := []any{filter.FacilitatorID}

	// The horizon filter keeps any booking that overlaps it, so a booking
	// straddling the horizon edge still blocks the slots inside.
	if filter.EndsBefore != nil {
		query += ` AND start_time < ?`
		args = append(args, formatTime(*filter.EndsBefore))
	}
	if filter.StartsAfter != nil {
		query += ` AND end_time > ?`
		args = append(args, formatTime(*filter.StartsAfter))
	}
	query += ` ORDER BY start_time`

	rows, err := s.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var windows []timewindow.Window
	for rows.Next() {
		var start, end string
		if err := rows.Scan(&start, &end); err != nil {
			return nil, mapError(err)
		}
		window := timewindow.Window{}
		if window.Start, err = parseTime(start); err != nil {
			return nil, err
		}
		if window.End, err = parseTime(end); err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return windows, nil
}

// DeleteBooking removes a booking, releasing its window for future slots.
func (s *Storage) DeleteBooking(ctx context.Context, id string) error {
	result, err := s.pool.DB().ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
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
