package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/community-events/internal/availability"
	"github.com/example/community-events/internal/persistence"
)

// UpsertTemplate stores a facilitator's availability template. The weekly
// schedule lives in a child table and is replaced wholesale so the stored
// intervals always mirror the template exactly.
func (s *Storage) UpsertTemplate(ctx context.Context, template availability.Template) error {
	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO availability_templates (
				facilitator_id, id, timezone, min_advance_notice_seconds,
				max_advance_booking_days, buffer_seconds, session_lengths_minutes,
				max_sessions_per_day, active, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(facilitator_id) DO UPDATE SET
				id = excluded.id,
				timezone = excluded.timezone,
				min_advance_notice_seconds = excluded.min_advance_notice_seconds,
				max_advance_booking_days = excluded.max_advance_booking_days,
				buffer_seconds = excluded.buffer_seconds,
				session_lengths_minutes = excluded.session_lengths_minutes,
				max_sessions_per_day = excluded.max_sessions_per_day,
				active = excluded.active,
				updated_at = excluded.updated_at`

		_, err := tx.ExecContext(ctx, query,
			template.FacilitatorID,
			template.ID,
			template.Timezone,
			int64(template.MinAdvanceNotice/time.Second),
			template.MaxAdvanceBookingDays,
			int64(template.Buffer/time.Second),
			encodeSessionLengths(template.PreferredSessionLengths),
			template.MaxSessionsPerDay,
			boolToInt(template.Active),
			formatTime(template.CreatedAt),
			formatTime(template.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM availability_intervals WHERE facilitator_id = ?`,
			template.FacilitatorID,
		)
		if err != nil {
			return mapError(err)
		}

		for weekday, intervals := range template.WeeklySchedule {
			for _, interval := range intervals {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO availability_intervals (facilitator_id, weekday, start_minute, end_minute)
					 VALUES (?, ?, ?, ?)`,
					template.FacilitatorID,
					int(weekday),
					interval.StartMinute,
					interval.EndMinute,
				)
				if err != nil {
					return mapError(err)
				}
			}
		}
		return nil
	})
}

// GetTemplate retrieves a facilitator's availability template with its weekly
// schedule.
func (s *Storage) GetTemplate(ctx context.Context, facilitatorID string) (availability.Template, error) {
	var template availability.Template

	err := s.pool.WithReadOnlyTransaction(ctx, func(tx *sql.Tx) error {
		var (
			minAdvanceSeconds int64
			bufferSeconds     int64
			sessionLengths    string
			active            int
			createdAt         string
			updatedAt         string
		)
		err := tx.QueryRowContext(ctx, `
			SELECT facilitator_id, id, timezone, min_advance_notice_seconds,
				max_advance_booking_days, buffer_seconds, session_lengths_minutes,
				max_sessions_per_day, active, created_at, updated_at
			FROM availability_templates
			WHERE facilitator_id = ?`,
			facilitatorID,
		).Scan(
			&template.FacilitatorID,
			&template.ID,
			&template.Timezone,
			&minAdvanceSeconds,
			&template.MaxAdvanceBookingDays,
			&bufferSeconds,
			&sessionLengths,
			&template.MaxSessionsPerDay,
			&active,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			if err == sql.ErrNoRows {
				return persistence.ErrNotFound
			}
			return mapError(err)
		}

		template.MinAdvanceNotice = time.Duration(minAdvanceSeconds) * time.Second
		template.Buffer = time.Duration(bufferSeconds) * time.Second
		template.Active = active != 0
		if template.PreferredSessionLengths, err = decodeSessionLengths(sessionLengths); err != nil {
			return err
		}
		if template.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if template.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT weekday, start_minute, end_minute
			FROM availability_intervals
			WHERE facilitator_id = ?
			ORDER BY weekday, start_minute`,
			facilitatorID,
		)
		if err != nil {
			return mapError(err)
		}
		defer rows.Close()

		schedule := make(map[time.Weekday][]availability.LocalInterval)
		for rows.Next() {
			var (
				weekday  int
				interval availability.LocalInterval
			)
			if err := rows.Scan(&weekday, &interval.StartMinute, &interval.EndMinute); err != nil {
				return mapError(err)
			}
			day := time.Weekday(weekday)
			schedule[day] = append(schedule[day], interval)
		}
		if err := rows.Err(); err != nil {
			return mapError(err)
		}
		template.WeeklySchedule = schedule
		return nil
	})
	if err != nil {
		return availability.Template{}, err
	}
	return template, nil
}

// DeleteTemplate removes a facilitator's template and its intervals.
func (s *Storage) DeleteTemplate(ctx context.Context, facilitatorID string) error {
	result, err := s.pool.DB().ExecContext(ctx,
		`DELETE FROM availability_templates WHERE facilitator_id = ?`,
		facilitatorID,
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

func encodeSessionLengths(lengths []time.Duration) string {
	if len(lengths) == 0 {
		return ""
	}
	parts := make([]string, len(lengths))
	for i, length := range lengths {
		parts[i] = strconv.FormatInt(int64(length/time.Minute), 10)
	}
	return strings.Join(parts, ",")
}

func decodeSessionLengths(encoded string) ([]time.Duration, error) {
	if encoded == "" {
		return nil, nil
	}
	parts := strings.Split(encoded, ",")
	lengths := make([]time.Duration, 0, len(parts))
	for _, part := range parts {
		minutes, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse session length %q: %w", part, err)
		}
		lengths = append(lengths, time.Duration(minutes)*time.Minute)
	}
	return lengths, nil
}
