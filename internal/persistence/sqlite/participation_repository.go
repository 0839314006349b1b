package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/community-events/internal/participation"
	"github.com/example/community-events/internal/persistence"
)

// SnapshotEvent reads the event's version and admission counts inside one
// read-only transaction so the returned snapshot is internally consistent.
func (s *Storage) SnapshotEvent(ctx context.Context, eventID string) (persistence.EventSnapshot, error) {
	var snapshot persistence.EventSnapshot

	err := s.pool.WithReadOnlyTransaction(ctx, func(tx *sql.Tx) error {
		var waitlistEnabled int
		err := tx.QueryRowContext(ctx,
			`SELECT id, capacity, waitlist_enabled, version FROM events WHERE id = ?`,
			eventID,
		).Scan(&snapshot.EventID, &snapshot.Capacity, &waitlistEnabled, &snapshot.Version)
		if err != nil {
			if err == sql.ErrNoRows {
				return persistence.ErrNotFound
			}
			return mapError(err)
		}
		snapshot.WaitlistEnabled = waitlistEnabled != 0

		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM participation_records WHERE event_id = ? AND status = ?`,
			eventID, string(participation.StatusRegistered),
		).Scan(&snapshot.RegisteredCount)
		if err != nil {
			return mapError(err)
		}

		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(waitlist_position), 0) FROM participation_records WHERE event_id = ? AND status = ?`,
			eventID, string(participation.StatusWaitlisted),
		).Scan(&snapshot.MaxWaitlistPosition)
		if err != nil {
			return mapError(err)
		}

		return nil
	})
	if err != nil {
		return persistence.EventSnapshot{}, err
	}
	return snapshot, nil
}

const recordColumns = `event_id, user_id, status, waitlist_position, registered_at,
	rejected_at, rejected_by, rejection_reason, reinstated_at, reinstated_by,
	created_at, updated_at`

// GetRecord retrieves one participation record by its composite key.
func (s *Storage) GetRecord(ctx context.Context, eventID, userID string) (participation.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM participation_records WHERE event_id = ? AND user_id = ?`, recordColumns)
	return scanRecord(s.pool.DB().QueryRowContext(ctx, query, eventID, userID))
}

// ListRecords retrieves every participation record for an event ordered by
// registration time.
func (s *Storage) ListRecords(ctx context.Context, eventID string) ([]participation.Record, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM participation_records WHERE event_id = ? ORDER BY registered_at, user_id`,
		recordColumns,
	)
	return s.queryRecords(ctx, query, eventID)
}

// ListWaitlisted retrieves the event's waitlisted records in position order.
func (s *Storage) ListWaitlisted(ctx context.Context, eventID string) ([]participation.Record, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM participation_records WHERE event_id = ? AND status = ? ORDER BY waitlist_position, registered_at, user_id`,
		recordColumns,
	)
	return s.queryRecords(ctx, query, eventID, string(participation.StatusWaitlisted))
}

func (s *Storage) queryRecords(ctx context.Context, query string, args ...any) ([]participation.Record, error) {
	rows, err := s.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var records []participation.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return records, nil
}

// ApplyLedgerWrite applies one atomic ledger write. The event's version
// counter is advanced with a conditional update first; zero rows affected
// means another writer moved the version and the whole write fails with
// ErrVersionConflict without touching any record.
func (s *Storage) ApplyLedgerWrite(ctx context.Context, write persistence.LedgerWrite) error {
	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE events SET version = version + 1 WHERE id = ? AND version = ?`,
			write.EventID, write.ExpectedVersion,
		)
		if err != nil {
			return mapError(err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if rows == 0 {
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE id = ?`, write.EventID).Scan(&exists)
			if err != nil {
				return mapError(err)
			}
			if exists == 0 {
				return persistence.ErrNotFound
			}
			return persistence.ErrVersionConflict
		}

		if write.Create != nil {
			if err := insertRecord(ctx, tx, *write.Create); err != nil {
				return err
			}
		}
		for _, record := range write.Update {
			if err := updateRecord(ctx, tx, record); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertRecord(ctx context.Context, tx *sql.Tx, record participation.Record) error {
	query := `
		INSERT INTO participation_records (
			event_id, user_id, status, waitlist_position, registered_at,
			rejected_at, rejected_by, rejection_reason, reinstated_at, reinstated_by,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, query,
		record.EventID,
		record.UserID,
		string(record.Status),
		positionValue(record.WaitlistPosition),
		formatTime(record.RegisteredAt),
		formatTimePtr(record.RejectedAt),
		nullableString(record.RejectedBy),
		nullableString(record.RejectionReason),
		formatTimePtr(record.ReinstatedAt),
		nullableString(record.ReinstatedBy),
		formatTime(record.CreatedAt),
		formatTime(record.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func updateRecord(ctx context.Context, tx *sql.Tx, record participation.Record) error {
	query := `
		UPDATE participation_records
		SET status = ?, waitlist_position = ?, registered_at = ?,
			rejected_at = ?, rejected_by = ?, rejection_reason = ?,
			reinstated_at = ?, reinstated_by = ?, updated_at = ?
		WHERE event_id = ? AND user_id = ?`

	result, err := tx.ExecContext(ctx, query,
		string(record.Status),
		positionValue(record.WaitlistPosition),
		formatTime(record.RegisteredAt),
		formatTimePtr(record.RejectedAt),
		nullableString(record.RejectedBy),
		nullableString(record.RejectionReason),
		formatTimePtr(record.ReinstatedAt),
		nullableString(record.ReinstatedBy),
		formatTime(record.UpdatedAt),
		record.EventID,
		record.UserID,
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

func scanRecord(row rowScanner) (participation.Record, error) {
	var (
		record          participation.Record
		status          string
		position        sql.NullInt64
		registeredAt    string
		rejectedAt      sql.NullString
		rejectedBy      sql.NullString
		rejectionReason sql.NullString
		reinstatedAt    sql.NullString
		reinstatedBy    sql.NullString
		createdAt       string
		updatedAt       string
	)

	err := row.Scan(
		&record.EventID,
		&record.UserID,
		&status,
		&position,
		&registeredAt,
		&rejectedAt,
		&rejectedBy,
		&rejectionReason,
		&reinstatedAt,
		&reinstatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return participation.Record{}, persistence.ErrNotFound
		}
		return participation.Record{}, mapError(err)
	}

	record.Status = participation.Status(status)
	if position.Valid {
		record.WaitlistPosition = int(position.Int64)
	}
	if record.RegisteredAt, err = parseTime(registeredAt); err != nil {
		return participation.Record{}, err
	}
	if record.RejectedAt, err = parseTimePtr(rejectedAt); err != nil {
		return participation.Record{}, err
	}
	record.RejectedBy = stringPtr(rejectedBy)
	record.RejectionReason = stringPtr(rejectionReason)
	if record.ReinstatedAt, err = parseTimePtr(reinstatedAt); err != nil {
		return participation.Record{}, err
	}
	record.ReinstatedBy = stringPtr(reinstatedBy)
	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return participation.Record{}, err
	}
	if record.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return participation.Record{}, err
	}
	return record, nil
}

func positionValue(position int) sql.NullInt64 {
	if position <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(position), Valid: true}
}
