package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/community-events/internal/participation"
	"github.com/example/community-events/internal/persistence"
)

// ParticipationLedger captures the persistence interactions the admission and
// moderation services need. SnapshotEvent and ApplyLedgerWrite form the
// optimistic concurrency pair: a write is conditioned on the snapshot's event
// version and fails wholesale when a concurrent write advanced it.
type ParticipationLedger interface {
	SnapshotEvent(ctx context.Context, eventID string) (persistence.EventSnapshot, error)
	GetRecord(ctx context.Context, eventID, userID string) (participation.Record, error)
	ListWaitlisted(ctx context.Context, eventID string) ([]participation.Record, error)
	ApplyLedgerWrite(ctx context.Context, write persistence.LedgerWrite) error
}

// AdmissionService decides join outcomes against the event's capacity view and
// keeps the waitlist dense across cancellations, rejections, and no-shows.
//
// Every mutation is a single LedgerWrite, so the admission decision, the
// status change, any promotion, and the waitlist re-ranking commit together or
// not at all. The service holds no state of its own and may be used
// concurrently; conflicting writers are serialized by the version condition.
type AdmissionService struct {
	ledger ParticipationLedger
	logger *slog.Logger
	now    func() time.Time
}

// NewAdmissionService wires dependencies for admission operations.
func NewAdmissionService(ledger ParticipationLedger, logger *slog.Logger, now func() time.Time) *AdmissionService {
	if now == nil {
		now = time.Now
	}
	return &AdmissionService{ledger: ledger, logger: defaultLogger(logger), now: now}
}

// Join admits the user to the event, waitlists them when the event is full
// with waitlisting enabled, or refuses with ErrEventFull.
//
// An active record for the (event, user) pair fails with
// DuplicateParticipationError carrying the existing record. A cancelled record
// re-enters admission in place; rejected, attended, and no_show records cannot
// re-join.
func (s *AdmissionService) Join(ctx context.Context, params JoinParams) (participation.Record, error) {
	if s == nil {
		return participation.Record{}, fmt.Errorf("AdmissionService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "admission", "join", "event_id", params.EventID, "user_id", params.UserID)

	snapshot, err := s.ledger.SnapshotEvent(ctx, params.EventID)
	if err != nil {
		return participation.Record{}, mapRepoError(err)
	}

	existing, err := s.ledger.GetRecord(ctx, params.EventID, params.UserID)
	switch {
	case err == nil:
		if existing.Status.Active() {
			return participation.Record{}, &DuplicateParticipationError{Existing: existing}
		}
		if existing.Status != participation.StatusCancelled {
			// Rejected participants come back only through reinstatement;
			// attended and no_show are terminal for the occurrence.
			return participation.Record{}, &participation.InvalidTransitionError{
				From: existing.Status,
				To:   participation.StatusRegistered,
			}
		}
		return s.readmit(ctx, logger, snapshot, existing)
	case errors.Is(err, persistence.ErrNotFound):
		// First join for this pair.
	default:
		return participation.Record{}, mapRepoError(err)
	}

	now := s.now()
	status, position, err := s.decide(snapshot)
	if err != nil {
		logger.Info("admission refused", "error_kind", ErrorKind(err))
		return participation.Record{}, err
	}

	record := participation.Record{
		EventID:          params.EventID,
		UserID:           params.UserID,
		Status:           status,
		WaitlistPosition: position,
		RegisteredAt:     now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	write := persistence.LedgerWrite{
		EventID:         params.EventID,
		ExpectedVersion: snapshot.Version,
		Create:          &record,
	}
	if err := s.ledger.ApplyLedgerWrite(ctx, write); err != nil {
		return participation.Record{}, mapRepoError(err)
	}

	logger.Info("admission decided", "status", string(record.Status), "waitlist_position", record.WaitlistPosition)
	return record, nil
}

// readmit re-runs the admission decision on a cancelled record.
func (s *AdmissionService) readmit(ctx context.Context, logger *slog.Logger, snapshot persistence.EventSnapshot, record participation.Record) (participation.Record, error) {
	now := s.now()
	status, position, err := s.decide(snapshot)
	if err != nil {
		return participation.Record{}, err
	}

	if err := record.Transition(status, now); err != nil {
		return participation.Record{}, err
	}
	record.WaitlistPosition = position
	record.RegisteredAt = now

	write := persistence.LedgerWrite{
		EventID:         record.EventID,
		ExpectedVersion: snapshot.Version,
		Update:          []participation.Record{record},
	}
	if err := s.ledger.ApplyLedgerWrite(ctx, write); err != nil {
		return participation.Record{}, mapRepoError(err)
	}

	logger.Info("admission decided", "status", string(record.Status), "waitlist_position", record.WaitlistPosition, "readmission", true)
	return record, nil
}

// decide applies the admission order: open seat, then waitlist, then refusal.
func (s *AdmissionService) decide(snapshot persistence.EventSnapshot) (participation.Status, int, error) {
	if snapshot.HasOpenSeat() {
		return participation.StatusRegistered, 0, nil
	}
	if snapshot.WaitlistEnabled {
		return participation.StatusWaitlisted, snapshot.MaxWaitlistPosition + 1, nil
	}
	return "", 0, ErrEventFull
}

// Cancel withdraws the participation. Cancelling a registered record frees a
// seat and promotes the earliest waitlisted participant in the same write;
// cancelling a waitlisted record closes the rank gap it leaves. Cancelling an
// already cancelled record is a no-op success.
func (s *AdmissionService) Cancel(ctx context.Context, params CancelParams) (participation.Record, error) {
	if s == nil {
		return participation.Record{}, fmt.Errorf("AdmissionService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "admission", "cancel", "event_id", params.EventID, "user_id", params.UserID)

	snapshot, err := s.ledger.SnapshotEvent(ctx, params.EventID)
	if err != nil {
		return participation.Record{}, mapRepoError(err)
	}

	record, err := s.ledger.GetRecord(ctx, params.EventID, params.UserID)
	if err != nil {
		return participation.Record{}, mapRepoError(err)
	}
	if record.Status == participation.StatusCancelled {
		return record, nil
	}

	now := s.now()
	leftSeat := record.Status == participation.StatusRegistered
	leftWaitlist := record.Status == participation.StatusWaitlisted

	if err := record.Transition(participation.StatusCancelled, now); err != nil {
		return participation.Record{}, err
	}

	updates := []participation.Record{record}
	updates, err = s.appendVacancyUpdates(ctx, snapshot, record.UserID, leftSeat, leftWaitlist, now, updates)
	if err != nil {
		return participation.Record{}, err
	}

	write := persistence.LedgerWrite{
		EventID:         params.EventID,
		ExpectedVersion: snapshot.Version,
		Update:          updates,
	}
	if err := s.ledger.ApplyLedgerWrite(ctx, write); err != nil {
		return participation.Record{}, mapRepoError(err)
	}

	logger.Info("participation cancelled", "freed_seat", leftSeat)
	return record, nil
}

// RecordAttendance concludes the participation as attended or no_show. A
// no-show frees the seat for capacity accounting and promotes in the same
// write. Recording the already-applied outcome again is a no-op success.
func (s *AdmissionService) RecordAttendance(ctx context.Context, params AttendanceParams) (participation.Record, error) {
	if s == nil {
		return participation.Record{}, fmt.Errorf("AdmissionService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "admission", "record_attendance", "event_id", params.EventID, "user_id", params.UserID)

	target := participation.StatusNoShow
	if params.Present {
		target = participation.StatusAttended
	}

	snapshot, err := s.ledger.SnapshotEvent(ctx, params.EventID)
	if err != nil {
		return participation.Record{}, mapRepoError(err)
	}

	record, err := s.ledger.GetRecord(ctx, params.EventID, params.UserID)
	if err != nil {
		return participation.Record{}, mapRepoError(err)
	}
	if record.Status == target {
		return record, nil
	}

	now := s.now()
	if err := record.Transition(target, now); err != nil {
		return participation.Record{}, err
	}

	updates := []participation.Record{record}
	if target == participation.StatusNoShow {
		updates, err = s.appendVacancyUpdates(ctx, snapshot, record.UserID, true, false, now, updates)
		if err != nil {
			return participation.Record{}, err
		}
	}

	write := persistence.LedgerWrite{
		EventID:         params.EventID,
		ExpectedVersion: snapshot.Version,
		Update:          updates,
	}
	if err := s.ledger.ApplyLedgerWrite(ctx, write); err != nil {
		return participation.Record{}, mapRepoError(err)
	}

	logger.Info("attendance recorded", "status", string(record.Status))
	return record, nil
}

// appendVacancyUpdates extends updates with the promotion and re-ranking a
// departing record requires. When a seat was freed the earliest waitlisted
// record is promoted; either way the remaining waitlist is rewritten to a
// contiguous 1..N sequence.
func (s *AdmissionService) appendVacancyUpdates(ctx context.Context, snapshot persistence.EventSnapshot, departedUserID string, freedSeat, leftWaitlist bool, now time.Time, updates []participation.Record) ([]participation.Record, error) {
	if snapshot.Capacity == 0 {
		// Unlimited events never activate the waitlist.
		return updates, nil
	}
	if !freedSeat && !leftWaitlist {
		return updates, nil
	}

	waitlisted, err := s.ledger.ListWaitlisted(ctx, snapshot.EventID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	remaining := waitlisted[:0:0]
	for _, record := range waitlisted {
		if record.UserID != departedUserID {
			remaining = append(remaining, record)
		}
	}
	participation.SortWaitlist(remaining)

	if freedSeat && snapshot.RegisteredCount-1 < snapshot.Capacity && len(remaining) > 0 {
		promoted := remaining[0]
		remaining = remaining[1:]
		if err := promoted.Transition(participation.StatusRegistered, now); err != nil {
			return nil, err
		}
		updates = append(updates, promoted)
	}

	for _, changed := range participation.Rerank(remaining) {
		changed.UpdatedAt = now
		updates = append(updates, changed)
	}
	return updates, nil
}
