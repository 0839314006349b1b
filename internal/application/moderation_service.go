package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/community-events/internal/participation"
	"github.com/example/community-events/internal/persistence"
)

// ModerationService applies organizer-initiated rejection and reinstatement.
// The caller is assumed to have verified the actor is the event's organizer;
// the service records the acting identity in the audit fields and nothing
// more.
type ModerationService struct {
	ledger ParticipationLedger
	logger *slog.Logger
	now    func() time.Time
}

// NewModerationService wires dependencies for moderation operations.
func NewModerationService(ledger ParticipationLedger, logger *slog.Logger, now func() time.Time) *ModerationService {
	if now == nil {
		now = time.Now
	}
	return &ModerationService{ledger: ledger, logger: defaultLogger(logger), now: now}
}

// Reject removes a registered or waitlisted participant, stamping the
// rejection audit fields. Rejecting a registered participant frees a seat and
// promotes in the same write; rejecting a waitlisted one closes the rank gap.
// Rejecting an already rejected record is a no-op success.
func (s *ModerationService) Reject(ctx context.Context, params RejectParams) (participation.Record, error) {
	if s == nil {
		return participation.Record{}, fmt.Errorf("ModerationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "moderation", "reject",
		"event_id", params.EventID, "user_id", params.UserID, "actor_id", params.Actor.UserID)

	snapshot, err := s.ledger.SnapshotEvent(ctx, params.EventID)
	if err != nil {
		return participation.Record{}, mapRepoError(err)
	}

	record, err := s.ledger.GetRecord(ctx, params.EventID, params.UserID)
	if err != nil {
		return participation.Record{}, mapRepoError(err)
	}
	if record.Status == participation.StatusRejected {
		return record, nil
	}

	now := s.now()
	leftSeat := record.Status == participation.StatusRegistered
	leftWaitlist := record.Status == participation.StatusWaitlisted

	if err := record.Transition(participation.StatusRejected, now); err != nil {
		return participation.Record{}, err
	}
	rejectedAt := now
	record.RejectedAt = &rejectedAt
	record.RejectedBy = params.Actor.UserID
	record.RejectionReason = params.Reason

	admission := AdmissionService{ledger: s.ledger, logger: s.logger, now: s.now}
	updates := []participation.Record{record}
	updates, err = admission.appendVacancyUpdates(ctx, snapshot, record.UserID, leftSeat, leftWaitlist, now, updates)
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

	logger.Info("participant rejected", "freed_seat", leftSeat)
	return record, nil
}

// Reinstate returns a rejected participant to the ledger by re-running the
// admission decision as of now: an open seat registers them, otherwise they
// join the back of the waitlist; a full event without waitlisting refuses
// with ErrEventFull and leaves the record rejected. The original registration
// time is not reused.
func (s *ModerationService) Reinstate(ctx context.Context, params ReinstateParams) (participation.Record, error) {
	if s == nil {
		return participation.Record{}, fmt.Errorf("ModerationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "moderation", "reinstate",
		"event_id", params.EventID, "user_id", params.UserID, "actor_id", params.Actor.UserID)

	snapshot, err := s.ledger.SnapshotEvent(ctx, params.EventID)
	if err != nil {
		return participation.Record{}, mapRepoError(err)
	}

	record, err := s.ledger.GetRecord(ctx, params.EventID, params.UserID)
	if err != nil {
		return participation.Record{}, mapRepoError(err)
	}
	if record.Status != participation.StatusRejected {
		// A retried reinstatement finds the record already active again.
		if record.ReinstatedAt != nil && record.Status.Active() {
			return record, nil
		}
		return participation.Record{}, &participation.InvalidTransitionError{
			From: record.Status,
			To:   participation.StatusRegistered,
		}
	}

	now := s.now()
	admission := AdmissionService{ledger: s.ledger, logger: s.logger, now: s.now}
	status, position, err := admission.decide(snapshot)
	if err != nil {
		logger.Info("reinstatement refused", "error_kind", ErrorKind(err))
		return participation.Record{}, err
	}

	if err := record.Transition(status, now); err != nil {
		return participation.Record{}, err
	}
	record.WaitlistPosition = position
	record.RegisteredAt = now
	reinstatedAt := now
	record.ReinstatedAt = &reinstatedAt
	record.ReinstatedBy = params.Actor.UserID

	write := persistence.LedgerWrite{
		EventID:         params.EventID,
		ExpectedVersion: snapshot.Version,
		Update:          []participation.Record{record},
	}
	if err := s.ledger.ApplyLedgerWrite(ctx, write); err != nil {
		return participation.Record{}, mapRepoError(err)
	}

	logger.Info("participant reinstated", "status", string(record.Status), "waitlist_position", record.WaitlistPosition)
	return record, nil
}
