package application

import (
	"errors"
	"fmt"

	"github.com/example/community-events/internal/availability"
	"github.com/example/community-events/internal/participation"
	"github.com/example/community-events/internal/persistence"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrEventFull is returned when capacity is reached and the event does not
	// waitlist. It is an expected terminal outcome for the joining user, not a
	// system failure.
	ErrEventFull = errors.New("application: event is full")
	// ErrConcurrencyConflict is returned when a concurrent write invalidated
	// the snapshot an admission or promotion decision was based on. The whole
	// operation is safely retryable against a fresh snapshot; retry policy is
	// left to the caller.
	ErrConcurrencyConflict = errors.New("application: admission snapshot invalidated by a concurrent write")
)

// DuplicateParticipationError reports a join attempted while an active record
// already exists for the (event, user) pair. Callers that want idempotent join
// semantics can use Existing instead of surfacing the error.
type DuplicateParticipationError struct {
	Existing participation.Record
}

// Error implements the error interface.
func (e *DuplicateParticipationError) Error() string {
	return fmt.Sprintf("application: user %s already participates in event %s with status %s",
		e.Existing.UserID, e.Existing.EventID, e.Existing.Status)
}

// mapRepoError translates persistence sentinel errors into the application
// taxonomy.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrVersionConflict) {
		return ErrConcurrencyConflict
	}
	// A racing create on the same (event, user) pair surfaces as a duplicate
	// row; the retried join will find the record and apply the active guard.
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrConcurrencyConflict
	}
	return err
}

// ErrorKind maps errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrEventFull):
		return "event_full"
	case errors.Is(err, ErrConcurrencyConflict):
		return "concurrency_conflict"
	}

	var dupErr *DuplicateParticipationError
	if errors.As(err, &dupErr) {
		return "duplicate_participation"
	}

	var transitionErr *participation.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return "invalid_transition"
	}

	var cfgErr *availability.ConfigurationError
	if errors.As(err, &cfgErr) {
		return "configuration"
	}

	return "unexpected"
}
