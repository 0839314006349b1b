package participation

import (
	"fmt"
	"time"
)

// Status enumerates the lifecycle states of a participation record.
type Status string

const (
	// StatusRegistered indicates the participant holds a confirmed seat.
	StatusRegistered Status = "registered"
	// StatusWaitlisted indicates the participant is queued for a seat.
	StatusWaitlisted Status = "waitlisted"
	// StatusAttended indicates the participant was present when the event concluded.
	StatusAttended Status = "attended"
	// StatusNoShow indicates the participant held a seat but was absent.
	StatusNoShow Status = "no_show"
	// StatusCancelled indicates the participant withdrew.
	StatusCancelled Status = "cancelled"
	// StatusRejected indicates an organizer removed the participant.
	StatusRejected Status = "rejected"
)

// Valid reports whether the status is a member of the closed set.
func (s Status) Valid() bool {
	switch s {
	case StatusRegistered, StatusWaitlisted, StatusAttended, StatusNoShow, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// Active reports whether the status occupies admission state: a seat or a
// waitlist rank. Only active records block a repeat join.
func (s Status) Active() bool {
	return s == StatusRegistered || s == StatusWaitlisted
}

// Terminal reports whether the status ends the record's lifecycle for the
// event occurrence. Cancelled records may re-join and rejected records may be
// reinstated; attended and no_show never transition again.
func (s Status) Terminal() bool {
	return s == StatusAttended || s == StatusNoShow
}

// InvalidTransitionError reports a status change the transition table does not
// allow. It indicates a caller logic error and is never retried.
type InvalidTransitionError struct {
	From Status
	To   Status
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("participation: invalid transition from %s to %s", e.From, e.To)
}

// transitions is the single source of truth for reachable status changes.
// Admission creates records directly in registered or waitlisted, so those
// appear here only as targets of later transitions.
var transitions = map[Status][]Status{
	StatusRegistered: {StatusCancelled, StatusRejected, StatusAttended, StatusNoShow},
	StatusWaitlisted: {StatusCancelled, StatusRejected, StatusRegistered},
	StatusCancelled:  {StatusRegistered, StatusWaitlisted},
	StatusRejected:   {StatusRegistered, StatusWaitlisted},
}

// CanTransition reports whether the table permits moving from one status to
// another.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Record is the participation ledger entry for one (event, user) pair. The
// pair is the identity key; at most one record exists per user per event and
// records are never deleted, only transitioned.
type Record struct {
	EventID string
	UserID  string
	Status  Status

	// WaitlistPosition is a dense 1..N rank among the event's currently
	// waitlisted records, ordered first-come-first-served. Zero when the
	// record is not waitlisted.
	WaitlistPosition int

	RegisteredAt time.Time

	RejectedAt      *time.Time
	RejectedBy      string
	RejectionReason string

	ReinstatedAt *time.Time
	ReinstatedBy string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transition moves the record to the target status after consulting the
// transition table, clearing the waitlist rank whenever the record leaves the
// waitlist.
func (r *Record) Transition(to Status, at time.Time) error {
	if !CanTransition(r.Status, to) {
		return &InvalidTransitionError{From: r.Status, To: to}
	}
	r.Status = to
	if to != StatusWaitlisted {
		r.WaitlistPosition = 0
	}
	r.UpdatedAt = at
	return nil
}
