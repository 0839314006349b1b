package application

import (
	"time"

	"github.com/example/community-events/internal/timewindow"
)

// Actor identifies the user performing a moderation action. Authorization is
// the caller's responsibility; the services only record the acting identity
// in the audit fields.
type Actor struct {
	UserID string
}

// JoinParams wraps the data required to request admission to an event.
type JoinParams struct {
	EventID string
	UserID  string
}

// CancelParams wraps the data required to withdraw a participation.
type CancelParams struct {
	EventID string
	UserID  string
}

// AttendanceParams wraps the data recorded when an event concludes.
type AttendanceParams struct {
	EventID string
	UserID  string
	Present bool
}

// RejectParams wraps the data required for an organizer rejection.
type RejectParams struct {
	Actor   Actor
	EventID string
	UserID  string
	Reason  string
}

// ReinstateParams wraps the data required to reinstate a rejected participant.
type ReinstateParams struct {
	Actor   Actor
	EventID string
	UserID  string
}

// OpenSlotsParams wraps the data required to compute bookable windows for a
// facilitator.
type OpenSlotsParams struct {
	FacilitatorID string
	Horizon       timewindow.Window
}

// BookingInput captures a consumed facilitator window reported by the
// external booking flow.
type BookingInput struct {
	FacilitatorID string
	Window        timewindow.Window
	CreatedAt     time.Time
}
