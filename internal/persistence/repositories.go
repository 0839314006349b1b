package persistence

import (
	"context"
	"time"

	"github.com/example/community-events/internal/availability"
	"github.com/example/community-events/internal/participation"
	"github.com/example/community-events/internal/timewindow"
)

// EventRepository stores event capacity views.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
}

// ParticipationRepository stores the participation ledger. SnapshotEvent and
// ApplyLedgerWrite together carry the optimistic concurrency discipline: a
// write conditioned on a snapshot whose version has moved on fails with
// ErrVersionConflict and applies nothing.
type ParticipationRepository interface {
	SnapshotEvent(ctx context.Context, eventID string) (EventSnapshot, error)
	GetRecord(ctx context.Context, eventID, userID string) (participation.Record, error)
	ListRecords(ctx context.Context, eventID string) ([]participation.Record, error)
	ListWaitlisted(ctx context.Context, eventID string) ([]participation.Record, error)
	ApplyLedgerWrite(ctx context.Context, write LedgerWrite) error
}

// TemplateRepository stores facilitator availability templates.
type TemplateRepository interface {
	UpsertTemplate(ctx context.Context, template availability.Template) error
	GetTemplate(ctx context.Context, facilitatorID string) (availability.Template, error)
	DeleteTemplate(ctx context.Context, facilitatorID string) error
}

// BookingFilter narrows booking queries to a facilitator and horizon.
type BookingFilter struct {
	FacilitatorID string
	StartsAfter   *time.Time
	EndsBefore    *time.Time
}

// BookingRepository stores consumed facilitator windows.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	ListBookingWindows(ctx context.Context, filter BookingFilter) ([]timewindow.Window, error)
	DeleteBooking(ctx context.Context, id string) error
}
