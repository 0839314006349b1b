package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/community-events/internal/availability"
	"github.com/example/community-events/internal/participation"
	"github.com/example/community-events/internal/persistence"
)

var (
	eventCounter    uint64
	recordCounter   uint64
	templateCounter uint64
	bookingCounter  uint64
)

var referenceTime = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Event fixtures -----------------------------

// EventOption configures the generated event.
type EventOption func(*persistence.Event)

// NewEventFixture returns a deterministic event with optional overrides. The
// default event holds ten seats with the waitlist enabled.
func NewEventFixture(opts ...EventOption) persistence.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	event := persistence.Event{
		ID:              fmt.Sprintf("event-%03d", idx),
		Title:           fmt.Sprintf("Community Event %03d", idx),
		Capacity:        10,
		WaitlistEnabled: true,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(e *persistence.Event) {
		e.ID = id
	}
}

// WithEventCapacity sets the seat count. Zero means unlimited.
func WithEventCapacity(capacity int) EventOption {
	return func(e *persistence.Event) {
		e.Capacity = capacity
	}
}

// WithEventWaitlist toggles the waitlist.
func WithEventWaitlist(enabled bool) EventOption {
	return func(e *persistence.Event) {
		e.WaitlistEnabled = enabled
	}
}

// ----------------------- Participation fixtures ---------------------------

// RecordOption configures the generated participation record.
type RecordOption func(*participation.Record)

// NewRecordFixture returns a deterministic registered participation record
// with optional overrides.
func NewRecordFixture(eventID string, opts ...RecordOption) participation.Record {
	idx := atomic.AddUint64(&recordCounter, 1)
	registered := referenceTime.Add(time.Duration(idx) * time.Minute)
	record := participation.Record{
		EventID:      eventID,
		UserID:       fmt.Sprintf("user-%03d", idx),
		Status:       participation.StatusRegistered,
		RegisteredAt: registered,
		CreatedAt:    registered,
		UpdatedAt:    registered,
	}
	for _, opt := range opts {
		opt(&record)
	}
	return record
}

// WithRecordUser overrides the generated user ID.
func WithRecordUser(userID string) RecordOption {
	return func(r *participation.Record) {
		r.UserID = userID
	}
}

// WithRecordStatus sets the record status.
func WithRecordStatus(status participation.Status) RecordOption {
	return func(r *participation.Record) {
		r.Status = status
	}
}

// WithRecordWaitlistPosition marks the record waitlisted at the given
// position.
func WithRecordWaitlistPosition(position int) RecordOption {
	return func(r *participation.Record) {
		r.Status = participation.StatusWaitlisted
		r.WaitlistPosition = position
	}
}

// WithRecordRegisteredAt sets the registration timestamp.
func WithRecordRegisteredAt(at time.Time) RecordOption {
	return func(r *participation.Record) {
		r.RegisteredAt = at
		r.CreatedAt = at
		r.UpdatedAt = at
	}
}

// --------------------------- Template fixtures -----------------------------

// TemplateOption configures the generated availability template.
type TemplateOption func(*availability.Template)

// NewTemplateFixture returns a deterministic availability template that
// passes validation: weekday mornings in UTC with hour sessions.
func NewTemplateFixture(opts ...TemplateOption) availability.Template {
	idx := atomic.AddUint64(&templateCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	template := availability.Template{
		ID:            fmt.Sprintf("template-%03d", idx),
		FacilitatorID: fmt.Sprintf("facilitator-%03d", idx),
		WeeklySchedule: map[time.Weekday][]availability.LocalInterval{
			time.Monday:    {{StartMinute: 9 * 60, EndMinute: 12 * 60}},
			time.Wednesday: {{StartMinute: 9 * 60, EndMinute: 12 * 60}},
		},
		Timezone:                "UTC",
		MinAdvanceNotice:        time.Hour,
		MaxAdvanceBookingDays:   30,
		Buffer:                  0,
		PreferredSessionLengths: []time.Duration{time.Hour},
		MaxSessionsPerDay:       10,
		Active:                  true,
		CreatedAt:               created,
		UpdatedAt:               created,
	}
	for _, opt := range opts {
		opt(&template)
	}
	return template
}

// WithTemplateFacilitator overrides the generated facilitator ID.
func WithTemplateFacilitator(facilitatorID string) TemplateOption {
	return func(t *availability.Template) {
		t.FacilitatorID = facilitatorID
	}
}

// WithTemplateTimezone sets the template timezone.
func WithTemplateTimezone(zone string) TemplateOption {
	return func(t *availability.Template) {
		t.Timezone = zone
	}
}

// WithTemplateSchedule replaces the weekly schedule.
func WithTemplateSchedule(schedule map[time.Weekday][]availability.LocalInterval) TemplateOption {
	return func(t *availability.Template) {
		t.WeeklySchedule = schedule
	}
}

// WithTemplateSessionLengths replaces the preferred session lengths.
func WithTemplateSessionLengths(lengths ...time.Duration) TemplateOption {
	return func(t *availability.Template) {
		t.PreferredSessionLengths = lengths
	}
}

// WithTemplateBuffer sets the buffer between sessions.
func WithTemplateBuffer(buffer time.Duration) TemplateOption {
	return func(t *availability.Template) {
		t.Buffer = buffer
	}
}

// WithTemplateActive toggles the template.
func WithTemplateActive(active bool) TemplateOption {
	return func(t *availability.Template) {
		t.Active = active
	}
}

// --------------------------- Booking fixtures ------------------------------

// BookingOption configures the generated booking.
type BookingOption func(*persistence.Booking)

// NewBookingFixture returns a deterministic one hour booking for the given
// facilitator starting at the reference time.
func NewBookingFixture(facilitatorID string, opts ...BookingOption) persistence.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	booking := persistence.Booking{
		ID:            fmt.Sprintf("booking-%03d", idx),
		FacilitatorID: facilitatorID,
		Start:         referenceTime,
		End:           referenceTime.Add(time.Hour),
		CreatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}

// WithBookingWindow sets the booked window.
func WithBookingWindow(start, end time.Time) BookingOption {
	return func(b *persistence.Booking) {
		b.Start = start
		b.End = end
	}
}
