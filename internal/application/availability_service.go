package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/community-events/internal/availability"
	"github.com/example/community-events/internal/persistence"
	"github.com/example/community-events/internal/timewindow"
)

// TemplateStore captures the persistence interactions for availability
// templates.
type TemplateStore interface {
	GetTemplate(ctx context.Context, facilitatorID string) (availability.Template, error)
	UpsertTemplate(ctx context.Context, template availability.Template) error
}

// BookingProvider supplies the consumed windows recorded by the external
// booking flows.
type BookingProvider interface {
	CreateBooking(ctx context.Context, booking persistence.Booking) error
	ListBookingWindows(ctx context.Context, filter persistence.BookingFilter) ([]timewindow.Window, error)
}

// AvailabilityService turns a facilitator's recurring template into the open,
// bookable windows for a requested horizon, subtracting windows already
// consumed by bookings.
type AvailabilityService struct {
	templates   TemplateStore
	bookings    BookingProvider
	engine      *availability.Engine
	logger      *slog.Logger
	idGenerator func() string
	now         func() time.Time
}

// NewAvailabilityService wires dependencies for availability operations. When
// idGenerator is nil, UUIDs are issued; when now is nil, time.Now is used.
func NewAvailabilityService(templates TemplateStore, bookings BookingProvider, logger *slog.Logger, idGenerator func() string, now func() time.Time) *AvailabilityService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		templates:   templates,
		bookings:    bookings,
		engine:      availability.NewEngine(now),
		logger:      defaultLogger(logger),
		idGenerator: idGenerator,
		now:         now,
	}
}

// OpenSlots computes the facilitator's bookable windows within the horizon.
func (s *AvailabilityService) OpenSlots(ctx context.Context, params OpenSlotsParams) ([]timewindow.Window, error) {
	if s == nil {
		return nil, fmt.Errorf("AvailabilityService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "availability", "open_slots", "facilitator_id", params.FacilitatorID)

	template, err := s.templates.GetTemplate(ctx, params.FacilitatorID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	existing, err := s.bookings.ListBookingWindows(ctx, persistence.BookingFilter{
		FacilitatorID: params.FacilitatorID,
		StartsAfter:   &params.Horizon.Start,
		EndsBefore:    &params.Horizon.End,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	slots, err := s.engine.ComputeSlots(template, params.Horizon, existing)
	if err != nil {
		return nil, err
	}

	logger.Debug("open slots computed", "slots", len(slots), "existing_bookings", len(existing))
	return slots, nil
}

// SaveTemplate validates and persists a facilitator template, assigning an
// identifier and timestamps when missing. Edits are not retroactive: windows
// already consumed by bookings live in the booking store and are unaffected.
func (s *AvailabilityService) SaveTemplate(ctx context.Context, template availability.Template) (availability.Template, error) {
	if s == nil {
		return availability.Template{}, fmt.Errorf("AvailabilityService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "availability", "save_template", "facilitator_id", template.FacilitatorID)

	if template.FacilitatorID == "" {
		cErr := &availability.ConfigurationError{FieldErrors: map[string]string{"facilitator_id": "facilitator is required"}}
		return availability.Template{}, cErr
	}
	if err := template.Validate(); err != nil {
		return availability.Template{}, err
	}

	now := s.now()
	if template.ID == "" {
		template.ID = s.idGenerator()
		template.CreatedAt = now
	}
	template.UpdatedAt = now

	if err := s.templates.UpsertTemplate(ctx, template); err != nil {
		return availability.Template{}, mapRepoError(err)
	}

	logger.Info("availability template saved", "template_id", template.ID, "active", template.Active)
	return template, nil
}

// RecordBooking stores a consumed facilitator window reported by the booking
// flow, so later slot computations exclude it.
func (s *AvailabilityService) RecordBooking(ctx context.Context, input BookingInput) (persistence.Booking, error) {
	if s == nil {
		return persistence.Booking{}, fmt.Errorf("AvailabilityService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "availability", "record_booking", "facilitator_id", input.FacilitatorID)

	if err := input.Window.Validate(); err != nil {
		return persistence.Booking{}, err
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	booking := persistence.Booking{
		ID:            s.idGenerator(),
		FacilitatorID: input.FacilitatorID,
		Start:         input.Window.Start,
		End:           input.Window.End,
		CreatedAt:     createdAt,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return persistence.Booking{}, mapRepoError(err)
	}

	logger.Info("booking recorded", "booking_id", booking.ID)
	return booking, nil
}
