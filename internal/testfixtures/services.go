package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/community-events/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// AdmissionServiceDeps captures dependencies for constructing an admission
// service.
type AdmissionServiceDeps struct {
	Ledger application.ParticipationLedger
	Now    func() time.Time
	Logger *slog.Logger
}

// NewAdmissionService builds an admission service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewAdmissionService(deps AdmissionServiceDeps) *application.AdmissionService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAdmissionService(deps.Ledger, deps.Logger, now)
}

// ModerationServiceDeps captures dependencies for constructing a moderation
// service.
type ModerationServiceDeps struct {
	Ledger application.ParticipationLedger
	Now    func() time.Time
	Logger *slog.Logger
}

// NewModerationService builds a moderation service using the supplied
// dependencies.
func (f *ServiceFactory) NewModerationService(deps ModerationServiceDeps) *application.ModerationService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewModerationService(deps.Ledger, deps.Logger, now)
}

// AvailabilityServiceDeps captures dependencies for constructing an
// availability service.
type AvailabilityServiceDeps struct {
	Templates   application.TemplateStore
	Bookings    application.BookingProvider
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAvailabilityService builds an availability service using the supplied
// dependencies.
func (f *ServiceFactory) NewAvailabilityService(deps AvailabilityServiceDeps) *application.AvailabilityService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAvailabilityService(deps.Templates, deps.Bookings, deps.Logger, idGen, now)
}
