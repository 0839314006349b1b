package persistence

import (
	"time"

	"github.com/example/community-events/internal/participation"
)

// Event is the capacity view of an event record. Only the fields the
// admission algorithms need are stored here; the surrounding application owns
// the rest of the event.
type Event struct {
	ID              string
	Title           string
	Capacity        int
	WaitlistEnabled bool

	// Version is the optimistic concurrency counter. Every admission or
	// promotion write advances it inside the same transaction, so a write
	// conditioned on a stale version fails with ErrVersionConflict.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventSnapshot is the consistent read the admission and promotion algorithms
// base their decisions on. The counts are taken in the same transaction that
// produced the version.
type EventSnapshot struct {
	EventID             string
	Capacity            int
	WaitlistEnabled     bool
	Version             int64
	RegisteredCount     int
	MaxWaitlistPosition int
}

// HasOpenSeat reports whether the snapshot shows admission capacity. A zero
// capacity means unlimited seating.
func (s EventSnapshot) HasOpenSeat() bool {
	return s.Capacity == 0 || s.RegisteredCount < s.Capacity
}

// LedgerWrite is one atomic unit of ledger work: an optional record creation
// plus any number of record updates, all conditioned on the event version the
// deciding snapshot carried. Either every part commits or none does.
type LedgerWrite struct {
	EventID         string
	ExpectedVersion int64
	Create          *participation.Record
	Update          []participation.Record
}

// Booking is a consumed facilitator time window supplied by the external
// booking flows and read back when open slots are computed.
type Booking struct {
	ID            string
	FacilitatorID string
	Start         time.Time
	End           time.Time
	CreatedAt     time.Time
}
