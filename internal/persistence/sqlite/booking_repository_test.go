package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/community-events/internal/persistence"
	"github.com/example/community-events/internal/timewindow"
)

func seedBooking(t *testing.T, storage *Storage, id string, start time.Time, length time.Duration) {
	t.Helper()

	err := storage.CreateBooking(context.Background(), persistence.Booking{
		ID:            id,
		FacilitatorID: "facilitator-1",
		Start:         start,
		End:           start.Add(length),
		CreatedAt:     baseTime,
	})
	if err != nil {
		t.Fatalf("failed to create booking %s: %v", id, err)
	}
}

func TestStorage_Bookings(t *testing.T) {
	ctx := context.Background()

	t.Run("lists a facilitator's windows in start order", func(t *testing.T) {
		storage := newTestStorage(t)
		seedBooking(t, storage, "booking-2", baseTime.Add(2*time.Hour), time.Hour)
		seedBooking(t, storage, "booking-1", baseTime, time.Hour)

		err := storage.CreateBooking(ctx, persistence.Booking{
			ID:            "booking-other",
			FacilitatorID: "facilitator-2",
			Start:         baseTime,
			End:           baseTime.Add(time.Hour),
			CreatedAt:     baseTime,
		})
		if err != nil {
			t.Fatalf("failed to create booking: %v", err)
		}

		windows, err := storage.ListBookingWindows(ctx, persistence.BookingFilter{FacilitatorID: "facilitator-1"})
		if err != nil {
			t.Fatalf("failed to list windows: %v", err)
		}
		if len(windows) != 2 {
			t.Fatalf("expected 2 windows, got %d", len(windows))
		}
		if !windows[0].Start.Equal(baseTime) || !windows[1].Start.Equal(baseTime.Add(2*time.Hour)) {
			t.Fatalf("unexpected order: %v", windows)
		}
	})

	t.Run("horizon filter keeps overlapping edge bookings", func(t *testing.T) {
		storage := newTestStorage(t)
		// Straddles the horizon start, fully inside, and past the horizon end.
		seedBooking(t, storage, "booking-1", baseTime.Add(-30*time.Minute), time.Hour)
		seedBooking(t, storage, "booking-2", baseTime.Add(2*time.Hour), time.Hour)
		seedBooking(t, storage, "booking-3", baseTime.Add(8*time.Hour), time.Hour)

		horizonStart := baseTime
		horizonEnd := baseTime.Add(4 * time.Hour)
		windows, err := storage.ListBookingWindows(ctx, persistence.BookingFilter{
			FacilitatorID: "facilitator-1",
			StartsAfter:   &horizonStart,
			EndsBefore:    &horizonEnd,
		})
		if err != nil {
			t.Fatalf("failed to list windows: %v", err)
		}
		if len(windows) != 2 {
			t.Fatalf("expected 2 windows, got %d: %v", len(windows), windows)
		}
		if !windows[0].Start.Equal(baseTime.Add(-30 * time.Minute)) {
			t.Fatalf("expected straddling booking first, got %v", windows[0])
		}
	})

	t.Run("delete releases the window", func(t *testing.T) {
		storage := newTestStorage(t)
		seedBooking(t, storage, "booking-1", baseTime, time.Hour)

		if err := storage.DeleteBooking(ctx, "booking-1"); err != nil {
			t.Fatalf("failed to delete booking: %v", err)
		}
		windows, err := storage.ListBookingWindows(ctx, persistence.BookingFilter{FacilitatorID: "facilitator-1"})
		if err != nil {
			t.Fatalf("failed to list windows: %v", err)
		}
		if len(windows) != 0 {
			t.Fatalf("expected no windows, got %v", windows)
		}
		if err := storage.DeleteBooking(ctx, "booking-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate booking identifiers are rejected", func(t *testing.T) {
		storage := newTestStorage(t)
		seedBooking(t, storage, "booking-1", baseTime, time.Hour)

		err := storage.CreateBooking(ctx, persistence.Booking{
			ID:            "booking-1",
			FacilitatorID: "facilitator-1",
			Start:         baseTime,
			End:           baseTime.Add(time.Hour),
			CreatedAt:     baseTime,
		})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("returned windows satisfy the window invariants", func(t *testing.T) {
		storage := newTestStorage(t)
		seedBooking(t, storage, "booking-1", baseTime, time.Hour)

		windows, err := storage.ListBookingWindows(ctx, persistence.BookingFilter{FacilitatorID: "facilitator-1"})
		if err != nil {
			t.Fatalf("failed to list windows: %v", err)
		}
		for _, window := range windows {
			if err := window.Validate(); err != nil {
				t.Fatalf("stored window is invalid: %v", err)
			}
		}
		if windows[0] != (timewindow.Window{Start: baseTime, End: baseTime.Add(time.Hour)}) {
			t.Fatalf("unexpected window: %v", windows[0])
		}
	})
}
