package timewindow

import (
	"errors"
	"testing"
	"time"
)

func mustWindow(t *testing.T, startHour, endHour int) Window {
	t.Helper()
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	w, err := New(day.Add(time.Duration(startHour)*time.Hour), day.Add(time.Duration(endHour)*time.Hour))
	if err != nil {
		t.Fatalf("failed to build window: %v", err)
	}
	return w
}

func TestNew_RejectsInvertedBounds(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

	if _, err := New(at, at); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for zero-length window, got %v", err)
	}

	if _, err := New(at.Add(time.Hour), at); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for inverted window, got %v", err)
	}
}

func TestWindow_Overlaps(t *testing.T) {
	t.Parallel()

	base := mustWindow(t, 9, 11)

	t.Run("shared span overlaps", func(t *testing.T) {
		t.Parallel()
		if !base.Overlaps(mustWindow(t, 10, 12)) {
			t.Fatal("expected overlap for windows sharing an hour")
		}
	})

	t.Run("abutting windows do not overlap", func(t *testing.T) {
		t.Parallel()
		if base.Overlaps(mustWindow(t, 11, 12)) {
			t.Fatal("half-open windows that abut must not overlap")
		}
	})

	t.Run("disjoint windows do not overlap", func(t *testing.T) {
		t.Parallel()
		if base.Overlaps(mustWindow(t, 13, 14)) {
			t.Fatal("expected no overlap for disjoint windows")
		}
	})

	t.Run("enclosing window overlaps", func(t *testing.T) {
		t.Parallel()
		if !base.Overlaps(mustWindow(t, 8, 12)) {
			t.Fatal("expected overlap when one window encloses the other")
		}
	})
}

func TestWindow_OverlapsAny(t *testing.T) {
	t.Parallel()

	base := mustWindow(t, 9, 10)
	others := []Window{mustWindow(t, 7, 8), mustWindow(t, 9, 11)}

	if !base.OverlapsAny(others) {
		t.Fatal("expected overlap against the second entry")
	}
	if base.OverlapsAny(others[:1]) {
		t.Fatal("expected no overlap against an earlier window")
	}
	if base.OverlapsAny(nil) {
		t.Fatal("expected no overlap against an empty set")
	}
}

func TestWindow_Contains(t *testing.T) {
	t.Parallel()

	w := mustWindow(t, 9, 10)

	if !w.Contains(w.Start) {
		t.Fatal("start instant belongs to a half-open window")
	}
	if w.Contains(w.End) {
		t.Fatal("end instant is excluded from a half-open window")
	}
	if !w.Contains(w.Start.Add(30 * time.Minute)) {
		t.Fatal("interior instant must be contained")
	}
}

func TestWindow_Clamp(t *testing.T) {
	t.Parallel()

	t.Run("trims both ends", func(t *testing.T) {
		t.Parallel()
		clamped, ok := mustWindow(t, 8, 12).Clamp(mustWindow(t, 9, 11))
		if !ok {
			t.Fatal("expected a surviving window")
		}
		want := mustWindow(t, 9, 11)
		if !clamped.Start.Equal(want.Start) || !clamped.End.Equal(want.End) {
			t.Fatalf("expected %v, got %v", want, clamped)
		}
	})

	t.Run("reports empty result", func(t *testing.T) {
		t.Parallel()
		if _, ok := mustWindow(t, 8, 9).Clamp(mustWindow(t, 10, 11)); ok {
			t.Fatal("expected clamp outside bounds to report empty")
		}
	})
}

func TestWindow_Duration(t *testing.T) {
	t.Parallel()

	if got := mustWindow(t, 9, 11).Duration(); got != 2*time.Hour {
		t.Fatalf("expected 2h duration, got %v", got)
	}
}
