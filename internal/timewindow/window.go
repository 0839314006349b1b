package timewindow

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWindow indicates a window whose end does not fall after its start.
var ErrInvalidWindow = errors.New("timewindow: end must be after start")

// Window represents a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// New constructs a Window and validates the start/end ordering.
func New(start, end time.Time) (Window, error) {
	w := Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate reports whether the window satisfies the start < end invariant.
func (w Window) Validate() error {
	if !w.End.After(w.Start) {
		return ErrInvalidWindow
	}
	return nil
}

// Duration returns the length of the window.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether two half-open windows share any instant.
// Abutting windows (one ending exactly when the other starts) do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// OverlapsAny reports whether the window overlaps any entry in windows.
func (w Window) OverlapsAny(windows []Window) bool {
	for _, other := range windows {
		if w.Overlaps(other) {
			return true
		}
	}
	return false
}

// Contains reports whether the instant falls inside the half-open interval.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Encloses reports whether other lies entirely within the window.
func (w Window) Encloses(other Window) bool {
	return !other.Start.Before(w.Start) && !other.End.After(w.End)
}

// Clamp restricts the window to the supplied bounds. The second return value is
// false when nothing of the window survives the clamping.
func (w Window) Clamp(bounds Window) (Window, bool) {
	clamped := w
	if clamped.Start.Before(bounds.Start) {
		clamped.Start = bounds.Start
	}
	if clamped.End.After(bounds.End) {
		clamped.End = bounds.End
	}
	if !clamped.End.After(clamped.Start) {
		return Window{}, false
	}
	return clamped, true
}

// String renders the window using RFC3339 bounds, primarily for logs and tests.
func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}
