package availability

import (
	"slices"
	"sort"
	"time"

	"github.com/example/community-events/internal/timewindow"
)

// Engine expands availability templates into concrete bookable slots.
//
// The engine holds no state beyond its time source: ComputeSlots is pure and
// idempotent given the same template, horizon, bookings, and clock reading, so
// it may be invoked concurrently without coordination.
type Engine struct {
	now func() time.Time
}

// NewEngine constructs an Engine using the provided time source. When now is
// nil, time.Now is used.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// ComputeSlots generates the bookable windows for the template within the
// requested horizon.
//
// The engine enforces the following semantics:
//   - The requested horizon is clipped to [now+MinAdvanceNotice,
//     now+MaxAdvanceBookingDays]; anything outside is excluded, not an error.
//   - Local intervals resolve to instants in the template's timezone.
//   - Each preferred session length packs greedily from the interval start,
//     keeping Buffer between consecutive candidates of the chain; chains carry
//     their last placed end across intervals of the same day so abutting
//     intervals never produce back-to-back sessions without the buffer.
//   - At most MaxSessionsPerDay candidates survive per local day, taken in
//     start order before existing bookings are considered.
//   - Candidates overlapping an existing booking are removed last.
//
// An inactive template or an empty PreferredSessionLengths produces no slots.
// A malformed template surfaces a *ConfigurationError with no partial result.
func (e *Engine) ComputeSlots(tpl Template, horizon timewindow.Window, existing []timewindow.Window) ([]timewindow.Window, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	if !tpl.Active || len(tpl.PreferredSessionLengths) == 0 {
		return nil, nil
	}

	now := e.now()
	policy := timewindow.Window{
		Start: now.Add(tpl.MinAdvanceNotice),
		End:   now.AddDate(0, 0, tpl.MaxAdvanceBookingDays),
	}
	searchable, ok := horizon.Clamp(policy)
	if !ok {
		return nil, nil
	}

	loc, err := tpl.Location()
	if err != nil {
		// Validate already vetted the zone; this only guards a racing edit.
		cErr := &ConfigurationError{}
		cErr.add("timezone", err.Error())
		return nil, cErr
	}

	lengths := slices.Clone(tpl.PreferredSessionLengths)
	slices.Sort(lengths)

	var slots []timewindow.Window

	first := searchable.Start.In(loc)
	last := searchable.End.In(loc)
	for year, month, day := first.Date(); ; year, month, day = nextDay(year, month, day, loc) {
		midnight := time.Date(year, month, day, 0, 0, 0, 0, loc)
		if midnight.After(last) {
			break
		}

		intervals := tpl.WeeklySchedule[midnight.Weekday()]
		if len(intervals) == 0 {
			continue
		}

		candidates := packDay(intervals, lengths, tpl.Buffer, year, month, day, loc, searchable)
		if len(candidates) > tpl.MaxSessionsPerDay {
			candidates = candidates[:tpl.MaxSessionsPerDay]
		}

		for _, candidate := range candidates {
			if candidate.OverlapsAny(existing) {
				continue
			}
			slots = append(slots, candidate)
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Start.Equal(slots[j].Start) {
			return slots[i].End.Before(slots[j].End)
		}
		return slots[i].Start.Before(slots[j].Start)
	})

	return slots, nil
}

// packDay produces the day's candidate slots across all session lengths,
// ordered by start (shorter sessions first on ties) and already restricted to
// the searchable horizon.
func packDay(intervals []LocalInterval, lengths []time.Duration, buffer time.Duration, year int, month time.Month, day int, loc *time.Location, searchable timewindow.Window) []timewindow.Window {
	var candidates []timewindow.Window

	for _, length := range lengths {
		var lastEnd time.Time
		for _, interval := range intervals {
			// Resolving minutes through time.Date applies the zone's DST
			// rules to skipped or repeated local times.
			intervalStart := time.Date(year, month, day, 0, interval.StartMinute, 0, 0, loc)
			intervalEnd := time.Date(year, month, day, 0, interval.EndMinute, 0, 0, loc)

			cursor := intervalStart
			if !lastEnd.IsZero() && lastEnd.Add(buffer).After(cursor) {
				cursor = lastEnd.Add(buffer)
			}

			for {
				end := cursor.Add(length)
				if end.After(intervalEnd) {
					break
				}
				candidate := timewindow.Window{Start: cursor, End: end}
				if searchable.Encloses(candidate) {
					candidates = append(candidates, candidate)
				}
				lastEnd = end
				cursor = end.Add(buffer)
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Start.Equal(candidates[j].Start) {
			return candidates[i].End.Before(candidates[j].End)
		}
		return candidates[i].Start.Before(candidates[j].Start)
	})

	return candidates
}

func nextDay(year int, month time.Month, day int, loc *time.Location) (int, time.Month, int) {
	return time.Date(year, month, day+1, 0, 0, 0, 0, loc).Date()
}
