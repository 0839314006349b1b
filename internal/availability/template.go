package availability

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ConfigurationError captures field level problems in a facilitator template.
// It is surfaced to the facilitator for correction and is never retried.
type ConfigurationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (c *ConfigurationError) Error() string {
	if c == nil || len(c.FieldErrors) == 0 {
		return "availability: invalid template configuration"
	}
	fields := make([]string, 0, len(c.FieldErrors))
	for field := range c.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("availability: invalid template configuration (%s)", strings.Join(fields, ", "))
}

// HasErrors reports whether any field level issues were recorded.
func (c *ConfigurationError) HasErrors() bool {
	return c != nil && len(c.FieldErrors) > 0
}

// add records a field level configuration error.
func (c *ConfigurationError) add(field, message string) {
	if c.FieldErrors == nil {
		c.FieldErrors = make(map[string]string)
	}
	c.FieldErrors[field] = message
}

// LocalInterval is a timezone-independent interval within a single day,
// expressed as minutes from local midnight. The interval is half-open.
type LocalInterval struct {
	StartMinute int
	EndMinute   int
}

// minutesPerDay bounds interval values; EndMinute may equal it (midnight).
const minutesPerDay = 24 * 60

// Template describes a facilitator's recurring availability and the policy
// limits applied when concrete slots are generated from it.
type Template struct {
	ID            string
	FacilitatorID string

	// WeeklySchedule maps each weekday to its local availability intervals.
	// Intervals for a day must be sorted ascending and non-overlapping; a
	// missing or empty entry means the facilitator takes no sessions that day.
	WeeklySchedule map[time.Weekday][]LocalInterval

	// Timezone is the IANA identifier used to resolve local intervals to
	// instants. Local-to-instant resolution goes through time.Date in this
	// location so daylight saving transitions are handled by the zone data.
	Timezone string

	MinAdvanceNotice        time.Duration
	MaxAdvanceBookingDays   int
	Buffer                  time.Duration
	PreferredSessionLengths []time.Duration
	MaxSessionsPerDay       int

	// Active gates slot generation entirely; an inactive template produces no
	// slots regardless of its content.
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location resolves the template's timezone identifier.
func (t Template) Location() (*time.Location, error) {
	if t.Timezone == "" {
		return nil, fmt.Errorf("availability: timezone is required")
	}
	return time.LoadLocation(t.Timezone)
}

// Validate checks the template invariants and returns a ConfigurationError
// describing every violated field, or nil when the template is well formed.
func (t Template) Validate() error {
	cErr := &ConfigurationError{}

	if _, err := t.Location(); err != nil {
		cErr.add("timezone", fmt.Sprintf("unrecognized timezone %q", t.Timezone))
	}

	for day, intervals := range t.WeeklySchedule {
		if day < time.Sunday || day > time.Saturday {
			cErr.add("weekly_schedule", fmt.Sprintf("invalid weekday %d", int(day)))
			continue
		}
		validateDayIntervals(day, intervals, cErr)
	}

	if t.MinAdvanceNotice < 0 {
		cErr.add("min_advance_notice", "must not be negative")
	}
	if t.MaxAdvanceBookingDays < 1 {
		cErr.add("max_advance_booking_days", "must be at least 1")
	}
	if t.Buffer < 0 {
		cErr.add("buffer", "must not be negative")
	}
	if t.MaxSessionsPerDay < 1 {
		cErr.add("max_sessions_per_day", "must be at least 1")
	}
	for _, length := range t.PreferredSessionLengths {
		if length <= 0 {
			cErr.add("preferred_session_lengths", "session lengths must be positive")
			break
		}
	}

	if cErr.HasErrors() {
		return cErr
	}
	return nil
}

func validateDayIntervals(day time.Weekday, intervals []LocalInterval, cErr *ConfigurationError) {
	field := fmt.Sprintf("weekly_schedule.%s", day)

	previousEnd := -1
	for _, interval := range intervals {
		if interval.StartMinute < 0 || interval.EndMinute > minutesPerDay {
			cErr.add(field, "interval bounds must fall within the day")
			return
		}
		if interval.EndMinute <= interval.StartMinute {
			cErr.add(field, "interval end must be after its start")
			return
		}
		if interval.StartMinute < previousEnd {
			cErr.add(field, "intervals must be sorted ascending and non-overlapping")
			return
		}
		previousEnd = interval.EndMinute
	}
}
