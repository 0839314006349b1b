package availability

import (
	"errors"
	"testing"
	"time"
)

func validTemplate() Template {
	return Template{
		ID:            "template-1",
		FacilitatorID: "facilitator-1",
		WeeklySchedule: map[time.Weekday][]LocalInterval{
			time.Monday:    {{StartMinute: 9 * 60, EndMinute: 12 * 60}},
			time.Wednesday: {{StartMinute: 9 * 60, EndMinute: 11 * 60}, {StartMinute: 13 * 60, EndMinute: 17 * 60}},
		},
		Timezone:                "UTC",
		MinAdvanceNotice:        2 * time.Hour,
		MaxAdvanceBookingDays:   30,
		Buffer:                  15 * time.Minute,
		PreferredSessionLengths: []time.Duration{60 * time.Minute},
		MaxSessionsPerDay:       4,
		Active:                  true,
	}
}

func TestTemplate_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a well formed template", func(t *testing.T) {
		t.Parallel()
		if err := validTemplate().Validate(); err != nil {
			t.Fatalf("expected valid template, got %v", err)
		}
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		t.Parallel()
		tpl := validTemplate()
		tpl.Timezone = "Mars/Olympus_Mons"

		err := tpl.Validate()
		var cErr *ConfigurationError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConfigurationError, got %v", err)
		}
		if _, ok := cErr.FieldErrors["timezone"]; !ok {
			t.Fatalf("expected timezone field error, got %v", cErr.FieldErrors)
		}
	})

	t.Run("rejects inverted interval", func(t *testing.T) {
		t.Parallel()
		tpl := validTemplate()
		tpl.WeeklySchedule[time.Friday] = []LocalInterval{{StartMinute: 10 * 60, EndMinute: 10 * 60}}

		err := tpl.Validate()
		var cErr *ConfigurationError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConfigurationError, got %v", err)
		}
		if _, ok := cErr.FieldErrors["weekly_schedule.Friday"]; !ok {
			t.Fatalf("expected Friday interval error, got %v", cErr.FieldErrors)
		}
	})

	t.Run("rejects overlapping intervals", func(t *testing.T) {
		t.Parallel()
		tpl := validTemplate()
		tpl.WeeklySchedule[time.Monday] = []LocalInterval{
			{StartMinute: 9 * 60, EndMinute: 11 * 60},
			{StartMinute: 10 * 60, EndMinute: 12 * 60},
		}

		err := tpl.Validate()
		var cErr *ConfigurationError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConfigurationError, got %v", err)
		}
		if _, ok := cErr.FieldErrors["weekly_schedule.Monday"]; !ok {
			t.Fatalf("expected Monday interval error, got %v", cErr.FieldErrors)
		}
	})

	t.Run("rejects out of range interval bounds", func(t *testing.T) {
		t.Parallel()
		tpl := validTemplate()
		tpl.WeeklySchedule[time.Sunday] = []LocalInterval{{StartMinute: 23 * 60, EndMinute: 25 * 60}}

		var cErr *ConfigurationError
		if !errors.As(tpl.Validate(), &cErr) {
			t.Fatal("expected ConfigurationError for bounds past midnight")
		}
	})

	t.Run("rejects policy violations", func(t *testing.T) {
		t.Parallel()
		tpl := validTemplate()
		tpl.MinAdvanceNotice = -time.Hour
		tpl.MaxAdvanceBookingDays = 0
		tpl.Buffer = -time.Minute
		tpl.MaxSessionsPerDay = 0
		tpl.PreferredSessionLengths = []time.Duration{0}

		err := tpl.Validate()
		var cErr *ConfigurationError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConfigurationError, got %v", err)
		}
		for _, field := range []string{"min_advance_notice", "max_advance_booking_days", "buffer", "max_sessions_per_day", "preferred_session_lengths"} {
			if _, ok := cErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s field error, got %v", field, cErr.FieldErrors)
			}
		}
	})

	t.Run("allows an empty weekday entry", func(t *testing.T) {
		t.Parallel()
		tpl := validTemplate()
		tpl.WeeklySchedule[time.Saturday] = nil
		if err := tpl.Validate(); err != nil {
			t.Fatalf("expected empty weekday entry to be valid, got %v", err)
		}
	})
}
