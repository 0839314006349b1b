package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/example/community-events/internal/availability"
	"github.com/example/community-events/internal/persistence"
)

func storedTemplate() availability.Template {
	return availability.Template{
		ID:            "template-1",
		FacilitatorID: "facilitator-1",
		WeeklySchedule: map[time.Weekday][]availability.LocalInterval{
			time.Monday: {
				{StartMinute: 9 * 60, EndMinute: 12 * 60},
				{StartMinute: 13 * 60, EndMinute: 17 * 60},
			},
			time.Wednesday: {
				{StartMinute: 10 * 60, EndMinute: 14 * 60},
			},
		},
		Timezone:                "America/New_York",
		MinAdvanceNotice:        24 * time.Hour,
		MaxAdvanceBookingDays:   30,
		Buffer:                  15 * time.Minute,
		PreferredSessionLengths: []time.Duration{30 * time.Minute, time.Hour},
		MaxSessionsPerDay:       4,
		Active:                  true,
		CreatedAt:               baseTime,
		UpdatedAt:               baseTime,
	}
}

func TestStorage_TemplateLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips a template with its schedule", func(t *testing.T) {
		storage := newTestStorage(t)
		template := storedTemplate()

		if err := storage.UpsertTemplate(ctx, template); err != nil {
			t.Fatalf("failed to upsert template: %v", err)
		}

		got, err := storage.GetTemplate(ctx, "facilitator-1")
		if err != nil {
			t.Fatalf("failed to get template: %v", err)
		}
		if !reflect.DeepEqual(got, template) {
			t.Fatalf("template mismatch:\ngot  %+v\nwant %+v", got, template)
		}
	})

	t.Run("upsert replaces the schedule wholesale", func(t *testing.T) {
		storage := newTestStorage(t)
		template := storedTemplate()
		if err := storage.UpsertTemplate(ctx, template); err != nil {
			t.Fatalf("failed to upsert template: %v", err)
		}

		template.WeeklySchedule = map[time.Weekday][]availability.LocalInterval{
			time.Friday: {{StartMinute: 8 * 60, EndMinute: 11 * 60}},
		}
		template.PreferredSessionLengths = []time.Duration{45 * time.Minute}
		template.Active = false
		template.UpdatedAt = baseTime.Add(time.Hour)
		if err := storage.UpsertTemplate(ctx, template); err != nil {
			t.Fatalf("failed to upsert replacement: %v", err)
		}

		got, err := storage.GetTemplate(ctx, "facilitator-1")
		if err != nil {
			t.Fatalf("failed to get template: %v", err)
		}
		if len(got.WeeklySchedule) != 1 || len(got.WeeklySchedule[time.Friday]) != 1 {
			t.Fatalf("old intervals survived the upsert: %+v", got.WeeklySchedule)
		}
		if got.Active {
			t.Fatalf("expected template to be inactive")
		}
		if !reflect.DeepEqual(got.PreferredSessionLengths, []time.Duration{45 * time.Minute}) {
			t.Fatalf("unexpected session lengths: %v", got.PreferredSessionLengths)
		}
	})

	t.Run("missing template maps to ErrNotFound", func(t *testing.T) {
		storage := newTestStorage(t)
		if _, err := storage.GetTemplate(ctx, "nobody"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete removes the template and its intervals", func(t *testing.T) {
		storage := newTestStorage(t)
		if err := storage.UpsertTemplate(ctx, storedTemplate()); err != nil {
			t.Fatalf("failed to upsert template: %v", err)
		}

		if err := storage.DeleteTemplate(ctx, "facilitator-1"); err != nil {
			t.Fatalf("failed to delete template: %v", err)
		}
		if _, err := storage.GetTemplate(ctx, "facilitator-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := storage.DeleteTemplate(ctx, "facilitator-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on repeated delete, got %v", err)
		}
	})
}
