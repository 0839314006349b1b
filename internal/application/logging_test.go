package application

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/community-events/internal/availability"
	"github.com/example/community-events/internal/logging"
	"github.com/example/community-events/internal/participation"
)

func TestErrorKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{"not found", ErrNotFound, "not_found"},
		{"event full", ErrEventFull, "event_full"},
		{"concurrency conflict", ErrConcurrencyConflict, "concurrency_conflict"},
		{"duplicate participation", &DuplicateParticipationError{}, "duplicate_participation"},
		{
			"invalid transition",
			&participation.InvalidTransitionError{From: participation.StatusAttended, To: participation.StatusRegistered},
			"invalid_transition",
		},
		{"configuration", &availability.ConfigurationError{}, "configuration"},
		{"unexpected", errors.New("disk on fire"), "unexpected"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestServiceLogger_PrefersContextLogger(t *testing.T) {
	var contextBuf, baseBuf bytes.Buffer
	contextLogger := slog.New(slog.NewTextHandler(&contextBuf, nil))
	baseLogger := slog.New(slog.NewTextHandler(&baseBuf, nil))

	ctx := logging.ContextWithLogger(context.Background(), contextLogger)
	logger := serviceLogger(ctx, baseLogger, "admission", "join", "event_id", "event-1")
	logger.Info("admission decided")

	if baseBuf.Len() != 0 {
		t.Fatalf("expected the base logger to stay silent, got %q", baseBuf.String())
	}
	output := contextBuf.String()
	for _, want := range []string{"service=admission", "operation=join", "event_id=event-1", "admission decided"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected output to contain %q, got %q", want, output)
		}
	}
}

func TestServiceLogger_FallsBackToBase(t *testing.T) {
	var baseBuf bytes.Buffer
	baseLogger := slog.New(slog.NewTextHandler(&baseBuf, nil))

	logger := serviceLogger(context.Background(), baseLogger, "moderation", "reject")
	logger.Info("participant rejected")

	if !strings.Contains(baseBuf.String(), "service=moderation") {
		t.Fatalf("expected base logger output, got %q", baseBuf.String())
	}
}
