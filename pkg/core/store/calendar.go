package store

import (
	"context"
	"time"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// RawEvent is an event as reported by the external calendar.
type RawEvent struct {
	ExternalID string
	Summary    string
	Start      time.Time
	End        time.Time
}

// CalendarService mirrors shifts to an external calendar. Implemented by
// pkg/clients/calendarclient; tests use in-memory fakes.
type CalendarService interface {
	// CreateEvent creates an event for the shift and returns its
	// external correlation id.
	CreateEvent(ctx context.Context, shift *model.ScheduledShift) (string, error)
	// DeleteEvent removes a previously created event.
	DeleteEvent(ctx context.Context, externalID string) error
	// ListEvents returns the events intersecting the given range.
	ListEvents(ctx context.Context, from, to time.Time) ([]RawEvent, error)
	// AuthStatus reports whether the service is authorized to write.
	AuthStatus(ctx context.Context) error
}
