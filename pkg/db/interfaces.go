// Package db defines the persistence interfaces the core depends on.
// Adapters (pkg/postgres) implement them; the effects middleware and the
// CLI consume them. Everything is expressed over domain types; how an
// adapter maps them to columns is its own business.
package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// ShiftStore persists scheduled shifts.
type ShiftStore interface {
	SaveShift(ctx context.Context, shift *model.ScheduledShift) error
	DeleteShift(ctx context.Context, id uuid.UUID) error
	FetchAllShifts(ctx context.Context) ([]model.ScheduledShift, error)
}

// ShiftTypeStore persists shift type templates.
type ShiftTypeStore interface {
	SaveShiftType(ctx context.Context, st *model.ShiftType) error
	DeleteShiftType(ctx context.Context, id uuid.UUID) error
	FetchAllShiftTypes(ctx context.Context) ([]model.ShiftType, error)
}

// LocationStore persists locations.
type LocationStore interface {
	SaveLocation(ctx context.Context, loc *model.Location) error
	DeleteLocation(ctx context.Context, id uuid.UUID) error
	FetchAllLocations(ctx context.Context) ([]model.Location, error)
}

// ChangeLogStore persists the audit log. Entries are immutable: there is
// no update, only insert, bulk delete (retention purge) and fetch.
type ChangeLogStore interface {
	SaveChangeLogEntry(ctx context.Context, entry *model.ChangeLogEntry) error
	DeleteChangeLogEntries(ctx context.Context, ids []uuid.UUID) error
	FetchAllChangeLogEntries(ctx context.Context) ([]*model.ChangeLogEntry, error)
}

// Store is the full persistence surface the application wires together.
type Store interface {
	ShiftStore
	ShiftTypeStore
	LocationStore
	ChangeLogStore
}
