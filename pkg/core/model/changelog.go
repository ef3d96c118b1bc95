package model

import (
	"time"

	"github.com/google/uuid"
)

// ChangeKind classifies a change-log entry.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeSwitched ChangeKind = "switched"
	ChangeUndo     ChangeKind = "undo"
	ChangeRedo     ChangeKind = "redo"
)

// ShiftSnapshot is an immutable by-value copy of a shift's display data
// taken when a change-log entry is written. Later edits to the live shift
// type must not alter history, so nothing here is a reference.
type ShiftSnapshot struct {
	Symbol       string
	Title        string
	Description  string
	Duration     Duration
	LocationName string
}

// SnapshotOf copies the display data of a shift.
func SnapshotOf(s *ScheduledShift) *ShiftSnapshot {
	if s == nil {
		return nil
	}
	return &ShiftSnapshot{
		Symbol:       s.SnapshotSymbol,
		Title:        s.SnapshotTitle,
		Description:  s.SnapshotDescription,
		Duration:     s.SnapshotDuration,
		LocationName: s.SnapshotLocationName,
	}
}

// ChangeLogEntry is one record of the append-only audit trail.
type ChangeLogEntry struct {
	ID        uuid.UUID
	Timestamp time.Time
	Kind      ChangeKind
	Before    *ShiftSnapshot
	After     *ShiftSnapshot
	Reason    string
	Actor     string
	ShiftDate Date
}

// NewChangeLogEntry builds an entry. The id is minted by whoever
// dispatches the recording action; reducers stay deterministic.
func NewChangeLogEntry(id uuid.UUID, now time.Time, kind ChangeKind, before, after *ShiftSnapshot, reason, actor string, shiftDate Date) *ChangeLogEntry {
	return &ChangeLogEntry{
		ID:        id,
		Timestamp: now,
		Kind:      kind,
		Before:    before,
		After:     after,
		Reason:    reason,
		Actor:     actor,
		ShiftDate: shiftDate,
	}
}
