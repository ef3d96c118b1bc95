package model

import (
	"time"

	"github.com/google/uuid"
)

// ScheduledShift assigns a shift type to one calendar date.
//
// The Snapshot* fields copy the shift type's display data at creation
// time. If the type is later edited or deleted the shift still renders
// and its time range is still computable; a shift whose ShiftTypeID no
// longer resolves is orphaned and shown degraded, never dropped.
type ScheduledShift struct {
	ID              uuid.UUID
	ExternalEventID string
	ShiftTypeID     uuid.UUID
	Date            Date
	Notes           string

	SnapshotSymbol       string
	SnapshotTitle        string
	SnapshotDescription  string
	SnapshotDuration     Duration
	SnapshotLocationName string
}

// NewScheduledShift builds a shift for the given date, snapshotting the
// shift type's current display data.
func NewScheduledShift(st *ShiftType, date Date, notes, locationName string) (*ScheduledShift, error) {
	if st == nil {
		return nil, &ValidationError{Field: "shiftType", Reason: "must be set"}
	}
	if date.IsZero() {
		return nil, &ValidationError{Field: "date", Reason: "must be set"}
	}
	return &ScheduledShift{
		ID:                   uuid.New(),
		ShiftTypeID:          st.ID,
		Date:                 date,
		Notes:                notes,
		SnapshotSymbol:       st.Symbol,
		SnapshotTitle:        st.Title,
		SnapshotDescription:  st.Description,
		SnapshotDuration:     st.Duration,
		SnapshotLocationName: locationName,
	}, nil
}

// ActualStart derives the instant the shift begins.
func (s *ScheduledShift) ActualStart() time.Time {
	return s.SnapshotDuration.Start(s.Date)
}

// ActualEnd derives the half-open end instant of the shift. Overnight
// durations end on the day after the shift's date.
func (s *ScheduledShift) ActualEnd() time.Time {
	return s.SnapshotDuration.End(s.Date)
}

// Orphaned reports whether the shift's type reference no longer resolves
// against the given lookup.
func (s *ScheduledShift) Orphaned(types map[uuid.UUID]*ShiftType) bool {
	_, ok := types[s.ShiftTypeID]
	return !ok
}
