// Package state defines the application State, the Action vocabulary, and
// the pure slice reducers that map (State, Action) to the next State.
//
// Actions come in two flavours: requests express user intent and are
// consumed by middleware (which performs the external I/O), events are
// confirmed facts dispatched by middleware and are the only actions that
// materialize schedule mutations. Reducers never perform I/O and never
// read the clock; any timestamp or actor a reducer needs travels inside
// the action.
package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/history"
	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// Action is the closed marker interface all actions implement.
type Action interface {
	isAction()
}

// Slice names a state slice, used to address error banners.
type Slice string

const (
	SliceSchedule   Slice = "schedule"
	SliceToday      Slice = "today"
	SliceShiftTypes Slice = "shiftTypes"
	SliceLocations  Slice = "locations"
	SliceChangeLog  Slice = "changeLog"
	SliceSettings   Slice = "settings"
)

// RecordKind tells the change-log reducer which stack an applied
// operation came from.
type RecordKind string

const (
	RecordUndo RecordKind = "undo"
	RecordRedo RecordKind = "redo"
)

// HydrateState seeds every slice from persistence at startup. Undo/redo
// stacks start empty: history frames are session-scoped.
type HydrateState struct {
	Shifts     []model.ScheduledShift
	ShiftTypes []model.ShiftType
	Locations  []model.Location
	Entries    []*model.ChangeLogEntry
	Today      model.Date
}

// AddShiftRequested asks for a new shift on a date. Consumed by the
// effects middleware: persist and calendar-create first, then confirm
// with ShiftAdded.
type AddShiftRequested struct {
	ShiftTypeID uuid.UUID
	Date        model.Date
	Notes       string
}

// ShiftAdded confirms a persisted shift creation. EntryID is the
// identity of the audit entry recording it, minted by the dispatcher so
// the reducer stays deterministic.
type ShiftAdded struct {
	Shift   model.ScheduledShift
	EntryID uuid.UUID
	Time    time.Time
	Actor   string
}

// DeleteShiftRequested asks for a shift deletion.
type DeleteShiftRequested struct {
	ShiftID uuid.UUID
	Reason  string
}

// ShiftDeleted confirms a persisted shift deletion.
type ShiftDeleted struct {
	Shift   model.ScheduledShift
	EntryID uuid.UUID
	Time    time.Time
	Actor   string
	Reason  string
}

// SwitchShiftRequested asks to move a shift to a different shift type.
type SwitchShiftRequested struct {
	ShiftID     uuid.UUID
	NewTypeID   uuid.UUID
}

// ShiftSwitched confirms a persisted shift type switch.
type ShiftSwitched struct {
	Before  model.ScheduledShift
	After   model.ScheduledShift
	EntryID uuid.UUID
	Time    time.Time
	Actor   string
}

// UpdateShiftNotes edits a shift's free-text notes. Purely local, applied
// optimistically; the effects middleware persists it in the background.
type UpdateShiftNotes struct {
	ShiftID uuid.UUID
	Notes   string
}

// SetDateFilter narrows the schedule view to a date range. Nil bounds are
// open ends.
type SetDateFilter struct {
	From *model.Date
	To   *model.Date
}

// SetLocationFilter narrows the schedule view to one location name.
type SetLocationFilter struct {
	LocationName string
}

// SetTypeFilter narrows the schedule view to one shift type.
type SetTypeFilter struct {
	ShiftTypeID *uuid.UUID
}

// ClearFilters resets every schedule filter.
type ClearFilters struct{}

// StartBulkAdd enters the bulk-assignment flow at mode selection.
type StartBulkAdd struct{}

// SelectBulkMode picks the assignment mode.
type SelectBulkMode struct {
	Mode BulkAddMode
}

// RequestBulkModeSwitch asks to change mode mid-flow. When per-date
// assignments exist the switch is held pending until confirmed.
type RequestBulkModeSwitch struct {
	Mode BulkAddMode
}

// ConfirmBulkModeSwitch applies a pending mode switch, clearing the
// per-date assignments.
type ConfirmBulkModeSwitch struct{}

// CancelBulkModeSwitch abandons a pending mode switch.
type CancelBulkModeSwitch struct{}

// ToggleBulkDate adds or removes a date from the bulk selection.
type ToggleBulkDate struct {
	Date model.Date
}

// SetBulkShiftType picks the shift type used in same-shift-for-all mode.
type SetBulkShiftType struct {
	ShiftTypeID uuid.UUID
}

// AssignBulkDate maps one selected date to a shift type in per-date mode.
type AssignBulkDate struct {
	Date        model.Date
	ShiftTypeID uuid.UUID
}

// CommitBulkAddRequested materializes the bulk selection. Consumed by the
// effects middleware, which creates each shift pessimistically.
type CommitBulkAddRequested struct{}

// CancelBulkAdd dismisses the bulk flow. Idempotent: cancelling an
// inactive flow is a no-op.
type CancelBulkAdd struct{}

// ResolveOverlapRequested keeps one shift of a conflict group and deletes
// the rest. Consumed by the effects middleware.
type ResolveOverlapRequested struct {
	Date   model.Date
	KeepID uuid.UUID
}

// DismissOverlap hides a surfaced conflict group without resolving it.
// Idempotent.
type DismissOverlap struct {
	Date model.Date
}

// UndoRequested reverses the latest reversible operation. Translated by
// the history middleware into an ApplyOperation.
type UndoRequested struct{}

// RedoRequested re-applies the latest undone operation.
type RedoRequested struct{}

// ApplyOperation applies a forward or inverse operation popped from a
// history stack. Dispatched only by the history middleware, which also
// mints the EntryID for the recording audit entry.
type ApplyOperation struct {
	Op      history.Operation
	Record  RecordKind
	EntryID uuid.UUID
	Time    time.Time
	Actor   string
}

// ExternalEventLinked records the calendar event id minted when an
// undo/redo mirror recreated a shift's event. Not an audit event.
type ExternalEventLinked struct {
	ShiftID    uuid.UUID
	ExternalID string
}

// PurgeChangeLogRequested asks for a retention purge. The middleware
// computes the cutoff from settings and the injected clock.
type PurgeChangeLogRequested struct{}

// ChangeLogPurged removes entries older than the cutoff, exempting those
// referenced by live undo/redo frames.
type ChangeLogPurged struct {
	Cutoff time.Time
}

// CreateShiftTypeRequested asks to persist a new shift type.
type CreateShiftTypeRequested struct {
	ShiftType model.ShiftType
}

// ShiftTypeCreated confirms a persisted shift type.
type ShiftTypeCreated struct {
	ShiftType model.ShiftType
}

// UpdateShiftTypeRequested asks to persist an edited shift type.
type UpdateShiftTypeRequested struct {
	ShiftType model.ShiftType
}

// ShiftTypeUpdated confirms a persisted shift type edit.
type ShiftTypeUpdated struct {
	ShiftType model.ShiftType
}

// DeleteShiftTypeRequested asks to delete a shift type. The conflict
// guard middleware rejects it while scheduled shifts reference it.
type DeleteShiftTypeRequested struct {
	ShiftTypeID uuid.UUID
}

// ShiftTypeDeleted confirms a shift type deletion.
type ShiftTypeDeleted struct {
	ShiftTypeID uuid.UUID
}

// DeleteShiftTypeRejected reports a deletion blocked by live references.
type DeleteShiftTypeRejected struct {
	ShiftTypeID uuid.UUID
	Refs        []string
}

// CreateLocationRequested asks to persist a new location.
type CreateLocationRequested struct {
	Location model.Location
}

// LocationCreated confirms a persisted location.
type LocationCreated struct {
	Location model.Location
}

// UpdateLocationRequested asks to persist an edited location.
type UpdateLocationRequested struct {
	Location model.Location
}

// LocationUpdated confirms a persisted location edit.
type LocationUpdated struct {
	Location model.Location
}

// DeleteLocationRequested asks to delete a location. Rejected while
// shift types reference it.
type DeleteLocationRequested struct {
	LocationID uuid.UUID
}

// LocationDeleted confirms a location deletion.
type LocationDeleted struct {
	LocationID uuid.UUID
}

// DeleteLocationRejected reports a deletion blocked by live references.
type DeleteLocationRejected struct {
	LocationID uuid.UUID
	Refs       []string
}

// DayChanged moves the today slice to a new current date.
type DayChanged struct {
	Date model.Date
}

// SetRetention changes the change-log retention policy.
type SetRetention struct {
	Retention history.Retention
}

// SetActorName changes the display name recorded in change-log entries.
type SetActorName struct {
	Name string
}

// SetCalendarSync toggles mirroring shifts to the external calendar.
type SetCalendarSync struct {
	Enabled bool
}

// ErrorRaised surfaces an error on a slice's banner. Middleware converts
// effect failures into this action instead of mutating state directly.
type ErrorRaised struct {
	Slice   Slice
	Message string
}

// ErrorDismissed clears a slice's error banner.
type ErrorDismissed struct {
	Slice Slice
}

func (HydrateState) isAction()            {}
func (AddShiftRequested) isAction()       {}
func (ShiftAdded) isAction()              {}
func (DeleteShiftRequested) isAction()    {}
func (ShiftDeleted) isAction()            {}
func (SwitchShiftRequested) isAction()    {}
func (ShiftSwitched) isAction()           {}
func (UpdateShiftNotes) isAction()        {}
func (SetDateFilter) isAction()           {}
func (SetLocationFilter) isAction()       {}
func (SetTypeFilter) isAction()           {}
func (ClearFilters) isAction()            {}
func (StartBulkAdd) isAction()            {}
func (SelectBulkMode) isAction()          {}
func (RequestBulkModeSwitch) isAction()   {}
func (ConfirmBulkModeSwitch) isAction()   {}
func (CancelBulkModeSwitch) isAction()    {}
func (ToggleBulkDate) isAction()          {}
func (SetBulkShiftType) isAction()        {}
func (AssignBulkDate) isAction()          {}
func (CommitBulkAddRequested) isAction()  {}
func (CancelBulkAdd) isAction()           {}
func (ResolveOverlapRequested) isAction() {}
func (DismissOverlap) isAction()          {}
func (UndoRequested) isAction()           {}
func (RedoRequested) isAction()           {}
func (ApplyOperation) isAction()          {}
func (ExternalEventLinked) isAction()     {}
func (PurgeChangeLogRequested) isAction() {}
func (ChangeLogPurged) isAction()         {}
func (CreateShiftTypeRequested) isAction() {}
func (ShiftTypeCreated) isAction()         {}
func (UpdateShiftTypeRequested) isAction() {}
func (ShiftTypeUpdated) isAction()         {}
func (DeleteShiftTypeRequested) isAction() {}
func (ShiftTypeDeleted) isAction()         {}
func (DeleteShiftTypeRejected) isAction()  {}
func (CreateLocationRequested) isAction()  {}
func (LocationCreated) isAction()          {}
func (UpdateLocationRequested) isAction()  {}
func (LocationUpdated) isAction()          {}
func (DeleteLocationRequested) isAction()  {}
func (LocationDeleted) isAction()          {}
func (DeleteLocationRejected) isAction()   {}
func (DayChanged) isAction()               {}
func (SetRetention) isAction()             {}
func (SetActorName) isAction()             {}
func (SetCalendarSync) isAction()          {}
func (ErrorRaised) isAction()              {}
func (ErrorDismissed) isAction()           {}
