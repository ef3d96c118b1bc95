package state

import (
	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/history"
	"github.com/jakechorley/shiftbook/pkg/core/model"
	"github.com/jakechorley/shiftbook/pkg/core/overlap"
)

// State is the single source of truth. Values handed out of the store are
// snapshots: reducers copy-on-write every container they change, so a
// snapshot taken before a dispatch is never mutated by it.
type State struct {
	Schedule   ScheduleState
	Today      TodayState
	ShiftTypes ShiftTypesState
	Locations  LocationsState
	ChangeLog  ChangeLogState
	Settings   SettingsState
}

// New returns the empty initial state.
func New() State {
	return State{
		Schedule: ScheduleState{
			Shifts: map[uuid.UUID]*model.ScheduledShift{},
		},
		Today: TodayState{
			byDate: map[model.Date]map[uuid.UUID]*model.ScheduledShift{},
		},
		ShiftTypes: ShiftTypesState{
			Types: map[uuid.UUID]*model.ShiftType{},
		},
		Locations: LocationsState{
			Locations: map[uuid.UUID]*model.Location{},
		},
		ChangeLog: ChangeLogState{
			Undo: history.NewStack(history.DefaultStackDepth),
			Redo: history.NewStack(history.DefaultStackDepth),
		},
		Settings: SettingsState{
			Retention:    history.Retention{Policy: history.RetainForever},
			CalendarSync: true,
		},
	}
}

// ShiftFilter is pure derived view state: the filtered shift list is
// recomputed from it on every read, never cached.
type ShiftFilter struct {
	From         *model.Date
	To           *model.Date
	LocationName string
	ShiftTypeID  *uuid.UUID
}

// Empty reports whether no filter is active.
func (f ShiftFilter) Empty() bool {
	return f.From == nil && f.To == nil && f.LocationName == "" && f.ShiftTypeID == nil
}

func (f ShiftFilter) matches(s *model.ScheduledShift) bool {
	if f.From != nil && s.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && s.Date.After(*f.To) {
		return false
	}
	if f.LocationName != "" && s.SnapshotLocationName != f.LocationName {
		return false
	}
	if f.ShiftTypeID != nil && s.ShiftTypeID != *f.ShiftTypeID {
		return false
	}
	return true
}

// Conflict is one unresolved overlap group surfaced for user choice.
type Conflict struct {
	Date  model.Date
	Group overlap.Group
}

// BulkAddMode selects how bulk-added dates get their shift type.
type BulkAddMode string

const (
	BulkModeNone         BulkAddMode = ""
	BulkModeSameShift    BulkAddMode = "sameShiftForAll"
	BulkModePerDateShift BulkAddMode = "differentShiftPerDate"
)

// BulkAddStage is the bulk-assignment sub-state machine position.
type BulkAddStage string

const (
	BulkStageInactive          BulkAddStage = ""
	BulkStageModeSelection     BulkAddStage = "modeSelection"
	BulkStageAssignmentDetails BulkAddStage = "assignmentDetails"
)

// BulkAddState tracks the bulk-assignment flow. PendingMode holds a
// requested mode switch until the user confirms discarding their
// partial per-date assignments.
type BulkAddState struct {
	Stage       BulkAddStage
	Mode        BulkAddMode
	PendingMode BulkAddMode
	Dates       map[model.Date]bool
	SameTypeID  uuid.UUID
	PerDate     map[model.Date]uuid.UUID
}

// Active reports whether a bulk flow is in progress.
func (b BulkAddState) Active() bool {
	return b.Stage != BulkStageInactive
}

// ScheduleState holds the raw shift collection, the view filters, the
// surfaced conflicts and the bulk-add machine.
type ScheduleState struct {
	Shifts       map[uuid.UUID]*model.ScheduledShift
	Filter       ShiftFilter
	Conflicts    []Conflict
	BulkAdd      BulkAddState
	ErrorMessage string
}

// Filtered recomputes the filtered, chronologically ordered shift list.
func (s ScheduleState) Filtered() []*model.ScheduledShift {
	out := make([]*model.ScheduledShift, 0, len(s.Shifts))
	for _, shift := range s.Shifts {
		if s.Filter.matches(shift) {
			out = append(out, shift)
		}
	}
	overlap.SortChronological(out)
	return out
}

// ConflictOn returns the surfaced conflict group for a date, if any.
func (s ScheduleState) ConflictOn(date model.Date) (Conflict, bool) {
	for _, c := range s.Conflicts {
		if c.Date == date {
			return c, true
		}
	}
	return Conflict{}, false
}

// TodayState tracks the current date and its shifts. It maintains its own
// date index from shift events rather than reading the schedule slice,
// keeping the reducer composition free of cross-slice reads.
type TodayState struct {
	Date         model.Date
	byDate       map[model.Date]map[uuid.UUID]*model.ScheduledShift
	ErrorMessage string
}

// Shifts returns today's shifts in chronological order, ties broken by ID.
func (t TodayState) Shifts() []*model.ScheduledShift {
	day := t.byDate[t.Date]
	out := make([]*model.ScheduledShift, 0, len(day))
	for _, s := range day {
		out = append(out, s)
	}
	overlap.SortChronological(out)
	return out
}

// ShiftTypesState holds the shift type lookup table.
type ShiftTypesState struct {
	Types        map[uuid.UUID]*model.ShiftType
	ErrorMessage string
}

// Sorted returns shift types ordered by title then ID.
func (s ShiftTypesState) Sorted() []*model.ShiftType {
	out := make([]*model.ShiftType, 0, len(s.Types))
	for _, st := range s.Types {
		out = append(out, st)
	}
	sortByTitleThenID(out)
	return out
}

// LocationsState holds the location lookup table.
type LocationsState struct {
	Locations    map[uuid.UUID]*model.Location
	ErrorMessage string
}

// ChangeLogState holds the append-only audit log and the session-scoped
// undo/redo stacks. Entries are immutable once appended.
type ChangeLogState struct {
	Entries      []*model.ChangeLogEntry
	Undo         history.Stack
	Redo         history.Stack
	ErrorMessage string
}

// SettingsState holds user preferences.
type SettingsState struct {
	Retention    history.Retention
	ActorName    string
	CalendarSync bool
	ErrorMessage string
}
