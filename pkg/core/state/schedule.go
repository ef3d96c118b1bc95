package state

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/history"
	"github.com/jakechorley/shiftbook/pkg/core/model"
	"github.com/jakechorley/shiftbook/pkg/core/overlap"
)

// reduceSchedule is the schedule slice reducer. Request actions pass
// through untouched: only middleware-confirmed events mutate the shift
// collection. Unknown ids set the error banner and leave state unchanged.
func reduceSchedule(s ScheduleState, a Action) ScheduleState {
	switch a := a.(type) {
	case HydrateState:
		shifts := make(map[uuid.UUID]*model.ScheduledShift, len(a.Shifts))
		for i := range a.Shifts {
			shift := a.Shifts[i]
			shifts[shift.ID] = &shift
		}
		s.Shifts = shifts
		s.Conflicts = recomputeAllConflicts(shifts)
		return s

	case ShiftAdded:
		return s.withShiftApplied(history.CreateOp(a.Shift))

	case ShiftDeleted:
		return s.withShiftApplied(history.DeleteOp(a.Shift))

	case ShiftSwitched:
		return s.withShiftApplied(history.SwitchOp(a.Before, a.After))

	case ApplyOperation:
		return s.withShiftApplied(a.Op)

	case UpdateShiftNotes:
		existing, ok := s.Shifts[a.ShiftID]
		if !ok {
			s.ErrorMessage = (&model.NotFoundError{Kind: "shift", ID: a.ShiftID.String()}).Error()
			return s
		}
		updated := *existing
		updated.Notes = a.Notes
		s.Shifts = cloneShifts(s.Shifts)
		s.Shifts[updated.ID] = &updated
		return s

	case ExternalEventLinked:
		existing, ok := s.Shifts[a.ShiftID]
		if !ok {
			return s
		}
		updated := *existing
		updated.ExternalEventID = a.ExternalID
		s.Shifts = cloneShifts(s.Shifts)
		s.Shifts[updated.ID] = &updated
		return s

	case SetDateFilter:
		s.Filter.From = a.From
		s.Filter.To = a.To
		return s

	case SetLocationFilter:
		s.Filter.LocationName = a.LocationName
		return s

	case SetTypeFilter:
		s.Filter.ShiftTypeID = a.ShiftTypeID
		return s

	case ClearFilters:
		s.Filter = ShiftFilter{}
		return s

	case StartBulkAdd:
		s.BulkAdd = BulkAddState{
			Stage:   BulkStageModeSelection,
			Dates:   map[model.Date]bool{},
			PerDate: map[model.Date]uuid.UUID{},
		}
		return s

	case SelectBulkMode:
		if s.BulkAdd.Stage != BulkStageModeSelection {
			return s
		}
		s.BulkAdd.Mode = a.Mode
		s.BulkAdd.Stage = BulkStageAssignmentDetails
		return s

	case RequestBulkModeSwitch:
		if !s.BulkAdd.Active() || a.Mode == s.BulkAdd.Mode {
			return s
		}
		// Switching away from per-date mode throws away partial
		// assignments, so it needs explicit confirmation first.
		if s.BulkAdd.Mode == BulkModePerDateShift && len(s.BulkAdd.PerDate) > 0 {
			s.BulkAdd.PendingMode = a.Mode
			return s
		}
		s.BulkAdd.Mode = a.Mode
		return s

	case ConfirmBulkModeSwitch:
		if s.BulkAdd.PendingMode == BulkModeNone {
			return s
		}
		s.BulkAdd.Mode = s.BulkAdd.PendingMode
		s.BulkAdd.PendingMode = BulkModeNone
		s.BulkAdd.PerDate = map[model.Date]uuid.UUID{}
		return s

	case CancelBulkModeSwitch:
		s.BulkAdd.PendingMode = BulkModeNone
		return s

	case ToggleBulkDate:
		if !s.BulkAdd.Active() {
			return s
		}
		dates := cloneDateSet(s.BulkAdd.Dates)
		if dates[a.Date] {
			delete(dates, a.Date)
			if _, assigned := s.BulkAdd.PerDate[a.Date]; assigned {
				perDate := clonePerDate(s.BulkAdd.PerDate)
				delete(perDate, a.Date)
				s.BulkAdd.PerDate = perDate
			}
		} else {
			dates[a.Date] = true
		}
		s.BulkAdd.Dates = dates
		return s

	case SetBulkShiftType:
		if !s.BulkAdd.Active() {
			return s
		}
		s.BulkAdd.SameTypeID = a.ShiftTypeID
		return s

	case AssignBulkDate:
		if !s.BulkAdd.Active() || s.BulkAdd.Mode != BulkModePerDateShift {
			return s
		}
		if !s.BulkAdd.Dates[a.Date] {
			s.ErrorMessage = fmt.Sprintf("date %s is not part of the bulk selection", a.Date)
			return s
		}
		perDate := clonePerDate(s.BulkAdd.PerDate)
		perDate[a.Date] = a.ShiftTypeID
		s.BulkAdd.PerDate = perDate
		return s

	case CancelBulkAdd:
		// Idempotent: cancelling an inactive flow is a no-op.
		if !s.BulkAdd.Active() {
			return s
		}
		s.BulkAdd = BulkAddState{}
		return s

	case DismissOverlap:
		// Idempotent: dismissing an absent conflict is a no-op.
		if _, ok := s.ConflictOn(a.Date); !ok {
			return s
		}
		kept := make([]Conflict, 0, len(s.Conflicts))
		for _, c := range s.Conflicts {
			if c.Date != a.Date {
				kept = append(kept, c)
			}
		}
		s.Conflicts = kept
		return s

	case ErrorRaised:
		if a.Slice == SliceSchedule {
			s.ErrorMessage = a.Message
		}
		return s

	case ErrorDismissed:
		if a.Slice == SliceSchedule {
			s.ErrorMessage = ""
		}
		return s

	default:
		return s
	}
}

// withShiftApplied applies one schedule operation and refreshes the
// conflicts around the affected dates.
func (s ScheduleState) withShiftApplied(op history.Operation) ScheduleState {
	shifts := cloneShifts(s.Shifts)

	switch op.Kind {
	case history.OpCreate:
		shift := op.After
		shifts[shift.ID] = &shift
	case history.OpDelete:
		if _, ok := shifts[op.Before.ID]; !ok {
			s.ErrorMessage = (&model.NotFoundError{Kind: "shift", ID: op.Before.ID.String()}).Error()
			return s
		}
		delete(shifts, op.Before.ID)
	case history.OpSwitch:
		if _, ok := shifts[op.Before.ID]; !ok {
			s.ErrorMessage = (&model.NotFoundError{Kind: "shift", ID: op.Before.ID.String()}).Error()
			return s
		}
		shift := op.After
		shifts[shift.ID] = &shift
	}

	s.Shifts = shifts
	s.Conflicts = mergeConflicts(s.Conflicts, shifts, affectedDates(op))
	return s
}

// affectedDates lists the dates whose conflict groups an operation can
// change: the shift's own date and the next day, because an overnight
// shift spills into it.
func affectedDates(op history.Operation) []model.Date {
	d := op.Date()
	return []model.Date{d, d.AddDays(1)}
}

// mergeConflicts re-derives the conflict groups for the given dates and
// splices them into the existing list, preserving untouched dates.
func mergeConflicts(existing []Conflict, shifts map[uuid.UUID]*model.ScheduledShift, dates []model.Date) []Conflict {
	touched := make(map[model.Date]bool, len(dates))
	for _, d := range dates {
		touched[d] = true
	}

	var out []Conflict
	for _, c := range existing {
		if !touched[c.Date] {
			out = append(out, c)
		}
	}
	for _, d := range dates {
		for _, g := range overlap.GroupsOn(shifts, d) {
			if !containsGroup(out, d, g) {
				out = append(out, Conflict{Date: d, Group: g})
			}
		}
	}
	return out
}

// containsGroup suppresses the same group being reported for both the
// overnight shift's date and the following day.
func containsGroup(conflicts []Conflict, date model.Date, g overlap.Group) bool {
	for _, c := range conflicts {
		if len(c.Group.Shifts) != len(g.Shifts) {
			continue
		}
		same := true
		for i := range g.Shifts {
			if c.Group.Shifts[i].ID != g.Shifts[i].ID {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func recomputeAllConflicts(shifts map[uuid.UUID]*model.ScheduledShift) []Conflict {
	seen := make(map[model.Date]bool)
	var out []Conflict
	for _, s := range shifts {
		for _, d := range []model.Date{s.Date, s.Date.AddDays(1)} {
			if seen[d] {
				continue
			}
			seen[d] = true
			for _, g := range overlap.GroupsOn(shifts, d) {
				if !containsGroup(out, d, g) {
					out = append(out, Conflict{Date: d, Group: g})
				}
			}
		}
	}
	return out
}

func cloneShifts(m map[uuid.UUID]*model.ScheduledShift) map[uuid.UUID]*model.ScheduledShift {
	out := make(map[uuid.UUID]*model.ScheduledShift, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneDateSet(m map[model.Date]bool) map[model.Date]bool {
	out := make(map[model.Date]bool, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clonePerDate(m map[model.Date]uuid.UUID) map[model.Date]uuid.UUID {
	out := make(map[model.Date]uuid.UUID, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
