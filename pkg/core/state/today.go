package state

import (
	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/history"
	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// reduceToday maintains the current date and a private date index of
// shifts, fed by the same events the schedule slice consumes.
func reduceToday(t TodayState, a Action) TodayState {
	switch a := a.(type) {
	case HydrateState:
		byDate := map[model.Date]map[uuid.UUID]*model.ScheduledShift{}
		for i := range a.Shifts {
			shift := a.Shifts[i]
			day := byDate[shift.Date]
			if day == nil {
				day = map[uuid.UUID]*model.ScheduledShift{}
				byDate[shift.Date] = day
			}
			day[shift.ID] = &shift
		}
		t.byDate = byDate
		if !a.Today.IsZero() {
			t.Date = a.Today
		}
		return t

	case DayChanged:
		t.Date = a.Date
		return t

	case ShiftAdded:
		return t.withIndexApplied(history.CreateOp(a.Shift))

	case ShiftDeleted:
		return t.withIndexApplied(history.DeleteOp(a.Shift))

	case ShiftSwitched:
		return t.withIndexApplied(history.SwitchOp(a.Before, a.After))

	case ApplyOperation:
		return t.withIndexApplied(a.Op)

	case UpdateShiftNotes:
		for date, day := range t.byDate {
			if existing, ok := day[a.ShiftID]; ok {
				updated := *existing
				updated.Notes = a.Notes
				t.byDate = cloneByDate(t.byDate, date)
				t.byDate[date][updated.ID] = &updated
				return t
			}
		}
		return t

	case ErrorRaised:
		if a.Slice == SliceToday {
			t.ErrorMessage = a.Message
		}
		return t

	case ErrorDismissed:
		if a.Slice == SliceToday {
			t.ErrorMessage = ""
		}
		return t

	default:
		return t
	}
}

func (t TodayState) withIndexApplied(op history.Operation) TodayState {
	switch op.Kind {
	case history.OpCreate:
		shift := op.After
		t.byDate = cloneByDate(t.byDate, shift.Date)
		t.byDate[shift.Date][shift.ID] = &shift
	case history.OpDelete:
		t.byDate = cloneByDate(t.byDate, op.Before.Date)
		delete(t.byDate[op.Before.Date], op.Before.ID)
	case history.OpSwitch:
		shift := op.After
		t.byDate = cloneByDate(t.byDate, shift.Date)
		t.byDate[shift.Date][shift.ID] = &shift
	}
	return t
}

// cloneByDate copies the outer index and the inner map for the date about
// to change; other dates keep sharing their inner maps.
func cloneByDate(m map[model.Date]map[uuid.UUID]*model.ScheduledShift, date model.Date) map[model.Date]map[uuid.UUID]*model.ScheduledShift {
	out := make(map[model.Date]map[uuid.UUID]*model.ScheduledShift, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	day := make(map[uuid.UUID]*model.ScheduledShift, len(m[date])+1)
	for k, v := range m[date] {
		day[k] = v
	}
	out[date] = day
	return out
}
