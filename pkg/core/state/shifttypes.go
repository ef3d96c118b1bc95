package state

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// reduceShiftTypes maintains the shift type lookup table. Deletion
// arrives pre-checked: the conflict guard middleware converts deletions
// with live references into DeleteShiftTypeRejected.
func reduceShiftTypes(s ShiftTypesState, a Action) ShiftTypesState {
	switch a := a.(type) {
	case HydrateState:
		types := make(map[uuid.UUID]*model.ShiftType, len(a.ShiftTypes))
		for i := range a.ShiftTypes {
			st := a.ShiftTypes[i]
			types[st.ID] = &st
		}
		s.Types = types
		return s

	case ShiftTypeCreated:
		st := a.ShiftType
		s.Types = cloneTypes(s.Types)
		s.Types[st.ID] = &st
		return s

	case ShiftTypeUpdated:
		if _, ok := s.Types[a.ShiftType.ID]; !ok {
			s.ErrorMessage = (&model.NotFoundError{Kind: "shift type", ID: a.ShiftType.ID.String()}).Error()
			return s
		}
		st := a.ShiftType
		s.Types = cloneTypes(s.Types)
		s.Types[st.ID] = &st
		return s

	case ShiftTypeDeleted:
		if _, ok := s.Types[a.ShiftTypeID]; !ok {
			s.ErrorMessage = (&model.NotFoundError{Kind: "shift type", ID: a.ShiftTypeID.String()}).Error()
			return s
		}
		s.Types = cloneTypes(s.Types)
		delete(s.Types, a.ShiftTypeID)
		return s

	case DeleteShiftTypeRejected:
		s.ErrorMessage = (&model.ConflictError{
			Reason: fmt.Sprintf("shift type %s is still scheduled", a.ShiftTypeID),
			Refs:   a.Refs,
		}).Error()
		return s

	case ErrorRaised:
		if a.Slice == SliceShiftTypes {
			s.ErrorMessage = a.Message
		}
		return s

	case ErrorDismissed:
		if a.Slice == SliceShiftTypes {
			s.ErrorMessage = ""
		}
		return s

	default:
		return s
	}
}

func cloneTypes(m map[uuid.UUID]*model.ShiftType) map[uuid.UUID]*model.ShiftType {
	out := make(map[uuid.UUID]*model.ShiftType, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortByTitleThenID(types []*model.ShiftType) {
	sort.Slice(types, func(i, j int) bool {
		if types[i].Title != types[j].Title {
			return types[i].Title < types[j].Title
		}
		return types[i].ID.String() < types[j].ID.String()
	})
}
