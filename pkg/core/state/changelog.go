package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/history"
	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// reduceChangeLog appends audit entries and maintains the undo/redo
// stacks. Every forward mutation pushes its inverse and clears the redo
// stack; undo and redo move one frame between the stacks and record the
// reversal (not the original change) as its own entry.
func reduceChangeLog(s ChangeLogState, a Action) ChangeLogState {
	switch a := a.(type) {
	case HydrateState:
		s.Entries = append([]*model.ChangeLogEntry(nil), a.Entries...)
		s.Undo = s.Undo.Clear()
		s.Redo = s.Redo.Clear()
		return s

	case ShiftAdded:
		return s.withForward(history.CreateOp(a.Shift), a.EntryID, a.Time, a.Actor, "")

	case ShiftDeleted:
		return s.withForward(history.DeleteOp(a.Shift), a.EntryID, a.Time, a.Actor, a.Reason)

	case ShiftSwitched:
		return s.withForward(history.SwitchOp(a.Before, a.After), a.EntryID, a.Time, a.Actor, "")

	case ApplyOperation:
		switch a.Record {
		case RecordUndo:
			frame, undo, ok := s.Undo.Pop()
			if !ok {
				return s
			}
			before, after := a.Op.Snapshots()
			entry := model.NewChangeLogEntry(a.EntryID, a.Time, model.ChangeUndo, before, after, "", a.Actor, a.Op.Date())
			s.Entries = appendEntry(s.Entries, entry)
			s.Undo = undo
			s.Redo = s.Redo.Push(history.Frame{Forward: frame.Forward, Inverse: frame.Inverse, EntryID: entry.ID})
			return s

		case RecordRedo:
			frame, redo, ok := s.Redo.Pop()
			if !ok {
				return s
			}
			before, after := a.Op.Snapshots()
			entry := model.NewChangeLogEntry(a.EntryID, a.Time, model.ChangeRedo, before, after, "", a.Actor, a.Op.Date())
			s.Entries = appendEntry(s.Entries, entry)
			s.Redo = redo
			s.Undo = s.Undo.Push(history.Frame{Forward: frame.Forward, Inverse: frame.Inverse, EntryID: entry.ID})
			return s
		}
		return s

	case ChangeLogPurged:
		exempt := s.Undo.EntryIDs()
		for id := range s.Redo.EntryIDs() {
			exempt[id] = true
		}
		s.Entries = history.Purge(s.Entries, a.Cutoff, exempt)
		return s

	case ErrorRaised:
		if a.Slice == SliceChangeLog {
			s.ErrorMessage = a.Message
		}
		return s

	case ErrorDismissed:
		if a.Slice == SliceChangeLog {
			s.ErrorMessage = ""
		}
		return s

	default:
		return s
	}
}

// withForward records a forward mutation: append the entry, push the
// inverse frame, and invalidate any previously redoable history.
func (s ChangeLogState) withForward(op history.Operation, entryID uuid.UUID, at time.Time, actor, reason string) ChangeLogState {
	before, after := op.Snapshots()
	entry := model.NewChangeLogEntry(entryID, at, op.ChangeKind(), before, after, reason, actor, op.Date())
	s.Entries = appendEntry(s.Entries, entry)
	s.Undo = s.Undo.Push(history.Frame{Forward: op, Inverse: op.Invert(), EntryID: entry.ID})
	s.Redo = s.Redo.Clear()
	return s
}

func appendEntry(entries []*model.ChangeLogEntry, e *model.ChangeLogEntry) []*model.ChangeLogEntry {
	out := make([]*model.ChangeLogEntry, len(entries), len(entries)+1)
	copy(out, entries)
	return append(out, e)
}
