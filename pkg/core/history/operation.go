// Package history holds the building blocks of the undo/redo engine: the
// invertible operation type, bounded stacks of operation frames, and the
// change-log retention policy. The state reducers own when these are
// applied; this package only defines the mechanics.
package history

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// OpKind discriminates the operation union.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpDelete OpKind = "delete"
	OpSwitch OpKind = "switch"
)

// Operation is one reversible mutation of the schedule. Before and After
// carry full shift values (not references) so every operation can be
// inverted without consulting any other state: a delete remembers enough
// to recreate, a switch remembers both sides.
type Operation struct {
	Kind   OpKind
	Before model.ScheduledShift
	After  model.ScheduledShift
}

// CreateOp builds the operation recording a shift creation.
func CreateOp(shift model.ScheduledShift) Operation {
	return Operation{Kind: OpCreate, After: shift}
}

// DeleteOp builds the operation recording a shift deletion.
func DeleteOp(shift model.ScheduledShift) Operation {
	return Operation{Kind: OpDelete, Before: shift}
}

// SwitchOp builds the operation recording a shift's type switch.
func SwitchOp(before, after model.ScheduledShift) Operation {
	return Operation{Kind: OpSwitch, Before: before, After: after}
}

// Invert returns the operation that undoes op.
func (op Operation) Invert() Operation {
	switch op.Kind {
	case OpCreate:
		return Operation{Kind: OpDelete, Before: op.After}
	case OpDelete:
		return Operation{Kind: OpCreate, After: op.Before}
	case OpSwitch:
		return Operation{Kind: OpSwitch, Before: op.After, After: op.Before}
	default:
		panic(fmt.Sprintf("unknown operation kind %q", op.Kind))
	}
}

// ShiftID returns the identity of the shift the operation touches.
func (op Operation) ShiftID() uuid.UUID {
	if op.Kind == OpCreate {
		return op.After.ID
	}
	return op.Before.ID
}

// ChangeKind maps the operation to the change-log kind it produces when
// applied as a forward mutation.
func (op Operation) ChangeKind() model.ChangeKind {
	switch op.Kind {
	case OpCreate:
		return model.ChangeCreated
	case OpDelete:
		return model.ChangeDeleted
	case OpSwitch:
		return model.ChangeSwitched
	default:
		panic(fmt.Sprintf("unknown operation kind %q", op.Kind))
	}
}

// Snapshots returns the before/after snapshots for a change-log entry.
func (op Operation) Snapshots() (before, after *model.ShiftSnapshot) {
	switch op.Kind {
	case OpCreate:
		a := op.After
		return nil, model.SnapshotOf(&a)
	case OpDelete:
		b := op.Before
		return model.SnapshotOf(&b), nil
	case OpSwitch:
		b, a := op.Before, op.After
		return model.SnapshotOf(&b), model.SnapshotOf(&a)
	default:
		panic(fmt.Sprintf("unknown operation kind %q", op.Kind))
	}
}

// Date returns the scheduled date the operation refers to.
func (op Operation) Date() model.Date {
	if op.Kind == OpCreate {
		return op.After.Date
	}
	return op.Before.Date
}
