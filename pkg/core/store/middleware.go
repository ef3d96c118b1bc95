package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/shiftbook/pkg/core/clock"
	"github.com/jakechorley/shiftbook/pkg/core/state"
)

// NewLoggingMiddleware traces every dispatched action at debug level.
func NewLoggingMiddleware(logger *zap.Logger) Middleware {
	return func(api API, next Dispatch) Dispatch {
		return func(ctx context.Context, a state.Action) {
			logger.Debug("dispatching action", zap.String("action", fmt.Sprintf("%T", a)))
			next(ctx, a)
		}
	}
}

// NewHistoryMiddleware translates undo/redo requests into concrete
// operations. The stacks live in the change-log slice, the shifts in the
// schedule slice; a reducer may not read across slices, so the
// translation from "undo" to "apply this inverse operation" has to
// happen here, from a state snapshot.
func NewHistoryMiddleware(clk clock.Clock, logger *zap.Logger) Middleware {
	return func(api API, next Dispatch) Dispatch {
		return func(ctx context.Context, a state.Action) {
			switch a.(type) {
			case state.UndoRequested:
				snap := api.State()
				frame, ok := snap.ChangeLog.Undo.Peek()
				if !ok {
					logger.Debug("undo requested with empty stack")
					api.Dispatch(ctx, state.ErrorRaised{Slice: state.SliceChangeLog, Message: "nothing to undo"})
					return
				}
				api.Dispatch(ctx, state.ApplyOperation{
					Op:      frame.Inverse,
					Record:  state.RecordUndo,
					EntryID: uuid.New(),
					Time:    clk.Now(),
					Actor:   snap.Settings.ActorName,
				})
				return

			case state.RedoRequested:
				snap := api.State()
				frame, ok := snap.ChangeLog.Redo.Peek()
				if !ok {
					logger.Debug("redo requested with empty stack")
					api.Dispatch(ctx, state.ErrorRaised{Slice: state.SliceChangeLog, Message: "nothing to redo"})
					return
				}
				api.Dispatch(ctx, state.ApplyOperation{
					Op:      frame.Forward,
					Record:  state.RecordRedo,
					EntryID: uuid.New(),
					Time:    clk.Now(),
					Actor:   snap.Settings.ActorName,
				})
				return
			}

			next(ctx, a)
		}
	}
}

// NewConflictGuardMiddleware enforces referential integrity on deletes.
// Shift types referenced by scheduled shifts and locations referenced by
// shift types must not be deleted; the guard suppresses the request so
// the effects middleware never persists it, and surfaces the rejection.
func NewConflictGuardMiddleware(logger *zap.Logger) Middleware {
	return func(api API, next Dispatch) Dispatch {
		return func(ctx context.Context, a state.Action) {
			switch a := a.(type) {
			case state.DeleteShiftTypeRequested:
				snap := api.State()
				var refs []string
				for _, shift := range snap.Schedule.Shifts {
					if shift.ShiftTypeID == a.ShiftTypeID {
						refs = append(refs, shift.ID.String())
					}
				}
				if len(refs) > 0 {
					logger.Info("shift type delete blocked by live references",
						zap.String("shift_type_id", a.ShiftTypeID.String()),
						zap.Int("references", len(refs)))
					api.Dispatch(ctx, state.DeleteShiftTypeRejected{ShiftTypeID: a.ShiftTypeID, Refs: refs})
					return
				}

			case state.DeleteLocationRequested:
				snap := api.State()
				var refs []string
				for _, st := range snap.ShiftTypes.Types {
					if st.LocationID == a.LocationID {
						refs = append(refs, st.ID.String())
					}
				}
				if len(refs) > 0 {
					logger.Info("location delete blocked by live references",
						zap.String("location_id", a.LocationID.String()),
						zap.Int("references", len(refs)))
					api.Dispatch(ctx, state.DeleteLocationRejected{LocationID: a.LocationID, Refs: refs})
					return
				}
			}

			next(ctx, a)
		}
	}
}
