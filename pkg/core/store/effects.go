package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/shiftbook/pkg/core/clock"
	"github.com/jakechorley/shiftbook/pkg/core/history"
	"github.com/jakechorley/shiftbook/pkg/core/model"
	"github.com/jakechorley/shiftbook/pkg/core/state"
	"github.com/jakechorley/shiftbook/pkg/db"
)

// effects performs the external I/O behind request actions. Operations
// with external side effects are pessimistic: persist and mirror to the
// calendar first, confirm with an event action on success, surface an
// error action on failure — the optimistic state update never stands
// silently wrong. Undo/redo mirrors run optimistically with the failure
// surfaced, since the in-memory reversal must not be blocked on I/O.
type effects struct {
	database db.Store
	cal      CalendarService
	clk      clock.Clock
	logger   *zap.Logger
}

// NewEffectsMiddleware wires persistence and the external calendar into
// the dispatch pipeline. cal may be nil when no calendar is configured.
func NewEffectsMiddleware(database db.Store, cal CalendarService, clk clock.Clock, logger *zap.Logger) Middleware {
	m := &effects{database: database, cal: cal, clk: clk, logger: logger}

	return func(api API, next Dispatch) Dispatch {
		return func(ctx context.Context, a state.Action) {
			if !m.handle(ctx, api, a) {
				return
			}

			logLen := len(api.State().ChangeLog.Entries)
			next(ctx, a)

			// Hydration loads entries that are already persisted.
			if _, hydrating := a.(state.HydrateState); hydrating {
				return
			}

			// The reduce pass may have appended audit entries; persist
			// them in the background. Entries are immutable, so the
			// snapshot slice is safe to hand to a goroutine.
			entries := api.State().ChangeLog.Entries
			if len(entries) > logLen {
				added := entries[logLen:]
				api.Go(func() {
					for _, e := range added {
						if err := m.database.SaveChangeLogEntry(ctx, e); err != nil {
							m.logger.Error("failed to persist change log entry",
								zap.String("entry_id", e.ID.String()), zap.Error(err))
						}
					}
				})
			}
		}
	}
}

// handle runs the pre-reduce side of the pipeline. It returns false when
// the action is suppressed (malformed requests that must not reach the
// reducers or the audit log).
func (m *effects) handle(ctx context.Context, api API, a state.Action) bool {
	switch a := a.(type) {
	case state.AddShiftRequested:
		snap := api.State()
		shift, err := buildShift(snap, a.ShiftTypeID, a.Date, a.Notes)
		if err != nil {
			m.raise(ctx, api, state.SliceSchedule, "add shift", err)
			return false
		}
		actor, sync := snap.Settings.ActorName, snap.Settings.CalendarSync
		api.Go(func() { m.createShift(ctx, api, shift, actor, sync) })
		return true

	case state.DeleteShiftRequested:
		snap := api.State()
		existing, ok := snap.Schedule.Shifts[a.ShiftID]
		if !ok {
			m.raise(ctx, api, state.SliceSchedule, "delete shift",
				&model.NotFoundError{Kind: "shift", ID: a.ShiftID.String()})
			return false
		}
		shift := *existing
		actor, sync := snap.Settings.ActorName, snap.Settings.CalendarSync
		reason := a.Reason
		api.Go(func() { m.deleteShift(ctx, api, shift, actor, sync, reason) })
		return true

	case state.SwitchShiftRequested:
		snap := api.State()
		existing, ok := snap.Schedule.Shifts[a.ShiftID]
		if !ok {
			m.raise(ctx, api, state.SliceSchedule, "switch shift",
				&model.NotFoundError{Kind: "shift", ID: a.ShiftID.String()})
			return false
		}
		st, ok := snap.ShiftTypes.Types[a.NewTypeID]
		if !ok {
			m.raise(ctx, api, state.SliceSchedule, "switch shift",
				&model.NotFoundError{Kind: "shift type", ID: a.NewTypeID.String()})
			return false
		}
		before := *existing
		after := before
		after.ShiftTypeID = st.ID
		after.SnapshotSymbol = st.Symbol
		after.SnapshotTitle = st.Title
		after.SnapshotDescription = st.Description
		after.SnapshotDuration = st.Duration
		after.SnapshotLocationName = locationName(snap, st.LocationID)
		actor, sync := snap.Settings.ActorName, snap.Settings.CalendarSync
		api.Go(func() { m.switchShift(ctx, api, before, after, actor, sync) })
		return true

	case state.UpdateShiftNotes:
		// Purely local edit: applied optimistically, persisted behind.
		snap := api.State()
		if existing, ok := snap.Schedule.Shifts[a.ShiftID]; ok {
			updated := *existing
			updated.Notes = a.Notes
			api.Go(func() {
				if err := m.database.SaveShift(ctx, &updated); err != nil {
					m.raise(ctx, api, state.SliceSchedule, "save notes", err)
				}
			})
		}
		return true

	case state.CommitBulkAddRequested:
		return m.commitBulkAdd(ctx, api)

	case state.ResolveOverlapRequested:
		return m.resolveOverlap(ctx, api, a)

	case state.PurgeChangeLogRequested:
		m.purgeChangeLog(ctx, api)
		return true

	case state.ApplyOperation:
		sync := api.State().Settings.CalendarSync
		op := a.Op
		api.Go(func() { m.mirrorOperation(ctx, api, op, sync) })
		return true

	case state.CreateShiftTypeRequested:
		st := a.ShiftType
		api.Go(func() {
			if err := m.database.SaveShiftType(ctx, &st); err != nil {
				m.raise(ctx, api, state.SliceShiftTypes, "create shift type", err)
				return
			}
			api.Dispatch(ctx, state.ShiftTypeCreated{ShiftType: st})
		})
		return true

	case state.UpdateShiftTypeRequested:
		st := a.ShiftType
		api.Go(func() {
			if err := m.database.SaveShiftType(ctx, &st); err != nil {
				m.raise(ctx, api, state.SliceShiftTypes, "update shift type", err)
				return
			}
			api.Dispatch(ctx, state.ShiftTypeUpdated{ShiftType: st})
		})
		return true

	case state.DeleteShiftTypeRequested:
		// Reference checks happened in the conflict guard.
		id := a.ShiftTypeID
		api.Go(func() {
			if err := m.database.DeleteShiftType(ctx, id); err != nil {
				m.raise(ctx, api, state.SliceShiftTypes, "delete shift type", err)
				return
			}
			api.Dispatch(ctx, state.ShiftTypeDeleted{ShiftTypeID: id})
		})
		return true

	case state.CreateLocationRequested:
		loc := a.Location
		api.Go(func() {
			if err := m.database.SaveLocation(ctx, &loc); err != nil {
				m.raise(ctx, api, state.SliceLocations, "create location", err)
				return
			}
			api.Dispatch(ctx, state.LocationCreated{Location: loc})
		})
		return true

	case state.UpdateLocationRequested:
		loc := a.Location
		api.Go(func() {
			if err := m.database.SaveLocation(ctx, &loc); err != nil {
				m.raise(ctx, api, state.SliceLocations, "update location", err)
				return
			}
			api.Dispatch(ctx, state.LocationUpdated{Location: loc})
		})
		return true

	case state.DeleteLocationRequested:
		id := a.LocationID
		api.Go(func() {
			if err := m.database.DeleteLocation(ctx, id); err != nil {
				m.raise(ctx, api, state.SliceLocations, "delete location", err)
				return
			}
			api.Dispatch(ctx, state.LocationDeleted{LocationID: id})
		})
		return true

	default:
		return true
	}
}

// createShift is the pessimistic create: calendar first, then database,
// confirmation only after both. A calendar event created for a shift the
// database refused is rolled back.
func (m *effects) createShift(ctx context.Context, api API, shift *model.ScheduledShift, actor string, sync bool) {
	if sync && m.cal != nil {
		externalID, err := m.cal.CreateEvent(ctx, shift)
		if err != nil {
			m.raise(ctx, api, state.SliceSchedule, "create calendar event", err)
			return
		}
		shift.ExternalEventID = externalID
	}

	if err := m.database.SaveShift(ctx, shift); err != nil {
		if shift.ExternalEventID != "" && m.cal != nil {
			if delErr := m.cal.DeleteEvent(ctx, shift.ExternalEventID); delErr != nil {
				m.logger.Error("failed to roll back calendar event",
					zap.String("external_id", shift.ExternalEventID), zap.Error(delErr))
			}
		}
		m.raise(ctx, api, state.SliceSchedule, "save shift", err)
		return
	}

	api.Dispatch(ctx, state.ShiftAdded{Shift: *shift, EntryID: uuid.New(), Time: m.clk.Now(), Actor: actor})
}

func (m *effects) deleteShift(ctx context.Context, api API, shift model.ScheduledShift, actor string, sync bool, reason string) {
	if sync && m.cal != nil && shift.ExternalEventID != "" {
		if err := m.cal.DeleteEvent(ctx, shift.ExternalEventID); err != nil {
			m.raise(ctx, api, state.SliceSchedule, "delete calendar event", err)
			return
		}
	}
	if err := m.database.DeleteShift(ctx, shift.ID); err != nil {
		m.raise(ctx, api, state.SliceSchedule, "delete shift", err)
		return
	}
	api.Dispatch(ctx, state.ShiftDeleted{Shift: shift, EntryID: uuid.New(), Time: m.clk.Now(), Actor: actor, Reason: reason})
}

func (m *effects) switchShift(ctx context.Context, api API, before, after model.ScheduledShift, actor string, sync bool) {
	if sync && m.cal != nil {
		if before.ExternalEventID != "" {
			if err := m.cal.DeleteEvent(ctx, before.ExternalEventID); err != nil {
				m.raise(ctx, api, state.SliceSchedule, "delete calendar event", err)
				return
			}
		}
		externalID, err := m.cal.CreateEvent(ctx, &after)
		if err != nil {
			m.raise(ctx, api, state.SliceSchedule, "create calendar event", err)
			return
		}
		after.ExternalEventID = externalID
	}

	if err := m.database.SaveShift(ctx, &after); err != nil {
		m.raise(ctx, api, state.SliceSchedule, "save shift", err)
		return
	}
	api.Dispatch(ctx, state.ShiftSwitched{Before: before, After: after, EntryID: uuid.New(), Time: m.clk.Now(), Actor: actor})
}

// commitBulkAdd validates the bulk machine and creates every selected
// date's shift sequentially. Returns false when the request is malformed.
func (m *effects) commitBulkAdd(ctx context.Context, api API) bool {
	snap := api.State()
	bulk := snap.Schedule.BulkAdd
	if !bulk.Active() || len(bulk.Dates) == 0 {
		m.raise(ctx, api, state.SliceSchedule, "bulk add",
			fmt.Errorf("no dates selected"))
		return false
	}

	dates := make([]model.Date, 0, len(bulk.Dates))
	for d := range bulk.Dates {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	shifts := make([]*model.ScheduledShift, 0, len(dates))
	for _, d := range dates {
		typeID := bulk.SameTypeID
		if bulk.Mode == state.BulkModePerDateShift {
			var ok bool
			typeID, ok = bulk.PerDate[d]
			if !ok {
				m.raise(ctx, api, state.SliceSchedule, "bulk add",
					fmt.Errorf("date %s has no shift assigned", d))
				return false
			}
		} else if typeID == uuid.Nil {
			m.raise(ctx, api, state.SliceSchedule, "bulk add",
				fmt.Errorf("no shift type selected"))
			return false
		}
		shift, err := buildShift(snap, typeID, d, "")
		if err != nil {
			m.raise(ctx, api, state.SliceSchedule, "bulk add", err)
			return false
		}
		shifts = append(shifts, shift)
	}

	actor, sync := snap.Settings.ActorName, snap.Settings.CalendarSync
	api.Go(func() {
		for _, shift := range shifts {
			m.createShift(ctx, api, shift, actor, sync)
		}
		// Close the flow once the batch is through.
		api.Dispatch(ctx, state.CancelBulkAdd{})
	})
	return true
}

// resolveOverlap deletes every member of the conflict group except the
// kept one. Resolution is always an explicit user choice; there is no
// automatic path here.
func (m *effects) resolveOverlap(ctx context.Context, api API, a state.ResolveOverlapRequested) bool {
	snap := api.State()
	conflict, ok := snap.Schedule.ConflictOn(a.Date)
	if !ok {
		// Already resolved or dismissed; resolving again is a no-op.
		return true
	}

	var losers []model.ScheduledShift
	kept := false
	for _, s := range conflict.Group.Shifts {
		if s.ID == a.KeepID {
			kept = true
			continue
		}
		losers = append(losers, *s)
	}
	if !kept {
		m.raise(ctx, api, state.SliceSchedule, "resolve overlap",
			&model.NotFoundError{Kind: "shift", ID: a.KeepID.String()})
		return false
	}

	actor, sync := snap.Settings.ActorName, snap.Settings.CalendarSync
	api.Go(func() {
		for _, loser := range losers {
			m.deleteShift(ctx, api, loser, actor, sync, "overlap resolution")
		}
	})
	return true
}

// purgeChangeLog computes the cutoff from settings and the injected
// clock, removes the in-memory entries via ChangeLogPurged, and deletes
// the same rows. Entries referenced by live undo/redo frames are exempt.
func (m *effects) purgeChangeLog(ctx context.Context, api API) {
	snap := api.State()
	cutoff, ok := snap.Settings.Retention.Cutoff(m.clk.Now())
	if !ok {
		m.logger.Debug("purge requested with retention forever; nothing to do")
		return
	}

	exempt := snap.ChangeLog.Undo.EntryIDs()
	for id := range snap.ChangeLog.Redo.EntryIDs() {
		exempt[id] = true
	}
	var removed []uuid.UUID
	for _, e := range snap.ChangeLog.Entries {
		if e.Timestamp.Before(cutoff) && !exempt[e.ID] {
			removed = append(removed, e.ID)
		}
	}

	api.Dispatch(ctx, state.ChangeLogPurged{Cutoff: cutoff})
	if len(removed) == 0 {
		return
	}
	m.logger.Info("purging change log entries", zap.Int("count", len(removed)))
	api.Go(func() {
		if err := m.database.DeleteChangeLogEntries(ctx, removed); err != nil {
			m.raise(ctx, api, state.SliceChangeLog, "purge change log", err)
		}
	})
}

// mirrorOperation replays an undo/redo operation against the database
// and calendar. The in-memory reversal is already applied; failures are
// surfaced as error actions rather than rolled back.
func (m *effects) mirrorOperation(ctx context.Context, api API, op history.Operation, sync bool) {
	switch op.Kind {
	case history.OpCreate:
		shift := op.After
		if sync && m.cal != nil {
			externalID, err := m.cal.CreateEvent(ctx, &shift)
			if err != nil {
				m.raise(ctx, api, state.SliceSchedule, "recreate calendar event", err)
			} else {
				shift.ExternalEventID = externalID
				api.Dispatch(ctx, state.ExternalEventLinked{ShiftID: shift.ID, ExternalID: externalID})
			}
		}
		if err := m.database.SaveShift(ctx, &shift); err != nil {
			m.raise(ctx, api, state.SliceSchedule, "save shift", err)
		}

	case history.OpDelete:
		if sync && m.cal != nil && op.Before.ExternalEventID != "" {
			if err := m.cal.DeleteEvent(ctx, op.Before.ExternalEventID); err != nil {
				m.raise(ctx, api, state.SliceSchedule, "delete calendar event", err)
			}
		}
		if err := m.database.DeleteShift(ctx, op.Before.ID); err != nil {
			m.raise(ctx, api, state.SliceSchedule, "delete shift", err)
		}

	case history.OpSwitch:
		shift := op.After
		if err := m.database.SaveShift(ctx, &shift); err != nil {
			m.raise(ctx, api, state.SliceSchedule, "save shift", err)
		}
	}
}

func (m *effects) raise(ctx context.Context, api API, slice state.Slice, op string, err error) {
	m.logger.Warn("effect failed", zap.String("op", op), zap.Error(err))
	api.Dispatch(ctx, state.ErrorRaised{
		Slice:   slice,
		Message: (&model.EffectError{Op: op, Err: err}).Error(),
	})
}

// buildShift resolves the shift type and its location name from a state
// snapshot and constructs the shift.
func buildShift(snap state.State, typeID uuid.UUID, date model.Date, notes string) (*model.ScheduledShift, error) {
	st, ok := snap.ShiftTypes.Types[typeID]
	if !ok {
		return nil, &model.NotFoundError{Kind: "shift type", ID: typeID.String()}
	}
	return model.NewScheduledShift(st, date, notes, locationName(snap, st.LocationID))
}

func locationName(snap state.State, locationID uuid.UUID) string {
	if loc, ok := snap.Locations.Locations[locationID]; ok {
		return loc.Name
	}
	return ""
}
