package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shiftbook/pkg/core/clock"
	"github.com/jakechorley/shiftbook/pkg/core/history"
	"github.com/jakechorley/shiftbook/pkg/core/model"
	"github.com/jakechorley/shiftbook/pkg/core/state"
)

type mockDB struct {
	mu      sync.Mutex
	shifts  map[uuid.UUID]model.ScheduledShift
	types   map[uuid.UUID]model.ShiftType
	locs    map[uuid.UUID]model.Location
	entries map[uuid.UUID]model.ChangeLogEntry

	deletedEntryIDs []uuid.UUID
	saveShiftErr    error
	deleteShiftErr  error
}

func newMockDB() *mockDB {
	return &mockDB{
		shifts:  map[uuid.UUID]model.ScheduledShift{},
		types:   map[uuid.UUID]model.ShiftType{},
		locs:    map[uuid.UUID]model.Location{},
		entries: map[uuid.UUID]model.ChangeLogEntry{},
	}
}

func (m *mockDB) SaveShift(_ context.Context, shift *model.ScheduledShift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveShiftErr != nil {
		return m.saveShiftErr
	}
	m.shifts[shift.ID] = *shift
	return nil
}

func (m *mockDB) DeleteShift(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteShiftErr != nil {
		return m.deleteShiftErr
	}
	delete(m.shifts, id)
	return nil
}

func (m *mockDB) FetchAllShifts(_ context.Context) ([]model.ScheduledShift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ScheduledShift, 0, len(m.shifts))
	for _, s := range m.shifts {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockDB) SaveShiftType(_ context.Context, st *model.ShiftType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[st.ID] = *st
	return nil
}

func (m *mockDB) DeleteShiftType(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.types, id)
	return nil
}

func (m *mockDB) FetchAllShiftTypes(_ context.Context) ([]model.ShiftType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ShiftType, 0, len(m.types))
	for _, st := range m.types {
		out = append(out, st)
	}
	return out, nil
}

func (m *mockDB) SaveLocation(_ context.Context, loc *model.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locs[loc.ID] = *loc
	return nil
}

func (m *mockDB) DeleteLocation(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locs, id)
	return nil
}

func (m *mockDB) FetchAllLocations(_ context.Context) ([]model.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Location, 0, len(m.locs))
	for _, loc := range m.locs {
		out = append(out, loc)
	}
	return out, nil
}

func (m *mockDB) SaveChangeLogEntry(_ context.Context, entry *model.ChangeLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = *entry
	return nil
}

func (m *mockDB) DeleteChangeLogEntries(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.entries, id)
		m.deletedEntryIDs = append(m.deletedEntryIDs, id)
	}
	return nil
}

func (m *mockDB) FetchAllChangeLogEntries(_ context.Context) ([]*model.ChangeLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.ChangeLogEntry, 0, len(m.entries))
	for id := range m.entries {
		e := m.entries[id]
		out = append(out, &e)
	}
	return out, nil
}

func (m *mockDB) shiftCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.shifts)
}

func (m *mockDB) hasShift(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.shifts[id]
	return ok
}

func (m *mockDB) entryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type fakeCalendar struct {
	mu        sync.Mutex
	seq       int
	created   []string
	deleted   []string
	createErr error
	deleteErr error
}

func (f *fakeCalendar) CreateEvent(_ context.Context, _ *model.ScheduledShift) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.seq++
	id := fmt.Sprintf("evt-%d", f.seq)
	f.created = append(f.created, id)
	return id, nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, externalID)
	return nil
}

func (f *fakeCalendar) ListEvents(_ context.Context, _, _ time.Time) ([]RawEvent, error) {
	return nil, nil
}

func (f *fakeCalendar) AuthStatus(_ context.Context) error {
	return nil
}

func (f *fakeCalendar) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeCalendar) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type harness struct {
	store *Store
	db    *mockDB
	cal   *fakeCalendar

	today     model.Date
	locID     uuid.UUID
	dayTypeID uuid.UUID
	nightID   uuid.UUID
}

var harnessNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()

	dayDur, err := model.Scheduled(model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 16})
	require.NoError(t, err)
	nightDur, err := model.Scheduled(model.TimeOfDay{Hour: 22}, model.TimeOfDay{Hour: 6})
	require.NoError(t, err)

	loc := model.Location{ID: uuid.New(), Name: "Ward 3"}
	day := model.ShiftType{ID: uuid.New(), Symbol: "D", Title: "Day", Description: "0800-1600 ward cover", Duration: dayDur, LocationID: loc.ID}
	night := model.ShiftType{ID: uuid.New(), Symbol: "N", Title: "Night", Duration: nightDur, LocationID: loc.ID}

	mdb := newMockDB()
	cal := &fakeCalendar{}
	clk := clock.Fixed{Instant: harnessNow}
	logger := zap.NewNop()

	s := New(state.New(), logger,
		NewLoggingMiddleware(logger),
		NewHistoryMiddleware(clk, logger),
		NewConflictGuardMiddleware(logger),
		NewEffectsMiddleware(mdb, cal, clk, logger),
	)

	today := model.Date{Year: 2025, Month: time.March, Day: 10}
	s.Dispatch(context.Background(), state.HydrateState{
		ShiftTypes: []model.ShiftType{day, night},
		Locations:  []model.Location{loc},
		Today:      today,
	})

	return &harness{
		store:     s,
		db:        mdb,
		cal:       cal,
		today:     today,
		locID:     loc.ID,
		dayTypeID: day.ID,
		nightID:   night.ID,
	}
}

// addShift drives the full add flow and returns the confirmed shift,
// identified by diffing the shift set around the dispatch so repeated
// adds of the same type and date each hand back their own shift.
func (h *harness) addShift(t *testing.T, typeID uuid.UUID, date model.Date) model.ScheduledShift {
	t.Helper()
	before := map[uuid.UUID]bool{}
	for id := range h.store.State().Schedule.Shifts {
		before[id] = true
	}
	h.store.Dispatch(context.Background(), state.AddShiftRequested{ShiftTypeID: typeID, Date: date})
	h.store.Wait()

	snap := h.store.State()
	require.Len(t, snap.Schedule.Shifts, len(before)+1, "add did not confirm: %s", snap.Schedule.ErrorMessage)
	for id, s := range snap.Schedule.Shifts {
		if !before[id] {
			return *s
		}
	}
	t.Fatalf("confirmed shift not found for %s", date)
	return model.ScheduledShift{}
}

func TestEffects_AddShiftConfirmsAfterCalendarAndDatabase(t *testing.T) {
	h := newHarness(t)

	shift := h.addShift(t, h.dayTypeID, h.today)

	assert.Equal(t, "evt-1", shift.ExternalEventID)
	assert.Equal(t, "D", shift.SnapshotSymbol)
	assert.Equal(t, "0800-1600 ward cover", shift.SnapshotDescription)
	assert.Equal(t, "Ward 3", shift.SnapshotLocationName)
	assert.True(t, h.db.hasShift(shift.ID))

	snap := h.store.State()
	require.Len(t, snap.ChangeLog.Entries, 1)
	entry := snap.ChangeLog.Entries[0]
	assert.Equal(t, model.ChangeCreated, entry.Kind)
	assert.Equal(t, harnessNow, entry.Timestamp)
	require.NotNil(t, entry.After)
	assert.Equal(t, "0800-1600 ward cover", entry.After.Description)
	assert.Equal(t, 1, snap.ChangeLog.Undo.Len())
	assert.Equal(t, 1, h.db.entryCount(), "audit entry persisted")
}

func TestEffects_AddShiftCalendarFailureLeavesStateUntouched(t *testing.T) {
	h := newHarness(t)
	h.cal.createErr = errors.New("calendar unavailable")

	h.store.Dispatch(context.Background(), state.AddShiftRequested{ShiftTypeID: h.dayTypeID, Date: h.today})
	h.store.Wait()

	snap := h.store.State()
	assert.Empty(t, snap.Schedule.Shifts)
	assert.Empty(t, snap.ChangeLog.Entries)
	assert.Contains(t, snap.Schedule.ErrorMessage, "create calendar event failed")
	assert.Equal(t, 0, h.db.shiftCount())
}

func TestEffects_AddShiftDatabaseFailureRollsBackCalendarEvent(t *testing.T) {
	h := newHarness(t)
	h.db.saveShiftErr = errors.New("connection reset")

	h.store.Dispatch(context.Background(), state.AddShiftRequested{ShiftTypeID: h.dayTypeID, Date: h.today})
	h.store.Wait()

	snap := h.store.State()
	assert.Empty(t, snap.Schedule.Shifts)
	assert.Contains(t, snap.Schedule.ErrorMessage, "save shift failed")
	assert.Equal(t, []string{"evt-1"}, h.cal.deletedIDs(), "orphaned event rolled back")
}

func TestEffects_AddShiftUnknownTypeIsSuppressed(t *testing.T) {
	h := newHarness(t)

	h.store.Dispatch(context.Background(), state.AddShiftRequested{ShiftTypeID: uuid.New(), Date: h.today})
	h.store.Wait()

	snap := h.store.State()
	assert.Empty(t, snap.Schedule.Shifts)
	assert.Empty(t, snap.ChangeLog.Entries, "suppressed request leaves no audit trace")
	assert.Contains(t, snap.Schedule.ErrorMessage, "shift type")
}

func TestEffects_CalendarSyncDisabledSkipsCalendar(t *testing.T) {
	h := newHarness(t)
	h.store.Dispatch(context.Background(), state.SetCalendarSync{Enabled: false})

	shift := h.addShift(t, h.dayTypeID, h.today)

	assert.Empty(t, shift.ExternalEventID)
	assert.Equal(t, 0, h.cal.createdCount())
	assert.True(t, h.db.hasShift(shift.ID))
}

func TestEffects_DeleteShiftRemovesEventAndRow(t *testing.T) {
	h := newHarness(t)
	shift := h.addShift(t, h.dayTypeID, h.today)

	h.store.Dispatch(context.Background(), state.DeleteShiftRequested{ShiftID: shift.ID})
	h.store.Wait()

	snap := h.store.State()
	assert.Empty(t, snap.Schedule.Shifts)
	assert.False(t, h.db.hasShift(shift.ID))
	assert.Equal(t, []string{shift.ExternalEventID}, h.cal.deletedIDs())

	require.Len(t, snap.ChangeLog.Entries, 2)
	assert.Equal(t, model.ChangeDeleted, snap.ChangeLog.Entries[1].Kind)
}

func TestEffects_SwitchShiftReplacesEventAndSnapshots(t *testing.T) {
	h := newHarness(t)
	shift := h.addShift(t, h.dayTypeID, h.today)

	h.store.Dispatch(context.Background(), state.SwitchShiftRequested{ShiftID: shift.ID, NewTypeID: h.nightID})
	h.store.Wait()

	snap := h.store.State()
	require.Len(t, snap.Schedule.Shifts, 1)
	switched := snap.Schedule.Shifts[shift.ID]
	require.NotNil(t, switched)
	assert.Equal(t, h.nightID, switched.ShiftTypeID)
	assert.Equal(t, "N", switched.SnapshotSymbol)
	assert.Equal(t, "evt-2", switched.ExternalEventID)
	assert.Equal(t, []string{"evt-1"}, h.cal.deletedIDs())

	require.Len(t, snap.ChangeLog.Entries, 2)
	assert.Equal(t, model.ChangeSwitched, snap.ChangeLog.Entries[1].Kind)
}

func TestEffects_UndoRedoRoundTrip(t *testing.T) {
	h := newHarness(t)
	shift := h.addShift(t, h.dayTypeID, h.today)

	h.store.Dispatch(context.Background(), state.UndoRequested{})
	h.store.Wait()

	snap := h.store.State()
	assert.Empty(t, snap.Schedule.Shifts, "undo of a create removes the shift")
	assert.False(t, h.db.hasShift(shift.ID), "mirror deleted the row")
	assert.Contains(t, h.cal.deletedIDs(), shift.ExternalEventID)
	assert.Equal(t, 0, snap.ChangeLog.Undo.Len())
	assert.Equal(t, 1, snap.ChangeLog.Redo.Len())
	require.Len(t, snap.ChangeLog.Entries, 2)
	assert.Equal(t, model.ChangeUndo, snap.ChangeLog.Entries[1].Kind)

	h.store.Dispatch(context.Background(), state.RedoRequested{})
	h.store.Wait()

	snap = h.store.State()
	require.Len(t, snap.Schedule.Shifts, 1, "redo restores the shift")
	restored := snap.Schedule.Shifts[shift.ID]
	require.NotNil(t, restored)
	assert.Equal(t, "evt-2", restored.ExternalEventID, "redo mirror minted a fresh event")
	assert.True(t, h.db.hasShift(shift.ID))
	assert.Equal(t, 1, snap.ChangeLog.Undo.Len())
	assert.Equal(t, 0, snap.ChangeLog.Redo.Len())
	require.Len(t, snap.ChangeLog.Entries, 3)
	assert.Equal(t, model.ChangeRedo, snap.ChangeLog.Entries[2].Kind)
}

func TestEffects_UndoOnEmptyStackSurfacesError(t *testing.T) {
	h := newHarness(t)

	h.store.Dispatch(context.Background(), state.UndoRequested{})
	h.store.Wait()

	snap := h.store.State()
	assert.Equal(t, "nothing to undo", snap.ChangeLog.ErrorMessage)
	assert.Empty(t, snap.ChangeLog.Entries)
}

func TestEffects_RedoOnEmptyStackSurfacesError(t *testing.T) {
	h := newHarness(t)

	h.store.Dispatch(context.Background(), state.RedoRequested{})
	h.store.Wait()

	assert.Equal(t, "nothing to redo", h.store.State().ChangeLog.ErrorMessage)
}

func TestEffects_ResolveOverlapDeletesLosers(t *testing.T) {
	h := newHarness(t)
	keep := h.addShift(t, h.dayTypeID, h.today)
	lose := h.addShift(t, h.dayTypeID, h.today)
	require.NotEqual(t, keep.ID, lose.ID, "each add must return its own shift")

	snap := h.store.State()
	_, ok := snap.Schedule.ConflictOn(h.today)
	require.True(t, ok, "two identical day shifts must conflict")

	h.store.Dispatch(context.Background(), state.ResolveOverlapRequested{Date: h.today, KeepID: keep.ID})
	h.store.Wait()

	snap = h.store.State()
	require.Len(t, snap.Schedule.Shifts, 1)
	assert.NotNil(t, snap.Schedule.Shifts[keep.ID])
	assert.False(t, h.db.hasShift(lose.ID))
	_, ok = snap.Schedule.ConflictOn(h.today)
	assert.False(t, ok, "conflict cleared once only one shift remains")

	require.Len(t, snap.ChangeLog.Entries, 3)
	last := snap.ChangeLog.Entries[2]
	assert.Equal(t, model.ChangeDeleted, last.Kind)
	assert.Equal(t, "overlap resolution", last.Reason)
}

func TestEffects_ResolveOverlapUnknownKeeperRejected(t *testing.T) {
	h := newHarness(t)
	h.addShift(t, h.dayTypeID, h.today)
	h.addShift(t, h.dayTypeID, h.today)

	h.store.Dispatch(context.Background(), state.ResolveOverlapRequested{Date: h.today, KeepID: uuid.New()})
	h.store.Wait()

	snap := h.store.State()
	assert.Len(t, snap.Schedule.Shifts, 2, "nothing deleted when the keeper is unknown")
	assert.Contains(t, snap.Schedule.ErrorMessage, "resolve overlap failed")
}

func TestEffects_ResolveAbsentConflictIsNoOp(t *testing.T) {
	h := newHarness(t)
	shift := h.addShift(t, h.dayTypeID, h.today)

	h.store.Dispatch(context.Background(), state.ResolveOverlapRequested{Date: h.today, KeepID: shift.ID})
	h.store.Wait()

	snap := h.store.State()
	assert.Len(t, snap.Schedule.Shifts, 1)
	assert.Empty(t, snap.Schedule.ErrorMessage)
}

func TestEffects_PurgeRemovesOldRowsKeepsRecent(t *testing.T) {
	h := newHarness(t)

	// Rehydrate with a stale entry in the log, keeping the reference data.
	snap := h.store.State()
	var types []model.ShiftType
	for _, st := range snap.ShiftTypes.Sorted() {
		types = append(types, *st)
	}
	var locs []model.Location
	for _, loc := range snap.Locations.Locations {
		locs = append(locs, *loc)
	}
	old := model.NewChangeLogEntry(uuid.New(), harnessNow.AddDate(0, -6, 0), model.ChangeCreated, nil, nil, "", "", h.today)
	h.store.Dispatch(context.Background(), state.HydrateState{
		ShiftTypes: types,
		Locations:  locs,
		Entries:    []*model.ChangeLogEntry{old},
		Today:      h.today,
	})
	h.addShift(t, h.dayTypeID, h.today)

	h.store.Dispatch(context.Background(), state.SetRetention{
		Retention: history.Retention{Policy: history.RetainDays, N: 30},
	})
	h.store.Dispatch(context.Background(), state.PurgeChangeLogRequested{})
	h.store.Wait()

	snap = h.store.State()
	require.Len(t, snap.ChangeLog.Entries, 1, "only the recent entry survives")
	assert.Equal(t, model.ChangeCreated, snap.ChangeLog.Entries[0].Kind)
	assert.Equal(t, harnessNow, snap.ChangeLog.Entries[0].Timestamp)
	assert.Equal(t, []uuid.UUID{old.ID}, h.db.deletedEntryIDs)
}

func TestEffects_PurgeWithRetainForeverIsNoOp(t *testing.T) {
	h := newHarness(t)
	h.addShift(t, h.dayTypeID, h.today)

	h.store.Dispatch(context.Background(), state.PurgeChangeLogRequested{})
	h.store.Wait()

	snap := h.store.State()
	assert.Len(t, snap.ChangeLog.Entries, 1)
	assert.Empty(t, h.db.deletedEntryIDs)
}

func TestEffects_BulkCommitSameShiftForAll(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.Dispatch(ctx, state.StartBulkAdd{})
	h.store.Dispatch(ctx, state.SelectBulkMode{Mode: state.BulkModeSameShift})
	for i := 0; i < 3; i++ {
		h.store.Dispatch(ctx, state.ToggleBulkDate{Date: h.today.AddDays(i)})
	}
	h.store.Dispatch(ctx, state.SetBulkShiftType{ShiftTypeID: h.dayTypeID})
	h.store.Dispatch(ctx, state.CommitBulkAddRequested{})
	h.store.Wait()

	snap := h.store.State()
	assert.Len(t, snap.Schedule.Shifts, 3)
	assert.False(t, snap.Schedule.BulkAdd.Active(), "flow closes after commit")
	assert.Equal(t, 3, h.db.shiftCount())
	assert.Len(t, snap.ChangeLog.Entries, 3)
}

func TestEffects_BulkCommitPerDateShift(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.Dispatch(ctx, state.StartBulkAdd{})
	h.store.Dispatch(ctx, state.SelectBulkMode{Mode: state.BulkModePerDateShift})
	h.store.Dispatch(ctx, state.ToggleBulkDate{Date: h.today})
	h.store.Dispatch(ctx, state.ToggleBulkDate{Date: h.today.AddDays(1)})
	h.store.Dispatch(ctx, state.AssignBulkDate{Date: h.today, ShiftTypeID: h.dayTypeID})
	h.store.Dispatch(ctx, state.AssignBulkDate{Date: h.today.AddDays(1), ShiftTypeID: h.nightID})
	h.store.Dispatch(ctx, state.CommitBulkAddRequested{})
	h.store.Wait()

	snap := h.store.State()
	require.Len(t, snap.Schedule.Shifts, 2)
	types := map[uuid.UUID]bool{}
	for _, s := range snap.Schedule.Shifts {
		types[s.ShiftTypeID] = true
	}
	assert.True(t, types[h.dayTypeID])
	assert.True(t, types[h.nightID])
}

func TestEffects_BulkCommitMissingAssignmentRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.Dispatch(ctx, state.StartBulkAdd{})
	h.store.Dispatch(ctx, state.SelectBulkMode{Mode: state.BulkModePerDateShift})
	h.store.Dispatch(ctx, state.ToggleBulkDate{Date: h.today})
	h.store.Dispatch(ctx, state.ToggleBulkDate{Date: h.today.AddDays(1)})
	h.store.Dispatch(ctx, state.AssignBulkDate{Date: h.today, ShiftTypeID: h.dayTypeID})
	h.store.Dispatch(ctx, state.CommitBulkAddRequested{})
	h.store.Wait()

	snap := h.store.State()
	assert.Empty(t, snap.Schedule.Shifts, "partial batches never commit")
	assert.True(t, snap.Schedule.BulkAdd.Active(), "flow stays open for correction")
	assert.Contains(t, snap.Schedule.ErrorMessage, "no shift assigned")
}

func TestGuard_BlocksDeleteOfReferencedShiftType(t *testing.T) {
	h := newHarness(t)
	h.addShift(t, h.dayTypeID, h.today)

	dayType := *h.store.State().ShiftTypes.Types[h.dayTypeID]
	require.NoError(t, h.db.SaveShiftType(context.Background(), &dayType))

	h.store.Dispatch(context.Background(), state.DeleteShiftTypeRequested{ShiftTypeID: h.dayTypeID})
	h.store.Wait()

	snap := h.store.State()
	assert.NotNil(t, snap.ShiftTypes.Types[h.dayTypeID], "referenced type survives")
	assert.NotEmpty(t, snap.ShiftTypes.ErrorMessage)

	types, err := h.db.FetchAllShiftTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, types, 1, "suppressed request never reaches persistence")
}

func TestGuard_AllowsDeleteOfUnreferencedShiftType(t *testing.T) {
	h := newHarness(t)

	h.store.Dispatch(context.Background(), state.DeleteShiftTypeRequested{ShiftTypeID: h.nightID})
	h.store.Wait()

	snap := h.store.State()
	assert.Nil(t, snap.ShiftTypes.Types[h.nightID])
	assert.Empty(t, snap.ShiftTypes.ErrorMessage)
}

func TestGuard_BlocksDeleteOfReferencedLocation(t *testing.T) {
	h := newHarness(t)

	h.store.Dispatch(context.Background(), state.DeleteLocationRequested{LocationID: h.locID})
	h.store.Wait()

	snap := h.store.State()
	assert.NotNil(t, snap.Locations.Locations[h.locID])
	assert.NotEmpty(t, snap.Locations.ErrorMessage)
}

func TestEffects_ShiftTypeCreateRoundTrip(t *testing.T) {
	h := newHarness(t)

	st := model.ShiftType{ID: uuid.New(), Symbol: "O", Title: "On call", Duration: model.AllDay(), LocationID: h.locID}
	h.store.Dispatch(context.Background(), state.CreateShiftTypeRequested{ShiftType: st})
	h.store.Wait()

	snap := h.store.State()
	require.NotNil(t, snap.ShiftTypes.Types[st.ID])
	assert.Equal(t, "On call", snap.ShiftTypes.Types[st.ID].Title)

	types, err := h.db.FetchAllShiftTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, types, 1)
}

func TestEffects_LocationCreateRoundTrip(t *testing.T) {
	h := newHarness(t)

	loc := model.Location{ID: uuid.New(), Name: "Clinic", Address: "12 High St"}
	h.store.Dispatch(context.Background(), state.CreateLocationRequested{Location: loc})
	h.store.Wait()

	snap := h.store.State()
	require.NotNil(t, snap.Locations.Locations[loc.ID])

	locs, err := h.db.FetchAllLocations(context.Background())
	require.NoError(t, err)
	assert.Len(t, locs, 1)
}

func TestEffects_NotesUpdateIsOptimisticAndPersisted(t *testing.T) {
	h := newHarness(t)
	shift := h.addShift(t, h.dayTypeID, h.today)

	h.store.Dispatch(context.Background(), state.UpdateShiftNotes{ShiftID: shift.ID, Notes: "bring keys"})
	h.store.Wait()

	snap := h.store.State()
	assert.Equal(t, "bring keys", snap.Schedule.Shifts[shift.ID].Notes)

	h.db.mu.Lock()
	persisted := h.db.shifts[shift.ID]
	h.db.mu.Unlock()
	assert.Equal(t, "bring keys", persisted.Notes)

	assert.Len(t, snap.ChangeLog.Entries, 1, "notes edits are not audited")
}
