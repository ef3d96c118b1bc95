package history

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

func testShift(t *testing.T) model.ScheduledShift {
	t.Helper()
	dur, err := model.Scheduled(model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 16})
	require.NoError(t, err)
	return model.ScheduledShift{
		ID:               uuid.New(),
		ShiftTypeID:      uuid.New(),
		Date:             model.Date{Year: 2025, Month: time.March, Day: 10},
		SnapshotSymbol:   "D",
		SnapshotTitle:    "Day",
		SnapshotDuration: dur,
	}
}

func TestOperation_InvertRoundTrips(t *testing.T) {
	shift := testShift(t)
	switched := shift
	switched.ShiftTypeID = uuid.New()
	switched.SnapshotSymbol = "N"

	tests := []struct {
		name string
		op   Operation
	}{
		{"create", CreateOp(shift)},
		{"delete", DeleteOp(shift)},
		{"switch", SwitchOp(shift, switched)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.op, tt.op.Invert().Invert())
		})
	}
}

func TestOperation_InvertSemantics(t *testing.T) {
	shift := testShift(t)

	inv := CreateOp(shift).Invert()
	assert.Equal(t, OpDelete, inv.Kind)
	assert.Equal(t, shift, inv.Before)

	inv = DeleteOp(shift).Invert()
	assert.Equal(t, OpCreate, inv.Kind)
	assert.Equal(t, shift, inv.After)
}

func TestOperation_ChangeKind(t *testing.T) {
	shift := testShift(t)
	assert.Equal(t, model.ChangeCreated, CreateOp(shift).ChangeKind())
	assert.Equal(t, model.ChangeDeleted, DeleteOp(shift).ChangeKind())
	assert.Equal(t, model.ChangeSwitched, SwitchOp(shift, shift).ChangeKind())
}

func TestOperation_Snapshots(t *testing.T) {
	shift := testShift(t)

	before, after := CreateOp(shift).Snapshots()
	assert.Nil(t, before)
	require.NotNil(t, after)
	assert.Equal(t, "D", after.Symbol)

	before, after = DeleteOp(shift).Snapshots()
	require.NotNil(t, before)
	assert.Nil(t, after)
}

func TestStack_PushPopIsLIFO(t *testing.T) {
	s := NewStack(10)
	f1 := Frame{EntryID: uuid.New()}
	f2 := Frame{EntryID: uuid.New()}

	s = s.Push(f1).Push(f2)
	require.Equal(t, 2, s.Len())

	top, s, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, f2.EntryID, top.EntryID)

	top, s, ok = s.Pop()
	require.True(t, ok)
	assert.Equal(t, f1.EntryID, top.EntryID)

	_, _, ok = s.Pop()
	assert.False(t, ok)
}

func TestStack_PushIsPersistent(t *testing.T) {
	s := NewStack(10)
	s1 := s.Push(Frame{EntryID: uuid.New()})
	s2 := s1.Push(Frame{EntryID: uuid.New()})

	// Older values must be unaffected by later pushes.
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, s1.Len())
	assert.Equal(t, 2, s2.Len())
}

func TestStack_BoundDropsOldest(t *testing.T) {
	s := NewStack(3)
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = uuid.New()
		s = s.Push(Frame{EntryID: ids[i]})
	}

	require.Equal(t, 3, s.Len())
	top, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, ids[4], top.EntryID)

	// The two oldest frames are gone.
	live := s.EntryIDs()
	assert.False(t, live[ids[0]])
	assert.False(t, live[ids[1]])
	assert.True(t, live[ids[2]])
}

func TestRetention_Cutoff(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	_, ok := Retention{Policy: RetainForever}.Cutoff(now)
	assert.False(t, ok)

	cutoff, ok := Retention{Policy: RetainDays, N: 30}.Cutoff(now)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -30), cutoff)

	cutoff, ok = Retention{Policy: RetainWeeks, N: 2}.Cutoff(now)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -14), cutoff)
}

func TestPurge_RemovesExactlyOlderThanCutoff(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	cutoff := now.AddDate(0, 0, -30)

	old := &model.ChangeLogEntry{ID: uuid.New(), Timestamp: cutoff.Add(-time.Hour)}
	boundary := &model.ChangeLogEntry{ID: uuid.New(), Timestamp: cutoff}
	recent := &model.ChangeLogEntry{ID: uuid.New(), Timestamp: now}

	kept := Purge([]*model.ChangeLogEntry{old, boundary, recent}, cutoff, nil)
	require.Len(t, kept, 2)
	assert.Equal(t, boundary.ID, kept[0].ID, "entries exactly at the cutoff are kept")
	assert.Equal(t, recent.ID, kept[1].ID)
}

func TestPurge_ExemptsStackReferencedEntries(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	cutoff := now.AddDate(0, 0, -30)

	referenced := &model.ChangeLogEntry{ID: uuid.New(), Timestamp: cutoff.Add(-time.Hour)}
	unreferenced := &model.ChangeLogEntry{ID: uuid.New(), Timestamp: cutoff.Add(-time.Hour)}

	stack := NewStack(10).Push(Frame{EntryID: referenced.ID})
	kept := Purge([]*model.ChangeLogEntry{referenced, unreferenced}, cutoff, stack.EntryIDs())

	require.Len(t, kept, 1)
	assert.Equal(t, referenced.ID, kept[0].ID)
}
