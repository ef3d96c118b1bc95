package overlap

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

var testDate = model.Date{Year: 2025, Month: time.March, Day: 10}

// makeShift builds a scheduled shift directly, bypassing the shift type
// constructor so tests can control every field.
func makeShift(t *testing.T, date model.Date, from, to model.TimeOfDay) *model.ScheduledShift {
	t.Helper()
	dur, err := model.Scheduled(from, to)
	require.NoError(t, err)
	return &model.ScheduledShift{
		ID:               uuid.New(),
		ShiftTypeID:      uuid.New(),
		Date:             date,
		SnapshotDuration: dur,
	}
}

func makeAllDayShift(date model.Date) *model.ScheduledShift {
	return &model.ScheduledShift{
		ID:               uuid.New(),
		ShiftTypeID:      uuid.New(),
		Date:             date,
		SnapshotDuration: model.AllDay(),
	}
}

func asMap(shifts ...*model.ScheduledShift) map[uuid.UUID]*model.ScheduledShift {
	m := make(map[uuid.UUID]*model.ScheduledShift, len(shifts))
	for _, s := range shifts {
		m[s.ID] = s
	}
	return m
}

func TestOverlaps_Symmetry(t *testing.T) {
	a := makeShift(t, testDate, model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 16})
	b := makeShift(t, testDate, model.TimeOfDay{Hour: 15}, model.TimeOfDay{Hour: 23})
	c := makeShift(t, testDate, model.TimeOfDay{Hour: 17}, model.TimeOfDay{Hour: 18})

	assert.True(t, Overlaps(a, b))
	assert.Equal(t, Overlaps(a, b), Overlaps(b, a))
	assert.Equal(t, Overlaps(a, c), Overlaps(c, a))
	assert.False(t, Overlaps(a, c))
}

func TestOverlaps_NeverAgainstItself(t *testing.T) {
	a := makeShift(t, testDate, model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 16})
	assert.False(t, Overlaps(a, a))
}

func TestOverlaps_BackToBackIsNotAConflict(t *testing.T) {
	a := makeShift(t, testDate, model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 16})
	b := makeShift(t, testDate, model.TimeOfDay{Hour: 16}, model.TimeOfDay{Hour: 23})
	assert.False(t, Overlaps(a, b))
}

func TestOverlaps_OvernightSpillsIntoNextDay(t *testing.T) {
	night := makeShift(t, testDate, model.TimeOfDay{Hour: 22}, model.TimeOfDay{Hour: 6})
	early := makeShift(t, testDate.AddDays(1), model.TimeOfDay{Hour: 5}, model.TimeOfDay{Hour: 13})
	late := makeShift(t, testDate.AddDays(1), model.TimeOfDay{Hour: 6}, model.TimeOfDay{Hour: 14})

	assert.True(t, Overlaps(night, early), "22:00-06:00 should clash with 05:00 next day")
	assert.False(t, Overlaps(night, late), "half-open interval: ending at 06:00 does not clash with starting at 06:00")
}

func TestOverlaps_AllDayClashesWithEverythingOnItsDate(t *testing.T) {
	allDay := makeAllDayShift(testDate)
	morning := makeShift(t, testDate, model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 12})
	nextDay := makeShift(t, testDate.AddDays(1), model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 12})

	assert.True(t, Overlaps(allDay, morning))
	assert.False(t, Overlaps(allDay, nextDay))
}

func TestCandidatesFor_IncludesPreviousDay(t *testing.T) {
	night := makeShift(t, testDate.AddDays(-1), model.TimeOfDay{Hour: 22}, model.TimeOfDay{Hour: 6})
	day := makeShift(t, testDate, model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 16})
	unrelated := makeShift(t, testDate.AddDays(3), model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 16})

	candidates := CandidatesFor(asMap(night, day, unrelated), testDate)
	require.Len(t, candidates, 2)
	assert.Equal(t, night.ID, candidates[0].ID, "chronological order puts the earlier shift first")
	assert.Equal(t, day.ID, candidates[1].ID)
}

func TestGroupsOn_PairConflict(t *testing.T) {
	a := makeShift(t, testDate, model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 16})
	b := makeShift(t, testDate, model.TimeOfDay{Hour: 15}, model.TimeOfDay{Hour: 23})

	groups := GroupsOn(asMap(a, b), testDate)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Shifts, 2)
	assert.Equal(t, a.ID, groups[0].Shifts[0].ID)
	assert.Equal(t, b.ID, groups[0].Shifts[1].ID)
}

func TestGroupsOn_LoneShiftIsNoConflict(t *testing.T) {
	a := makeShift(t, testDate, model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 16})
	assert.Empty(t, GroupsOn(asMap(a), testDate))
}

func TestGroupsOn_ChainDoesNotCollapseIntoOneGroup(t *testing.T) {
	// a overlaps b, b overlaps c, but a and c are disjoint. Pairwise
	// grouping must not merge all three.
	a := makeShift(t, testDate, model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 12})
	b := makeShift(t, testDate, model.TimeOfDay{Hour: 11}, model.TimeOfDay{Hour: 15})
	c := makeShift(t, testDate, model.TimeOfDay{Hour: 14}, model.TimeOfDay{Hour: 18})

	groups := GroupsOn(asMap(a, b, c), testDate)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Shifts, 2)
}

func TestGroupsOn_ThreeWayMutualConflict(t *testing.T) {
	a := makeShift(t, testDate, model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 18})
	b := makeShift(t, testDate, model.TimeOfDay{Hour: 9}, model.TimeOfDay{Hour: 17})
	c := makeShift(t, testDate, model.TimeOfDay{Hour: 10}, model.TimeOfDay{Hour: 16})

	groups := GroupsOn(asMap(a, b, c), testDate)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Shifts, 3)
}

func TestSortChronological_TieBreaksByID(t *testing.T) {
	a := makeShift(t, testDate, model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 16})
	b := makeShift(t, testDate, model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 12})

	first, second := a, b
	if b.ID.String() < a.ID.String() {
		first, second = b, a
	}

	shifts := []*model.ScheduledShift{second, first}
	SortChronological(shifts)
	assert.Equal(t, first.ID, shifts[0].ID)
	assert.Equal(t, second.ID, shifts[1].ID)
}

func TestWindow(t *testing.T) {
	night := makeShift(t, testDate, model.TimeOfDay{Hour: 22}, model.TimeOfDay{Hour: 6})
	day := makeShift(t, testDate, model.TimeOfDay{Hour: 8}, model.TimeOfDay{Hour: 16})

	start, end := Window([]*model.ScheduledShift{night, day})
	assert.Equal(t, day.ActualStart(), start)
	assert.Equal(t, night.ActualEnd(), end)
}
