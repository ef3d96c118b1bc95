// Package overlap computes scheduling conflicts between shifts as a pure
// function over their derived time intervals. It has no knowledge of the
// store or of persistence; callers pass in the candidate shifts and get
// back disjoint conflict groups.
package overlap

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// Group is a maximal set of shifts whose intervals pairwise intersect,
// ordered chronologically by actual start, then by ID for determinism.
type Group struct {
	Shifts []*model.ScheduledShift
}

// Overlaps reports whether two shifts intersect in time. Intervals are
// half-open [actualStart, actualEnd), so back-to-back shifts do not
// overlap and zero-length intervals never overlap anything. A shift never
// overlaps itself.
func Overlaps(a, b *model.ScheduledShift) bool {
	if a.ID == b.ID {
		return false
	}
	return a.ActualStart().Before(b.ActualEnd()) && b.ActualStart().Before(a.ActualEnd())
}

// CandidatesFor selects the shifts whose interval could intersect the
// target date: the date's own shifts plus the previous day's, which
// catches overnight spillover into the target date.
func CandidatesFor(shifts map[uuid.UUID]*model.ScheduledShift, date model.Date) []*model.ScheduledShift {
	prev := date.AddDays(-1)
	var out []*model.ScheduledShift
	for _, s := range shifts {
		if s.Date == date || s.Date == prev {
			out = append(out, s)
		}
	}
	SortChronological(out)
	return out
}

// GroupsOn partitions the candidate shifts around a date into conflict
// groups. Only groups with more than one member are returned; a lone
// shift is not a conflict.
func GroupsOn(shifts map[uuid.UUID]*model.ScheduledShift, date model.Date) []Group {
	return partition(CandidatesFor(shifts, date))
}

// partition greedily builds pairwise-overlap groups from chronologically
// sorted candidates. A shift joins a group only if it overlaps every
// current member, so group membership is always a genuine mutual
// conflict, not a chain.
func partition(candidates []*model.ScheduledShift) []Group {
	var groups []Group
	used := make(map[uuid.UUID]bool, len(candidates))

	for i, seed := range candidates {
		if used[seed.ID] {
			continue
		}
		members := []*model.ScheduledShift{seed}
		for _, next := range candidates[i+1:] {
			if used[next.ID] {
				continue
			}
			if overlapsAll(next, members) {
				members = append(members, next)
			}
		}
		if len(members) > 1 {
			for _, m := range members {
				used[m.ID] = true
			}
			groups = append(groups, Group{Shifts: members})
		}
	}
	return groups
}

func overlapsAll(s *model.ScheduledShift, members []*model.ScheduledShift) bool {
	for _, m := range members {
		if !Overlaps(s, m) {
			return false
		}
	}
	return true
}

// SortChronological orders shifts by actual start, breaking ties by ID so
// display order is stable across runs.
func SortChronological(shifts []*model.ScheduledShift) {
	sort.Slice(shifts, func(i, j int) bool {
		si, sj := shifts[i].ActualStart(), shifts[j].ActualStart()
		if !si.Equal(sj) {
			return si.Before(sj)
		}
		return shifts[i].ID.String() < shifts[j].ID.String()
	})
}

// Window returns the [start, end) instants covered by a set of shifts.
// Used by callers that need to query an external calendar for the same
// range the resolver looked at.
func Window(shifts []*model.ScheduledShift) (time.Time, time.Time) {
	var start, end time.Time
	for _, s := range shifts {
		if start.IsZero() || s.ActualStart().Before(start) {
			start = s.ActualStart()
		}
		if end.IsZero() || s.ActualEnd().After(end) {
			end = s.ActualEnd()
		}
	}
	return start, end
}
