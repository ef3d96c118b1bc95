package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// DefaultStackDepth bounds the undo and redo stacks. Oldest frames are
// dropped first; the change-log's own retention is independent of this.
const DefaultStackDepth = 100

// Frame ties a forward operation, its inverse, and the change-log entry
// that recorded it. EntryID lets retention purge exempt entries still
// reachable from a live frame.
type Frame struct {
	Forward Operation
	Inverse Operation
	EntryID uuid.UUID
}

// Stack is an immutable bounded stack of frames. Push and Pop return new
// values so reducers stay pure; the zero value is an empty stack with the
// default depth.
type Stack struct {
	frames []Frame
	depth  int
}

// NewStack returns an empty stack bounded to the given depth.
func NewStack(depth int) Stack {
	if depth <= 0 {
		depth = DefaultStackDepth
	}
	return Stack{depth: depth}
}

func (s Stack) cap() int {
	if s.depth <= 0 {
		return DefaultStackDepth
	}
	return s.depth
}

// Len returns the number of frames.
func (s Stack) Len() int {
	return len(s.frames)
}

// Push returns a stack with f on top, dropping the oldest frame when the
// bound is reached.
func (s Stack) Push(f Frame) Stack {
	frames := s.frames
	if len(frames) >= s.cap() {
		frames = frames[len(frames)-s.cap()+1:]
	}
	next := make([]Frame, len(frames), len(frames)+1)
	copy(next, frames)
	return Stack{frames: append(next, f), depth: s.depth}
}

// Pop returns the top frame and the stack without it. ok is false when
// the stack is empty.
func (s Stack) Pop() (Frame, Stack, bool) {
	if len(s.frames) == 0 {
		return Frame{}, s, false
	}
	top := s.frames[len(s.frames)-1]
	rest := make([]Frame, len(s.frames)-1)
	copy(rest, s.frames[:len(s.frames)-1])
	return top, Stack{frames: rest, depth: s.depth}, true
}

// Peek returns the top frame without removing it.
func (s Stack) Peek() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

// Clear returns an empty stack with the same bound.
func (s Stack) Clear() Stack {
	return Stack{depth: s.depth}
}

// EntryIDs collects the change-log entry IDs referenced by live frames.
func (s Stack) EntryIDs() map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(s.frames))
	for _, f := range s.frames {
		ids[f.EntryID] = true
	}
	return ids
}

// RetentionPolicy selects how long change-log entries are kept.
type RetentionPolicy string

const (
	RetainForever RetentionPolicy = "forever"
	RetainDays    RetentionPolicy = "days"
	RetainWeeks   RetentionPolicy = "weeks"
)

// Retention is the configured change-log retention.
type Retention struct {
	Policy RetentionPolicy
	N      int
}

// Cutoff computes the purge cutoff for the given current time. ok is
// false when the policy keeps everything.
func (r Retention) Cutoff(now time.Time) (time.Time, bool) {
	switch r.Policy {
	case RetainForever, "":
		return time.Time{}, false
	case RetainDays:
		return now.AddDate(0, 0, -r.N), true
	case RetainWeeks:
		return now.AddDate(0, 0, -7*r.N), true
	default:
		return time.Time{}, false
	}
}

// Purge removes entries older than the cutoff, exempting any entry whose
// ID appears in exempt. Entries referenced by live undo/redo frames are
// passed in as the exempt set, so purging never corrupts the stacks; a
// later purge removes them once the stacks have rotated past them.
func Purge(entries []*model.ChangeLogEntry, cutoff time.Time, exempt map[uuid.UUID]bool) []*model.ChangeLogEntry {
	kept := make([]*model.ChangeLogEntry, 0, len(entries))
	for _, e := range entries {
		if e.Timestamp.Before(cutoff) && !exempt[e.ID] {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
