package model

import "fmt"

// ValidationError rejects a malformed domain value before it enters state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError blocks an operation that would break referential integrity
// or reports a detected shift overlap.
type ConflictError struct {
	Reason string
	Refs   []string
}

func (e *ConflictError) Error() string {
	if len(e.Refs) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s (referenced by %d entries)", e.Reason, len(e.Refs))
}

// NotFoundError marks an action referencing a stale or unknown id.
// Treated as a surfaced warning, never a crash.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// EffectError wraps an external I/O failure surfaced by middleware.
type EffectError struct {
	Op  string
	Err error
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *EffectError) Unwrap() error {
	return e.Err
}
