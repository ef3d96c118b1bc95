package model

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxSymbolLen      = 20
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

// ShiftType is a reusable shift template: a short symbol for the calendar
// grid, a title, an optional description, a duration and an owning
// location. The location is a weak reference held as an ID: deleting a
// location is blocked while shift types still point at it.
type ShiftType struct {
	ID          uuid.UUID
	Symbol      string
	Title       string
	Description string
	Duration    Duration
	LocationID  uuid.UUID
}

// NewShiftType validates and builds a shift type with a fresh identity.
func NewShiftType(symbol, title, description string, duration Duration, locationID uuid.UUID) (*ShiftType, error) {
	symbol = strings.TrimSpace(symbol)
	title = strings.TrimSpace(title)
	if n := utf8.RuneCountInString(symbol); n < 1 || n > maxSymbolLen {
		return nil, &ValidationError{Field: "symbol", Reason: fmt.Sprintf("must be 1-%d characters, got %d", maxSymbolLen, n)}
	}
	if n := utf8.RuneCountInString(title); n < 1 || n > maxTitleLen {
		return nil, &ValidationError{Field: "title", Reason: fmt.Sprintf("must be 1-%d characters, got %d", maxTitleLen, n)}
	}
	if n := utf8.RuneCountInString(description); n > maxDescriptionLen {
		return nil, &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at most %d characters, got %d", maxDescriptionLen, n)}
	}
	if duration.Kind == "" {
		return nil, &ValidationError{Field: "duration", Reason: "must be set"}
	}
	return &ShiftType{
		ID:          uuid.New(),
		Symbol:      symbol,
		Title:       title,
		Description: description,
		Duration:    duration,
		LocationID:  locationID,
	}, nil
}
