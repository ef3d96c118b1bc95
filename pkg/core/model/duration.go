package model

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock hour and minute.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// NewTimeOfDay validates hour and minute ranges.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 {
		return TimeOfDay{}, &ValidationError{Field: "hour", Reason: fmt.Sprintf("must be 0-23, got %d", hour)}
	}
	if minute < 0 || minute > 59 {
		return TimeOfDay{}, &ValidationError{Field: "minute", Reason: fmt.Sprintf("must be 0-59, got %d", minute)}
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// ParseTimeOfDay parses a 15:04 formatted time.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("failed to parse time %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// MinuteOfDay returns the minutes elapsed since midnight.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// String formats the time as 15:04.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// DurationKind discriminates the duration union.
type DurationKind string

const (
	// DurationAllDay marks a shift covering its whole calendar date.
	DurationAllDay DurationKind = "all_day"
	// DurationScheduled marks a shift with explicit start and end times.
	DurationScheduled DurationKind = "scheduled"
)

// Duration is the tagged union of all-day and scheduled time ranges.
// For a scheduled duration with To <= From the shift runs overnight and
// its real end falls on the following calendar day.
type Duration struct {
	Kind DurationKind
	From TimeOfDay
	To   TimeOfDay
}

// AllDay returns the all-day duration.
func AllDay() Duration {
	return Duration{Kind: DurationAllDay}
}

// Scheduled builds a scheduled duration. Equal start and end is rejected:
// it is ambiguous between an empty shift and a full 24h overnight one.
func Scheduled(from, to TimeOfDay) (Duration, error) {
	if from == to {
		return Duration{}, &ValidationError{Field: "duration", Reason: fmt.Sprintf("start and end must differ, both are %s", from)}
	}
	return Duration{Kind: DurationScheduled, From: from, To: to}, nil
}

// IsOvernight reports whether a scheduled duration ends on the next day.
func (d Duration) IsOvernight() bool {
	return d.Kind == DurationScheduled && d.To.MinuteOfDay() <= d.From.MinuteOfDay()
}

// Start returns the instant the duration begins on the given date.
func (d Duration) Start(date Date) time.Time {
	switch d.Kind {
	case DurationAllDay:
		return date.At(TimeOfDay{})
	case DurationScheduled:
		return date.At(d.From)
	default:
		panic(fmt.Sprintf("unknown duration kind %q", d.Kind))
	}
}

// End returns the half-open end instant of the duration on the given date.
// All-day shifts end at midnight of the next day; overnight shifts end on
// the day after their date.
func (d Duration) End(date Date) time.Time {
	switch d.Kind {
	case DurationAllDay:
		return date.AddDays(1).At(TimeOfDay{})
	case DurationScheduled:
		if d.IsOvernight() {
			return date.AddDays(1).At(d.To)
		}
		return date.At(d.To)
	default:
		panic(fmt.Sprintf("unknown duration kind %q", d.Kind))
	}
}

// String formats the duration for display.
func (d Duration) String() string {
	switch d.Kind {
	case DurationAllDay:
		return "all day"
	case DurationScheduled:
		if d.IsOvernight() {
			return fmt.Sprintf("%s - %s (+1d)", d.From, d.To)
		}
		return fmt.Sprintf("%s - %s", d.From, d.To)
	default:
		panic(fmt.Sprintf("unknown duration kind %q", d.Kind))
	}
}
