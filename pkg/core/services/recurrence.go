// Package services holds stateless domain services used by the CLI before
// actions enter the store. They perform no I/O of their own.
package services

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// MaxRecurrenceDates caps a single expansion. Bulk-adding more than a
// year of shifts in one command is almost certainly a typo in the rule.
const MaxRecurrenceDates = 366

// ExpandRule expands an RFC 5545 recurrence rule into at most limit
// concrete dates, starting on the first occurrence on or after start.
// Rules carrying their own COUNT or UNTIL may produce fewer.
func ExpandRule(logger *zap.Logger, ruleStr string, start model.Date, limit int) ([]model.Date, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("occurrence limit must be positive, got %d", limit)
	}
	if limit > MaxRecurrenceDates {
		return nil, fmt.Errorf("occurrence limit must be at most %d, got %d", MaxRecurrenceDates, limit)
	}

	rule, err := rrule.StrToRRule(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recurrence rule %q: %w", ruleStr, err)
	}
	rule.DTStart(startOfDayUTC(start))

	logger.Debug("Expanding recurrence rule",
		zap.String("rule", ruleStr),
		zap.String("start", start.String()),
		zap.Int("limit", limit))

	var dates []model.Date
	next := rule.Iterator()
	for len(dates) < limit {
		occurrence, ok := next()
		if !ok {
			break
		}
		dates = appendDate(dates, model.DateOf(occurrence))
	}

	logger.Debug("Recurrence rule expanded", zap.Int("dates", len(dates)))
	return dates, nil
}

// ExpandRuleBetween expands a recurrence rule into every date from from
// through to, both inclusive.
func ExpandRuleBetween(logger *zap.Logger, ruleStr string, from, to model.Date) ([]model.Date, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s is before start %s", to, from)
	}

	rule, err := rrule.StrToRRule(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recurrence rule %q: %w", ruleStr, err)
	}
	rule.DTStart(startOfDayUTC(from))

	occurrences := rule.Between(startOfDayUTC(from), endOfDayUTC(to), true)
	if len(occurrences) > MaxRecurrenceDates {
		return nil, fmt.Errorf("rule produces %d dates in range, maximum is %d", len(occurrences), MaxRecurrenceDates)
	}

	var dates []model.Date
	for _, occurrence := range occurrences {
		dates = appendDate(dates, model.DateOf(occurrence))
	}
	return dates, nil
}

// ValidateRule checks a recurrence rule parses without expanding it. Used
// by config validation for shift templates.
func ValidateRule(ruleStr string) error {
	if _, err := rrule.StrToRRule(ruleStr); err != nil {
		return fmt.Errorf("failed to parse recurrence rule %q: %w", ruleStr, err)
	}
	return nil
}

// appendDate appends d unless it repeats the previous date. Occurrences
// arrive in order, so adjacent comparison is enough to dedupe rules that
// fire more than once a day.
func appendDate(dates []model.Date, d model.Date) []model.Date {
	if len(dates) > 0 && dates[len(dates)-1] == d {
		return dates
	}
	return append(dates, d)
}

func startOfDayUTC(d model.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func endOfDayUTC(d model.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 0, time.UTC)
}
