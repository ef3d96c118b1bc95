package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

func date(y int, m time.Month, d int) model.Date {
	return model.Date{Year: y, Month: m, Day: d}
}

func TestExpandRule_WeeklyByDay(t *testing.T) {
	// 2025-03-10 is a Monday.
	dates, err := ExpandRule(zap.NewNop(), "FREQ=WEEKLY;BYDAY=MO,WE", date(2025, time.March, 10), 5)
	require.NoError(t, err)

	expected := []model.Date{
		date(2025, time.March, 10),
		date(2025, time.March, 12),
		date(2025, time.March, 17),
		date(2025, time.March, 19),
		date(2025, time.March, 24),
	}
	assert.Equal(t, expected, dates)
}

func TestExpandRule_RuleCountWinsOverLimit(t *testing.T) {
	dates, err := ExpandRule(zap.NewNop(), "FREQ=DAILY;COUNT=3", date(2025, time.March, 10), 10)
	require.NoError(t, err)

	expected := []model.Date{
		date(2025, time.March, 10),
		date(2025, time.March, 11),
		date(2025, time.March, 12),
	}
	assert.Equal(t, expected, dates)
}

func TestExpandRule_InvalidRule(t *testing.T) {
	_, err := ExpandRule(zap.NewNop(), "FREQ=SOMETIMES", date(2025, time.March, 10), 5)
	assert.Error(t, err)
}

func TestExpandRule_LimitValidation(t *testing.T) {
	tests := []struct {
		name  string
		limit int
	}{
		{name: "zero", limit: 0},
		{name: "negative", limit: -4},
		{name: "over cap", limit: MaxRecurrenceDates + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpandRule(zap.NewNop(), "FREQ=DAILY", date(2025, time.March, 10), tt.limit)
			assert.Error(t, err)
		})
	}
}

func TestExpandRuleBetween_InclusiveBounds(t *testing.T) {
	// Sundays between 2025-03-10 and 2025-03-30: 16th, 23rd, 30th.
	dates, err := ExpandRuleBetween(zap.NewNop(), "FREQ=WEEKLY;BYDAY=SU",
		date(2025, time.March, 10), date(2025, time.March, 30))
	require.NoError(t, err)

	expected := []model.Date{
		date(2025, time.March, 16),
		date(2025, time.March, 23),
		date(2025, time.March, 30),
	}
	assert.Equal(t, expected, dates)
}

func TestExpandRuleBetween_ReversedRange(t *testing.T) {
	_, err := ExpandRuleBetween(zap.NewNop(), "FREQ=DAILY",
		date(2025, time.March, 10), date(2025, time.March, 9))
	assert.Error(t, err)
}

func TestValidateRule(t *testing.T) {
	assert.NoError(t, ValidateRule("FREQ=WEEKLY;BYDAY=MO,TU;INTERVAL=2"))
	assert.Error(t, ValidateRule("not a rule"))
}
