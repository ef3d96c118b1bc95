package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// SaveShift inserts or updates a scheduled shift
func (d *DB) SaveShift(ctx context.Context, shift *model.ScheduledShift) error {
	kind, from, to := encodeDuration(shift.SnapshotDuration)
	_, err := d.pool.Exec(ctx, `
		INSERT INTO scheduled_shift (
			id, external_event_id, shift_type_id, date, notes,
			snapshot_symbol, snapshot_title, snapshot_description,
			snapshot_duration_kind, snapshot_from_minutes, snapshot_to_minutes,
			snapshot_location_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			external_event_id = EXCLUDED.external_event_id,
			shift_type_id = EXCLUDED.shift_type_id,
			date = EXCLUDED.date,
			notes = EXCLUDED.notes,
			snapshot_symbol = EXCLUDED.snapshot_symbol,
			snapshot_title = EXCLUDED.snapshot_title,
			snapshot_description = EXCLUDED.snapshot_description,
			snapshot_duration_kind = EXCLUDED.snapshot_duration_kind,
			snapshot_from_minutes = EXCLUDED.snapshot_from_minutes,
			snapshot_to_minutes = EXCLUDED.snapshot_to_minutes,
			snapshot_location_name = EXCLUDED.snapshot_location_name
	`, shift.ID, shift.ExternalEventID, shift.ShiftTypeID, dateOnly(shift.Date), shift.Notes,
		shift.SnapshotSymbol, shift.SnapshotTitle, shift.SnapshotDescription,
		kind, from, to, shift.SnapshotLocationName)
	if err != nil {
		return fmt.Errorf("failed to save shift: %w", err)
	}
	return nil
}

// DeleteShift removes a scheduled shift by id
func (d *DB) DeleteShift(ctx context.Context, id uuid.UUID) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM scheduled_shift WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return nil
}

// FetchAllShifts retrieves every scheduled shift
func (d *DB) FetchAllShifts(ctx context.Context) ([]model.ScheduledShift, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, external_event_id, shift_type_id, date, notes,
		       snapshot_symbol, snapshot_title, snapshot_description,
		       snapshot_duration_kind, snapshot_from_minutes, snapshot_to_minutes,
		       snapshot_location_name
		FROM scheduled_shift
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []model.ScheduledShift
	for rows.Next() {
		var s model.ScheduledShift
		var date time.Time
		var kind string
		var from, to int
		if err := rows.Scan(&s.ID, &s.ExternalEventID, &s.ShiftTypeID, &date, &s.Notes,
			&s.SnapshotSymbol, &s.SnapshotTitle, &s.SnapshotDescription,
			&kind, &from, &to, &s.SnapshotLocationName); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		s.Date = model.DateOf(date)
		s.SnapshotDuration = decodeDuration(kind, from, to)
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// encodeDuration flattens the duration union into columns. Times are
// stored as minutes of day.
func encodeDuration(dur model.Duration) (kind string, from, to int) {
	if dur.Kind == model.DurationAllDay {
		return string(model.DurationAllDay), 0, 0
	}
	return string(model.DurationScheduled), dur.From.MinuteOfDay(), dur.To.MinuteOfDay()
}

func decodeDuration(kind string, from, to int) model.Duration {
	if kind == string(model.DurationAllDay) {
		return model.AllDay()
	}
	return model.Duration{
		Kind: model.DurationScheduled,
		From: model.TimeOfDay{Hour: from / 60, Minute: from % 60},
		To:   model.TimeOfDay{Hour: to / 60, Minute: to % 60},
	}
}

func dateOnly(d model.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}
