package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// SaveShiftType inserts or updates a shift type
func (d *DB) SaveShiftType(ctx context.Context, st *model.ShiftType) error {
	kind, from, to := encodeDuration(st.Duration)
	var locationID *uuid.UUID
	if st.LocationID != uuid.Nil {
		locationID = &st.LocationID
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO shift_type (
			id, symbol, title, description,
			duration_kind, from_minutes, to_minutes, location_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			duration_kind = EXCLUDED.duration_kind,
			from_minutes = EXCLUDED.from_minutes,
			to_minutes = EXCLUDED.to_minutes,
			location_id = EXCLUDED.location_id
	`, st.ID, st.Symbol, st.Title, st.Description, kind, from, to, locationID)
	if err != nil {
		return fmt.Errorf("failed to save shift type: %w", err)
	}
	return nil
}

// DeleteShiftType removes a shift type by id
func (d *DB) DeleteShiftType(ctx context.Context, id uuid.UUID) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM shift_type WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift type: %w", err)
	}
	return nil
}

// FetchAllShiftTypes retrieves every shift type
func (d *DB) FetchAllShiftTypes(ctx context.Context) ([]model.ShiftType, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, symbol, title, description,
		       duration_kind, from_minutes, to_minutes, location_id
		FROM shift_type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift types: %w", err)
	}
	defer rows.Close()

	var types []model.ShiftType
	for rows.Next() {
		var st model.ShiftType
		var kind string
		var from, to int
		var locationID *uuid.UUID
		if err := rows.Scan(&st.ID, &st.Symbol, &st.Title, &st.Description,
			&kind, &from, &to, &locationID); err != nil {
			return nil, fmt.Errorf("failed to scan shift type: %w", err)
		}
		st.Duration = decodeDuration(kind, from, to)
		if locationID != nil {
			st.LocationID = *locationID
		}
		types = append(types, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift types: %w", err)
	}

	return types, nil
}
