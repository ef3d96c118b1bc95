package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// SaveLocation inserts or updates a location
func (d *DB) SaveLocation(ctx context.Context, loc *model.Location) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO location (id, name, address)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address
	`, loc.ID, loc.Name, loc.Address)
	if err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}
	return nil
}

// DeleteLocation removes a location by id
func (d *DB) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM location WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	return nil
}

// FetchAllLocations retrieves every location
func (d *DB) FetchAllLocations(ctx context.Context) ([]model.Location, error) {
	rows, err := d.pool.Query(ctx, `SELECT id, name, address FROM location`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var loc model.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Address); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locations, nil
}
