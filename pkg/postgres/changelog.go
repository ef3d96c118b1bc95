package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/shiftbook/pkg/core/model"
)

// SaveChangeLogEntry inserts an audit entry. Entries are immutable, so a
// conflicting id is left untouched.
func (d *DB) SaveChangeLogEntry(ctx context.Context, entry *model.ChangeLogEntry) error {
	before, err := encodeSnapshot(entry.Before)
	if err != nil {
		return fmt.Errorf("failed to encode before snapshot: %w", err)
	}
	after, err := encodeSnapshot(entry.After)
	if err != nil {
		return fmt.Errorf("failed to encode after snapshot: %w", err)
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO change_log_entry (
			id, ts, kind, before_snapshot, after_snapshot, reason, actor, shift_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, entry.ID, entry.Timestamp.UTC(), string(entry.Kind), before, after,
		entry.Reason, entry.Actor, dateOnly(entry.ShiftDate))
	if err != nil {
		return fmt.Errorf("failed to save change log entry: %w", err)
	}
	return nil
}

// DeleteChangeLogEntries removes the given entries in one statement
func (d *DB) DeleteChangeLogEntries(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := d.pool.Exec(ctx, `DELETE FROM change_log_entry WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to delete change log entries: %w", err)
	}
	return nil
}

// FetchAllChangeLogEntries retrieves the audit log in timestamp order
func (d *DB) FetchAllChangeLogEntries(ctx context.Context) ([]*model.ChangeLogEntry, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, ts, kind, before_snapshot, after_snapshot, reason, actor, shift_date
		FROM change_log_entry
		ORDER BY ts, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query change log entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.ChangeLogEntry
	for rows.Next() {
		var e model.ChangeLogEntry
		var kind string
		var before, after []byte
		var shiftDate time.Time
		if err := rows.Scan(&e.ID, &e.Timestamp, &kind, &before, &after,
			&e.Reason, &e.Actor, &shiftDate); err != nil {
			return nil, fmt.Errorf("failed to scan change log entry: %w", err)
		}
		e.Kind = model.ChangeKind(kind)
		e.ShiftDate = model.DateOf(shiftDate)
		if e.Before, err = decodeSnapshot(before); err != nil {
			return nil, fmt.Errorf("failed to decode before snapshot of %s: %w", e.ID, err)
		}
		if e.After, err = decodeSnapshot(after); err != nil {
			return nil, fmt.Errorf("failed to decode after snapshot of %s: %w", e.ID, err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change log entries: %w", err)
	}

	return entries, nil
}

// encodeSnapshot marshals a snapshot for a JSONB column. nil stays NULL.
func encodeSnapshot(snap *model.ShiftSnapshot) ([]byte, error) {
	if snap == nil {
		return nil, nil
	}
	return json.Marshal(snap)
}

func decodeSnapshot(data []byte) (*model.ShiftSnapshot, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var snap model.ShiftSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
