package store

import (
	"context"
	"database/sql"
	"time"
)

// SetState stores a key/value pair in app_state.
func (db *DB) SetState(ctx context.Context, key, value string) error {
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO app_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	return err
}

// GetState returns the value stored under key, or "" if unset.
func (db *DB) GetState(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// DeleteState removes key from app_state. Missing keys are not an error.
func (db *DB) DeleteState(ctx context.Context, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM app_state WHERE key = ?`, key)
	return err
}
