package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateChat inserts the chat and one membership row per participant in a
// single transaction. Participant order is kept in the position column.
func (db *DB) CreateChat(ctx context.Context, c *Chat, participants []string) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chats (id, created_at) VALUES (?, ?)`,
			c.ID, c.CreatedAt); err != nil {
			return fmt.Errorf("insert chat %q: %w", c.ID, err)
		}
		for i, userID := range participants {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO chat_participants (chat_id, user_id, position) VALUES (?, ?, ?)`,
				c.ID, userID, i); err != nil {
				return fmt.Errorf("insert participant %q: %w", userID, err)
			}
		}
		return nil
	})
}

// GetChat returns a single chat by id, or nil if it does not exist.
func (db *DB) GetChat(ctx context.Context, id string) (*Chat, error) {
	var c Chat
	err := db.QueryRowContext(ctx, `SELECT id, created_at FROM chats WHERE id = ?`, id).
		Scan(&c.ID, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ChatIDsForUser returns the ids of every chat userID is a member of, in
// membership insertion order. Ids may reference chats that no longer exist.
func (db *DB) ChatIDsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT chat_id FROM chat_participants WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListParticipants returns a chat's member ids in the order they were given
// at creation.
func (db *DB) ListParticipants(ctx context.Context, chatID string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT user_id FROM chat_participants WHERE chat_id = ? ORDER BY position ASC, id ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
