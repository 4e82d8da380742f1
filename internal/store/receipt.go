package store

import (
	"context"
	"database/sql"
	"fmt"
)

// RecordRead inserts the receipt and marks its message read, atomically.
// The status is set to read whatever it was before.
func (db *DB) RecordRead(ctx context.Context, r *ReadReceipt) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO read_receipts (id, message_id, user_id, timestamp) VALUES (?, ?, ?, ?)`,
			r.ID, r.MessageID, r.UserID, r.Timestamp); err != nil {
			return fmt.Errorf("insert receipt: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE messages SET status = ? WHERE id = ?`,
			StatusRead, r.MessageID); err != nil {
			return fmt.Errorf("update message status: %w", err)
		}
		return nil
	})
}

// ListReceipts returns the receipts of the given messages. Each message's
// receipts come back oldest first; ids are queried in batches.
func (db *DB) ListReceipts(ctx context.Context, messageIDs []string) ([]ReadReceipt, error) {
	var receipts []ReadReceipt
	for _, b := range inBatches(messageIDs) {
		rows, err := db.QueryContext(ctx, `
			SELECT id, message_id, user_id, timestamp
			FROM read_receipts
			WHERE message_id IN (`+b.placeholders+`)
			ORDER BY timestamp ASC, rowid ASC`, b.args...)
		if err != nil {
			return nil, err
		}
		receipts, err = scanReceipts(rows, receipts)
		if err != nil {
			return nil, err
		}
	}
	return receipts, nil
}

func scanReceipts(rows *sql.Rows, into []ReadReceipt) ([]ReadReceipt, error) {
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var r ReadReceipt
		if err := rows.Scan(&r.ID, &r.MessageID, &r.UserID, &r.Timestamp); err != nil {
			return nil, err
		}
		into = append(into, r)
	}
	return into, rows.Err()
}

// FirstReceipt returns the earliest receipt userID left on messageID, or nil.
func (db *DB) FirstReceipt(ctx context.Context, messageID, userID string) (*ReadReceipt, error) {
	var r ReadReceipt
	err := db.QueryRowContext(ctx, `
		SELECT id, message_id, user_id, timestamp
		FROM read_receipts
		WHERE message_id = ? AND user_id = ?
		ORDER BY timestamp ASC, rowid ASC
		LIMIT 1`, messageID, userID).
		Scan(&r.ID, &r.MessageID, &r.UserID, &r.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
