package store

import "context"

// Stats holds row counts for the whole database.
type Stats struct {
	Chats    int64
	Messages int64
	Receipts int64
}

// Stats counts chats, messages and read receipts.
func (db *DB) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM chats),
			(SELECT COUNT(*) FROM messages),
			(SELECT COUNT(*) FROM read_receipts)`).
		Scan(&s.Chats, &s.Messages, &s.Receipts)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
