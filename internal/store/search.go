package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchMessages returns messages whose text contains query (case-insensitive
// for ASCII), newest first, restricted to chatIDs. An empty chatIDs searches
// nothing.
func (db *DB) SearchMessages(ctx context.Context, query string, chatIDs []string, limit int) ([]Message, error) {
	if len(chatIDs) == 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	pattern := "%" + likeEscaper.Replace(query) + "%"
	var msgs []Message
	for _, b := range inBatches(chatIDs) {
		args := append([]any{pattern}, b.args...)
		args = append(args, limit)
		rows, err := db.QueryContext(ctx, `
			SELECT id, chat_id, sender_id, text, timestamp, message_type, image_uri, image_preview_uri, status
			FROM messages
			WHERE text LIKE ? ESCAPE '\' AND chat_id IN (`+b.placeholders+`)
			ORDER BY timestamp DESC
			LIMIT ?`, args...)
		if err != nil {
			return nil, err
		}
		msgs, err = scanMessages(rows, msgs)
		if err != nil {
			return nil, err
		}
	}

	// Each batch is already newest first; merge them and keep the top limit.
	slices.SortStableFunc(msgs, func(a, b Message) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}
