package store

import (
	"context"
	"database/sql"
)

// InsertMessage appends a message row. Chat existence is not checked.
func (db *DB) InsertMessage(ctx context.Context, m *Message) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO messages (id, chat_id, sender_id, text, timestamp, message_type, image_uri, image_preview_uri, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ChatID, m.SenderID, m.Text, m.Timestamp, m.MessageType,
		nullString(m.ImageURI), nullString(m.ImagePreviewURI), m.Status)
	return err
}

// ListMessages returns all messages of a chat, oldest first. Messages sharing
// a timestamp keep insertion order.
func (db *DB) ListMessages(ctx context.Context, chatID string) ([]Message, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, chat_id, sender_id, text, timestamp, message_type, image_uri, image_preview_uri, status
		FROM messages
		WHERE chat_id = ?
		ORDER BY timestamp ASC, rowid ASC`, chatID)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows, nil)
}

// GetMessage returns a message by id, or nil if it does not exist.
func (db *DB) GetMessage(ctx context.Context, id string) (*Message, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, chat_id, sender_id, text, timestamp, message_type, image_uri, image_preview_uri, status
		FROM messages WHERE id = ?`, id)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (Message, error) {
	var (
		m              Message
		image, preview sql.NullString
	)
	err := s.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Text, &m.Timestamp, &m.MessageType, &image, &preview, &m.Status)
	m.ImageURI = image.String
	m.ImagePreviewURI = preview.String
	return m, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func scanMessages(rows *sql.Rows, into []Message) ([]Message, error) {
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		into = append(into, m)
	}
	return into, rows.Err()
}
