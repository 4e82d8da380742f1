package chatstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/matheus3301/chats/internal/bus"
	"github.com/matheus3301/chats/internal/store"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// CreateChat creates a chat between participantIDs, which must include the
// logged-in user. Repeated ids are collapsed, first occurrence wins. The chat
// and its memberships are written in one transaction.
func (s *ChatStore) CreateChat(ctx context.Context, participantIDs []string) (Chat, error) {
	user := s.User()
	if user == "" {
		s.logger.Debug("create chat ignored: not logged in")
		return Chat{}, ErrNotLoggedIn
	}
	ids := lo.Uniq(lo.Compact(participantIDs))
	if !lo.Contains(ids, user) {
		s.logger.Debug("create chat ignored: caller not a participant",
			zap.String("user", user), zap.Strings("participants", ids))
		return Chat{}, ErrNotParticipant
	}

	row := &store.Chat{ID: s.opts.NewID(), CreatedAt: s.opts.Now().UnixMilli()}
	if err := s.db.CreateChat(ctx, row, ids); err != nil {
		s.logger.Error("failed to create chat", zap.Error(err), zap.Strings("participants", ids))
		return Chat{}, fmt.Errorf("create chat: %w", err)
	}

	c := &chat{id: row.ID, participants: ids}
	s.mutate(func() {
		// The user may have switched while we were writing.
		if s.user == user {
			s.apply(addChat(row.ID, ids))
		}
	})

	s.logger.Info("chat created", zap.String("chat_id", row.ID), zap.Int("participants", len(ids)))
	s.publish(bus.KindChatCreated, map[string]string{"chat_id": row.ID})
	return c.snapshot(), nil
}

// SendMessage stores a message in chatID. text may be blank only when img
// has a URI. Neither the chat's existence nor the sender's membership is checked.
//
// Sends to one chat are serialized, and a message never gets a timestamp
// older than the last cached message of its chat.
func (s *ChatStore) SendMessage(ctx context.Context, chatID, text, senderID string, img *Image) (Message, error) {
	if err := validateArgs(sendArgs{ChatID: chatID, SenderID: senderID}); err != nil {
		return Message{}, err
	}
	if strings.TrimSpace(text) == "" && (img == nil || img.URI == "") {
		s.logger.Debug("send ignored: empty message", zap.String("chat_id", chatID))
		return Message{}, ErrEmptyMessage
	}
	// An image alongside text still needs its URI.
	if img != nil {
		if err := validateArgs(img); err != nil {
			return Message{}, err
		}
	}

	unlock := s.chatMu.lock(chatID)
	defer unlock()

	ts := s.opts.Now().UnixMilli()
	s.mu.RLock()
	if c := s.findChat(chatID); c != nil {
		ts = max(ts, c.lastTimestamp())
	}
	s.mu.RUnlock()

	row := &store.Message{
		ID:          s.opts.NewID(),
		ChatID:      chatID,
		SenderID:    senderID,
		Text:        text,
		Timestamp:   ts,
		MessageType: store.TypeText,
		Status:      store.StatusSent,
	}
	if img != nil {
		row.MessageType = store.TypeImage
		row.ImageURI = img.URI
		row.ImagePreviewURI = img.PreviewURI
	}
	if err := s.db.InsertMessage(ctx, row); err != nil {
		s.logger.Error("failed to send message", zap.Error(err), zap.String("chat_id", chatID))
		return Message{}, fmt.Errorf("send message: %w", err)
	}

	msg := messageFromRow(*row, nil)
	s.mutate(func() { s.apply(addMessage(msg)) })

	s.publish(bus.KindMessageSent, map[string]string{"chat_id": chatID, "message_id": msg.ID})
	return msg, nil
}

// MarkMessageAsRead records that userID read messageID and marks the message
// read. The receipt and the status change are one transaction.
//
// Unless Options.DedupeReceipts is set, every call adds a receipt, so the
// same reader can appear more than once in ReadBy.
func (s *ChatStore) MarkMessageAsRead(ctx context.Context, messageID, userID string) (ReadEntry, error) {
	if err := validateArgs(readArgs{MessageID: messageID, UserID: userID}); err != nil {
		return ReadEntry{}, err
	}

	unlock := s.chatMu.lock("read:" + messageID)
	defer unlock()

	if s.opts.DedupeReceipts {
		existing, err := s.db.FirstReceipt(ctx, messageID, userID)
		if err != nil {
			s.logger.Error("failed to look up receipt", zap.Error(err), zap.String("message_id", messageID))
			return ReadEntry{}, fmt.Errorf("mark as read: %w", err)
		}
		if existing != nil {
			s.logger.Debug("already read", zap.String("message_id", messageID), zap.String("user", userID))
			return ReadEntry{UserID: userID, Timestamp: existing.Timestamp}, nil
		}
	}

	r := &store.ReadReceipt{
		ID:        s.opts.NewID(),
		MessageID: messageID,
		UserID:    userID,
		Timestamp: s.opts.Now().UnixMilli(),
	}
	if err := s.db.RecordRead(ctx, r); err != nil {
		s.logger.Error("failed to mark message read", zap.Error(err),
			zap.String("message_id", messageID), zap.String("user", userID))
		return ReadEntry{}, fmt.Errorf("mark as read: %w", err)
	}

	entry := ReadEntry{UserID: userID, Timestamp: r.Timestamp}
	s.mutate(func() { s.apply(markRead(messageID, entry)) })

	s.publish(bus.KindMessageRead, map[string]string{"message_id": messageID, "user": userID})
	return entry, nil
}

// MarkChatAsRead marks every message in a cached chat that userID did not
// send and has not read yet. It stops at the first failure and returns how
// many messages were marked.
func (s *ChatStore) MarkChatAsRead(ctx context.Context, chatID, userID string) (int, error) {
	c, ok := s.Chat(chatID)
	if !ok {
		return 0, nil
	}
	marked := 0
	for _, m := range c.Messages {
		if m.SenderID == userID || m.ReadByUser(userID) {
			continue
		}
		if _, err := s.MarkMessageAsRead(ctx, m.ID, userID); err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}

// SearchMessages finds messages containing query among the cached chats,
// newest first. Results carry no read receipts.
func (s *ChatStore) SearchMessages(ctx context.Context, query string, limit int) ([]Message, error) {
	s.mu.RLock()
	ids := lo.Map(s.chats, func(c *chat, _ int) string { return c.id })
	s.mu.RUnlock()

	rows, err := s.db.SearchMessages(ctx, query, ids, limit)
	if err != nil {
		s.logger.Error("failed to search messages", zap.Error(err))
		return nil, fmt.Errorf("search messages: %w", err)
	}
	return lo.Map(rows, func(m store.Message, _ int) Message {
		return messageFromRow(m, nil)
	}), nil
}
