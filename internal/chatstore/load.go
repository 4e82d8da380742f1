package chatstore

import (
	"context"
	"fmt"

	"github.com/matheus3301/chats/internal/bus"
	"github.com/matheus3301/chats/internal/status"
	"github.com/matheus3301/chats/internal/store"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SetUser switches the projection to userID and loads its chats. An empty
// userID logs out and clears the projection. Calling it again with the
// current identity does nothing; use Reload to refresh.
//
// An in-flight load for the previous identity is cancelled, and its results
// are dropped if they still arrive.
func (s *ChatStore) SetUser(ctx context.Context, userID string) error {
	changed := false
	s.mutate(func() {
		if userID == s.user {
			return
		}
		changed = true
		s.user = userID
		s.chats = nil
		s.journal = nil
		s.gen++
		if s.cancelLoad != nil {
			s.cancelLoad()
			s.cancelLoad = nil
		}
		if userID == "" {
			s.transition(status.LoggedOut)
		}
	})
	if !changed {
		return nil
	}
	if userID == "" {
		s.logger.Info("logged out, chats cleared")
		s.publish(bus.KindChatsCleared, nil)
		return nil
	}
	return s.Reload(ctx)
}

// Reload rebuilds the projection for the current user from the store. On
// failure the previous projection is kept and the state becomes FAILED.
func (s *ChatStore) Reload(ctx context.Context) error {
	var (
		userID  string
		gen     uint64
		loadCtx context.Context
		cancel  context.CancelFunc
	)
	s.mutate(func() {
		userID = s.user
		if userID == "" {
			return
		}
		if s.cancelLoad != nil {
			s.cancelLoad()
		}
		s.gen++
		gen = s.gen
		s.journal = nil
		loadCtx, cancel = context.WithCancel(ctx)
		s.cancelLoad = cancel
		s.transition(status.Loading)
	})
	if userID == "" {
		return ErrNotLoggedIn
	}
	defer cancel()

	chats, err := s.fetch(loadCtx, userID)

	stale := false
	s.mutate(func() {
		if gen != s.gen {
			stale = true
			return
		}
		s.cancelLoad = nil
		if err != nil {
			// The kept projection already holds every write made meanwhile.
			s.journal = nil
			s.transition(status.Failed)
			return
		}
		// Writes that finished while the load ran may be missing from what
		// it read.
		chats = s.replay(chats)
		s.chats = chats
		s.transition(status.Ready)
	})

	switch {
	case stale:
		s.logger.Debug("discarding superseded load", zap.String("user", userID))
		return ErrSuperseded
	case err != nil:
		s.logger.Error("failed to load chats", zap.Error(err), zap.String("user", userID))
		s.publish(bus.KindChatsLoadFailed, map[string]string{"user": userID, "error": err.Error()})
		return fmt.Errorf("load chats for %q: %w", userID, err)
	}
	s.logger.Info("chats loaded", zap.String("user", userID), zap.Int("chats", len(chats)))
	s.publish(bus.KindChatsLoaded, map[string]int{"chats": len(chats)})
	return nil
}

// fetch reads every chat userID belongs to. Chats are fetched concurrently;
// the first error cancels the rest and nothing is returned.
func (s *ChatStore) fetch(ctx context.Context, userID string) ([]*chat, error) {
	ids, err := s.db.ChatIDsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	ids = lo.Uniq(ids)

	loaded := make([]*chat, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.LoadConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			c, err := s.fetchChat(gctx, id)
			if err != nil {
				return fmt.Errorf("chat %q: %w", id, err)
			}
			loaded[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lo.Compact(loaded), nil
}

// fetchChat returns nil for a membership whose chat row is gone.
func (s *ChatStore) fetchChat(ctx context.Context, id string) (*chat, error) {
	row, err := s.db.GetChat(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if row == nil {
		s.logger.Debug("skipping membership of missing chat", zap.String("chat_id", id))
		return nil, nil
	}

	participants, err := s.db.ListParticipants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	rows, err := s.db.ListMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	receipts, err := s.db.ListReceipts(ctx, lo.Map(rows, func(m store.Message, _ int) string {
		return m.ID
	}))
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	byMessage := lo.GroupBy(receipts, func(r store.ReadReceipt) string {
		return r.MessageID
	})

	c := &chat{
		id:           row.ID,
		participants: participants,
		messages:     make([]Message, len(rows)),
	}
	for i, m := range rows {
		c.messages[i] = messageFromRow(m, byMessage[m.ID])
	}
	return c, nil
}
