// Package chatstore keeps the logged-in user's chats, messages and read
// receipts in memory and in step with the SQLite store.
//
// The cached projection is rebuilt from the store whenever the identity
// changes and is then patched by the store's own writes. Writes made by
// other processes are not picked up until the next reload.
package chatstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/chats/internal/bus"
	"github.com/matheus3301/chats/internal/status"
	"github.com/matheus3301/chats/internal/store"
	"go.uber.org/zap"
)

// Store is the persistence the chat store reads and writes. *store.DB
// implements it.
type Store interface {
	ChatIDsForUser(ctx context.Context, userID string) ([]string, error)
	GetChat(ctx context.Context, id string) (*store.Chat, error)
	ListParticipants(ctx context.Context, chatID string) ([]string, error)
	ListMessages(ctx context.Context, chatID string) ([]store.Message, error)
	ListReceipts(ctx context.Context, messageIDs []string) ([]store.ReadReceipt, error)
	CreateChat(ctx context.Context, c *store.Chat, participants []string) error
	InsertMessage(ctx context.Context, m *store.Message) error
	RecordRead(ctx context.Context, r *store.ReadReceipt) error
	FirstReceipt(ctx context.Context, messageID, userID string) (*store.ReadReceipt, error)
	SearchMessages(ctx context.Context, query string, chatIDs []string, limit int) ([]store.Message, error)
}

// Options tune a ChatStore. Zero values pick the defaults.
type Options struct {
	// NewID generates chat, message and receipt ids. Defaults to random UUIDs.
	NewID func() string
	// Now is the clock used for timestamps.
	Now func() time.Time
	// DedupeReceipts makes a repeated read by the same user a no-op instead
	// of recording a second receipt.
	DedupeReceipts bool
	// LoadConcurrency bounds how many chats are fetched at once. Defaults to 8.
	LoadConcurrency int
}

func (o Options) withDefaults() Options {
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.LoadConcurrency <= 0 {
		o.LoadConcurrency = 8
	}
	return o
}

// ChatStore owns the cached projection of the current user's chats.
type ChatStore struct {
	db      Store
	bus     *bus.Bus
	machine *status.Machine
	logger  *zap.Logger
	opts    Options
	chatMu  keyedLocks

	// Guarded by mu. Written only through mutate.
	mu         sync.RWMutex
	user       string
	chats      []*chat
	gen        uint64
	cancelLoad context.CancelFunc
	journal    []change
}

// New creates a chat store with no user. b and m may be nil.
func New(db Store, b *bus.Bus, m *status.Machine, logger *zap.Logger, opts Options) *ChatStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = status.NewMachine(b)
	}
	return &ChatStore{
		db:      db,
		bus:     b,
		machine: m,
		logger:  logger,
		opts:    opts.withDefaults(),
	}
}

// mutate is the single entry point for changes to the projection.
func (s *ChatStore) mutate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Chats returns a copy of the cached chats in load order, newly created
// chats last.
func (s *ChatStore) Chats() []Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Chat, 0, len(s.chats))
	for _, c := range s.chats {
		out = append(out, c.snapshot())
	}
	return out
}

// Chat returns a copy of one cached chat.
func (s *ChatStore) Chat(id string) (Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.findChat(id); c != nil {
		return c.snapshot(), true
	}
	return Chat{}, false
}

// User returns the identity the projection belongs to, "" when logged out.
func (s *ChatStore) User() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// State returns the load lifecycle state.
func (s *ChatStore) State() status.State {
	return s.machine.Current()
}

// Loading reports whether a load for the current identity is in flight.
func (s *ChatStore) Loading() bool {
	return s.machine.Current() == status.Loading
}

// Close cancels any in-flight load.
func (s *ChatStore) Close() {
	s.mutate(func() {
		if s.cancelLoad != nil {
			s.cancelLoad()
			s.cancelLoad = nil
		}
	})
}

func (s *ChatStore) findChat(id string) *chat {
	return findChatIn(s.chats, id)
}

// transition must be called with mu held so state changes follow the
// generation they belong to.
func (s *ChatStore) transition(to status.State) {
	if err := s.machine.Transition(to); err != nil && s.machine.Current() != to {
		s.logger.Warn("load state transition rejected", zap.Error(err))
	}
}

func (s *ChatStore) publish(kind string, payload any) {
	s.bus.Publish(bus.NewEvent(kind, payload))
}
