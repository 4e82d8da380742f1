// Package auth tracks who is logged in. The identity survives restarts in
// the store's app state and every change is forwarded to the chat store,
// which reloads or clears its projection accordingly.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// StateKey is the app_state key holding the logged-in user id.
const StateKey = "current_user"

var (
	ErrLoginRequired = errors.New("not logged in")
	ErrInvalidUserID = errors.New("invalid user id")
)

// StateStore persists small key/value settings. *store.DB implements it.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, error)
	SetState(ctx context.Context, key, value string) error
	DeleteState(ctx context.Context, key string) error
}

// UserSetter is told about every identity change. *chatstore.ChatStore
// implements it.
type UserSetter interface {
	SetUser(ctx context.Context, userID string) error
}

// Identity is the current login.
type Identity struct {
	state  StateStore
	chats  UserSetter
	logger *zap.Logger

	// switchMu orders identity changes end to end, load included. mu only
	// guards current, so Current never waits on a load.
	switchMu sync.Mutex
	mu       sync.Mutex
	current  string
}

// New creates an Identity with nobody logged in. Call Restore to pick up a
// persisted login.
func New(state StateStore, chats UserSetter, logger *zap.Logger) *Identity {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Identity{state: state, chats: chats, logger: logger}
}

// Current returns the logged-in user id, or "".
func (i *Identity) Current() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.current
}

// Require returns the logged-in user id or ErrLoginRequired.
func (i *Identity) Require() (string, error) {
	if id := i.Current(); id != "" {
		return id, nil
	}
	return "", ErrLoginRequired
}

// Login persists userID as the current identity and loads its chats. The
// login stands even if the load fails; the load error is returned.
func (i *Identity) Login(ctx context.Context, userID string) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}

	i.switchMu.Lock()
	defer i.switchMu.Unlock()
	if err := i.state.SetState(ctx, StateKey, userID); err != nil {
		return fmt.Errorf("persist login: %w", err)
	}
	if prev := i.swap(userID); prev != userID {
		i.logger.Info("logged in", zap.String("user", userID), zap.String("previous", prev))
	}
	return i.chats.SetUser(ctx, userID)
}

// Logout forgets the persisted identity and clears the chat projection.
func (i *Identity) Logout(ctx context.Context) error {
	i.switchMu.Lock()
	defer i.switchMu.Unlock()
	return i.logout(ctx)
}

func (i *Identity) logout(ctx context.Context) error {
	if err := i.state.DeleteState(ctx, StateKey); err != nil {
		return fmt.Errorf("forget login: %w", err)
	}
	if prev := i.swap(""); prev != "" {
		i.logger.Info("logged out", zap.String("user", prev))
	}
	return i.chats.SetUser(ctx, "")
}

// swap sets the current user and returns the previous one.
func (i *Identity) swap(userID string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	prev := i.current
	i.current = userID
	return prev
}

// Restore reloads the identity persisted by an earlier Login and loads its
// chats. It returns "" when nobody was logged in. An invalid persisted id is
// discarded.
func (i *Identity) Restore(ctx context.Context) (string, error) {
	i.switchMu.Lock()
	defer i.switchMu.Unlock()

	userID, err := i.state.GetState(ctx, StateKey)
	if err != nil {
		return "", fmt.Errorf("read persisted login: %w", err)
	}
	if userID == "" {
		return "", nil
	}
	if err := ValidateUserID(userID); err != nil {
		i.logger.Warn("discarding persisted login", zap.Error(err))
		return "", i.logout(ctx)
	}

	i.swap(userID)
	i.logger.Info("restored login", zap.String("user", userID))
	return userID, i.chats.SetUser(ctx, userID)
}
