package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/chats/internal/chatstore"
	"github.com/matheus3301/chats/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	_, err = db.Migrate()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newIdentity(t *testing.T, db *store.DB) (*Identity, *chatstore.ChatStore) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	chats := chatstore.New(db, nil, nil, logger, chatstore.Options{})
	t.Cleanup(chats.Close)
	return New(db, chats, logger), chats
}

func TestLoginLoadsChats(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := testDB(t)
	req.NoError(db.CreateChat(ctx, &store.Chat{ID: "c1"}, []string{"alice", "bob"}))

	id, chats := newIdentity(t, db)
	_, err := id.Require()
	req.ErrorIs(err, ErrLoginRequired)

	req.NoError(id.Login(ctx, "alice"))
	req.Equal("alice", id.Current())
	req.Equal("alice", chats.User())
	req.Len(chats.Chats(), 1)

	user, err := id.Require()
	req.NoError(err)
	req.Equal("alice", user)
}

func TestLogoutClearsChats(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := testDB(t)
	req.NoError(db.CreateChat(ctx, &store.Chat{ID: "c1"}, []string{"alice"}))

	id, chats := newIdentity(t, db)
	req.NoError(id.Login(ctx, "alice"))
	req.NoError(id.Logout(ctx))

	req.Empty(id.Current())
	req.Empty(chats.Chats())
	persisted, err := db.GetState(ctx, StateKey)
	req.NoError(err)
	req.Empty(persisted)
}

func TestRestoreAcrossRestart(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := testDB(t)
	req.NoError(db.CreateChat(ctx, &store.Chat{ID: "c1"}, []string{"alice"}))

	first, _ := newIdentity(t, db)
	req.NoError(first.Login(ctx, "alice"))

	second, chats := newIdentity(t, db)
	user, err := second.Restore(ctx)
	req.NoError(err)
	req.Equal("alice", user)
	req.Equal("alice", second.Current())
	req.Len(chats.Chats(), 1)
}

func TestRestoreNobody(t *testing.T) {
	id, chats := newIdentity(t, testDB(t))
	user, err := id.Restore(context.Background())
	require.NoError(t, err)
	assert.Empty(t, user)
	assert.Empty(t, chats.User())
}

func TestRestoreDiscardsInvalidID(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := testDB(t)
	req.NoError(db.SetState(ctx, StateKey, "not valid!"))

	id, _ := newIdentity(t, db)
	user, err := id.Restore(ctx)
	req.NoError(err)
	req.Empty(user)

	persisted, err := db.GetState(ctx, StateKey)
	req.NoError(err)
	req.Empty(persisted)
}

func TestLoginRejectsInvalidIDs(t *testing.T) {
	db := testDB(t)
	id, _ := newIdentity(t, db)

	for _, bad := range []string{"", "has space", "semi;colon", strings.Repeat("a", 65)} {
		err := id.Login(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidUserID, "id %q", bad)
	}
	assert.Empty(t, id.Current())
}

func TestValidateUserID(t *testing.T) {
	for _, ok := range []string{"u1", "alice@example.com", "first.last", "a_b-c", strings.Repeat("a", 64)} {
		assert.NoError(t, ValidateUserID(ok), ok)
	}
}

type failingState struct{ err error }

func (f failingState) GetState(context.Context, string) (string, error) { return "", f.err }
func (f failingState) SetState(context.Context, string, string) error   { return f.err }
func (f failingState) DeleteState(context.Context, string) error        { return f.err }

type recordingSetter struct{ calls []string }

func (r *recordingSetter) SetUser(_ context.Context, userID string) error {
	r.calls = append(r.calls, userID)
	return nil
}

func TestPersistenceFailureKeepsIdentity(t *testing.T) {
	boom := errors.New("disk full")
	setter := &recordingSetter{}
	id := New(failingState{err: boom}, setter, nil)

	require.ErrorIs(t, id.Login(context.Background(), "alice"), boom)
	assert.Empty(t, id.Current())
	assert.Empty(t, setter.calls, "chat store must not switch when the login was not saved")

	_, err := id.Restore(context.Background())
	assert.ErrorIs(t, err, boom)
}

// blockingSetter parks SetUser until released.
type blockingSetter struct {
	entered chan string
	release chan struct{}
}

func (b *blockingSetter) SetUser(_ context.Context, userID string) error {
	b.entered <- userID
	<-b.release
	return nil
}

func TestCurrentDoesNotWaitForLoad(t *testing.T) {
	req := require.New(t)
	setter := &blockingSetter{entered: make(chan string, 1), release: make(chan struct{})}
	id := New(testDB(t), setter, nil)

	done := make(chan error, 1)
	go func() { done <- id.Login(context.Background(), "alice") }()
	req.Equal("alice", <-setter.entered)

	current := make(chan string, 1)
	go func() { current <- id.Current() }()
	select {
	case got := <-current:
		req.Equal("alice", got)
	case <-time.After(2 * time.Second):
		t.Fatal("Current blocked while the chat load was running")
	}

	close(setter.release)
	req.NoError(<-done)
}
