package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/matheus3301/chats/internal/auth"
	"github.com/matheus3301/chats/internal/chatstore"
	"github.com/matheus3301/chats/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestCLI(t *testing.T) (*cli, *bytes.Buffer) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	_, err = db.Migrate()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := zaptest.NewLogger(t)
	chats := chatstore.New(db, nil, nil, logger, chatstore.Options{})
	t.Cleanup(chats.Close)

	var out bytes.Buffer
	return &cli{
		chats:    chats,
		identity: auth.New(db, chats, logger),
		db:       db,
		out:      &out,
	}, &out
}

func TestCommandsRequireLogin(t *testing.T) {
	c, _ := newTestCLI(t)
	err := c.run(context.Background(), []string{"chats"})
	require.ErrorIs(t, err, auth.ErrLoginRequired)
}

func TestUnknownCommand(t *testing.T) {
	c, _ := newTestCLI(t)
	ctx := context.Background()
	require.NoError(t, c.run(ctx, []string{"login", "alice"}))
	require.ErrorIs(t, c.run(ctx, []string{"frobnicate"}), errUsage)
	require.ErrorIs(t, c.run(ctx, []string{"show"}), errUsage)
	require.ErrorIs(t, c.run(ctx, []string{"send"}), errUsage)
}

func TestConversationFlow(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c, out := newTestCLI(t)

	req.NoError(c.run(ctx, []string{"login", "alice"}))
	assert.Contains(t, out.String(), "Logged in as alice (0 chats)")

	req.NoError(c.run(ctx, []string{"create", "bob"}))
	chats := c.chats.Chats()
	req.Len(chats, 1)
	chatID := chats[0].ID
	assert.Equal(t, []string{"alice", "bob"}, chats[0].Participants)

	out.Reset()
	req.NoError(c.run(ctx, []string{"send", chatID, "hello", "there"}))
	assert.Contains(t, out.String(), "Sent ")
	req.NoError(c.run(ctx, []string{"send", "--image", "file:///cat.png", chatID}))

	got, ok := c.chats.Chat(chatID)
	req.True(ok)
	req.Len(got.Messages, 2)
	assert.Equal(t, "hello there", got.Messages[0].Text)
	assert.Equal(t, chatstore.TypeImage, got.Messages[1].Type)
	assert.Equal(t, "file:///cat.png", got.Messages[1].ImageURI)

	out.Reset()
	req.NoError(c.run(ctx, []string{"chats"}))
	assert.Contains(t, out.String(), chatID)
	assert.Contains(t, out.String(), "bob")
	assert.Contains(t, out.String(), "[image]")

	out.Reset()
	req.NoError(c.run(ctx, []string{"show", chatID}))
	assert.Contains(t, out.String(), "hello there")
	assert.Contains(t, out.String(), "file:///cat.png")

	out.Reset()
	req.NoError(c.run(ctx, []string{"read", got.Messages[0].ID}))
	assert.Contains(t, out.String(), "Marked "+got.Messages[0].ID+" read")

	got, _ = c.chats.Chat(chatID)
	assert.Equal(t, chatstore.StatusRead, got.Messages[0].Status)

	out.Reset()
	req.NoError(c.run(ctx, []string{"search", "hello"}))
	assert.Contains(t, out.String(), got.Messages[0].ID)

	out.Reset()
	req.NoError(c.run(ctx, []string{"search", "nothing-matches"}))
	assert.Contains(t, out.String(), "No matches.")
}

func TestSendEmptyMessage(t *testing.T) {
	c, _ := newTestCLI(t)
	ctx := context.Background()
	require.NoError(t, c.run(ctx, []string{"login", "alice"}))
	require.NoError(t, c.run(ctx, []string{"create", "bob"}))

	err := c.run(ctx, []string{"send", c.chats.Chats()[0].ID, "  "})
	require.ErrorIs(t, err, chatstore.ErrEmptyMessage)
}

func TestJSONOutput(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c, out := newTestCLI(t)
	c.json = true

	req.NoError(c.run(ctx, []string{"login", "alice"}))
	out.Reset()
	req.NoError(c.run(ctx, []string{"create", "bob", "carol"}))

	var created chatstore.Chat
	req.NoError(json.Unmarshal(out.Bytes(), &created))
	assert.Equal(t, []string{"alice", "bob", "carol"}, created.Participants)

	out.Reset()
	req.NoError(c.run(ctx, []string{"send", created.ID, "hi"}))
	out.Reset()
	req.NoError(c.run(ctx, []string{"stats"}))

	var stats map[string]any
	req.NoError(json.Unmarshal(out.Bytes(), &stats))
	assert.EqualValues(t, 1, stats["chats"])
	assert.EqualValues(t, 1, stats["messages"])
	assert.EqualValues(t, 0, stats["receipts"])
	assert.Equal(t, "alice", stats["user"])
	assert.Equal(t, "READY", stats["state"])
}

func TestReadChat(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c, out := newTestCLI(t)

	req.NoError(c.run(ctx, []string{"login", "bob"}))
	req.NoError(c.run(ctx, []string{"create", "alice"}))
	chatID := c.chats.Chats()[0].ID
	_, err := c.chats.SendMessage(ctx, chatID, "one", "alice", nil)
	req.NoError(err)
	_, err = c.chats.SendMessage(ctx, chatID, "two", "alice", nil)
	req.NoError(err)

	out.Reset()
	req.NoError(c.run(ctx, []string{"read-chat", chatID}))
	assert.Contains(t, out.String(), "Marked 2 messages read")

	got, _ := c.chats.Chat(chatID)
	for _, m := range got.Messages {
		assert.True(t, m.ReadByUser("bob"))
	}
}

func TestWhoami(t *testing.T) {
	c, out := newTestCLI(t)
	ctx := context.Background()
	require.ErrorIs(t, c.run(ctx, []string{"whoami"}), auth.ErrLoginRequired)

	require.NoError(t, c.run(ctx, []string{"login", "alice"}))
	out.Reset()
	require.NoError(t, c.run(ctx, []string{"whoami", "--qr"}))
	assert.Contains(t, out.String(), "alice (READY)")
	assert.Greater(t, len(out.String()), len("alice (READY)\n"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
