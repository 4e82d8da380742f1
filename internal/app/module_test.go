package app

import (
	"context"
	"testing"

	"github.com/matheus3301/chats/internal/auth"
	"github.com/matheus3301/chats/internal/chatstore"
	"github.com/matheus3301/chats/internal/config"
	"github.com/matheus3301/chats/internal/session"
	"github.com/matheus3301/chats/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

type components struct {
	Identity *auth.Identity
	Chats    *chatstore.ChatStore
}

func startApp(t *testing.T, name string) (*fxtest.App, components) {
	t.Helper()
	var c components
	app := fxtest.New(t,
		Module(Params{SessionName: name, Quiet: true}),
		fx.Populate(&c.Identity, &c.Chats),
	)
	app.RequireStart()
	return app, c
}

// TestFxModuleWiring verifies the dependency graph resolves and that a login
// survives a restart of the whole module.
func TestFxModuleWiring(t *testing.T) {
	t.Setenv(session.HomeEnv, t.TempDir())
	ctx := context.Background()

	app, c := startApp(t, "fxtest")
	require.Equal(t, status.LoggedOut, c.Chats.State())
	require.NoError(t, c.Identity.Login(ctx, "alice"))
	created, err := c.Chats.CreateChat(ctx, []string{"alice", "bob"})
	require.NoError(t, err)
	_, err = c.Chats.SendMessage(ctx, created.ID, "hello", "alice", nil)
	require.NoError(t, err)
	app.RequireStop()

	app, c = startApp(t, "fxtest")
	defer app.RequireStop()
	assert.Equal(t, "alice", c.Identity.Current())
	assert.Equal(t, status.Ready, c.Chats.State())
	chats := c.Chats.Chats()
	require.Len(t, chats, 1)
	assert.Equal(t, "hello", chats[0].LastMessage.Text)
}

func TestSessionIsSingleOwner(t *testing.T) {
	t.Setenv(session.HomeEnv, t.TempDir())

	app, _ := startApp(t, "owned")
	defer app.RequireStop()

	second := fx.New(
		Module(Params{SessionName: "owned", Quiet: true}),
		fx.NopLogger,
		fx.Invoke(func(*chatstore.ChatStore) {}),
	)
	err := second.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session in use")
}

func TestConfigReachesChatStore(t *testing.T) {
	home := t.TempDir()
	t.Setenv(session.HomeEnv, home)
	require.NoError(t, config.Save(session.ConfigPath(), &config.Config{DedupeReceipts: true}))
	ctx := context.Background()

	app, c := startApp(t, "dedupe")
	defer app.RequireStop()

	require.NoError(t, c.Identity.Login(ctx, "alice"))
	created, err := c.Chats.CreateChat(ctx, []string{"alice", "bob"})
	require.NoError(t, err)
	msg, err := c.Chats.SendMessage(ctx, created.ID, "hi", "alice", nil)
	require.NoError(t, err)

	for j := 0; j < 2; j++ {
		_, err = c.Chats.MarkMessageAsRead(ctx, msg.ID, "bob")
		require.NoError(t, err)
	}
	got, _ := c.Chats.Chat(created.ID)
	assert.Len(t, got.Messages[0].ReadBy, 1)
}
