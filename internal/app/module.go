// Package app wires a session's components together with fx.
package app

import (
	"context"

	"github.com/matheus3301/chats/internal/auth"
	"github.com/matheus3301/chats/internal/bus"
	"github.com/matheus3301/chats/internal/chatstore"
	"github.com/matheus3301/chats/internal/config"
	"github.com/matheus3301/chats/internal/lock"
	"github.com/matheus3301/chats/internal/logging"
	"github.com/matheus3301/chats/internal/session"
	"github.com/matheus3301/chats/internal/status"
	"github.com/matheus3301/chats/internal/store"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
	// Quiet keeps the console silent below error level. The TUI sets it
	// because it owns the terminal.
	Quiet bool
}

// Module returns the fx module for one session, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("chats",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideChatStore,
			provideIdentity,
		),
		fx.Invoke(registerLifecycle),
	)
}

// FxLogger routes fx's own events into the session logger.
func FxLogger(logger *zap.Logger) fxevent.Logger {
	l := &fxevent.ZapLogger{Logger: logger.Named("fx")}
	l.UseLogLevel(zapcore.DebugLevel)
	return l
}

func provideConfig() (*config.Config, error) {
	return config.Resolve(session.ConfigPath())
}

func provideLogger(p Params, cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Level()
	if p.Quiet && level < zapcore.ErrorLevel {
		level = zapcore.ErrorLevel
	}
	return logging.New(session.LogPath(p.SessionName), p.SessionName, level)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	l, err := lock.Acquire(session.LockPath(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Debug("session lock acquired", zap.String("path", l.Path()))
	return l, nil
}

// provideStore takes the lock so the database is only opened by its owner.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.DBPath(p.SessionName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Debug("migrations up to date", zap.Uint("version", result.Version))
	}
	return db, nil
}

func provideChatStore(db *store.DB, b *bus.Bus, m *status.Machine, cfg *config.Config, logger *zap.Logger) *chatstore.ChatStore {
	return chatstore.New(db, b, m, logger.Named("chatstore"), chatstore.Options{
		DedupeReceipts:  cfg.DedupeReceipts,
		LoadConcurrency: cfg.LoadConcurrency,
	})
}

func provideIdentity(db *store.DB, chats *chatstore.ChatStore, logger *zap.Logger) *auth.Identity {
	return auth.New(db, chats, logger.Named("auth"))
}

func registerLifecycle(lc fx.Lifecycle, id *auth.Identity, chats *chatstore.ChatStore, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// A failed load leaves the store FAILED; commands can still run
			// and report it.
			user, err := id.Restore(ctx)
			if err != nil {
				logger.Error("restoring login", zap.Error(err))
				return nil
			}
			if user == "" {
				logger.Debug("no persisted login")
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			chats.Close()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			_ = logger.Sync()
			return nil
		},
	})
}
