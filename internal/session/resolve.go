package session

import "github.com/matheus3301/chats/internal/config"

// DefaultSessionName is used when neither flag, environment nor config name
// a session.
const DefaultSessionName = "main"

// Resolve picks the session name. The --session flag wins, then
// CHATS_DEFAULT_SESSION, then default_session from config.toml. An
// unreadable config file is treated as unset. The result is not validated.
func Resolve(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	if cfg, err := config.Resolve(ConfigPath()); err == nil && cfg.DefaultSession != "" {
		return cfg.DefaultSession
	}
	return DefaultSessionName
}
