package session

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidName is wrapped by ValidateName. Session names become directory
// names under BaseDir, so they are kept to a portable character set.
var ErrInvalidName = errors.New("invalid session name")

const maxNameLen = 64

var nameChars = regexp.MustCompile(`^[a-z0-9_-]+$`)

// ValidateName reports whether name can be used as a session directory.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty (set --session or CHATS_DEFAULT_SESSION)", ErrInvalidName)
	case len(name) > maxNameLen:
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidName, name, maxNameLen)
	case !nameChars.MatchString(name):
		return fmt.Errorf("%w: %q may only use a-z, 0-9, '_' and '-' (check --session, CHATS_DEFAULT_SESSION and default_session)", ErrInvalidName, name)
	}
	return nil
}
