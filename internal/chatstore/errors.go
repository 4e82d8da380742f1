package chatstore

import "errors"

// Precondition failures. No write is attempted when one of these is returned.
var (
	ErrNotLoggedIn     = errors.New("no user logged in")
	ErrNotParticipant  = errors.New("current user is not among the participants")
	ErrEmptyMessage    = errors.New("message has neither text nor image")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrSuperseded is returned by a load whose identity changed before it
// finished. Its results were discarded.
var ErrSuperseded = errors.New("load superseded by a newer identity")
