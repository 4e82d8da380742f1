package bus

import "time"

// Event kinds published by the chat store and the load state machine.
// Subscribers filter by prefix, e.g. "message." or "chats.".
const (
	KindChatsLoaded     = "chats.loaded"
	KindChatsCleared    = "chats.cleared"
	KindChatsLoadFailed = "chats.load_failed"
	KindChatCreated     = "chat.created"
	KindMessageSent     = "message.sent"
	KindMessageRead     = "message.read"
	KindStatusChanged   = "store.status_changed"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// NewEvent builds an event stamped with the current time.
func NewEvent(kind string, payload any) Event {
	return Event{Kind: kind, Timestamp: time.Now(), Payload: payload}
}
