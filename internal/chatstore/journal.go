package chatstore

import "slices"

// change applies one successful write to a set of cached chats. During
// replay the load may already have read the write from the store, so a
// replayed change skips what is already there.
type change func(chats []*chat, replay bool) []*chat

// apply runs c against the projection and, while a load is in flight,
// journals it so the load's result can be brought up to date before it
// replaces the projection. Must be called with mu held.
func (s *ChatStore) apply(c change) {
	s.chats = c(s.chats, false)
	if s.cancelLoad != nil {
		s.journal = append(s.journal, c)
	}
}

// replay applies the journal to a freshly loaded projection and clears it.
// Must be called with mu held.
func (s *ChatStore) replay(chats []*chat) []*chat {
	for _, c := range s.journal {
		chats = c(chats, true)
	}
	s.journal = nil
	return chats
}

func addChat(id string, participants []string) change {
	return func(chats []*chat, _ bool) []*chat {
		if findChatIn(chats, id) != nil {
			return chats
		}
		return append(chats, &chat{id: id, participants: slices.Clone(participants)})
	}
}

// addMessage appends msg to its chat. On replay the loaded chat may hold
// later messages, so msg goes after the last message not newer than it.
func addMessage(msg Message) change {
	return func(chats []*chat, replay bool) []*chat {
		c := findChatIn(chats, msg.ChatID)
		if c == nil {
			return chats
		}
		if !replay {
			c.messages = append(c.messages, msg.clone())
			return chats
		}
		if slices.ContainsFunc(c.messages, func(m Message) bool { return m.ID == msg.ID }) {
			return chats
		}
		at := slices.IndexFunc(c.messages, func(m Message) bool { return m.Timestamp > msg.Timestamp })
		if at < 0 {
			at = len(c.messages)
		}
		c.messages = slices.Insert(c.messages, at, msg.clone())
		return chats
	}
}

// markRead can only recognise a replayed receipt by reader and time, so two
// reads by one user in the same millisecond collapse on replay.
func markRead(messageID string, entry ReadEntry) change {
	return func(chats []*chat, replay bool) []*chat {
		m := findMessageIn(chats, messageID)
		if m == nil {
			return chats
		}
		if !replay || !slices.Contains(m.ReadBy, entry) {
			m.ReadBy = append(m.ReadBy, entry)
		}
		m.Status = StatusRead
		return chats
	}
}

func findChatIn(chats []*chat, id string) *chat {
	for _, c := range chats {
		if c.id == id {
			return c
		}
	}
	return nil
}

func findMessageIn(chats []*chat, id string) *Message {
	for _, c := range chats {
		for i := range c.messages {
			if c.messages[i].ID == id {
				return &c.messages[i]
			}
		}
	}
	return nil
}
