package chatstore

import "github.com/matheus3301/chats/internal/store"

// MessageType distinguishes plain text from image messages.
type MessageType string

const (
	TypeText  MessageType = store.TypeText
	TypeImage MessageType = store.TypeImage
)

// Status is a message's delivery state. It only moves forward; the store
// currently drives sent -> read directly.
type Status string

const (
	StatusSent      Status = store.StatusSent
	StatusDelivered Status = store.StatusDelivered
	StatusRead      Status = store.StatusRead
)

// ReadEntry is one reader of a message.
type ReadEntry struct {
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

// Message is a chat message together with who has read it.
type Message struct {
	ID              string      `json:"id"`
	ChatID          string      `json:"chatId"`
	SenderID        string      `json:"senderId"`
	Text            string      `json:"text"`
	Timestamp       int64       `json:"timestamp"`
	Type            MessageType `json:"messageType"`
	ImageURI        string      `json:"imageUri,omitempty"`
	ImagePreviewURI string      `json:"imagePreviewUri,omitempty"`
	Status          Status      `json:"status"`
	ReadBy          []ReadEntry `json:"readBy,omitempty"`
}

// ReadByUser reports whether userID appears in the message's readers.
func (m Message) ReadByUser(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// Chat is a snapshot of a conversation. LastMessage is nil for an empty chat.
type Chat struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
	LastMessage  *Message  `json:"lastMessage,omitempty"`
}

// Image is the optional attachment of SendMessage.
type Image struct {
	URI        string `validate:"required"`
	PreviewURI string
}

// chat is the cached form of a Chat. LastMessage is derived on snapshot so
// it can never disagree with messages.
type chat struct {
	id           string
	participants []string
	messages     []Message
}

func (c *chat) snapshot() Chat {
	out := Chat{
		ID:           c.id,
		Participants: append([]string(nil), c.participants...),
		Messages:     make([]Message, len(c.messages)),
	}
	for i, m := range c.messages {
		out.Messages[i] = m.clone()
	}
	if n := len(out.Messages); n > 0 {
		last := out.Messages[n-1].clone()
		out.LastMessage = &last
	}
	return out
}

func (c *chat) lastTimestamp() int64 {
	if n := len(c.messages); n > 0 {
		return c.messages[n-1].Timestamp
	}
	return 0
}

func (m Message) clone() Message {
	m.ReadBy = append([]ReadEntry(nil), m.ReadBy...)
	return m
}

func messageFromRow(row store.Message, receipts []store.ReadReceipt) Message {
	m := Message{
		ID:              row.ID,
		ChatID:          row.ChatID,
		SenderID:        row.SenderID,
		Text:            row.Text,
		Timestamp:       row.Timestamp,
		Type:            MessageType(row.MessageType),
		ImageURI:        row.ImageURI,
		ImagePreviewURI: row.ImagePreviewURI,
		Status:          Status(row.Status),
	}
	for _, r := range receipts {
		m.ReadBy = append(m.ReadBy, ReadEntry{UserID: r.UserID, Timestamp: r.Timestamp})
	}
	return m
}
