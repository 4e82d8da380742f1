package store

// Message types.
const (
	TypeText  = "text"
	TypeImage = "image"
)

// Message delivery states. Only sent and read are written today.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// Chat is a row of the chats table.
type Chat struct {
	ID        string
	CreatedAt int64
}

// Message is a row of the messages table.
type Message struct {
	ID              string
	ChatID          string
	SenderID        string
	Text            string
	Timestamp       int64
	MessageType     string
	ImageURI        string
	ImagePreviewURI string
	Status          string
}

// ReadReceipt records that UserID viewed MessageID at Timestamp.
type ReadReceipt struct {
	ID        string
	MessageID string
	UserID    string
	Timestamp int64
}
