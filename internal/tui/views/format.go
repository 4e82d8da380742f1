package views

import (
	"cmp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/matheus3301/chats/internal/chatstore"
	"github.com/samber/lo"
)

// Sanitize drops the codepoints tcell renders badly: skin tone modifiers,
// zero width joiners and variation selectors. A toned thumbs-up becomes a
// plain one, which still takes two cells.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !joinsGlyphs(r) {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

func joinsGlyphs(r rune) bool {
	return (r >= 0x1F3FB && r <= 0x1F3FF) ||
		r == 0x200D ||
		(r >= 0xFE00 && r <= 0xFE0F) ||
		(r >= 0xE0100 && r <= 0xE01EF)
}

// FormatTime renders a millisecond timestamp relative to now: "just now"
// style within a day, a date beyond that.
func FormatTime(ms int64, now time.Time) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	if d := now.Sub(t); d >= 0 && d < 24*time.Hour {
		return humanize.RelTime(t, now, "ago", "from now")
	}
	if t.Year() == now.Year() {
		return t.Format("Jan 2")
	}
	return t.Format("2006-01-02")
}

// ChatTitle names a chat by its other participants, or "You" for a chat
// with oneself.
func ChatTitle(c chatstore.Chat, me string) string {
	others := lo.Without(c.Participants, me)
	if len(others) == 0 {
		return "You"
	}
	return strings.Join(others, ", ")
}

// Preview is a one-line summary of a message.
func Preview(m *chatstore.Message) string {
	if m == nil {
		return ""
	}
	text := strings.Join(strings.Fields(m.Text), " ")
	if m.Type == chatstore.TypeImage {
		if text == "" {
			return "[image]"
		}
		return "[image] " + text
	}
	return text
}

// UnreadCount counts messages from others that me has not read.
func UnreadCount(c chatstore.Chat, me string) int {
	return lo.CountBy(c.Messages, func(m chatstore.Message) bool {
		return m.SenderID != me && !m.ReadByUser(me)
	})
}

// StatusMark is the delivery tick shown next to one's own messages.
func StatusMark(s chatstore.Status) string {
	switch s {
	case chatstore.StatusRead:
		return "✓✓"
	case chatstore.StatusDelivered:
		return "✓"
	default:
		return "·"
	}
}

// ParseParticipants splits a comma or space separated list of user ids.
func ParseParticipants(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	return lo.Uniq(fields)
}

// SortByActivity orders chats by their last message, newest first. Chats
// without messages keep their relative order after the rest.
func SortByActivity(chats []chatstore.Chat) []chatstore.Chat {
	out := append([]chatstore.Chat(nil), chats...)
	slices.SortStableFunc(out, func(a, b chatstore.Chat) int {
		return cmp.Compare(lastActivity(b), lastActivity(a))
	})
	return out
}

func lastActivity(c chatstore.Chat) int64 {
	if c.LastMessage == nil {
		return 0
	}
	return c.LastMessage.Timestamp
}
