package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/chats/internal/chatstore"
	"github.com/matheus3301/chats/internal/tui/ui"
	"github.com/rivo/tview"
)

// MessageThread displays one chat's messages above a composer.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	composer *tview.InputField
	chatID   string
	onSend   func(text string)
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.LabelColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || mt.onSend == nil {
			return
		}
		if text := composer.GetText(); strings.TrimSpace(text) != "" {
			mt.onSend(text)
			composer.SetText("")
		}
	})

	return mt
}

// SetOnSend sets the callback for a submitted, non-blank composer line.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// ChatID returns the chat on display.
func (mt *MessageThread) ChatID() string {
	return mt.chatID
}

// Update renders c oldest message first and scrolls to the newest.
func (mt *MessageThread) Update(c chatstore.Chat, me string, now time.Time) {
	mt.chatID = c.ID
	mt.messages.SetTitle(fmt.Sprintf(" %s ", tview.Escape(Sanitize(ChatTitle(c, me)))))
	mt.messages.Clear()
	_, _ = fmt.Fprint(mt.messages, RenderMessages(c.Messages, me, now))
	mt.messages.ScrollToEnd()
}

// RenderMessages formats messages as tview-tagged text.
func RenderMessages(msgs []chatstore.Message, me string, now time.Time) string {
	var b strings.Builder
	for _, m := range msgs {
		sender := tview.Escape(Sanitize(m.SenderID))
		mark := ""
		if m.SenderID == me {
			sender = "[green::b]You[-:-:-]"
			mark = " " + StatusMark(m.Status)
		} else {
			sender = "[::b]" + sender + "[-:-:-]"
		}
		fmt.Fprintf(&b, "%s [::d]%s%s[-:-:-]\n", sender, FormatTime(m.Timestamp, now), mark)
		if m.Type == chatstore.TypeImage {
			fmt.Fprintf(&b, "[yellow]%s[-] %s\n", tview.Escape("[image]"), tview.Escape(m.ImageURI))
		}
		if m.Text != "" {
			b.WriteString(tview.Escape(Sanitize(m.Text)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}
