package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/chats/internal/chatstore"
	"github.com/matheus3301/chats/internal/tui/ui"
	"github.com/rivo/tview"
)

// ChatList is the main chat list view (K9s-inspired table).
type ChatList struct {
	*tview.Table
	theme *ui.Theme
	chats []chatstore.Chat
}

// NewChatList creates a new chat list table.
func NewChatList(theme *ui.Theme) *ChatList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true).SetTitle(" Chats ")
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	return &ChatList{Table: table, theme: theme}
}

// Update redraws the list, most recently active chat first, keeping the
// selected chat selected.
func (cl *ChatList) Update(chats []chatstore.Chat, me string, now time.Time) {
	selected := cl.SelectedChat()
	cl.chats = SortByActivity(chats)
	cl.Clear()

	for col, h := range []string{" WITH", " LAST MESSAGE", " UNREAD", " WHEN"} {
		cl.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold))
	}

	for i, c := range cl.chats {
		row := i + 1
		color := cl.theme.FgColor
		unread := ""
		if n := UnreadCount(c, me); n > 0 {
			color = cl.theme.UnreadColor
			unread = fmt.Sprintf("%d", n)
		}
		when := ""
		if c.LastMessage != nil {
			when = FormatTime(c.LastMessage.Timestamp, now)
		}
		cl.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(Sanitize(ChatTitle(c, me)))).SetMaxWidth(30).SetExpansion(1).SetTextColor(color))
		cl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(Sanitize(Preview(c.LastMessage)))).SetMaxWidth(50).SetExpansion(2).SetTextColor(color))
		cl.SetCell(row, 2, tview.NewTableCell(" "+unread).SetTextColor(color))
		cl.SetCell(row, 3, tview.NewTableCell(" "+when).SetMaxWidth(16).SetTextColor(color))
		if c.ID == selected {
			cl.Select(row, 0)
		}
	}
}

// SelectedChat returns the id of the highlighted chat.
func (cl *ChatList) SelectedChat() string {
	row, _ := cl.GetSelection()
	if idx := row - 1; idx >= 0 && idx < len(cl.chats) {
		return cl.chats[idx].ID
	}
	return ""
}
