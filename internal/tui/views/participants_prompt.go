package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/chats/internal/tui/ui"
	"github.com/rivo/tview"
)

// ParticipantsPrompt asks for the other participants of a new chat.
type ParticipantsPrompt struct {
	*tview.InputField
	onSubmit func(participants []string)
}

// NewParticipantsPrompt creates the prompt. The caller adds itself to the list.
func NewParticipantsPrompt(theme *ui.Theme) *ParticipantsPrompt {
	input := tview.NewInputField().
		SetLabel(" With (comma separated): ").
		SetFieldWidth(0)
	input.SetBorder(true).
		SetTitle(" New chat ").
		SetTitleColor(theme.TitleColor).
		SetBorderColor(theme.BorderColor)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.LabelColor)

	p := &ParticipantsPrompt{InputField: input}
	input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || p.onSubmit == nil {
			return
		}
		if ids := ParseParticipants(input.GetText()); len(ids) > 0 {
			p.onSubmit(ids)
			input.SetText("")
		}
	})
	return p
}

// SetOnSubmit sets the callback for a submitted participant list.
func (p *ParticipantsPrompt) SetOnSubmit(fn func(participants []string)) {
	p.onSubmit = fn
}
