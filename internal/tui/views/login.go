package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/chats/internal/tui/ui"
	"github.com/rivo/tview"
)

// LoginView asks for a user id. It is the only page reachable while
// logged out.
type LoginView struct {
	*tview.Flex
	input   *tview.InputField
	message *tview.TextView
	onLogin func(userID string)
}

// NewLoginView creates a new login page.
func NewLoginView(theme *ui.Theme) *LoginView {
	input := tview.NewInputField().
		SetLabel(" User id: ").
		SetFieldWidth(32)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.LabelColor)

	message := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	message.SetBackgroundColor(theme.BgColor)

	form := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(input, 1, 0, true).
		AddItem(message, 2, 0, false)
	form.SetBorder(true).
		SetTitle(" Log in ").
		SetTitleColor(theme.TitleColor).
		SetBorderColor(theme.BorderColor)

	// Center the form.
	flex := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(form, 5, 0, true).
			AddItem(nil, 0, 1, false), 50, 0, true).
		AddItem(nil, 0, 1, false)

	lv := &LoginView{Flex: flex, input: input, message: message}
	input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || lv.onLogin == nil {
			return
		}
		if id := strings.TrimSpace(input.GetText()); id != "" {
			lv.onLogin(id)
		}
	})
	return lv
}

// SetOnLogin sets the callback for a submitted user id.
func (lv *LoginView) SetOnLogin(fn func(userID string)) {
	lv.onLogin = fn
}

// ShowError displays why the last attempt failed.
func (lv *LoginView) ShowError(err error) {
	lv.message.Clear()
	_, _ = fmt.Fprintf(lv.message, "[red]%s[-]", tview.Escape(err.Error()))
}

// Reset clears the input and any message.
func (lv *LoginView) Reset() {
	lv.input.SetText("")
	lv.message.Clear()
}

// Input returns the user id field (for focus management).
func (lv *LoginView) Input() *tview.InputField {
	return lv.input
}
