package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// StatusBar shows the session, the logged-in user, the load state, key
// hints and a transient flash message.
type StatusBar struct {
	*tview.TextView
	session string
	user    string
	state   string
	hints   []string
	flash   string
	isError bool
}

// NewStatusBar creates a new status bar.
func NewStatusBar(session string) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	sb := &StatusBar{TextView: tv, session: session}
	sb.render()
	return sb
}

// SetUser updates the logged-in user display.
func (sb *StatusBar) SetUser(user string) {
	sb.user = user
	sb.render()
}

// SetState updates the load state display.
func (sb *StatusBar) SetState(state string) {
	sb.state = state
	sb.render()
}

// SetHints replaces the key hints.
func (sb *StatusBar) SetHints(hints []string) {
	sb.hints = hints
	sb.render()
}

// SetFlash shows msg until the next SetFlash; an empty msg clears it.
func (sb *StatusBar) SetFlash(msg string, isError bool) {
	sb.flash = msg
	sb.isError = isError
	sb.render()
}

// Line returns the rendered status text.
func (sb *StatusBar) Line() string {
	user := sb.user
	if user == "" {
		user = "logged out"
	}
	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | %s", tview.Escape(sb.session), tview.Escape(user), sb.state)
	if len(sb.hints) > 0 {
		line += " | [::d]" + strings.Join(sb.hints, "  ") + "[-:-:-]"
	}
	if sb.flash != "" {
		color := "yellow"
		if sb.isError {
			color = "red"
		}
		line += fmt.Sprintf(" | [%s]%s[-]", color, tview.Escape(sb.flash))
	}
	return line
}

func (sb *StatusBar) render() {
	sb.Clear()
	_, _ = fmt.Fprint(sb, sb.Line())
}
