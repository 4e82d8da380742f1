package views

import (
	"fmt"

	"github.com/matheus3301/chats/internal/tui/ui"
	"github.com/rivo/tview"
)

// ProfileView shows the logged-in user id as a QR code others can scan to
// start a chat.
type ProfileView struct {
	*tview.TextView
}

// NewProfileView creates a new profile page.
func NewProfileView(theme *ui.Theme) *ProfileView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true).
		SetTitle(" Profile ").
		SetTitleColor(theme.TitleColor).
		SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	return &ProfileView{TextView: tv}
}

// Show renders userID and its QR code.
func (pv *ProfileView) Show(userID string) {
	pv.Clear()
	qr, err := ui.RenderQR(userID, "")
	if err != nil {
		qr = "(QR generation failed: " + err.Error() + ")"
	}
	_, _ = fmt.Fprintf(pv, "\nLogged in as [::b]%s[-:-:-]\n\n%s\n[::d]Esc to go back[-:-:-]",
		tview.Escape(userID), qr)
}
