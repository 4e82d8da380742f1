package ui

import "github.com/gdamore/tcell/v2"

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor          tcell.Color
	FgColor          tcell.Color
	BorderColor      tcell.Color
	BorderFocusColor tcell.Color
	TableHeaderFg    tcell.Color
	TableCursorFg    tcell.Color
	TableCursorBg    tcell.Color
	TitleColor       tcell.Color
	LabelColor       tcell.Color
	OwnMessageColor  tcell.Color
	UnreadColor      tcell.Color
	FlashColor       tcell.Color
	ErrorColor       tcell.Color
}

// DefaultTheme returns a k9s-inspired dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorBlack,
		FgColor:          tcell.ColorCadetBlue,
		BorderColor:      tcell.ColorDodgerBlue,
		BorderFocusColor: tcell.ColorLightSkyBlue,
		TableHeaderFg:    tcell.ColorWhite,
		TableCursorFg:    tcell.ColorBlack,
		TableCursorBg:    tcell.ColorAqua,
		TitleColor:       tcell.ColorFuchsia,
		LabelColor:       tcell.ColorDodgerBlue,
		OwnMessageColor:  tcell.ColorLightGreen,
		UnreadColor:      tcell.ColorOrange,
		FlashColor:       tcell.ColorNavajoWhite,
		ErrorColor:       tcell.ColorOrangeRed,
	}
}
