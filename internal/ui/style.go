package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/codemate/internal/app"
	"github.com/dshills/codemate/internal/config"
)

// Theme holds the styles used to draw the screen.
type Theme struct {
	Text      tcell.Style
	Staged    tcell.Style
	Revealed  tcell.Style
	Status    tcell.Style
	Selected  tcell.Style
	PanelHead tcell.Style
	Info      tcell.Style
	Warning   tcell.Style
	Error     tcell.Style
}

// DefaultTheme returns the theme for the default preview settings.
func DefaultTheme() Theme {
	return ThemeFrom(config.Default().Preview)
}

// ThemeFrom builds a theme from the preview settings. Colors that do not
// parse fall back to the terminal default.
func ThemeFrom(cfg config.PreviewConfig) Theme {
	base := tcell.StyleDefault
	return Theme{
		Text:      base,
		Staged:    base.Foreground(rgb(cfg.Color)).Italic(true),
		Revealed:  base.Background(rgb(cfg.HighlightColor)),
		Status:    base.Reverse(true),
		Selected:  base.Reverse(true),
		PanelHead: base.Bold(true).Underline(true),
		Info:      base,
		Warning:   base.Foreground(tcell.ColorYellow),
		Error:     base.Foreground(tcell.ColorRed).Bold(true),
	}
}

// Severity returns the style for a notification.
func (t Theme) Severity(sev app.Severity) tcell.Style {
	switch sev {
	case app.SeverityWarning:
		return t.Warning
	case app.SeverityError:
		return t.Error
	default:
		return t.Info
	}
}

func rgb(hex string) tcell.Color {
	c, err := config.ParseColor(hex)
	if err != nil {
		return tcell.ColorDefault
	}
	return toTcell(c)
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
