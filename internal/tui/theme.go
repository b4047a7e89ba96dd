package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Every color carries a light- and a dark-background variant so the TUI
// stays readable without asking the user to pick a theme up front.
var (
	colorMuted      = lipgloss.AdaptiveColor{Light: "240", Dark: "243"}
	colorCrumb      = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}
	colorGold       = lipgloss.AdaptiveColor{Light: "136", Dark: "178"}
	colorDone       = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorOverdue    = lipgloss.AdaptiveColor{Light: "124", Dark: "196"}
	colorSelectedFg = lipgloss.AdaptiveColor{Light: "235", Dark: "255"}
	colorSelectedBg = lipgloss.AdaptiveColor{Light: "#e9e9e9", Dark: "#262626"}
)

// dimOnDark applies faint only on dark backgrounds; faint text on a light
// terminal tends to disappear entirely.
func dimOnDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

func styleMuted() lipgloss.Style {
	return dimOnDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleCrumb() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorCrumb)
}

func styleDone() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorDone)
}

func styleOverdue() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorOverdue).Bold(true)
}

// applyColorProfilePreference configures lipgloss for the interactive
// session. NO_COLOR wins; otherwise the detected terminal profile is used
// as-is. termenv.EnvColorProfile would also read CLICOLOR, which suits
// piped CLI output but tends to strip a TUI of its highlights.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())
}
