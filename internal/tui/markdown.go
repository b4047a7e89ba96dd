package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Renderer construction is expensive and the detail pane re-renders on
// every Update cycle, so renderers are cached per style+width.
var mdCache sync.Map // "style:width" -> *glamour.TermRenderer

func renderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	r := mdRenderer(markdownStyle(), width)
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func mdRenderer(style string, width int) *glamour.TermRenderer {
	key := style + ":" + strconv.Itoa(width)
	if v, ok := mdCache.Load(key); ok {
		return v.(*glamour.TermRenderer)
	}
	// WithAutoStyle would query the terminal and can block; the style is
	// decided from the environment instead.
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	v, _ := mdCache.LoadOrStore(key, r)
	return v.(*glamour.TermRenderer)
}

// markdownStyle picks "light" or "dark" without querying the terminal.
// Order: explicit markdown override, forced TUI theme, the COLORFGBG
// hint, then lipgloss's background probe.
func markdownStyle() string {
	for _, env := range []string{"AURUM_TUI_MD_STYLE", "AURUM_TUI_THEME"} {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(env))) {
		case "light":
			return "light"
		case "dark":
			return "dark"
		}
	}
	// COLORFGBG is "fg;bg"; xterm palettes put light colors at 7-15.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			if bg >= 7 {
				return "light"
			}
			return "dark"
		}
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
