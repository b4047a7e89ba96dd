package tui

import (
	"strings"
	"testing"
)

func TestMarkdownStyleEnvOverrides(t *testing.T) {
	t.Setenv("AURUM_TUI_MD_STYLE", "light")
	t.Setenv("AURUM_TUI_THEME", "dark")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("AURUM_TUI_MD_STYLE should win, got %q", got)
	}

	t.Setenv("AURUM_TUI_MD_STYLE", "")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("AURUM_TUI_THEME=dark should apply, got %q", got)
	}
}

func TestMarkdownStyleColorFGBGHeuristic(t *testing.T) {
	t.Setenv("AURUM_TUI_MD_STYLE", "")
	t.Setenv("AURUM_TUI_THEME", "")

	t.Setenv("COLORFGBG", "15;0")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("bg=0 should read as dark, got %q", got)
	}
	t.Setenv("COLORFGBG", "0;15")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("bg=15 should read as light, got %q", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	t.Setenv("AURUM_TUI_MD_STYLE", "dark")

	if got := renderMarkdown("   ", 60); got != "" {
		t.Fatalf("blank markdown rendered %q", got)
	}
	out := renderMarkdown("# Focus\n\nRun *intervals* today.", 60)
	if !strings.Contains(out, "Focus") || !strings.Contains(out, "intervals") {
		t.Fatalf("rendered markdown lost content:\n%s", out)
	}
}
