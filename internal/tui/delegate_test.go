package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestFitLinePadsShortLines(t *testing.T) {
	got := fitLine("abc", 10)
	if lipgloss.Width(got) != 10 {
		t.Fatalf("padded width = %d, want 10 (%q)", lipgloss.Width(got), got)
	}
	if !strings.HasPrefix(got, "abc") {
		t.Fatalf("padding altered content: %q", got)
	}
}

func TestFitLineTruncatesWithEllipsis(t *testing.T) {
	got := fitLine(strings.Repeat("x", 40), 10)
	if w := lipgloss.Width(got); w != 10 {
		t.Fatalf("truncated width = %d, want 10 (%q)", w, got)
	}
	if !strings.Contains(got, "…") {
		t.Fatalf("truncation marker missing: %q", got)
	}
}

func TestFitLineFlattensNewlines(t *testing.T) {
	got := fitLine("a\nb", 6)
	if strings.Contains(got, "\n") {
		t.Fatalf("newline survived: %q", got)
	}
}
