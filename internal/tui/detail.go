package tui

import (
	"fmt"
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/score"
	"aurum-life/internal/statusutil"
	"aurum-life/internal/store"

	"github.com/charmbracelet/lipgloss"
)

// renderTaskDetail builds the right-hand pane for the selected task: a meta
// block plus the description rendered as markdown.
func renderTaskDetail(db *store.DB, t model.Task, width, height int) string {
	if width < 20 {
		width = 20
	}

	now := time.Now()
	title := lipgloss.NewStyle().Bold(true).Width(width).Render(t.Name)

	// Each meta line is styled on its own so completed and overdue state can
	// recolor a single row without ANSI resets bleeding into the rest.
	muted := styleMuted()
	status := muted.Render("status    " + statusutil.Label(string(t.Status)))
	if t.Status == model.TaskStatusDone {
		status = styleDone().Render("status    " + statusutil.Label(string(t.Status)))
	}
	meta := []string{
		status,
		muted.Render(fmt.Sprintf("priority  %s", t.Priority)),
		muted.Render(fmt.Sprintf("score     %.1f", score.TaskScore(t, now))),
	}
	if t.Due != nil && t.Due.Date != "" {
		d := t.Due.Date
		if t.DueTime != nil && *t.DueTime != "" {
			d += " " + *t.DueTime
		}
		line := "due       " + d
		today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
		if due := t.Due.Time(); t.Status != model.TaskStatusDone && !due.IsZero() && due.Before(today) {
			meta = append(meta, styleOverdue().Render(line+"  (overdue)"))
		} else {
			meta = append(meta, muted.Render(line))
		}
	}
	if t.EstimatedMinutes > 0 {
		meta = append(meta, muted.Render(fmt.Sprintf("estimate  %dm", t.EstimatedMinutes)))
	}
	if t.CompletedAt != nil {
		meta = append(meta, muted.Render("completed "+t.CompletedAt.Local().Format("2006-01-02 15:04")))
	}
	if n := len(db.AttachmentsOf(t.ID)); n > 0 {
		meta = append(meta, muted.Render(fmt.Sprintf("files     %d", n)))
	}

	sections := []string{title, strings.Join(meta, "\n")}

	if strings.TrimSpace(t.Description) != "" {
		sections = append(sections, renderMarkdown(t.Description, width))
	}

	body := strings.Join(sections, "\n\n")
	return lipgloss.NewStyle().Width(width).Height(height).Render(body)
}
