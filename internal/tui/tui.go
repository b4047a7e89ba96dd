// Package tui is the interactive terminal client: a bubbletea program that
// drills down the pillar hierarchy, renders task detail as markdown, and
// picks up on-disk changes made by the CLI or the web server while it runs.
package tui

import (
	"context"

	"aurum-life/internal/nav"
	"aurum-life/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(s store.Store, db *store.DB, userID string) error {
	applyColorProfilePreference()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Change watching is best effort; 'r' still reloads by hand without it.
	changes, err := s.Watch(ctx)
	if err != nil {
		changes = nil
	}

	m := newAppModel(s, db, userID, changes)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(appModel); ok {
		fm.persistUIState()
	}
	return nil
}

// persistUIState saves the drill-down position so the next run (and the web
// client) resumes where the user left off.
func (m appModel) persistUIState() {
	st, err := m.s.LoadSettings(m.userID)
	if err != nil || st == nil {
		st = store.DefaultSettings()
	}
	st.UIState = nav.ToUIState(m.ctx, "hierarchy")
	_ = m.s.SaveSettings(m.userID, st)
}
