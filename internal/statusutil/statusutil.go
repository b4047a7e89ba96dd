// Package statusutil maps task/project statuses and priorities onto the
// glyphs, labels, and sort weights the terminal UI renders with.
package statusutil

import (
	"strings"

	"aurum-life/internal/model"
)

// TaskGlyph returns the one-character marker shown in front of a task.
func TaskGlyph(s model.TaskStatus) string {
	switch s {
	case model.TaskStatusDone:
		return "✓"
	case model.TaskStatusInProgress:
		return "›"
	default:
		return "·"
	}
}

// ProjectGlyph returns the marker shown in front of a project.
func ProjectGlyph(s model.ProjectStatus) string {
	switch s {
	case model.ProjectStatusCompleted:
		return "✓"
	case model.ProjectStatusInProgress:
		return "›"
	case model.ProjectStatusOnHold:
		return "="
	default:
		return "·"
	}
}

// Label renders an enum value for humans: underscores become spaces.
func Label(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
}

// NextTaskStatus cycles todo → in_progress → done → todo. The TUI binds
// this to a single key, so completion must be reachable from any state.
func NextTaskStatus(s model.TaskStatus) model.TaskStatus {
	switch s {
	case model.TaskStatusTodo:
		return model.TaskStatusInProgress
	case model.TaskStatusInProgress:
		return model.TaskStatusDone
	default:
		return model.TaskStatusTodo
	}
}

// TaskStatusWeight orders statuses for display: active work first, done last.
func TaskStatusWeight(s model.TaskStatus) int {
	switch s {
	case model.TaskStatusInProgress:
		return 0
	case model.TaskStatusTodo:
		return 1
	default:
		return 2
	}
}

// PriorityWeight orders priorities for display, most urgent first.
func PriorityWeight(p model.Priority) int {
	switch p {
	case model.PriorityHigh:
		return 0
	case model.PriorityMedium:
		return 1
	default:
		return 2
	}
}
