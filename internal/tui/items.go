package tui

import (
	"fmt"
	"strings"

	"aurum-life/internal/model"
	"aurum-life/internal/statusutil"
)

type pillarItem struct {
	pillar model.Pillar
	areas  int
}

func (i pillarItem) FilterValue() string { return i.pillar.Name }

func (i pillarItem) Title() string {
	t := i.pillar.Name
	if strings.TrimSpace(i.pillar.Icon) != "" {
		t = i.pillar.Icon + " " + t
	}
	return t
}

func (i pillarItem) Description() string {
	parts := []string{plural(i.areas, "area")}
	if i.pillar.TimeAllocationPct > 0 {
		parts = append(parts, fmt.Sprintf("%d%% of week", i.pillar.TimeAllocationPct))
	}
	return strings.Join(parts, "  ·  ")
}

type areaItem struct {
	area     model.Area
	projects int
}

func (i areaItem) FilterValue() string { return i.area.Name }

func (i areaItem) Title() string {
	t := i.area.Name
	if strings.TrimSpace(i.area.Icon) != "" {
		t = i.area.Icon + " " + t
	}
	return t
}

func (i areaItem) Description() string {
	return fmt.Sprintf("%s  ·  importance %d/5", plural(i.projects, "project"), i.area.Importance)
}

type projectItem struct {
	project model.Project
	done    int
	total   int
}

func (i projectItem) FilterValue() string { return i.project.Name }

func (i projectItem) Title() string {
	return statusutil.ProjectGlyph(i.project.Status) + " " + i.project.Name
}

func (i projectItem) Description() string {
	parts := []string{
		statusutil.Label(string(i.project.Status)),
		string(i.project.Priority),
		fmt.Sprintf("%d/%d tasks", i.done, i.total),
	}
	if i.project.Deadline != nil && i.project.Deadline.Date != "" {
		parts = append(parts, "due "+i.project.Deadline.Date)
	}
	return strings.Join(parts, "  ·  ")
}

// taskItem renders one line; the task list uses the compact delegate so
// Description is never shown there.
type taskItem struct {
	task  model.Task
	score float64
}

func (i taskItem) FilterValue() string { return i.task.Name }

func (i taskItem) Title() string {
	var b strings.Builder
	b.WriteString(statusutil.TaskGlyph(i.task.Status))
	b.WriteString(" ")
	b.WriteString(i.task.Name)

	var meta []string
	if i.task.Priority == model.PriorityHigh {
		meta = append(meta, "high")
	}
	if i.task.Due != nil && i.task.Due.Date != "" {
		d := "due " + i.task.Due.Date
		if i.task.DueTime != nil && *i.task.DueTime != "" {
			d += " " + *i.task.DueTime
		}
		meta = append(meta, d)
	}
	if len(meta) > 0 {
		b.WriteString("  (")
		b.WriteString(strings.Join(meta, ", "))
		b.WriteString(")")
	}
	return b.String()
}

func (i taskItem) Description() string { return i.task.ID }

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
