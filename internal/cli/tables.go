package cli

import (
	"fmt"
	"strconv"
	"time"

	"aurum-life/internal/format"
	"aurum-life/internal/model"
	"aurum-life/internal/onboarding"
	"aurum-life/internal/score"
	"aurum-life/internal/store"
)

// List payloads implement format.Tabler so `--format table` renders an
// aligned grid. Their JSON shape matches single-result commands: the
// entities live under "data".

func intCell(n int) string { return strconv.Itoa(n) }

func dateCell(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.Date
}

func timeCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func archivedCell(archived bool) string {
	if archived {
		return "yes"
	}
	return ""
}

type userListPayload struct {
	CurrentUserID string       `json:"currentUserId,omitempty"`
	Data          []model.User `json:"data"`
}

func (p userListPayload) Table() *format.Table {
	t := &format.Table{Columns: []string{"ID", "NAME", "EMAIL", "LEVEL", "POINTS", "STREAK", "CURRENT"}}
	for _, u := range p.Data {
		current := ""
		if u.ID == p.CurrentUserID {
			current = "*"
		}
		t.AddRow(u.ID, u.Name, u.Email, intCell(u.Level), intCell(u.TotalPoints), intCell(u.CurrentStreak), current)
	}
	return t
}

type pillarListPayload struct {
	Data []model.Pillar `json:"data"`
}

func (p pillarListPayload) Table() *format.Table {
	t := &format.Table{Columns: []string{"ID", "NAME", "ICON", "TIME%", "SPENT(MIN)", "ARCHIVED"}}
	for _, pl := range p.Data {
		t.AddRow(pl.ID, pl.Name, pl.Icon, intCell(pl.TimeAllocationPct), intCell(pl.TimeSpentMinutes), archivedCell(pl.Archived))
	}
	return t
}

type areaListPayload struct {
	Data []model.Area `json:"data"`
}

func (p areaListPayload) Table() *format.Table {
	t := &format.Table{Columns: []string{"ID", "NAME", "ICON", "IMPORTANCE", "ARCHIVED"}}
	for _, a := range p.Data {
		t.AddRow(a.ID, a.Name, a.Icon, intCell(a.Importance), archivedCell(a.Archived))
	}
	return t
}

type projectListPayload struct {
	Data []model.Project `json:"data"`
}

func (p projectListPayload) Table() *format.Table {
	t := &format.Table{Columns: []string{"ID", "NAME", "STATUS", "PRIORITY", "DEADLINE", "ARCHIVED"}}
	for _, pr := range p.Data {
		t.AddRow(pr.ID, pr.Name, format.StatusCell(string(pr.Status)), format.PriorityCell(string(pr.Priority)), dateCell(pr.Deadline), archivedCell(pr.Archived))
	}
	return t
}

type taskListPayload struct {
	Data []model.Task `json:"data"`
}

func (p taskListPayload) Table() *format.Table {
	t := &format.Table{Columns: []string{"ID", "NAME", "STATUS", "PRIORITY", "DUE", "EST(MIN)", "ARCHIVED"}}
	for _, ts := range p.Data {
		due := dateCell(ts.Due)
		if ts.DueTime != nil && due != "" {
			due += " " + *ts.DueTime
		}
		t.AddRow(ts.ID, ts.Name, format.StatusCell(string(ts.Status)), format.PriorityCell(string(ts.Priority)), due, intCell(ts.EstimatedMinutes), archivedCell(ts.Archived))
	}
	return t
}

type rankedTaskListPayload struct {
	Data []score.RankedTask `json:"data"`
}

func (p rankedTaskListPayload) Table() *format.Table {
	t := &format.Table{Columns: []string{"ID", "NAME", "PROJECT", "PRIORITY", "DUE", "SCORE"}}
	for _, r := range p.Data {
		due := dateCell(r.Task.Due)
		if r.Task.DueTime != nil && due != "" {
			due += " " + *r.Task.DueTime
		}
		t.AddRow(r.Task.ID, r.Task.Name, r.ProjectName, format.PriorityCell(string(r.Task.Priority)), due, fmt.Sprintf("%.1f", r.Score))
	}
	return t
}

type dashboardPayload struct {
	Data    score.DashboardStats `json:"data"`
	Pillars []score.PillarStat   `json:"pillars"`
}

func (p dashboardPayload) Table() *format.Table {
	t := &format.Table{Columns: []string{"PILLAR", "AREAS", "PROJECTS", "TASKS", "DONE", "PROGRESS", "TIME%"}}
	for _, st := range p.Pillars {
		t.AddRow(st.Name, intCell(st.Areas), intCell(st.Projects), intCell(st.Tasks), intCell(st.CompletedTasks), fmt.Sprintf("%.0f%%", st.ProgressPct), intCell(st.TimeAllocationPct))
	}
	return t
}

type journalListPayload struct {
	Data []model.JournalEntry `json:"data"`
}

func (p journalListPayload) Table() *format.Table {
	t := &format.Table{Columns: []string{"ID", "TITLE", "MOOD", "TAGS", "CREATED"}}
	for _, e := range p.Data {
		tags := ""
		for i, tag := range e.Tags {
			if i > 0 {
				tags += ","
			}
			tags += tag
		}
		t.AddRow(e.ID, e.Title, string(e.Mood), tags, timeCell(e.CreatedAt))
	}
	return t
}

type eventListPayload struct {
	Data []model.Event `json:"data"`
}

func (p eventListPayload) Table() *format.Table {
	t := &format.Table{Columns: []string{"TS", "TYPE", "ENTITY", "USER"}}
	for _, e := range p.Data {
		t.AddRow(timeCell(e.TS), e.Type, e.EntityID, e.UserID)
	}
	return t
}

type backupListPayload struct {
	Data []store.BackupInfo `json:"data"`
}

func (p backupListPayload) Table() *format.Table {
	t := &format.Table{Columns: []string{"NAME", "SIZE(B)", "CREATED"}}
	for _, b := range p.Data {
		t.AddRow(b.Name, strconv.FormatInt(b.SizeBytes, 10), timeCell(b.CreatedAt))
	}
	return t
}

type personaListPayload struct {
	Data []onboarding.Persona `json:"data"`
}

func (p personaListPayload) Table() *format.Table {
	t := &format.Table{Columns: []string{"ID", "NAME", "PILLARS", "DESCRIPTION"}}
	for _, ps := range p.Data {
		t.AddRow(ps.ID, ps.Name, intCell(len(ps.Pillars)), ps.Description)
	}
	return t
}

type doctorPayload struct {
	Data store.DoctorReport `json:"data"`
	Meta map[string]any     `json:"meta"`
}

func (p doctorPayload) Table() *format.Table {
	t := &format.Table{Columns: []string{"LEVEL", "CODE", "ENTITY", "MESSAGE"}}
	for _, is := range p.Data.Issues {
		entity := is.EntityKind
		if is.EntityID != "" {
			entity += ":" + is.EntityID
		}
		t.AddRow(string(is.Level), is.Code, entity, is.Message)
	}
	return t
}
