package score

import (
	"sort"
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/store"
)

// TodayLimit caps the today view; past that point the list stops being a
// plan for the day.
const TodayLimit = 50

// RankedTask is a task annotated with its computed score and the resolved
// project name, ready for rendering.
type RankedTask struct {
	Task        model.Task `json:"task"`
	Score       float64    `json:"score"`
	ProjectName string     `json:"projectName,omitempty"`
}

// TodayTasks returns the user's working set for the day: unfinished,
// unarchived tasks that are due by end of today or carry no due date,
// highest score first, capped at TodayLimit.
func TodayTasks(db *store.DB, userID string, now time.Time) []RankedTask {
	userID = strings.TrimSpace(userID)
	if db == nil || userID == "" {
		return nil
	}
	today := midnightUTC(now)
	var out []RankedTask
	for _, t := range db.Tasks {
		if t.UserID != userID || t.Archived || t.Status == model.TaskStatusDone {
			continue
		}
		if t.Due != nil {
			d := t.Due.Time()
			if !d.IsZero() && d.After(today) {
				continue
			}
		}
		out = append(out, annotate(db, t, now))
	}
	sortRanked(out)
	if len(out) > TodayLimit {
		out = out[:TodayLimit]
	}
	return out
}

// OverdueTasks returns unfinished tasks whose due date is strictly before
// today, highest score first.
func OverdueTasks(db *store.DB, userID string, now time.Time) []RankedTask {
	userID = strings.TrimSpace(userID)
	if db == nil || userID == "" {
		return nil
	}
	today := midnightUTC(now)
	var out []RankedTask
	for _, t := range db.Tasks {
		if t.UserID != userID || t.Archived || t.Status == model.TaskStatusDone || t.Due == nil {
			continue
		}
		d := t.Due.Time()
		if d.IsZero() || !d.Before(today) {
			continue
		}
		out = append(out, annotate(db, t, now))
	}
	sortRanked(out)
	return out
}

func annotate(db *store.DB, t model.Task, now time.Time) RankedTask {
	rt := RankedTask{Task: t, Score: TaskScore(t, now)}
	if p, ok := db.FindProject(t.ProjectID); ok {
		rt.ProjectName = p.Name
	}
	return rt
}

func sortRanked(ts []RankedTask) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Score != ts[j].Score {
			return ts[i].Score > ts[j].Score
		}
		if !ts[i].Task.CreatedAt.Equal(ts[j].Task.CreatedAt) {
			return ts[i].Task.CreatedAt.Before(ts[j].Task.CreatedAt)
		}
		return ts[i].Task.ID < ts[j].Task.ID
	})
}
