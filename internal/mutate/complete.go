package mutate

import (
	"errors"
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/perm"
	"aurum-life/internal/score"
	"aurum-life/internal/store"
)

// CompleteTask marks a task done and applies the reward side effects:
// alignment points and level on the user, the daily streak, and logged
// time on the owning pillar. Completing an already-done task is a no-op.
func CompleteTask(db *store.DB, userID, taskID string) (TaskResult, error) {
	userID = strings.TrimSpace(userID)
	taskID = strings.TrimSpace(taskID)
	if db == nil || userID == "" {
		return TaskResult{}, errors.New("missing db/user")
	}
	t, ok := db.FindTask(taskID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !perm.CanAccessTask(db, userID, t) {
		return TaskResult{}, NotOwnerError{UserID: userID, OwnerUserID: t.UserID, Kind: "task", ID: taskID}
	}
	if t.Status == model.TaskStatusDone {
		return TaskResult{Task: t, Changed: false}, nil
	}

	now := time.Now().UTC()
	t.Status = model.TaskStatusDone
	t.CompletedAt = &now
	t.UpdatedAt = now

	points := completionPoints(db, t)
	streak := 0
	if u, ok := db.FindUser(userID); ok {
		applyActivity(u, points, now)
		streak = u.CurrentStreak
	}
	creditPillarTime(db, t, now)
	db.MarkDirty()

	return TaskResult{
		Task:    t,
		Changed: true,
		EventPayload: map[string]any{
			"points": points,
			"streak": streak,
		},
	}, nil
}

// UncompleteTask reopens a done task. Earned points, level, and streak are
// deliberately left alone; rewards are append-only so reopening a task is
// never punitive.
func UncompleteTask(db *store.DB, userID, taskID string) (TaskResult, error) {
	userID = strings.TrimSpace(userID)
	taskID = strings.TrimSpace(taskID)
	if db == nil || userID == "" {
		return TaskResult{}, errors.New("missing db/user")
	}
	t, ok := db.FindTask(taskID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !perm.CanAccessTask(db, userID, t) {
		return TaskResult{}, NotOwnerError{UserID: userID, OwnerUserID: t.UserID, Kind: "task", ID: taskID}
	}
	if t.Status != model.TaskStatusDone {
		return TaskResult{Task: t, Changed: false}, nil
	}

	now := time.Now().UTC()
	t.Status = model.TaskStatusTodo
	t.CompletedAt = nil
	t.UpdatedAt = now
	db.MarkDirty()

	return TaskResult{
		Task:         t,
		Changed:      true,
		EventPayload: map[string]any{"status": string(model.TaskStatusTodo)},
	}, nil
}

func completionPoints(db *store.DB, t *model.Task) int {
	var projectPriority model.Priority
	importance := 0
	if p, ok := db.FindProject(t.ProjectID); ok {
		projectPriority = p.Priority
		if a, ok := db.FindArea(p.AreaID); ok {
			importance = a.Importance
		}
	}
	return score.AlignmentPoints(t.Priority, projectPriority, importance)
}

// applyActivity credits points and advances the daily streak. The streak
// grows only on the first completion of a day, survives a same-day repeat,
// and resets after a missed day.
func applyActivity(u *model.User, points int, now time.Time) {
	u.TotalPoints += points
	u.Level = score.LevelForPoints(u.TotalPoints)

	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	switch u.LastActivityDate {
	case today:
	case yesterday:
		u.CurrentStreak++
	default:
		u.CurrentStreak = 1
	}
	u.LastActivityDate = today
}

// creditPillarTime adds the task's estimate to the owning pillar's logged
// time. Tasks without an estimate credit nothing.
func creditPillarTime(db *store.DB, t *model.Task, now time.Time) {
	if t.EstimatedMinutes <= 0 {
		return
	}
	p, ok := db.FindProject(t.ProjectID)
	if !ok {
		return
	}
	a, ok := db.FindArea(p.AreaID)
	if !ok {
		return
	}
	pil, ok := db.FindPillar(a.PillarID)
	if !ok {
		return
	}
	pil.TimeSpentMinutes += t.EstimatedMinutes
	pil.UpdatedAt = now
}
