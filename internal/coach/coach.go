// Package coach explains why a task matters.
//
// The rule-based engine is always available: it walks the task's vertical
// context (task, project, area, pillar) and produces a deterministic
// statement with the score breakdown. When an API key is configured the
// statement is additionally rephrased by a remote model; a remote failure
// falls back to the deterministic answer, never to invented content.
package coach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/mutate"
	"aurum-life/internal/score"
	"aurum-life/internal/store"
)

const (
	SourceRules = "rules"
	SourceModel = "anthropic"
)

// Why is a task's alignment story: where it sits in the hierarchy, what
// finishing it earns, and a statement tying the two together.
type Why struct {
	TaskID      string `json:"taskId"`
	TaskName    string `json:"taskName"`
	ProjectName string `json:"projectName,omitempty"`
	AreaName    string `json:"areaName,omitempty"`
	PillarName  string `json:"pillarName,omitempty"`

	Statement string `json:"statement"`
	Narrative string `json:"narrative,omitempty"`
	Source    string `json:"source"`

	Score          float64 `json:"score"`
	PriorityWeight float64 `json:"priorityWeight"`
	Urgency        float64 `json:"urgency"`
	Points         int     `json:"points"`
}

// WhyStatement builds the deterministic answer for one task.
func WhyStatement(db *store.DB, userID, taskID string, now time.Time) (Why, error) {
	task, ok := db.FindTask(strings.TrimSpace(taskID))
	if !ok || task.UserID != strings.TrimSpace(userID) {
		return Why{}, mutate.NotFoundError{Kind: "task", ID: strings.TrimSpace(taskID)}
	}

	why := Why{
		TaskID:         task.ID,
		TaskName:       task.Name,
		Source:         SourceRules,
		Score:          score.TaskScore(*task, now),
		PriorityWeight: float64(score.PriorityWeight(task.Priority)),
		Urgency:        float64(score.UrgencyScore(task.Due, now)),
	}

	projectPriority := model.PriorityMedium
	areaImportance := 0
	if project, ok := db.FindProject(task.ProjectID); ok {
		why.ProjectName = project.Name
		projectPriority = project.Priority
		if area, ok := db.FindArea(project.AreaID); ok {
			why.AreaName = area.Name
			areaImportance = area.Importance
			if pillar, ok := db.FindPillar(area.PillarID); ok {
				why.PillarName = pillar.Name
			}
		}
	}
	why.Points = score.AlignmentPoints(task.Priority, projectPriority, areaImportance)
	why.Statement = buildStatement(why, task, now)
	return why, nil
}

func buildStatement(why Why, task *model.Task, now time.Time) string {
	var parts []string
	switch {
	case why.PillarName != "":
		parts = append(parts, fmt.Sprintf("Completing %q moves %q forward in your %q area and strengthens your %q pillar.",
			why.TaskName, why.ProjectName, why.AreaName, why.PillarName))
	case why.AreaName != "":
		parts = append(parts, fmt.Sprintf("Completing %q moves %q forward in your %q area.",
			why.TaskName, why.ProjectName, why.AreaName))
	case why.ProjectName != "":
		parts = append(parts, fmt.Sprintf("Completing %q moves %q forward.", why.TaskName, why.ProjectName))
	default:
		parts = append(parts, fmt.Sprintf("Completing %q clears an open commitment.", why.TaskName))
	}

	switch {
	case task.Due != nil && why.Urgency >= 100:
		parts = append(parts, "It is due now, which puts it at the top of today's list.")
	case task.Due != nil && why.Urgency > 0:
		parts = append(parts, fmt.Sprintf("Its due date is approaching (urgency %.0f of 100).", why.Urgency))
	case task.Priority == model.PriorityHigh:
		parts = append(parts, "You marked it high priority.")
	}

	parts = append(parts, fmt.Sprintf("Finishing it earns %d alignment points.", why.Points))
	return strings.Join(parts, " ")
}

// Focus is the daily briefing: the top of today's list plus streak
// context.
type Focus struct {
	Date    string             `json:"date"`
	Summary string             `json:"summary"`
	Tasks   []score.RankedTask `json:"tasks"`
	Streak  int                `json:"streak"`
}

// FocusLimit caps how many tasks the briefing surfaces.
const FocusLimit = 5

// DailyFocus summarizes what deserves attention today.
func DailyFocus(db *store.DB, userID string, now time.Time) Focus {
	ranked := score.TodayTasks(db, userID, now)
	if len(ranked) > FocusLimit {
		ranked = ranked[:FocusLimit]
	}

	f := Focus{
		Date:  now.UTC().Format("2006-01-02"),
		Tasks: ranked,
	}
	if u, ok := db.FindUser(strings.TrimSpace(userID)); ok {
		f.Streak = u.CurrentStreak
	}

	switch {
	case len(ranked) == 0:
		f.Summary = "Nothing is scheduled for today. Pick one thing that moves a pillar."
	case len(ranked) == 1:
		f.Summary = fmt.Sprintf("One task deserves your attention today: %q.", ranked[0].Task.Name)
	default:
		f.Summary = fmt.Sprintf("%d tasks deserve your attention today. Start with %q.", len(ranked), ranked[0].Task.Name)
	}
	return f
}

// Coach answers "why does this task matter" with the best available
// engine.
type Coach struct {
	Client *Client // nil means rule-based answers only
}

// New wires the remote client when an API key is configured and falls
// back to rule-based answers when it is not.
func New() *Coach {
	c, err := NewClientFromEnv()
	if err != nil {
		return &Coach{}
	}
	return &Coach{Client: c}
}

// Why builds the deterministic answer and, when a remote client is
// configured, asks it to rephrase. A remote failure keeps the
// deterministic statement; it never invents content.
func (c *Coach) Why(ctx context.Context, db *store.DB, userID, taskID string, now time.Time) (Why, error) {
	why, err := WhyStatement(db, userID, taskID, now)
	if err != nil {
		return Why{}, err
	}
	if c.Client == nil {
		return why, nil
	}
	narrative, err := c.Client.Narrate(ctx, why)
	if err != nil {
		return why, nil
	}
	why.Narrative = narrative
	why.Source = SourceModel
	return why, nil
}
