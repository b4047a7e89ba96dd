package score

import (
	"sort"
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/store"
)

// DefaultMonthlyGoal is the alignment-point target used when the user has
// not set one.
const DefaultMonthlyGoal = 300

// PillarStat rolls a pillar's subtree up into progress numbers.
type PillarStat struct {
	PillarID          string  `json:"pillarId"`
	Name              string  `json:"name"`
	Icon              string  `json:"icon,omitempty"`
	Color             string  `json:"color,omitempty"`
	TimeAllocationPct int     `json:"timeAllocationPct"`
	TimeTargetWeekMin int     `json:"timeTargetMinutesWeek,omitempty"`
	TimeSpentMinutes  int     `json:"timeSpentMinutes"`
	Areas             int     `json:"areas"`
	Projects          int     `json:"projects"`
	Tasks             int     `json:"tasks"`
	CompletedTasks    int     `json:"completedTasks"`
	ProgressPct       float64 `json:"progressPct"`
}

// PillarStats computes per-pillar rollups in rank order. Archived pillars
// are skipped; archived descendants still count toward their pillar.
func PillarStats(db *store.DB, userID string) []PillarStat {
	userID = strings.TrimSpace(userID)
	if db == nil || userID == "" {
		return nil
	}
	var out []PillarStat
	for _, pillarID := range db.PillarsForUser(userID) {
		p, ok := db.FindPillar(pillarID)
		if !ok || p.Archived {
			continue
		}
		st := PillarStat{
			PillarID:          p.ID,
			Name:              p.Name,
			Icon:              p.Icon,
			Color:             p.Color,
			TimeAllocationPct: p.TimeAllocationPct,
			TimeTargetWeekMin: p.TimeTargetMinutesWeek,
			TimeSpentMinutes:  p.TimeSpentMinutes,
		}
		for _, areaID := range db.AreasOf(pillarID) {
			st.Areas++
			for _, projectID := range db.ProjectsOf(areaID) {
				st.Projects++
				for _, taskID := range db.TasksOf(projectID) {
					t, ok := db.FindTask(taskID)
					if !ok {
						continue
					}
					st.Tasks++
					if t.Status == model.TaskStatusDone {
						st.CompletedTasks++
					}
				}
			}
		}
		st.ProgressPct = pct(st.CompletedTasks, st.Tasks)
		out = append(out, st)
	}
	return out
}

// DashboardStats is the headline summary for the dashboard.
type DashboardStats struct {
	Pillars        int     `json:"pillars"`
	Areas          int     `json:"areas"`
	Projects       int     `json:"projects"`
	Tasks          int     `json:"tasks"`
	CompletedTasks int     `json:"completedTasks"`
	CompletionPct  float64 `json:"completionPct"`
	DueToday       int     `json:"dueToday"`
	Overdue        int     `json:"overdue"`

	Level         int `json:"level"`
	TotalPoints   int `json:"totalPoints"`
	CurrentStreak int `json:"currentStreak"`
}

func Dashboard(db *store.DB, userID string, now time.Time) DashboardStats {
	userID = strings.TrimSpace(userID)
	var st DashboardStats
	if db == nil || userID == "" {
		return st
	}
	for _, p := range db.Pillars {
		if p.UserID == userID && !p.Archived {
			st.Pillars++
		}
	}
	for _, a := range db.Areas {
		if a.UserID == userID && !a.Archived {
			st.Areas++
		}
	}
	for _, p := range db.Projects {
		if p.UserID == userID && !p.Archived {
			st.Projects++
		}
	}
	today := midnightUTC(now)
	for _, t := range db.Tasks {
		if t.UserID != userID || t.Archived {
			continue
		}
		st.Tasks++
		if t.Status == model.TaskStatusDone {
			st.CompletedTasks++
			continue
		}
		if t.Due == nil {
			continue
		}
		switch d := t.Due.Time(); {
		case d.IsZero():
		case d.Before(today):
			st.Overdue++
		case d.Equal(today):
			st.DueToday++
		}
	}
	st.CompletionPct = pct(st.CompletedTasks, st.Tasks)
	if u, ok := db.FindUser(userID); ok {
		st.Level = u.Level
		st.TotalPoints = u.TotalPoints
		st.CurrentStreak = u.CurrentStreak
	}
	return st
}

// AlignmentSnapshot reports recently earned alignment points against the
// monthly goal. Points are recomputed from completed tasks so the numbers
// stay correct even after imports or manual edits.
type AlignmentSnapshot struct {
	RollingWeeklyPoints int     `json:"rollingWeeklyPoints"`
	MonthlyPoints       int     `json:"monthlyPoints"`
	MonthlyGoal         int     `json:"monthlyGoal"`
	GoalProgressPct     float64 `json:"goalProgressPct"`
}

func Alignment(db *store.DB, userID string, now time.Time, monthlyGoal int) AlignmentSnapshot {
	if monthlyGoal <= 0 {
		monthlyGoal = DefaultMonthlyGoal
	}
	snap := AlignmentSnapshot{MonthlyGoal: monthlyGoal}
	userID = strings.TrimSpace(userID)
	if db == nil || userID == "" {
		return snap
	}
	now = now.UTC()
	weekStart := now.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for _, t := range db.Tasks {
		if t.UserID != userID || t.Status != model.TaskStatusDone || t.CompletedAt == nil {
			continue
		}
		points := completionPointsFor(db, t)
		done := t.CompletedAt.UTC()
		if done.After(weekStart) {
			snap.RollingWeeklyPoints += points
		}
		if !done.Before(monthStart) {
			snap.MonthlyPoints += points
		}
	}
	snap.GoalProgressPct = pct(snap.MonthlyPoints, monthlyGoal)
	return snap
}

func completionPointsFor(db *store.DB, t model.Task) int {
	var projectPriority model.Priority
	importance := 0
	if p, ok := db.FindProject(t.ProjectID); ok {
		projectPriority = p.Priority
		if a, ok := db.FindArea(p.AreaID); ok {
			importance = a.Importance
		}
	}
	return AlignmentPoints(t.Priority, projectPriority, importance)
}

// Insights summarizes how work is distributed and where completions come
// from, for the insights screen.
type Insights struct {
	TasksByStatus      map[string]int `json:"tasksByStatus"`
	TasksByPriority    map[string]int `json:"tasksByPriority"`
	ActiveProjects     int            `json:"activeProjects"`
	OverdueTasks       int            `json:"overdueTasks"`
	DueToday           int            `json:"dueToday"`
	CompletedLast7Days int            `json:"completedLast7Days"`
	// TopPillars lists pillar names by completed tasks, busiest first.
	TopPillars []string `json:"topPillars,omitempty"`
}

func BuildInsights(db *store.DB, userID string, now time.Time) Insights {
	ins := Insights{
		TasksByStatus:   map[string]int{},
		TasksByPriority: map[string]int{},
	}
	userID = strings.TrimSpace(userID)
	if db == nil || userID == "" {
		return ins
	}
	now = now.UTC()
	today := midnightUTC(now)
	weekAgo := now.AddDate(0, 0, -7)

	for _, p := range db.Projects {
		if p.UserID == userID && !p.Archived && p.Status == model.ProjectStatusInProgress {
			ins.ActiveProjects++
		}
	}

	completedByPillar := map[string]int{}
	for _, t := range db.Tasks {
		if t.UserID != userID || t.Archived {
			continue
		}
		ins.TasksByStatus[string(t.Status)]++
		ins.TasksByPriority[string(t.Priority)]++
		if t.Status == model.TaskStatusDone {
			if t.CompletedAt != nil && t.CompletedAt.UTC().After(weekAgo) {
				ins.CompletedLast7Days++
				if name, ok := pillarNameOf(db, t.ProjectID); ok {
					completedByPillar[name]++
				}
			}
			continue
		}
		if t.Due != nil {
			switch d := t.Due.Time(); {
			case d.IsZero():
			case d.Before(today):
				ins.OverdueTasks++
			case d.Equal(today):
				ins.DueToday++
			}
		}
	}

	ins.TopPillars = rankByCount(completedByPillar)
	return ins
}

func pillarNameOf(db *store.DB, projectID string) (string, bool) {
	p, ok := db.FindProject(projectID)
	if !ok {
		return "", false
	}
	a, ok := db.FindArea(p.AreaID)
	if !ok {
		return "", false
	}
	pil, ok := db.FindPillar(a.PillarID)
	if !ok {
		return "", false
	}
	return pil.Name, true
}

func rankByCount(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func pct(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
