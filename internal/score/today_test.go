package score

import (
	"testing"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/store"
)

func seedHierarchy(t *testing.T) (*store.DB, string) {
	t.Helper()
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	db := &store.DB{
		Version: store.CurrentVersion,
		Users: []model.User{
			{ID: "user-1", Email: "ana@example.com", Name: "Ana", Level: 2, TotalPoints: 140, CurrentStreak: 3, CreatedAt: now},
		},
		Pillars: []model.Pillar{
			{ID: "pil-1", UserID: "user-1", Name: "Health", Rank: "a", TimeAllocationPct: 40, CreatedAt: now, UpdatedAt: now},
		},
		Areas: []model.Area{
			{ID: "area-1", UserID: "user-1", PillarID: "pil-1", Name: "Fitness", Importance: 4, Rank: "a", CreatedAt: now, UpdatedAt: now},
		},
		Projects: []model.Project{
			{ID: "proj-1", UserID: "user-1", AreaID: "area-1", Name: "Marathon", Status: model.ProjectStatusInProgress, Priority: model.PriorityHigh, Rank: "a", CreatedAt: now, UpdatedAt: now},
		},
	}
	return db, "user-1"
}

func addTask(db *store.DB, id, name string, priority model.Priority, due string, status model.TaskStatus, archived bool) {
	t := model.Task{
		ID:        id,
		UserID:    "user-1",
		ProjectID: "proj-1",
		Name:      name,
		Status:    status,
		Priority:  priority,
		Rank:      id,
		Archived:  archived,
		CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	if due != "" {
		t.Due = &model.Date{Date: due}
	}
	if status == model.TaskStatusDone {
		done := time.Date(2026, 8, 19, 18, 0, 0, 0, time.UTC)
		t.CompletedAt = &done
	}
	db.Tasks = append(db.Tasks, t)
	db.MarkDirty()
}

func TestTodayTasks_FiltersAndOrders(t *testing.T) {
	db, userID := seedHierarchy(t)
	now := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)

	addTask(db, "t-overdue", "Overdue low", model.PriorityLow, "2026-08-10", model.TaskStatusTodo, false)
	addTask(db, "t-today", "Due today high", model.PriorityHigh, "2026-08-21", model.TaskStatusTodo, false)
	addTask(db, "t-nodue", "No due medium", model.PriorityMedium, "", model.TaskStatusTodo, false)
	addTask(db, "t-tomorrow", "Tomorrow", model.PriorityHigh, "2026-08-22", model.TaskStatusTodo, false)
	addTask(db, "t-done", "Done", model.PriorityHigh, "2026-08-21", model.TaskStatusDone, false)
	addTask(db, "t-archived", "Archived", model.PriorityHigh, "2026-08-21", model.TaskStatusTodo, true)

	got := TodayTasks(db, userID, now)
	if len(got) != 3 {
		ids := make([]string, len(got))
		for i, rt := range got {
			ids[i] = rt.Task.ID
		}
		t.Fatalf("expected 3 tasks, got %v", ids)
	}
	// high+due today (100) > low+overdue (58) > medium no due (36)
	if got[0].Task.ID != "t-today" || got[1].Task.ID != "t-overdue" || got[2].Task.ID != "t-nodue" {
		t.Fatalf("unexpected order: %q %q %q", got[0].Task.ID, got[1].Task.ID, got[2].Task.ID)
	}
	if got[0].Score != 100 {
		t.Fatalf("top score = %v", got[0].Score)
	}
	if got[0].ProjectName != "Marathon" {
		t.Fatalf("project name not resolved: %q", got[0].ProjectName)
	}
}

func TestOverdueTasks_StrictlyBeforeToday(t *testing.T) {
	db, userID := seedHierarchy(t)
	now := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)

	addTask(db, "t-overdue", "Overdue", model.PriorityMedium, "2026-08-20", model.TaskStatusTodo, false)
	addTask(db, "t-today", "Due today", model.PriorityMedium, "2026-08-21", model.TaskStatusTodo, false)
	addTask(db, "t-nodue", "No due", model.PriorityMedium, "", model.TaskStatusTodo, false)

	got := OverdueTasks(db, userID, now)
	if len(got) != 1 || got[0].Task.ID != "t-overdue" {
		t.Fatalf("unexpected overdue set: %+v", got)
	}
}

func TestDashboard_CountsAndDueBuckets(t *testing.T) {
	db, userID := seedHierarchy(t)
	now := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)

	addTask(db, "t-overdue", "Overdue", model.PriorityMedium, "2026-08-19", model.TaskStatusTodo, false)
	addTask(db, "t-today", "Due today", model.PriorityMedium, "2026-08-21", model.TaskStatusTodo, false)
	addTask(db, "t-done", "Done", model.PriorityMedium, "2026-08-15", model.TaskStatusDone, false)
	addTask(db, "t-archived", "Archived", model.PriorityMedium, "2026-08-21", model.TaskStatusTodo, true)

	st := Dashboard(db, userID, now)
	if st.Pillars != 1 || st.Areas != 1 || st.Projects != 1 {
		t.Fatalf("hierarchy counts wrong: %+v", st)
	}
	if st.Tasks != 3 || st.CompletedTasks != 1 {
		t.Fatalf("task counts wrong: %+v", st)
	}
	if st.Overdue != 1 || st.DueToday != 1 {
		t.Fatalf("due buckets wrong: overdue=%d today=%d", st.Overdue, st.DueToday)
	}
	if st.Level != 2 || st.TotalPoints != 140 || st.CurrentStreak != 3 {
		t.Fatalf("user stats not surfaced: %+v", st)
	}
}

func TestPillarStats_RollsUpSubtree(t *testing.T) {
	db, userID := seedHierarchy(t)

	addTask(db, "t-1", "One", model.PriorityMedium, "", model.TaskStatusDone, false)
	addTask(db, "t-2", "Two", model.PriorityMedium, "", model.TaskStatusTodo, false)

	stats := PillarStats(db, userID)
	if len(stats) != 1 {
		t.Fatalf("expected one pillar stat, got %d", len(stats))
	}
	st := stats[0]
	if st.Areas != 1 || st.Projects != 1 || st.Tasks != 2 || st.CompletedTasks != 1 {
		t.Fatalf("rollup wrong: %+v", st)
	}
	if st.ProgressPct != 50 {
		t.Fatalf("progress = %v, want 50", st.ProgressPct)
	}
}

func TestAlignment_WindowsAndGoal(t *testing.T) {
	db, userID := seedHierarchy(t)
	now := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)

	// Done five days ago: inside both the rolling week and the month.
	recent := time.Date(2026, 8, 16, 12, 0, 0, 0, time.UTC)
	// Done on the 2nd: inside the month, outside the rolling week.
	earlier := time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)
	// Done in July: outside both.
	old := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

	for i, ts := range []time.Time{recent, earlier, old} {
		done := ts
		db.Tasks = append(db.Tasks, model.Task{
			ID:          "t-" + string(rune('a'+i)),
			UserID:      userID,
			ProjectID:   "proj-1",
			Name:        "Task",
			Status:      model.TaskStatusDone,
			Priority:    model.PriorityLow,
			CompletedAt: &done,
			CreatedAt:   ts,
		})
	}
	db.MarkDirty()

	// Each completion is worth 5 base + 15 project-high = 20 points.
	snap := Alignment(db, userID, now, 0)
	if snap.MonthlyGoal != DefaultMonthlyGoal {
		t.Fatalf("goal default not applied: %d", snap.MonthlyGoal)
	}
	if snap.RollingWeeklyPoints != 20 {
		t.Fatalf("weekly = %d, want 20", snap.RollingWeeklyPoints)
	}
	if snap.MonthlyPoints != 40 {
		t.Fatalf("monthly = %d, want 40", snap.MonthlyPoints)
	}

	custom := Alignment(db, userID, now, 80)
	if custom.GoalProgressPct != 50 {
		t.Fatalf("progress = %v, want 50", custom.GoalProgressPct)
	}
}

func TestBuildInsights_Buckets(t *testing.T) {
	db, userID := seedHierarchy(t)
	now := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)

	addTask(db, "t-overdue", "Overdue", model.PriorityHigh, "2026-08-19", model.TaskStatusTodo, false)
	addTask(db, "t-done", "Done recently", model.PriorityMedium, "", model.TaskStatusDone, false)

	ins := BuildInsights(db, userID, now)
	if ins.ActiveProjects != 1 {
		t.Fatalf("active projects = %d", ins.ActiveProjects)
	}
	if ins.TasksByStatus["todo"] != 1 || ins.TasksByStatus["done"] != 1 {
		t.Fatalf("status buckets wrong: %+v", ins.TasksByStatus)
	}
	if ins.OverdueTasks != 1 {
		t.Fatalf("overdue = %d", ins.OverdueTasks)
	}
	if ins.CompletedLast7Days != 1 {
		t.Fatalf("completed last 7 days = %d", ins.CompletedLast7Days)
	}
	if len(ins.TopPillars) != 1 || ins.TopPillars[0] != "Health" {
		t.Fatalf("top pillars = %v", ins.TopPillars)
	}
}
