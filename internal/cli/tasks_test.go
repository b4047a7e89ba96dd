package cli

import (
	"testing"
	"time"
)

func TestTasksCompleteAwardsPointsAndStreak(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)

	out := mustRunCLI(t, "--dir", dir, "tasks", "complete", ids.task)
	data := dataMap(t, out)
	task := data["task"].(map[string]any)
	if got := strField(t, task, "status"); got != "done" {
		t.Fatalf("status = %q, want done", got)
	}
	if task["completedAt"] == nil {
		t.Fatal("completedAt not set")
	}
	user, ok := data["user"].(map[string]any)
	if !ok {
		t.Fatalf("complete output missing user block: %v", data)
	}
	points, _ := user["totalPoints"].(float64)
	if points <= 0 {
		t.Fatalf("totalPoints = %v, want > 0", user["totalPoints"])
	}
	if streak, _ := user["currentStreak"].(float64); streak != 1 {
		t.Fatalf("currentStreak = %v, want 1", user["currentStreak"])
	}

	// Completing again is a no-op: points must not double.
	out = mustRunCLI(t, "--dir", dir, "tasks", "complete", ids.task)
	user = dataMap(t, out)["user"].(map[string]any)
	if again, _ := user["totalPoints"].(float64); again != points {
		t.Fatalf("totalPoints after repeat = %v, want %v", again, points)
	}
}

func TestTasksUncompleteReopensButKeepsPoints(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)

	out := mustRunCLI(t, "--dir", dir, "tasks", "complete", ids.task)
	user := dataMap(t, out)["user"].(map[string]any)
	earned, _ := user["totalPoints"].(float64)

	out = mustRunCLI(t, "--dir", dir, "tasks", "uncomplete", ids.task)
	task := dataMap(t, out)["task"].(map[string]any)
	if got := strField(t, task, "status"); got != "todo" {
		t.Fatalf("status = %q, want todo", got)
	}
	if task["completedAt"] != nil {
		t.Fatalf("completedAt = %v, want cleared", task["completedAt"])
	}

	// Reopening is never punitive: the reward stays.
	out = mustRunCLI(t, "--dir", dir, "users", "whoami")
	u := dataMap(t, out)
	if pts, _ := u["totalPoints"].(float64); pts != earned {
		t.Fatalf("totalPoints after uncomplete = %v, want %v", u["totalPoints"], earned)
	}
}

func TestTasksShowIncludesScore(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)

	out := mustRunCLI(t, "--dir", dir, "tasks", "show", ids.task)
	data := dataMap(t, out)
	if _, ok := data["task"].(map[string]any); !ok {
		t.Fatalf("show missing task: %v", data)
	}
	if sc, ok := data["score"].(float64); !ok || sc <= 0 {
		t.Fatalf("score = %v, want > 0", data["score"])
	}
	if _, ok := data["attachments"].([]any); !ok {
		t.Fatalf("show missing attachments array: %v", data)
	}
}

func TestTasksListHidesArchivedWithoutAll(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)
	out := mustRunCLI(t, "--dir", dir, "tasks", "create", "--project", ids.project, "--name", "Stretch")
	stretchID := strField(t, dataMap(t, out), "id")

	mustRunCLI(t, "--dir", dir, "tasks", "archive", ids.task)

	out = mustRunCLI(t, "--dir", dir, "tasks", "list", "--project", ids.project)
	visible := dataSlice(t, out)
	if len(visible) != 1 || strField(t, visible[0].(map[string]any), "id") != stretchID {
		t.Fatalf("visible tasks = %v, want only Stretch", visible)
	}

	out = mustRunCLI(t, "--dir", dir, "tasks", "list", "--project", ids.project, "--all")
	if all := dataSlice(t, out); len(all) != 2 {
		t.Fatalf("tasks --all = %d, want 2", len(all))
	}
}

func TestTodayRanksDueAndOverdue(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)

	// Due dates are compared against UTC midnight.
	today := time.Now().UTC().Format("2006-01-02")
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	out := mustRunCLI(t, "--dir", dir, "tasks", "create", "--project", ids.project, "--name", "Due today", "--due", today)
	dueID := strField(t, dataMap(t, out), "id")
	out = mustRunCLI(t, "--dir", dir, "tasks", "create", "--project", ids.project, "--name", "Late", "--due", yesterday)
	lateID := strField(t, dataMap(t, out), "id")

	out = mustRunCLI(t, "--dir", dir, "today")
	got := map[string]bool{}
	for _, v := range dataSlice(t, out) {
		r := v.(map[string]any)
		task := r["task"].(map[string]any)
		got[strField(t, task, "id")] = true
		if _, ok := r["score"].(float64); !ok {
			t.Fatalf("ranked entry missing score: %v", r)
		}
	}
	if !got[dueID] || !got[lateID] {
		t.Fatalf("today = %v, want due and overdue tasks present", got)
	}

	out = mustRunCLI(t, "--dir", dir, "today", "--overdue")
	overdue := dataSlice(t, out)
	if len(overdue) != 1 {
		t.Fatalf("overdue = %d entries, want 1", len(overdue))
	}
	task := overdue[0].(map[string]any)["task"].(map[string]any)
	if strField(t, task, "id") != lateID {
		t.Fatalf("overdue entry = %v, want the late task", task)
	}
}
