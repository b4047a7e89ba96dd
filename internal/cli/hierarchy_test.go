package cli

import (
	"testing"
)

func TestAreasShowUpdateAndMove(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)
	out := mustRunCLI(t, "--dir", dir, "pillars", "create", "--name", "Career")
	careerID := strField(t, dataMap(t, out), "id")

	out = mustRunCLI(t, "--dir", dir, "areas", "show", ids.area)
	data := dataMap(t, out)
	area := data["area"].(map[string]any)
	if got, _ := area["importance"].(float64); got != 4 {
		t.Fatalf("importance = %v, want 4", area["importance"])
	}
	if projects, _ := data["projects"].([]any); len(projects) != 1 {
		t.Fatalf("projects = %v, want one", data["projects"])
	}

	out = mustRunCLI(t, "--dir", dir, "areas", "update", ids.area, "--importance", "5", "--pillar", careerID)
	area = dataMap(t, out)
	if got := strField(t, area, "pillarId"); got != careerID {
		t.Fatalf("pillarId = %q, want %q", got, careerID)
	}

	// The old pillar no longer owns it; the new one does.
	out = mustRunCLI(t, "--dir", dir, "areas", "list", "--pillar", ids.pillar)
	if rows := dataSlice(t, out); len(rows) != 0 {
		t.Fatalf("old pillar areas = %d, want 0", len(rows))
	}
	out = mustRunCLI(t, "--dir", dir, "areas", "list", "--pillar", careerID)
	if rows := dataSlice(t, out); len(rows) != 1 {
		t.Fatalf("new pillar areas = %d, want 1", len(rows))
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "areas", "update", ids.area, "--pillar", "ghost"}); err == nil {
		t.Fatal("move to missing pillar accepted")
	}
}

func TestProjectsShowUpdateStatus(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)

	out := mustRunCLI(t, "--dir", dir, "projects", "show", ids.project)
	data := dataMap(t, out)
	project := data["project"].(map[string]any)
	if got := strField(t, project, "status"); got != "not_started" {
		t.Fatalf("status = %q, want not_started", got)
	}
	if tasks, _ := data["tasks"].([]any); len(tasks) != 1 {
		t.Fatalf("tasks = %v, want one", data["tasks"])
	}

	out = mustRunCLI(t, "--dir", dir, "projects", "update", ids.project, "--status", "in_progress")
	if got := strField(t, dataMap(t, out), "status"); got != "in_progress" {
		t.Fatalf("status after update = %q", got)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "projects", "update", ids.project, "--status", "paused"}); err == nil {
		t.Fatal("invalid status accepted")
	}
}

func TestProjectsDuplicateCopiesTasks(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)
	mustRunCLI(t, "--dir", dir, "tasks", "create", "--project", ids.project, "--name", "Cooldown")

	out := mustRunCLI(t, "--dir", dir, "projects", "duplicate", ids.project)
	cp := dataMap(t, out)
	cpID := strField(t, cp, "id")
	if got := strField(t, cp, "name"); got != "5k plan (Copy)" {
		t.Fatalf("copy name = %q", got)
	}

	out = mustRunCLI(t, "--dir", dir, "projects", "show", cpID)
	tasks, _ := dataMap(t, out)["tasks"].([]any)
	if len(tasks) != 2 {
		t.Fatalf("copied project tasks = %d, want 2", len(tasks))
	}
	// Copies are fresh rows, not shared ones.
	for _, v := range tasks {
		task := v.(map[string]any)
		if strField(t, task, "projectId") != cpID {
			t.Fatalf("copied task points at %q", task["projectId"])
		}
	}
}

func TestTasksUpdateReorderAndDelete(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)
	out := mustRunCLI(t, "--dir", dir, "tasks", "create", "--project", ids.project, "--name", "Cooldown")
	coolID := strField(t, dataMap(t, out), "id")

	out = mustRunCLI(t, "--dir", dir, "tasks", "update", ids.task, "--name", "Run 6x400m", "--estimate", "45")
	task := dataMap(t, out)
	if got := strField(t, task, "name"); got != "Run 6x400m" {
		t.Fatalf("name = %q", got)
	}
	if got, _ := task["estimatedMinutes"].(float64); got != 45 {
		t.Fatalf("estimatedMinutes = %v, want 45", task["estimatedMinutes"])
	}

	mustRunCLI(t, "--dir", dir, "tasks", "reorder", coolID, "--at", "0")
	out = mustRunCLI(t, "--dir", dir, "tasks", "list", "--project", ids.project)
	rows := dataSlice(t, out)
	if len(rows) != 2 || strField(t, rows[0].(map[string]any), "id") != coolID {
		t.Fatalf("order = %v, want Cooldown first", rows)
	}

	mustRunCLI(t, "--dir", dir, "tasks", "delete", coolID)
	out = mustRunCLI(t, "--dir", dir, "tasks", "list", "--project", ids.project, "--all")
	if rows := dataSlice(t, out); len(rows) != 1 {
		t.Fatalf("tasks after delete = %d, want 1", len(rows))
	}
}

func TestHierarchyIsPerUser(t *testing.T) {
	dir := newTestStore(t)
	ids := seedHierarchy(t, dir)

	out := mustRunCLI(t, "--dir", dir, "users", "create", "--name", "Bo", "--email", "bo@example.com", "--use")
	_ = strField(t, dataMap(t, out), "id")

	// Bo sees an empty world and cannot touch Ana's entities.
	if names := pillarNames(t, dir); len(names) != 0 {
		t.Fatalf("Bo sees pillars %v", names)
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "tasks", "show", ids.task}); err == nil {
		t.Fatal("Bo can read Ana's task")
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "tasks", "complete", ids.task}); err == nil {
		t.Fatal("Bo can complete Ana's task")
	}

	// Ana still can, via --user override.
	out = mustRunCLI(t, "--dir", dir, "--user", ids.user, "tasks", "show", ids.task)
	if _, ok := dataMap(t, out)["task"].(map[string]any); !ok {
		t.Fatal("Ana lost access to her task")
	}
}
