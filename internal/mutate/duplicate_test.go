package mutate

import (
	"strings"
	"testing"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/store"
)

// pillarSubtreeIDs collects every id reachable from a pillar.
func pillarSubtreeIDs(db *store.DB, pillarID string) map[string]bool {
	ids := map[string]bool{pillarID: true}
	for _, areaID := range db.AreasOf(pillarID) {
		ids[areaID] = true
		for _, projectID := range db.ProjectsOf(areaID) {
			ids[projectID] = true
			for _, taskID := range db.TasksOf(projectID) {
				ids[taskID] = true
			}
		}
	}
	return ids
}

func TestDuplicatePillar_FreshIDsAndParentRefs(t *testing.T) {
	db, userID := seedDB(t)
	pillar := mustCreatePillar(t, db, userID, "Health")
	fitness := mustCreateArea(t, db, userID, pillar.ID, "Fitness")
	nutrition := mustCreateArea(t, db, userID, pillar.ID, "Nutrition")
	marathon := mustCreateProject(t, db, userID, fitness.ID, "Marathon")
	mealPrep := mustCreateProject(t, db, userID, nutrition.ID, "Meal prep")
	mustCreateTask(t, db, userID, marathon.ID, "Long run")
	mustCreateTask(t, db, userID, marathon.ID, "Intervals")
	mustCreateTask(t, db, userID, mealPrep.ID, "Shop")

	sourceIDs := pillarSubtreeIDs(db, pillar.ID)

	res, err := DuplicatePillar(db, userID, pillar.ID)
	if err != nil {
		t.Fatalf("DuplicatePillar: %v", err)
	}
	if res.Pillar.Name != "Health (Copy)" {
		t.Fatalf("unexpected copy name: %q", res.Pillar.Name)
	}
	if res.EventPayload["areas"] != 2 || res.EventPayload["projects"] != 2 || res.EventPayload["tasks"] != 3 {
		t.Fatalf("unexpected copy counts: %+v", res.EventPayload)
	}

	copyIDs := pillarSubtreeIDs(db, res.Pillar.ID)
	if len(copyIDs) != len(sourceIDs) {
		t.Fatalf("copy has %d nodes, source has %d", len(copyIDs), len(sourceIDs))
	}
	for id := range copyIDs {
		if sourceIDs[id] {
			t.Fatalf("copy shares id %q with the source subtree", id)
		}
	}

	// Every copied row must point at a parent inside the copy.
	for _, areaID := range db.AreasOf(res.Pillar.ID) {
		a, _ := db.FindArea(areaID)
		if a.PillarID != res.Pillar.ID {
			t.Fatalf("copied area %q points at %q", a.Name, a.PillarID)
		}
		if strings.HasSuffix(a.Name, "(Copy)") {
			t.Fatalf("child name should not carry the suffix: %q", a.Name)
		}
		for _, projectID := range db.ProjectsOf(areaID) {
			p, _ := db.FindProject(projectID)
			if !copyIDs[p.AreaID] {
				t.Fatalf("copied project %q points outside the copy", p.Name)
			}
			for _, taskID := range db.TasksOf(projectID) {
				task, _ := db.FindTask(taskID)
				if !copyIDs[task.ProjectID] {
					t.Fatalf("copied task %q points outside the copy", task.Name)
				}
			}
		}
	}

	// The source subtree is untouched.
	if got := pillarSubtreeIDs(db, pillar.ID); len(got) != len(sourceIDs) {
		t.Fatalf("source subtree changed size: %d != %d", len(got), len(sourceIDs))
	}
}

func TestDuplicatePillar_RanksRightAfterOriginal(t *testing.T) {
	db, userID := seedDB(t)
	a := mustCreatePillar(t, db, userID, "A")
	b := mustCreatePillar(t, db, userID, "B")
	c := mustCreatePillar(t, db, userID, "C")

	res, err := DuplicatePillar(db, userID, b.ID)
	if err != nil {
		t.Fatalf("DuplicatePillar: %v", err)
	}

	want := []string{a.ID, b.ID, res.Pillar.ID, c.ID}
	got := db.PillarsForUser(userID)
	if len(got) != len(want) {
		t.Fatalf("expected %d pillars, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v want %v", i, got, want)
		}
	}
}

func TestDuplicateTask_PreservesCompletionState(t *testing.T) {
	db, userID := seedDB(t)
	pillar := mustCreatePillar(t, db, userID, "Health")
	area := mustCreateArea(t, db, userID, pillar.ID, "Fitness")
	project := mustCreateProject(t, db, userID, area.ID, "Marathon")

	task, err := CreateTask(db, userID, CreateTaskParams{
		ProjectID: project.ID,
		Name:      "Long run",
		Priority:  "high",
		Due:       "2026-09-01",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	done := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	task.Task.Status = model.TaskStatusDone
	task.Task.CompletedAt = &done
	db.MarkDirty()

	res, err := DuplicateTask(db, userID, task.Task.ID)
	if err != nil {
		t.Fatalf("DuplicateTask: %v", err)
	}
	cp := res.Task
	if cp.ID == task.Task.ID {
		t.Fatalf("copy reused the source id")
	}
	if cp.Name != "Long run (Copy)" {
		t.Fatalf("unexpected name: %q", cp.Name)
	}
	if cp.Status != model.TaskStatusDone || cp.CompletedAt == nil || !cp.CompletedAt.Equal(done) {
		t.Fatalf("completion state not preserved: %+v", cp)
	}
	if cp.Due == nil || cp.Due.Date != "2026-09-01" {
		t.Fatalf("due date not preserved: %+v", cp.Due)
	}
	if cp.Due == task.Task.Due || cp.CompletedAt == task.Task.CompletedAt {
		t.Fatalf("copy shares pointers with the source")
	}
	if cp.Rank <= task.Task.Rank {
		t.Fatalf("copy should rank after the source: %q vs %q", cp.Rank, task.Task.Rank)
	}
}

func TestDuplicateArea_CopiesOnlyItsSubtree(t *testing.T) {
	db, userID := seedDB(t)
	pillar := mustCreatePillar(t, db, userID, "Health")
	fitness := mustCreateArea(t, db, userID, pillar.ID, "Fitness")
	nutrition := mustCreateArea(t, db, userID, pillar.ID, "Nutrition")
	marathon := mustCreateProject(t, db, userID, fitness.ID, "Marathon")
	mustCreateTask(t, db, userID, marathon.ID, "Long run")
	mustCreateProject(t, db, userID, nutrition.ID, "Meal prep")

	res, err := DuplicateArea(db, userID, fitness.ID)
	if err != nil {
		t.Fatalf("DuplicateArea: %v", err)
	}
	if res.Area.PillarID != pillar.ID {
		t.Fatalf("copy moved to pillar %q", res.Area.PillarID)
	}
	if res.EventPayload["projects"] != 1 || res.EventPayload["tasks"] != 1 {
		t.Fatalf("unexpected counts: %+v", res.EventPayload)
	}
	if got := len(db.AreasOf(pillar.ID)); got != 3 {
		t.Fatalf("expected 3 areas under the pillar, got %d", got)
	}
	// Nutrition's subtree is untouched.
	if got := len(db.ProjectsOf(nutrition.ID)); got != 1 {
		t.Fatalf("sibling area gained projects: %d", got)
	}
}

func TestDuplicateProject_RequiresOwnership(t *testing.T) {
	db, userID := seedDB(t)
	addUser(db, "user-2")
	pillar := mustCreatePillar(t, db, userID, "Health")
	area := mustCreateArea(t, db, userID, pillar.ID, "Fitness")
	project := mustCreateProject(t, db, userID, area.ID, "Marathon")
	mustCreateTask(t, db, userID, project.ID, "Long run")

	if _, err := DuplicateProject(db, "user-2", project.ID); err == nil {
		t.Fatalf("expected owner check to fail")
	}

	res, err := DuplicateProject(db, userID, project.ID)
	if err != nil {
		t.Fatalf("DuplicateProject: %v", err)
	}
	if res.EventPayload["tasks"] != 1 {
		t.Fatalf("unexpected counts: %+v", res.EventPayload)
	}
	if got := len(db.TasksOf(res.Project.ID)); got != 1 {
		t.Fatalf("copied project has %d tasks", got)
	}
}

func TestCopyName_TrimsLongNames(t *testing.T) {
	long := strings.Repeat("x", model.MaxNameLength)
	got := copyName(long)
	if len([]rune(got)) > model.MaxNameLength {
		t.Fatalf("copy name too long: %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, " (Copy)") {
		t.Fatalf("missing suffix: %q", got)
	}
}
