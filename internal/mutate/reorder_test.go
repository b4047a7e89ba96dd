package mutate

import (
	"testing"

	"aurum-life/internal/model"
	"aurum-life/internal/store"
)

func pillarOrder(t *testing.T, db *store.DB, userID string, want []*model.Pillar) {
	t.Helper()
	got := db.PillarsForUser(userID)
	if len(got) != len(want) {
		t.Fatalf("expected %d pillars, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i].ID {
			names := make([]string, len(got))
			for j, id := range got {
				p, _ := db.FindPillar(id)
				names[j] = p.Name
			}
			t.Fatalf("order mismatch at %d: %v", i, names)
		}
	}
}

func TestReorderPillar_MoveToFront(t *testing.T) {
	db, userID := seedDB(t)
	a := mustCreatePillar(t, db, userID, "A")
	b := mustCreatePillar(t, db, userID, "B")
	c := mustCreatePillar(t, db, userID, "C")

	res, err := ReorderPillar(db, userID, c.ID, 0)
	if err != nil {
		t.Fatalf("ReorderPillar: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected a change")
	}
	pillarOrder(t, db, userID, []*model.Pillar{c, a, b})
}

func TestReorderPillar_SamePositionIsNoOp(t *testing.T) {
	db, userID := seedDB(t)
	a := mustCreatePillar(t, db, userID, "A")
	b := mustCreatePillar(t, db, userID, "B")

	res, err := ReorderPillar(db, userID, b.ID, 1)
	if err != nil {
		t.Fatalf("ReorderPillar: %v", err)
	}
	if res.Changed {
		t.Fatalf("expected no-op, rewrites=%v", res.EventPayload["rewrites"])
	}
	pillarOrder(t, db, userID, []*model.Pillar{a, b})
}

func TestReorderTask_ClampsPastEnd(t *testing.T) {
	db, userID := seedDB(t)
	pillar := mustCreatePillar(t, db, userID, "Health")
	area := mustCreateArea(t, db, userID, pillar.ID, "Fitness")
	project := mustCreateProject(t, db, userID, area.ID, "Marathon")
	first := mustCreateTask(t, db, userID, project.ID, "One")
	second := mustCreateTask(t, db, userID, project.ID, "Two")
	third := mustCreateTask(t, db, userID, project.ID, "Three")

	if _, err := ReorderTask(db, userID, first.ID, 99); err != nil {
		t.Fatalf("ReorderTask: %v", err)
	}
	order := db.TasksOf(project.ID)
	want := []string{second.ID, third.ID, first.ID}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order mismatch: got %v want %v", order, want)
		}
	}
}

func TestReorderArea_MiddleInsert(t *testing.T) {
	db, userID := seedDB(t)
	pillar := mustCreatePillar(t, db, userID, "Health")
	a := mustCreateArea(t, db, userID, pillar.ID, "A")
	b := mustCreateArea(t, db, userID, pillar.ID, "B")
	c := mustCreateArea(t, db, userID, pillar.ID, "C")

	if _, err := ReorderArea(db, userID, c.ID, 1); err != nil {
		t.Fatalf("ReorderArea: %v", err)
	}
	order := db.AreasOf(pillar.ID)
	want := []string{a.ID, c.ID, b.ID}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order mismatch: got %v want %v", order, want)
		}
	}
}

func TestReorderProject_UnknownIDFails(t *testing.T) {
	db, userID := seedDB(t)
	if _, err := ReorderProject(db, userID, "proj-missing", 0); err == nil {
		t.Fatalf("expected not-found error")
	}
}
