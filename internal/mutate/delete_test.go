package mutate

import (
	"testing"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/store"
)

func addAttachment(db *store.DB, userID string, parentType model.ParentType, parentID, name string) string {
	a := model.Attachment{
		ID:         store.NewID(),
		UserID:     userID,
		ParentType: parentType,
		ParentID:   parentID,
		Filename:   name,
		SizeBytes:  4,
		Class:      model.FileClassDocuments,
		CreatedAt:  time.Now().UTC(),
	}
	db.Attachments = append(db.Attachments, a)
	db.MarkDirty()
	return a.ID
}

func TestDeletePillar_CascadesThroughSubtree(t *testing.T) {
	db, userID := seedDB(t)
	keepPillar := mustCreatePillar(t, db, userID, "Career")
	keepArea := mustCreateArea(t, db, userID, keepPillar.ID, "Craft")

	pillar := mustCreatePillar(t, db, userID, "Health")
	fitness := mustCreateArea(t, db, userID, pillar.ID, "Fitness")
	nutrition := mustCreateArea(t, db, userID, pillar.ID, "Nutrition")
	marathon := mustCreateProject(t, db, userID, fitness.ID, "Marathon")
	mealPrep := mustCreateProject(t, db, userID, nutrition.ID, "Meal prep")
	run := mustCreateTask(t, db, userID, marathon.ID, "Long run")
	mustCreateTask(t, db, userID, marathon.ID, "Intervals")
	mustCreateTask(t, db, userID, mealPrep.ID, "Shop")
	addAttachment(db, userID, model.ParentTypeTask, run.ID, "plan.pdf")
	addAttachment(db, userID, model.ParentTypeProject, marathon.ID, "route.png")

	res, err := DeletePillar(db, userID, pillar.ID)
	if err != nil {
		t.Fatalf("DeletePillar: %v", err)
	}
	if res.Pillars != 1 || res.Areas != 2 || res.Projects != 2 || res.Tasks != 3 || res.Attachments != 2 {
		t.Fatalf("unexpected cascade counts: %+v", res)
	}
	if len(res.RemovedAttachments) != 2 {
		t.Fatalf("expected 2 removed attachment records, got %d", len(res.RemovedAttachments))
	}

	if _, ok := db.FindPillar(pillar.ID); ok {
		t.Fatalf("pillar still present")
	}
	if _, ok := db.FindTask(run.ID); ok {
		t.Fatalf("task survived the cascade")
	}
	if len(db.Attachments) != 0 {
		t.Fatalf("attachments survived: %d", len(db.Attachments))
	}

	// The unrelated pillar is untouched and the snapshot stays consistent.
	if _, ok := db.FindArea(keepArea.ID); !ok {
		t.Fatalf("unrelated area was deleted")
	}
	if report := store.Doctor(db); report.HasErrors() {
		t.Fatalf("doctor found issues after cascade: %+v", report.Issues)
	}
}

func TestDeleteTask_RemovesOnlyItsAttachments(t *testing.T) {
	db, userID := seedDB(t)
	pillar := mustCreatePillar(t, db, userID, "Health")
	area := mustCreateArea(t, db, userID, pillar.ID, "Fitness")
	project := mustCreateProject(t, db, userID, area.ID, "Marathon")
	run := mustCreateTask(t, db, userID, project.ID, "Long run")
	keep := mustCreateTask(t, db, userID, project.ID, "Intervals")
	addAttachment(db, userID, model.ParentTypeTask, run.ID, "plan.pdf")
	keptAttachment := addAttachment(db, userID, model.ParentTypeTask, keep.ID, "intervals.pdf")

	res, err := DeleteTask(db, userID, run.ID)
	if err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if res.Tasks != 1 || res.Attachments != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if _, ok := db.FindAttachment(keptAttachment); !ok {
		t.Fatalf("sibling task's attachment was deleted")
	}
	if _, ok := db.FindTask(keep.ID); !ok {
		t.Fatalf("sibling task was deleted")
	}
}

func TestDeleteArea_RequiresOwnership(t *testing.T) {
	db, userID := seedDB(t)
	addUser(db, "user-2")
	pillar := mustCreatePillar(t, db, userID, "Health")
	area := mustCreateArea(t, db, userID, pillar.ID, "Fitness")

	if _, err := DeleteArea(db, "user-2", area.ID); err == nil {
		t.Fatalf("expected owner check to fail")
	}
	if _, err := DeleteArea(db, userID, "area-missing"); err == nil {
		t.Fatalf("expected not-found error")
	}

	res, err := DeleteArea(db, userID, area.ID)
	if err != nil {
		t.Fatalf("DeleteArea: %v", err)
	}
	if res.Areas != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
}

func TestDeleteAttachment_RemovesSingleRecord(t *testing.T) {
	db, userID := seedDB(t)
	pillar := mustCreatePillar(t, db, userID, "Health")
	area := mustCreateArea(t, db, userID, pillar.ID, "Fitness")
	project := mustCreateProject(t, db, userID, area.ID, "Marathon")
	task := mustCreateTask(t, db, userID, project.ID, "Long run")
	id := addAttachment(db, userID, model.ParentTypeTask, task.ID, "plan.pdf")

	res, err := DeleteAttachment(db, userID, id)
	if err != nil {
		t.Fatalf("DeleteAttachment: %v", err)
	}
	if res.Attachments != 1 || len(res.RemovedAttachments) != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if _, ok := db.FindTask(task.ID); !ok {
		t.Fatalf("task should survive attachment deletion")
	}
}
