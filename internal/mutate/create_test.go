package mutate

import (
	"errors"
	"testing"

	"aurum-life/internal/model"
)

func TestCreatePillar_DefaultsAndSiblingOrder(t *testing.T) {
	db, userID := seedDB(t)

	first, err := CreatePillar(db, userID, CreatePillarParams{Name: "  Health  ", Color: "#aabbcc"})
	if err != nil {
		t.Fatalf("CreatePillar: %v", err)
	}
	if first.Pillar.Name != "Health" {
		t.Fatalf("name not trimmed: %q", first.Pillar.Name)
	}
	if first.Pillar.Icon != DefaultPillarIcon {
		t.Fatalf("expected default icon, got %q", first.Pillar.Icon)
	}
	if first.Pillar.Color != "#AABBCC" {
		t.Fatalf("color not normalized: %q", first.Pillar.Color)
	}
	if first.Pillar.Rank == "" {
		t.Fatalf("expected a rank")
	}
	if !first.Changed || first.EventPayload["name"] != "Health" {
		t.Fatalf("unexpected result: %+v", first)
	}

	second := mustCreatePillar(t, db, userID, "Career")
	order := db.PillarsForUser(userID)
	if len(order) != 2 || order[0] != first.Pillar.ID || order[1] != second.ID {
		t.Fatalf("unexpected sibling order: %v", order)
	}
}

func TestCreatePillar_RejectsBadInput(t *testing.T) {
	db, userID := seedDB(t)

	if _, err := CreatePillar(db, userID, CreatePillarParams{Name: "   "}); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if _, err := CreatePillar(db, userID, CreatePillarParams{Name: "Health", Color: "red"}); err == nil {
		t.Fatalf("expected error for bad color")
	}
	if _, err := CreatePillar(db, userID, CreatePillarParams{Name: "Health", TimeAllocationPct: 120}); err == nil {
		t.Fatalf("expected error for allocation over 100")
	}
	if _, err := CreatePillar(db, "user-missing", CreatePillarParams{Name: "Health"}); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestCreateArea_RequiresOwnedPillar(t *testing.T) {
	db, userID := seedDB(t)
	addUser(db, "user-2")
	pillar := mustCreatePillar(t, db, userID, "Health")

	res, err := CreateArea(db, userID, CreateAreaParams{PillarID: pillar.ID, Name: "Fitness"})
	if err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	if res.Area.Importance != 3 {
		t.Fatalf("expected default importance 3, got %d", res.Area.Importance)
	}
	if res.Area.PillarID != pillar.ID {
		t.Fatalf("wrong parent: %q", res.Area.PillarID)
	}

	if _, err := CreateArea(db, "user-2", CreateAreaParams{PillarID: pillar.ID, Name: "Theirs"}); err == nil {
		t.Fatalf("expected owner check to fail")
	}
	var notFound NotFoundError
	if _, err := CreateArea(db, userID, CreateAreaParams{PillarID: "pil-missing", Name: "X"}); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCreateProject_ParsesStatusPriorityDeadline(t *testing.T) {
	db, userID := seedDB(t)
	pillar := mustCreatePillar(t, db, userID, "Health")
	area := mustCreateArea(t, db, userID, pillar.ID, "Fitness")

	res, err := CreateProject(db, userID, CreateProjectParams{AreaID: area.ID, Name: "Marathon"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if res.Project.Status != model.ProjectStatusNotStarted || res.Project.Priority != model.PriorityMedium {
		t.Fatalf("unexpected defaults: %q %q", res.Project.Status, res.Project.Priority)
	}
	if res.Project.Deadline != nil {
		t.Fatalf("expected no deadline")
	}

	withDeadline, err := CreateProject(db, userID, CreateProjectParams{
		AreaID:   area.ID,
		Name:     "Race",
		Status:   "in_progress",
		Priority: "high",
		Deadline: "2026-12-01",
	})
	if err != nil {
		t.Fatalf("CreateProject with deadline: %v", err)
	}
	if withDeadline.Project.Deadline == nil || withDeadline.Project.Deadline.Date != "2026-12-01" {
		t.Fatalf("deadline not kept: %+v", withDeadline.Project.Deadline)
	}

	if _, err := CreateProject(db, userID, CreateProjectParams{AreaID: area.ID, Name: "Bad", Deadline: "12/01/2026"}); err == nil {
		t.Fatalf("expected error for bad deadline format")
	}
	if _, err := CreateProject(db, userID, CreateProjectParams{AreaID: area.ID, Name: "Bad", Status: "paused"}); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestCreateTask_ValidatesDueTimeAndEstimate(t *testing.T) {
	db, userID := seedDB(t)
	pillar := mustCreatePillar(t, db, userID, "Health")
	area := mustCreateArea(t, db, userID, pillar.ID, "Fitness")
	project := mustCreateProject(t, db, userID, area.ID, "Marathon")

	res, err := CreateTask(db, userID, CreateTaskParams{
		ProjectID:        project.ID,
		Name:             "Long run",
		Priority:         "high",
		Due:              "2026-09-01",
		DueTime:          "06:30",
		EstimatedMinutes: 90,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if res.Task.Status != model.TaskStatusTodo {
		t.Fatalf("expected todo status, got %q", res.Task.Status)
	}
	if res.Task.Due == nil || res.Task.Due.Date != "2026-09-01" || res.Task.DueTime == nil || *res.Task.DueTime != "06:30" {
		t.Fatalf("due fields not kept: %+v", res.Task)
	}

	if _, err := CreateTask(db, userID, CreateTaskParams{ProjectID: project.ID, Name: "Bad", DueTime: "25:00"}); err == nil {
		t.Fatalf("expected error for bad due time")
	}
	if _, err := CreateTask(db, userID, CreateTaskParams{ProjectID: project.ID, Name: "Bad", EstimatedMinutes: 9999}); err == nil {
		t.Fatalf("expected error for estimate out of range")
	}
}
