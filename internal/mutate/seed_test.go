package mutate

import (
	"testing"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/store"
)

// Test fixtures build hierarchies through the create functions so ranks and
// parent refs come out the same way production writes them.

func seedDB(t *testing.T) (*store.DB, string) {
	t.Helper()
	db := &store.DB{Version: store.CurrentVersion}
	db.Users = append(db.Users, model.User{
		ID:        "user-1",
		Email:     "ana@example.com",
		Name:      "Ana",
		Level:     1,
		CreatedAt: time.Now().UTC(),
	})
	return db, "user-1"
}

func mustCreatePillar(t *testing.T, db *store.DB, userID, name string) *model.Pillar {
	t.Helper()
	res, err := CreatePillar(db, userID, CreatePillarParams{Name: name})
	if err != nil {
		t.Fatalf("CreatePillar(%q): %v", name, err)
	}
	return res.Pillar
}

func mustCreateArea(t *testing.T, db *store.DB, userID, pillarID, name string) *model.Area {
	t.Helper()
	res, err := CreateArea(db, userID, CreateAreaParams{PillarID: pillarID, Name: name})
	if err != nil {
		t.Fatalf("CreateArea(%q): %v", name, err)
	}
	return res.Area
}

func mustCreateProject(t *testing.T, db *store.DB, userID, areaID, name string) *model.Project {
	t.Helper()
	res, err := CreateProject(db, userID, CreateProjectParams{AreaID: areaID, Name: name})
	if err != nil {
		t.Fatalf("CreateProject(%q): %v", name, err)
	}
	return res.Project
}

func mustCreateTask(t *testing.T, db *store.DB, userID, projectID, name string) *model.Task {
	t.Helper()
	res, err := CreateTask(db, userID, CreateTaskParams{ProjectID: projectID, Name: name})
	if err != nil {
		t.Fatalf("CreateTask(%q): %v", name, err)
	}
	return res.Task
}

// addUser appends a second account for ownership checks.
func addUser(db *store.DB, id string) {
	db.Users = append(db.Users, model.User{
		ID:        id,
		Email:     id + "@example.com",
		Name:      id,
		Level:     1,
		CreatedAt: time.Now().UTC(),
	})
	db.MarkDirty()
}
