package mutate

import (
	"errors"
	"strings"
	"time"

	"aurum-life/internal/perm"
	"aurum-life/internal/store"
)

// Archiving hides an entity from default listings without cascading; its
// children stay put and reappear when it is unarchived. Deleting is the
// destructive operation.

func SetPillarArchived(db *store.DB, userID, pillarID string, archived bool) (PillarResult, error) {
	userID = strings.TrimSpace(userID)
	pillarID = strings.TrimSpace(pillarID)
	if db == nil || userID == "" {
		return PillarResult{}, errors.New("missing db/user")
	}
	p, ok := db.FindPillar(pillarID)
	if !ok {
		return PillarResult{}, NotFoundError{Kind: "pillar", ID: pillarID}
	}
	if !perm.CanAccessPillar(db, userID, p) {
		return PillarResult{}, NotOwnerError{UserID: userID, OwnerUserID: p.UserID, Kind: "pillar", ID: pillarID}
	}
	if p.Archived == archived {
		return PillarResult{Pillar: p, Changed: false}, nil
	}
	p.Archived = archived
	p.UpdatedAt = time.Now().UTC()
	db.MarkDirty()
	return PillarResult{Pillar: p, Changed: true, EventPayload: map[string]any{"archived": archived}}, nil
}

func SetAreaArchived(db *store.DB, userID, areaID string, archived bool) (AreaResult, error) {
	userID = strings.TrimSpace(userID)
	areaID = strings.TrimSpace(areaID)
	if db == nil || userID == "" {
		return AreaResult{}, errors.New("missing db/user")
	}
	a, ok := db.FindArea(areaID)
	if !ok {
		return AreaResult{}, NotFoundError{Kind: "area", ID: areaID}
	}
	if !perm.CanAccessArea(db, userID, a) {
		return AreaResult{}, NotOwnerError{UserID: userID, OwnerUserID: a.UserID, Kind: "area", ID: areaID}
	}
	if a.Archived == archived {
		return AreaResult{Area: a, Changed: false}, nil
	}
	a.Archived = archived
	a.UpdatedAt = time.Now().UTC()
	db.MarkDirty()
	return AreaResult{Area: a, Changed: true, EventPayload: map[string]any{"archived": archived}}, nil
}

func SetProjectArchived(db *store.DB, userID, projectID string, archived bool) (ProjectResult, error) {
	userID = strings.TrimSpace(userID)
	projectID = strings.TrimSpace(projectID)
	if db == nil || userID == "" {
		return ProjectResult{}, errors.New("missing db/user")
	}
	p, ok := db.FindProject(projectID)
	if !ok {
		return ProjectResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if !perm.CanAccessProject(db, userID, p) {
		return ProjectResult{}, NotOwnerError{UserID: userID, OwnerUserID: p.UserID, Kind: "project", ID: projectID}
	}
	if p.Archived == archived {
		return ProjectResult{Project: p, Changed: false}, nil
	}
	p.Archived = archived
	p.UpdatedAt = time.Now().UTC()
	db.MarkDirty()
	return ProjectResult{Project: p, Changed: true, EventPayload: map[string]any{"archived": archived}}, nil
}

func SetTaskArchived(db *store.DB, userID, taskID string, archived bool) (TaskResult, error) {
	userID = strings.TrimSpace(userID)
	taskID = strings.TrimSpace(taskID)
	if db == nil || userID == "" {
		return TaskResult{}, errors.New("missing db/user")
	}
	t, ok := db.FindTask(taskID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !perm.CanAccessTask(db, userID, t) {
		return TaskResult{}, NotOwnerError{UserID: userID, OwnerUserID: t.UserID, Kind: "task", ID: taskID}
	}
	if t.Archived == archived {
		return TaskResult{Task: t, Changed: false}, nil
	}
	t.Archived = archived
	t.UpdatedAt = time.Now().UTC()
	db.MarkDirty()
	return TaskResult{Task: t, Changed: true, EventPayload: map[string]any{"archived": archived}}, nil
}
