package mutate

import (
	"errors"
	"strings"
	"time"

	"aurum-life/internal/perm"
	"aurum-life/internal/store"
)

// Reordering moves an entity to a zero-based position among its siblings.
// The planner returns the minimal set of rank rewrites; usually just the
// moved row, occasionally a small window when ranks have no gap left.

func applyRankPlan(db *store.DB, res store.ReorderResult, now time.Time) int {
	applied := 0
	for id, rank := range res.RankByID {
		if setEntityRank(db, id, rank, now) {
			applied++
		}
	}
	if applied > 0 {
		db.MarkDirty()
	}
	return applied
}

func setEntityRank(db *store.DB, id, rank string, now time.Time) bool {
	if p, ok := db.FindPillar(id); ok {
		p.Rank = rank
		p.UpdatedAt = now
		return true
	}
	if a, ok := db.FindArea(id); ok {
		a.Rank = rank
		a.UpdatedAt = now
		return true
	}
	if pr, ok := db.FindProject(id); ok {
		pr.Rank = rank
		pr.UpdatedAt = now
		return true
	}
	if t, ok := db.FindTask(id); ok {
		t.Rank = rank
		t.UpdatedAt = now
		return true
	}
	return false
}

func reorderPayload(insertAt int, res store.ReorderResult) map[string]any {
	payload := map[string]any{
		"insertAt": insertAt,
		"rewrites": len(res.RankByID),
	}
	if res.UsedFallback {
		payload["rebalanced"] = true
	}
	return payload
}

func ReorderPillar(db *store.DB, userID, pillarID string, insertAt int) (PillarResult, error) {
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

	res, err := store.PlanReorderRanks(db.RankedSiblings(db.PillarsForUser(userID)), pillarID, insertAt)
	if err != nil {
		return PillarResult{}, err
	}
	changed := applyRankPlan(db, res, time.Now().UTC()) > 0
	p, _ = db.FindPillar(pillarID)
	return PillarResult{Pillar: p, Changed: changed, EventPayload: reorderPayload(insertAt, res)}, nil
}

func ReorderArea(db *store.DB, userID, areaID string, insertAt int) (AreaResult, error) {
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

	res, err := store.PlanReorderRanks(db.RankedSiblings(db.AreasOf(a.PillarID)), areaID, insertAt)
	if err != nil {
		return AreaResult{}, err
	}
	changed := applyRankPlan(db, res, time.Now().UTC()) > 0
	a, _ = db.FindArea(areaID)
	return AreaResult{Area: a, Changed: changed, EventPayload: reorderPayload(insertAt, res)}, nil
}

func ReorderProject(db *store.DB, userID, projectID string, insertAt int) (ProjectResult, error) {
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

	res, err := store.PlanReorderRanks(db.RankedSiblings(db.ProjectsOf(p.AreaID)), projectID, insertAt)
	if err != nil {
		return ProjectResult{}, err
	}
	changed := applyRankPlan(db, res, time.Now().UTC()) > 0
	p, _ = db.FindProject(projectID)
	return ProjectResult{Project: p, Changed: changed, EventPayload: reorderPayload(insertAt, res)}, nil
}

func ReorderTask(db *store.DB, userID, taskID string, insertAt int) (TaskResult, error) {
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

	res, err := store.PlanReorderRanks(db.RankedSiblings(db.TasksOf(t.ProjectID)), taskID, insertAt)
	if err != nil {
		return TaskResult{}, err
	}
	changed := applyRankPlan(db, res, time.Now().UTC()) > 0
	t, _ = db.FindTask(taskID)
	return TaskResult{Task: t, Changed: changed, EventPayload: reorderPayload(insertAt, res)}, nil
}
