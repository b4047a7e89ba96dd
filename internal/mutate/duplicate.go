package mutate

import (
	"errors"
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/perm"
	"aurum-life/internal/store"
)

// Duplication deep-copies a subtree. Every copied row gets a fresh id and
// its parent ref points at the copied parent, never back into the original
// subtree. The duplicated root gets a " (Copy)" name suffix and a rank right
// after the original; children keep their names and relative order.
// Attachments are not copied, their files belong to the original.

const copySuffix = " (Copy)"

// copyName appends the suffix, trimming the base if the result would blow
// the name limit.
func copyName(name string) string {
	name = strings.TrimSpace(name)
	budget := model.MaxNameLength - len([]rune(copySuffix))
	if r := []rune(name); len(r) > budget {
		name = strings.TrimSpace(string(r[:budget]))
	}
	return name + copySuffix
}

// rankAfterSibling computes a rank immediately after entityID within its
// ordered sibling set.
func rankAfterSibling(db *store.DB, siblings []string, entityID string) (string, error) {
	lower := ""
	upper := ""
	for i, id := range siblings {
		if id != entityID {
			continue
		}
		lower = db.RankOf(id)
		if i+1 < len(siblings) {
			upper = db.RankOf(siblings[i+1])
		}
		break
	}
	return store.RankBetweenUnique(db.SiblingRanks(siblings), lower, upper)
}

func cloneDate(d *model.Date) *model.Date {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyTask(src model.Task, newProjectID string, now time.Time) model.Task {
	cp := src
	cp.ID = store.NewID()
	cp.ProjectID = newProjectID
	cp.Due = cloneDate(src.Due)
	cp.DueTime = cloneString(src.DueTime)
	cp.CompletedAt = cloneTime(src.CompletedAt)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	return cp
}

func copyProject(src model.Project, newAreaID string, now time.Time) model.Project {
	cp := src
	cp.ID = store.NewID()
	cp.AreaID = newAreaID
	cp.Deadline = cloneDate(src.Deadline)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	return cp
}

func copyArea(src model.Area, newPillarID string, now time.Time) model.Area {
	cp := src
	cp.ID = store.NewID()
	cp.PillarID = newPillarID
	cp.CreatedAt = now
	cp.UpdatedAt = now
	return cp
}

// subtreePlan snapshots the source rows before any append, since growing
// the slices invalidates both indexes and pointers.
type subtreePlan struct {
	areas    []model.Area
	projects map[string][]model.Project // by source area id
	tasks    map[string][]model.Task    // by source project id
}

func planAreaSubtrees(db *store.DB, areaIDs []string) subtreePlan {
	plan := subtreePlan{
		projects: map[string][]model.Project{},
		tasks:    map[string][]model.Task{},
	}
	for _, areaID := range areaIDs {
		a, ok := db.FindArea(areaID)
		if !ok {
			continue
		}
		plan.areas = append(plan.areas, *a)
		plan.projects[areaID] = planProjects(db, db.ProjectsOf(areaID), plan.tasks)
	}
	return plan
}

func planProjects(db *store.DB, projectIDs []string, tasksBySrc map[string][]model.Task) []model.Project {
	var out []model.Project
	for _, projectID := range projectIDs {
		p, ok := db.FindProject(projectID)
		if !ok {
			continue
		}
		out = append(out, *p)
		var ts []model.Task
		for _, taskID := range db.TasksOf(projectID) {
			if t, ok := db.FindTask(taskID); ok {
				ts = append(ts, *t)
			}
		}
		tasksBySrc[projectID] = ts
	}
	return out
}

func DuplicatePillar(db *store.DB, userID, pillarID string) (PillarResult, error) {
	userID = strings.TrimSpace(userID)
	pillarID = strings.TrimSpace(pillarID)
	if db == nil || userID == "" {
		return PillarResult{}, errors.New("missing db/user")
	}
	src, ok := db.FindPillar(pillarID)
	if !ok {
		return PillarResult{}, NotFoundError{Kind: "pillar", ID: pillarID}
	}
	if !perm.CanAccessPillar(db, userID, src) {
		return PillarResult{}, NotOwnerError{UserID: userID, OwnerUserID: src.UserID, Kind: "pillar", ID: pillarID}
	}

	rank, err := rankAfterSibling(db, db.PillarsForUser(userID), pillarID)
	if err != nil {
		return PillarResult{}, err
	}
	plan := planAreaSubtrees(db, db.AreasOf(pillarID))

	now := time.Now().UTC()
	cp := *src
	cp.ID = store.NewID()
	cp.Name = copyName(src.Name)
	cp.Rank = rank
	cp.CreatedAt = now
	cp.UpdatedAt = now
	db.Pillars = append(db.Pillars, cp)

	areas, projects, tasks := applyAreaSubtrees(db, plan, cp.ID, now)
	db.MarkDirty()

	created, _ := db.FindPillar(cp.ID)
	return PillarResult{
		Pillar:  created,
		Changed: true,
		EventPayload: map[string]any{
			"sourceId": pillarID,
			"areas":    areas,
			"projects": projects,
			"tasks":    tasks,
		},
	}, nil
}

// applyAreaSubtrees appends copies of the planned rows under newPillarID and
// reports how many of each kind were created.
func applyAreaSubtrees(db *store.DB, plan subtreePlan, newPillarID string, now time.Time) (areas, projects, tasks int) {
	for _, srcArea := range plan.areas {
		areaCopy := copyArea(srcArea, newPillarID, now)
		db.Areas = append(db.Areas, areaCopy)
		areas++
		p, t := applyProjectSubtrees(db, plan.projects[srcArea.ID], plan.tasks, areaCopy.ID, now)
		projects += p
		tasks += t
	}
	return
}

func applyProjectSubtrees(db *store.DB, srcProjects []model.Project, tasksBySrc map[string][]model.Task, newAreaID string, now time.Time) (projects, tasks int) {
	for _, srcProject := range srcProjects {
		projectCopy := copyProject(srcProject, newAreaID, now)
		db.Projects = append(db.Projects, projectCopy)
		projects++
		for _, srcTask := range tasksBySrc[srcProject.ID] {
			db.Tasks = append(db.Tasks, copyTask(srcTask, projectCopy.ID, now))
			tasks++
		}
	}
	return
}

func DuplicateArea(db *store.DB, userID, areaID string) (AreaResult, error) {
	userID = strings.TrimSpace(userID)
	areaID = strings.TrimSpace(areaID)
	if db == nil || userID == "" {
		return AreaResult{}, errors.New("missing db/user")
	}
	src, ok := db.FindArea(areaID)
	if !ok {
		return AreaResult{}, NotFoundError{Kind: "area", ID: areaID}
	}
	if !perm.CanAccessArea(db, userID, src) {
		return AreaResult{}, NotOwnerError{UserID: userID, OwnerUserID: src.UserID, Kind: "area", ID: areaID}
	}

	rank, err := rankAfterSibling(db, db.AreasOf(src.PillarID), areaID)
	if err != nil {
		return AreaResult{}, err
	}
	tasksBySrc := map[string][]model.Task{}
	srcProjects := planProjects(db, db.ProjectsOf(areaID), tasksBySrc)

	now := time.Now().UTC()
	cp := copyArea(*src, src.PillarID, now)
	cp.Name = copyName(src.Name)
	cp.Rank = rank
	db.Areas = append(db.Areas, cp)

	projects, tasks := applyProjectSubtrees(db, srcProjects, tasksBySrc, cp.ID, now)
	db.MarkDirty()

	created, _ := db.FindArea(cp.ID)
	return AreaResult{
		Area:    created,
		Changed: true,
		EventPayload: map[string]any{
			"sourceId": areaID,
			"projects": projects,
			"tasks":    tasks,
		},
	}, nil
}

func DuplicateProject(db *store.DB, userID, projectID string) (ProjectResult, error) {
	userID = strings.TrimSpace(userID)
	projectID = strings.TrimSpace(projectID)
	if db == nil || userID == "" {
		return ProjectResult{}, errors.New("missing db/user")
	}
	src, ok := db.FindProject(projectID)
	if !ok {
		return ProjectResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if !perm.CanAccessProject(db, userID, src) {
		return ProjectResult{}, NotOwnerError{UserID: userID, OwnerUserID: src.UserID, Kind: "project", ID: projectID}
	}

	rank, err := rankAfterSibling(db, db.ProjectsOf(src.AreaID), projectID)
	if err != nil {
		return ProjectResult{}, err
	}
	var srcTasks []model.Task
	for _, taskID := range db.TasksOf(projectID) {
		if t, ok := db.FindTask(taskID); ok {
			srcTasks = append(srcTasks, *t)
		}
	}

	now := time.Now().UTC()
	cp := copyProject(*src, src.AreaID, now)
	cp.Name = copyName(src.Name)
	cp.Rank = rank
	db.Projects = append(db.Projects, cp)

	tasks := 0
	for _, srcTask := range srcTasks {
		db.Tasks = append(db.Tasks, copyTask(srcTask, cp.ID, now))
		tasks++
	}
	db.MarkDirty()

	created, _ := db.FindProject(cp.ID)
	return ProjectResult{
		Project: created,
		Changed: true,
		EventPayload: map[string]any{
			"sourceId": projectID,
			"tasks":    tasks,
		},
	}, nil
}

func DuplicateTask(db *store.DB, userID, taskID string) (TaskResult, error) {
	userID = strings.TrimSpace(userID)
	taskID = strings.TrimSpace(taskID)
	if db == nil || userID == "" {
		return TaskResult{}, errors.New("missing db/user")
	}
	src, ok := db.FindTask(taskID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !perm.CanAccessTask(db, userID, src) {
		return TaskResult{}, NotOwnerError{UserID: userID, OwnerUserID: src.UserID, Kind: "task", ID: taskID}
	}

	rank, err := rankAfterSibling(db, db.TasksOf(src.ProjectID), taskID)
	if err != nil {
		return TaskResult{}, err
	}

	now := time.Now().UTC()
	cp := copyTask(*src, src.ProjectID, now)
	cp.Name = copyName(src.Name)
	cp.Rank = rank
	db.Tasks = append(db.Tasks, cp)
	db.MarkDirty()

	created, _ := db.FindTask(cp.ID)
	return TaskResult{
		Task:    created,
		Changed: true,
		EventPayload: map[string]any{
			"sourceId": taskID,
		},
	}, nil
}
