package mutate

import (
	"errors"
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/perm"
	"aurum-life/internal/store"
)

// DefaultPillarIcon is used when a pillar is created without one.
const DefaultPillarIcon = "🎯"

type CreatePillarParams struct {
	Name                  string
	Description           string
	Icon                  string
	Color                 string
	TimeAllocationPct     int
	TimeTargetMinutesWeek int
}

type PillarResult struct {
	Pillar       *model.Pillar
	Changed      bool
	EventPayload map[string]any
}

// CreatePillar appends a new pillar owned by userID. Callers are responsible
// for saving db and appending the pillar.created event.
func CreatePillar(db *store.DB, userID string, p CreatePillarParams) (PillarResult, error) {
	userID = strings.TrimSpace(userID)
	if db == nil || userID == "" {
		return PillarResult{}, errors.New("missing db/user")
	}
	if _, ok := db.FindUser(userID); !ok {
		return PillarResult{}, NotFoundError{Kind: "user", ID: userID}
	}
	if err := model.ValidateName(p.Name); err != nil {
		return PillarResult{}, err
	}
	if err := model.ValidateDescription(p.Description); err != nil {
		return PillarResult{}, err
	}
	if err := model.ValidateIcon(p.Icon); err != nil {
		return PillarResult{}, err
	}
	color, err := model.NormalizeColor(p.Color)
	if err != nil {
		return PillarResult{}, err
	}
	if err := model.ValidateTimeAllocationPct(p.TimeAllocationPct); err != nil {
		return PillarResult{}, err
	}

	icon := strings.TrimSpace(p.Icon)
	if icon == "" {
		icon = DefaultPillarIcon
	}

	rank, err := db.NextSiblingRank(db.PillarsForUser(userID))
	if err != nil {
		return PillarResult{}, err
	}

	now := time.Now().UTC()
	pillar := model.Pillar{
		ID:                    store.NewID(),
		UserID:                userID,
		Name:                  strings.TrimSpace(p.Name),
		Description:           strings.TrimSpace(p.Description),
		Icon:                  icon,
		Color:                 color,
		Rank:                  rank,
		TimeAllocationPct:     p.TimeAllocationPct,
		TimeTargetMinutesWeek: p.TimeTargetMinutesWeek,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	db.Pillars = append(db.Pillars, pillar)
	db.MarkDirty()

	created := &db.Pillars[len(db.Pillars)-1]
	return PillarResult{
		Pillar:  created,
		Changed: true,
		EventPayload: map[string]any{
			"name": created.Name,
		},
	}, nil
}

type CreateAreaParams struct {
	PillarID    string
	Name        string
	Description string
	Icon        string
	Color       string
	Importance  int
}

type AreaResult struct {
	Area         *model.Area
	Changed      bool
	EventPayload map[string]any
}

func CreateArea(db *store.DB, userID string, p CreateAreaParams) (AreaResult, error) {
	userID = strings.TrimSpace(userID)
	if db == nil || userID == "" {
		return AreaResult{}, errors.New("missing db/user")
	}
	pillarID := strings.TrimSpace(p.PillarID)
	pillar, ok := db.FindPillar(pillarID)
	if !ok {
		return AreaResult{}, NotFoundError{Kind: "pillar", ID: pillarID}
	}
	if !perm.CanAccessPillar(db, userID, pillar) {
		return AreaResult{}, NotOwnerError{UserID: userID, OwnerUserID: pillar.UserID, Kind: "pillar", ID: pillarID}
	}
	if err := model.ValidateName(p.Name); err != nil {
		return AreaResult{}, err
	}
	if err := model.ValidateDescription(p.Description); err != nil {
		return AreaResult{}, err
	}
	if err := model.ValidateIcon(p.Icon); err != nil {
		return AreaResult{}, err
	}
	color, err := model.NormalizeColor(p.Color)
	if err != nil {
		return AreaResult{}, err
	}
	importance := p.Importance
	if importance == 0 {
		importance = 3
	}
	if err := model.ValidateImportance(importance); err != nil {
		return AreaResult{}, err
	}

	rank, err := db.NextSiblingRank(db.AreasOf(pillarID))
	if err != nil {
		return AreaResult{}, err
	}

	now := time.Now().UTC()
	area := model.Area{
		ID:          store.NewID(),
		UserID:      userID,
		PillarID:    pillarID,
		Name:        strings.TrimSpace(p.Name),
		Description: strings.TrimSpace(p.Description),
		Icon:        strings.TrimSpace(p.Icon),
		Color:       color,
		Rank:        rank,
		Importance:  importance,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	db.Areas = append(db.Areas, area)
	db.MarkDirty()

	created := &db.Areas[len(db.Areas)-1]
	return AreaResult{
		Area:    created,
		Changed: true,
		EventPayload: map[string]any{
			"name":     created.Name,
			"pillarId": created.PillarID,
		},
	}, nil
}

type CreateProjectParams struct {
	AreaID      string
	Name        string
	Description string
	Status      string
	Priority    string
	Deadline    string // YYYY-MM-DD, empty for none
}

type ProjectResult struct {
	Project      *model.Project
	Changed      bool
	EventPayload map[string]any
}

func CreateProject(db *store.DB, userID string, p CreateProjectParams) (ProjectResult, error) {
	userID = strings.TrimSpace(userID)
	if db == nil || userID == "" {
		return ProjectResult{}, errors.New("missing db/user")
	}
	areaID := strings.TrimSpace(p.AreaID)
	area, ok := db.FindArea(areaID)
	if !ok {
		return ProjectResult{}, NotFoundError{Kind: "area", ID: areaID}
	}
	if !perm.CanAccessArea(db, userID, area) {
		return ProjectResult{}, NotOwnerError{UserID: userID, OwnerUserID: area.UserID, Kind: "area", ID: areaID}
	}
	if err := model.ValidateName(p.Name); err != nil {
		return ProjectResult{}, err
	}
	if err := model.ValidateDescription(p.Description); err != nil {
		return ProjectResult{}, err
	}
	status, err := model.ParseProjectStatus(p.Status)
	if err != nil {
		return ProjectResult{}, err
	}
	priority, err := model.ParsePriority(p.Priority)
	if err != nil {
		return ProjectResult{}, err
	}
	var deadline *model.Date
	if strings.TrimSpace(p.Deadline) != "" {
		d, err := model.ParseDate(p.Deadline)
		if err != nil {
			return ProjectResult{}, err
		}
		deadline = d
	}

	rank, err := db.NextSiblingRank(db.ProjectsOf(areaID))
	if err != nil {
		return ProjectResult{}, err
	}

	now := time.Now().UTC()
	project := model.Project{
		ID:          store.NewID(),
		UserID:      userID,
		AreaID:      areaID,
		Name:        strings.TrimSpace(p.Name),
		Description: strings.TrimSpace(p.Description),
		Status:      status,
		Priority:    priority,
		Deadline:    deadline,
		Rank:        rank,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	db.Projects = append(db.Projects, project)
	db.MarkDirty()

	created := &db.Projects[len(db.Projects)-1]
	return ProjectResult{
		Project: created,
		Changed: true,
		EventPayload: map[string]any{
			"name":   created.Name,
			"areaId": created.AreaID,
		},
	}, nil
}

type CreateTaskParams struct {
	ProjectID        string
	Name             string
	Description      string
	Priority         string
	Due              string // YYYY-MM-DD, empty for none
	DueTime          string // HH:MM, empty for none
	EstimatedMinutes int
}

type TaskResult struct {
	Task         *model.Task
	Changed      bool
	EventPayload map[string]any
}

func CreateTask(db *store.DB, userID string, p CreateTaskParams) (TaskResult, error) {
	userID = strings.TrimSpace(userID)
	if db == nil || userID == "" {
		return TaskResult{}, errors.New("missing db/user")
	}
	projectID := strings.TrimSpace(p.ProjectID)
	project, ok := db.FindProject(projectID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if !perm.CanAccessProject(db, userID, project) {
		return TaskResult{}, NotOwnerError{UserID: userID, OwnerUserID: project.UserID, Kind: "project", ID: projectID}
	}
	if err := model.ValidateName(p.Name); err != nil {
		return TaskResult{}, err
	}
	if err := model.ValidateDescription(p.Description); err != nil {
		return TaskResult{}, err
	}
	priority, err := model.ParsePriority(p.Priority)
	if err != nil {
		return TaskResult{}, err
	}
	var due *model.Date
	if strings.TrimSpace(p.Due) != "" {
		d, err := model.ParseDate(p.Due)
		if err != nil {
			return TaskResult{}, err
		}
		due = d
	}
	var dueTime *string
	if strings.TrimSpace(p.DueTime) != "" {
		if err := model.ValidateDueTime(p.DueTime); err != nil {
			return TaskResult{}, err
		}
		v := strings.TrimSpace(p.DueTime)
		dueTime = &v
	}
	if err := model.ValidateEstimatedMinutes(p.EstimatedMinutes); err != nil {
		return TaskResult{}, err
	}

	rank, err := db.NextSiblingRank(db.TasksOf(projectID))
	if err != nil {
		return TaskResult{}, err
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:               store.NewID(),
		UserID:           userID,
		ProjectID:        projectID,
		Name:             strings.TrimSpace(p.Name),
		Description:      strings.TrimSpace(p.Description),
		Status:           model.TaskStatusTodo,
		Priority:         priority,
		Rank:             rank,
		Due:              due,
		DueTime:          dueTime,
		EstimatedMinutes: p.EstimatedMinutes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	db.Tasks = append(db.Tasks, task)
	db.MarkDirty()

	created := &db.Tasks[len(db.Tasks)-1]
	return TaskResult{
		Task:    created,
		Changed: true,
		EventPayload: map[string]any{
			"name":      created.Name,
			"projectId": created.ProjectID,
		},
	}, nil
}
