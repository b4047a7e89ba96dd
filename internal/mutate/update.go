package mutate

import (
	"errors"
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/perm"
	"aurum-life/internal/store"
)

// Update params use pointers so an unset field is distinguishable from a
// zero value. Empty strings clear optional fields where that makes sense
// (deadline, due, dueTime).

type UpdatePillarParams struct {
	Name                  *string
	Description           *string
	Icon                  *string
	Color                 *string
	TimeAllocationPct     *int
	TimeTargetMinutesWeek *int
}

func UpdatePillar(db *store.DB, userID, pillarID string, p UpdatePillarParams) (PillarResult, error) {
	userID = strings.TrimSpace(userID)
	pillarID = strings.TrimSpace(pillarID)
	if db == nil || userID == "" {
		return PillarResult{}, errors.New("missing db/user")
	}
	pillar, ok := db.FindPillar(pillarID)
	if !ok {
		return PillarResult{}, NotFoundError{Kind: "pillar", ID: pillarID}
	}
	if !perm.CanAccessPillar(db, userID, pillar) {
		return PillarResult{}, NotOwnerError{UserID: userID, OwnerUserID: pillar.UserID, Kind: "pillar", ID: pillarID}
	}

	changed := map[string]any{}
	if p.Name != nil {
		if err := model.ValidateName(*p.Name); err != nil {
			return PillarResult{}, err
		}
		if v := strings.TrimSpace(*p.Name); v != pillar.Name {
			pillar.Name = v
			changed["name"] = v
		}
	}
	if p.Description != nil {
		if err := model.ValidateDescription(*p.Description); err != nil {
			return PillarResult{}, err
		}
		if v := strings.TrimSpace(*p.Description); v != pillar.Description {
			pillar.Description = v
			changed["description"] = v
		}
	}
	if p.Icon != nil {
		if err := model.ValidateIcon(*p.Icon); err != nil {
			return PillarResult{}, err
		}
		if v := strings.TrimSpace(*p.Icon); v != pillar.Icon {
			pillar.Icon = v
			changed["icon"] = v
		}
	}
	if p.Color != nil {
		v, err := model.NormalizeColor(*p.Color)
		if err != nil {
			return PillarResult{}, err
		}
		if v != pillar.Color {
			pillar.Color = v
			changed["color"] = v
		}
	}
	if p.TimeAllocationPct != nil {
		if err := model.ValidateTimeAllocationPct(*p.TimeAllocationPct); err != nil {
			return PillarResult{}, err
		}
		if *p.TimeAllocationPct != pillar.TimeAllocationPct {
			pillar.TimeAllocationPct = *p.TimeAllocationPct
			changed["timeAllocationPct"] = *p.TimeAllocationPct
		}
	}
	if p.TimeTargetMinutesWeek != nil && *p.TimeTargetMinutesWeek != pillar.TimeTargetMinutesWeek {
		pillar.TimeTargetMinutesWeek = *p.TimeTargetMinutesWeek
		changed["timeTargetMinutesWeek"] = *p.TimeTargetMinutesWeek
	}

	if len(changed) == 0 {
		return PillarResult{Pillar: pillar, Changed: false}, nil
	}
	pillar.UpdatedAt = time.Now().UTC()
	db.MarkDirty()
	return PillarResult{Pillar: pillar, Changed: true, EventPayload: changed}, nil
}

type UpdateAreaParams struct {
	PillarID    *string
	Name        *string
	Description *string
	Icon        *string
	Color       *string
	Importance  *int
}

func UpdateArea(db *store.DB, userID, areaID string, p UpdateAreaParams) (AreaResult, error) {
	userID = strings.TrimSpace(userID)
	areaID = strings.TrimSpace(areaID)
	if db == nil || userID == "" {
		return AreaResult{}, errors.New("missing db/user")
	}
	area, ok := db.FindArea(areaID)
	if !ok {
		return AreaResult{}, NotFoundError{Kind: "area", ID: areaID}
	}
	if !perm.CanAccessArea(db, userID, area) {
		return AreaResult{}, NotOwnerError{UserID: userID, OwnerUserID: area.UserID, Kind: "area", ID: areaID}
	}

	changed := map[string]any{}
	if p.PillarID != nil {
		// Moving an area re-parents it; the rank restarts at the end of the
		// destination pillar's children.
		destID := strings.TrimSpace(*p.PillarID)
		if destID != area.PillarID {
			dest, ok := db.FindPillar(destID)
			if !ok {
				return AreaResult{}, NotFoundError{Kind: "pillar", ID: destID}
			}
			if !perm.CanAccessPillar(db, userID, dest) {
				return AreaResult{}, NotOwnerError{UserID: userID, OwnerUserID: dest.UserID, Kind: "pillar", ID: destID}
			}
			rank, err := db.NextSiblingRank(db.AreasOf(destID))
			if err != nil {
				return AreaResult{}, err
			}
			area.PillarID = destID
			area.Rank = rank
			changed["pillarId"] = destID
		}
	}
	if p.Name != nil {
		if err := model.ValidateName(*p.Name); err != nil {
			return AreaResult{}, err
		}
		if v := strings.TrimSpace(*p.Name); v != area.Name {
			area.Name = v
			changed["name"] = v
		}
	}
	if p.Description != nil {
		if err := model.ValidateDescription(*p.Description); err != nil {
			return AreaResult{}, err
		}
		if v := strings.TrimSpace(*p.Description); v != area.Description {
			area.Description = v
			changed["description"] = v
		}
	}
	if p.Icon != nil {
		if err := model.ValidateIcon(*p.Icon); err != nil {
			return AreaResult{}, err
		}
		if v := strings.TrimSpace(*p.Icon); v != area.Icon {
			area.Icon = v
			changed["icon"] = v
		}
	}
	if p.Color != nil {
		v, err := model.NormalizeColor(*p.Color)
		if err != nil {
			return AreaResult{}, err
		}
		if v != area.Color {
			area.Color = v
			changed["color"] = v
		}
	}
	if p.Importance != nil {
		if err := model.ValidateImportance(*p.Importance); err != nil {
			return AreaResult{}, err
		}
		if *p.Importance != area.Importance {
			area.Importance = *p.Importance
			changed["importance"] = *p.Importance
		}
	}

	if len(changed) == 0 {
		return AreaResult{Area: area, Changed: false}, nil
	}
	area.UpdatedAt = time.Now().UTC()
	db.MarkDirty()
	return AreaResult{Area: area, Changed: true, EventPayload: changed}, nil
}

type UpdateProjectParams struct {
	AreaID      *string
	Name        *string
	Description *string
	Status      *string
	Priority    *string
	Deadline    *string // "" clears
}

func UpdateProject(db *store.DB, userID, projectID string, p UpdateProjectParams) (ProjectResult, error) {
	userID = strings.TrimSpace(userID)
	projectID = strings.TrimSpace(projectID)
	if db == nil || userID == "" {
		return ProjectResult{}, errors.New("missing db/user")
	}
	project, ok := db.FindProject(projectID)
	if !ok {
		return ProjectResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if !perm.CanAccessProject(db, userID, project) {
		return ProjectResult{}, NotOwnerError{UserID: userID, OwnerUserID: project.UserID, Kind: "project", ID: projectID}
	}

	changed := map[string]any{}
	if p.AreaID != nil {
		destID := strings.TrimSpace(*p.AreaID)
		if destID != project.AreaID {
			dest, ok := db.FindArea(destID)
			if !ok {
				return ProjectResult{}, NotFoundError{Kind: "area", ID: destID}
			}
			if !perm.CanAccessArea(db, userID, dest) {
				return ProjectResult{}, NotOwnerError{UserID: userID, OwnerUserID: dest.UserID, Kind: "area", ID: destID}
			}
			rank, err := db.NextSiblingRank(db.ProjectsOf(destID))
			if err != nil {
				return ProjectResult{}, err
			}
			project.AreaID = destID
			project.Rank = rank
			changed["areaId"] = destID
		}
	}
	if p.Name != nil {
		if err := model.ValidateName(*p.Name); err != nil {
			return ProjectResult{}, err
		}
		if v := strings.TrimSpace(*p.Name); v != project.Name {
			project.Name = v
			changed["name"] = v
		}
	}
	if p.Description != nil {
		if err := model.ValidateDescription(*p.Description); err != nil {
			return ProjectResult{}, err
		}
		if v := strings.TrimSpace(*p.Description); v != project.Description {
			project.Description = v
			changed["description"] = v
		}
	}
	if p.Status != nil {
		v, err := model.ParseProjectStatus(*p.Status)
		if err != nil {
			return ProjectResult{}, err
		}
		if v != project.Status {
			project.Status = v
			changed["status"] = string(v)
		}
	}
	if p.Priority != nil {
		v, err := model.ParsePriority(*p.Priority)
		if err != nil {
			return ProjectResult{}, err
		}
		if v != project.Priority {
			project.Priority = v
			changed["priority"] = string(v)
		}
	}
	if p.Deadline != nil {
		if strings.TrimSpace(*p.Deadline) == "" {
			if project.Deadline != nil {
				project.Deadline = nil
				changed["deadline"] = nil
			}
		} else {
			d, err := model.ParseDate(*p.Deadline)
			if err != nil {
				return ProjectResult{}, err
			}
			if project.Deadline == nil || project.Deadline.Date != d.Date {
				project.Deadline = d
				changed["deadline"] = d.Date
			}
		}
	}

	if len(changed) == 0 {
		return ProjectResult{Project: project, Changed: false}, nil
	}
	project.UpdatedAt = time.Now().UTC()
	db.MarkDirty()
	return ProjectResult{Project: project, Changed: true, EventPayload: changed}, nil
}

type UpdateTaskParams struct {
	ProjectID        *string
	Name             *string
	Description      *string
	Status           *string
	Priority         *string
	Due              *string // "" clears
	DueTime          *string // "" clears
	EstimatedMinutes *int
}

func UpdateTask(db *store.DB, userID, taskID string, p UpdateTaskParams) (TaskResult, error) {
	userID = strings.TrimSpace(userID)
	taskID = strings.TrimSpace(taskID)
	if db == nil || userID == "" {
		return TaskResult{}, errors.New("missing db/user")
	}
	task, ok := db.FindTask(taskID)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !perm.CanAccessTask(db, userID, task) {
		return TaskResult{}, NotOwnerError{UserID: userID, OwnerUserID: task.UserID, Kind: "task", ID: taskID}
	}

	changed := map[string]any{}
	if p.ProjectID != nil {
		destID := strings.TrimSpace(*p.ProjectID)
		if destID != task.ProjectID {
			dest, ok := db.FindProject(destID)
			if !ok {
				return TaskResult{}, NotFoundError{Kind: "project", ID: destID}
			}
			if !perm.CanAccessProject(db, userID, dest) {
				return TaskResult{}, NotOwnerError{UserID: userID, OwnerUserID: dest.UserID, Kind: "project", ID: destID}
			}
			rank, err := db.NextSiblingRank(db.TasksOf(destID))
			if err != nil {
				return TaskResult{}, err
			}
			task.ProjectID = destID
			task.Rank = rank
			changed["projectId"] = destID
		}
	}
	if p.Name != nil {
		if err := model.ValidateName(*p.Name); err != nil {
			return TaskResult{}, err
		}
		if v := strings.TrimSpace(*p.Name); v != task.Name {
			task.Name = v
			changed["name"] = v
		}
	}
	if p.Description != nil {
		if err := model.ValidateDescription(*p.Description); err != nil {
			return TaskResult{}, err
		}
		if v := strings.TrimSpace(*p.Description); v != task.Description {
			task.Description = v
			changed["description"] = v
		}
	}
	if p.Status != nil {
		v, err := model.ParseTaskStatus(*p.Status)
		if err != nil {
			return TaskResult{}, err
		}
		if v != task.Status {
			// Status edits keep completedAt honest but award no points; the
			// gamified path is CompleteTask.
			now := time.Now().UTC()
			if v == model.TaskStatusDone {
				task.CompletedAt = &now
			} else {
				task.CompletedAt = nil
			}
			task.Status = v
			changed["status"] = string(v)
		}
	}
	if p.Priority != nil {
		v, err := model.ParsePriority(*p.Priority)
		if err != nil {
			return TaskResult{}, err
		}
		if v != task.Priority {
			task.Priority = v
			changed["priority"] = string(v)
		}
	}
	if p.Due != nil {
		if strings.TrimSpace(*p.Due) == "" {
			if task.Due != nil {
				task.Due = nil
				changed["due"] = nil
			}
		} else {
			d, err := model.ParseDate(*p.Due)
			if err != nil {
				return TaskResult{}, err
			}
			if task.Due == nil || task.Due.Date != d.Date {
				task.Due = d
				changed["due"] = d.Date
			}
		}
	}
	if p.DueTime != nil {
		if strings.TrimSpace(*p.DueTime) == "" {
			if task.DueTime != nil {
				task.DueTime = nil
				changed["dueTime"] = nil
			}
		} else {
			if err := model.ValidateDueTime(*p.DueTime); err != nil {
				return TaskResult{}, err
			}
			v := strings.TrimSpace(*p.DueTime)
			if task.DueTime == nil || *task.DueTime != v {
				task.DueTime = &v
				changed["dueTime"] = v
			}
		}
	}
	if p.EstimatedMinutes != nil {
		if err := model.ValidateEstimatedMinutes(*p.EstimatedMinutes); err != nil {
			return TaskResult{}, err
		}
		if *p.EstimatedMinutes != task.EstimatedMinutes {
			task.EstimatedMinutes = *p.EstimatedMinutes
			changed["estimatedMinutes"] = *p.EstimatedMinutes
		}
	}

	if len(changed) == 0 {
		return TaskResult{Task: task, Changed: false}, nil
	}
	task.UpdatedAt = time.Now().UTC()
	db.MarkDirty()
	return TaskResult{Task: task, Changed: true, EventPayload: changed}, nil
}

type ProfileResult struct {
	User         *model.User
	Changed      bool
	EventPayload map[string]any
}

// UpdateProfile renames the user. Email and password changes go through the
// auth package.
func UpdateProfile(db *store.DB, userID, name string) (ProfileResult, error) {
	userID = strings.TrimSpace(userID)
	if db == nil || userID == "" {
		return ProfileResult{}, errors.New("missing db/user")
	}
	u, ok := db.FindUser(userID)
	if !ok {
		return ProfileResult{}, NotFoundError{Kind: "user", ID: userID}
	}
	if err := model.ValidateName(name); err != nil {
		return ProfileResult{}, err
	}
	v := strings.TrimSpace(name)
	if v == u.Name {
		return ProfileResult{User: u, Changed: false}, nil
	}
	u.Name = v
	db.MarkDirty()
	return ProfileResult{User: u, Changed: true, EventPayload: map[string]any{"name": v}}, nil
}
