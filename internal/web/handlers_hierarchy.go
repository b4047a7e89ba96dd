package web

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/mutate"
	"aurum-life/internal/perm"
	"aurum-life/internal/score"
	"aurum-life/internal/store"

	"go.uber.org/zap"
)

func includeArchived(r *http.Request) bool {
	return r.URL.Query().Get("include_archived") == "true"
}

func (s *Server) removeAttachmentFiles(removed []model.Attachment) {
	st := s.st()
	for _, a := range removed {
		if err := st.RemoveAttachmentFile(a); err != nil {
			s.log.Warn("remove attachment file", zap.String("id", a.ID), zap.Error(err))
		}
	}
}

func rankedPillars(db *store.DB, userID string, withArchived bool) []model.Pillar {
	refs := db.RankedSiblings(db.PillarsForUser(userID))
	out := make([]model.Pillar, 0, len(refs))
	for _, ref := range refs {
		if p, ok := db.FindPillar(ref.ID); ok {
			if p.Archived && !withArchived {
				continue
			}
			out = append(out, *p)
		}
	}
	return out
}

func rankedAreas(db *store.DB, pillarID string, withArchived bool) []model.Area {
	refs := db.RankedSiblings(db.AreasOf(pillarID))
	out := make([]model.Area, 0, len(refs))
	for _, ref := range refs {
		if a, ok := db.FindArea(ref.ID); ok {
			if a.Archived && !withArchived {
				continue
			}
			out = append(out, *a)
		}
	}
	return out
}

func rankedProjects(db *store.DB, areaID string, withArchived bool) []model.Project {
	refs := db.RankedSiblings(db.ProjectsOf(areaID))
	out := make([]model.Project, 0, len(refs))
	for _, ref := range refs {
		if p, ok := db.FindProject(ref.ID); ok {
			if p.Archived && !withArchived {
				continue
			}
			out = append(out, *p)
		}
	}
	return out
}

func rankedTasks(db *store.DB, projectID string, withArchived bool) []model.Task {
	refs := db.RankedSiblings(db.TasksOf(projectID))
	out := make([]model.Task, 0, len(refs))
	for _, ref := range refs {
		if t, ok := db.FindTask(ref.ID); ok {
			if t.Archived && !withArchived {
				continue
			}
			out = append(out, *t)
		}
	}
	return out
}

// Pillars

type pillarBody struct {
	Name                  string `json:"name"`
	Description           string `json:"description"`
	Icon                  string `json:"icon"`
	Color                 string `json:"color"`
	TimeAllocationPct     int    `json:"timeAllocationPct"`
	TimeTargetMinutesWeek int    `json:"timeTargetMinutesWeek"`
}

type pillarPatchBody struct {
	Name                  *string `json:"name"`
	Description           *string `json:"description"`
	Icon                  *string `json:"icon"`
	Color                 *string `json:"color"`
	TimeAllocationPct     *int    `json:"timeAllocationPct"`
	TimeTargetMinutesWeek *int    `json:"timeTargetMinutesWeek"`
}

type reorderBody struct {
	InsertAt int `json:"insertAt"`
}

type archiveBody struct {
	Archived bool `json:"archived"`
}

func (s *Server) handlePillarsList(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	writeList(w, r, rankedPillars(db, uid, includeArchived(r)))
}

func (s *Server) handlePillarCreate(w http.ResponseWriter, r *http.Request) {
	var body pillarBody
	if !decodeJSON(w, r, &body) {
		return
	}
	out, ok := s.mutateState(w, r, "pillars", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.CreatePillar(db, uid, mutate.CreatePillarParams{
			Name:                  body.Name,
			Description:           body.Description,
			Icon:                  body.Icon,
			Color:                 body.Color,
			TimeAllocationPct:     body.TimeAllocationPct,
			TimeTargetMinutesWeek: body.TimeTargetMinutesWeek,
		})
		if err != nil {
			return nil, nil, err
		}
		return res.Pillar, []storeEvent{{typ: "pillar.created", entityID: res.Pillar.ID, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handlePillarGet(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	p, found := db.FindPillar(id)
	if !found || !perm.CanAccessPillar(db, uid, p) {
		s.writeErr(w, mutate.NotFoundError{Kind: "pillar", ID: id})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pillar": p,
		"areas":  rankedAreas(db, p.ID, includeArchived(r)),
	})
}

func (s *Server) handlePillarUpdate(w http.ResponseWriter, r *http.Request) {
	var body pillarPatchBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "pillars", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.UpdatePillar(db, uid, id, mutate.UpdatePillarParams{
			Name:                  body.Name,
			Description:           body.Description,
			Icon:                  body.Icon,
			Color:                 body.Color,
			TimeAllocationPct:     body.TimeAllocationPct,
			TimeTargetMinutesWeek: body.TimeTargetMinutesWeek,
		})
		if err != nil {
			return nil, nil, err
		}
		var evs []storeEvent
		if res.Changed {
			evs = append(evs, storeEvent{typ: "pillar.updated", entityID: id, payload: res.EventPayload})
		}
		return res.Pillar, evs, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePillarDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var removed []model.Attachment
	out, ok := s.mutateState(w, r, "pillars", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.DeletePillar(db, uid, id)
		if err != nil {
			return nil, nil, err
		}
		removed = res.RemovedAttachments
		return res, []storeEvent{{typ: "pillar.deleted", entityID: id, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	s.removeAttachmentFiles(removed)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePillarDuplicate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "pillars", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.DuplicatePillar(db, uid, id)
		if err != nil {
			return nil, nil, err
		}
		return res.Pillar, []storeEvent{{typ: "pillar.duplicated", entityID: res.Pillar.ID, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handlePillarReorder(w http.ResponseWriter, r *http.Request) {
	var body reorderBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "pillars", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.ReorderPillar(db, uid, id, body.InsertAt)
		if err != nil {
			return nil, nil, err
		}
		return res.Pillar, []storeEvent{{typ: "pillar.reordered", entityID: id, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePillarArchive(w http.ResponseWriter, r *http.Request) {
	var body archiveBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "pillars", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.SetPillarArchived(db, uid, id, body.Archived)
		if err != nil {
			return nil, nil, err
		}
		var evs []storeEvent
		if res.Changed {
			evs = append(evs, storeEvent{typ: "pillar.archived", entityID: id, payload: res.EventPayload})
		}
		return res.Pillar, evs, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Areas

type areaBody struct {
	PillarID    string `json:"pillarId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Importance  int    `json:"importance"`
}

type areaPatchBody struct {
	PillarID    *string `json:"pillarId"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
	Importance  *int    `json:"importance"`
}

func (s *Server) handleAreasList(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	withArchived := includeArchived(r)

	if pid := strings.TrimSpace(r.URL.Query().Get("pillar_id")); pid != "" {
		p, found := db.FindPillar(pid)
		if !found || !perm.CanAccessPillar(db, uid, p) {
			s.writeErr(w, mutate.NotFoundError{Kind: "pillar", ID: pid})
			return
		}
		writeList(w, r, rankedAreas(db, pid, withArchived))
		return
	}

	var rows []model.Area
	for _, p := range rankedPillars(db, uid, true) {
		rows = append(rows, rankedAreas(db, p.ID, withArchived)...)
	}
	writeList(w, r, rows)
}

func (s *Server) handleAreaCreate(w http.ResponseWriter, r *http.Request) {
	var body areaBody
	if !decodeJSON(w, r, &body) {
		return
	}
	out, ok := s.mutateState(w, r, "areas", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.CreateArea(db, uid, mutate.CreateAreaParams{
			PillarID:    body.PillarID,
			Name:        body.Name,
			Description: body.Description,
			Icon:        body.Icon,
			Color:       body.Color,
			Importance:  body.Importance,
		})
		if err != nil {
			return nil, nil, err
		}
		return res.Area, []storeEvent{{typ: "area.created", entityID: res.Area.ID, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleAreaGet(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	a, found := db.FindArea(id)
	if !found || !perm.CanAccessArea(db, uid, a) {
		s.writeErr(w, mutate.NotFoundError{Kind: "area", ID: id})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"area":     a,
		"projects": rankedProjects(db, a.ID, includeArchived(r)),
	})
}

func (s *Server) handleAreaUpdate(w http.ResponseWriter, r *http.Request) {
	var body areaPatchBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "areas", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.UpdateArea(db, uid, id, mutate.UpdateAreaParams{
			PillarID:    body.PillarID,
			Name:        body.Name,
			Description: body.Description,
			Icon:        body.Icon,
			Color:       body.Color,
			Importance:  body.Importance,
		})
		if err != nil {
			return nil, nil, err
		}
		var evs []storeEvent
		if res.Changed {
			evs = append(evs, storeEvent{typ: "area.updated", entityID: id, payload: res.EventPayload})
		}
		return res.Area, evs, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAreaDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var removed []model.Attachment
	out, ok := s.mutateState(w, r, "areas", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.DeleteArea(db, uid, id)
		if err != nil {
			return nil, nil, err
		}
		removed = res.RemovedAttachments
		return res, []storeEvent{{typ: "area.deleted", entityID: id, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	s.removeAttachmentFiles(removed)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAreaDuplicate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "areas", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.DuplicateArea(db, uid, id)
		if err != nil {
			return nil, nil, err
		}
		return res.Area, []storeEvent{{typ: "area.duplicated", entityID: res.Area.ID, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleAreaReorder(w http.ResponseWriter, r *http.Request) {
	var body reorderBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "areas", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.ReorderArea(db, uid, id, body.InsertAt)
		if err != nil {
			return nil, nil, err
		}
		return res.Area, []storeEvent{{typ: "area.reordered", entityID: id, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAreaArchive(w http.ResponseWriter, r *http.Request) {
	var body archiveBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "areas", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.SetAreaArchived(db, uid, id, body.Archived)
		if err != nil {
			return nil, nil, err
		}
		var evs []storeEvent
		if res.Changed {
			evs = append(evs, storeEvent{typ: "area.archived", entityID: id, payload: res.EventPayload})
		}
		return res.Area, evs, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Projects

type projectBody struct {
	AreaID      string `json:"areaId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Deadline    string `json:"deadline"`
}

type projectPatchBody struct {
	AreaID      *string `json:"areaId"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Deadline    *string `json:"deadline"`
}

func (s *Server) handleProjectsList(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	withArchived := includeArchived(r)

	if aid := strings.TrimSpace(r.URL.Query().Get("area_id")); aid != "" {
		a, found := db.FindArea(aid)
		if !found || !perm.CanAccessArea(db, uid, a) {
			s.writeErr(w, mutate.NotFoundError{Kind: "area", ID: aid})
			return
		}
		writeList(w, r, rankedProjects(db, aid, withArchived))
		return
	}

	var rows []model.Project
	for _, p := range rankedPillars(db, uid, true) {
		for _, a := range rankedAreas(db, p.ID, true) {
			rows = append(rows, rankedProjects(db, a.ID, withArchived)...)
		}
	}
	writeList(w, r, rows)
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	var body projectBody
	if !decodeJSON(w, r, &body) {
		return
	}
	out, ok := s.mutateState(w, r, "projects", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.CreateProject(db, uid, mutate.CreateProjectParams{
			AreaID:      body.AreaID,
			Name:        body.Name,
			Description: body.Description,
			Status:      body.Status,
			Priority:    body.Priority,
			Deadline:    body.Deadline,
		})
		if err != nil {
			return nil, nil, err
		}
		return res.Project, []storeEvent{{typ: "project.created", entityID: res.Project.ID, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	p, found := db.FindProject(id)
	if !found || !perm.CanAccessProject(db, uid, p) {
		s.writeErr(w, mutate.NotFoundError{Kind: "project", ID: id})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"project": p,
		"tasks":   rankedTasks(db, p.ID, includeArchived(r)),
	})
}

func (s *Server) handleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	var body projectPatchBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "projects", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.UpdateProject(db, uid, id, mutate.UpdateProjectParams{
			AreaID:      body.AreaID,
			Name:        body.Name,
			Description: body.Description,
			Status:      body.Status,
			Priority:    body.Priority,
			Deadline:    body.Deadline,
		})
		if err != nil {
			return nil, nil, err
		}
		var evs []storeEvent
		if res.Changed {
			evs = append(evs, storeEvent{typ: "project.updated", entityID: id, payload: res.EventPayload})
		}
		return res.Project, evs, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var removed []model.Attachment
	out, ok := s.mutateState(w, r, "projects", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.DeleteProject(db, uid, id)
		if err != nil {
			return nil, nil, err
		}
		removed = res.RemovedAttachments
		return res, []storeEvent{{typ: "project.deleted", entityID: id, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	s.removeAttachmentFiles(removed)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProjectDuplicate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "projects", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.DuplicateProject(db, uid, id)
		if err != nil {
			return nil, nil, err
		}
		return res.Project, []storeEvent{{typ: "project.duplicated", entityID: res.Project.ID, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleProjectReorder(w http.ResponseWriter, r *http.Request) {
	var body reorderBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "projects", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.ReorderProject(db, uid, id, body.InsertAt)
		if err != nil {
			return nil, nil, err
		}
		return res.Project, []storeEvent{{typ: "project.reordered", entityID: id, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProjectArchive(w http.ResponseWriter, r *http.Request) {
	var body archiveBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "projects", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.SetProjectArchived(db, uid, id, body.Archived)
		if err != nil {
			return nil, nil, err
		}
		var evs []storeEvent
		if res.Changed {
			evs = append(evs, storeEvent{typ: "project.archived", entityID: id, payload: res.EventPayload})
		}
		return res.Project, evs, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Tasks

type taskBody struct {
	ProjectID        string `json:"projectId"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Priority         string `json:"priority"`
	Due              string `json:"due"`
	DueTime          string `json:"dueTime"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
}

type taskPatchBody struct {
	ProjectID        *string `json:"projectId"`
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	Status           *string `json:"status"`
	Priority         *string `json:"priority"`
	Due              *string `json:"due"`
	DueTime          *string `json:"dueTime"`
	EstimatedMinutes *int    `json:"estimatedMinutes"`
}

func sortTasksBy(rows []model.Task, by, order string) {
	var less func(a, b model.Task) bool
	switch by {
	case "name":
		less = func(a, b model.Task) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case "created":
		less = func(a, b model.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "due":
		// Tasks without a due date sort last.
		less = func(a, b model.Task) bool {
			switch {
			case a.Due == nil:
				return false
			case b.Due == nil:
				return true
			default:
				return a.Due.Date < b.Due.Date
			}
		}
	case "priority":
		less = func(a, b model.Task) bool {
			return score.PriorityWeight(a.Priority) > score.PriorityWeight(b.Priority)
		}
	default:
		return // rank order from the store
	}
	if order == "desc" {
		inner := less
		less = func(a, b model.Task) bool { return inner(b, a) }
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

func (s *Server) handleTasksList(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	withArchived := includeArchived(r)

	var rows []model.Task
	if pid := strings.TrimSpace(q.Get("project_id")); pid != "" {
		p, found := db.FindProject(pid)
		if !found || !perm.CanAccessProject(db, uid, p) {
			s.writeErr(w, mutate.NotFoundError{Kind: "project", ID: pid})
			return
		}
		rows = rankedTasks(db, pid, withArchived)
	} else {
		for _, p := range rankedPillars(db, uid, true) {
			for _, a := range rankedAreas(db, p.ID, true) {
				for _, pr := range rankedProjects(db, a.ID, true) {
					rows = append(rows, rankedTasks(db, pr.ID, withArchived)...)
				}
			}
		}
	}

	if status := strings.TrimSpace(q.Get("status")); status != "" {
		filtered := rows[:0]
		for _, t := range rows {
			if string(t.Status) == status {
				filtered = append(filtered, t)
			}
		}
		rows = filtered
	}
	if prio := strings.TrimSpace(q.Get("priority")); prio != "" {
		filtered := rows[:0]
		for _, t := range rows {
			if string(t.Priority) == prio {
				filtered = append(filtered, t)
			}
		}
		rows = filtered
	}

	sortTasksBy(rows, q.Get("sort_by"), q.Get("sort_order"))
	writeList(w, r, rows)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var body taskBody
	if !decodeJSON(w, r, &body) {
		return
	}
	out, ok := s.mutateState(w, r, "tasks", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.CreateTask(db, uid, mutate.CreateTaskParams{
			ProjectID:        body.ProjectID,
			Name:             body.Name,
			Description:      body.Description,
			Priority:         body.Priority,
			Due:              body.Due,
			DueTime:          body.DueTime,
			EstimatedMinutes: body.EstimatedMinutes,
		})
		if err != nil {
			return nil, nil, err
		}
		return res.Task, []storeEvent{{typ: "task.created", entityID: res.Task.ID, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	t, found := db.FindTask(id)
	if !found || !perm.CanAccessTask(db, uid, t) {
		s.writeErr(w, mutate.NotFoundError{Kind: "task", ID: id})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task":  t,
		"score": score.TaskScore(*t, time.Now()),
	})
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	var body taskPatchBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "tasks", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.UpdateTask(db, uid, id, mutate.UpdateTaskParams{
			ProjectID:        body.ProjectID,
			Name:             body.Name,
			Description:      body.Description,
			Status:           body.Status,
			Priority:         body.Priority,
			Due:              body.Due,
			DueTime:          body.DueTime,
			EstimatedMinutes: body.EstimatedMinutes,
		})
		if err != nil {
			return nil, nil, err
		}
		var evs []storeEvent
		if res.Changed {
			evs = append(evs, storeEvent{typ: "task.updated", entityID: id, payload: res.EventPayload})
		}
		return res.Task, evs, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var removed []model.Attachment
	out, ok := s.mutateState(w, r, "tasks", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.DeleteTask(db, uid, id)
		if err != nil {
			return nil, nil, err
		}
		removed = res.RemovedAttachments
		return res, []storeEvent{{typ: "task.deleted", entityID: id, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	s.removeAttachmentFiles(removed)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTaskDuplicate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "tasks", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.DuplicateTask(db, uid, id)
		if err != nil {
			return nil, nil, err
		}
		return res.Task, []storeEvent{{typ: "task.duplicated", entityID: res.Task.ID, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleTaskReorder(w http.ResponseWriter, r *http.Request) {
	var body reorderBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "tasks", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.ReorderTask(db, uid, id, body.InsertAt)
		if err != nil {
			return nil, nil, err
		}
		return res.Task, []storeEvent{{typ: "task.reordered", entityID: id, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTaskArchive(w http.ResponseWriter, r *http.Request) {
	var body archiveBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "tasks", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.SetTaskArchived(db, uid, id, body.Archived)
		if err != nil {
			return nil, nil, err
		}
		var evs []storeEvent
		if res.Changed {
			evs = append(evs, storeEvent{typ: "task.archived", entityID: id, payload: res.EventPayload})
		}
		return res.Task, evs, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// completionPayload pairs the toggled task with the owner's gamification
// state after the change.
type completionPayload struct {
	Task *model.Task `json:"task"`
	User userView    `json:"user"`
}

func (s *Server) handleTaskComplete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "tasks", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.CompleteTask(db, uid, id)
		if err != nil {
			return nil, nil, err
		}
		payload := completionPayload{Task: res.Task}
		if u, found := db.FindUser(uid); found {
			payload.User = viewOfUser(*u)
		}
		var evs []storeEvent
		if res.Changed {
			evs = append(evs, storeEvent{typ: "task.completed", entityID: id, payload: res.EventPayload})
		}
		return payload, evs, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTaskUncomplete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "tasks", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.UncompleteTask(db, uid, id)
		if err != nil {
			return nil, nil, err
		}
		payload := completionPayload{Task: res.Task}
		if u, found := db.FindUser(uid); found {
			payload.User = viewOfUser(*u)
		}
		var evs []storeEvent
		if res.Changed {
			evs = append(evs, storeEvent{typ: "task.uncompleted", entityID: id, payload: res.EventPayload})
		}
		return payload, evs, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTaskWhy(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	why, err := s.coach.Why(r.Context(), db, uid, r.PathValue("id"), time.Now())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, why)
}
