package mutate

import (
	"errors"
	"strings"

	"aurum-life/internal/model"
	"aurum-life/internal/perm"
	"aurum-life/internal/store"
)

// Deletes cascade top-down as an explicit fold over the child indexes:
// pillar -> areas -> projects -> tasks -> attachments. Each level marks its
// children before the rows are removed, so the result reports exactly what
// went away and no orphan can survive.

type DeleteResult struct {
	Pillars     int `json:"pillars"`
	Areas       int `json:"areas"`
	Projects    int `json:"projects"`
	Tasks       int `json:"tasks"`
	Attachments int `json:"attachments"`

	// RemovedAttachments lists the removed records so the caller can delete
	// the stored files after saving the snapshot.
	RemovedAttachments []model.Attachment `json:"-"`

	EventPayload map[string]any `json:"-"`
}

type deletionSet struct {
	pillars     map[string]bool
	areas       map[string]bool
	projects    map[string]bool
	tasks       map[string]bool
	attachments map[string]bool
}

func newDeletionSet() deletionSet {
	return deletionSet{
		pillars:     map[string]bool{},
		areas:       map[string]bool{},
		projects:    map[string]bool{},
		tasks:       map[string]bool{},
		attachments: map[string]bool{},
	}
}

func (d deletionSet) markTask(db *store.DB, taskID string) {
	d.tasks[taskID] = true
	for _, attID := range db.AttachmentsOf(taskID) {
		d.attachments[attID] = true
	}
}

func (d deletionSet) markProject(db *store.DB, projectID string) {
	d.projects[projectID] = true
	for _, taskID := range db.TasksOf(projectID) {
		d.markTask(db, taskID)
	}
	for _, attID := range db.AttachmentsOf(projectID) {
		d.attachments[attID] = true
	}
}

func (d deletionSet) markArea(db *store.DB, areaID string) {
	d.areas[areaID] = true
	for _, projectID := range db.ProjectsOf(areaID) {
		d.markProject(db, projectID)
	}
}

func (d deletionSet) markPillar(db *store.DB, pillarID string) {
	d.pillars[pillarID] = true
	for _, areaID := range db.AreasOf(pillarID) {
		d.markArea(db, areaID)
	}
}

// apply removes every marked row and reports counts. Attachment records are
// collected for file cleanup.
func (d deletionSet) apply(db *store.DB) DeleteResult {
	res := DeleteResult{}

	if len(d.pillars) > 0 {
		kept := db.Pillars[:0]
		for _, p := range db.Pillars {
			if d.pillars[p.ID] {
				res.Pillars++
				continue
			}
			kept = append(kept, p)
		}
		db.Pillars = kept
	}
	if len(d.areas) > 0 {
		kept := db.Areas[:0]
		for _, a := range db.Areas {
			if d.areas[a.ID] {
				res.Areas++
				continue
			}
			kept = append(kept, a)
		}
		db.Areas = kept
	}
	if len(d.projects) > 0 {
		kept := db.Projects[:0]
		for _, p := range db.Projects {
			if d.projects[p.ID] {
				res.Projects++
				continue
			}
			kept = append(kept, p)
		}
		db.Projects = kept
	}
	if len(d.tasks) > 0 {
		kept := db.Tasks[:0]
		for _, t := range db.Tasks {
			if d.tasks[t.ID] {
				res.Tasks++
				continue
			}
			kept = append(kept, t)
		}
		db.Tasks = kept
	}
	if len(d.attachments) > 0 {
		kept := db.Attachments[:0]
		for _, a := range db.Attachments {
			if d.attachments[a.ID] {
				res.Attachments++
				res.RemovedAttachments = append(res.RemovedAttachments, a)
				continue
			}
			kept = append(kept, a)
		}
		db.Attachments = kept
	}

	db.MarkDirty()
	return res
}

func DeletePillar(db *store.DB, userID, pillarID string) (DeleteResult, error) {
	userID = strings.TrimSpace(userID)
	pillarID = strings.TrimSpace(pillarID)
	if db == nil || userID == "" {
		return DeleteResult{}, errors.New("missing db/user")
	}
	p, ok := db.FindPillar(pillarID)
	if !ok {
		return DeleteResult{}, NotFoundError{Kind: "pillar", ID: pillarID}
	}
	if !perm.CanAccessPillar(db, userID, p) {
		return DeleteResult{}, NotOwnerError{UserID: userID, OwnerUserID: p.UserID, Kind: "pillar", ID: pillarID}
	}

	d := newDeletionSet()
	d.markPillar(db, pillarID)
	res := d.apply(db)
	res.EventPayload = map[string]any{
		"areas":       res.Areas,
		"projects":    res.Projects,
		"tasks":       res.Tasks,
		"attachments": res.Attachments,
	}
	return res, nil
}

func DeleteArea(db *store.DB, userID, areaID string) (DeleteResult, error) {
	userID = strings.TrimSpace(userID)
	areaID = strings.TrimSpace(areaID)
	if db == nil || userID == "" {
		return DeleteResult{}, errors.New("missing db/user")
	}
	a, ok := db.FindArea(areaID)
	if !ok {
		return DeleteResult{}, NotFoundError{Kind: "area", ID: areaID}
	}
	if !perm.CanAccessArea(db, userID, a) {
		return DeleteResult{}, NotOwnerError{UserID: userID, OwnerUserID: a.UserID, Kind: "area", ID: areaID}
	}

	d := newDeletionSet()
	d.markArea(db, areaID)
	res := d.apply(db)
	res.EventPayload = map[string]any{
		"projects":    res.Projects,
		"tasks":       res.Tasks,
		"attachments": res.Attachments,
	}
	return res, nil
}

func DeleteProject(db *store.DB, userID, projectID string) (DeleteResult, error) {
	userID = strings.TrimSpace(userID)
	projectID = strings.TrimSpace(projectID)
	if db == nil || userID == "" {
		return DeleteResult{}, errors.New("missing db/user")
	}
	p, ok := db.FindProject(projectID)
	if !ok {
		return DeleteResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if !perm.CanAccessProject(db, userID, p) {
		return DeleteResult{}, NotOwnerError{UserID: userID, OwnerUserID: p.UserID, Kind: "project", ID: projectID}
	}

	d := newDeletionSet()
	d.markProject(db, projectID)
	res := d.apply(db)
	res.EventPayload = map[string]any{
		"tasks":       res.Tasks,
		"attachments": res.Attachments,
	}
	return res, nil
}

func DeleteTask(db *store.DB, userID, taskID string) (DeleteResult, error) {
	userID = strings.TrimSpace(userID)
	taskID = strings.TrimSpace(taskID)
	if db == nil || userID == "" {
		return DeleteResult{}, errors.New("missing db/user")
	}
	t, ok := db.FindTask(taskID)
	if !ok {
		return DeleteResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if !perm.CanAccessTask(db, userID, t) {
		return DeleteResult{}, NotOwnerError{UserID: userID, OwnerUserID: t.UserID, Kind: "task", ID: taskID}
	}

	d := newDeletionSet()
	d.markTask(db, taskID)
	res := d.apply(db)
	res.EventPayload = map[string]any{
		"attachments": res.Attachments,
	}
	return res, nil
}

// DeleteAttachment removes a single attachment record. The stored file is
// returned in RemovedAttachments for cleanup.
func DeleteAttachment(db *store.DB, userID, attachmentID string) (DeleteResult, error) {
	userID = strings.TrimSpace(userID)
	attachmentID = strings.TrimSpace(attachmentID)
	if db == nil || userID == "" {
		return DeleteResult{}, errors.New("missing db/user")
	}
	a, ok := db.FindAttachment(attachmentID)
	if !ok {
		return DeleteResult{}, NotFoundError{Kind: "attachment", ID: attachmentID}
	}
	if !perm.CanAccessAttachment(db, userID, a) {
		return DeleteResult{}, NotOwnerError{UserID: userID, OwnerUserID: a.UserID, Kind: "attachment", ID: attachmentID}
	}

	d := newDeletionSet()
	d.attachments[attachmentID] = true
	res := d.apply(db)
	res.EventPayload = map[string]any{}
	return res, nil
}
