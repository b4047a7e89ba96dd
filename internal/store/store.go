package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"aurum-life/internal/model"
)

const dbFileName = "state.db"

// DB is the in-memory snapshot of all persisted entities. Entities live
// in flat per-type slices; hierarchy lookups go through derived indexes
// keyed by parent id, rebuilt lazily after mutations.
type DB struct {
	Version       int    `json:"version"`
	CurrentUserID string `json:"currentUserId,omitempty"`

	Users       []model.User       `json:"users"`
	Pillars     []model.Pillar     `json:"pillars"`
	Areas       []model.Area       `json:"areas"`
	Projects    []model.Project    `json:"projects"`
	Tasks       []model.Task       `json:"tasks"`
	Attachments []model.Attachment `json:"attachments"`

	// Derived indexes (not persisted). Child indexes hold ids ordered by rank.
	idxBuilt               bool                `json:"-"`
	idxPillarsByUser       map[string][]string `json:"-"`
	idxAreasByPillar       map[string][]string `json:"-"`
	idxProjectsByArea      map[string][]string `json:"-"`
	idxTasksByProject      map[string][]string `json:"-"`
	idxAttachmentsByParent map[string][]string `json:"-"`
}

// Store locates the on-disk state for one data dir.
type Store struct {
	Dir string
}

// CurrentVersion is the snapshot schema version written by Save.
const CurrentVersion = 1

func NewDB() *DB {
	return &DB{
		Version:     CurrentVersion,
		Users:       []model.User{},
		Pillars:     []model.Pillar{},
		Areas:       []model.Area{},
		Projects:    []model.Project{},
		Tasks:       []model.Task{},
		Attachments: []model.Attachment{},
	}
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) dbPath() string {
	return filepath.Join(s.Dir, dbFileName)
}

func (s Store) Load() (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return s.loadSQLite(context.Background())
}

func (s Store) Save(db *DB) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.saveSQLite(context.Background(), db)
}

// AppendEvent records a mutation event in the events table.
func (s Store) AppendEvent(userID, typ, entityID string, payload any) error {
	return s.appendEventSQLite(context.Background(), userID, typ, entityID, payload)
}

func (db *DB) FindUser(id string) (*model.User, bool) {
	for i := range db.Users {
		if db.Users[i].ID == id {
			return &db.Users[i], true
		}
	}
	return nil, false
}

func (db *DB) FindUserByEmail(email string) (*model.User, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range db.Users {
		if db.Users[i].Email == email {
			return &db.Users[i], true
		}
	}
	return nil, false
}

func (db *DB) FindPillar(id string) (*model.Pillar, bool) {
	for i := range db.Pillars {
		if db.Pillars[i].ID == id {
			return &db.Pillars[i], true
		}
	}
	return nil, false
}

func (db *DB) FindArea(id string) (*model.Area, bool) {
	for i := range db.Areas {
		if db.Areas[i].ID == id {
			return &db.Areas[i], true
		}
	}
	return nil, false
}

func (db *DB) FindProject(id string) (*model.Project, bool) {
	for i := range db.Projects {
		if db.Projects[i].ID == id {
			return &db.Projects[i], true
		}
	}
	return nil, false
}

func (db *DB) FindTask(id string) (*model.Task, bool) {
	for i := range db.Tasks {
		if db.Tasks[i].ID == id {
			return &db.Tasks[i], true
		}
	}
	return nil, false
}

func (db *DB) FindAttachment(id string) (*model.Attachment, bool) {
	for i := range db.Attachments {
		if db.Attachments[i].ID == id {
			return &db.Attachments[i], true
		}
	}
	return nil, false
}

// MarkDirty invalidates derived indexes after a structural mutation.
func (db *DB) MarkDirty() {
	if db == nil {
		return
	}
	db.idxBuilt = false
}

func (db *DB) ensureIndexes() {
	if db == nil || db.idxBuilt {
		return
	}
	db.idxPillarsByUser = map[string][]string{}
	db.idxAreasByPillar = map[string][]string{}
	db.idxProjectsByArea = map[string][]string{}
	db.idxTasksByProject = map[string][]string{}
	db.idxAttachmentsByParent = map[string][]string{}

	rankOf := map[string]string{}

	for _, p := range db.Pillars {
		uid := strings.TrimSpace(p.UserID)
		if uid == "" {
			continue
		}
		db.idxPillarsByUser[uid] = append(db.idxPillarsByUser[uid], p.ID)
		rankOf[p.ID] = p.Rank
	}
	for _, a := range db.Areas {
		pid := strings.TrimSpace(a.PillarID)
		if pid == "" {
			continue
		}
		db.idxAreasByPillar[pid] = append(db.idxAreasByPillar[pid], a.ID)
		rankOf[a.ID] = a.Rank
	}
	for _, p := range db.Projects {
		aid := strings.TrimSpace(p.AreaID)
		if aid == "" {
			continue
		}
		db.idxProjectsByArea[aid] = append(db.idxProjectsByArea[aid], p.ID)
		rankOf[p.ID] = p.Rank
	}
	for _, t := range db.Tasks {
		pid := strings.TrimSpace(t.ProjectID)
		if pid == "" {
			continue
		}
		db.idxTasksByProject[pid] = append(db.idxTasksByProject[pid], t.ID)
		rankOf[t.ID] = t.Rank
	}
	for _, at := range db.Attachments {
		pid := strings.TrimSpace(at.ParentID)
		if pid == "" {
			continue
		}
		db.idxAttachmentsByParent[pid] = append(db.idxAttachmentsByParent[pid], at.ID)
	}

	byRank := func(ids []string) {
		sort.SliceStable(ids, func(i, j int) bool { return rankOf[ids[i]] < rankOf[ids[j]] })
	}
	for _, ids := range db.idxPillarsByUser {
		byRank(ids)
	}
	for _, ids := range db.idxAreasByPillar {
		byRank(ids)
	}
	for _, ids := range db.idxProjectsByArea {
		byRank(ids)
	}
	for _, ids := range db.idxTasksByProject {
		byRank(ids)
	}

	db.idxBuilt = true
}

// PillarsForUser returns pillar ids owned by userID, ordered by rank.
func (db *DB) PillarsForUser(userID string) []string {
	if db == nil {
		return nil
	}
	db.ensureIndexes()
	return db.idxPillarsByUser[strings.TrimSpace(userID)]
}

func (db *DB) AreasOf(pillarID string) []string {
	if db == nil {
		return nil
	}
	db.ensureIndexes()
	return db.idxAreasByPillar[strings.TrimSpace(pillarID)]
}

func (db *DB) ProjectsOf(areaID string) []string {
	if db == nil {
		return nil
	}
	db.ensureIndexes()
	return db.idxProjectsByArea[strings.TrimSpace(areaID)]
}

func (db *DB) TasksOf(projectID string) []string {
	if db == nil {
		return nil
	}
	db.ensureIndexes()
	return db.idxTasksByProject[strings.TrimSpace(projectID)]
}

func (db *DB) AttachmentsOf(parentID string) []string {
	if db == nil {
		return nil
	}
	db.ensureIndexes()
	return db.idxAttachmentsByParent[strings.TrimSpace(parentID)]
}

// LastSiblingRank returns the highest rank among the given child ids, or
// "" when the group is empty. Used to append new entities at the end.
func (db *DB) LastSiblingRank(childIDs []string) string {
	last := ""
	for _, id := range childIDs {
		if r := db.rankOfEntity(id); r > last {
			last = r
		}
	}
	return last
}

// SiblingRanks collects the normalized ranks of a child id set, for use as
// the existing set with RankBetweenUnique.
func (db *DB) SiblingRanks(childIDs []string) map[string]bool {
	out := map[string]bool{}
	for _, id := range childIDs {
		if r := strings.ToLower(strings.TrimSpace(db.rankOfEntity(id))); r != "" {
			out[r] = true
		}
	}
	return out
}

// NextSiblingRank returns a fresh rank that sorts after every rank in
// childIDs and collides with none of them.
func (db *DB) NextSiblingRank(childIDs []string) (string, error) {
	return RankBetweenUnique(db.SiblingRanks(childIDs), db.LastSiblingRank(childIDs), "")
}

// RankOf returns the rank of the pillar, area, project or task with the
// given id, or "" when no ranked entity has it.
func (db *DB) RankOf(id string) string {
	return db.rankOfEntity(id)
}

// RankedSiblings resolves a child id set into RankedRefs for the reorder
// planner, in the same order as the index slice.
func (db *DB) RankedSiblings(childIDs []string) []RankedRef {
	refs := make([]RankedRef, 0, len(childIDs))
	for _, id := range childIDs {
		refs = append(refs, RankedRef{ID: id, Rank: db.rankOfEntity(id), CreatedAt: db.createdAtOfEntity(id)})
	}
	return refs
}

func (db *DB) rankOfEntity(id string) string {
	if p, ok := db.FindPillar(id); ok {
		return p.Rank
	}
	if a, ok := db.FindArea(id); ok {
		return a.Rank
	}
	if pr, ok := db.FindProject(id); ok {
		return pr.Rank
	}
	if t, ok := db.FindTask(id); ok {
		return t.Rank
	}
	return ""
}

func (db *DB) createdAtOfEntity(id string) time.Time {
	if p, ok := db.FindPillar(id); ok {
		return p.CreatedAt
	}
	if a, ok := db.FindArea(id); ok {
		return a.CreatedAt
	}
	if pr, ok := db.FindProject(id); ok {
		return pr.CreatedAt
	}
	if t, ok := db.FindTask(id); ok {
		return t.CreatedAt
	}
	return time.Time{}
}
