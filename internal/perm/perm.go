package perm

import (
	"strings"

	"aurum-life/internal/model"
	"aurum-life/internal/store"
)

// Entities are strictly per-user: there is no sharing, so access means
// ownership. Centralizing the checks keeps the rule in one place should
// sharing ever arrive.

func sameUser(userID, ownerID string) bool {
	userID = strings.TrimSpace(userID)
	return userID != "" && userID == strings.TrimSpace(ownerID)
}

func CanAccessPillar(db *store.DB, userID string, p *model.Pillar) bool {
	return db != nil && p != nil && sameUser(userID, p.UserID)
}

func CanAccessArea(db *store.DB, userID string, a *model.Area) bool {
	return db != nil && a != nil && sameUser(userID, a.UserID)
}

func CanAccessProject(db *store.DB, userID string, p *model.Project) bool {
	return db != nil && p != nil && sameUser(userID, p.UserID)
}

func CanAccessTask(db *store.DB, userID string, t *model.Task) bool {
	return db != nil && t != nil && sameUser(userID, t.UserID)
}

func CanAccessAttachment(db *store.DB, userID string, a *model.Attachment) bool {
	return db != nil && a != nil && sameUser(userID, a.UserID)
}
