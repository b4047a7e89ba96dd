package store

import "github.com/google/uuid"

// NewID returns a fresh random UUID string. Entity ids are generated at
// creation time and never reused; uniqueness comes from the 122 random bits.
func NewID() string {
	return uuid.NewString()
}

// IDExists reports whether id is already taken by any persisted entity.
// Doctor uses it for duplicate detection; creation paths rely on UUID
// randomness instead of checking.
func IDExists(db *DB, id string) bool {
	if db == nil || id == "" {
		return false
	}
	if _, ok := db.FindUser(id); ok {
		return true
	}
	if _, ok := db.FindPillar(id); ok {
		return true
	}
	if _, ok := db.FindArea(id); ok {
		return true
	}
	if _, ok := db.FindProject(id); ok {
		return true
	}
	if _, ok := db.FindTask(id); ok {
		return true
	}
	if _, ok := db.FindAttachment(id); ok {
		return true
	}
	return false
}
