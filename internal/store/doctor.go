package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"aurum-life/internal/model"
)

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`

	EntityKind string `json:"entityKind,omitempty"`
	EntityID   string `json:"entityId,omitempty"`
}

type DoctorReport struct {
	Issues []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

var ErrDoctorIssuesFound = errors.New("doctor: issues found")

// Doctor checks referential integrity of a loaded snapshot. Every child row
// carries a parent id; an id that resolves to nothing means a mutation
// bypassed the cascade rules.
func Doctor(db *DB) DoctorReport {
	if db == nil {
		return DoctorReport{Issues: []DoctorIssue{{
			Level:   DoctorIssueLevelError,
			Code:    "nil_db",
			Message: "no snapshot loaded",
		}}}
	}

	var issues []DoctorIssue

	users := map[string]bool{}
	pillars := map[string]bool{}
	areas := map[string]bool{}
	projects := map[string]bool{}
	tasks := map[string]bool{}

	// Duplicate ids across all entity kinds. Ids are uuids, so a duplicate
	// means a botched import or a hand-edited snapshot.
	seen := map[string]string{}
	dup := func(kind, id string) {
		id = strings.TrimSpace(id)
		if id == "" {
			issues = append(issues, DoctorIssue{
				Level:      DoctorIssueLevelError,
				Code:       "missing_id",
				Message:    fmt.Sprintf("%s row with empty id", kind),
				EntityKind: kind,
			})
			return
		}
		if prev, ok := seen[id]; ok {
			issues = append(issues, DoctorIssue{
				Level:      DoctorIssueLevelError,
				Code:       "duplicate_id",
				Message:    fmt.Sprintf("id %s used by both %s and %s", id, prev, kind),
				EntityKind: kind,
				EntityID:   id,
			})
			return
		}
		seen[id] = kind
	}

	for _, u := range db.Users {
		dup("user", u.ID)
		users[strings.TrimSpace(u.ID)] = true
	}
	for _, p := range db.Pillars {
		dup("pillar", p.ID)
		pillars[strings.TrimSpace(p.ID)] = true
	}
	for _, a := range db.Areas {
		dup("area", a.ID)
		areas[strings.TrimSpace(a.ID)] = true
	}
	for _, p := range db.Projects {
		dup("project", p.ID)
		projects[strings.TrimSpace(p.ID)] = true
	}
	for _, t := range db.Tasks {
		dup("task", t.ID)
		tasks[strings.TrimSpace(t.ID)] = true
	}
	for _, a := range db.Attachments {
		dup("attachment", a.ID)
	}

	// Ownership: every row belongs to a known user.
	checkUser := func(kind, id, userID string) {
		if !users[strings.TrimSpace(userID)] {
			issues = append(issues, DoctorIssue{
				Level:      DoctorIssueLevelError,
				Code:       "missing_user",
				Message:    fmt.Sprintf("%s %s references unknown user %q", kind, id, userID),
				EntityKind: kind,
				EntityID:   id,
			})
		}
	}
	for _, p := range db.Pillars {
		checkUser("pillar", p.ID, p.UserID)
	}
	for _, a := range db.Areas {
		checkUser("area", a.ID, a.UserID)
	}
	for _, p := range db.Projects {
		checkUser("project", p.ID, p.UserID)
	}
	for _, t := range db.Tasks {
		checkUser("task", t.ID, t.UserID)
	}
	for _, a := range db.Attachments {
		checkUser("attachment", a.ID, a.UserID)
	}

	// Parent refs, one level up each.
	for _, a := range db.Areas {
		if !pillars[strings.TrimSpace(a.PillarID)] {
			issues = append(issues, DoctorIssue{
				Level:      DoctorIssueLevelError,
				Code:       "orphaned_area",
				Message:    fmt.Sprintf("area %s references unknown pillar %q", a.ID, a.PillarID),
				EntityKind: "area",
				EntityID:   a.ID,
			})
		}
	}
	for _, p := range db.Projects {
		if !areas[strings.TrimSpace(p.AreaID)] {
			issues = append(issues, DoctorIssue{
				Level:      DoctorIssueLevelError,
				Code:       "orphaned_project",
				Message:    fmt.Sprintf("project %s references unknown area %q", p.ID, p.AreaID),
				EntityKind: "project",
				EntityID:   p.ID,
			})
		}
	}
	for _, t := range db.Tasks {
		if !projects[strings.TrimSpace(t.ProjectID)] {
			issues = append(issues, DoctorIssue{
				Level:      DoctorIssueLevelError,
				Code:       "orphaned_task",
				Message:    fmt.Sprintf("task %s references unknown project %q", t.ID, t.ProjectID),
				EntityKind: "task",
				EntityID:   t.ID,
			})
		}
	}
	for _, a := range db.Attachments {
		ok := false
		switch a.ParentType {
		case model.ParentTypeTask:
			ok = tasks[strings.TrimSpace(a.ParentID)]
		case model.ParentTypeProject:
			ok = projects[strings.TrimSpace(a.ParentID)]
		case model.ParentTypeJournalEntry:
			// Journal entries are stored separately; presence cannot be
			// verified from the snapshot alone.
			ok = strings.TrimSpace(a.ParentID) != ""
		}
		if !ok {
			issues = append(issues, DoctorIssue{
				Level:      DoctorIssueLevelError,
				Code:       "orphaned_attachment",
				Message:    fmt.Sprintf("attachment %s references unknown %s %q", a.ID, a.ParentType, a.ParentID),
				EntityKind: "attachment",
				EntityID:   a.ID,
			})
		}
	}

	// Ranks: empty is tolerated (sorted last) but not a parseable-garbage
	// value, which would scramble sibling order.
	checkRank := func(kind, id, rank string) {
		rank = strings.TrimSpace(rank)
		if rank == "" {
			return
		}
		for _, r := range rank {
			if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') {
				continue
			}
			issues = append(issues, DoctorIssue{
				Level:      DoctorIssueLevelWarn,
				Code:       "bad_rank",
				Message:    fmt.Sprintf("%s %s has malformed rank %q", kind, id, rank),
				EntityKind: kind,
				EntityID:   id,
			})
			return
		}
	}
	for _, p := range db.Pillars {
		checkRank("pillar", p.ID, p.Rank)
	}
	for _, a := range db.Areas {
		checkRank("area", a.ID, a.Rank)
	}
	for _, p := range db.Projects {
		checkRank("project", p.ID, p.Rank)
	}
	for _, t := range db.Tasks {
		checkRank("task", t.ID, t.Rank)
	}

	// Completion bookkeeping.
	for _, t := range db.Tasks {
		if t.Status == model.TaskStatusDone && (t.CompletedAt == nil || t.CompletedAt.Equal(time.Time{})) {
			issues = append(issues, DoctorIssue{
				Level:      DoctorIssueLevelWarn,
				Code:       "completed_without_timestamp",
				Message:    fmt.Sprintf("task %s is done but has no completedAt", t.ID),
				EntityKind: "task",
				EntityID:   t.ID,
			})
		}
	}

	if cur := strings.TrimSpace(db.CurrentUserID); cur != "" && !users[cur] {
		issues = append(issues, DoctorIssue{
			Level:    DoctorIssueLevelError,
			Code:     "dangling_current_user",
			Message:  fmt.Sprintf("currentUserId %q does not match any user", cur),
			EntityID: cur,
		})
	}

	return DoctorReport{Issues: issuesOrEmpty(issues)}
}

func issuesOrEmpty(xs []DoctorIssue) []DoctorIssue {
	if xs == nil {
		return []DoctorIssue{}
	}
	return xs
}
