// Package nav models the drill-down position inside the pillar hierarchy.
// A Context stores ids only; names and ancestry are resolved against the
// snapshot at query time, so a context can never disagree with the data for
// long: Normalize repairs it from the entity back-refs.
package nav

import (
	"fmt"
	"strings"

	"aurum-life/internal/perm"
	"aurum-life/internal/store"
)

type Level string

const (
	LevelDashboard Level = "dashboard"
	LevelPillar    Level = "pillar"
	LevelArea      Level = "area"
	LevelProject   Level = "project"
)

// Context is the current drill-down position. Ancestor ids are filled in on
// navigation so moving up never needs a lookup, but Up tolerates contexts
// that carry only the deepest id.
type Context struct {
	Level     Level  `json:"level"`
	PillarID  string `json:"pillarId,omitempty"`
	AreaID    string `json:"areaId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
}

// Dashboard is the root context.
func Dashboard() Context {
	return Context{Level: LevelDashboard}
}

func (c Context) IsDashboard() bool {
	return c.Level == "" || c.Level == LevelDashboard
}

// StaleContextError reports a navigation target that no longer exists or is
// not visible to the user.
type StaleContextError struct {
	Kind string
	ID   string
}

func (e StaleContextError) Error() string {
	return fmt.Sprintf("%s no longer exists: %s", e.Kind, e.ID)
}

// ToPillar enters a pillar.
func ToPillar(db *store.DB, userID, pillarID string) (Context, error) {
	pillarID = strings.TrimSpace(pillarID)
	p, ok := db.FindPillar(pillarID)
	if !ok || !perm.CanAccessPillar(db, userID, p) {
		return Dashboard(), StaleContextError{Kind: "pillar", ID: pillarID}
	}
	return Context{Level: LevelPillar, PillarID: p.ID}, nil
}

// ToArea enters an area and records its pillar.
func ToArea(db *store.DB, userID, areaID string) (Context, error) {
	areaID = strings.TrimSpace(areaID)
	a, ok := db.FindArea(areaID)
	if !ok || !perm.CanAccessArea(db, userID, a) {
		return Dashboard(), StaleContextError{Kind: "area", ID: areaID}
	}
	return Context{Level: LevelArea, PillarID: a.PillarID, AreaID: a.ID}, nil
}

// ToProject enters a project and records its whole ancestry, so a context
// built from just a project id still knows where up leads.
func ToProject(db *store.DB, userID, projectID string) (Context, error) {
	projectID = strings.TrimSpace(projectID)
	p, ok := db.FindProject(projectID)
	if !ok || !perm.CanAccessProject(db, userID, p) {
		return Dashboard(), StaleContextError{Kind: "project", ID: projectID}
	}
	c := Context{Level: LevelProject, AreaID: p.AreaID, ProjectID: p.ID}
	if a, ok := db.FindArea(p.AreaID); ok {
		c.PillarID = a.PillarID
	}
	return c, nil
}

// Up climbs one rung: project to area, area to pillar, pillar to dashboard.
// Missing ancestor ids are recovered from the entity back-refs.
func Up(db *store.DB, c Context) Context {
	switch c.Level {
	case LevelProject:
		areaID := c.AreaID
		if areaID == "" && db != nil {
			if p, ok := db.FindProject(c.ProjectID); ok {
				areaID = p.AreaID
			}
		}
		if areaID == "" {
			return Dashboard()
		}
		pillarID := c.PillarID
		if pillarID == "" && db != nil {
			if a, ok := db.FindArea(areaID); ok {
				pillarID = a.PillarID
			}
		}
		return Context{Level: LevelArea, PillarID: pillarID, AreaID: areaID}
	case LevelArea:
		if c.PillarID == "" {
			return Dashboard()
		}
		return Context{Level: LevelPillar, PillarID: c.PillarID}
	default:
		return Dashboard()
	}
}

// Normalize repairs a context against the snapshot: ancestor ids are
// re-derived from back-refs and anything stale or foreign drops the context
// to the nearest surviving ancestor. The bool reports whether the context
// was altered.
func Normalize(db *store.DB, userID string, c Context) (Context, bool) {
	orig := c
	if c.Level == "" {
		c.Level = deepestLevel(c)
	}

	if c.Level == LevelProject {
		p, ok := db.FindProject(c.ProjectID)
		if ok && perm.CanAccessProject(db, userID, p) {
			c.AreaID = p.AreaID
		} else {
			c.ProjectID = ""
			c.Level = LevelArea
		}
	}
	if c.Level == LevelArea || c.Level == LevelProject {
		a, ok := db.FindArea(c.AreaID)
		if ok && perm.CanAccessArea(db, userID, a) {
			c.PillarID = a.PillarID
		} else if c.Level == LevelArea {
			c.AreaID = ""
			c.Level = LevelPillar
		} else {
			// A project whose area vanished is itself unreachable.
			c = Dashboard()
		}
	}
	if c.Level == LevelPillar {
		p, ok := db.FindPillar(c.PillarID)
		if !ok || !perm.CanAccessPillar(db, userID, p) {
			c = Dashboard()
		}
	}
	if c.IsDashboard() {
		c = Dashboard()
	}
	return c, c != orig
}

func deepestLevel(c Context) Level {
	switch {
	case c.ProjectID != "":
		return LevelProject
	case c.AreaID != "":
		return LevelArea
	case c.PillarID != "":
		return LevelPillar
	default:
		return LevelDashboard
	}
}

// Crumb is one breadcrumb entry.
type Crumb struct {
	Level Level  `json:"level"`
	ID    string `json:"id"`
	Name  string `json:"name"`
}

// Breadcrumbs resolves the context's path for display, outermost first.
// Ids that no longer resolve are skipped.
func Breadcrumbs(db *store.DB, c Context) []Crumb {
	var out []Crumb
	if c.PillarID != "" {
		if p, ok := db.FindPillar(c.PillarID); ok {
			out = append(out, Crumb{Level: LevelPillar, ID: p.ID, Name: p.Name})
		}
	}
	if c.AreaID != "" && (c.Level == LevelArea || c.Level == LevelProject) {
		if a, ok := db.FindArea(c.AreaID); ok {
			out = append(out, Crumb{Level: LevelArea, ID: a.ID, Name: a.Name})
		}
	}
	if c.ProjectID != "" && c.Level == LevelProject {
		if p, ok := db.FindProject(c.ProjectID); ok {
			out = append(out, Crumb{Level: LevelProject, ID: p.ID, Name: p.Name})
		}
	}
	return out
}

// FromUIState restores a context persisted in the user settings.
func FromUIState(u store.UIState) Context {
	c := Context{
		PillarID:  strings.TrimSpace(u.PillarID),
		AreaID:    strings.TrimSpace(u.AreaID),
		ProjectID: strings.TrimSpace(u.ProjectID),
	}
	c.Level = deepestLevel(c)
	return c
}

// ToUIState persists the context alongside the active section.
func ToUIState(c Context, section string) store.UIState {
	return store.UIState{
		PillarID:  c.PillarID,
		AreaID:    c.AreaID,
		ProjectID: c.ProjectID,
		Section:   section,
	}
}
