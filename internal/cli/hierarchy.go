package cli

import (
	"aurum-life/internal/model"
	"aurum-life/internal/store"

	"go.uber.org/zap"
)

// Rank-ordered child listings, optionally including archived entities.
// Same shape the web handlers serve.

func listPillars(db *store.DB, userID string, withArchived bool) []model.Pillar {
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

func listAreas(db *store.DB, pillarID string, withArchived bool) []model.Area {
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

func listProjects(db *store.DB, areaID string, withArchived bool) []model.Project {
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

func listTasks(db *store.DB, projectID string, withArchived bool) []model.Task {
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

// removeAttachmentFiles deletes the files a cascade delete orphaned.
// Failures are logged, not fatal: the snapshot no longer references them.
func removeAttachmentFiles(app *App, s store.Store, removed []model.Attachment) {
	for _, a := range removed {
		if err := s.RemoveAttachmentFile(a); err != nil {
			app.logger().Warn("remove attachment file", zap.String("id", a.ID), zap.Error(err))
		}
	}
}
