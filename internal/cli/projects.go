package cli

import (
	"strings"

	"aurum-life/internal/model"
	"aurum-life/internal/mutate"
	"aurum-life/internal/perm"

	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects within areas",
	}
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsShowCmd(app))
	cmd.AddCommand(newProjectsUpdateCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	cmd.AddCommand(newProjectsDuplicateCmd(app))
	cmd.AddCommand(newProjectsReorderCmd(app))
	cmd.AddCommand(newProjectsArchiveCmd(app))
	return cmd
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var p mutate.CreateProjectParams

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project under an area",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.CreateProject(db, userID, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "project.created", res.Project.ID, res.EventPayload)
			return writeOut(cmd, app, map[string]any{"data": res.Project})
		},
	}

	cmd.Flags().StringVar(&p.AreaID, "area", "", "Parent area id")
	cmd.Flags().StringVar(&p.Name, "name", "", "Project name")
	cmd.Flags().StringVar(&p.Description, "description", "", "Description")
	cmd.Flags().StringVar(&p.Status, "status", "", "Status (not_started|in_progress|completed|on_hold)")
	cmd.Flags().StringVar(&p.Priority, "priority", "", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&p.Deadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("area")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	var areaID string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, optionally scoped to one area",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}

			if aid := strings.TrimSpace(areaID); aid != "" {
				a, ok := db.FindArea(aid)
				if !ok || !perm.CanAccessArea(db, userID, a) {
					return writeErr(cmd, mutate.NotFoundError{Kind: "area", ID: aid})
				}
				return writeOut(cmd, app, projectListPayload{Data: listProjects(db, aid, all)})
			}

			var rows []model.Project
			for _, p := range listPillars(db, userID, true) {
				for _, a := range listAreas(db, p.ID, true) {
					rows = append(rows, listProjects(db, a.ID, all)...)
				}
			}
			return writeOut(cmd, app, projectListPayload{Data: rows})
		},
	}

	cmd.Flags().StringVar(&areaID, "area", "", "Limit to one area")
	cmd.Flags().BoolVar(&all, "all", false, "Include archived projects")
	return cmd
}

func newProjectsShowCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			p, ok := db.FindProject(id)
			if !ok || !perm.CanAccessProject(db, userID, p) {
				return writeErr(cmd, mutate.NotFoundError{Kind: "project", ID: id})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"project": p,
				"tasks":   listTasks(db, p.ID, all),
			}})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived tasks")
	return cmd
}

func newProjectsUpdateCmd(app *App) *cobra.Command {
	var areaID, name, description, status, priority, deadline string

	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update project fields (including moving to another area)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}

			var p mutate.UpdateProjectParams
			if cmd.Flags().Changed("area") {
				p.AreaID = &areaID
			}
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("description") {
				p.Description = &description
			}
			if cmd.Flags().Changed("status") {
				p.Status = &status
			}
			if cmd.Flags().Changed("priority") {
				p.Priority = &priority
			}
			if cmd.Flags().Changed("deadline") {
				// Empty string clears the deadline.
				p.Deadline = &deadline
			}

			id := args[0]
			res, err := mutate.UpdateProject(db, userID, id, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				_ = s.AppendEvent(userID, "project.updated", id, res.EventPayload)
			}
			return writeOut(cmd, app, map[string]any{"data": res.Project})
		},
	}

	cmd.Flags().StringVar(&areaID, "area", "", "Move to this area")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&status, "status", "", "Status (not_started|in_progress|completed|on_hold)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (YYYY-MM-DD, empty clears)")
	return cmd
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			res, err := mutate.DeleteProject(db, userID, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "project.deleted", id, res.EventPayload)
			removeAttachmentFiles(app, s, res.RemovedAttachments)
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	return cmd
}

func newProjectsDuplicateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duplicate <project-id>",
		Short: "Deep-copy a project with its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.DuplicateProject(db, userID, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "project.duplicated", res.Project.ID, res.EventPayload)
			return writeOut(cmd, app, map[string]any{"data": res.Project})
		},
	}
	return cmd
}

func newProjectsReorderCmd(app *App) *cobra.Command {
	var insertAt int

	cmd := &cobra.Command{
		Use:   "reorder <project-id>",
		Short: "Move a project to a new position among its siblings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			res, err := mutate.ReorderProject(db, userID, id, insertAt)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "project.reordered", id, res.EventPayload)
			return writeOut(cmd, app, map[string]any{"data": res.Project})
		},
	}

	cmd.Flags().IntVar(&insertAt, "at", 0, "Target position (0-based)")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newProjectsArchiveCmd(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "archive <project-id>",
		Short: "Archive a project (or restore it with --undo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			res, err := mutate.SetProjectArchived(db, userID, id, !undo)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				_ = s.AppendEvent(userID, "project.archived", id, res.EventPayload)
			}
			return writeOut(cmd, app, map[string]any{"data": res.Project})
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Restore instead of archive")
	return cmd
}
