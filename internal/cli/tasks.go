package cli

import (
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/mutate"
	"aurum-life/internal/perm"
	"aurum-life/internal/score"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks within projects",
	}
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksDuplicateCmd(app))
	cmd.AddCommand(newTasksReorderCmd(app))
	cmd.AddCommand(newTasksArchiveCmd(app))
	cmd.AddCommand(newTasksCompleteCmd(app))
	cmd.AddCommand(newTasksUncompleteCmd(app))
	return cmd
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var p mutate.CreateTaskParams

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task under a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.CreateTask(db, userID, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "task.created", res.Task.ID, res.EventPayload)
			return writeOut(cmd, app, map[string]any{"data": res.Task})
		},
	}

	cmd.Flags().StringVar(&p.ProjectID, "project", "", "Parent project id")
	cmd.Flags().StringVar(&p.Name, "name", "", "Task name")
	cmd.Flags().StringVar(&p.Description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&p.Priority, "priority", "", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&p.Due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&p.DueTime, "due-time", "", "Due time (HH:MM, needs --due)")
	cmd.Flags().IntVar(&p.EstimatedMinutes, "estimate", 0, "Estimated minutes")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var projectID string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally scoped to one project",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}

			if pid := strings.TrimSpace(projectID); pid != "" {
				p, ok := db.FindProject(pid)
				if !ok || !perm.CanAccessProject(db, userID, p) {
					return writeErr(cmd, mutate.NotFoundError{Kind: "project", ID: pid})
				}
				return writeOut(cmd, app, taskListPayload{Data: listTasks(db, pid, all)})
			}

			var rows []model.Task
			for _, pl := range listPillars(db, userID, true) {
				for _, a := range listAreas(db, pl.ID, true) {
					for _, pr := range listProjects(db, a.ID, true) {
						rows = append(rows, listTasks(db, pr.ID, all)...)
					}
				}
			}
			return writeOut(cmd, app, taskListPayload{Data: rows})
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Limit to one project")
	cmd.Flags().BoolVar(&all, "all", false, "Include archived tasks")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with its score and attachments",
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
			t, ok := db.FindTask(id)
			if !ok || !perm.CanAccessTask(db, userID, t) {
				return writeErr(cmd, mutate.NotFoundError{Kind: "task", ID: id})
			}
			attachments := []model.Attachment{}
			for _, aid := range db.AttachmentsOf(t.ID) {
				if a, ok := db.FindAttachment(aid); ok {
					attachments = append(attachments, *a)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"task":        t,
				"score":       score.TaskScore(*t, time.Now()),
				"attachments": attachments,
			}})
		},
	}
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var (
		projectID, name, description, status, priority, due, dueTime string
		estimate                                                     int
	)

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update task fields (including moving to another project)",
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

			var p mutate.UpdateTaskParams
			if cmd.Flags().Changed("project") {
				p.ProjectID = &projectID
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
			if cmd.Flags().Changed("due") {
				// Empty string clears the due date (and its time).
				p.Due = &due
			}
			if cmd.Flags().Changed("due-time") {
				p.DueTime = &dueTime
			}
			if cmd.Flags().Changed("estimate") {
				p.EstimatedMinutes = &estimate
			}

			id := args[0]
			res, err := mutate.UpdateTask(db, userID, id, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				_ = s.AppendEvent(userID, "task.updated", id, res.EventPayload)
			}
			return writeOut(cmd, app, map[string]any{"data": res.Task})
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Move to this project")
	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().StringVar(&description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&status, "status", "", "Status (todo|in_progress|done)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD, empty clears)")
	cmd.Flags().StringVar(&dueTime, "due-time", "", "Due time (HH:MM, empty clears)")
	cmd.Flags().IntVar(&estimate, "estimate", 0, "Estimated minutes")
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task and its attachments",
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
			res, err := mutate.DeleteTask(db, userID, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "task.deleted", id, res.EventPayload)
			removeAttachmentFiles(app, s, res.RemovedAttachments)
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	return cmd
}

func newTasksDuplicateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duplicate <task-id>",
		Short: "Copy a task (fresh status, no completion)",
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
			res, err := mutate.DuplicateTask(db, userID, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "task.duplicated", res.Task.ID, res.EventPayload)
			return writeOut(cmd, app, map[string]any{"data": res.Task})
		},
	}
	return cmd
}

func newTasksReorderCmd(app *App) *cobra.Command {
	var insertAt int

	cmd := &cobra.Command{
		Use:   "reorder <task-id>",
		Short: "Move a task to a new position among its siblings",
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
			res, err := mutate.ReorderTask(db, userID, id, insertAt)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "task.reordered", id, res.EventPayload)
			return writeOut(cmd, app, map[string]any{"data": res.Task})
		},
	}

	cmd.Flags().IntVar(&insertAt, "at", 0, "Target position (0-based)")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newTasksArchiveCmd(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "archive <task-id>",
		Short: "Archive a task (or restore it with --undo)",
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
			res, err := mutate.SetTaskArchived(db, userID, id, !undo)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				_ = s.AppendEvent(userID, "task.archived", id, res.EventPayload)
			}
			return writeOut(cmd, app, map[string]any{"data": res.Task})
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Restore instead of archive")
	return cmd
}

func newTasksCompleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task done and collect its points",
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
			res, err := mutate.CompleteTask(db, userID, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				_ = s.AppendEvent(userID, "task.completed", id, res.EventPayload)
			}
			out := map[string]any{"task": res.Task}
			if u, ok := db.FindUser(userID); ok {
				out["user"] = map[string]any{
					"level":         u.Level,
					"totalPoints":   u.TotalPoints,
					"currentStreak": u.CurrentStreak,
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	return cmd
}

func newTasksUncompleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uncomplete <task-id>",
		Short: "Reopen a completed task (earned points stay)",
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
			res, err := mutate.UncompleteTask(db, userID, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				_ = s.AppendEvent(userID, "task.uncompleted", id, res.EventPayload)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"task": res.Task}})
		},
	}
	return cmd
}
