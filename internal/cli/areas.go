package cli

import (
	"strings"

	"aurum-life/internal/model"
	"aurum-life/internal/mutate"
	"aurum-life/internal/perm"

	"github.com/spf13/cobra"
)

func newAreasCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "areas",
		Short: "Manage focus areas within pillars",
	}
	cmd.AddCommand(newAreasCreateCmd(app))
	cmd.AddCommand(newAreasListCmd(app))
	cmd.AddCommand(newAreasShowCmd(app))
	cmd.AddCommand(newAreasUpdateCmd(app))
	cmd.AddCommand(newAreasDeleteCmd(app))
	cmd.AddCommand(newAreasDuplicateCmd(app))
	cmd.AddCommand(newAreasReorderCmd(app))
	cmd.AddCommand(newAreasArchiveCmd(app))
	return cmd
}

func newAreasCreateCmd(app *App) *cobra.Command {
	var p mutate.CreateAreaParams

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an area under a pillar",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.CreateArea(db, userID, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "area.created", res.Area.ID, res.EventPayload)
			return writeOut(cmd, app, map[string]any{"data": res.Area})
		},
	}

	cmd.Flags().StringVar(&p.PillarID, "pillar", "", "Parent pillar id")
	cmd.Flags().StringVar(&p.Name, "name", "", "Area name")
	cmd.Flags().StringVar(&p.Description, "description", "", "Description")
	cmd.Flags().StringVar(&p.Icon, "icon", "", "Icon (emoji or short label)")
	cmd.Flags().StringVar(&p.Color, "color", "", "Color (#RRGGBB)")
	cmd.Flags().IntVar(&p.Importance, "importance", 0, "Importance 1-5 (default 3)")
	_ = cmd.MarkFlagRequired("pillar")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAreasListCmd(app *App) *cobra.Command {
	var pillarID string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List areas, optionally scoped to one pillar",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}

			if pid := strings.TrimSpace(pillarID); pid != "" {
				p, ok := db.FindPillar(pid)
				if !ok || !perm.CanAccessPillar(db, userID, p) {
					return writeErr(cmd, mutate.NotFoundError{Kind: "pillar", ID: pid})
				}
				return writeOut(cmd, app, areaListPayload{Data: listAreas(db, pid, all)})
			}

			var rows []model.Area
			for _, p := range listPillars(db, userID, true) {
				rows = append(rows, listAreas(db, p.ID, all)...)
			}
			return writeOut(cmd, app, areaListPayload{Data: rows})
		},
	}

	cmd.Flags().StringVar(&pillarID, "pillar", "", "Limit to one pillar")
	cmd.Flags().BoolVar(&all, "all", false, "Include archived areas")
	return cmd
}

func newAreasShowCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show <area-id>",
		Short: "Show an area and its projects",
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
			a, ok := db.FindArea(id)
			if !ok || !perm.CanAccessArea(db, userID, a) {
				return writeErr(cmd, mutate.NotFoundError{Kind: "area", ID: id})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"area":     a,
				"projects": listProjects(db, a.ID, all),
			}})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived projects")
	return cmd
}

func newAreasUpdateCmd(app *App) *cobra.Command {
	var (
		pillarID, name, description, icon, color string
		importance                               int
	)

	cmd := &cobra.Command{
		Use:   "update <area-id>",
		Short: "Update area fields (including moving to another pillar)",
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

			var p mutate.UpdateAreaParams
			if cmd.Flags().Changed("pillar") {
				p.PillarID = &pillarID
			}
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("description") {
				p.Description = &description
			}
			if cmd.Flags().Changed("icon") {
				p.Icon = &icon
			}
			if cmd.Flags().Changed("color") {
				p.Color = &color
			}
			if cmd.Flags().Changed("importance") {
				p.Importance = &importance
			}

			id := args[0]
			res, err := mutate.UpdateArea(db, userID, id, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				_ = s.AppendEvent(userID, "area.updated", id, res.EventPayload)
			}
			return writeOut(cmd, app, map[string]any{"data": res.Area})
		},
	}

	cmd.Flags().StringVar(&pillarID, "pillar", "", "Move to this pillar")
	cmd.Flags().StringVar(&name, "name", "", "Area name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon (emoji or short label)")
	cmd.Flags().StringVar(&color, "color", "", "Color (#RRGGBB)")
	cmd.Flags().IntVar(&importance, "importance", 0, "Importance 1-5")
	return cmd
}

func newAreasDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <area-id>",
		Short: "Delete an area and everything under it",
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
			res, err := mutate.DeleteArea(db, userID, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "area.deleted", id, res.EventPayload)
			removeAttachmentFiles(app, s, res.RemovedAttachments)
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	return cmd
}

func newAreasDuplicateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duplicate <area-id>",
		Short: "Deep-copy an area with its projects and tasks",
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
			res, err := mutate.DuplicateArea(db, userID, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "area.duplicated", res.Area.ID, res.EventPayload)
			return writeOut(cmd, app, map[string]any{"data": res.Area})
		},
	}
	return cmd
}

func newAreasReorderCmd(app *App) *cobra.Command {
	var insertAt int

	cmd := &cobra.Command{
		Use:   "reorder <area-id>",
		Short: "Move an area to a new position among its siblings",
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
			res, err := mutate.ReorderArea(db, userID, id, insertAt)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "area.reordered", id, res.EventPayload)
			return writeOut(cmd, app, map[string]any{"data": res.Area})
		},
	}

	cmd.Flags().IntVar(&insertAt, "at", 0, "Target position (0-based)")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newAreasArchiveCmd(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "archive <area-id>",
		Short: "Archive an area (or restore it with --undo)",
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
			res, err := mutate.SetAreaArchived(db, userID, id, !undo)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				_ = s.AppendEvent(userID, "area.archived", id, res.EventPayload)
			}
			return writeOut(cmd, app, map[string]any{"data": res.Area})
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Restore instead of archive")
	return cmd
}
