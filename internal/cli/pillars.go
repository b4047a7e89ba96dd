package cli

import (
	"aurum-life/internal/mutate"
	"aurum-life/internal/perm"

	"github.com/spf13/cobra"
)

func newPillarsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pillars",
		Short: "Manage pillars (top-level life domains)",
	}
	cmd.AddCommand(newPillarsCreateCmd(app))
	cmd.AddCommand(newPillarsListCmd(app))
	cmd.AddCommand(newPillarsShowCmd(app))
	cmd.AddCommand(newPillarsUpdateCmd(app))
	cmd.AddCommand(newPillarsDeleteCmd(app))
	cmd.AddCommand(newPillarsDuplicateCmd(app))
	cmd.AddCommand(newPillarsReorderCmd(app))
	cmd.AddCommand(newPillarsArchiveCmd(app))
	return cmd
}

func newPillarsCreateCmd(app *App) *cobra.Command {
	var p mutate.CreatePillarParams

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a pillar",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.CreatePillar(db, userID, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "pillar.created", res.Pillar.ID, res.EventPayload)
			return writeOut(cmd, app, map[string]any{"data": res.Pillar})
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "Pillar name")
	cmd.Flags().StringVar(&p.Description, "description", "", "Description")
	cmd.Flags().StringVar(&p.Icon, "icon", "", "Icon (emoji or short label)")
	cmd.Flags().StringVar(&p.Color, "color", "", "Color (#RRGGBB)")
	cmd.Flags().IntVar(&p.TimeAllocationPct, "time-allocation", 0, "Weekly time allocation (0-100%)")
	cmd.Flags().IntVar(&p.TimeTargetMinutesWeek, "time-target", 0, "Weekly time target in minutes")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newPillarsListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pillars in rank order",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, pillarListPayload{Data: listPillars(db, userID, all)})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived pillars")
	return cmd
}

func newPillarsShowCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show <pillar-id>",
		Short: "Show a pillar and its areas",
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
			p, ok := db.FindPillar(id)
			if !ok || !perm.CanAccessPillar(db, userID, p) {
				return writeErr(cmd, mutate.NotFoundError{Kind: "pillar", ID: id})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"pillar": p,
				"areas":  listAreas(db, p.ID, all),
			}})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived areas")
	return cmd
}

func newPillarsUpdateCmd(app *App) *cobra.Command {
	var (
		name, description, icon, color string
		timeAllocation, timeTarget     int
	)

	cmd := &cobra.Command{
		Use:   "update <pillar-id>",
		Short: "Update pillar fields",
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

			var p mutate.UpdatePillarParams
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
			if cmd.Flags().Changed("time-allocation") {
				p.TimeAllocationPct = &timeAllocation
			}
			if cmd.Flags().Changed("time-target") {
				p.TimeTargetMinutesWeek = &timeTarget
			}

			id := args[0]
			res, err := mutate.UpdatePillar(db, userID, id, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				_ = s.AppendEvent(userID, "pillar.updated", id, res.EventPayload)
			}
			return writeOut(cmd, app, map[string]any{"data": res.Pillar})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Pillar name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon (emoji or short label)")
	cmd.Flags().StringVar(&color, "color", "", "Color (#RRGGBB)")
	cmd.Flags().IntVar(&timeAllocation, "time-allocation", 0, "Weekly time allocation (0-100%)")
	cmd.Flags().IntVar(&timeTarget, "time-target", 0, "Weekly time target in minutes")
	return cmd
}

func newPillarsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <pillar-id>",
		Short: "Delete a pillar and everything under it",
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
			res, err := mutate.DeletePillar(db, userID, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "pillar.deleted", id, res.EventPayload)
			removeAttachmentFiles(app, s, res.RemovedAttachments)
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	return cmd
}

func newPillarsDuplicateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duplicate <pillar-id>",
		Short: "Deep-copy a pillar with its areas, projects, and tasks",
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
			res, err := mutate.DuplicatePillar(db, userID, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "pillar.duplicated", res.Pillar.ID, res.EventPayload)
			return writeOut(cmd, app, map[string]any{"data": res.Pillar})
		},
	}
	return cmd
}

func newPillarsReorderCmd(app *App) *cobra.Command {
	var insertAt int

	cmd := &cobra.Command{
		Use:   "reorder <pillar-id>",
		Short: "Move a pillar to a new position among its siblings",
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
			res, err := mutate.ReorderPillar(db, userID, id, insertAt)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "pillar.reordered", id, res.EventPayload)
			return writeOut(cmd, app, map[string]any{"data": res.Pillar})
		},
	}

	cmd.Flags().IntVar(&insertAt, "at", 0, "Target position (0-based)")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newPillarsArchiveCmd(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "archive <pillar-id>",
		Short: "Archive a pillar (or restore it with --undo)",
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
			res, err := mutate.SetPillarArchived(db, userID, id, !undo)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := s.Save(db); err != nil {
					return writeErr(cmd, err)
				}
				_ = s.AppendEvent(userID, "pillar.archived", id, res.EventPayload)
			}
			return writeOut(cmd, app, map[string]any{"data": res.Pillar})
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Restore instead of archive")
	return cmd
}
