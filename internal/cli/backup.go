package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

func newBackupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list, prune, and restore snapshot backups",
	}
	cmd.AddCommand(newBackupCreateCmd(app))
	cmd.AddCommand(newBackupListCmd(app))
	cmd.AddCommand(newBackupPruneCmd(app))
	cmd.AddCommand(newBackupRestoreCmd(app))
	return cmd
}

func newBackupCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Write the current snapshot to a timestamped export file",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			path, err := s.CreateBackup(db)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.logger().Debug("backup created", zap.String("path", path))
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": path}})
		},
	}
}

func newBackupListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			infos, err := s.ListBackups()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, backupListPayload{Data: infos})
		},
	}
}

func newBackupPruneCmd(app *App) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return writeErr(cmd, fmt.Errorf("--keep must be >= 0, got %d", keep))
			}
			_, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			removed, err := s.PruneBackups(keep)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": removed, "kept": keep}})
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 10, "Number of most recent backups to keep")
	return cmd
}

func newBackupRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <path>",
		Short: "Replace the live snapshot with an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			db, err := s.ReadBackup(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			app.logger().Info("snapshot restored", zap.String("from", args[0]))
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"restored": args[0],
				"users":    len(db.Users),
				"pillars":  len(db.Pillars),
				"areas":    len(db.Areas),
				"projects": len(db.Projects),
				"tasks":    len(db.Tasks),
			}})
		},
	}
}
