package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			app.logger().Debug("store initialized", zap.String("dir", app.Dir))
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":   app.Dir,
					"users": len(db.Users),
				},
			})
		},
	}
	return cmd
}
