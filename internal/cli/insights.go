package cli

import (
	"time"

	"aurum-life/internal/score"

	"github.com/spf13/cobra"
)

func newInsightsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Work distribution and completion trends",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": score.BuildInsights(db, userID, time.Now())})
		},
	}
	return cmd
}
