package cli

import (
	"time"

	"aurum-life/internal/score"

	"github.com/spf13/cobra"
)

func newDashboardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Headline stats plus per-pillar rollups",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			now := time.Now()
			return writeOut(cmd, app, dashboardPayload{
				Data:    score.Dashboard(db, userID, now),
				Pillars: score.PillarStats(db, userID),
			})
		},
	}
	return cmd
}
