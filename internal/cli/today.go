package cli

import (
	"time"

	"aurum-life/internal/score"

	"github.com/spf13/cobra"
)

func newTodayCmd(app *App) *cobra.Command {
	var overdue bool

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Ranked working set for the day",
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
			if overdue {
				return writeOut(cmd, app, rankedTaskListPayload{Data: score.OverdueTasks(db, userID, now)})
			}
			return writeOut(cmd, app, rankedTaskListPayload{Data: score.TodayTasks(db, userID, now)})
		},
	}

	cmd.Flags().BoolVar(&overdue, "overdue", false, "Show only overdue tasks")
	return cmd
}
