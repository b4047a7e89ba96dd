package cli

import (
	"time"

	"aurum-life/internal/score"

	"github.com/spf13/cobra"
)

func newAlignmentCmd(app *App) *cobra.Command {
	var goal int

	cmd := &cobra.Command{
		Use:   "alignment",
		Short: "Alignment points earned against the monthly goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": score.Alignment(db, userID, time.Now(), goal)})
		},
	}

	cmd.Flags().IntVar(&goal, "goal", 0, "Monthly goal in points (0 = default)")
	return cmd
}
