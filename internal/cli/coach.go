package cli

import (
	"os"
	"time"

	"aurum-life/internal/coach"
	"aurum-life/internal/store"

	"github.com/spf13/cobra"
)

func newCoachCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "AI coach: why a task matters, what to focus on",
	}
	cmd.AddCommand(newCoachWhyCmd(app))
	cmd.AddCommand(newCoachFocusCmd(app))
	return cmd
}

// newCoachEngine builds the coach, honoring the configured model name
// when the env var does not override it. Without an API key the coach
// answers rule-based.
func newCoachEngine() *coach.Coach {
	c := coach.New()
	if c.Client != nil && os.Getenv(coach.ModelEnv) == "" {
		if cfg, err := store.LoadConfig(); err == nil && cfg.AnthropicModel != "" {
			c.Client = coach.NewClient(os.Getenv("ANTHROPIC_API_KEY"), cfg.AnthropicModel, "")
		}
	}
	return c
}

func newCoachWhyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "why <task-id>",
		Short: "Explain why a task matters, from its pillar down",
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
			why, err := newCoachEngine().Why(cmd.Context(), db, userID, args[0], time.Now())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": why})
		},
	}
	return cmd
}

func newCoachFocusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Daily focus summary with the top-ranked tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": coach.DailyFocus(db, userID, time.Now())})
		},
	}
	return cmd
}
