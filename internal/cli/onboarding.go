package cli

import (
	"aurum-life/internal/onboarding"

	"github.com/spf13/cobra"
)

func newOnboardingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Persona templates that seed a starter hierarchy",
	}
	cmd.AddCommand(newOnboardingListCmd(app))
	cmd.AddCommand(newOnboardingApplyCmd(app))
	return cmd
}

func newOnboardingListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available personas",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, personaListPayload{Data: onboarding.Personas()})
		},
	}
	return cmd
}

func newOnboardingApplyCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "apply <persona-id>",
		Short: "Instantiate a persona's pillars, areas, projects, and tasks",
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
			res, err := onboarding.Apply(db, userID, args[0], force)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "onboarding.applied", userID, res.Payload)
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Apply even if onboarding already ran")
	return cmd
}
