package cli

import (
	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the append-only event log",
	}
	cmd.AddCommand(newEventsListCmd(app))
	cmd.AddCommand(newEventsTailCmd(app))
	return cmd
}

func newEventsListCmd(app *App) *cobra.Command {
	var limit int
	var entityID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events oldest-first",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			if entityID != "" {
				evs, err := s.ReadEventsForEntity(entityID, limit)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, eventListPayload{Data: evs})
			}
			evs, err := s.ReadEvents(limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, eventListPayload{Data: evs})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 200, "Max events to return (0 = all)")
	cmd.Flags().StringVar(&entityID, "entity", "", "Only events for this entity id")
	return cmd
}

func newEventsTailCmd(app *App) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the most recent events",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			evs, err := s.ReadEventsTail(n)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, eventListPayload{Data: evs})
		},
	}

	cmd.Flags().IntVar(&n, "n", 20, "Number of trailing events")
	return cmd
}
