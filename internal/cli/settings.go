package cli

import (
	"strconv"

	"aurum-life/internal/model"

	"github.com/spf13/cobra"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Per-user settings",
	}
	cmd.AddCommand(newSettingsGetCmd(app))
	cmd.AddCommand(newSettingsSetCmd(app))
	return cmd
}

func newSettingsGetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the current user's settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := s.LoadSettings(userID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": st})
		},
	}
	return cmd
}

func newSettingsSetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update one setting",
		Long: `Update one setting. Keys:

  theme                 system | light | dark
  notificationsEnabled  true | false
  weekStartsMonday      true | false
  aiCoachEnabled        true | false
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := s.LoadSettings(userID)
			if err != nil {
				return writeErr(cmd, err)
			}

			key, raw := args[0], args[1]
			switch key {
			case "theme":
				switch raw {
				case "system", "light", "dark":
					st.Theme = raw
				default:
					return writeErr(cmd, model.ValidationError{Field: "theme", Msg: "expected system|light|dark"})
				}
			case "notificationsEnabled", "weekStartsMonday", "aiCoachEnabled":
				b, err := strconv.ParseBool(raw)
				if err != nil {
					return writeErr(cmd, model.ValidationError{Field: key, Msg: "expected true|false"})
				}
				switch key {
				case "notificationsEnabled":
					st.NotificationsEnabled = b
				case "weekStartsMonday":
					st.WeekStartsMonday = b
				case "aiCoachEnabled":
					st.AICoachEnabled = b
				}
			default:
				return writeErr(cmd, model.ValidationError{Field: "key", Msg: "unknown setting: " + key})
			}

			if err := s.SaveSettings(userID, st); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "settings.updated", userID, map[string]any{"key": key})
			return writeOut(cmd, app, map[string]any{"data": st})
		},
	}
	return cmd
}
