package cli

import (
	"strings"
	"time"

	"aurum-life/internal/auth"
	"aurum-life/internal/model"
	"aurum-life/internal/mutate"
	"aurum-life/internal/store"

	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage local users",
	}
	cmd.AddCommand(newUsersCreateCmd(app))
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersUseCmd(app))
	cmd.AddCommand(newUsersWhoamiCmd(app))
	cmd.AddCommand(newUsersSetPasswordCmd(app))
	return cmd
}

func newUsersCreateCmd(app *App) *cobra.Command {
	var name string
	var email string
	var password string
	var use bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			var u *model.User
			if password != "" {
				a, err := auth.New(app.Dir)
				if err != nil {
					return writeErr(cmd, err)
				}
				res := a.Register(cmd.Context(), db, email, password, name)
				if res.Status != auth.StatusSuccess {
					return writeErr(cmd, res.Err)
				}
				u = res.User
			} else {
				// Local-only account: no password, no web login until
				// one is set with `users set-password`.
				normalized, err := model.NormalizeEmail(email)
				if err != nil {
					return writeErr(cmd, err)
				}
				if err := model.ValidateName(name); err != nil {
					return writeErr(cmd, err)
				}
				if _, ok := db.FindUserByEmail(normalized); ok {
					return writeErr(cmd, auth.ErrEmailTaken)
				}
				db.Users = append(db.Users, model.User{
					ID:        store.NewID(),
					Email:     normalized,
					Name:      strings.TrimSpace(name),
					Level:     1,
					CreatedAt: time.Now().UTC(),
				})
				db.MarkDirty()
				u = &db.Users[len(db.Users)-1]
			}

			if use {
				db.CurrentUserID = u.ID
				app.UserID = u.ID
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(u.ID, "user.created", u.ID, map[string]any{"email": u.Email, "use": use})
			return writeOut(cmd, app, map[string]any{"data": u})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email (unique per store)")
	cmd.Flags().StringVar(&password, "password", "", "Password (optional; enables web login)")
	cmd.Flags().BoolVar(&use, "use", false, "Set as current user")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, userListPayload{
				CurrentUserID: db.CurrentUserID,
				Data:          db.Users,
			})
		},
	}
	return cmd
}

func newUsersUseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <user-id>",
		Short: "Set the current user for this store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if _, ok := db.FindUser(id); !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "user", ID: id})
			}
			db.CurrentUserID = id
			app.UserID = id
			db.MarkDirty()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(id, "user.switched", id, map[string]any{"userId": id})
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"currentUserId": id}})
		},
	}
	return cmd
}

func newUsersWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			u, ok := db.FindUser(id)
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "user", ID: id})
			}
			return writeOut(cmd, app, map[string]any{"data": u})
		},
	}
	return cmd
}

func newUsersSetPasswordCmd(app *App) *cobra.Command {
	var current string
	var password string

	cmd := &cobra.Command{
		Use:   "set-password [user-id]",
		Short: "Set or change a user's password",
		Long: strings.TrimSpace(`
Set or change a user's password. Accounts created without a password get
one on first use; accounts that already have one must pass --current.
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := ""
			if len(args) == 1 {
				id = strings.TrimSpace(args[0])
			} else {
				id, err = currentUserID(app, db)
				if err != nil {
					return writeErr(cmd, err)
				}
			}

			a, err := auth.New(app.Dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			res := a.SetPassword(cmd.Context(), db, id, current, password)
			if res.Status != auth.StatusSuccess {
				return writeErr(cmd, res.Err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(id, "auth.password_changed", id, nil)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"userId": id}})
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password (required once one is set)")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
