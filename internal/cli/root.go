package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"aurum-life/internal/format"
	"aurum-life/internal/store"
	"aurum-life/internal/tui"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type App struct {
	Dir        string
	UserID     string
	Format     string
	PrettyJSON bool
	Verbose    bool

	log *zap.Logger
}

// logger is safe to call before PersistentPreRunE has run.
func (app *App) logger() *zap.Logger {
	if app.log == nil {
		return zap.NewNop()
	}
	return app.log
}

func NewRootCmd() *cobra.Command {
	app := &App{}
	defaults := flagDefaults()

	cmd := &cobra.Command{
		Use:          "aurum",
		Short:        "Aurum Life (local-first) CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  aurum

  # Scriptable commands
  aurum tasks list --project <project-id>

  # What deserves attention right now?
  aurum today

  # Why does this task matter?
  aurum coach why <task-id>
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if app.Verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		app.log = logger
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.Dir, "dir", defaults.GetString("dir"), "Path to the data dir (default: ~/.aurum/data)")
	pf.StringVar(&app.UserID, "user", defaults.GetString("user"), "User id (overrides currentUserId in the store)")
	pf.StringVar(&app.Format, "format", defaults.GetString("format"), "Output format (json|edn|table)")
	pf.BoolVar(&app.PrettyJSON, "pretty", defaults.GetBool("pretty"), "Pretty-print JSON output")
	pf.BoolVar(&app.Verbose, "verbose", false, "Debug logging on stderr")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newPillarsCmd(app))
	cmd.AddCommand(newAreasCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newTodayCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newInsightsCmd(app))
	cmd.AddCommand(newAlignmentCmd(app))
	cmd.AddCommand(newJournalCmd(app))
	cmd.AddCommand(newCoachCmd(app))
	cmd.AddCommand(newAttachCmd(app))
	cmd.AddCommand(newUploadCmd(app))
	cmd.AddCommand(newSettingsCmd(app))
	cmd.AddCommand(newOnboardingCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newBackupCmd(app))
	cmd.AddCommand(newWebCmd(app))

	return cmd
}

// flagDefaults layers persistent-flag defaults below explicit flags:
// AURUM_* env, then ~/.aurum/config.yaml, then ~/.aurum/config.json,
// then the baked-in default.
func flagDefaults() *viper.Viper {
	v := viper.New()
	v.SetDefault("format", "json")
	if cfg, err := store.LoadConfig(); err == nil {
		if cfg.DataDir != "" {
			v.SetDefault("dir", cfg.DataDir)
		}
		if cfg.CurrentUserID != "" {
			v.SetDefault("user", cfg.CurrentUserID)
		}
		if cfg.DefaultFormat != "" {
			v.SetDefault("format", cfg.DefaultFormat)
		}
	}
	v.SetEnvPrefix("AURUM")
	v.AutomaticEnv()
	v.SetConfigName("config") // config.yaml, next to config.json
	v.SetConfigType("yaml")
	if dir, err := store.ConfigDir(); err == nil {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: config.yaml ignored: %v\n", err)
		}
	}
	return v
}

func runTUI(app *App) error {
	db, s, err := loadDB(app)
	if err != nil {
		return err
	}
	userID, err := currentUserID(app, db)
	if err != nil {
		return err
	}
	return tui.Run(s, db, userID)
}

func loadDB(app *App) (*store.DB, store.Store, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, store.Store{}, err
	}
	s := store.Store{Dir: dir}
	db, err := s.Load()
	if err != nil {
		return nil, s, err
	}
	return db, s, nil
}

func resolveDir(app *App) (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	// Env, then config dataDir, then ~/.aurum/data.
	d, err := store.DataDir()
	if err != nil {
		return "", err
	}
	app.Dir = d
	return d, nil
}

func currentUserID(app *App, db *store.DB) (string, error) {
	if app.UserID != "" {
		return app.UserID, nil
	}
	if db.CurrentUserID != "" {
		return db.CurrentUserID, nil
	}
	return "", errors.New("no current user; run `aurum users create ... --use` or `aurum users use <user-id>` (or pass --user)")
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
