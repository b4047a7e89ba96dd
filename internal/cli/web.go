package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"aurum-life/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Run the HTTP/JSON API server",
	}
	cmd.AddCommand(newWebServeCmd(app))
	return cmd
}

func newWebServeCmd(app *App) *cobra.Command {
	var (
		addr           string
		authMode       string
		readOnly       bool
		chunkSize      int64
		maxUploadBytes int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the API over HTTP until interrupted",
		Long: strings.TrimSpace(`
Serve the full JSON API (hierarchy CRUD, auth, journal, uploads, coach,
live updates) from the local snapshot directory.

Auth modes:
- none:  every request acts as a fixed user (--user, else the store's
         current user, else the only user in the store)
- token: clients must log in via POST /api/auth/login and send the
         session token as a cookie or bearer header
`),
		Example: strings.TrimSpace(`
# Single-user API on localhost
aurum web serve --addr 127.0.0.1:8787

# Multi-user with session tokens
aurum web serve --addr :8787 --auth token
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			srv, err := web.NewServer(web.ServerConfig{
				Addr:           strings.TrimSpace(addr),
				Dir:            dir,
				AuthMode:       authMode,
				UserID:         app.UserID,
				ChunkSize:      chunkSize,
				MaxUploadBytes: maxUploadBytes,
				ReadOnly:       readOnly,
				Logger:         app.logger(),
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			url := "http://" + srv.Addr() + "/"
			if err := writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      srv.Addr(),
					"url":       url,
					"dir":       dir,
					"authMode":  authMode,
					"readOnly":  readOnly,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Aurum web running at %s (dir=%s)\n", url, dir)

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "Bind address (host:port or :port)")
	cmd.Flags().StringVar(&authMode, "auth", "none", "Auth mode: none or token")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Reject all mutating requests")
	cmd.Flags().Int64Var(&chunkSize, "chunk-size", 0, "Upload chunk size in bytes (0 = server default)")
	cmd.Flags().Int64Var(&maxUploadBytes, "max-upload-bytes", 0, "Max upload size in bytes (0 = server default)")
	return cmd
}
