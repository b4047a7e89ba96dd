package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/store"
	"aurum-life/internal/upload"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newUploadCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Chunked uploads against a running aurum web server",
	}
	cmd.AddCommand(newUploadSendCmd(app))
	return cmd
}

func defaultServerAddr() string {
	if v := strings.TrimSpace(os.Getenv("AURUM_SERVER")); v != "" {
		return v
	}
	if cfg, err := store.LoadConfig(); err == nil && cfg.ServerAddr != "" {
		return cfg.ServerAddr
	}
	return "http://127.0.0.1:8787"
}

func newUploadSendCmd(app *App) *cobra.Command {
	var server, parent, token string

	cmd := &cobra.Command{
		Use:   "send <file>",
		Short: "Upload a file in order-checked chunks and attach it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pt, parentID, err := parseParentRef(parent)
			if err != nil {
				return writeErr(cmd, err)
			}

			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer f.Close()
			st, err := f.Stat()
			if err != nil {
				return writeErr(cmd, err)
			}
			if st.IsDir() {
				return writeErr(cmd, errors.New("upload: source path is a directory"))
			}

			client := newUploadClient(server, token)
			ctx := cmd.Context()

			sess, err := client.initiate(ctx, filepath.Base(path), st.Size(), pt, parentID)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.logger().Debug("upload session opened",
				zap.String("uploadId", sess.ID),
				zap.Int64("chunkSize", sess.ChunkSize),
				zap.Int("totalChunks", sess.TotalChunks))

			stats, err := upload.Send(ctx, f, st.Size(), sess.ChunkSize,
				func(ctx context.Context, index int, data []byte) error {
					_, err := client.chunk(ctx, sess.ID, index, data)
					return err
				},
				func(sentChunks, totalChunks int, sentBytes, totalBytes int64) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\rchunk %d/%d (%d/%d bytes)", sentChunks, totalChunks, sentBytes, totalBytes)
				})
			if stats.Chunks > 0 {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				// Leave no half-open session behind.
				_ = client.abort(ctx, sess.ID)
				return writeErr(cmd, err)
			}

			att, err := client.complete(ctx, sess.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": att})
		},
	}

	cmd.Flags().StringVar(&server, "server", defaultServerAddr(), "Server base URL")
	cmd.Flags().StringVar(&parent, "parent", "", "Attachment target as <type>:<id> (task|project|journal_entry)")
	cmd.Flags().StringVar(&token, "token", os.Getenv("AURUM_TOKEN"), "Bearer session token (token auth mode)")
	_ = cmd.MarkFlagRequired("parent")
	return cmd
}

// uploadClient drives the server's chunked upload API. Every response
// arrives in the {success,data,error} envelope.
type uploadClient struct {
	base  string
	token string
	http  *http.Client
}

func newUploadClient(base, token string) *uploadClient {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &uploadClient{
		base:  base,
		token: token,
		http:  &http.Client{Timeout: 60 * time.Second},
	}
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *uploadClient) do(ctx context.Context, method, path, contentType string, body *bytes.Reader, out any) error {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.base+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.base+path, nil)
	}
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("upload: decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("upload: server error: %s", msg)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("upload: decode payload: %w", err)
		}
	}
	return nil
}

func (c *uploadClient) initiate(ctx context.Context, filename string, size int64, pt model.ParentType, parentID string) (upload.Session, error) {
	body, err := json.Marshal(map[string]any{
		"filename":   filename,
		"sizeBytes":  size,
		"parentType": pt,
		"parentId":   parentID,
	})
	if err != nil {
		return upload.Session{}, err
	}
	var sess upload.Session
	err = c.do(ctx, http.MethodPost, "/api/uploads/initiate", "application/json", bytes.NewReader(body), &sess)
	return sess, err
}

func (c *uploadClient) chunk(ctx context.Context, id string, index int, data []byte) (upload.Session, error) {
	var sess upload.Session
	path := "/api/uploads/" + id + "/chunks/" + strconv.Itoa(index)
	err := c.do(ctx, http.MethodPost, path, "application/octet-stream", bytes.NewReader(data), &sess)
	return sess, err
}

func (c *uploadClient) complete(ctx context.Context, id string) (model.Attachment, error) {
	var att model.Attachment
	err := c.do(ctx, http.MethodPost, "/api/uploads/"+id+"/complete", "", nil, &att)
	return att, err
}

func (c *uploadClient) abort(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/uploads/"+id, "", nil, nil)
}
