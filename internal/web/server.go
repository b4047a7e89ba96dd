// Package web serves the HTTP/JSON API: hierarchy CRUD, auth sessions,
// journal, uploads, onboarding, coach, and a datastar SSE stream that
// nudges clients whenever the snapshot changes.
package web

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"aurum-life/internal/auth"
	"aurum-life/internal/coach"
	"aurum-life/internal/journal"
	"aurum-life/internal/store"
	"aurum-life/internal/upload"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ServerConfig struct {
	Addr string
	Dir  string

	// AuthMode selects how /api requests resolve their user.
	// - none: single-user mode; UserID, or the only user in the store
	// - token: session tokens from /api/auth/login (cookie or bearer)
	AuthMode string // none|token

	// UserID pins every request to a fixed user in auth mode none.
	UserID string

	// LoginTimeout bounds password hashing and verification per request.
	LoginTimeout time.Duration

	ChunkSize      int64
	MaxUploadBytes int64
	ReadOnly       bool

	Logger *zap.Logger
}

type Server struct {
	mu  sync.RWMutex
	cfg ServerConfig

	// writeMu serializes load-mutate-save cycles on the snapshot.
	writeMu sync.Mutex

	authn   *auth.Authenticator
	entries *journal.Store
	uploads *upload.Manager
	coach   *coach.Coach
	hub     *hub
	log     *zap.Logger
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Dir = strings.TrimSpace(cfg.Dir)
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))
	cfg.UserID = strings.TrimSpace(cfg.UserID)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.Dir == "" {
		return nil, errors.New("web: dir is empty")
	}
	if cfg.AuthMode == "" {
		cfg.AuthMode = "none"
	}
	if cfg.AuthMode != "none" && cfg.AuthMode != "token" {
		return nil, errors.New("web: invalid auth mode (expected none|token)")
	}
	if cfg.LoginTimeout <= 0 {
		cfg.LoginTimeout = 10 * time.Second
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = upload.DefaultChunkSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = store.DefaultAttachmentMaxBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	st := store.Store{Dir: cfg.Dir}
	if err := st.Ensure(); err != nil {
		return nil, err
	}

	authn, err := auth.New(cfg.Dir)
	if err != nil {
		return nil, err
	}
	entries, err := journal.Open(filepath.Join(cfg.Dir, "journal"))
	if err != nil {
		return nil, err
	}
	uploads, err := upload.NewManager(upload.Config{
		Store:     st,
		ChunkSize: cfg.ChunkSize,
		MaxBytes:  cfg.MaxUploadBytes,
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:     cfg,
		authn:   authn,
		entries: entries,
		uploads: uploads,
		coach:   coach.New(),
		hub:     newHub(),
		log:     cfg.Logger,
	}, nil
}

func (s *Server) cfgSnapshot() ServerConfig {
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()
	return cfg
}

func (s *Server) Addr() string {
	return s.cfgSnapshot().Addr
}

func (s *Server) dir() string {
	return s.cfgSnapshot().Dir
}

func (s *Server) readOnly() bool {
	return s.cfgSnapshot().ReadOnly
}

func (s *Server) authMode() string {
	return s.cfgSnapshot().AuthMode
}

func (s *Server) loginTimeout() time.Duration {
	return s.cfgSnapshot().LoginTimeout
}

func (s *Server) st() store.Store {
	return store.Store{Dir: s.dir()}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("POST /api/auth/refresh", s.withUser(s.handleRefresh))
	mux.HandleFunc("POST /api/auth/change-password", s.withUser(s.handleChangePassword))

	mux.HandleFunc("GET /api/profile", s.withUser(s.handleProfileGet))
	mux.HandleFunc("PUT /api/profile", s.withUser(s.handleProfilePut))
	mux.HandleFunc("GET /api/settings", s.withUser(s.handleSettingsGet))
	mux.HandleFunc("PUT /api/settings", s.withUser(s.handleSettingsPut))

	mux.HandleFunc("GET /api/pillars", s.withUser(s.handlePillarsList))
	mux.HandleFunc("POST /api/pillars", s.withUser(s.handlePillarCreate))
	mux.HandleFunc("GET /api/pillars/{id}", s.withUser(s.handlePillarGet))
	mux.HandleFunc("PUT /api/pillars/{id}", s.withUser(s.handlePillarUpdate))
	mux.HandleFunc("DELETE /api/pillars/{id}", s.withUser(s.handlePillarDelete))
	mux.HandleFunc("POST /api/pillars/{id}/duplicate", s.withUser(s.handlePillarDuplicate))
	mux.HandleFunc("POST /api/pillars/{id}/reorder", s.withUser(s.handlePillarReorder))
	mux.HandleFunc("POST /api/pillars/{id}/archive", s.withUser(s.handlePillarArchive))

	mux.HandleFunc("GET /api/areas", s.withUser(s.handleAreasList))
	mux.HandleFunc("POST /api/areas", s.withUser(s.handleAreaCreate))
	mux.HandleFunc("GET /api/areas/{id}", s.withUser(s.handleAreaGet))
	mux.HandleFunc("PUT /api/areas/{id}", s.withUser(s.handleAreaUpdate))
	mux.HandleFunc("DELETE /api/areas/{id}", s.withUser(s.handleAreaDelete))
	mux.HandleFunc("POST /api/areas/{id}/duplicate", s.withUser(s.handleAreaDuplicate))
	mux.HandleFunc("POST /api/areas/{id}/reorder", s.withUser(s.handleAreaReorder))
	mux.HandleFunc("POST /api/areas/{id}/archive", s.withUser(s.handleAreaArchive))

	mux.HandleFunc("GET /api/projects", s.withUser(s.handleProjectsList))
	mux.HandleFunc("POST /api/projects", s.withUser(s.handleProjectCreate))
	mux.HandleFunc("GET /api/projects/{id}", s.withUser(s.handleProjectGet))
	mux.HandleFunc("PUT /api/projects/{id}", s.withUser(s.handleProjectUpdate))
	mux.HandleFunc("DELETE /api/projects/{id}", s.withUser(s.handleProjectDelete))
	mux.HandleFunc("POST /api/projects/{id}/duplicate", s.withUser(s.handleProjectDuplicate))
	mux.HandleFunc("POST /api/projects/{id}/reorder", s.withUser(s.handleProjectReorder))
	mux.HandleFunc("POST /api/projects/{id}/archive", s.withUser(s.handleProjectArchive))

	mux.HandleFunc("GET /api/tasks", s.withUser(s.handleTasksList))
	mux.HandleFunc("POST /api/tasks", s.withUser(s.handleTaskCreate))
	mux.HandleFunc("GET /api/tasks/{id}", s.withUser(s.handleTaskGet))
	mux.HandleFunc("PUT /api/tasks/{id}", s.withUser(s.handleTaskUpdate))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.withUser(s.handleTaskDelete))
	mux.HandleFunc("POST /api/tasks/{id}/duplicate", s.withUser(s.handleTaskDuplicate))
	mux.HandleFunc("POST /api/tasks/{id}/reorder", s.withUser(s.handleTaskReorder))
	mux.HandleFunc("POST /api/tasks/{id}/archive", s.withUser(s.handleTaskArchive))
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.withUser(s.handleTaskComplete))
	mux.HandleFunc("POST /api/tasks/{id}/uncomplete", s.withUser(s.handleTaskUncomplete))
	mux.HandleFunc("POST /api/tasks/{id}/why", s.withUser(s.handleTaskWhy))

	mux.HandleFunc("GET /api/dashboard", s.withUser(s.handleDashboard))
	mux.HandleFunc("GET /api/today", s.withUser(s.handleToday))
	mux.HandleFunc("GET /api/insights", s.withUser(s.handleInsights))
	mux.HandleFunc("GET /api/alignment-score", s.withUser(s.handleAlignment))

	mux.HandleFunc("GET /api/journal", s.withUser(s.handleJournalList))
	mux.HandleFunc("POST /api/journal", s.withUser(s.handleJournalCreate))
	mux.HandleFunc("GET /api/journal/search", s.withUser(s.handleJournalSearch))
	mux.HandleFunc("GET /api/journal/moods", s.withUser(s.handleJournalMoods))
	mux.HandleFunc("GET /api/journal/{id}", s.withUser(s.handleJournalGet))
	mux.HandleFunc("PUT /api/journal/{id}", s.withUser(s.handleJournalUpdate))
	mux.HandleFunc("DELETE /api/journal/{id}", s.withUser(s.handleJournalDelete))

	mux.HandleFunc("GET /api/onboarding/templates", s.withUser(s.handleOnboardingTemplates))
	mux.HandleFunc("POST /api/onboarding/apply", s.withUser(s.handleOnboardingApply))

	mux.HandleFunc("POST /api/uploads/initiate", s.withUser(s.handleUploadInitiate))
	mux.HandleFunc("POST /api/uploads/{id}/chunks/{index}", s.withUser(s.handleUploadChunk))
	mux.HandleFunc("POST /api/uploads/{id}/complete", s.withUser(s.handleUploadComplete))
	mux.HandleFunc("DELETE /api/uploads/{id}", s.withUser(s.handleUploadAbort))

	mux.HandleFunc("GET /api/attachments", s.withUser(s.handleAttachmentsList))
	mux.HandleFunc("GET /api/attachments/{id}/download", s.withUser(s.handleAttachmentDownload))
	mux.HandleFunc("DELETE /api/attachments/{id}", s.withUser(s.handleAttachmentDelete))

	mux.HandleFunc("GET /api/events", s.withUser(s.handleEvents))
	mux.HandleFunc("GET /api/stream", s.withUser(s.handleStream))

	return s.withCORS(s.logRequests(mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shCtx)
	})
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", s.Addr()), zap.String("dir", s.dir()))
		err := httpSrv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		s.watchChanges(ctx)
		return nil
	})

	err := g.Wait()
	_ = s.uploads.Close()
	return err
}

// watchChanges bridges on-disk snapshot changes (this process or another
// one sharing the dir) into the stream hub.
func (s *Server) watchChanges(ctx context.Context) {
	ch, err := s.st().Watch(ctx)
	if err != nil {
		s.log.Warn("state watch unavailable", zap.Error(err))
		return
	}
	for c := range ch {
		switch c.Kind {
		case store.ChangeSettings:
			s.hub.notify("settings")
		default:
			s.hub.notify("state")
		}
	}
}
