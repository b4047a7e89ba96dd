package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/store"

	"go.uber.org/zap"
)

const sessionCookie = "aurum_session"

type ctxKeyUser struct{}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE working through the recorder.
func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}

func sessionToken(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func (s *Server) userForRequest(db *store.DB, r *http.Request) (*model.User, error) {
	if s.authMode() == "none" {
		if uid := s.cfgSnapshot().UserID; uid != "" {
			if u, ok := db.FindUser(uid); ok {
				return u, nil
			}
			return nil, errors.New("web: configured user not found")
		}
		if len(db.Users) == 1 {
			return &db.Users[0], nil
		}
		return nil, errors.New("web: no user configured")
	}

	tok := sessionToken(r)
	if tok == "" {
		return nil, errors.New("web: missing session token")
	}
	return s.authn.VerifySession(db, tok)
}

// withUser resolves the requesting user and stashes its id in the request
// context. 401 on failure; handlers never see anonymous requests.
func (s *Server) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db, err := s.st().Load()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load state: "+err.Error())
			return
		}
		u, err := s.userForRequest(db, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyUser{}, u.ID)
		next(w, r.WithContext(ctx))
	}
}

func requestUserID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeyUser{}).(string)
	return id
}

func (s *Server) loadForRead(w http.ResponseWriter, r *http.Request) (*store.DB, string, bool) {
	db, err := s.st().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load state: "+err.Error())
		return nil, "", false
	}
	return db, requestUserID(r), true
}

type storeEvent struct {
	typ      string
	entityID string
	payload  any
}

// mutateState runs fn against a freshly loaded snapshot under the write
// lock, saves on success, then appends events and nudges the stream.
// Errors are written to w; the second return reports whether the caller
// should continue.
func (s *Server) mutateState(w http.ResponseWriter, r *http.Request, resource string, fn func(db *store.DB, userID string) (any, []storeEvent, error)) (any, bool) {
	if s.readOnly() {
		writeError(w, http.StatusForbidden, "server is read-only")
		return nil, false
	}
	uid := requestUserID(r)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	db, err := s.st().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load state: "+err.Error())
		return nil, false
	}
	out, evs, err := fn(db, uid)
	if err != nil {
		s.writeErr(w, err)
		return nil, false
	}
	if err := s.st().Save(db); err != nil {
		writeError(w, http.StatusInternalServerError, "save state: "+err.Error())
		return nil, false
	}
	for _, ev := range evs {
		if err := s.st().AppendEvent(uid, ev.typ, ev.entityID, ev.payload); err != nil {
			s.log.Warn("append event", zap.String("type", ev.typ), zap.Error(err))
		}
	}
	s.hub.notify(resource)
	return out, true
}

// userView is the user shape the API exposes; password hashes stay inside.
type userView struct {
	ID                     string    `json:"id"`
	Email                  string    `json:"email"`
	Name                   string    `json:"name"`
	Level                  int       `json:"level"`
	TotalPoints            int       `json:"totalPoints"`
	CurrentStreak          int       `json:"currentStreak"`
	LastActivityDate       string    `json:"lastActivityDate,omitempty"`
	HasCompletedOnboarding bool      `json:"hasCompletedOnboarding"`
	CreatedAt              time.Time `json:"createdAt"`
}

func viewOfUser(u model.User) userView {
	return userView{
		ID:                     u.ID,
		Email:                  u.Email,
		Name:                   u.Name,
		Level:                  u.Level,
		TotalPoints:            u.TotalPoints,
		CurrentStreak:          u.CurrentStreak,
		LastActivityDate:       u.LastActivityDate,
		HasCompletedOnboarding: u.HasCompletedOnboarding,
		CreatedAt:              u.CreatedAt,
	}
}
