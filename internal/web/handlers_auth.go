package web

import (
	"context"
	"net/http"
	"time"

	"aurum-life/internal/auth"

	"go.uber.org/zap"
)

type registerBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordBody struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type sessionPayload struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.DefaultSessionTTL / time.Second),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// writeAuthFailure terminates a failed auth attempt. Timeouts surface as
// 503 and never turn into a session.
func (s *Server) writeAuthFailure(w http.ResponseWriter, res auth.Result) {
	switch res.Status {
	case auth.StatusTimeout:
		writeError(w, http.StatusServiceUnavailable, "authentication timed out")
	default:
		if res.Err != nil {
			s.writeErr(w, res.Err)
			return
		}
		writeError(w, http.StatusInternalServerError, "authentication failed")
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.readOnly() {
		writeError(w, http.StatusForbidden, "server is read-only")
		return
	}
	var body registerBody
	if !decodeJSON(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.loginTimeout())
	defer cancel()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	db, err := s.st().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load state: "+err.Error())
		return
	}
	res := s.authn.Register(ctx, db, body.Email, body.Password, body.Name)
	if res.Status != auth.StatusSuccess {
		s.writeAuthFailure(w, res)
		return
	}
	if err := s.st().Save(db); err != nil {
		writeError(w, http.StatusInternalServerError, "save state: "+err.Error())
		return
	}
	if err := s.st().AppendEvent(res.User.ID, "user.registered", res.User.ID, map[string]any{"email": res.User.Email}); err != nil {
		s.log.Warn("append event", zap.String("type", "user.registered"), zap.Error(err))
	}
	s.hub.notify("users")

	s.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, sessionPayload{Token: res.Token, User: viewOfUser(*res.User)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decodeJSON(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.loginTimeout())
	defer cancel()

	db, err := s.st().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load state: "+err.Error())
		return
	}
	res := s.authn.Login(ctx, db, body.Email, body.Password)
	if res.Status != auth.StatusSuccess {
		s.writeAuthFailure(w, res)
		return
	}
	if err := s.st().AppendEvent(res.User.ID, "auth.login", res.User.ID, nil); err != nil {
		s.log.Warn("append event", zap.String("type", "auth.login"), zap.Error(err))
	}

	s.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, sessionPayload{Token: res.Token, User: viewOfUser(*res.User)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	tok, err := s.authn.Refresh(db, sessionToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "session refresh failed")
		return
	}
	u, found := db.FindUser(uid)
	if !found {
		writeError(w, http.StatusUnauthorized, "session refresh failed")
		return
	}

	s.setSessionCookie(w, tok)
	writeJSON(w, http.StatusOK, sessionPayload{Token: tok, User: viewOfUser(*u)})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if s.readOnly() {
		writeError(w, http.StatusForbidden, "server is read-only")
		return
	}
	var body changePasswordBody
	if !decodeJSON(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.loginTimeout())
	defer cancel()

	uid := requestUserID(r)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	db, err := s.st().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load state: "+err.Error())
		return
	}
	res := s.authn.ChangePassword(ctx, db, uid, body.CurrentPassword, body.NewPassword)
	if res.Status != auth.StatusSuccess {
		s.writeAuthFailure(w, res)
		return
	}
	if err := s.st().Save(db); err != nil {
		writeError(w, http.StatusInternalServerError, "save state: "+err.Error())
		return
	}
	if err := s.st().AppendEvent(uid, "auth.password_changed", uid, nil); err != nil {
		s.log.Warn("append event", zap.String("type", "auth.password_changed"), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": true})
}
