package web

import (
	"net/http"
	"strconv"
	"time"

	"aurum-life/internal/coach"
	"aurum-life/internal/model"
	"aurum-life/internal/mutate"
	"aurum-life/internal/onboarding"
	"aurum-life/internal/score"
	"aurum-life/internal/store"

	"go.uber.org/zap"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	now := time.Now()
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":       score.Dashboard(db, uid, now),
		"pillarStats": score.PillarStats(db, uid),
		"focus":       coach.DailyFocus(db, uid, now),
	})
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	now := time.Now()
	writeJSON(w, http.StatusOK, map[string]any{
		"date":    now.Format("2006-01-02"),
		"tasks":   score.TodayTasks(db, uid, now),
		"overdue": score.OverdueTasks(db, uid, now),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, score.BuildInsights(db, uid, time.Now()))
}

func (s *Server) handleAlignment(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	goal := score.DefaultMonthlyGoal
	if v := r.URL.Query().Get("goal"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			goal = n
		}
	}
	writeJSON(w, http.StatusOK, score.Alignment(db, uid, time.Now(), goal))
}

func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	u, found := db.FindUser(uid)
	if !found {
		s.writeErr(w, mutate.NotFoundError{Kind: "user", ID: uid})
		return
	}
	writeJSON(w, http.StatusOK, viewOfUser(*u))
}

type profileBody struct {
	Name string `json:"name"`
}

func (s *Server) handleProfilePut(w http.ResponseWriter, r *http.Request) {
	var body profileBody
	if !decodeJSON(w, r, &body) {
		return
	}
	out, ok := s.mutateState(w, r, "users", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.UpdateProfile(db, uid, body.Name)
		if err != nil {
			return nil, nil, err
		}
		var evs []storeEvent
		if res.Changed {
			evs = append(evs, storeEvent{typ: "profile.updated", entityID: uid, payload: res.EventPayload})
		}
		return viewOfUser(*res.User), evs, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	uid := requestUserID(r)
	st, err := s.st().LoadSettings(uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load settings: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	if s.readOnly() {
		writeError(w, http.StatusForbidden, "server is read-only")
		return
	}
	var body store.Settings
	if !decodeJSON(w, r, &body) {
		return
	}
	uid := requestUserID(r)
	body.Version = store.SettingsVersion
	if err := s.st().SaveSettings(uid, &body); err != nil {
		writeError(w, http.StatusInternalServerError, "save settings: "+err.Error())
		return
	}
	if err := s.st().AppendEvent(uid, "settings.updated", uid, nil); err != nil {
		s.log.Warn("append event", zap.String("type", "settings.updated"), zap.Error(err))
	}
	s.hub.notify("settings")
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleOnboardingTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"personas": onboarding.Personas()})
}

type onboardingApplyBody struct {
	Persona string `json:"persona"`
	Force   bool   `json:"force"`
}

func (s *Server) handleOnboardingApply(w http.ResponseWriter, r *http.Request) {
	var body onboardingApplyBody
	if !decodeJSON(w, r, &body) {
		return
	}
	out, ok := s.mutateState(w, r, "state", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := onboarding.Apply(db, uid, body.Persona, body.Force)
		if err != nil {
			return nil, nil, err
		}
		return res, []storeEvent{{typ: "onboarding.applied", entityID: uid, payload: res.Payload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	uid := requestUserID(r)
	p := pageParams(r)

	// Read a generous tail, then keep only the caller's events.
	evs, err := s.st().ReadEventsTail(p.Limit + p.Offset + 200)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read events: "+err.Error())
		return
	}
	mine := make([]model.Event, 0, len(evs))
	for _, ev := range evs {
		if ev.UserID == uid {
			mine = append(mine, ev)
		}
	}
	writeList(w, r, mine)
}
