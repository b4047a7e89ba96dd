package web

import (
	"net/http"
	"strings"

	"aurum-life/internal/model"

	"go.uber.org/zap"
)

type journalBody struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Mood    string   `json:"mood"`
	Tags    []string `json:"tags"`
}

func (s *Server) handleJournalList(w http.ResponseWriter, r *http.Request) {
	uid := requestUserID(r)

	var (
		rows []model.JournalEntry
		err  error
	)
	if month := strings.TrimSpace(r.URL.Query().Get("month")); month != "" {
		rows, err = s.entries.List(r.Context(), uid, month)
	} else {
		rows, err = s.entries.ListAll(r.Context(), uid)
	}
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeList(w, r, rows)
}

func (s *Server) handleJournalCreate(w http.ResponseWriter, r *http.Request) {
	if s.readOnly() {
		writeError(w, http.StatusForbidden, "server is read-only")
		return
	}
	var body journalBody
	if !decodeJSON(w, r, &body) {
		return
	}

	uid := requestUserID(r)
	e := &model.JournalEntry{
		UserID:  uid,
		Title:   body.Title,
		Content: body.Content,
		Mood:    model.Mood(body.Mood),
		Tags:    body.Tags,
	}
	if err := s.entries.Add(e); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.st().AppendEvent(uid, "journal_entry.created", e.ID, map[string]any{"title": e.Title}); err != nil {
		s.log.Warn("append event", zap.String("type", "journal_entry.created"), zap.Error(err))
	}
	s.hub.notify("journal")
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleJournalGet(w http.ResponseWriter, r *http.Request) {
	e, err := s.entries.Get(r.Context(), requestUserID(r), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleJournalUpdate(w http.ResponseWriter, r *http.Request) {
	if s.readOnly() {
		writeError(w, http.StatusForbidden, "server is read-only")
		return
	}
	var body journalBody
	if !decodeJSON(w, r, &body) {
		return
	}

	uid := requestUserID(r)
	e := &model.JournalEntry{
		ID:      r.PathValue("id"),
		UserID:  uid,
		Title:   body.Title,
		Content: body.Content,
		Mood:    model.Mood(body.Mood),
		Tags:    body.Tags,
	}
	if err := s.entries.Update(r.Context(), e); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.st().AppendEvent(uid, "journal_entry.updated", e.ID, map[string]any{"title": e.Title}); err != nil {
		s.log.Warn("append event", zap.String("type", "journal_entry.updated"), zap.Error(err))
	}
	s.hub.notify("journal")
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleJournalDelete(w http.ResponseWriter, r *http.Request) {
	if s.readOnly() {
		writeError(w, http.StatusForbidden, "server is read-only")
		return
	}
	uid := requestUserID(r)
	id := r.PathValue("id")
	if err := s.entries.Delete(r.Context(), uid, id); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.st().AppendEvent(uid, "journal_entry.deleted", id, nil); err != nil {
		s.log.Warn("append event", zap.String("type", "journal_entry.deleted"), zap.Error(err))
	}
	s.hub.notify("journal")
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleJournalSearch(w http.ResponseWriter, r *http.Request) {
	rows, err := s.entries.Search(r.Context(), requestUserID(r), r.URL.Query().Get("q"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeList(w, r, rows)
}

func (s *Server) handleJournalMoods(w http.ResponseWriter, r *http.Request) {
	moods, err := s.entries.Moods(r.Context(), requestUserID(r))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moods)
}
