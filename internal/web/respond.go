package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"aurum-life/internal/auth"
	"aurum-life/internal/coach"
	"aurum-life/internal/journal"
	"aurum-life/internal/model"
	"aurum-life/internal/mutate"
	"aurum-life/internal/onboarding"
	"aurum-life/internal/upload"
)

// envelope is the uniform response shape for every /api endpoint.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:   status < 400,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:   false,
		Error:     msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeErr maps typed domain errors onto HTTP statuses.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	writeError(w, errStatus(err), err.Error())
}

// errStatus keeps the mapping in one place. Ownership failures read as
// not-found so ids never leak across users.
func errStatus(err error) int {
	var (
		validation  model.ValidationError
		notFound    mutate.NotFoundError
		notOwner    mutate.NotOwnerError
		jNotFound   journal.NotFoundError
		unknownUp   upload.UnknownUploadError
		outOfOrder  upload.OutOfOrderChunkError
		chunkSize   upload.ChunkSizeError
		incomplete  upload.IncompleteUploadError
		onboarded   onboarding.AlreadyOnboardedError
		noPersona   onboarding.UnknownPersonaError
		remoteCoach coach.APIError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &chunkSize):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.As(err, &notFound), errors.As(err, &notOwner),
		errors.As(err, &jNotFound), errors.As(err, &unknownUp),
		errors.As(err, &noPersona):
		return http.StatusNotFound
	case errors.As(err, &outOfOrder), errors.As(err, &incomplete),
		errors.As(err, &onboarded), errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.As(err, &remoteCoach):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

type page struct {
	Limit  int
	Offset int
}

func pageParams(r *http.Request) page {
	p := page{Limit: 20}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Offset = n
		}
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func slicePage[T any](xs []T, p page) []T {
	if p.Offset >= len(xs) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(xs) {
		end = len(xs)
	}
	return xs[p.Offset:end]
}

type listEnvelope struct {
	Items  any `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func writeList[T any](w http.ResponseWriter, r *http.Request, rows []T) {
	p := pageParams(r)
	writeJSON(w, http.StatusOK, listEnvelope{
		Items:  slicePage(rows, p),
		Total:  len(rows),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
}
