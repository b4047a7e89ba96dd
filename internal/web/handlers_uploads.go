package web

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"aurum-life/internal/model"
	"aurum-life/internal/mutate"
	"aurum-life/internal/perm"
	"aurum-life/internal/store"
)

type uploadInitiateBody struct {
	Filename   string `json:"filename"`
	SizeBytes  int64  `json:"sizeBytes"`
	ParentType string `json:"parentType"`
	ParentID   string `json:"parentId"`
}

// checkParent verifies the attachment target exists and belongs to the
// user. Foreign parents read as unknown.
func (s *Server) checkParent(r *http.Request, db *store.DB, userID string, pt model.ParentType, parentID string) error {
	switch pt {
	case model.ParentTypeTask:
		if t, ok := db.FindTask(parentID); ok && perm.CanAccessTask(db, userID, t) {
			return nil
		}
		return mutate.NotFoundError{Kind: "task", ID: parentID}
	case model.ParentTypeProject:
		if p, ok := db.FindProject(parentID); ok && perm.CanAccessProject(db, userID, p) {
			return nil
		}
		return mutate.NotFoundError{Kind: "project", ID: parentID}
	case model.ParentTypeJournalEntry:
		_, err := s.entries.Get(r.Context(), userID, parentID)
		return err
	default:
		return model.ValidationError{Field: "parentType", Msg: "unknown parent type"}
	}
}

func (s *Server) handleUploadInitiate(w http.ResponseWriter, r *http.Request) {
	if s.readOnly() {
		writeError(w, http.StatusForbidden, "server is read-only")
		return
	}
	var body uploadInitiateBody
	if !decodeJSON(w, r, &body) {
		return
	}
	pt, err := model.ParseParentType(body.ParentType)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	if err := s.checkParent(r, db, uid, pt, body.ParentID); err != nil {
		s.writeErr(w, err)
		return
	}

	sess, err := s.uploads.Initiate(uid, body.Filename, body.SizeBytes, pt, body.ParentID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleUploadChunk(w http.ResponseWriter, r *http.Request) {
	if s.readOnly() {
		writeError(w, http.StatusForbidden, "server is read-only")
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid chunk index")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfgSnapshot().ChunkSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read chunk: "+err.Error())
		return
	}

	sess, err := s.uploads.UploadChunk(requestUserID(r), r.PathValue("id"), index, data)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleUploadComplete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	out, ok := s.mutateState(w, r, "attachments", func(db *store.DB, uid string) (any, []storeEvent, error) {
		att, err := s.uploads.Complete(db, uid, id)
		if err != nil {
			return nil, nil, err
		}
		payload := map[string]any{
			"filename":   att.Filename,
			"sizeBytes":  att.SizeBytes,
			"parentType": att.ParentType,
			"parentId":   att.ParentID,
		}
		return att, []storeEvent{{typ: "upload.completed", entityID: att.ID, payload: payload}}, nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUploadAbort(w http.ResponseWriter, r *http.Request) {
	if err := s.uploads.Abort(requestUserID(r), r.PathValue("id")); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"aborted": true})
}

func (s *Server) handleAttachmentsList(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	if parentID := strings.TrimSpace(q.Get("parent_id")); parentID != "" {
		pt, err := model.ParseParentType(q.Get("parent_type"))
		if err != nil {
			s.writeErr(w, err)
			return
		}
		if err := s.checkParent(r, db, uid, pt, parentID); err != nil {
			s.writeErr(w, err)
			return
		}
		rows := make([]model.Attachment, 0)
		for _, id := range db.AttachmentsOf(parentID) {
			if a, found := db.FindAttachment(id); found && a.ParentType == pt {
				rows = append(rows, *a)
			}
		}
		writeList(w, r, rows)
		return
	}

	rows := make([]model.Attachment, 0)
	for _, a := range db.Attachments {
		if a.UserID == uid {
			rows = append(rows, a)
		}
	}
	writeList(w, r, rows)
}

func (s *Server) handleAttachmentDownload(w http.ResponseWriter, r *http.Request) {
	db, uid, ok := s.loadForRead(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	a, found := db.FindAttachment(id)
	if !found || !perm.CanAccessAttachment(db, uid, a) {
		s.writeErr(w, mutate.NotFoundError{Kind: "attachment", ID: id})
		return
	}

	if a.MimeType != "" {
		w.Header().Set("Content-Type", a.MimeType)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename))
	http.ServeFile(w, r, s.st().AttachmentAbsPath(*a))
}

func (s *Server) handleAttachmentDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var removed []model.Attachment
	out, ok := s.mutateState(w, r, "attachments", func(db *store.DB, uid string) (any, []storeEvent, error) {
		res, err := mutate.DeleteAttachment(db, uid, id)
		if err != nil {
			return nil, nil, err
		}
		removed = res.RemovedAttachments
		return res, []storeEvent{{typ: "attachment.deleted", entityID: id, payload: res.EventPayload}}, nil
	})
	if !ok {
		return
	}
	s.removeAttachmentFiles(removed)
	writeJSON(w, http.StatusOK, out)
}
