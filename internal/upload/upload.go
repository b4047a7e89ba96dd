// Package upload stages chunked file uploads and adopts the assembled
// file into the attachment store.
//
// A session accepts chunks strictly in index order starting at zero. Every
// chunk except the last must be exactly ChunkSize bytes, so a file of S
// bytes arrives in exactly ceil(S/C) chunks. Sessions idle past their TTL
// are swept away along with their spool files.
package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/store"
)

const (
	DefaultChunkSize int64 = 1 << 20 // 1MiB
	DefaultTTL             = 30 * time.Minute
)

// TotalChunks is the number of chunks a file of size bytes splits into.
func TotalChunks(size, chunkSize int64) int {
	if size <= 0 || chunkSize <= 0 {
		return 0
	}
	return int((size + chunkSize - 1) / chunkSize)
}

type UnknownUploadError struct {
	ID string
}

func (e UnknownUploadError) Error() string {
	return fmt.Sprintf("unknown upload: %s", e.ID)
}

type OutOfOrderChunkError struct {
	ID   string
	Want int
	Got  int
}

func (e OutOfOrderChunkError) Error() string {
	return fmt.Sprintf("upload %s: expected chunk %d, got %d", e.ID, e.Want, e.Got)
}

type ChunkSizeError struct {
	ID    string
	Index int
	Want  int64
	Got   int64
}

func (e ChunkSizeError) Error() string {
	return fmt.Sprintf("upload %s chunk %d: expected %d bytes, got %d", e.ID, e.Index, e.Want, e.Got)
}

type IncompleteUploadError struct {
	ID       string
	Received int
	Total    int
}

func (e IncompleteUploadError) Error() string {
	return fmt.Sprintf("upload %s: %d of %d chunks received", e.ID, e.Received, e.Total)
}

// Session is the public view of an in-flight upload.
type Session struct {
	ID          string           `json:"uploadId"`
	Filename    string           `json:"filename"`
	SizeBytes   int64            `json:"sizeBytes"`
	ChunkSize   int64            `json:"chunkSize"`
	TotalChunks int              `json:"totalChunks"`
	Received    int              `json:"received"`
	ParentType  model.ParentType `json:"parentType"`
	ParentID    string           `json:"parentId"`
}

type session struct {
	Session
	userID   string
	spool    *os.File
	path     string
	hash     hash.Hash
	written  int64
	deadline time.Time
}

// Config sets up a Manager. Zero fields take defaults.
type Config struct {
	Store     store.Store
	ChunkSize int64
	MaxBytes  int64
	TTL       time.Duration
}

// Manager owns the staging directory and all in-flight sessions.
type Manager struct {
	st        store.Store
	dir       string
	chunkSize int64
	maxBytes  int64
	ttl       time.Duration

	mu       sync.Mutex
	sessions map[string]*session

	done      chan struct{}
	closeOnce sync.Once
}

func NewManager(cfg Config) (*Manager, error) {
	if strings.TrimSpace(cfg.Store.Dir) == "" {
		return nil, errors.New("upload: missing store dir")
	}
	m := &Manager{
		st:        cfg.Store,
		dir:       filepath.Join(cfg.Store.Dir, "uploads"),
		chunkSize: cfg.ChunkSize,
		maxBytes:  cfg.MaxBytes,
		ttl:       cfg.TTL,
		sessions:  map[string]*session{},
		done:      make(chan struct{}),
	}
	if m.chunkSize <= 0 {
		m.chunkSize = DefaultChunkSize
	}
	if m.maxBytes <= 0 {
		m.maxBytes = store.DefaultAttachmentMaxBytes
	}
	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, err
	}
	go m.janitor()
	return m, nil
}

// Close stops the janitor and aborts every in-flight session.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		m.dropLocked(s)
	}
	return nil
}

// Initiate opens a session for one file and returns its chunking plan.
func (m *Manager) Initiate(userID, filename string, size int64, parentType model.ParentType, parentID string) (Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Session{}, errors.New("upload: missing user id")
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return Session{}, errors.New("upload: missing filename")
	}
	if _, err := model.ParseParentType(string(parentType)); err != nil {
		return Session{}, err
	}
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return Session{}, errors.New("upload: missing parent id")
	}
	if size < 0 {
		return Session{}, fmt.Errorf("upload: negative size %d", size)
	}
	if size > m.maxBytes {
		return Session{}, fmt.Errorf("upload: file too large (%d bytes > %d bytes)", size, m.maxBytes)
	}

	id := store.NewID()
	path := filepath.Join(m.dir, id+".part")
	spool, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return Session{}, err
	}

	s := &session{
		Session: Session{
			ID:          id,
			Filename:    filename,
			SizeBytes:   size,
			ChunkSize:   m.chunkSize,
			TotalChunks: TotalChunks(size, m.chunkSize),
			ParentType:  parentType,
			ParentID:    parentID,
		},
		userID:   userID,
		spool:    spool,
		path:     path,
		hash:     sha256.New(),
		deadline: time.Now().UTC().Add(m.ttl),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	return s.Session, nil
}

// UploadChunk appends one chunk. Chunks are accepted only at the next
// expected index; a replayed, skipped, or mis-sized chunk fails without
// touching the spool.
func (m *Manager) UploadChunk(userID, uploadID string, index int, data []byte) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.sessionLocked(userID, uploadID)
	if err != nil {
		return Session{}, err
	}
	if index != s.Received {
		return Session{}, OutOfOrderChunkError{ID: s.ID, Want: s.Received, Got: index}
	}
	if want := s.chunkWant(index); int64(len(data)) != want {
		return Session{}, ChunkSizeError{ID: s.ID, Index: index, Want: want, Got: int64(len(data))}
	}

	if _, err := s.spool.Write(data); err != nil {
		return Session{}, err
	}
	s.hash.Write(data)
	s.written += int64(len(data))
	s.Received++
	s.deadline = time.Now().UTC().Add(m.ttl)
	return s.Session, nil
}

// Complete assembles the staged file into an attachment record on db.
// The caller saves db and appends the upload event.
func (m *Manager) Complete(db *store.DB, userID, uploadID string) (model.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.sessionLocked(userID, uploadID)
	if err != nil {
		return model.Attachment{}, err
	}
	if s.Received != s.TotalChunks {
		return model.Attachment{}, IncompleteUploadError{ID: s.ID, Received: s.Received, Total: s.TotalChunks}
	}
	if s.written != s.SizeBytes {
		return model.Attachment{}, fmt.Errorf("upload %s: wrote %d bytes, expected %d", s.ID, s.written, s.SizeBytes)
	}
	if err := s.spool.Close(); err != nil {
		return model.Attachment{}, err
	}

	sum := hex.EncodeToString(s.hash.Sum(nil))
	a, err := m.st.AdoptFile(db, s.userID, s.ParentType, s.ParentID, s.Filename, s.path, s.SizeBytes, sum)
	if err != nil {
		return model.Attachment{}, err
	}
	delete(m.sessions, s.ID)
	return a, nil
}

// Abort discards a session and its spool file.
func (m *Manager) Abort(userID, uploadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.sessionLocked(userID, uploadID)
	if err != nil {
		return err
	}
	m.dropLocked(s)
	return nil
}

// Session reports the current state of an upload.
func (m *Manager) Session(userID, uploadID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.sessionLocked(userID, uploadID)
	if err != nil {
		return Session{}, err
	}
	return s.Session, nil
}

func (m *Manager) sessionLocked(userID, uploadID string) (*session, error) {
	s, ok := m.sessions[strings.TrimSpace(uploadID)]
	if !ok || s.userID != strings.TrimSpace(userID) {
		// Foreign sessions read as unknown so ids do not leak.
		return nil, UnknownUploadError{ID: strings.TrimSpace(uploadID)}
	}
	return s, nil
}

func (s *session) chunkWant(index int) int64 {
	if index == s.TotalChunks-1 {
		return s.SizeBytes - int64(s.TotalChunks-1)*s.ChunkSize
	}
	return s.ChunkSize
}

func (m *Manager) dropLocked(s *session) {
	_ = s.spool.Close()
	_ = os.Remove(s.path)
	delete(m.sessions, s.ID)
}

// sweep prunes sessions idle past their deadline.
func (m *Manager) sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if now.After(s.deadline) {
			m.dropLocked(s)
			n++
		}
	}
	return n
}

func (m *Manager) janitor() {
	every := m.ttl / 4
	if every < time.Second {
		every = time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-m.done:
			return
		case now := <-t.C:
			m.sweep(now)
		}
	}
}
