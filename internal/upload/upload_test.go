package upload

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"testing"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/store"
)

func newTestManager(t *testing.T, chunkSize int64) (*Manager, store.Store) {
	t.Helper()
	st := store.Store{Dir: t.TempDir()}
	m, err := NewManager(Config{Store: st, ChunkSize: chunkSize})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m, st
}

func TestTotalChunks(t *testing.T) {
	cases := []struct {
		size, chunk int64
		want        int
	}{
		{0, 4, 0},
		{1, 4, 1},
		{4, 4, 1},
		{5, 4, 2},
		{8, 4, 2},
		{10, 4, 3},
	}
	for _, c := range cases {
		if got := TotalChunks(c.size, c.chunk); got != c.want {
			t.Fatalf("TotalChunks(%d, %d) = %d, want %d", c.size, c.chunk, got, c.want)
		}
	}
}

func TestUploadRoundTrip(t *testing.T) {
	m, st := newTestManager(t, 4)
	db := &store.DB{Version: 1}
	payload := []byte("0123456789") // 10 bytes, 3 chunks of 4+4+2

	s, err := m.Initiate("user-1", "notes.txt", int64(len(payload)), model.ParentTypeTask, "task-1")
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if s.TotalChunks != 3 || s.ChunkSize != 4 {
		t.Fatalf("plan = %d chunks of %d, want 3 of 4", s.TotalChunks, s.ChunkSize)
	}

	for i := 0; i < 3; i++ {
		end := (i + 1) * 4
		if end > len(payload) {
			end = len(payload)
		}
		s, err = m.UploadChunk("user-1", s.ID, i, payload[i*4:end])
		if err != nil {
			t.Fatalf("chunk %d: %v", i, err)
		}
		if s.Received != i+1 {
			t.Fatalf("received = %d after chunk %d", s.Received, i)
		}
	}

	a, err := m.Complete(db, "user-1", s.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if a.SizeBytes != 10 || a.Filename != "notes.txt" || a.ParentID != "task-1" {
		t.Fatalf("attachment = %+v", a)
	}
	sum := sha256.Sum256(payload)
	if a.SHA256 != hex.EncodeToString(sum[:]) {
		t.Fatalf("sha256 = %s, want digest of payload", a.SHA256)
	}
	got, err := os.ReadFile(st.AttachmentAbsPath(a))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("stored bytes = %q, want %q", got, payload)
	}
	if len(db.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(db.Attachments))
	}
	if _, err := m.Session("user-1", s.ID); err == nil {
		t.Fatalf("session should be gone after complete")
	}
}

func TestUploadChunkRejectsOutOfOrder(t *testing.T) {
	m, _ := newTestManager(t, 4)

	s, err := m.Initiate("user-1", "a.bin", 10, model.ParentTypeTask, "task-1")
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	// Skipping ahead fails before anything is written.
	_, err = m.UploadChunk("user-1", s.ID, 1, []byte("abcd"))
	var ooo OutOfOrderChunkError
	if !errors.As(err, &ooo) || ooo.Want != 0 || ooo.Got != 1 {
		t.Fatalf("err = %v, want out-of-order {0,1}", err)
	}

	if _, err := m.UploadChunk("user-1", s.ID, 0, []byte("abcd")); err != nil {
		t.Fatalf("chunk 0: %v", err)
	}

	// Replaying an accepted index fails the same way.
	_, err = m.UploadChunk("user-1", s.ID, 0, []byte("abcd"))
	if !errors.As(err, &ooo) || ooo.Want != 1 || ooo.Got != 0 {
		t.Fatalf("err = %v, want out-of-order {1,0}", err)
	}

	// The failure did not consume the slot; the expected index still works.
	if _, err := m.UploadChunk("user-1", s.ID, 1, []byte("efgh")); err != nil {
		t.Fatalf("chunk 1 after replay: %v", err)
	}
}

func TestUploadChunkRejectsWrongSize(t *testing.T) {
	m, _ := newTestManager(t, 4)

	s, err := m.Initiate("user-1", "a.bin", 10, model.ParentTypeTask, "task-1")
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	_, err = m.UploadChunk("user-1", s.ID, 0, []byte("ab"))
	var cse ChunkSizeError
	if !errors.As(err, &cse) || cse.Want != 4 || cse.Got != 2 {
		t.Fatalf("err = %v, want chunk-size {4,2}", err)
	}

	for i, data := range [][]byte{[]byte("abcd"), []byte("efgh")} {
		if _, err := m.UploadChunk("user-1", s.ID, i, data); err != nil {
			t.Fatalf("chunk %d: %v", i, err)
		}
	}

	// The final chunk carries the remainder, not a full chunk.
	_, err = m.UploadChunk("user-1", s.ID, 2, []byte("ijkl"))
	if !errors.As(err, &cse) || cse.Want != 2 || cse.Got != 4 {
		t.Fatalf("err = %v, want chunk-size {2,4}", err)
	}
	if _, err := m.UploadChunk("user-1", s.ID, 2, []byte("ij")); err != nil {
		t.Fatalf("final chunk: %v", err)
	}
}

func TestCompleteRequiresAllChunks(t *testing.T) {
	m, _ := newTestManager(t, 4)
	db := &store.DB{Version: 1}

	s, err := m.Initiate("user-1", "a.bin", 10, model.ParentTypeTask, "task-1")
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if _, err := m.UploadChunk("user-1", s.ID, 0, []byte("abcd")); err != nil {
		t.Fatalf("chunk 0: %v", err)
	}

	_, err = m.Complete(db, "user-1", s.ID)
	var inc IncompleteUploadError
	if !errors.As(err, &inc) || inc.Received != 1 || inc.Total != 3 {
		t.Fatalf("err = %v, want incomplete {1,3}", err)
	}
	if len(db.Attachments) != 0 {
		t.Fatalf("no attachment should exist yet")
	}

	for i, data := range [][]byte{[]byte("efgh"), []byte("ij")} {
		if _, err := m.UploadChunk("user-1", s.ID, i+1, data); err != nil {
			t.Fatalf("chunk %d: %v", i+1, err)
		}
	}
	if _, err := m.Complete(db, "user-1", s.ID); err != nil {
		t.Fatalf("Complete after all chunks: %v", err)
	}
}

func TestInitiateValidates(t *testing.T) {
	m, _ := newTestManager(t, 4)

	if _, err := m.Initiate("user-1", "", 4, model.ParentTypeTask, "task-1"); err == nil {
		t.Fatalf("empty filename accepted")
	}
	if _, err := m.Initiate("user-1", "a.bin", -1, model.ParentTypeTask, "task-1"); err == nil {
		t.Fatalf("negative size accepted")
	}
	if _, err := m.Initiate("user-1", "a.bin", 4, model.ParentType("folder"), "x"); err == nil {
		t.Fatalf("bad parent type accepted")
	}
	if _, err := m.Initiate("user-1", "a.bin", 4, model.ParentTypeTask, ""); err == nil {
		t.Fatalf("empty parent accepted")
	}

	small, err := NewManager(Config{Store: store.Store{Dir: t.TempDir()}, ChunkSize: 4, MaxBytes: 8})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer small.Close()
	if _, err := small.Initiate("user-1", "a.bin", 9, model.ParentTypeTask, "task-1"); err == nil {
		t.Fatalf("oversize accepted")
	}
}

func TestForeignSessionReadsAsUnknown(t *testing.T) {
	m, _ := newTestManager(t, 4)

	s, err := m.Initiate("user-1", "a.bin", 4, model.ParentTypeTask, "task-1")
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	_, err = m.UploadChunk("user-2", s.ID, 0, []byte("abcd"))
	var unk UnknownUploadError
	if !errors.As(err, &unk) || unk.ID != s.ID {
		t.Fatalf("err = %v, want unknown upload", err)
	}
	if err := m.Abort("user-2", s.ID); !errors.As(err, &unk) {
		t.Fatalf("abort err = %v, want unknown upload", err)
	}
}

func TestAbortRemovesSpool(t *testing.T) {
	m, _ := newTestManager(t, 4)

	s, err := m.Initiate("user-1", "a.bin", 10, model.ParentTypeTask, "task-1")
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if _, err := m.UploadChunk("user-1", s.ID, 0, []byte("abcd")); err != nil {
		t.Fatalf("chunk 0: %v", err)
	}

	m.mu.Lock()
	path := m.sessions[s.ID].path
	m.mu.Unlock()

	if err := m.Abort("user-1", s.ID); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("spool still on disk: %v", err)
	}
	var unk UnknownUploadError
	if err := m.Abort("user-1", s.ID); !errors.As(err, &unk) {
		t.Fatalf("second abort err = %v, want unknown upload", err)
	}
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	m, _ := newTestManager(t, 4)

	s, err := m.Initiate("user-1", "a.bin", 4, model.ParentTypeTask, "task-1")
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	if n := m.sweep(time.Now().UTC()); n != 0 {
		t.Fatalf("fresh session swept")
	}
	if n := m.sweep(time.Now().UTC().Add(2 * DefaultTTL)); n != 1 {
		t.Fatalf("swept %d sessions, want 1", n)
	}
	if _, err := m.Session("user-1", s.ID); err == nil {
		t.Fatalf("expired session still resolvable")
	}
}

func TestEmptyFileUpload(t *testing.T) {
	m, _ := newTestManager(t, 4)
	db := &store.DB{Version: 1}

	s, err := m.Initiate("user-1", "empty.txt", 0, model.ParentTypeJournalEntry, "jrn-1")
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if s.TotalChunks != 0 {
		t.Fatalf("total chunks = %d, want 0", s.TotalChunks)
	}
	a, err := m.Complete(db, "user-1", s.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if a.SizeBytes != 0 {
		t.Fatalf("size = %d, want 0", a.SizeBytes)
	}
}
