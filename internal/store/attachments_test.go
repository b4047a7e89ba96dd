package store

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aurum-life/internal/model"
)

func TestClassifyFile(t *testing.T) {
	cases := map[string]model.FileClass{
		"plan.PDF":     model.FileClassDocuments,
		"photo.jpeg":   model.FileClassImages,
		"bundle.tar":   model.FileClassArchives,
		"mystery.qcow": model.FileClassOther,
		"no-extension": model.FileClassOther,
	}
	for name, want := range cases {
		if got := ClassifyFile(name); got != want {
			t.Fatalf("ClassifyFile(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestAddAttachment_CopiesClassifiesAndHashes(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	db := NewDB()
	db.Users = []model.User{{ID: "user-a", Email: "a@example.com"}}

	src := filepath.Join(t.TempDir(), "notes.md")
	content := []byte("# training plan\n")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	a, err := s.AddAttachment(db, "user-a", model.ParentTypeTask, "task-1", src, 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if a.Class != model.FileClassDocuments {
		t.Fatalf("class = %q", a.Class)
	}
	if a.SizeBytes != int64(len(content)) {
		t.Fatalf("size = %d", a.SizeBytes)
	}
	sum := sha256.Sum256(content)
	if a.SHA256 != hex.EncodeToString(sum[:]) {
		t.Fatalf("sha256 mismatch: %s", a.SHA256)
	}
	if !strings.HasPrefix(a.Path, "resources/attachments/documents/") {
		t.Fatalf("path = %q", a.Path)
	}

	b, err := os.ReadFile(s.AttachmentAbsPath(a))
	if err != nil {
		t.Fatalf("read stored copy: %v", err)
	}
	if string(b) != string(content) {
		t.Fatalf("stored copy differs")
	}
	if len(db.Attachments) != 1 {
		t.Fatalf("record not appended")
	}
}

func TestAddAttachment_RejectsOversizedFile(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	db := NewDB()

	src := filepath.Join(t.TempDir(), "big.bin")
	if err := os.WriteFile(src, make([]byte, 32), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if _, err := s.AddAttachment(db, "user-a", model.ParentTypeTask, "task-1", src, 16); err == nil {
		t.Fatalf("expected size error")
	}
}

func TestAdoptFile_MovesStagedUpload(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	db := NewDB()

	staged := filepath.Join(s.Dir, "staged.part")
	content := []byte("chunked payload")
	if err := os.WriteFile(staged, content, 0o600); err != nil {
		t.Fatalf("write staged: %v", err)
	}
	sum := sha256.Sum256(content)

	a, err := s.AdoptFile(db, "user-a", model.ParentTypeProject, "proj-1", "../../evil.zip", staged, int64(len(content)), hex.EncodeToString(sum[:]))
	if err != nil {
		t.Fatalf("adopt: %v", err)
	}
	if a.Filename != "evil.zip" {
		t.Fatalf("filename not sanitized: %q", a.Filename)
	}
	if a.Class != model.FileClassArchives {
		t.Fatalf("class = %q", a.Class)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Fatalf("staged file should be gone")
	}
	if _, err := os.Stat(s.AttachmentAbsPath(a)); err != nil {
		t.Fatalf("stored file: %v", err)
	}
}

func TestRemoveAttachmentFile(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	db := NewDB()

	src := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(src, []byte("png"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	a, err := s.AddAttachment(db, "user-a", model.ParentTypeTask, "task-1", src, 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.RemoveAttachmentFile(a); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(s.AttachmentAbsPath(a)); !os.IsNotExist(err) {
		t.Fatalf("file should be gone")
	}
	// Second remove is a no-op.
	if err := s.RemoveAttachmentFile(a); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}
