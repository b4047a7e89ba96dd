package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aurum-life/internal/model"
)

const DefaultAttachmentMaxBytes int64 = 50 * 1024 * 1024 // 50MB

func (s Store) attachmentsDir() string {
	return filepath.Join(s.Dir, "resources", "attachments")
}

func (s Store) attachmentFilePath(a model.Attachment) string {
	return filepath.Join(s.Dir, filepath.FromSlash(strings.TrimSpace(a.Path)))
}

func (s Store) AttachmentAbsPath(a model.Attachment) string {
	return s.attachmentFilePath(a)
}

// ClassifyFile buckets a filename by extension. The bucket picks the
// subdirectory under resources/attachments.
func ClassifyFile(filename string) model.FileClass {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".pdf", ".doc", ".docx", ".txt", ".md", ".rtf", ".odt", ".xls", ".xlsx", ".csv", ".ppt", ".pptx":
		return model.FileClassDocuments
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".bmp", ".heic":
		return model.FileClassImages
	case ".zip", ".tar", ".gz", ".tgz", ".rar", ".7z", ".bz2", ".xz":
		return model.FileClassArchives
	default:
		return model.FileClassOther
	}
}

func guessMimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}

// sanitizeFilename reduces a client-supplied name to a bare file name that
// is safe to join under the attachments dir.
func sanitizeFilename(name string) string {
	name = filepath.Base(filepath.Clean(strings.TrimSpace(name)))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "attachment"
	}
	return name
}

// AddAttachment copies the file at srcPath into the store and appends the
// record to db. The caller saves db afterwards.
func (s Store) AddAttachment(db *DB, userID string, parentType model.ParentType, parentID string, srcPath string, maxBytes int64) (model.Attachment, error) {
	if db == nil {
		return model.Attachment{}, errors.New("nil db")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.Attachment{}, errors.New("missing user id")
	}
	if _, err := model.ParseParentType(string(parentType)); err != nil {
		return model.Attachment{}, err
	}
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return model.Attachment{}, errors.New("missing parent id")
	}
	srcPath = filepath.Clean(strings.TrimSpace(srcPath))
	if srcPath == "" {
		return model.Attachment{}, errors.New("missing source path")
	}
	st, err := os.Stat(srcPath)
	if err != nil {
		return model.Attachment{}, err
	}
	if st.IsDir() {
		return model.Attachment{}, errors.New("attachments: source path is a directory")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultAttachmentMaxBytes
	}
	if st.Size() > maxBytes {
		return model.Attachment{}, fmt.Errorf("attachments: file too large (%d bytes > %d bytes)", st.Size(), maxBytes)
	}

	name := sanitizeFilename(filepath.Base(srcPath))
	class := ClassifyFile(name)
	id := NewID()
	destDir := filepath.Join(s.attachmentsDir(), string(class), id)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return model.Attachment{}, err
	}
	destPath := filepath.Join(destDir, name)

	in, err := os.Open(srcPath)
	if err != nil {
		return model.Attachment{}, err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return model.Attachment{}, err
	}
	defer func() { _ = out.Close() }()

	h := sha256.New()
	w := io.MultiWriter(out, h)
	n, err := io.Copy(w, io.LimitReader(in, maxBytes+1))
	if err != nil {
		return model.Attachment{}, err
	}
	if n > maxBytes {
		return model.Attachment{}, fmt.Errorf("attachments: file too large (%d bytes > %d bytes)", n, maxBytes)
	}

	a := model.Attachment{
		ID:         id,
		UserID:     userID,
		ParentType: parentType,
		ParentID:   parentID,
		Filename:   name,
		MimeType:   guessMimeType(name),
		SizeBytes:  n,
		SHA256:     hex.EncodeToString(h.Sum(nil)),
		Class:      class,
		Path:       filepath.ToSlash(filepath.Join("resources", "attachments", string(class), id, name)),
		CreatedAt:  time.Now().UTC(),
	}

	db.Attachments = append(db.Attachments, a)
	db.MarkDirty()
	return a, nil
}

// AdoptFile moves an already staged file (an assembled upload) into the
// attachments layout without re-reading it. Size and sha256 were computed
// while the file was written.
func (s Store) AdoptFile(db *DB, userID string, parentType model.ParentType, parentID string, filename string, stagedPath string, sizeBytes int64, sha256Hex string) (model.Attachment, error) {
	if db == nil {
		return model.Attachment{}, errors.New("nil db")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.Attachment{}, errors.New("missing user id")
	}
	if _, err := model.ParseParentType(string(parentType)); err != nil {
		return model.Attachment{}, err
	}
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return model.Attachment{}, errors.New("missing parent id")
	}

	name := sanitizeFilename(filename)
	class := ClassifyFile(name)
	id := NewID()
	destDir := filepath.Join(s.attachmentsDir(), string(class), id)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return model.Attachment{}, err
	}
	destPath := filepath.Join(destDir, name)
	if err := os.Rename(stagedPath, destPath); err != nil {
		// Staging may live on another filesystem; fall back to a copy.
		if err2 := copyStagedFile(stagedPath, destPath); err2 != nil {
			return model.Attachment{}, err
		}
		_ = os.Remove(stagedPath)
	}

	a := model.Attachment{
		ID:         id,
		UserID:     userID,
		ParentType: parentType,
		ParentID:   parentID,
		Filename:   name,
		MimeType:   guessMimeType(name),
		SizeBytes:  sizeBytes,
		SHA256:     strings.TrimSpace(sha256Hex),
		Class:      class,
		Path:       filepath.ToSlash(filepath.Join("resources", "attachments", string(class), id, name)),
		CreatedAt:  time.Now().UTC(),
	}

	db.Attachments = append(db.Attachments, a)
	db.MarkDirty()
	return a, nil
}

// copyStagedFile is the cross-filesystem fallback when renaming a spool
// file fails. The destination dir was just created for this attachment,
// so the target must not exist yet.
func copyStagedFile(src, dest string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// RemoveAttachmentFile deletes the stored file and its id directory.
// Missing files are not an error; the record may outlive a manually
// cleaned disk.
func (s Store) RemoveAttachmentFile(a model.Attachment) error {
	if strings.TrimSpace(a.Path) == "" {
		return nil
	}
	path := s.attachmentFilePath(a)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	// Remove the per-attachment dir if now empty.
	_ = os.Remove(filepath.Dir(path))
	return nil
}
