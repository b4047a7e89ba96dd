package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"aurum-life/internal/model"
)

// Backups are full JSON exports of the snapshot, one file per backup under
// <dir>/backups. JSON rather than a copy of the SQLite file so a backup can
// be inspected, diffed, and restored across schema migrations.

type BackupInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s Store) BackupsDir() string {
	return filepath.Join(s.Dir, "backups")
}

// CreateBackup writes db to a timestamped export file and returns its path.
func (s Store) CreateBackup(db *DB) (string, error) {
	if db == nil {
		return "", errors.New("nil db")
	}
	if err := os.MkdirAll(s.BackupsDir(), 0o755); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return "", err
	}
	stamp := time.Now().UTC().Format("20060102-150405.000")
	name := fmt.Sprintf("aurum-%s.json", stamp)
	path := filepath.Join(s.BackupsDir(), name)
	// Same-instant backups get a sequence suffix instead of overwriting.
	for i := 2; ; i++ {
		if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
			break
		}
		name = fmt.Sprintf("aurum-%s-%d.json", stamp, i)
		path = filepath.Join(s.BackupsDir(), name)
	}
	if err := atomicWrite(path, b, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// ReadBackup loads an export file. The caller decides whether to Save it
// over the live snapshot.
func (s Store) ReadBackup(path string) (*DB, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var db DB
	if err := json.Unmarshal(b, &db); err != nil {
		return nil, fmt.Errorf("parse backup %s: %w", filepath.Base(path), err)
	}
	if db.Version > CurrentVersion {
		return nil, fmt.Errorf("backup version %d is newer than supported %d", db.Version, CurrentVersion)
	}
	if db.Version == 0 {
		db.Version = CurrentVersion
	}
	if db.Users == nil {
		db.Users = []model.User{}
	}
	if db.Pillars == nil {
		db.Pillars = []model.Pillar{}
	}
	if db.Areas == nil {
		db.Areas = []model.Area{}
	}
	if db.Projects == nil {
		db.Projects = []model.Project{}
	}
	if db.Tasks == nil {
		db.Tasks = []model.Task{}
	}
	if db.Attachments == nil {
		db.Attachments = []model.Attachment{}
	}
	return &db, nil
}

func (s Store) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.BackupsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []BackupInfo{}, nil
		}
		return nil, err
	}
	var out []BackupInfo
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		if !strings.HasPrefix(name, "aurum-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		out = append(out, BackupInfo{
			Name:      name,
			Path:      filepath.Join(s.BackupsDir(), name),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime().UTC(),
		})
	}
	// Newest first; mod time rather than name so oddly-named leftovers
	// still sort sensibly.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Name > out[j].Name
	})
	if out == nil {
		out = []BackupInfo{}
	}
	return out, nil
}

// PruneBackups deletes all but the newest keep backups and reports how many
// were removed.
func (s Store) PruneBackups(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	backups, err := s.ListBackups()
	if err != nil {
		return 0, err
	}
	removed := 0
	for i := keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
