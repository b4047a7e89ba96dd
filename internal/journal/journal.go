// Package journal stores freeform entries outside the entity snapshot.
//
// Entries live one file each in a diskv tree keyed by month, so a year of
// daily writing never bloats the snapshot save path. Keys look like
// base64(month)-YYYY-MM-DD-id and map to nested directories on disk.
package journal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/peterbourgon/diskv/v3"

	"aurum-life/internal/model"
)

const (
	layoutMonth = "2006-01"
	layoutDay   = "2006-01-02"
)

type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("journal entry not found: %s", e.ID)
}

// Store persists journal entries under one base directory.
type Store struct {
	d   *diskv.Diskv
	dir string
}

func Open(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("journal: missing dir")
	}
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		dir: dir,
	}, nil
}

// MonthOf is the collection an entry created at t belongs to.
func MonthOf(t time.Time) string {
	return t.UTC().Format(layoutMonth)
}

// Add fills in the entry's id and timestamps and writes it.
func (s *Store) Add(e *model.JournalEntry) error {
	if e == nil {
		return errors.New("journal: nil entry")
	}
	e.UserID = strings.TrimSpace(e.UserID)
	if e.UserID == "" {
		return errors.New("journal: missing user id")
	}
	if err := validateTitle(e.Title); err != nil {
		return err
	}
	e.Title = strings.TrimSpace(e.Title)
	mood, err := model.ParseMood(string(e.Mood))
	if err != nil {
		return err
	}
	e.Mood = mood
	e.Tags = cleanTags(e.Tags)

	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	if e.ID == "" {
		id, err := newEntryID()
		if err != nil {
			return err
		}
		e.ID = id
	}
	return s.write(*e)
}

// Get returns one entry owned by userID.
func (s *Store) Get(ctx context.Context, userID, id string) (*model.JournalEntry, error) {
	id = strings.TrimSpace(id)
	userID = strings.TrimSpace(userID)
	if id == "" {
		return nil, NotFoundError{ID: id}
	}
	for key := range s.d.Keys(ctx.Done()) {
		if !strings.HasSuffix(key, "-"+id) {
			continue
		}
		e, err := s.read(key)
		if err != nil {
			return nil, err
		}
		if e.UserID != userID {
			// Foreign entries read as missing so ids do not leak.
			return nil, NotFoundError{ID: id}
		}
		return e, nil
	}
	return nil, NotFoundError{ID: id}
}

// Update rewrites title, content, mood, and tags. The creation time, and
// with it the entry's month and key, never moves.
func (s *Store) Update(ctx context.Context, e *model.JournalEntry) error {
	if e == nil {
		return errors.New("journal: nil entry")
	}
	prev, err := s.Get(ctx, e.UserID, e.ID)
	if err != nil {
		return err
	}
	if err := validateTitle(e.Title); err != nil {
		return err
	}
	e.Title = strings.TrimSpace(e.Title)
	mood, err := model.ParseMood(string(e.Mood))
	if err != nil {
		return err
	}
	e.Mood = mood
	e.Tags = cleanTags(e.Tags)
	e.CreatedAt = prev.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	return s.write(*e)
}

// Delete removes one entry owned by userID.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	e, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.d.Erase(entryKey(*e))
}

// List returns userID's entries for one month (YYYY-MM), newest first.
func (s *Store) List(ctx context.Context, userID, month string) ([]model.JournalEntry, error) {
	month = strings.TrimSpace(month)
	if _, err := time.Parse(layoutMonth, month); err != nil {
		return nil, model.ValidationError{Field: "month", Msg: "must look like 2026-08"}
	}
	prefix := toCollection(month) + "-"
	return s.collect(ctx, userID, func(key string) bool {
		return strings.HasPrefix(key, prefix)
	}, nil)
}

// ListAll returns every entry owned by userID, newest first.
func (s *Store) ListAll(ctx context.Context, userID string) ([]model.JournalEntry, error) {
	return s.collect(ctx, userID, nil, nil)
}

// Search matches query case-insensitively against title, content, and
// tags. An empty query matches everything.
func (s *Store) Search(ctx context.Context, userID, query string) ([]model.JournalEntry, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.ListAll(ctx, userID)
	}
	return s.collect(ctx, userID, nil, func(e model.JournalEntry) bool {
		if strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Content), q) {
			return true
		}
		for _, tag := range e.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
}

// Moods counts userID's entries per mood.
func (s *Store) Moods(ctx context.Context, userID string) (map[model.Mood]int, error) {
	all, err := s.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	hist := map[model.Mood]int{}
	for _, e := range all {
		hist[e.Mood]++
	}
	return hist, nil
}

// Months lists the collections with at least one entry for userID, oldest
// first.
func (s *Store) Months(ctx context.Context, userID string) ([]string, error) {
	all, err := s.collect(ctx, userID, nil, nil)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	months := []string{}
	for _, e := range all {
		m := MonthOf(e.CreatedAt)
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sort.Strings(months)
	return months, nil
}

func (s *Store) collect(ctx context.Context, userID string, keyOK func(string) bool, entryOK func(model.JournalEntry) bool) ([]model.JournalEntry, error) {
	userID = strings.TrimSpace(userID)
	all := []model.JournalEntry{}
	for key := range s.d.Keys(ctx.Done()) {
		if keyOK != nil && !keyOK(key) {
			continue
		}
		e, err := s.read(key)
		if err != nil {
			// A half-written or foreign file must not hide the rest.
			continue
		}
		if e.UserID != userID {
			continue
		}
		if entryOK != nil && !entryOK(*e) {
			continue
		}
		all = append(all, *e)
	}
	sortEntries(all)
	return all, nil
}

func (s *Store) write(e model.JournalEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.d.Write(entryKey(e), data)
}

func (s *Store) read(key string) (*model.JournalEntry, error) {
	val, err := s.d.Read(key)
	if err != nil {
		return nil, err
	}
	e := model.JournalEntry{}
	if err := json.Unmarshal(val, &e); err != nil {
		return nil, err
	}
	if e.ID == "" {
		e.ID = keyToPathTransform(key).FileName
	}
	return &e, nil
}

func sortEntries(entries []model.JournalEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		lt, rt := entries[i].CreatedAt, entries[j].CreatedAt
		if lt.Equal(rt) {
			return entries[i].ID < entries[j].ID
		}
		return lt.After(rt)
	})
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.ValidationError{Field: "title", Msg: "required"}
	}
	if utf8.RuneCountInString(title) > model.MaxNameLength {
		return model.ValidationError{Field: "title", Msg: fmt.Sprintf("longer than %d characters", model.MaxNameLength)}
	}
	return nil
}

func cleanTags(tags []string) []string {
	out := tags[:0]
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// newEntryID makes a short dash-free id; the key format splits on dashes.
func newEntryID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// entryKey makes `base64(month)-date-id`.
func entryKey(e model.JournalEntry) string {
	return fmt.Sprintf("%s-%s-%s", toCollection(MonthOf(e.CreatedAt)), e.CreatedAt.UTC().Format(layoutDay), e.ID)
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

func toCollection(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func fromCollection(s string) string {
	month, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return ""
	}
	return string(month)
}
