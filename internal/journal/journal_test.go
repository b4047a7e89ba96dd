package journal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"aurum-life/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func addEntry(t *testing.T, s *Store, userID, title, content string, mood model.Mood, created time.Time, tags ...string) model.JournalEntry {
	t.Helper()
	e := model.JournalEntry{
		UserID:    userID,
		Title:     title,
		Content:   content,
		Mood:      mood,
		Tags:      tags,
		CreatedAt: created,
	}
	if err := s.Add(&e); err != nil {
		t.Fatalf("Add %q: %v", title, err)
	}
	return e
}

func TestAddAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := model.JournalEntry{
		UserID:  "user-1",
		Title:   "  Morning pages  ",
		Content: "Slept well, ran 5k.",
		Tags:    []string{" running ", ""},
	}
	if err := s.Add(&e); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if e.ID == "" || strings.Contains(e.ID, "-") {
		t.Fatalf("id = %q, want non-empty without dashes", e.ID)
	}
	if e.Title != "Morning pages" {
		t.Fatalf("title = %q, want trimmed", e.Title)
	}
	if e.Mood != model.MoodReflective {
		t.Fatalf("mood = %q, want default reflective", e.Mood)
	}
	if len(e.Tags) != 1 || e.Tags[0] != "running" {
		t.Fatalf("tags = %v, want [running]", e.Tags)
	}
	if e.CreatedAt.IsZero() || e.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", e)
	}

	got, err := s.Get(ctx, "user-1", e.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != e.Title || got.Content != e.Content {
		t.Fatalf("got = %+v, want %+v", got, e)
	}

	var nfe NotFoundError
	if _, err := s.Get(ctx, "user-2", e.ID); !errors.As(err, &nfe) {
		t.Fatalf("foreign get err = %v, want not found", err)
	}
	if _, err := s.Get(ctx, "user-1", "nope"); !errors.As(err, &nfe) {
		t.Fatalf("unknown get err = %v, want not found", err)
	}
}

func TestAddValidates(t *testing.T) {
	s := newTestStore(t)

	if err := s.Add(&model.JournalEntry{Title: "No owner"}); err == nil {
		t.Fatalf("missing user accepted")
	}
	if err := s.Add(&model.JournalEntry{UserID: "user-1", Title: "   "}); err == nil {
		t.Fatalf("blank title accepted")
	}
	long := strings.Repeat("x", model.MaxNameLength+1)
	if err := s.Add(&model.JournalEntry{UserID: "user-1", Title: long}); err == nil {
		t.Fatalf("oversize title accepted")
	}
	if err := s.Add(&model.JournalEntry{UserID: "user-1", Title: "Hm", Mood: "grumpy"}); err == nil {
		t.Fatalf("unknown mood accepted")
	}
}

func TestListByMonth(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	jul := time.Date(2026, 7, 10, 9, 0, 0, 0, time.UTC)
	aug1 := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	aug2 := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)
	addEntry(t, s, "user-1", "July entry", "", "", jul)
	addEntry(t, s, "user-1", "Early August", "", "", aug1)
	addEntry(t, s, "user-1", "Mid August", "", "", aug2)
	addEntry(t, s, "user-2", "Someone else", "", "", aug2)

	got, err := s.List(ctx, "user-1", "2026-08")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	// Newest first.
	if got[0].Title != "Mid August" || got[1].Title != "Early August" {
		t.Fatalf("order = [%s, %s]", got[0].Title, got[1].Title)
	}

	if _, err := s.List(ctx, "user-1", "August"); err == nil {
		t.Fatalf("malformed month accepted")
	}

	all, err := s.ListAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 || all[2].Title != "July entry" {
		t.Fatalf("all = %d entries, last %q", len(all), all[len(all)-1].Title)
	}
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	addEntry(t, s, "user-1", "Marathon prep", "Long run felt strong", model.MoodOptimistic, now, "running")
	addEntry(t, s, "user-1", "Budget review", "Cut two subscriptions", model.MoodChallenging, now.Add(time.Hour), "money")
	addEntry(t, s, "user-2", "Marathon too", "", "", now)

	cases := []struct {
		query string
		want  []string
	}{
		{"MARATHON", []string{"Marathon prep"}},
		{"felt strong", []string{"Marathon prep"}},
		{"money", []string{"Budget review"}},
		{"", []string{"Budget review", "Marathon prep"}},
		{"yoga", nil},
	}
	for _, c := range cases {
		got, err := s.Search(ctx, "user-1", c.query)
		if err != nil {
			t.Fatalf("Search(%q): %v", c.query, err)
		}
		if len(got) != len(c.want) {
			t.Fatalf("Search(%q) = %d entries, want %d", c.query, len(got), len(c.want))
		}
		for i := range c.want {
			if got[i].Title != c.want[i] {
				t.Fatalf("Search(%q)[%d] = %q, want %q", c.query, i, got[i].Title, c.want[i])
			}
		}
	}
}

func TestUpdateKeepsCreationTime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)

	e := addEntry(t, s, "user-1", "Draft", "v1", model.MoodInspired, created)

	e.Title = "Final"
	e.Content = "v2"
	e.Mood = model.MoodOptimistic
	if err := s.Update(ctx, &e); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !e.CreatedAt.Equal(created) {
		t.Fatalf("createdAt moved to %v", e.CreatedAt)
	}

	got, err := s.Get(ctx, "user-1", e.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Final" || got.Content != "v2" || got.Mood != model.MoodOptimistic {
		t.Fatalf("got = %+v", got)
	}

	// Still exactly one entry in one month; the key never moved.
	months, err := s.Months(ctx, "user-1")
	if err != nil {
		t.Fatalf("Months: %v", err)
	}
	if len(months) != 1 || months[0] != "2026-08" {
		t.Fatalf("months = %v", months)
	}
	all, _ := s.ListAll(ctx, "user-1")
	if len(all) != 1 {
		t.Fatalf("entries = %d, want 1", len(all))
	}

	stranger := *got
	stranger.UserID = "user-2"
	if err := s.Update(ctx, &stranger); err == nil {
		t.Fatalf("foreign update accepted")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	e := addEntry(t, s, "user-1", "Disposable", "", "", now)

	if err := s.Delete(ctx, "user-2", e.ID); err == nil {
		t.Fatalf("foreign delete accepted")
	}
	if err := s.Delete(ctx, "user-1", e.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var nfe NotFoundError
	if err := s.Delete(ctx, "user-1", e.ID); !errors.As(err, &nfe) {
		t.Fatalf("second delete err = %v, want not found", err)
	}
	all, _ := s.ListAll(ctx, "user-1")
	if len(all) != 0 {
		t.Fatalf("entries = %d after delete", len(all))
	}
}

func TestMoods(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	addEntry(t, s, "user-1", "One", "", model.MoodOptimistic, now)
	addEntry(t, s, "user-1", "Two", "", model.MoodOptimistic, now.Add(time.Minute))
	addEntry(t, s, "user-1", "Three", "", model.MoodChallenging, now.Add(2*time.Minute))
	addEntry(t, s, "user-2", "Ignore", "", model.MoodInspired, now)

	hist, err := s.Moods(ctx, "user-1")
	if err != nil {
		t.Fatalf("Moods: %v", err)
	}
	if hist[model.MoodOptimistic] != 2 || hist[model.MoodChallenging] != 1 || hist[model.MoodInspired] != 0 {
		t.Fatalf("hist = %v", hist)
	}
}

func TestMonthsSorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addEntry(t, s, "user-1", "Late", "", "", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	addEntry(t, s, "user-1", "Early", "", "", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	months, err := s.Months(ctx, "user-1")
	if err != nil {
		t.Fatalf("Months: %v", err)
	}
	if len(months) != 2 || months[0] != "2026-02" || months[1] != "2026-08" {
		t.Fatalf("months = %v", months)
	}
}
