package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies a persistence change notification.
type ChangeKind int

const (
	// ChangeSnapshot means the entity snapshot was rewritten.
	ChangeSnapshot ChangeKind = iota

	// ChangeSettings means a per-user settings file changed.
	ChangeSettings
)

// Change is emitted by Watch when the on-disk state changes, whether by this
// process or another one sharing the data dir.
type Change struct {
	Kind   ChangeKind
	UserID string
}

// Watch streams change events until ctx is cancelled. Events are coalesced
// per burst of filesystem activity; callers should treat each event as
// "reload and rediff", not as a precise delta. The channel closes when ctx
// is done or the watcher fails.
func (s Store) Watch(ctx context.Context) (<-chan Change, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return nil, fmt.Errorf("store: empty dir")
	}
	if err := os.MkdirAll(s.settingsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure dirs: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	for _, dir := range []string{s.Dir, s.settingsDir()} {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	out := make(chan Change, 16)

	go func() {
		defer close(out)
		defer func() { _ = watcher.Close() }()

		// Coalesce bursts: SQLite touches the db, wal, and shm files in quick
		// succession on every save. One notification per burst is plenty.
		var mu sync.Mutex
		pending := map[Change]struct{}{}
		var timer *time.Timer

		send := func(c Change) {
			select {
			case out <- c:
			default:
				// Consumer is behind; it reloads on the next event anyway.
			}
		}
		enqueue := func(c Change) {
			mu.Lock()
			pending[c] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(100*time.Millisecond, func() {
					mu.Lock()
					batch := pending
					pending = map[Change]struct{}{}
					timer = nil
					mu.Unlock()
					for c := range batch {
						send(c)
					}
				})
			}
			mu.Unlock()
		}

		defer func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				_ = err
				enqueue(Change{Kind: ChangeSnapshot})
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				name := filepath.Base(evt.Name)
				switch {
				case strings.HasPrefix(name, dbFileName):
					enqueue(Change{Kind: ChangeSnapshot})
				case filepath.Dir(evt.Name) == s.settingsDir() && strings.HasSuffix(name, ".json"):
					enqueue(Change{
						Kind:   ChangeSettings,
						UserID: strings.TrimSuffix(name, ".json"),
					})
				}
			}
		}
	}()

	return out, nil
}
