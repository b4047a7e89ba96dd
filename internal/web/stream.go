package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/starfederation/datastar-go/datastar"
)

// hub fans out change notifications to stream subscribers. rev is a
// monotonic change counter; clients treat any bump as "reload".
type hub struct {
	mu   sync.Mutex
	rev  int64
	subs map[chan string]struct{}
}

func newHub() *hub {
	return &hub{subs: map[chan string]struct{}{}}
}

func (h *hub) subscribe() (ch chan string, cancel func()) {
	ch = make(chan string, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

func (h *hub) notify(resource string) {
	h.mu.Lock()
	h.rev++
	for ch := range h.subs {
		select {
		case ch <- resource:
		default:
			// Subscriber is behind; it reloads on the next signal anyway.
		}
	}
	h.mu.Unlock()
}

func (h *hub) revision() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rev
}

// handleStream patches {rev, resource} signals over SSE whenever the
// snapshot changes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	_ = sse.MarshalAndPatchSignals(map[string]any{
		"rev":      s.hub.revision(),
		"resource": "all",
	})

	ch, cancel := s.hub.subscribe()
	defer cancel()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case resource, ok := <-ch:
			if !ok {
				return
			}
			_ = sse.MarshalAndPatchSignals(map[string]any{
				"rev":      s.hub.revision(),
				"resource": resource,
			})
		}
	}
}
