package relay

import (
	"strings"
	"sync"

	"github.com/quicktalk/quicktalk/internal/domain/entity"
)

// inboxBuffer bounds how far a slow subscriber may lag before messages
// are dropped for that subscriber. Publishing never blocks.
const inboxBuffer = 16

// Hub routes persisted messages to live inboxes. An inbox is the set of
// channels subscribed under one handle; every subscriber of that handle
// receives each published message.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan entity.Message]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan entity.Message]struct{})}
}

func normalize(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// Subscribe attaches a new inbox channel for the handle. The returned
// cancel func detaches and closes the channel; it is safe to call more
// than once.
func (h *Hub) Subscribe(handle string) (<-chan entity.Message, func()) {
	key := normalize(handle)
	ch := make(chan entity.Message, inboxBuffer)

	h.mu.Lock()
	set, ok := h.subs[key]
	if !ok {
		set = make(map[chan entity.Message]struct{})
		h.subs[key] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[key]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, key)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers msg to every live subscriber of the handle's inbox.
// Full subscriber buffers are skipped rather than blocking the caller.
func (h *Hub) Publish(handle string, msg entity.Message) {
	key := normalize(handle)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[key] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribers reports how many live inbox channels exist for a handle.
func (h *Hub) Subscribers(handle string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[normalize(handle)])
}
