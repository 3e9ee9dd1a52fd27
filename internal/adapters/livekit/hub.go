package livekit

import (
	"net/http"
	"sync"
	"time"

	"github.com/livekit/protocol/livekit"
)

// Hub fans webhook events out to the bridge of every live session. Webhooks
// are per server, bridges per composite.
type Hub struct {
	recv *Bridge

	mu      sync.RWMutex
	bridges map[string]*Bridge
}

func NewHub(cfg Config) *Hub {
	return &Hub{
		recv:    NewBridge(cfg, nil),
		bridges: make(map[string]*Bridge),
	}
}

// Attach creates the bridge for key reporting to events, replacing any
// earlier one.
func (h *Hub) Attach(key string, events Events) *Bridge {
	b := NewBridge(h.recv.cfg, events)
	h.mu.Lock()
	h.bridges[key] = b
	h.mu.Unlock()
	return b
}

func (h *Hub) Detach(key string) {
	h.mu.Lock()
	delete(h.bridges, key)
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.bridges)
}

func (h *Hub) Receive(r *http.Request) (*livekit.WebhookEvent, error) {
	return h.recv.Receive(r)
}

// Verifies reports whether webhooks are signature checked.
func (h *Hub) Verifies() bool { return h.recv.keys != nil }

func (h *Hub) HandleEvent(ev *livekit.WebhookEvent) {
	h.mu.RLock()
	bridges := make([]*Bridge, 0, len(h.bridges))
	for _, b := range h.bridges {
		bridges = append(bridges, b)
	}
	h.mu.RUnlock()
	for _, b := range bridges {
		b.HandleEvent(ev)
	}
}

func (h *Hub) Token(identity, name string, ttl time.Duration) (string, error) {
	return h.recv.Token(identity, name, ttl)
}
