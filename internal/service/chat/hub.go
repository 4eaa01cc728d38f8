package chat

import (
	"log"
	"sync"

	"github.com/heva-hub/assistant/backend/internal/model/chat"
)

// Hub fans session events out to subscribers. Sends never block: an event
// for a subscriber whose buffer is full is dropped.
type Hub struct {
	mu     sync.Mutex
	buffer int
	nextID uint64
	subs   map[string]map[uint64]chan chat.Event
}

// NewHub creates a hub whose subscriber channels hold buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		buffer: buffer,
		subs:   make(map[string]map[uint64]chan chat.Event),
	}
}

// Subscribe registers a listener for one session. The returned cancel func
// is idempotent and closes the channel.
func (h *Hub) Subscribe(sessionID string) (<-chan chat.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan chat.Event, h.buffer)
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[uint64]chan chat.Event)
	}
	h.subs[sessionID][id] = ch

	return ch, func() { h.unsubscribe(sessionID, id) }
}

// Publish delivers the event to every subscriber of its session.
func (h *Hub) Publish(event chat.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs[event.SessionID] {
		select {
		case ch <- event:
		default:
			log.Printf("[chat] subscriber %d of session %s is full, dropping %s event", id, event.SessionID, event.Type)
		}
	}
}

// CloseSession closes every subscriber of the session.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[sessionID] {
		close(ch)
	}
	delete(h.subs, sessionID)
}

// Close closes all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sessionID, subs := range h.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(h.subs, sessionID)
	}
}

// Subscribers returns the number of listeners on a session.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}

func (h *Hub) unsubscribe(sessionID string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subs[sessionID]
	if !ok {
		return
	}
	ch, ok := subs[id]
	if !ok {
		return
	}
	close(ch)
	delete(subs, id)
	if len(subs) == 0 {
		delete(h.subs, sessionID)
	}
}
