package app

import (
	"log/slog"
	"strconv"
	"sync"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans order/ticket updates out to SSE subscribers by topic.
type Hub struct {
	log *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{} // topic -> set(ch)
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log:  logger,
		subs: map[string]map[chan Event]struct{}{},
	}
}

func (h *Hub) Subscribe(topics []string, buf int) (<-chan Event, func()) {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan Event, buf)

	h.mu.Lock()
	for _, t := range topics {
		if h.subs[t] == nil {
			h.subs[t] = map[chan Event]struct{}{}
		}
		h.subs[t][ch] = struct{}{}
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		for _, t := range topics {
			if set, ok := h.subs[t]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, t)
				}
			}
		}
		h.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

// Broadcast sends to every subscriber of the topic. The read lock is held
// across the sends so a concurrent cancel cannot close a channel mid-send;
// sends never block (slow consumers drop), so holding it here is cheap.
func (h *Hub) Broadcast(topic string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[topic] {
		select {
		case ch <- ev:
		default:
			// drop if slow consumer
		}
	}
}

/* ---- topic helpers ---- */

func TopicUser(userID int64) string { return "user:" + strconv.FormatInt(userID, 10) }
func TopicRole(role string) string  { return "role:" + role }
func TopicOrdersGlobal() string     { return "orders:global" }

func (h *Hub) BroadcastUser(userID int64, ev Event) { h.Broadcast(TopicUser(userID), ev) }
func (h *Hub) BroadcastRole(role string, ev Event)  { h.Broadcast(TopicRole(role), ev) }
func (h *Hub) BroadcastOrders(ev Event)             { h.Broadcast(TopicOrdersGlobal(), ev) }
