package provider

import (
	"sync"
	"time"
)

// Application-visible event names. Pass-through notification kinds keep
// whatever name the remote side used.
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
	EventDisconnect      = "disconnect"
)

// Event is one application-visible provider event.
type Event struct {
	Seq       int64
	Name      string
	Payload   any
	Timestamp time.Time
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// EventHub fans provider events out to subscribers. A fixed ring keeps the
// most recent events so late subscribers can catch up by sequence number; a
// subscriber that stops draining its channel is evicted, never blocked on.
type EventHub struct {
	mu      sync.Mutex
	nextSeq int64
	ring    []Event
	cursor  int
	filled  int
	subs    map[int]chan Event
	nextSub int
}

func NewEventHub(limit int) *EventHub {
	if limit < 1 {
		limit = 1
	}
	return &EventHub{
		ring: make([]Event, limit),
		subs: make(map[int]chan Event),
	}
}

func (h *EventHub) Publish(name string, payload any) Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextSeq++
	event := Event{
		Seq:       h.nextSeq,
		Name:      name,
		Payload:   payload,
		Timestamp: nowUTC(),
	}
	h.ring[h.cursor] = event
	h.cursor = (h.cursor + 1) % len(h.ring)
	if h.filled < len(h.ring) {
		h.filled++
	}

	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			close(ch)
			delete(h.subs, id)
		}
	}

	return event
}

func (h *EventHub) Subscribe(fromSeq int64) ([]Event, <-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Oldest retained event sits at cursor-filled; walk forward from there.
	replay := make([]Event, 0, h.filled)
	start := h.cursor - h.filled + len(h.ring)
	for i := 0; i < h.filled; i++ {
		event := h.ring[(start+i)%len(h.ring)]
		if event.Seq > fromSeq {
			replay = append(replay, event)
		}
	}

	id := h.nextSub
	h.nextSub++
	ch := make(chan Event, 128)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			close(sub)
			delete(h.subs, id)
		}
	}

	return replay, ch, cancel
}

func (h *EventHub) BacklogSize() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.filled
}
