package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

// Filter narrows a subscription to one collection, optionally to documents
// whose change-event metadata carries Field=Value.
type Filter struct {
	Collection string
	Field      string
	Value      string
}

func (f Filter) matches(evt ports.ChangeEvent) bool {
	if evt.Collection != f.Collection {
		return false
	}
	if f.Field == "" {
		return true
	}
	// Deletes carry no metadata; a filtered subscriber still needs to see
	// them to drop the document from its local view.
	if evt.Deleted {
		return true
	}
	return evt.Meta[f.Field] == f.Value
}

// Subscription is one live listener. Events arrive on C in commit order per
// document; a slow consumer loses events rather than blocking the hub.
type Subscription struct {
	id     string
	filter Filter
	ch     chan ports.ChangeEvent

	mu       sync.Mutex
	lastSeen map[string]int64
	closed   bool
}

func (s *Subscription) C() <-chan ports.ChangeEvent { return s.ch }

// offer delivers evt unless the subscriber has already seen that document
// at this version or later. The gate is what makes Seed safe to run after
// registration: live events that raced ahead of the snapshot win, stale
// snapshot rows lose.
func (s *Subscription) offer(evt ports.ChangeEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	key := evt.Collection + "/" + evt.Key
	if evt.Version <= s.lastSeen[key] {
		return true
	}
	select {
	case s.ch <- evt:
		s.lastSeen[key] = evt.Version
		return true
	default:
		return false
	}
}

// Hub fans committed change events out to live subscriptions. It implements
// ports.ChangeSink so store adapters publish straight into it.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

var _ ports.ChangeSink = (*Hub)(nil)

func New() *Hub {
	return &Hub{subs: make(map[string]*Subscription)}
}

// Subscribe registers a listener before any snapshot is taken; call Seed
// with the snapshot afterwards so no commit between the two is lost.
func (h *Hub) Subscribe(filter Filter, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 64
	}
	sub := &Subscription{
		id:       uuid.NewString(),
		filter:   filter,
		ch:       make(chan ports.ChangeEvent, buffer),
		lastSeen: make(map[string]int64),
	}
	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
	return sub
}

// Seed replays snapshot events through the subscription's version gate.
// Rows the live stream has already superseded are skipped.
func (h *Hub) Seed(sub *Subscription, snapshot []ports.ChangeEvent) {
	for _, evt := range snapshot {
		if !sub.filter.matches(evt) {
			continue
		}
		if !sub.offer(evt) {
			log.Printf("hub: dropped seed event %s/%s for subscriber %s", evt.Collection, evt.Key, sub.id)
		}
	}
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	delete(h.subs, sub.id)
	h.mu.Unlock()

	sub.mu.Lock()
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
	sub.mu.Unlock()
}

// Publish implements ports.ChangeSink.
func (h *Hub) Publish(evt ports.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.filter.matches(evt) {
			continue
		}
		if !sub.offer(evt) {
			log.Printf("hub: dropped event %s/%s v%d for subscriber %s", evt.Collection, evt.Key, evt.Version, sub.id)
		}
	}
}

// Len reports the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// SubscribeMessage is the client->server frame on the watch socket.
type SubscribeMessage struct {
	Action     string `json:"action"`
	Collection string `json:"collection"`
	Field      string `json:"field,omitempty"`
	Value      string `json:"value,omitempty"`
}

func ParseSubscribe(data []byte) (SubscribeMessage, bool) {
	var msg SubscribeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return SubscribeMessage{}, false
	}
	if msg.Action != "subscribe" {
		return SubscribeMessage{}, false
	}
	if msg.Collection == "" {
		return SubscribeMessage{}, false
	}
	return msg, true
}
