package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Event is a single broadcast message delivered to hub subscribers.
type Event struct {
	Topic string
	Data  []byte // JSON-encoded payload
}

// Hub fans events out to currently connected subscribers. Delivery is
// at-most-once: a slow subscriber has events dropped rather than blocking
// the publisher, and a subscriber that connects after an event was
// published never sees it.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*Subscription]struct{}
	logger  *slog.Logger
	onCount func(int) // invoked with the subscriber count after each change
}

// Subscription is one subscriber's view of the hub.
type Subscription struct {
	topics []string // exact topic filters; empty matches all
	ch     chan Event
}

// C returns the channel events are delivered on.
func (s *Subscription) C() <-chan Event { return s.ch }

func (s *Subscription) matches(topic string) bool {
	return len(s.topics) == 0 || slices.Contains(s.topics, topic)
}

// NewHub creates an empty hub. onCount may be nil; when set it receives the
// subscriber count after every subscribe/unsubscribe (used for metrics).
func NewHub(logger *slog.Logger, onCount func(int)) *Hub {
	return &Hub{
		subs:    make(map[*Subscription]struct{}),
		logger:  logger,
		onCount: onCount,
	}
}

// Subscribe registers a subscriber for the given topics (empty = all).
// Call the returned cancel function to unsubscribe and release the channel.
func (h *Hub) Subscribe(topics []string) (*Subscription, func()) {
	sub := &Subscription{
		topics: topics,
		ch:     make(chan Event, 64),
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	h.notifyCount(n)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			n := len(h.subs)
			h.mu.Unlock()
			h.notifyCount(n)
		})
	}
	return sub, cancel
}

// Publish serializes the event and fans it out to matching subscribers.
func (h *Hub) Publish(_ context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	evt := Event{Topic: topic, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if !sub.matches(topic) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			// Drop rather than block the publisher on a slow subscriber.
			h.logger.Warn("dropping event for slow subscriber", "topic", topic)
		}
	}
	return nil
}

// SubscriberCount reports the number of currently connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close is a no-op; subscriptions are owned by their cancel functions.
func (h *Hub) Close() error { return nil }

func (h *Hub) notifyCount(n int) {
	if h.onCount != nil {
		h.onCount(n)
	}
}
