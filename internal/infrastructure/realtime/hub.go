// Package realtime fans committed game settings out to connected observers.
package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/core/domain"
)

const defaultBuffer = 8

// Hub is the observer registry. Broadcast never blocks: each observer has a
// small buffer and the oldest pending snapshot is dropped when it is full.
type Hub struct {
	mu        sync.Mutex
	observers map[string]*Subscription
	closed    bool

	buffer  int
	onCount func(int)
	onDrop  func()
	log     zerolog.Logger
}

type HubOption func(*Hub)

// WithBuffer sets the per-observer queue length.
func WithBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithObserverGauge reports the observer count after every change.
func WithObserverGauge(fn func(int)) HubOption {
	return func(h *Hub) { h.onCount = fn }
}

// WithDropCounter is called whenever a pending snapshot is discarded.
func WithDropCounter(fn func()) HubOption {
	return func(h *Hub) { h.onDrop = fn }
}

func NewHub(log zerolog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		observers: make(map[string]*Subscription),
		buffer:    defaultBuffer,
		onCount:   func(int) {},
		onDrop:    func() {},
		log:       log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscription is one observer's delivery queue.
type Subscription struct {
	ID string

	hub  *Hub
	ch   chan domain.SettingsSnapshot
	mu   sync.Mutex
	done chan struct{}
	once sync.Once
}

// C delivers snapshots in commit order. It is never closed; use Done.
func (s *Subscription) C() <-chan domain.SettingsSnapshot { return s.ch }

// Done is closed when the subscription is removed or the hub shuts down.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close removes the subscription from its hub.
func (s *Subscription) Close() { s.hub.remove(s) }

func (s *Subscription) offer(snap domain.SettingsSnapshot) (dropped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case s.ch <- snap:
		return false
	default:
	}
	select {
	case <-s.ch:
		dropped = true
	default:
	}
	select {
	case s.ch <- snap:
	default:
	}
	return dropped
}

// Subscribe registers an observer and queues current() as its first event.
// current is read under the registry lock so a write racing with the
// subscription is either included in the initial snapshot or broadcast to
// the new observer afterwards.
func (h *Hub) Subscribe(current func() domain.SettingsSnapshot) (*Subscription, error) {
	sub := &Subscription{
		ID:   uuid.NewString(),
		hub:  h,
		ch:   make(chan domain.SettingsSnapshot, h.buffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, domain.ErrServiceStopped
	}
	h.observers[sub.ID] = sub
	sub.offer(current())
	n := len(h.observers)
	h.mu.Unlock()

	h.onCount(n)
	h.log.Debug().Str("observer_id", sub.ID).Int("observers", n).Msg("observer connected")
	return sub, nil
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	_, ok := h.observers[sub.ID]
	delete(h.observers, sub.ID)
	n := len(h.observers)
	h.mu.Unlock()

	sub.once.Do(func() { close(sub.done) })
	if ok {
		h.onCount(n)
		h.log.Debug().Str("observer_id", sub.ID).Int("observers", n).Msg("observer disconnected")
	}
}

// Broadcast implements ports.SettingsBroadcaster.
func (h *Hub) Broadcast(snap domain.SettingsSnapshot) {
	h.mu.Lock()
	targets := make([]*Subscription, 0, len(h.observers))
	for _, sub := range h.observers {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		if sub.offer(snap) {
			h.onDrop()
			h.log.Warn().Str("observer_id", sub.ID).Uint64("version", snap.Version).Msg("slow observer, dropped stale settings")
		}
	}
}

// Len returns the number of connected observers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// Close ends every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*Subscription, 0, len(h.observers))
	for _, sub := range h.observers {
		subs = append(subs, sub)
	}
	h.observers = make(map[string]*Subscription)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.once.Do(func() { close(sub.done) })
	}
	h.onCount(0)
}
