// Package events fans resolution events out to in-process subscribers and
// websocket clients.
package events

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"pricebet/internal/market"
)

// Hub implements market.EventSink. Slow subscribers are skipped rather
// than blocking the engine's resolve path.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan market.ResolutionEvent
	nextID uint64

	logger  *zap.Logger
	dropped uint64
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   map[uint64]chan market.ResolutionEvent{},
		logger: logger,
	}
}

// Subscribe returns a buffered channel of resolution events and a cancel
// function that must be called when the subscriber goes away.
func (h *Hub) Subscribe(buf int) (<-chan market.ResolutionEvent, func()) {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan market.ResolutionEvent, buf)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) PublishResolution(ev market.ResolutionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			atomic.AddUint64(&h.dropped, 1)
		}
	}
	h.logger.Debug("resolution event published",
		zap.String("event_id", ev.ID),
		zap.Uint64("round_id", ev.RoundID),
		zap.Int("subscribers", len(h.subs)))
}

// Dropped reports how many events were skipped for slow subscribers.
func (h *Hub) Dropped() uint64 {
	return atomic.LoadUint64(&h.dropped)
}
