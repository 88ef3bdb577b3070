package events

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/logistics-erp/internal/models"
)

// Sources of status changes.
const (
	SourceOrderCreated  = "order_created"
	SourceShipmentSync  = "shipment_sync"
	SourceAdminOverride = "admin_override"
	SourceCustomer      = "customer_cancel"
	SourceReconciler    = "reconciler"
)

// StatusEvent describes a change to an order's status.
type StatusEvent struct {
	OrderID        string                `json:"order_id"`
	UserID         string                `json:"user_id"`
	OrderStatus    models.OrderStatus    `json:"order_status"`
	ShipmentStatus models.ShipmentStatus `json:"shipment_status,omitempty"`
	Source         string                `json:"source"`
	At             time.Time             `json:"at"`
}

// Publisher is implemented by anything that accepts status events.
type Publisher interface {
	Publish(StatusEvent)
}

// Hub fans status events out to subscribers. Slow subscribers lose events
// instead of blocking the publisher.
type Hub struct {
	logger *zap.Logger
	buffer int

	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// Subscription receives events accepted by its filter on C.
type Subscription struct {
	C <-chan StatusEvent

	ch     chan StatusEvent
	filter func(StatusEvent) bool
	hub    *Hub
	once   sync.Once
}

// NewHub creates a hub whose subscribers buffer up to buffer events.
func NewHub(logger *zap.Logger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		logger: logger,
		buffer: buffer,
		subs:   make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a subscriber. A nil filter accepts every event.
func (h *Hub) Subscribe(filter func(StatusEvent) bool) *Subscription {
	ch := make(chan StatusEvent, h.buffer)
	sub := &Subscription{C: ch, ch: ch, filter: filter, hub: h}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Publish delivers ev to every interested subscriber without blocking.
func (h *Hub) Publish(ev StatusEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if sub.filter != nil && !sub.filter(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn("dropping status event for slow subscriber", zap.String("order_id", ev.OrderID))
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unregisters the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		close(s.ch)
		s.hub.mu.Unlock()
	})
}
