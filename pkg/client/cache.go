package client

import (
	"sort"
	"sync"
	"time"
)

// OrderCache is the local copy of the orders a client can see. It is safe
// for concurrent use.
type OrderCache struct {
	mu     sync.RWMutex
	orders map[string]Order
	valid  bool
}

// NewOrderCache returns an empty, invalid cache.
func NewOrderCache() *OrderCache {
	return &OrderCache{orders: make(map[string]Order)}
}

// Replace swaps the whole cache for orders and marks it valid.
func (c *OrderCache) Replace(orders []Order) {
	fresh := make(map[string]Order, len(orders))
	for _, order := range orders {
		fresh[order.ID] = order
	}

	c.mu.Lock()
	c.orders = fresh
	c.valid = true
	c.mu.Unlock()
}

// Merge upserts orders. An entry is only replaced by a copy that is at least
// as recent.
func (c *OrderCache) Merge(orders []Order) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, order := range orders {
		if current, ok := c.orders[order.ID]; ok && current.UpdatedAt.After(order.UpdatedAt) {
			continue
		}
		c.orders[order.ID] = order
	}
}

// Put stores a single order.
func (c *OrderCache) Put(order Order) {
	c.Merge([]Order{order})
}

// Get returns a cached order.
func (c *OrderCache) Get(id string) (Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	order, ok := c.orders[id]
	return order, ok
}

// Invalidate marks the cache stale. Contents are kept until the next Replace.
func (c *OrderCache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

// Valid reports whether the cache reflects a full listing.
func (c *OrderCache) Valid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.valid
}

// Len returns the number of cached orders.
func (c *OrderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.orders)
}

// LatestUpdate returns the newest UpdatedAt among cached orders.
func (c *OrderCache) LatestUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var latest time.Time
	for _, order := range c.orders {
		if order.UpdatedAt.After(latest) {
			latest = order.UpdatedAt
		}
	}
	return latest
}

// Snapshot returns the cached orders, newest order date first.
func (c *OrderCache) Snapshot() []Order {
	c.mu.RLock()
	out := make([]Order, 0, len(c.orders))
	for _, order := range c.orders {
		out = append(out, order)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}
