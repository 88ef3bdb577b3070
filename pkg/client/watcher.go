package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPollInterval is how often the watcher re-fetches orders.
	DefaultPollInterval = 10 * time.Second

	// cursorOverlap re-requests a little history so writes committed
	// around the previous poll are not missed.
	cursorOverlap = 2 * time.Second
)

// OrderWatcher keeps an OrderCache current by polling the order list on a
// fixed interval and whenever Notify is called.
type OrderWatcher struct {
	client   *Client
	cache    *OrderCache
	interval time.Duration
	logger   *zap.Logger

	notify chan struct{}
	pollMu sync.Mutex

	subsMu sync.Mutex
	subs   map[chan []Order]struct{}
}

// WatcherOption configures an OrderWatcher.
type WatcherOption func(*OrderWatcher)

// WithInterval overrides DefaultPollInterval.
func WithInterval(interval time.Duration) WatcherOption {
	return func(w *OrderWatcher) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithLogger sets the logger used for poll failures.
func WithLogger(logger *zap.Logger) WatcherOption {
	return func(w *OrderWatcher) { w.logger = logger }
}

// NewOrderWatcher creates a watcher over client. Successful writes made
// through client invalidate the cache and trigger an immediate poll.
func NewOrderWatcher(client *Client, opts ...WatcherOption) *OrderWatcher {
	w := &OrderWatcher{
		client:   client,
		cache:    NewOrderCache(),
		interval: DefaultPollInterval,
		logger:   zap.NewNop(),
		notify:   make(chan struct{}, 1),
		subs:     make(map[chan []Order]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	client.OnMutation(func() {
		w.cache.Invalidate()
		w.Notify()
	})
	return w
}

// Cache exposes the watcher's cache.
func (w *OrderWatcher) Cache() *OrderCache {
	return w.cache
}

// Notify requests an immediate poll. It never blocks; requests made while one
// is already pending are coalesced.
func (w *OrderWatcher) Notify() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

// Subscribe returns a channel receiving a cache snapshot after every poll,
// and a function that ends the subscription. Only the latest snapshot is
// kept for slow readers.
func (w *OrderWatcher) Subscribe() (<-chan []Order, func()) {
	ch := make(chan []Order, 1)

	w.subsMu.Lock()
	w.subs[ch] = struct{}{}
	w.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.subsMu.Lock()
			delete(w.subs, ch)
			w.subsMu.Unlock()
		})
	}
}

// Run polls until ctx is done. The first poll happens immediately.
func (w *OrderWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.pollAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.pollAndLog(ctx)
		case <-w.notify:
			w.pollAndLog(ctx)
		}
	}
}

func (w *OrderWatcher) pollAndLog(ctx context.Context) {
	if err := w.Poll(ctx); err != nil && ctx.Err() == nil {
		w.logger.Warn("order poll failed", zap.Error(err))
	}
}

// Poll fetches orders once and merges them into the cache. A valid cache is
// refreshed incrementally from its newest update; a stale one is replaced by
// a full listing.
func (w *OrderWatcher) Poll(ctx context.Context) error {
	w.pollMu.Lock()
	defer w.pollMu.Unlock()

	var opts ListOptions
	incremental := w.cache.Valid()
	if incremental {
		if latest := w.cache.LatestUpdate(); !latest.IsZero() {
			opts.ChangedSince = latest.Add(-cursorOverlap)
		}
	}

	list, err := w.client.ListOrders(ctx, opts)
	if err != nil {
		return err
	}

	if incremental {
		w.cache.Merge(list.Orders)
	} else {
		w.cache.Replace(list.Orders)
	}

	w.broadcast(w.cache.Snapshot())
	return nil
}

// Order returns an order from the cache, fetching and caching it on a miss.
func (w *OrderWatcher) Order(ctx context.Context, id string) (Order, error) {
	if order, ok := w.cache.Get(id); ok && w.cache.Valid() {
		return order, nil
	}

	order, err := w.client.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	w.cache.Put(*order)
	return *order, nil
}

func (w *OrderWatcher) broadcast(snapshot []Order) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()

	for ch := range w.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
