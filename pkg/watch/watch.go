// Package watch fans out record change notifications to the live views of
// the service.
package watch

import (
	"context"
	"strings"
	"sync"

	"github.com/korjavin/dinnerboard/pkg/logger"
	"github.com/korjavin/dinnerboard/pkg/storage"
)

// Change names a record that was written or deleted
type Change struct {
	Key string
}

// Hub delivers changes to subscribers. A subscriber that has not drained
// its previous notification is skipped: one pending change already makes
// it reload everything.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]subscription
	nextID int

	ready     chan struct{}
	readyOnce sync.Once

	logger *logger.Logger
}

type subscription struct {
	prefixes []string
	ch       chan Change
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		subs:   make(map[int]subscription),
		ready:  make(chan struct{}),
		logger: logger.New("watch"),
	}
}

// Subscribe registers for changes of keys starting with one of prefixes
// (every key when none are given). The returned function unsubscribes and
// closes the channel.
func (h *Hub) Subscribe(prefixes ...string) (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Change, 1)
	h.subs[id] = subscription{prefixes: prefixes, ch: ch}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish notifies every matching subscriber without blocking
func (h *Hub) Publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if !matches(sub.prefixes, c.Key) {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			h.logger.Debug("Coalesced change of %s", c.Key)
		}
	}
}

func matches(prefixes []string, key string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// Ready is closed once Feed is registered with the store. Writes made
// before that may never be published.
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

// Feed publishes every write the store sees under prefixes. It blocks
// until ctx is cancelled.
func (h *Hub) Feed(ctx context.Context, store *storage.Store, prefixes ...string) error {
	h.logger.Info("Watching %s", strings.Join(prefixes, ", "))
	return store.Subscribe(ctx, prefixes, func(key string) {
		h.Publish(Change{Key: key})
	}, func() {
		h.readyOnce.Do(func() { close(h.ready) })
	})
}
