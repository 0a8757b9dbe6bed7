package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 1024

// Cache maps request ids to the result they produced.
type Cache[V any] interface {
	// Lookup returns the result recorded for id, if any.
	Lookup(ctx context.Context, id string) (V, bool)

	// Record stores the result for id, replacing any previous entry.
	Record(ctx context.Context, id string, v V)

	// Forget removes id so that the request can be applied again.
	Forget(ctx context.Context, id string)

	// Reset drops every entry.
	Reset(ctx context.Context)

	Size() int64
}

// node is an entry of the recency list; head is the newest.
type node[V any] struct {
	id         string
	value      V
	prev, next *node[V]
}

// inMemoryCache implements Cache with a map and a doubly linked list
// ordered by insertion. Bounded caches evict from the tail.
type inMemoryCache[V any] struct {
	mu      sync.Mutex
	entries map[string]*node[V]
	head    *node[V]
	tail    *node[V]
	maxSize int
	size    atomic.Int64
}

// NewInMemory creates an in-memory cache.
func NewInMemory[V any](opts ...Option) Cache[V] {
	s := settings{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(&s)
	}
	return &inMemoryCache[V]{
		entries: make(map[string]*node[V]),
		maxSize: s.maxSize,
	}
}

func (c *inMemoryCache[V]) Lookup(_ context.Context, id string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[id]
	if !ok {
		var zero V
		return zero, false
	}
	return n.value, true
}

func (c *inMemoryCache[V]) Record(_ context.Context, id string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[id]; ok {
		n.value = v
		return
	}
	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	n := &node[V]{id: id, value: v, next: c.head}
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
	c.entries[id] = n
	c.size.Add(1)
}

func (c *inMemoryCache[V]) Forget(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[id]; ok {
		c.unlink(n)
	}
}

func (c *inMemoryCache[V]) Reset(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*node[V])
	c.head, c.tail = nil, nil
	c.size.Store(0)
}

// Size returns the number of remembered ids.
func (c *inMemoryCache[V]) Size() int64 {
	return c.size.Load()
}

// evictOldest must be called with c.mu held.
func (c *inMemoryCache[V]) evictOldest() {
	if c.tail != nil {
		c.unlink(c.tail)
	}
}

// unlink must be called with c.mu held.
func (c *inMemoryCache[V]) unlink(n *node[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
	delete(c.entries, n.id)
	c.size.Add(-1)
}
