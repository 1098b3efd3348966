// Package recent implements the Recent Cache: a bounded, insertion-ordered
// deque of transaction layouts with a parallel digest set for O(1)
// duplicate suppression.
package recent

import (
	"container/list"
	"sync"

	"github.com/fetchai/txlane/pkg/txtypes"
)

// Cache is the Recent Cache. It is newest-first: Add prepends, overflow
// drops from the tail.
type Cache struct {
	mu           sync.Mutex
	maxSize      int
	log2NumLanes uint
	deque        *list.List // of txtypes.TransactionLayout, front = newest
	seen         map[txtypes.Digest]*list.Element
}

// New creates a Cache bounded at maxSize entries.
func New(maxSize int, log2NumLanes uint) *Cache {
	return &Cache{
		maxSize:      maxSize,
		log2NumLanes: log2NumLanes,
		deque:        list.New(),
		seen:         make(map[txtypes.Digest]*list.Element),
	}
}

// Add inserts tx's layout at the front if its digest isn't already present,
// then trims the tail while the cache exceeds maxSize.
func (c *Cache) Add(tx txtypes.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[tx.Digest]; ok {
		return
	}

	layout := tx.Layout(c.log2NumLanes)
	el := c.deque.PushFront(layout)
	c.seen[tx.Digest] = el

	for c.deque.Len() > c.maxSize {
		back := c.deque.Back()
		if back == nil {
			break
		}
		l := back.Value.(txtypes.TransactionLayout)
		delete(c.seen, l.Digest)
		c.deque.Remove(back)
	}
}

// Size returns the current number of cached layouts.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deque.Len()
}

// Flush pops up to n layouts from the front (newest-first order) and
// removes them from both the deque and the digest set.
func (c *Cache) Flush(n int) []txtypes.TransactionLayout {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]txtypes.TransactionLayout, 0, n)
	for i := 0; i < n; i++ {
		front := c.deque.Front()
		if front == nil {
			break
		}
		l := front.Value.(txtypes.TransactionLayout)
		delete(c.seen, l.Digest)
		c.deque.Remove(front)
		out = append(out, l)
	}
	return out
}
