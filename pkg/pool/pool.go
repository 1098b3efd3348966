// Package pool implements the lane's in-memory map of unconfirmed
// transactions: one mutex-guarded Digest -> Transaction map, no eviction
// policy. Growth is bounded externally by the Archiver promptly draining
// confirmed entries.
package pool

import (
	"sync"

	"github.com/fetchai/txlane/pkg/txtypes"
)

// Pool is the Memory Pool.
type Pool struct {
	mu sync.Mutex
	m  map[txtypes.Digest]txtypes.Transaction
}

// New creates an empty Pool.
func New() *Pool {
	return &Pool{m: make(map[txtypes.Digest]txtypes.Transaction)}
}

// Add inserts or overwrites tx.
func (p *Pool) Add(tx txtypes.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[tx.Digest] = tx
}

// Has reports whether d is present.
func (p *Pool) Has(d txtypes.Digest) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.m[d]
	return ok
}

// Get returns the transaction at d, or ok=false if absent.
func (p *Pool) Get(d txtypes.Digest) (txtypes.Transaction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tx, ok := p.m[d]
	return tx, ok
}

// Count returns the number of entries.
func (p *Pool) Count() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return uint64(len(p.m))
}

// Remove deletes d; a no-op if absent.
func (p *Pool) Remove(d txtypes.Digest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, d)
}
