// Package store implements the Store Aggregator: a read-through wrapper
// that presents {pool, archive} as one store, adding to the pool only —
// archival is the Archiver's job.
package store

import (
	"github.com/fetchai/txlane/pkg/archive"
	"github.com/fetchai/txlane/pkg/pool"
	"github.com/fetchai/txlane/pkg/txtypes"
)

// Aggregator presents a Pool and an Archive as a single read-through store.
type Aggregator struct {
	pool    *pool.Pool
	archive *archive.Store
}

// New binds a Pool and an Archive into an Aggregator.
func New(p *pool.Pool, a *archive.Store) *Aggregator {
	return &Aggregator{pool: p, archive: a}
}

// Add inserts tx into the pool only.
func (a *Aggregator) Add(tx txtypes.Transaction) {
	a.pool.Add(tx)
}

// Has reports whether d is present in the pool or the archive,
// short-circuiting on the pool.
func (a *Aggregator) Has(d txtypes.Digest) bool {
	if a.pool.Has(d) {
		return true
	}
	return a.archive.Has(d)
}

// Get returns the pool's copy if present, else the archive's.
func (a *Aggregator) Get(d txtypes.Digest) (txtypes.Transaction, bool, error) {
	if tx, ok := a.pool.Get(d); ok {
		return tx, true, nil
	}
	return a.archive.Get(d)
}

// Count returns pool.Count() + archive.Count(). This may briefly
// double-count a digest mid-archival; spec.md §4.3 accepts this.
func (a *Aggregator) Count() (uint64, error) {
	archiveCount, err := a.archive.Count()
	if err != nil {
		return 0, err
	}
	return a.pool.Count() + archiveCount, nil
}

// Pool exposes the underlying pool, for components (the Archiver) that need
// direct access beyond the aggregator's read-through contract.
func (a *Aggregator) Pool() *pool.Pool {
	return a.pool
}

// Archive exposes the underlying archive, same rationale as Pool.
func (a *Aggregator) Archive() *archive.Store {
	return a.archive
}
