// Package engine implements the Transaction Storage Engine Facade: the
// single bound surface over the pool, archive (via the aggregator), recent
// cache, and archiver that every RPC protocol and the sync FSM call through.
package engine

import (
	"github.com/fetchai/txlane/pkg/archiver"
	"github.com/fetchai/txlane/pkg/laneerrors"
	"github.com/fetchai/txlane/pkg/recent"
	"github.com/fetchai/txlane/pkg/store"
	"github.com/fetchai/txlane/pkg/txtypes"
)

// NewTxHook is invoked for every transaction added through the engine. The
// Lane Service sets this once; its sole consumer is the Recent-Gossip Cache.
type NewTxHook func(tx txtypes.Transaction)

// Engine binds the storage components into the facade spec.md §4.6
// describes.
type Engine struct {
	store       *store.Aggregator
	recentCache *recent.Cache
	archiver    *archiver.Archiver
	log2Lanes   uint

	onNewTx NewTxHook
}

// New binds the given components into an Engine.
func New(agg *store.Aggregator, recentCache *recent.Cache, arc *archiver.Archiver, log2NumLanes uint) *Engine {
	return &Engine{store: agg, recentCache: recentCache, archiver: arc, log2Lanes: log2NumLanes}
}

// SetNewTxHook installs the hook invoked after every Add. Intended to be
// called exactly once, by the Lane Service during wiring.
func (e *Engine) SetNewTxHook(hook NewTxHook) {
	e.onNewTx = hook
}

// Add inserts tx into the aggregator (pool); if isRecent and the
// transaction wasn't obtained via subtree sync, it's also added to the
// recent cache. The new-tx hook fires unconditionally afterward.
func (e *Engine) Add(tx txtypes.Transaction, isRecent bool) {
	e.store.Add(tx)
	if isRecent && !tx.FromSubtreeSync {
		e.recentCache.Add(tx)
	}
	if e.onNewTx != nil {
		e.onNewTx(tx)
	}
}

// Has reports whether d is present in the aggregator.
func (e *Engine) Has(d txtypes.Digest) bool {
	return e.store.Has(d)
}

// Get returns the transaction at d. On success it also calls Confirm(d) —
// this is inherited, possibly-unintended behavior carried over unchanged
// from the original storage unit (see the Get RPC handler docs).
func (e *Engine) Get(d txtypes.Digest) (txtypes.Transaction, error) {
	tx, ok, err := e.store.Get(d)
	if err != nil {
		return txtypes.Transaction{}, err
	}
	if !ok {
		return txtypes.Transaction{}, laneerrors.ErrNotFound
	}
	_ = e.Confirm(d)
	return tx, nil
}

// Peek returns the transaction at d without confirming it. Callers that must
// stay read-only — the Sync Protocol server, whose methods spec.md documents
// as idempotent — use this instead of Get.
func (e *Engine) Peek(d txtypes.Digest) (txtypes.Transaction, error) {
	tx, ok, err := e.store.Get(d)
	if err != nil {
		return txtypes.Transaction{}, err
	}
	if !ok {
		return txtypes.Transaction{}, laneerrors.ErrNotFound
	}
	return tx, nil
}

// Count returns the aggregator's count.
func (e *Engine) Count() (uint64, error) {
	return e.store.Count()
}

// Confirm enqueues d onto the confirmation queue for the Archiver to drain.
func (e *Engine) Confirm(d txtypes.Digest) error {
	return e.archiver.Confirm(d)
}

// GetRecent returns up to max layouts from the recent cache.
func (e *Engine) GetRecent(max int) []txtypes.TransactionLayout {
	return e.recentCache.Flush(max)
}

// PullSubtree delegates to the archive's prefix scan.
func (e *Engine) PullSubtree(prefix txtypes.Digest, bitCount uint, limit int) ([]txtypes.Transaction, error) {
	return e.store.Archive().PullSubtree(prefix, bitCount, limit)
}
