// Package gossip implements the Recent-Gossip Cache and the server side of
// the Sync Protocol: the four peer-facing RPCs a lane serves to its peers
// during bulk subtree sync, steady-state gossip, and targeted fetch.
package gossip

import (
	"sync"
	"time"

	"github.com/fetchai/txlane/pkg/engine"
	"github.com/fetchai/txlane/pkg/lmetrics"
	"github.com/fetchai/txlane/pkg/txtypes"
)

// MaxCacheLifetime is how long a recent-gossip entry survives before trim()
// evicts it.
const MaxCacheLifetime = 60 * time.Second

// PullLimit bounds how many transactions any single PULL_* response
// returns.
const PullLimit = 10000

// Method ids for the TX_STORE_SYNC service.
const (
	MethodObjectCount         = 1
	MethodPullObjects         = 2
	MethodPullSubtree         = 3
	MethodPullSpecificObjects = 4
)

// cachedObject mirrors the original's CachedObject: a transaction plus its
// own insertion timestamp, so trim() evicts independently per entry rather
// than against one cache-wide timer.
type cachedObject struct {
	tx      txtypes.Transaction
	created time.Time
}

// Server is the Sync Protocol server, fronting an Engine and the
// Recent-Gossip Cache.
type Server struct {
	laneID string
	engine *engine.Engine

	mu    sync.Mutex
	cache []cachedObject
}

// New creates a Server over engine, labeling its metrics with laneID.
func New(laneID string, eng *engine.Engine) *Server {
	return &Server{laneID: laneID, engine: eng}
}

// OnNewTx is the engine's new-tx hook: every accepted transaction, whether
// from subtree sync or not (see SPEC_FULL.md §6.2), is appended to the
// recent-gossip cache with its own timestamp.
func (s *Server) OnNewTx(tx txtypes.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = append(s.cache, cachedObject{tx: tx, created: time.Now()})
}

// TrimCache evicts entries older than MaxCacheLifetime. Invoked from the
// sync FSM's TRIM_CACHE state.
func (s *Server) TrimCache() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-MaxCacheLifetime)
	kept := s.cache[:0]
	evicted := 0
	for _, co := range s.cache {
		if co.created.Before(cutoff) {
			evicted++
			continue
		}
		kept = append(kept, co)
	}
	s.cache = kept
	if evicted > 0 {
		lmetrics.GossipCacheTrimmedTotal.WithLabelValues(s.laneID).Add(float64(evicted))
	}
}

// ObjectCount returns the engine's current total transaction count.
func (s *Server) ObjectCount() (uint64, error) {
	lmetrics.GossipObjectCountTotal.WithLabelValues(s.laneID).Inc()
	return s.engine.Count()
}

// PullObjects returns a snapshot of the recent-gossip cache, up to
// PullLimit entries.
func (s *Server) PullObjects() []txtypes.Transaction {
	lmetrics.GossipPullObjectsTotal.WithLabelValues(s.laneID).Inc()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.cache)
	if n > PullLimit {
		n = PullLimit
	}
	out := make([]txtypes.Transaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.cache[i].tx)
	}
	return out
}

// PullSubtree delegates to the engine's archive prefix scan.
func (s *Server) PullSubtree(prefix txtypes.Digest, bitCount uint) ([]txtypes.Transaction, error) {
	lmetrics.GossipPullSubtreeTotal.WithLabelValues(s.laneID).Inc()
	return s.engine.PullSubtree(prefix, bitCount, PullLimit)
}

// PullSpecificObjects returns the transaction for each requested digest
// that's present, silently skipping misses.
func (s *Server) PullSpecificObjects(digests []txtypes.Digest) []txtypes.Transaction {
	lmetrics.GossipPullSpecificTotal.WithLabelValues(s.laneID).Inc()

	out := make([]txtypes.Transaction, 0, len(digests))
	for _, d := range digests {
		if !s.engine.Has(d) {
			continue
		}
		tx, err := s.engine.Peek(d)
		if err != nil {
			continue
		}
		out = append(out, tx)
	}
	return out
}
