// Package lane wires one full Lane Service instance together: one shard's
// archive, pool, store aggregator, recent cache, archiver FSM, storage
// engine facade, both RPC surfaces, the verifier pool, and the sync FSM,
// driven by a shared reactor.
package lane

import (
	"fmt"
	"math/bits"

	"github.com/fetchai/txlane/pkg/archive"
	"github.com/fetchai/txlane/pkg/archiver"
	"github.com/fetchai/txlane/pkg/engine"
	"github.com/fetchai/txlane/pkg/gossip"
	"github.com/fetchai/txlane/pkg/laneconfig"
	"github.com/fetchai/txlane/pkg/peernet"
	"github.com/fetchai/txlane/pkg/pool"
	"github.com/fetchai/txlane/pkg/reactor"
	"github.com/fetchai/txlane/pkg/recent"
	"github.com/fetchai/txlane/pkg/rpcstore"
	"github.com/fetchai/txlane/pkg/store"
	"github.com/fetchai/txlane/pkg/syncfsm"
	"github.com/fetchai/txlane/pkg/txfinder"
	"github.com/fetchai/txlane/pkg/txtypes"
	"github.com/fetchai/txlane/pkg/verifier"
)

// MaxRecentTx is the recent cache's bound, carried over from the original
// storage unit's MAX_NUM_RECENT_TX constant (1 << 15).
const MaxRecentTx = 1 << 15

// Lane is one shard's fully wired storage engine.
type Lane struct {
	ID  uint32
	cfg laneconfig.Config

	Archive  *archive.Store
	Pool     *pool.Pool
	Store    *store.Aggregator
	Recent   *recent.Cache
	Archiver *archiver.Archiver
	Engine   *engine.Engine
	RPC      *rpcstore.Server
	Gossip   *gossip.Server
	Finder   *txfinder.Queue
	Verifier *verifier.Pool
	Sync     *syncfsm.Service

	reactor *reactor.Reactor
}

// New creates and wires a Lane. verifyFn is the opaque verification check
// the Verifier Pool applies to every submitted transaction; ep is the
// overlay endpoint the sync FSM addresses peers through.
func New(cfg laneconfig.Config, verifyFn verifier.VerifyFunc, ep peernet.Endpoint) (*Lane, error) {
	docPath := fmt.Sprintf("%slane%03d_transaction.db", cfg.StoragePath, cfg.LaneID)
	idxPath := fmt.Sprintf("%slane%03d_transaction_index.db", cfg.StoragePath, cfg.LaneID)

	arc, err := archive.Load(docPath, idxPath, true)
	if err != nil {
		return nil, fmt.Errorf("lane %d: %w", cfg.LaneID, err)
	}

	p := pool.New()
	agg := store.New(p, arc)
	log2Lanes := uint(bits.TrailingZeros32(cfg.NumLanes))

	recentCache := recent.New(MaxRecentTx, log2Lanes)
	arch := archiver.New(cfg.LaneID, agg)
	eng := engine.New(agg, recentCache, arch, log2Lanes)
	rpc := rpcstore.New(eng)

	laneLabel := fmt.Sprintf("lane-%d", cfg.LaneID)
	gs := gossip.New(laneLabel, eng)
	eng.SetNewTxHook(gs.OnNewTx)

	finder := txfinder.New()
	verifierPool := verifier.New(laneLabel, cfg.VerificationThreads, verifyFn)
	syncSvc := syncfsm.New(laneLabel, cfg, eng, arc, gs, ep, finder, verifierPool)
	verifierPool.SetSink(syncSvc)

	r := reactor.New()
	r.Attach(arch)
	r.Attach(syncSvc)

	return &Lane{
		ID:       cfg.LaneID,
		cfg:      cfg,
		Archive:  arc,
		Pool:     p,
		Store:    agg,
		Recent:   recentCache,
		Archiver: arch,
		Engine:   eng,
		RPC:      rpc,
		Gossip:   gs,
		Finder:   finder,
		Verifier: verifierPool,
		Sync:     syncSvc,
		reactor:  r,
	}, nil
}

// Submit feeds an unverified transaction into the verifier pool, the entry
// point for freshly-received network transactions.
func (l *Lane) Submit(tx txtypes.Transaction) {
	l.Verifier.Submit(tx)
}

// Start launches the verifier pool and the reactor-driven state machines
// (Archiver, Sync Service).
func (l *Lane) Start() {
	l.Verifier.Start()
	l.reactor.Start()
}

// Stop halts the reactor and verifier pool and closes the archive files.
func (l *Lane) Stop() error {
	l.reactor.Stop()
	l.Verifier.Stop()
	return l.Archive.Close()
}
