// Package syncfsm implements the client-side Transaction Sync Service FSM:
// the eight-state reactor driving a lane's three sync flows (bulk subtree
// sync, steady-state gossip, and targeted fetch) against its peers.
package syncfsm

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/fetchai/txlane/pkg/archive"
	"github.com/fetchai/txlane/pkg/engine"
	"github.com/fetchai/txlane/pkg/gossip"
	"github.com/fetchai/txlane/pkg/laneconfig"
	"github.com/fetchai/txlane/pkg/llog"
	"github.com/fetchai/txlane/pkg/lmetrics"
	"github.com/fetchai/txlane/pkg/peernet"
	"github.com/fetchai/txlane/pkg/queue"
	"github.com/fetchai/txlane/pkg/txfinder"
	"github.com/fetchai/txlane/pkg/txtypes"
	"github.com/fetchai/txlane/pkg/verifier"
)

// State is one of the sync FSM's eight states.
type State int

const (
	Initial State = iota
	QueryObjectCounts
	ResolvingObjectCounts
	QuerySubtree
	ResolvingSubtree
	QueryObjects
	ResolvingObjects
	TrimCache
)

func (s State) String() string {
	switch s {
	case QueryObjectCounts:
		return "QUERY_OBJECT_COUNTS"
	case ResolvingObjectCounts:
		return "RESOLVING_OBJECT_COUNTS"
	case QuerySubtree:
		return "QUERY_SUBTREE"
	case ResolvingSubtree:
		return "RESOLVING_SUBTREE"
	case QueryObjects:
		return "QUERY_OBJECTS"
	case ResolvingObjects:
		return "RESOLVING_OBJECTS"
	case TrimCache:
		return "TRIM_CACHE"
	default:
		return "INITIAL"
	}
}

// Per-cycle resolution caps, from spec.md §4.9.
const (
	MaxObjectCountResolutionPerCycle = 128
	MaxSubtreeResolutionPerCycle     = 128
	MaxRequestsPerNode               = 2
)

type subtreeKey struct {
	peer peernet.PeerID
	root uint64
}

// Service drives one lane's outbound sync. It implements verifier.Sink:
// the Verifier Pool's dispatcher calls OnTransaction for every verified tx,
// whether it arrived via subtree sync or steady-state gossip.
type Service struct {
	laneID  string
	cfg     laneconfig.Config
	engine  *engine.Engine
	archive *archive.Store
	gossip  *gossip.Server
	ep      peernet.Endpoint
	finder  *txfinder.Queue
	verify  *verifier.Pool

	state    State
	deadline time.Time

	maxObjectCount uint64
	rootSize       uint
	rootsQueue     []uint64

	countPromises    *queue.RequestingQueue[peernet.PeerID, uint64]
	subtreePromises  *queue.RequestingQueue[subtreeKey, []txtypes.Transaction]
	specificPromises *queue.RequestingQueue[peernet.PeerID, []txtypes.Transaction]
	regularPromises  *queue.RequestingQueue[peernet.PeerID, []txtypes.Transaction]
	inFlight         map[peernet.PeerID]int

	lastFetchObjectsTime time.Time
	isReady              atomic.Bool
}

// New binds a Service over its dependencies.
func New(laneID string, cfg laneconfig.Config, eng *engine.Engine, arc *archive.Store, gs *gossip.Server, ep peernet.Endpoint, finder *txfinder.Queue, verifierPool *verifier.Pool) *Service {
	return &Service{
		laneID:          laneID,
		cfg:             cfg,
		engine:          eng,
		archive:         arc,
		gossip:          gs,
		ep:              ep,
		finder:           finder,
		verify:           verifierPool,
		state:            Initial,
		countPromises:    queue.NewRequestingQueue[peernet.PeerID, uint64](),
		subtreePromises:  queue.NewRequestingQueue[subtreeKey, []txtypes.Transaction](),
		specificPromises: queue.NewRequestingQueue[peernet.PeerID, []txtypes.Transaction](),
		regularPromises:  queue.NewRequestingQueue[peernet.PeerID, []txtypes.Transaction](),
		inFlight:         make(map[peernet.PeerID]int),
	}
}

// IsReady reports whether the FSM has reached RESOLVING_OBJECTS at least
// once, i.e. subtree sync has completed.
func (s *Service) IsReady() bool {
	return s.isReady.Load()
}

// IsReadyToExecute always returns true: every state has either work to
// check or a delay already encoded in its own return value.
func (s *Service) IsReadyToExecute() bool {
	return true
}

// Execute runs one step of the FSM and returns how long to wait before the
// reactor calls it again.
func (s *Service) Execute() time.Duration {
	lmetrics.SyncCurrentState.WithLabelValues(s.laneID).Set(float64(s.state))
	lmetrics.SyncCurrentPeers.WithLabelValues(s.laneID).Set(float64(len(s.ep.Peers())))

	switch s.state {
	case Initial:
		return s.runInitial()
	case QueryObjectCounts:
		return s.runQueryObjectCounts()
	case ResolvingObjectCounts:
		return s.runResolvingObjectCounts()
	case QuerySubtree:
		return s.runQuerySubtree()
	case ResolvingSubtree:
		return s.runResolvingSubtree()
	case QueryObjects:
		return s.runQueryObjects()
	case ResolvingObjects:
		return s.runResolvingObjects()
	case TrimCache:
		return s.runTrimCache()
	default:
		s.state = Initial
		return 0
	}
}

func (s *Service) runInitial() time.Duration {
	if len(s.ep.Peers()) == 0 {
		return 100 * time.Millisecond
	}
	s.state = QueryObjectCounts
	return 0
}

func (s *Service) runQueryObjectCounts() time.Duration {
	s.maxObjectCount = 0
	for _, peer := range s.ep.Peers() {
		s.countPromises.Stage(peer, s.ep.ObjectCount(peer))
	}
	s.deadline = time.Now().Add(s.cfg.MainTimeout)
	s.state = ResolvingObjectCounts
	return 0
}

func (s *Service) runResolvingObjectCounts() time.Duration {
	completed, failed, pending := s.countPromises.Drain(MaxObjectCountResolutionPerCycle)
	for _, c := range completed {
		if c.Value > s.maxObjectCount {
			s.maxObjectCount = c.Value
		}
	}
	if len(failed) > 0 {
		lmetrics.SyncResolveCountFailures.WithLabelValues(s.laneID).Add(float64(len(failed)))
	}

	if pending > 0 && time.Now().Before(s.deadline) {
		return 20 * time.Millisecond
	}

	if s.maxObjectCount == 0 {
		s.state = QueryObjectCounts
		return 2 * time.Second
	}

	s.rootSize = rootSizeFor(s.maxObjectCount)
	s.rootsQueue = s.rootsQueue[:0]
	for r := uint64(0); r < uint64(1)<<s.rootSize; r++ {
		s.rootsQueue = append(s.rootsQueue, r)
	}
	s.state = QuerySubtree
	return 0
}

// rootSizeFor implements spec.md §4.9's root_size formula:
// ceil(log2(max/PULL_LIMIT + 1)) + 1, clamped to a minimum of 1.
func rootSizeFor(maxObjectCount uint64) uint {
	ratio := float64(maxObjectCount)/float64(gossip.PullLimit) + 1
	size := int(math.Ceil(math.Log2(ratio))) + 1
	if size < 1 {
		size = 1
	}
	return uint(size)
}

func (s *Service) runQuerySubtree() time.Duration {
	if len(s.rootsQueue) == 0 && s.subtreePromises.Len() == 0 {
		s.state = QueryObjects
		return 0
	}

	for _, peer := range s.ep.Peers() {
		if len(s.rootsQueue) == 0 {
			break
		}
		if s.inFlight[peer] >= MaxRequestsPerNode {
			continue
		}
		root := s.rootsQueue[0]
		s.rootsQueue = s.rootsQueue[1:]

		prefix := txtypes.RootPrefix(root, s.rootSize)
		p := s.ep.PullSubtree(peer, prefix, s.rootSize)
		s.subtreePromises.Stage(subtreeKey{peer: peer, root: root}, p)
		s.inFlight[peer]++
		lmetrics.SyncSubtreeRequestsTotal.WithLabelValues(s.laneID).Inc()
	}

	s.deadline = time.Now().Add(s.cfg.PromiseWaitTimeout)
	s.state = ResolvingSubtree
	return 0
}

func (s *Service) runResolvingSubtree() time.Duration {
	completed, failed, pending := s.subtreePromises.Drain(MaxSubtreeResolutionPerCycle)

	for _, c := range completed {
		s.inFlight[c.Key.peer]--
		lmetrics.SyncSubtreeResponseTotal.WithLabelValues(s.laneID).Inc()
		for _, tx := range c.Value {
			tx.FromSubtreeSync = true
			s.verify.Submit(tx)
		}
	}
	for _, f := range failed {
		s.inFlight[f.Key.peer]--
		s.rootsQueue = append(s.rootsQueue, f.Key.root)
		lmetrics.SyncSubtreeFailureTotal.WithLabelValues(s.laneID).Inc()
	}

	if len(s.rootsQueue) > 0 || pending > 0 {
		s.state = QuerySubtree
		return 10 * time.Millisecond
	}
	s.state = QueryObjects
	return 0
}

func (s *Service) runQueryObjects() time.Duration {
	specific := s.finder.DrainUpTo(txfinder.ProtoLimit)
	needSpecific := len(specific) > 0
	issued := false

	if needSpecific {
		for _, peer := range s.ep.Peers() {
			s.specificPromises.Stage(peer, s.ep.PullSpecificObjects(peer, specific))
		}
		issued = true
	}

	elapsed := time.Since(s.lastFetchObjectsTime) >= s.cfg.FetchObjectWaitDuration
	if elapsed && !needSpecific {
		for _, peer := range s.ep.Peers() {
			s.regularPromises.Stage(peer, s.ep.PullObjects(peer))
		}
		s.lastFetchObjectsTime = time.Now()
		issued = true
	}

	if !issued {
		return 10 * time.Millisecond
	}

	s.isReady.Store(true)
	s.deadline = time.Now().Add(s.cfg.PromiseWaitTimeout)
	s.state = ResolvingObjects
	return 0
}

func (s *Service) runResolvingObjects() time.Duration {
	log := llog.WithComponent("syncfsm")

	completedS, failedS, pendingS := s.specificPromises.Drain(MaxSubtreeResolutionPerCycle)
	completedR, failedR, pendingR := s.regularPromises.Drain(MaxSubtreeResolutionPerCycle)

	for _, batch := range [][]queue.DrainResult[peernet.PeerID, []txtypes.Transaction]{completedS, completedR} {
		for _, c := range batch {
			for _, tx := range c.Value {
				tx.FromSubtreeSync = false
				s.verify.Submit(tx)
			}
		}
	}
	if len(failedS)+len(failedR) > 0 {
		log.Warn().Int("failed", len(failedS)+len(failedR)).Msg("object fetch requests failed")
	}

	if pendingS+pendingR > 0 && time.Now().Before(s.deadline) {
		return 10 * time.Millisecond
	}

	s.state = TrimCache
	return 0
}

func (s *Service) runTrimCache() time.Duration {
	s.gossip.TrimCache()
	s.state = QueryObjects
	return 0
}

// OnTransaction implements verifier.Sink: it's the sole point where the
// Verifier Pool's dispatcher hands back a passed transaction, from either
// sync flow or the steady-state verifier pipeline fed by the Lane Service.
func (s *Service) OnTransaction(tx txtypes.Transaction) {
	if s.archive.Has(tx.Digest) {
		return
	}
	s.engine.Add(tx, !tx.FromSubtreeSync)
	lmetrics.SyncStoredTransactions.WithLabelValues(s.laneID).Inc()
}
