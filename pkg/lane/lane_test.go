package lane

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fetchai/txlane/pkg/laneconfig"
	"github.com/fetchai/txlane/pkg/peernet"
	"github.com/fetchai/txlane/pkg/txtypes"
	"github.com/fetchai/txlane/pkg/txtypes/testutil"
)

// wirePeer exposes a Lane's gossip server as an Endpoint peer, adapting the
// method shapes gossip.Server exposes to the closures peernet.PeerHandlers
// expects.
func wirePeer(ep *peernet.LocalEndpoint, id peernet.PeerID, l *Lane) {
	ep.AddPeer(id, peernet.PeerHandlers{
		ObjectCount: l.Gossip.ObjectCount,
		PullObjects: func() ([]txtypes.Transaction, error) {
			return l.Gossip.PullObjects(), nil
		},
		PullSubtree: l.Gossip.PullSubtree,
		PullSpecific: func(digests []txtypes.Digest) ([]txtypes.Transaction, error) {
			return l.Gossip.PullSpecificObjects(digests), nil
		},
	})
}

func acceptAll(txtypes.Transaction) bool { return true }

// TestTwoLaneBulkSyncAndGossip exercises the bulk subtree sync and
// steady-state gossip flows between two lane instances sharing one shard,
// connected through the in-memory endpoint: transactions archived on one
// side should eventually be visible on the other.
func TestTwoLaneBulkSyncAndGossip(t *testing.T) {
	epA := peernet.NewLocalEndpoint(2 * time.Second)
	epB := peernet.NewLocalEndpoint(2 * time.Second)

	cfgA := laneconfig.Default(0, 1)
	cfgA.StoragePath = t.TempDir() + "/"
	cfgA.MainTimeout = 200 * time.Millisecond
	cfgA.PromiseWaitTimeout = 200 * time.Millisecond
	cfgA.FetchObjectWaitDuration = 50 * time.Millisecond

	cfgB := laneconfig.Default(0, 1)
	cfgB.StoragePath = t.TempDir() + "/"
	cfgB.MainTimeout = 200 * time.Millisecond
	cfgB.PromiseWaitTimeout = 200 * time.Millisecond
	cfgB.FetchObjectWaitDuration = 50 * time.Millisecond

	laneA, err := New(cfgA, acceptAll, epA)
	require.NoError(t, err)
	laneB, err := New(cfgB, acceptAll, epB)
	require.NoError(t, err)

	// A sees B as a peer, B sees A as a peer; each resolves subtree/gossip
	// RPCs against the other's gossip server.
	wirePeer(epA, "B", laneB)
	wirePeer(epB, "A", laneA)

	laneA.Start()
	laneB.Start()
	defer laneA.Stop()
	defer laneB.Stop()

	// Seed lane A with a transaction that's already archived (eligible for
	// subtree sync) and one still sitting in the pool (eligible only for
	// steady-state gossip).
	archived := testutil.NewRandomTransaction(0, 0, 1)
	require.NoError(t, laneA.Archive.Add(archived))

	fresh := testutil.NewRandomTransaction(0, 0, 2)
	laneA.Submit(fresh)

	require.Eventually(t, func() bool {
		return laneB.Engine.Has(archived.Digest)
	}, 5*time.Second, 20*time.Millisecond, "archived transaction should reach lane B via subtree sync")

	require.Eventually(t, func() bool {
		return laneB.Engine.Has(fresh.Digest)
	}, 5*time.Second, 20*time.Millisecond, "freshly submitted transaction should reach lane B via gossip")
}

// TestSyncServiceBecomesReadyAfterFirstCycle checks the IsReady() contract:
// it flips true once RESOLVING_OBJECTS is reached. The lane holds one
// archived transaction so the object count is non-zero (a zero count sends
// the FSM back to QUERY_OBJECT_COUNTS) and subtree sync can complete.
func TestSyncServiceBecomesReadyAfterFirstCycle(t *testing.T) {
	ep := peernet.NewLocalEndpoint(time.Second)
	cfg := laneconfig.Default(0, 1)
	cfg.StoragePath = t.TempDir() + "/"
	cfg.FetchObjectWaitDuration = time.Millisecond

	l, err := New(cfg, acceptAll, ep)
	require.NoError(t, err)
	require.NoError(t, l.Archive.Add(testutil.NewRandomTransaction(0, 0, 1)))

	self := peernet.PeerID("self")
	wirePeer(ep, self, l)

	l.Start()
	defer l.Stop()

	require.Eventually(t, func() bool {
		return l.Sync.IsReady()
	}, 5*time.Second, 10*time.Millisecond)
}
