// Package txfinder implements the Tx-Finder Queue: an MPSC queue of
// digests a peer explicitly told us were missing, which the sync FSM drains
// during its QUERY_OBJECTS state.
package txfinder

import (
	"github.com/fetchai/txlane/pkg/queue"
	"github.com/fetchai/txlane/pkg/txtypes"
)

// ProtoLimit bounds how many digests a single QUERY_OBJECTS cycle collects.
const ProtoLimit = 1000

// Method id for the MISSING_TX_FINDER service.
const MethodIssueCallForMissingTxs = 1

// Queue is the Tx-Finder Queue.
type Queue struct {
	q *queue.Digest[txtypes.Digest]
}

// New creates an empty Queue with room for ProtoLimit*16 pending digests,
// generous headroom over a single drain cycle.
func New() *Queue {
	return &Queue{q: queue.NewDigest[txtypes.Digest](ProtoLimit * 16)}
}

// IssueCallForMissingTxs enqueues digests a peer reported as missing.
// Entries beyond capacity are dropped silently — the requesting peer will
// simply re-request on its own retry cadence.
func (q *Queue) IssueCallForMissingTxs(digests []txtypes.Digest) {
	for _, d := range digests {
		_ = q.q.TryPush(d)
	}
}

// Pop pulls one digest, if any is queued.
func (q *Queue) Pop() (txtypes.Digest, bool) {
	return q.q.TryPop()
}

// DrainUpTo collects up to limit explicitly-requested digests without
// blocking. The sync FSM passes ProtoLimit.
func (q *Queue) DrainUpTo(limit int) []txtypes.Digest {
	return q.q.DrainUpTo(limit)
}
