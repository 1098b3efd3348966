package peernet

import (
	"sync"
	"time"

	"github.com/fetchai/txlane/pkg/queue"
	"github.com/fetchai/txlane/pkg/txtypes"
)

// LocalEndpoint is an in-memory Endpoint implementation: each peer's
// handlers run inline on their own goroutine, simulating a network RPC's
// asynchrony without any real transport. It exists to drive the two-lane
// subtree/gossip sync scenario in tests.
type LocalEndpoint struct {
	mu      sync.RWMutex
	peers   map[PeerID]PeerHandlers
	timeout time.Duration
}

// NewLocalEndpoint creates an empty LocalEndpoint. timeout bounds the
// promise deadline handed out for every call.
func NewLocalEndpoint(timeout time.Duration) *LocalEndpoint {
	return &LocalEndpoint{peers: make(map[PeerID]PeerHandlers), timeout: timeout}
}

// AddPeer registers (or replaces) the handlers for a directly-connected
// peer.
func (l *LocalEndpoint) AddPeer(id PeerID, h PeerHandlers) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.peers[id] = h
}

// RemovePeer drops a peer, simulating disconnection.
func (l *LocalEndpoint) RemovePeer(id PeerID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.peers, id)
}

// Peers returns the currently connected peer ids.
func (l *LocalEndpoint) Peers() []PeerID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]PeerID, 0, len(l.peers))
	for id := range l.peers {
		out = append(out, id)
	}
	return out
}

func (l *LocalEndpoint) handlers(peer PeerID) (PeerHandlers, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.peers[peer]
	return h, ok
}

// ObjectCount issues OBJECT_COUNT to peer.
func (l *LocalEndpoint) ObjectCount(peer PeerID) *queue.Promise[uint64] {
	p := queue.NewPromise[uint64](time.Now().Add(l.timeout))
	h, ok := l.handlers(peer)
	if !ok || h.ObjectCount == nil {
		p.Reject(errPeerUnreachable)
		return p
	}
	go func() {
		v, err := h.ObjectCount()
		if err != nil {
			p.Reject(err)
			return
		}
		p.Fulfill(v)
	}()
	return p
}

// PullObjects issues PULL_OBJECTS to peer.
func (l *LocalEndpoint) PullObjects(peer PeerID) *queue.Promise[[]txtypes.Transaction] {
	p := queue.NewPromise[[]txtypes.Transaction](time.Now().Add(l.timeout))
	h, ok := l.handlers(peer)
	if !ok || h.PullObjects == nil {
		p.Reject(errPeerUnreachable)
		return p
	}
	go func() {
		v, err := h.PullObjects()
		if err != nil {
			p.Reject(err)
			return
		}
		p.Fulfill(v)
	}()
	return p
}

// PullSubtree issues PULL_SUBTREE to peer.
func (l *LocalEndpoint) PullSubtree(peer PeerID, prefix txtypes.Digest, bitCount uint) *queue.Promise[[]txtypes.Transaction] {
	p := queue.NewPromise[[]txtypes.Transaction](time.Now().Add(l.timeout))
	h, ok := l.handlers(peer)
	if !ok || h.PullSubtree == nil {
		p.Reject(errPeerUnreachable)
		return p
	}
	go func() {
		v, err := h.PullSubtree(prefix, bitCount)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Fulfill(v)
	}()
	return p
}

// PullSpecificObjects issues PULL_SPECIFIC_OBJECTS to peer.
func (l *LocalEndpoint) PullSpecificObjects(peer PeerID, digests []txtypes.Digest) *queue.Promise[[]txtypes.Transaction] {
	p := queue.NewPromise[[]txtypes.Transaction](time.Now().Add(l.timeout))
	h, ok := l.handlers(peer)
	if !ok || h.PullSpecific == nil {
		p.Reject(errPeerUnreachable)
		return p
	}
	go func() {
		v, err := h.PullSpecific(digests)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Fulfill(v)
	}()
	return p
}
