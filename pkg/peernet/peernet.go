// Package peernet models the peer-to-peer overlay the lane engine talks
// over, deliberately out of scope per spec.md §1. Endpoint is an interface
// exposing the connected peer set and the four Sync Protocol RPCs; it has
// no unicast or broadcast primitives. LocalEndpoint is an in-memory test
// double that lets two lane instances exercise the sync flows without any
// real transport.
package peernet

import (
	"github.com/fetchai/txlane/pkg/queue"
	"github.com/fetchai/txlane/pkg/txtypes"
)

// PeerID identifies a directly-connected peer.
type PeerID string

// ObjectCountFunc through SpecificFunc are the four Sync Protocol RPCs a
// peer can be asked to serve, in the shape the FSM needs: each returns
// immediately with a value the caller wraps in a Promise.
type (
	ObjectCountFunc  func() (uint64, error)
	PullObjectsFunc  func() ([]txtypes.Transaction, error)
	PullSubtreeFunc  func(prefix txtypes.Digest, bitCount uint) ([]txtypes.Transaction, error)
	PullSpecificFunc func(digests []txtypes.Digest) ([]txtypes.Transaction, error)
)

// Endpoint is the opaque overlay primitive the sync FSM addresses peers
// through. Every call returns a Promise immediately; the FSM polls it via
// Resolve and never blocks waiting on the network.
type Endpoint interface {
	// Peers returns the currently directly-connected peer set.
	Peers() []PeerID

	ObjectCount(peer PeerID) *queue.Promise[uint64]
	PullObjects(peer PeerID) *queue.Promise[[]txtypes.Transaction]
	PullSubtree(peer PeerID, prefix txtypes.Digest, bitCount uint) *queue.Promise[[]txtypes.Transaction]
	PullSpecificObjects(peer PeerID, digests []txtypes.Digest) *queue.Promise[[]txtypes.Transaction]
}

// PeerHandlers is what a LocalEndpoint dispatches RPCs to for one peer —
// typically a gossip.Server wrapped with closures matching these shapes.
type PeerHandlers struct {
	ObjectCount  ObjectCountFunc
	PullObjects  PullObjectsFunc
	PullSubtree  PullSubtreeFunc
	PullSpecific PullSpecificFunc
}
