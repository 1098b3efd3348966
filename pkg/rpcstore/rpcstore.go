// Package rpcstore implements the Storage RPC Protocol: the intra-node
// wrapper an internal control client calls through to reach the engine.
// Method ids are stable per spec.md §6.
package rpcstore

import (
	"github.com/fetchai/txlane/pkg/engine"
	"github.com/fetchai/txlane/pkg/txtypes"
)

// Method ids for the TX_STORE service.
const (
	MethodAdd       = 0
	MethodHas       = 1
	MethodGet       = 2
	MethodGetCount  = 3
	MethodGetRecent = 4
)

// Server wraps an Engine for intra-node RPC access.
type Server struct {
	engine *engine.Engine
}

// New creates a Server over engine.
func New(eng *engine.Engine) *Server {
	return &Server{engine: eng}
}

// Add stores tx. Transactions arriving via internal RPC are not treated as
// fresh network arrivals, so is_recent is always false here.
func (s *Server) Add(tx txtypes.Transaction) {
	s.engine.Add(tx, false)
}

// Has reports whether d is present.
func (s *Server) Has(d txtypes.Digest) bool {
	return s.engine.Has(d)
}

// Get returns the transaction at d. This also triggers Confirm(d) on
// success, per the engine's Get contract (spec.md §4.7 flags this as
// inherited behavior, not a defect to fix).
func (s *Server) Get(d txtypes.Digest) (txtypes.Transaction, error) {
	return s.engine.Get(d)
}

// GetCount returns the aggregator's total count.
func (s *Server) GetCount() (uint64, error) {
	return s.engine.Count()
}

// GetRecent returns up to max recently accepted transaction layouts.
func (s *Server) GetRecent(max int) []txtypes.TransactionLayout {
	return s.engine.GetRecent(max)
}
