// Package verifier implements the Transaction Verifier Pool: N verify
// threads feeding a single dispatcher thread. Signature and structural
// verification themselves are out of scope (spec.md §1); the pool accepts
// a VerifyFunc supplied by the caller and treats it as an opaque check.
package verifier

import (
	"sync"
	"time"

	"github.com/fetchai/txlane/pkg/llog"
	"github.com/fetchai/txlane/pkg/lmetrics"
	"github.com/fetchai/txlane/pkg/queue"
	"github.com/fetchai/txlane/pkg/txtypes"
)

// UnverifiedCapacity and VerifiedCapacity are the two queues' bounds (2^16).
const (
	UnverifiedCapacity = 1 << 16
	VerifiedCapacity   = 1 << 16
)

// DispatchBatchSize bounds how many verified transactions one dispatcher
// pass hands to the sink before yielding.
const DispatchBatchSize = 64

// VerifyFunc checks a transaction; returning false causes it to be dropped.
type VerifyFunc func(txtypes.Transaction) bool

// Sink receives verified transactions from the dispatcher.
type Sink interface {
	OnTransaction(tx txtypes.Transaction)
}

// Pool is the Verifier Pool.
type Pool struct {
	laneID string
	verify VerifyFunc
	sink   Sink
	n      int

	unverified *queue.Digest[txtypes.Transaction]
	verified   *queue.Digest[txtypes.Transaction]

	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// New creates a Pool with n verify threads and a verify function. A sink
// must be attached via SetSink before Start — it's set separately because
// the sink (the Lane Service's sync FSM) is typically wired up after the
// pool it depends on.
func New(laneID string, n int, verify VerifyFunc) *Pool {
	return &Pool{
		laneID:     laneID,
		verify:     verify,
		n:          n,
		unverified: queue.NewDigest[txtypes.Transaction](UnverifiedCapacity),
		verified:   queue.NewDigest[txtypes.Transaction](VerifiedCapacity),
		stop:       make(chan struct{}),
	}
}

// SetSink attaches the sink dispatched transactions are handed to. Must be
// called before Start.
func (p *Pool) SetSink(sink Sink) {
	p.sink = sink
}

// Submit enqueues tx for verification. Drops with a warning if the
// unverified queue is full.
func (p *Pool) Submit(tx txtypes.Transaction) {
	if err := p.unverified.TryPush(tx); err != nil {
		llog.WithComponent("verifier").Warn().Str("digest", tx.Digest.String()).Msg("unverified queue full, dropping transaction")
	}
}

// Start launches the verify threads and the dispatcher thread. Idempotent.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go p.verifyLoop()
	}
	p.wg.Add(1)
	go p.dispatchLoop()
}

// Stop signals all threads to exit and joins them. Idempotent.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	close(p.stop)
	p.wg.Wait()
	p.stop = make(chan struct{})
}

func (p *Pool) verifyLoop() {
	defer p.wg.Done()
	log := llog.WithComponent("verifier")
	for {
		select {
		case <-p.stop:
			return
		default:
		}

		tx, ok := p.unverified.Pop(300 * time.Millisecond)
		if !ok {
			continue
		}

		if p.verify(tx) {
			if err := p.verified.TryPush(tx); err != nil {
				log.Warn().Str("digest", tx.Digest.String()).Msg("verified queue full, dropping transaction")
			} else {
				lmetrics.VerifierAcceptedTotal.WithLabelValues(p.laneID).Inc()
			}
		} else {
			lmetrics.VerifierRejectedTotal.WithLabelValues(p.laneID).Inc()
			log.Warn().Str("digest", tx.Digest.String()).Msg("transaction failed verification")
		}
	}
}

func (p *Pool) dispatchLoop() {
	defer p.wg.Done()
	first := true
	for {
		select {
		case <-p.stop:
			return
		default:
		}

		wait := time.Millisecond
		if first {
			wait = time.Second
		}

		tx, ok := p.verified.Pop(wait)
		if !ok {
			first = true
			continue
		}
		first = false
		p.sink.OnTransaction(tx)

		for i := 1; i < DispatchBatchSize; i++ {
			tx, ok := p.verified.Pop(time.Millisecond)
			if !ok {
				first = true
				break
			}
			p.sink.OnTransaction(tx)
		}
	}
}
