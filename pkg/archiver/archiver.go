// Package archiver implements the Confirmation Queue and the Archiver FSM:
// a two-state reactor-driven machine that drains confirmed digests in
// batches and moves transactions from the Memory Pool to the Archive Store.
package archiver

import (
	"strconv"
	"time"

	"github.com/fetchai/txlane/pkg/llog"
	"github.com/fetchai/txlane/pkg/lmetrics"
	"github.com/fetchai/txlane/pkg/queue"
	"github.com/fetchai/txlane/pkg/store"
	"github.com/fetchai/txlane/pkg/txtypes"
)

// ConfirmationQueueCapacity is the minimum required slot count for the
// confirmation queue (2^15).
const ConfirmationQueueCapacity = 1 << 15

// BatchSize is the most digests COLLECTING gathers into one batch; FLUSHING
// then processes that batch one digest per Execute step.
const BatchSize = 100

// State is one of the Archiver's two states.
type State int

const (
	Collecting State = iota
	Flushing
)

func (s State) String() string {
	if s == Flushing {
		return "FLUSHING"
	}
	return "COLLECTING"
}

// Archiver drains the confirmation queue and moves transactions from Pool
// to Archive. It implements reactor.StateMachine.
type Archiver struct {
	laneID string
	queue  *queue.Digest[txtypes.Digest]
	store  *store.Aggregator

	state State
	batch []txtypes.Digest

	confirmedTotal uint64
	duplicateTotal uint64
	additionsTotal uint64
	lostTotal      uint64
	processedTotal uint64
}

// New creates an Archiver over the given aggregator, identified by laneID
// for metrics labeling.
func New(laneID uint32, agg *store.Aggregator) *Archiver {
	lane := laneLabel(laneID)
	return &Archiver{
		laneID: lane,
		queue:  queue.NewDigest[txtypes.Digest](ConfirmationQueueCapacity),
		store:  agg,
		state:  Collecting,
	}
}

func laneLabel(laneID uint32) string {
	return "lane-" + strconv.FormatUint(uint64(laneID), 10)
}

// Confirm enqueues d onto the confirmation queue. Callers block briefly
// before reporting QueueFull.
func (a *Archiver) Confirm(d txtypes.Digest) error {
	push := a.queue.Push(50 * time.Millisecond)
	err := push(d)
	if err != nil {
		return err
	}
	a.confirmedTotal++
	lmetrics.ArchiverConfirmedTotal.WithLabelValues(a.laneID).Inc()
	lmetrics.QueueDepth.WithLabelValues(a.laneID, "confirmation").Set(float64(a.queue.Len()))
	return nil
}

// IsReadyToExecute is always true: the Archiver has work to check on every
// tick, either draining the queue or flushing its batch.
func (a *Archiver) IsReadyToExecute() bool {
	return true
}

// Execute runs one step of the COLLECTING/FLUSHING state machine.
func (a *Archiver) Execute() time.Duration {
	timer := lmetrics.NewTimer()
	defer timer.ObserveDurationVec(lmetrics.ArchiverCycleDuration, a.laneID)

	switch a.state {
	case Collecting:
		return a.collect()
	case Flushing:
		return a.flush()
	default:
		a.state = Collecting
		return 0
	}
}

func (a *Archiver) collect() time.Duration {
	for len(a.batch) < BatchSize {
		d, ok := a.queue.TryPop()
		if !ok {
			break
		}
		a.batch = append(a.batch, d)
	}

	if len(a.batch) >= BatchSize || len(a.batch) > 0 {
		a.state = Flushing
		return 0
	}

	return time.Second
}

func (a *Archiver) flush() time.Duration {
	if len(a.batch) == 0 {
		a.state = Collecting
		return 0
	}

	// LIFO per spec.md §4.5.
	d := a.batch[len(a.batch)-1]
	a.batch = a.batch[:len(a.batch)-1]
	a.processOne(d)
	a.processedTotal++
	lmetrics.ArchiverProcessedTotal.WithLabelValues(a.laneID).Inc()

	if len(a.batch) == 0 {
		a.state = Collecting
	}
	return 0
}

func (a *Archiver) processOne(d txtypes.Digest) {
	log := llog.WithComponent("archiver")

	if a.store.Archive().Has(d) {
		a.duplicateTotal++
		lmetrics.ArchiverDuplicateTotal.WithLabelValues(a.laneID).Inc()
		return
	}

	tx, ok := a.store.Pool().Get(d)
	if !ok {
		a.lostTotal++
		lmetrics.ArchiverLostTotal.WithLabelValues(a.laneID).Inc()
		log.Warn().Str("digest", d.String()).Msg("confirmed digest missing from pool and archive")
		return
	}

	if err := a.store.Archive().Add(tx); err != nil {
		log.Error().Err(err).Str("digest", d.String()).Msg("archive write failed")
		return
	}
	a.store.Pool().Remove(d)
	a.additionsTotal++
	lmetrics.ArchiverAdditionsTotal.WithLabelValues(a.laneID).Inc()
}

// Counters returns the five counters spec.md §4.5 requires to be exposed.
func (a *Archiver) Counters() (confirmed, duplicate, additions, lost, processed uint64) {
	return a.confirmedTotal, a.duplicateTotal, a.additionsTotal, a.lostTotal, a.processedTotal
}
