// Package lmetrics exposes the lane storage engine's counters and gauges as
// write-only prometheus sinks. Per the engine's design notes, metrics are
// never read back by production code — components increment them inline and
// a scrape endpoint (or tests, via testutil) is the only consumer.
package lmetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Archiver FSM counters (spec §4.5 — "must be exposed").
	ArchiverConfirmedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_archiver_confirmed_total",
			Help: "Total number of Confirm() calls received by the archiver, per lane",
		},
		[]string{"lane"},
	)
	ArchiverDuplicateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_archiver_duplicate_total",
			Help: "Total number of confirmations for digests already archived, per lane",
		},
		[]string{"lane"},
	)
	ArchiverAdditionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_archiver_additions_total",
			Help: "Total number of transactions moved from pool to archive, per lane",
		},
		[]string{"lane"},
	)
	ArchiverLostTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_archiver_lost_total",
			Help: "Total number of confirmed digests missing from both pool and archive, per lane",
		},
		[]string{"lane"},
	)
	ArchiverProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_archiver_processed_total",
			Help: "Total number of digests drained from the confirmation queue, per lane",
		},
		[]string{"lane"},
	)

	// Sync service FSM telemetry, grounded on the original's
	// TransactionStoreSyncService counters/gauges.
	SyncStoredTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_sync_stored_transactions_total",
			Help: "Total number of transactions accepted into storage via the sync FSM",
		},
		[]string{"lane"},
	)
	SyncResolveCountFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_sync_resolve_count_failures_total",
			Help: "Total number of failed OBJECT_COUNT promise resolutions",
		},
		[]string{"lane"},
	)
	SyncSubtreeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_sync_subtree_requests_total",
			Help: "Total number of PULL_SUBTREE requests issued",
		},
		[]string{"lane"},
	)
	SyncSubtreeResponseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_sync_subtree_response_total",
			Help: "Total number of PULL_SUBTREE responses received",
		},
		[]string{"lane"},
	)
	SyncSubtreeFailureTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_sync_subtree_failure_total",
			Help: "Total number of PULL_SUBTREE requests that failed or timed out",
		},
		[]string{"lane"},
	)
	SyncCurrentState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "txlane_sync_current_state",
			Help: "Current state of the sync FSM, as a small integer (see syncfsm.State)",
		},
		[]string{"lane"},
	)
	SyncCurrentPeers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "txlane_sync_current_peers",
			Help: "Number of directly-connected peers the sync FSM currently knows about",
		},
		[]string{"lane"},
	)

	// Verifier pool counters.
	VerifierAcceptedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_verifier_accepted_total",
			Help: "Total number of transactions that passed verification",
		},
		[]string{"lane"},
	)
	VerifierRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_verifier_rejected_total",
			Help: "Total number of transactions dropped by verification failure",
		},
		[]string{"lane"},
	)

	// Gossip / sync-protocol server counters.
	GossipObjectCountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_gossip_object_count_total",
			Help: "Total number of OBJECT_COUNT RPCs served",
		},
		[]string{"lane"},
	)
	GossipPullObjectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_gossip_pull_objects_total",
			Help: "Total number of PULL_OBJECTS RPCs served",
		},
		[]string{"lane"},
	)
	GossipPullSubtreeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_gossip_pull_subtree_total",
			Help: "Total number of PULL_SUBTREE RPCs served",
		},
		[]string{"lane"},
	)
	GossipPullSpecificTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_gossip_pull_specific_objects_total",
			Help: "Total number of PULL_SPECIFIC_OBJECTS RPCs served",
		},
		[]string{"lane"},
	)
	GossipCacheTrimmedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txlane_gossip_cache_trimmed_total",
			Help: "Total number of entries evicted from the recent-gossip cache by trim()",
		},
		[]string{"lane"},
	)

	// Queue depth / latency observability.
	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "txlane_queue_depth",
			Help: "Current depth of a named bounded queue",
		},
		[]string{"lane", "queue"},
	)
	ArchiverCycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "txlane_archiver_cycle_duration_seconds",
			Help:    "Time taken by one archiver state-machine step",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"lane"},
	)
)

func init() {
	prometheus.MustRegister(
		ArchiverConfirmedTotal,
		ArchiverDuplicateTotal,
		ArchiverAdditionsTotal,
		ArchiverLostTotal,
		ArchiverProcessedTotal,
		SyncStoredTransactions,
		SyncResolveCountFailures,
		SyncSubtreeRequestsTotal,
		SyncSubtreeResponseTotal,
		SyncSubtreeFailureTotal,
		SyncCurrentState,
		SyncCurrentPeers,
		VerifierAcceptedTotal,
		VerifierRejectedTotal,
		GossipObjectCountTotal,
		GossipPullObjectsTotal,
		GossipPullSubtreeTotal,
		GossipPullSpecificTotal,
		GossipCacheTrimmedTotal,
		QueueDepth,
		ArchiverCycleDuration,
	)
}

// Handler returns the prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations, same shape as the teacher's.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}
