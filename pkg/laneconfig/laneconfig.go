// Package laneconfig holds the plain configuration struct a lane is built
// from. There is no flag parsing or file loading here (that's the CLI
// entrypoint's job, if it wants one) — just the values spec.md §6 names.
package laneconfig

import "time"

// Config carries the tunables for a single lane instance.
type Config struct {
	// LaneID identifies which shard of the key space this instance owns.
	LaneID uint32
	// NumLanes is the total shard count; LaneID must be < NumLanes.
	NumLanes uint32

	// VerificationThreads is the size of the verifier pool's worker set.
	VerificationThreads int

	// MainTimeout bounds how long the sync FSM waits for OBJECT_COUNT
	// replies before resolving the counts it has.
	MainTimeout time.Duration
	// PromiseWaitTimeout bounds how long the sync FSM waits in
	// RESOLVING_OBJECTS for outstanding fetch replies before moving on. A
	// promise's own expiry is set by the peer endpoint, not by this value.
	PromiseWaitTimeout time.Duration
	// FetchObjectWaitDuration is the minimum interval between two regular
	// PULL_OBJECTS gossip polls.
	FetchObjectWaitDuration time.Duration

	// StoragePath is prepended verbatim to the archive's bbolt file names
	// (lane%03d_transaction.db, lane%03d_transaction_index.db); to place
	// them in a directory it must end with a path separator.
	StoragePath string
}

// Default returns a Config with the same constants the original storage
// unit used (main_timeout=5s, promise_wait_timeout=2s,
// fetch_object_wait_duration=5s).
func Default(laneID, numLanes uint32) Config {
	return Config{
		LaneID:                  laneID,
		NumLanes:                numLanes,
		VerificationThreads:     4,
		MainTimeout:             5 * time.Second,
		PromiseWaitTimeout:      2 * time.Second,
		FetchObjectWaitDuration: 5 * time.Second,
		StoragePath:             "./",
	}
}
