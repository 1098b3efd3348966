// Package testutil provides deterministic transaction fixtures for tests
// across the lane engine, mirroring the original storage unit's benchmark
// generators so individual test files don't hand-roll ad hoc literals.
package testutil

import (
	"encoding/binary"
	"math/big"

	"github.com/fetchai/txlane/pkg/txtypes"
)

// NewRandomTransaction returns a deterministic pseudo-random transaction
// whose digest's top shardBits bits encode laneID. seed varies the rest of
// the digest so repeated calls with the same (shardBits, laneID) produce
// distinct transactions; pass an incrementing counter as seed in loops.
func NewRandomTransaction(shardBits uint, laneID uint32, seed uint64) txtypes.Transaction {
	var d txtypes.Digest
	prefix := txtypes.RootPrefix(uint64(laneID), shardBits)
	copy(d[:], prefix[:])

	var tail [8]byte
	binary.BigEndian.PutUint64(tail[:], seed*2654435761+1)
	copy(d[txtypes.DigestSize-8:], tail[:])

	return txtypes.Transaction{
		Digest:      d,
		FromAddress: "fetch1testaddress",
		Transfers: []txtypes.Transfer{
			{ToAddress: "fetch1recipient", Amount: big.NewInt(1)},
		},
		ValidFrom:   0,
		ValidUntil:  ^uint64(0),
		ChargeRate:  1,
		ChargeLimit: 1000,
		Action:      "transfer",
		Data:        tail[:],
		Signatories: []txtypes.Signatory{
			{Identity: "fetch1testaddress", Signature: append([]byte(nil), tail[:]...)},
		},
	}
}
