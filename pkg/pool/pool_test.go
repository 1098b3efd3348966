package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchai/txlane/pkg/txtypes/testutil"
)

func TestPoolAddHasGetRemove(t *testing.T) {
	p := New()
	tx := testutil.NewRandomTransaction(4, 1, 1)

	p.Add(tx)
	assert.True(t, p.Has(tx.Digest))
	assert.Equal(t, uint64(1), p.Count())

	got, ok := p.Get(tx.Digest)
	require.True(t, ok)
	assert.Equal(t, tx.Digest, got.Digest)

	p.Remove(tx.Digest)
	assert.False(t, p.Has(tx.Digest))
	assert.Equal(t, uint64(0), p.Count())
}

func TestPoolRemoveMissingIsNoOp(t *testing.T) {
	p := New()
	p.Remove(testutil.NewRandomTransaction(4, 1, 1).Digest)
	assert.Equal(t, uint64(0), p.Count())
}

func TestPoolAddOverwrites(t *testing.T) {
	p := New()
	tx := testutil.NewRandomTransaction(4, 1, 1)
	p.Add(tx)

	tx.ChargeRate = 99
	p.Add(tx)

	got, ok := p.Get(tx.Digest)
	require.True(t, ok)
	assert.Equal(t, uint64(99), got.ChargeRate)
	assert.Equal(t, uint64(1), p.Count())
}
