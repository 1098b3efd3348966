package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchai/txlane/pkg/archive"
	"github.com/fetchai/txlane/pkg/pool"
	"github.com/fetchai/txlane/pkg/txtypes/testutil"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	dir := t.TempDir()
	arc, err := archive.New(filepath.Join(dir, "tx.db"), filepath.Join(dir, "idx.db"), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = arc.Close() })
	return New(pool.New(), arc)
}

func TestAggregatorAddGoesToPoolOnly(t *testing.T) {
	agg := newTestAggregator(t)
	tx := testutil.NewRandomTransaction(4, 1, 1)

	agg.Add(tx)

	assert.True(t, agg.Pool().Has(tx.Digest))
	assert.False(t, agg.Archive().Has(tx.Digest))
	assert.True(t, agg.Has(tx.Digest))
}

func TestAggregatorGetPrefersPoolOverArchive(t *testing.T) {
	agg := newTestAggregator(t)
	tx := testutil.NewRandomTransaction(4, 1, 1)
	require.NoError(t, agg.Archive().Add(tx))

	poolCopy := tx
	poolCopy.ChargeRate = 7
	agg.Pool().Add(poolCopy)

	got, ok, err := agg.Get(tx.Digest)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(7), got.ChargeRate, "pool copy shadows the archived one")
}

func TestAggregatorCountSumsBothTiers(t *testing.T) {
	agg := newTestAggregator(t)
	agg.Pool().Add(testutil.NewRandomTransaction(4, 1, 1))
	require.NoError(t, agg.Archive().Add(testutil.NewRandomTransaction(4, 1, 2)))

	n, err := agg.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestAggregatorHasFallsThroughToArchive(t *testing.T) {
	agg := newTestAggregator(t)
	tx := testutil.NewRandomTransaction(4, 1, 1)
	require.NoError(t, agg.Archive().Add(tx))

	assert.True(t, agg.Has(tx.Digest))
	assert.False(t, agg.Pool().Has(tx.Digest))
}
