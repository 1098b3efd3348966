package txfinder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fetchai/txlane/pkg/txtypes"
)

func TestQueueIssueCallForMissingTxsThenDrain(t *testing.T) {
	q := New()
	d1 := txtypes.Digest{1}
	d2 := txtypes.Digest{2}

	q.IssueCallForMissingTxs([]txtypes.Digest{d1, d2})

	got := q.DrainUpTo(10)
	assert.ElementsMatch(t, []txtypes.Digest{d1, d2}, got)
}

func TestQueueDrainUpToRespectsLimit(t *testing.T) {
	q := New()
	digests := make([]txtypes.Digest, 5)
	for i := range digests {
		digests[i][0] = byte(i)
	}
	q.IssueCallForMissingTxs(digests)

	got := q.DrainUpTo(2)
	assert.Len(t, got, 2)
}

func TestQueuePopSingleEntry(t *testing.T) {
	q := New()
	q.IssueCallForMissingTxs([]txtypes.Digest{{9}})

	d, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, byte(9), d[0])

	_, ok = q.Pop()
	assert.False(t, ok)
}
