package verifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchai/txlane/pkg/txtypes"
	"github.com/fetchai/txlane/pkg/txtypes/testutil"
)

type collectingSink struct {
	mu  sync.Mutex
	got []txtypes.Transaction
}

func (s *collectingSink) OnTransaction(tx txtypes.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, tx)
}

func (s *collectingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func TestPoolDispatchesAcceptedTransactions(t *testing.T) {
	sink := &collectingSink{}
	p := New("lane-test", 2, func(txtypes.Transaction) bool { return true })
	p.SetSink(sink)
	p.Start()
	defer p.Stop()

	tx := testutil.NewRandomTransaction(4, 1, 1)
	p.Submit(tx)

	require.Eventually(t, func() bool { return sink.count() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestPoolDropsRejectedTransactions(t *testing.T) {
	sink := &collectingSink{}
	p := New("lane-test", 1, func(txtypes.Transaction) bool { return false })
	p.SetSink(sink)
	p.Start()
	defer p.Stop()

	p.Submit(testutil.NewRandomTransaction(4, 1, 1))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, sink.count())
}

func TestPoolStartStopIsIdempotent(t *testing.T) {
	p := New("lane-test", 1, func(txtypes.Transaction) bool { return true })
	p.SetSink(&collectingSink{})

	p.Start()
	p.Start()
	p.Stop()
	p.Stop()
}
