package peernet

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchai/txlane/pkg/queue"
	"github.com/fetchai/txlane/pkg/txtypes"
)

func resolveSync[T any](t *testing.T, p *queue.Promise[T]) (T, error) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		state, v, err := p.Resolve()
		switch state {
		case queue.Completed:
			return v, nil
		case queue.Failed:
			return v, err
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("promise never resolved")
	var zero T
	return zero, nil
}

func TestLocalEndpointObjectCountFulfillsPromise(t *testing.T) {
	ep := NewLocalEndpoint(time.Second)
	ep.AddPeer("peer-a", PeerHandlers{
		ObjectCount: func() (uint64, error) { return 42, nil },
	})

	v, err := resolveSync(t, ep.ObjectCount("peer-a"))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)
}

func TestLocalEndpointRejectsUnknownPeer(t *testing.T) {
	ep := NewLocalEndpoint(time.Second)
	_, err := resolveSync(t, ep.ObjectCount("ghost"))
	assert.Error(t, err)
}

func TestLocalEndpointPropagatesHandlerError(t *testing.T) {
	ep := NewLocalEndpoint(time.Second)
	boom := errors.New("boom")
	ep.AddPeer("peer-a", PeerHandlers{
		PullObjects: func() ([]txtypes.Transaction, error) { return nil, boom },
	})

	_, err := resolveSync(t, ep.PullObjects("peer-a"))
	assert.ErrorIs(t, err, boom)
}

func TestLocalEndpointPeersReflectsAddRemove(t *testing.T) {
	ep := NewLocalEndpoint(time.Second)
	ep.AddPeer("peer-a", PeerHandlers{})
	ep.AddPeer("peer-b", PeerHandlers{})
	assert.Len(t, ep.Peers(), 2)

	ep.RemovePeer("peer-a")
	assert.Len(t, ep.Peers(), 1)
}

func TestLocalEndpointPullSubtreeAndSpecific(t *testing.T) {
	ep := NewLocalEndpoint(time.Second)
	want := []txtypes.Transaction{{Digest: txtypes.Digest{1}}}
	ep.AddPeer("peer-a", PeerHandlers{
		PullSubtree:  func(prefix txtypes.Digest, bitCount uint) ([]txtypes.Transaction, error) { return want, nil },
		PullSpecific: func(digests []txtypes.Digest) ([]txtypes.Transaction, error) { return want, nil },
	})

	got, err := resolveSync(t, ep.PullSubtree("peer-a", txtypes.Digest{}, 4))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = resolveSync(t, ep.PullSpecificObjects("peer-a", nil))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
