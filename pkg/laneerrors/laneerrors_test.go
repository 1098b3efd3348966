package laneerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfReturnsMatchingSentinel(t *testing.T) {
	assert.True(t, errors.Is(Of(KindNotFound), ErrNotFound))
	assert.True(t, errors.Is(Of(KindStorage), ErrStorage))
	assert.True(t, errors.Is(Of(KindRPCFailure), ErrRPCFailure))
	assert.True(t, errors.Is(Of(KindVerifyFailure), ErrVerifyFailure))
	assert.True(t, errors.Is(Of(KindQueueFull), ErrQueueFull))
	assert.True(t, errors.Is(Of(KindProtocolError), ErrProtocolError))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "queue_full", KindQueueFull.String())
}

func TestWrappedSentinelStillMatchesErrorsIs(t *testing.T) {
	wrapped := fmt.Errorf("archive: write failed: %w", ErrStorage)
	assert.True(t, errors.Is(wrapped, ErrStorage))
}
