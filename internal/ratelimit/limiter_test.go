package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateBoundsConcurrency(t *testing.T) {
	g := NewGate(2)

	require.NoError(t, g.Acquire(context.Background()))
	require.NoError(t, g.Acquire(context.Background()))
	assert.False(t, g.TryAcquire())

	g.Release()
	assert.True(t, g.TryAcquire())

	g.Release()
	g.Release()
}

func TestGateAcquireHonorsContext(t *testing.T) {
	g := NewGate(1)
	require.NoError(t, g.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := g.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	g.Release()
}

func TestGateUnbounded(t *testing.T) {
	g := NewGate(0)

	for i := 0; i < 100; i++ {
		require.NoError(t, g.Acquire(context.Background()))
	}
	assert.True(t, g.TryAcquire())

	// Release on an unbounded gate is a no-op.
	g.Release()
}
