package ratelimit

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of captures running concurrently against the shared
// browser process. Pages are cheap but renderers are not; an unbounded number
// of simultaneous captures can exhaust the browser's memory.
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate creates a gate allowing up to limit concurrent holders.
// A limit of zero or less disables the bound entirely.
func NewGate(limit int) *Gate {
	if limit <= 0 {
		return &Gate{}
	}
	return &Gate{sem: semaphore.NewWeighted(int64(limit))}
}

// Acquire blocks until a slot is free or the context is done.
func (g *Gate) Acquire(ctx context.Context) error {
	if g.sem == nil {
		return nil
	}
	return g.sem.Acquire(ctx, 1)
}

// TryAcquire grabs a slot without blocking.
func (g *Gate) TryAcquire() bool {
	if g.sem == nil {
		return true
	}
	return g.sem.TryAcquire(1)
}

// Release frees a previously acquired slot.
func (g *Gate) Release() {
	if g.sem != nil {
		g.sem.Release(1)
	}
}
