package service

import (
	"context"
	"sync"
	"time"
)

// HydrationGate signals that backing data has been loaded. Waiting is bounded:
// a timeout is a soft degradation and callers proceed with what is cached.
type HydrationGate struct {
	once  sync.Once
	ready chan struct{}
}

// NewHydrationGate builds a closed gate.
func NewHydrationGate() *HydrationGate {
	return &HydrationGate{ready: make(chan struct{})}
}

// MarkReady opens the gate. Safe to call more than once.
func (g *HydrationGate) MarkReady() {
	g.once.Do(func() { close(g.ready) })
}

// Ready reports whether the gate is open.
func (g *HydrationGate) Ready() bool {
	select {
	case <-g.ready:
		return true
	default:
		return false
	}
}

// Wait blocks until the gate opens, the timeout elapses or ctx is done. It
// reports whether the gate opened.
func (g *HydrationGate) Wait(ctx context.Context, timeout time.Duration) bool {
	if g.Ready() {
		return true
	}
	if timeout <= 0 {
		return false
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-g.ready:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}
