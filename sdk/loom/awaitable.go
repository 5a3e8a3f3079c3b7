package loom

import (
	"context"
	"sync"
)

const (
	awaitablePending  = 0
	awaitableResolved = 1
	awaitableRejected = 2
)

// awaitable is a one-shot latch: it starts pending and is fulfilled exactly
// once, after which every waiter observes the final state.
type awaitable struct {
	mutex sync.Mutex
	done  chan struct{}

	state uint32
}

func newAwaitable() *awaitable {
	return &awaitable{done: make(chan struct{})}
}

func (a *awaitable) fulfill(state uint32) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.state != awaitablePending {
		return
	}
	a.state = state
	close(a.done)
}

func (a *awaitable) pending() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.state == awaitablePending
}

// await blocks until the awaitable is fulfilled or the context is canceled.
// It returns true if the awaitable resolved successfully.
func (a *awaitable) await(ctx context.Context) bool {
	select {
	case <-a.done:
	case <-ctx.Done():
		return false
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.state == awaitableResolved
}
