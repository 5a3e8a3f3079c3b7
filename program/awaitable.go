package program

import (
	"context"
	"sync"
)

const (
	awaitablePending  = 0
	awaitableResolved = 1
	awaitableRejected = 2
	awaitableCanceled = 3
)

// awaitable is a one-shot latch shared by every node kind: it starts pending
// and is fulfilled exactly once, after which every waiter observes the final
// state.
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

// await blocks until the awaitable is fulfilled or the context is canceled.
// The second result reports whether the awaitable was fulfilled at all: when
// it is false, the wait ended with the context and the owner's evaluation may
// still be in flight, so none of its fields may be read.
func (a *awaitable) await(ctx context.Context) (uint32, bool) {
	select {
	case <-a.done:
	case <-ctx.Done():
		return awaitableCanceled, false
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.state, true
}
