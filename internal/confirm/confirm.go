// Package confirm gates destructive actions behind an explicit confirmation.
//
// A Flow is a two-state machine: Idle, or Pending with exactly one target.
// It is a UI gate only and knows nothing about the request it protects.
package confirm

import (
	"context"
	"sync"
)

// Flow holds at most one target awaiting confirmation.
type Flow[K any] struct {
	mu      sync.Mutex
	target  K
	pending bool
}

// Request makes k the pending target, replacing any previous one.
func (f *Flow[K]) Request(k K) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.target = k
	f.pending = true
}

// Pending returns the current target, if any.
func (f *Flow[K]) Pending() (K, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target, f.pending
}

// Cancel returns to Idle without acting.
func (f *Flow[K]) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

// Confirm returns to Idle and runs action on the pending target. In Idle it is a
// no-op: action is not called and ran is false.
func (f *Flow[K]) Confirm(ctx context.Context, action func(context.Context, K) error) (ran bool, err error) {
	f.mu.Lock()
	if !f.pending {
		f.mu.Unlock()
		return false, nil
	}
	target := f.target
	f.reset()
	f.mu.Unlock()

	return true, action(ctx, target)
}

func (f *Flow[K]) reset() {
	var zero K
	f.target = zero
	f.pending = false
}
