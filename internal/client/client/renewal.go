package client

import "sync"

type renewalHandle struct {
	done chan struct{}
	err  error
}

// renewal coordinates access credential renewal so that concurrent callers
// share one in-flight attempt. The handle is published and cleared under
// the same mutex, so checking for a pending renewal and starting one is a
// single step.
//
// gen counts settled renewals. A caller whose request went out under an
// older generation was rejected before that renewal finished, so it takes
// the outcome of the last renewal instead of starting another.
type renewal struct {
	mu      sync.Mutex
	pending *renewalHandle
	last    *renewalHandle
	gen     uint64
}

func (r *renewal) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// beginOrJoin returns the handle the caller should wait on. leader is true
// for the caller that must perform the renewal and then settle it.
func (r *renewal) beginOrJoin(seen uint64) (h *renewalHandle, leader bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending != nil {
		return r.pending, false
	}
	if r.gen != seen && r.last != nil {
		return r.last, false
	}
	r.pending = &renewalHandle{done: make(chan struct{})}
	return r.pending, true
}

// settle records the outcome, clears the handle and wakes every waiter.
func (r *renewal) settle(h *renewalHandle, err error) {
	h.err = err

	r.mu.Lock()
	if r.pending == h {
		r.pending = nil
	}
	r.last = h
	r.gen++
	r.mu.Unlock()

	close(h.done)
}

func (r *renewal) inFlight() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}
