// Package viewstate folds repository sequences into observable UI state.
//
// Each holder owns one state value, replaces it wholesale on every change
// and publishes it to subscribers. A new request cancels the one in flight
// and bumps a sequence number; emissions from an older request are dropped.
package viewstate

import (
	"context"
	"sync"

	"nimbus/internal/resource"
)

type holder[S any] struct {
	base context.Context
	stop context.CancelFunc

	mu     sync.Mutex
	state  S
	seq    uint64
	cancel context.CancelFunc
	closed bool
	subs   map[int]chan S
	nextID int

	wg sync.WaitGroup
}

func newHolder[S any](initial S) *holder[S] {
	base, stop := context.WithCancel(context.Background())
	return &holder[S]{
		base:  base,
		stop:  stop,
		state: initial,
		subs:  make(map[int]chan S),
	}
}

// State returns the current state.
func (h *holder[S]) State() S {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe returns a channel that receives the current state and every
// later one. Slow readers only see the latest state. The returned func
// unsubscribes and closes the channel.
func (h *holder[S]) Subscribe() (<-chan S, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan S, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- h.state

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Wait blocks until every running fold has finished.
func (h *holder[S]) Wait() {
	h.wg.Wait()
}

// Close cancels the request in flight, waits for folds to stop and closes
// all subscriber channels.
func (h *holder[S]) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.seq++
	h.mu.Unlock()

	h.stop()
	h.wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.subs {
		delete(h.subs, id)
		close(c)
	}
}

// begin starts a new request: the previous one is cancelled, the sequence
// advances and update is applied. ok is false once the holder is closed.
func (h *holder[S]) begin(update func(S) S) (ctx context.Context, seq uint64, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, 0, false
	}

	if h.cancel != nil {
		h.cancel()
	}
	ctx, h.cancel = context.WithCancel(h.base)
	h.seq++
	h.set(update(h.state))
	h.wg.Add(1)
	return ctx, h.seq, true
}

// reset cancels the request in flight and replaces the state without
// starting a new one.
func (h *holder[S]) reset(update func(S) S) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.seq++
	h.set(update(h.state))
}

// apply folds one emission if seq is still the current request.
func (h *holder[S]) apply(seq uint64, update func(S) S) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || seq != h.seq {
		return false
	}
	h.set(update(h.state))
	return true
}

// set must be called with mu held.
func (h *holder[S]) set(s S) {
	h.state = s
	for _, c := range h.subs {
		select {
		case <-c:
		default:
		}
		c <- s
	}
}

// follow drains ch on its own goroutine, folding each value into h.
// The caller must have obtained seq from begin.
func follow[S, T any](h *holder[S], seq uint64, ch <-chan resource.Resource[T], fold func(S, resource.Resource[T]) S) {
	go func() {
		defer h.wg.Done()
		for r := range ch {
			h.apply(seq, func(s S) S { return fold(s, r) })
		}
	}()
}
