// Package resource provides AsyncResource, a container that loads a value for
// an input asynchronously and keeps only the result of the latest input.
package resource

import (
	"context"
	"errors"
	"sync"
)

type Status int

const (
	Pending Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// State is a snapshot of a resource. Generation increases with every load;
// a state is never replaced by one of a lower generation.
type State[I comparable, O any] struct {
	Input      I
	Generation uint64
	Status     Status
	Value      O
	Err        error
}

type Loader[I comparable, O any] func(ctx context.Context, input I) (O, error)

var (
	ErrNoInput = errors.New("resource has no input")
	ErrClosed  = errors.New("resource is closed")
)

type AsyncResource[I comparable, O any] struct {
	load Loader[I, O]

	mu       sync.Mutex
	hasInput bool
	closed   bool
	state    State[I, O]
	cancel   context.CancelFunc
	settled  chan struct{}

	subscribers map[uint64]func(State[I, O])
	nextSub     uint64

	dirty    chan struct{}
	done     chan struct{}
	lastSent struct {
		generation uint64
		status     Status
		sent       bool
	}
}

func New[I comparable, O any](load Loader[I, O]) *AsyncResource[I, O] {
	r := &AsyncResource[I, O]{
		load:        load,
		subscribers: make(map[uint64]func(State[I, O])),
		dirty:       make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	go r.dispatch()
	return r
}

// Load starts loading input unless it equals the current input. A running
// load for a previous input is cancelled and its result discarded.
func (r *AsyncResource[I, O]) Load(input I) {
	r.mu.Lock()
	if r.closed || (r.hasInput && r.state.Input == input) {
		r.mu.Unlock()
		return
	}
	r.startLocked(input)
	r.mu.Unlock()
}

// Reload loads the current input again.
func (r *AsyncResource[I, O]) Reload() {
	r.mu.Lock()
	if r.closed || !r.hasInput {
		r.mu.Unlock()
		return
	}
	r.startLocked(r.state.Input)
	r.mu.Unlock()
}

func (r *AsyncResource[I, O]) startLocked(input I) {
	if r.cancel != nil {
		r.cancel()
	}
	if r.settled != nil && r.state.Status == Pending {
		// wake waiters of the superseded load so they move on to this one
		close(r.settled)
	}

	ctx, cancel := context.WithCancel(context.Background())
	settled := make(chan struct{})

	r.hasInput = true
	r.cancel = cancel
	r.settled = settled
	r.state = State[I, O]{
		Input:      input,
		Generation: r.state.Generation + 1,
		Status:     Pending,
	}
	generation := r.state.Generation
	r.signal()

	go r.run(ctx, cancel, generation, input, settled)
}

func (r *AsyncResource[I, O]) run(ctx context.Context, cancel context.CancelFunc, generation uint64, input I, settled chan struct{}) {
	defer cancel()
	value, err := r.load(ctx, input)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || generation != r.state.Generation {
		return
	}

	if err != nil {
		r.state.Status = Failed
		r.state.Err = err
	} else {
		r.state.Status = Ready
		r.state.Value = value
	}
	r.cancel = nil
	close(settled)
	r.signal()
}

func (r *AsyncResource[I, O]) State() State[I, O] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Wait blocks until the latest load settles or ctx is done. If the input
// changes while waiting, Wait follows the newer load.
func (r *AsyncResource[I, O]) Wait(ctx context.Context) (State[I, O], error) {
	for {
		r.mu.Lock()
		if r.closed {
			st := r.state
			r.mu.Unlock()
			return st, ErrClosed
		}
		if !r.hasInput {
			st := r.state
			r.mu.Unlock()
			return st, ErrNoInput
		}
		st, settled := r.state, r.settled
		r.mu.Unlock()

		if st.Status != Pending {
			return st, nil
		}
		select {
		case <-settled:
		case <-ctx.Done():
			return r.State(), ctx.Err()
		}
	}
}

// Subscribe registers fn for state changes after the call. Notifications are
// delivered in order from a single goroutine and may coalesce, so fn always
// sees the latest state but not necessarily every intermediate one.
func (r *AsyncResource[I, O]) Subscribe(fn func(State[I, O])) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subscribers, id)
		r.mu.Unlock()
	}
}

// Close cancels the running load and stops notifications.
func (r *AsyncResource[I, O]) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.settled != nil && r.state.Status == Pending {
		close(r.settled)
	}
	r.subscribers = map[uint64]func(State[I, O]){}
	r.mu.Unlock()
	close(r.done)
}

func (r *AsyncResource[I, O]) signal() {
	select {
	case r.dirty <- struct{}{}:
	default:
	}
}

func (r *AsyncResource[I, O]) dispatch() {
	for {
		select {
		case <-r.done:
			return
		case <-r.dirty:
		}

		r.mu.Lock()
		st := r.state
		if r.lastSent.sent && r.lastSent.generation == st.Generation && r.lastSent.status == st.Status {
			r.mu.Unlock()
			continue
		}
		r.lastSent.generation, r.lastSent.status, r.lastSent.sent = st.Generation, st.Status, true
		subscribers := make([]func(State[I, O]), 0, len(r.subscribers))
		for _, fn := range r.subscribers {
			subscribers = append(subscribers, fn)
		}
		r.mu.Unlock()

		for _, fn := range subscribers {
			fn(st)
		}
	}
}
