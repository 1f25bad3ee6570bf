// Package listener holds ordered callback sets with idempotent unsubscribe
// handles.
package listener

import (
	"sync"
	"sync/atomic"
)

// Subscription removes the listener it was returned for. Calling it more
// than once is a no-op, and it may be called from inside the listener.
type Subscription func()

type entry[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// Registry is a set of listeners invoked in registration order
type Registry[T any] struct {
	mu      sync.Mutex
	entries []*entry[T]
}

// Add registers fn and returns its Subscription
func (r *Registry[T]) Add(fn func(T)) Subscription {
	e := &entry[T]{fn: fn}
	e.active.Store(true)

	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(e) })
	}
}

func (r *Registry[T]) remove(e *entry[T]) {
	e.active.Store(false)

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, other := range r.entries {
		if other == e {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

// Emit calls every listener with v. The lock is not held during calls, and
// a listener removed by an earlier listener of the same Emit is skipped.
func (r *Registry[T]) Emit(v T) {
	r.mu.Lock()
	snapshot := make([]*entry[T], len(r.entries))
	copy(snapshot, r.entries)
	r.mu.Unlock()

	for _, e := range snapshot {
		if e.active.Load() {
			e.fn(v)
		}
	}
}

// Len returns the number of registered listeners
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
