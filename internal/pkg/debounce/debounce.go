// Package debounce provides a trailing-edge debounced batch: items are
// buffered and handed to the flush function once no new item has arrived for
// the configured quiet period.
package debounce

import (
	"sync"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/clock"
)

// Batcher buffers items and flushes them after a quiet period.
// Every Add re-arms the timer; flushes never run concurrently and batches
// are delivered in the order their items were added.
type Batcher[T any] struct {
	clock   clock.Clock
	delay   time.Duration
	flush   func([]T)
	flushed func()

	flushMu sync.Mutex

	mu      sync.Mutex
	pending []T
	timer   clock.Timer
	gen     uint64
}

// New creates a Batcher that calls flush after delay of inactivity
func New[T any](c clock.Clock, delay time.Duration, flush func([]T)) *Batcher[T] {
	return &Batcher[T]{clock: c, delay: delay, flush: flush}
}

// OnFlushed registers fn to run after every delivered batch, once the batch
// lock is released. fn may call Flush. Set it before the first Add.
func (b *Batcher[T]) OnFlushed(fn func()) {
	b.flushed = fn
}

// Add buffers item and restarts the quiet period
func (b *Batcher[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, item)
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	b.timer = b.clock.AfterFunc(b.delay, func() { b.fire(gen) })
}

// Flush delivers anything buffered right away and cancels the timer
func (b *Batcher[T]) Flush() {
	b.flushMu.Lock()
	b.mu.Lock()
	batch := b.take()
	b.mu.Unlock()
	b.deliver(batch)
}

// Cancel drops anything buffered without flushing it
func (b *Batcher[T]) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.take()
}

// Pending returns the number of buffered items
func (b *Batcher[T]) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Batcher[T]) fire(gen uint64) {
	b.flushMu.Lock()
	b.mu.Lock()
	if gen != b.gen {
		// re-armed or flushed since this timer was scheduled
		b.mu.Unlock()
		b.flushMu.Unlock()
		return
	}
	batch := b.take()
	b.mu.Unlock()
	b.deliver(batch)
}

// deliver runs flush under flushMu, releases it and then runs the
// OnFlushed hook. Caller holds b.flushMu.
func (b *Batcher[T]) deliver(batch []T) {
	if len(batch) == 0 {
		b.flushMu.Unlock()
		return
	}
	func() {
		defer b.flushMu.Unlock()
		b.flush(batch)
	}()
	if b.flushed != nil {
		b.flushed()
	}
}

// take empties the buffer and invalidates the armed timer. Caller holds b.mu.
func (b *Batcher[T]) take() []T {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
	batch := b.pending
	b.pending = nil
	return batch
}
