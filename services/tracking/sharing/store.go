// Package sharing holds the process-wide GPS sharing state. The outbound
// pipeline is its only writer, any number of readers may subscribe.
package sharing

import (
	"errors"
	"sync"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/listener"
	"github.com/piresc/ukdrive/internal/pkg/models"
)

// ErrWriterClaimed is returned when a second writer asks for the store
var ErrWriterClaimed = errors.New("sharing store already has a writer")

// State is the sharing state readers observe
type State struct {
	Sharing bool
	// Phase is the pipeline state name: idle, sharing, retrying or failed
	Phase string
	// Error is the human-readable reason sharing stopped, empty otherwise
	Error     string
	LastKnown *models.Position
	UpdatedAt time.Time
}

func (s State) clone() State {
	if s.LastKnown != nil {
		pos := *s.LastKnown
		s.LastKnown = &pos
	}
	return s
}

// Store is a single-writer, multi-reader holder of State
type Store struct {
	mu      sync.RWMutex
	state   State
	claimed bool
	// snapshots waiting for delivery, in write order
	pending []State

	emitMu    sync.Mutex
	listeners listener.Registry[State]
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{state: State{Phase: "idle"}}
}

var (
	defaultStore *Store
	initOnce     sync.Once
)

// Init creates the process-wide store. It is safe to call more than once;
// later calls return the same store.
func Init() *Store {
	initOnce.Do(func() {
		defaultStore = NewStore()
	})
	return defaultStore
}

// Default returns the process-wide store, initializing it on first use
func Default() *Store {
	return Init()
}

// State returns a copy of the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn for every state change. fn runs after the write
// that caused it has completed, outside the store's locks, so it may call
// back into the writer.
func (s *Store) Subscribe(fn func(State)) listener.Subscription {
	return s.listeners.Add(fn)
}

// Writer claims the store for a single writer
func (s *Store) Writer() (*Writer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed {
		return nil, ErrWriterClaimed
	}
	s.claimed = true
	return &Writer{store: s}, nil
}

// deliver drains pending snapshots to the listeners. A call made while
// another goroutine, or a listener callback, is delivering leaves the work
// to that delivery loop.
func (s *Store) deliver() {
	for {
		if !s.emitMu.TryLock() {
			return
		}
		for {
			s.mu.Lock()
			if len(s.pending) == 0 {
				s.mu.Unlock()
				break
			}
			next := s.pending[0]
			s.pending = s.pending[1:]
			s.mu.Unlock()

			s.listeners.Emit(next)
		}
		s.emitMu.Unlock()

		s.mu.RLock()
		again := len(s.pending) > 0
		s.mu.RUnlock()
		if !again {
			return
		}
	}
}

// Writer is the only handle that can mutate a Store
type Writer struct {
	store *Store
	// guarded by store.mu
	released bool
}

// Update applies fn to the state and then notifies readers with the result.
// It reports false once the writer has been released.
func (w *Writer) Update(now time.Time, fn func(*State)) bool {
	return w.UpdateIf(now, func(s *State) bool {
		fn(s)
		return true
	})
}

// UpdateIf is Update for a change that may turn out to be stale: when fn
// returns false nothing is written and readers are not notified. fn runs
// under the store's write lock and must not call back into the store.
func (w *Writer) UpdateIf(now time.Time, fn func(*State) bool) bool {
	s := w.store
	s.mu.Lock()
	if w.released {
		s.mu.Unlock()
		return false
	}
	next := s.state.clone()
	if !fn(&next) {
		s.mu.Unlock()
		return false
	}
	next.UpdatedAt = now
	s.state = next
	s.pending = append(s.pending, next.clone())
	s.mu.Unlock()

	s.deliver()
	return true
}

// Release gives up the writer so another one can be claimed. Updates made
// through a released writer are ignored.
func (w *Writer) Release() {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.released {
		return
	}
	w.released = true
	s.claimed = false
}
