// Package inbound aggregates the positions of many remote actors into a
// filtered, debounced snapshot.
package inbound

import (
	"sync"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/clock"
	"github.com/piresc/ukdrive/internal/pkg/debounce"
	"github.com/piresc/ukdrive/internal/pkg/listener"
	"github.com/piresc/ukdrive/internal/pkg/logger"
	"github.com/piresc/ukdrive/internal/pkg/models"
	"github.com/piresc/ukdrive/internal/utils"
)

// Config configures an Aggregator
type Config struct {
	// FlushDelay is the quiet period after the last ingested event
	FlushDelay time.Duration
	// An update closer than MinMoveMeters and sooner than MinInterval after
	// the actor's last accepted one is dropped
	MinMoveMeters float64
	MinInterval   time.Duration
}

// DefaultConfig returns the standard aggregator configuration
func DefaultConfig() Config {
	return Config{
		FlushDelay:    2 * time.Second,
		MinMoveMeters: 30,
		MinInterval:   15 * time.Second,
	}
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithClock replaces the wall clock, used by tests
func WithClock(c clock.Clock) Option {
	return func(a *Aggregator) {
		a.clock = c
	}
}

// WithReference sets the initial relevance filter
func WithReference(point models.GeoPoint, maxDistanceKm float64) Option {
	return func(a *Aggregator) {
		a.reference = &point
		a.maxDistanceKm = maxDistanceKm
	}
}

// PositionFeed is anything that delivers inbound position updates, such as
// the connection manager
type PositionFeed interface {
	OnPositionUpdate(cb func(models.PositionUpdate)) listener.Subscription
}

// Aggregator keeps the last accepted position of every remote actor.
// Actors that stop sending are never evicted; only Clear empties the snapshot.
type Aggregator struct {
	cfg     Config
	clock   clock.Clock
	batcher *debounce.Batcher[models.PositionUpdate]

	mu            sync.RWMutex
	positions     map[string]models.RemoteActorPosition
	reference     *models.GeoPoint
	maxDistanceKm float64
	changed       bool

	// emitMu is held by the goroutine draining change notifications
	emitMu    sync.Mutex
	listeners listener.Registry[[]models.RemoteActorPosition]
}

// NewAggregator creates an empty aggregator
func NewAggregator(cfg Config, opts ...Option) *Aggregator {
	a := &Aggregator{
		cfg:       cfg,
		clock:     clock.New(),
		positions: make(map[string]models.RemoteActorPosition),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.batcher = debounce.New(a.clock, cfg.FlushDelay, a.apply)
	a.batcher.OnFlushed(a.notify)
	return a
}

// Ingest buffers an event. The snapshot only changes on the next flush.
func (a *Aggregator) Ingest(event models.PositionUpdate) {
	a.batcher.Add(event)
}

// Flush applies buffered events right away
func (a *Aggregator) Flush() {
	a.batcher.Flush()
}

// Pending returns the number of buffered events
func (a *Aggregator) Pending() int {
	return a.batcher.Pending()
}

// Subscribe registers cb for snapshot changes. The returned Subscription
// flushes buffered events before removing cb.
func (a *Aggregator) Subscribe(cb func([]models.RemoteActorPosition)) listener.Subscription {
	remove := a.listeners.Add(cb)
	var once sync.Once
	return func() {
		once.Do(func() {
			a.batcher.Flush()
			remove()
		})
	}
}

// Bind feeds every update delivered by feed into the aggregator
func (a *Aggregator) Bind(feed PositionFeed) listener.Subscription {
	return feed.OnPositionUpdate(a.Ingest)
}

// Snapshot returns every known remote actor, in no particular order
func (a *Aggregator) Snapshot() []models.RemoteActorPosition {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

// Get returns a single remote actor
func (a *Aggregator) Get(actorID string) (models.RemoteActorPosition, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	pos, ok := a.positions[utils.NormalizeActorID(actorID)]
	return pos, ok
}

// Clear empties the snapshot
func (a *Aggregator) Clear() {
	a.mu.Lock()
	if len(a.positions) > 0 {
		a.changed = true
	}
	a.positions = make(map[string]models.RemoteActorPosition)
	a.mu.Unlock()

	a.notify()
}

// SetReference limits the snapshot to actors within maxDistanceKm of point
func (a *Aggregator) SetReference(point models.GeoPoint, maxDistanceKm float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reference = &point
	a.maxDistanceKm = maxDistanceKm
}

// ClearReference disables the relevance filter
func (a *Aggregator) ClearReference() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reference = nil
	a.maxDistanceKm = 0
}

// apply runs under the batcher's flush lock and only mutates the snapshot;
// subscribers are called from notify once the lock is released
func (a *Aggregator) apply(batch []models.PositionUpdate) {
	now := a.clock.Now()

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, event := range batch {
		if a.acceptLocked(event, now) {
			a.changed = true
		}
	}
}

// notify delivers the latest snapshot when something changed. A call made
// while another goroutine, or a subscriber callback, is delivering leaves
// the work to that delivery loop.
func (a *Aggregator) notify() {
	for {
		if !a.emitMu.TryLock() {
			return
		}
		for {
			a.mu.Lock()
			if !a.changed {
				a.mu.Unlock()
				break
			}
			a.changed = false
			snapshot := a.snapshotLocked()
			a.mu.Unlock()

			a.listeners.Emit(snapshot)
		}
		a.emitMu.Unlock()

		a.mu.RLock()
		again := a.changed
		a.mu.RUnlock()
		if !again {
			return
		}
	}
}

func (a *Aggregator) acceptLocked(event models.PositionUpdate, now time.Time) bool {
	actorID := utils.FirstNonEmpty(event.DriverID, event.UserID)
	if actorID == "" {
		logger.Debug("Dropping position update without actor id")
		return false
	}
	pos := event.Position()
	point := pos.Point()

	if a.reference != nil && a.maxDistanceKm > 0 {
		if utils.HaversineKm(*a.reference, point) > a.maxDistanceKm {
			return false
		}
	}

	if prev, ok := a.positions[actorID]; ok {
		moved := utils.HaversineMeters(prev.Position.Point(), point)
		elapsed := now.Sub(prev.LastAcceptedAt)
		if moved < a.cfg.MinMoveMeters && elapsed < a.cfg.MinInterval {
			return false
		}
	}

	a.positions[actorID] = models.RemoteActorPosition{
		ActorID:        actorID,
		Position:       pos,
		LastAcceptedAt: now,
	}
	return true
}

func (a *Aggregator) snapshotLocked() []models.RemoteActorPosition {
	out := make([]models.RemoteActorPosition, 0, len(a.positions))
	for _, pos := range a.positions {
		out = append(out, pos)
	}
	return out
}
