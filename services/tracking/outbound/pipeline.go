// Package outbound turns the device's raw position samples into a
// jitter-free push stream over the connection manager and a coarser
// persistence stream over REST.
package outbound

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/clock"
	"github.com/piresc/ukdrive/internal/pkg/constants"
	"github.com/piresc/ukdrive/internal/pkg/logger"
	"github.com/piresc/ukdrive/internal/pkg/models"
	"github.com/piresc/ukdrive/internal/utils"
	"github.com/piresc/ukdrive/services/tracking"
	"github.com/piresc/ukdrive/services/tracking/sharing"
)

// ErrAlreadyStarted is returned by Start while sharing is active
var ErrAlreadyStarted = errors.New("position sharing already started")

// Option configures a Pipeline
type Option func(*Pipeline)

// WithClock replaces the wall clock, used by tests
func WithClock(c clock.Clock) Option {
	return func(p *Pipeline) {
		p.clock = c
	}
}

// Pipeline is the outbound position pipeline of one local actor
type Pipeline struct {
	cfg       Config
	transport tracking.Transport
	source    tracking.PositionSource
	gw        tracking.LocationGW
	writer    *sharing.Writer
	clock     clock.Clock
	temporary bool

	// sendMu keeps admitted samples in acceptance order on the wire
	sendMu sync.Mutex

	mu            sync.Mutex
	sm            stateMachine
	throttle      models.OutboundThrottleState
	lastPersisted *models.Position
	lastErr       error
	retryCount    int
	highAccuracy  bool
	watchHigh     bool
	epoch         uint64
	ctx           context.Context
	cancel        context.CancelFunc
	cancelWatch   func()
	timers        map[uint64]clock.Timer
	timerSeq      uint64

	inflight sync.WaitGroup
}

// NewPipeline creates a pipeline that writes its sharing state to store.
// The pipeline becomes the store's only writer.
func NewPipeline(cfg Config, transport tracking.Transport, source tracking.PositionSource, gw tracking.LocationGW, store *sharing.Store, opts ...Option) (*Pipeline, error) {
	if cfg.ActorID == "" {
		return nil, tracking.ErrMissingActorID
	}
	if !cfg.Role.Valid() {
		return nil, fmt.Errorf("invalid role %q", cfg.Role)
	}

	writer, err := store.Writer()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:       cfg,
		transport: transport,
		source:    source,
		gw:        gw,
		writer:    writer,
		clock:     clock.New(),
		temporary: strings.HasPrefix(cfg.ActorID, constants.TemporaryActorPrefix),
		sm:        newStateMachine(),
		ctx:       context.Background(),
		cancel:    func() {},
		timers:    make(map[uint64]clock.Timer),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Start resets the retry counter and accuracy mode, performs one immediate
// acquisition and begins continuous acquisition
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.sm.active() {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	if err := p.sm.start(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.retryCount = 0
	p.highAccuracy = true
	p.watchHigh = true
	p.lastErr = nil
	p.throttle = models.OutboundThrottleState{}
	p.lastPersisted = nil
	p.epoch++
	epoch := p.epoch
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	logger.Info("Starting position sharing",
		logger.String("role", string(p.cfg.Role)),
		logger.String("actor_id", p.cfg.ActorID))

	p.publish(epoch, func(s *sharing.State) {
		s.Sharing = true
		s.Phase = string(StateSharing)
		s.Error = ""
	})

	p.acquire(epoch, true)
	p.watch(epoch, true)
	return nil
}

// Stop cancels continuous acquisition and pending retries and clears the
// sharing state. The last known position is kept.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if p.sm.Current() == StateIdle {
		p.mu.Unlock()
		return
	}
	p.epoch++
	epoch := p.epoch
	cancelWatch := p.cancelWatch
	p.cancelWatch = nil
	p.stopTimersLocked()
	_ = p.sm.stop()
	ctx := context.WithoutCancel(p.ctx)
	p.cancel()
	p.mu.Unlock()

	if cancelWatch != nil {
		cancelWatch()
	}

	logger.Info("Stopping position sharing",
		logger.String("role", string(p.cfg.Role)),
		logger.String("actor_id", p.cfg.ActorID))

	p.publish(epoch, func(s *sharing.State) {
		s.Sharing = false
		s.Phase = string(StateIdle)
		s.Error = ""
	})

	if p.temporary {
		return
	}
	p.goAsync(func() {
		var err error
		if p.cfg.Role == models.RoleDriver {
			err = p.gw.UpdateDriverStatus(ctx, p.cfg.ActorID, models.DriverStatusPatch{
				IsGPSSharing: models.BoolPtr(false),
				IsAvailable:  models.BoolPtr(false),
			})
		} else {
			err = p.gw.ClearPassengerLocation(ctx, p.cfg.ActorID)
		}
		if err != nil {
			logger.Warn("Failed to clear sharing state on server",
				logger.String("actor_id", p.cfg.ActorID),
				logger.Err(err))
		}
	})
}

// Close stops the pipeline and gives up the sharing store
func (p *Pipeline) Close() {
	p.Stop()
	p.Wait()
	p.writer.Release()
}

// Wait blocks until fire-and-forget work (persistence, reconnects,
// acquisitions) has finished
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

// State returns the current lifecycle state
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sm.Current()
}

// Err returns the error that ended sharing, nil while healthy
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Throttle returns a copy of the admission bookkeeping
func (p *Pipeline) Throttle() models.OutboundThrottleState {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.throttle
	if t.LastAccepted != nil {
		pos := *t.LastAccepted
		t.LastAccepted = &pos
	}
	return t
}

func (p *Pipeline) handleSample(epoch uint64, pos models.Position) {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	p.mu.Lock()
	if epoch != p.epoch || !p.sm.active() {
		p.mu.Unlock()
		return
	}
	recovered := p.sm.Current() == StateRetrying
	_ = p.sm.recover()
	p.retryCount = 0

	now := p.clock.Now()
	if !p.admitPushLocked(pos, now) {
		p.mu.Unlock()
		logger.Debug("Dropping jitter sample",
			logger.String("actor_id", p.cfg.ActorID),
			logger.Float64("latitude", pos.Latitude),
			logger.Float64("longitude", pos.Longitude))
		return
	}
	accepted := pos
	p.throttle.LastAccepted = &accepted
	p.throttle.LastSentAt = now

	persist := p.admitPersistLocked(pos, now)
	if persist {
		persisted := pos
		p.lastPersisted = &persisted
		p.throttle.LastServerSyncAt = now
	}
	ctx := p.ctx
	p.mu.Unlock()

	// Stop or a failure may have won the race since the lock was released
	if !p.publish(epoch, func(s *sharing.State) {
		last := pos
		s.LastKnown = &last
		s.Phase = string(StateSharing)
		if recovered {
			s.Error = ""
		}
	}) || !p.isCurrent(epoch) {
		return
	}

	if !p.transport.SendPosition(pos.Latitude, pos.Longitude) {
		p.recoverSend(ctx, epoch, pos)
	}
	if persist {
		p.persist(ctx, pos)
	}
}

func (p *Pipeline) admitPushLocked(pos models.Position, now time.Time) bool {
	last := p.throttle.LastAccepted
	if last == nil {
		return true
	}
	distance := utils.PlanarMeters(last.Point(), pos.Point())
	elapsed := now.Sub(p.throttle.LastSentAt)
	return distance >= p.cfg.JitterDistanceMeters || elapsed >= p.cfg.JitterInterval
}

func (p *Pipeline) admitPersistLocked(pos models.Position, now time.Time) bool {
	if p.temporary {
		return false
	}
	if p.lastPersisted == nil || p.throttle.LastServerSyncAt.IsZero() {
		return true
	}
	policy := p.cfg.Persist
	elapsed := now.Sub(p.throttle.LastServerSyncAt)
	if elapsed >= policy.Heartbeat {
		return true
	}
	distance := utils.PlanarMeters(p.lastPersisted.Point(), pos.Point())
	return distance >= policy.MinDistanceMeters && elapsed >= policy.MinInterval
}

// recoverSend reconnects and retries the same payload once after the
// send retry delay
func (p *Pipeline) recoverSend(ctx context.Context, epoch uint64, pos models.Position) {
	logger.Warn("Position send failed, reconnecting",
		logger.String("actor_id", p.cfg.ActorID),
		logger.Err(tracking.ErrTransportClosed))

	p.mu.Lock()
	if epoch != p.epoch {
		p.mu.Unlock()
		return
	}
	p.scheduleLocked(p.cfg.SendRetryDelay, func() {
		p.retrySend(epoch, pos)
	})
	p.mu.Unlock()

	p.goAsync(func() {
		if err := p.transport.Connect(ctx, p.cfg.ActorID); err != nil {
			logger.Warn("Reconnect after failed send did not succeed",
				logger.String("actor_id", p.cfg.ActorID),
				logger.Err(err))
		}
	})
}

func (p *Pipeline) retrySend(epoch uint64, pos models.Position) {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	p.mu.Lock()
	live := epoch == p.epoch && p.sm.active()
	p.mu.Unlock()
	if !live {
		return
	}

	if !p.transport.SendPosition(pos.Latitude, pos.Longitude) {
		logger.Warn("Position retry failed, dropping sample",
			logger.String("actor_id", p.cfg.ActorID),
			logger.Err(tracking.ErrTransportClosed))
	}
}

// persist is fire-and-forget; failures are logged and corrected by the
// next cycle
func (p *Pipeline) persist(ctx context.Context, pos models.Position) {
	point := pos.Point()
	p.goAsync(func() {
		if p.cfg.Role == models.RoleDriver {
			if err := p.gw.UpdateDriverLocation(ctx, p.cfg.ActorID, point); err != nil {
				logger.Warn("Failed to persist driver location",
					logger.String("driver_id", p.cfg.ActorID),
					logger.Err(err))
			}
			if err := p.gw.DriverHeartbeat(ctx, p.cfg.ActorID, point); err != nil {
				logger.Warn("Failed to send driver heartbeat",
					logger.String("driver_id", p.cfg.ActorID),
					logger.Err(err))
			}
			return
		}
		if err := p.gw.UpdatePassengerLocation(ctx, p.cfg.ActorID, point); err != nil {
			logger.Warn("Failed to persist passenger location",
				logger.String("user_id", p.cfg.ActorID),
				logger.Err(err))
		}
	})
}

func (p *Pipeline) acquire(epoch uint64, highAccuracy bool) {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()

	p.goAsync(func() {
		acqCtx, cancel := context.WithTimeout(ctx, p.cfg.AcquisitionTimeout)
		defer cancel()

		pos, err := p.source.Current(acqCtx, highAccuracy)
		if err != nil {
			p.handleAcquisitionError(epoch, err)
			return
		}
		p.handleSample(epoch, pos)
	})
}

func (p *Pipeline) watch(epoch uint64, highAccuracy bool) {
	cancelWatch := p.source.Watch(highAccuracy,
		func(pos models.Position) { p.handleSample(epoch, pos) },
		func(err error) { p.handleAcquisitionError(epoch, err) },
	)

	p.mu.Lock()
	if epoch != p.epoch || !p.sm.active() {
		p.mu.Unlock()
		cancelWatch()
		return
	}
	previous := p.cancelWatch
	p.cancelWatch = cancelWatch
	p.watchHigh = highAccuracy
	p.mu.Unlock()

	if previous != nil {
		previous()
	}
}

func (p *Pipeline) handleAcquisitionError(epoch uint64, err error) {
	p.mu.Lock()
	if epoch != p.epoch || !p.sm.active() {
		p.mu.Unlock()
		return
	}

	if tracking.IsTimeout(err) {
		p.retryCount++
		attempt := p.retryCount
		if !p.cfg.Acquisition.Exhausted(attempt) {
			_ = p.sm.retry()
			p.highAccuracy = false
			delay := p.cfg.Acquisition.Backoff(attempt)
			p.scheduleLocked(delay, func() {
				p.retryAcquisition(epoch)
			})
			p.mu.Unlock()

			logger.Warn("Position acquisition timed out, retrying",
				logger.String("actor_id", p.cfg.ActorID),
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay))
			p.publish(epoch, func(s *sharing.State) {
				s.Phase = string(StateRetrying)
			})
			return
		}

		acqErr := &tracking.AcquisitionError{Attempt: attempt, Err: err}
		cancelWatch, failEpoch := p.failLocked(acqErr)
		p.cancel()
		p.mu.Unlock()
		p.surfaceFailure(failEpoch, cancelWatch, acqErr)
		return
	}

	acqErr := &tracking.AcquisitionError{Err: err}
	cancelWatch, failEpoch := p.failLocked(acqErr)
	ctx := context.WithoutCancel(p.ctx)
	p.cancel()
	p.mu.Unlock()
	p.surfaceFailure(failEpoch, cancelWatch, acqErr)

	if p.cfg.Role == models.RoleDriver && !p.temporary {
		p.goAsync(func() {
			if err := p.gw.UpdateDriverStatus(ctx, p.cfg.ActorID, models.DriverStatusPatch{
				IsAvailable: models.BoolPtr(false),
			}); err != nil {
				logger.Warn("Failed to mark driver unavailable",
					logger.String("driver_id", p.cfg.ActorID),
					logger.Err(err))
			}
		})
	}
}

func (p *Pipeline) retryAcquisition(epoch uint64) {
	p.mu.Lock()
	if epoch != p.epoch || !p.sm.active() {
		p.mu.Unlock()
		return
	}
	high := p.highAccuracy
	restartWatch := p.watchHigh != high
	p.mu.Unlock()

	if restartWatch {
		p.watch(epoch, high)
	}
	p.acquire(epoch, high)
}

// failLocked enters the terminal state and returns the watch to cancel and
// the epoch the failure belongs to
func (p *Pipeline) failLocked(err error) (func(), uint64) {
	_ = p.sm.fail()
	p.lastErr = err
	p.epoch++
	p.stopTimersLocked()
	cancelWatch := p.cancelWatch
	p.cancelWatch = nil
	return cancelWatch, p.epoch
}

func (p *Pipeline) surfaceFailure(epoch uint64, cancelWatch func(), err error) {
	if cancelWatch != nil {
		cancelWatch()
	}
	logger.Error("Position sharing stopped",
		logger.String("actor_id", p.cfg.ActorID),
		logger.Err(err))
	p.publish(epoch, func(s *sharing.State) {
		s.Sharing = false
		s.Phase = string(StateFailed)
		s.Error = err.Error()
	})
}

func (p *Pipeline) scheduleLocked(d time.Duration, fn func()) {
	p.timerSeq++
	id := p.timerSeq
	p.timers[id] = p.clock.AfterFunc(d, func() {
		p.mu.Lock()
		_, live := p.timers[id]
		delete(p.timers, id)
		p.mu.Unlock()
		if live {
			fn()
		}
	})
}

func (p *Pipeline) stopTimersLocked() {
	for id, t := range p.timers {
		t.Stop()
		delete(p.timers, id)
	}
}

func (p *Pipeline) goAsync(fn func()) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		fn()
	}()
}

// publish writes to the sharing store unless a later Start, Stop or failure
// has moved the epoch on. The epoch is checked under the store's write lock
// so a stale change can never land after a newer one.
func (p *Pipeline) publish(epoch uint64, fn func(*sharing.State)) bool {
	return p.writer.UpdateIf(p.clock.Now(), func(s *sharing.State) bool {
		if !p.isCurrent(epoch) {
			return false
		}
		fn(s)
		return true
	})
}

func (p *Pipeline) isCurrent(epoch uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return epoch == p.epoch
}
