// Package source provides position sources for the outbound pipeline
package source

import (
	"context"
	"sync"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/clock"
	"github.com/piresc/ukdrive/internal/pkg/models"
	"github.com/piresc/ukdrive/internal/utils"
	"github.com/piresc/ukdrive/services/tracking"
)

// lowAccuracyFactor widens the reported accuracy in low-accuracy mode
const lowAccuracyFactor = 5

// SimulatedConfig describes a straight-line walk
type SimulatedConfig struct {
	Start          models.GeoPoint
	BearingDegrees float64
	SpeedMps       float64
	Interval       time.Duration
	AccuracyMeters float64
}

// Simulated is a deterministic position source moving at a constant speed
// from Start. The walk begins on the first acquisition.
type Simulated struct {
	cfg   SimulatedConfig
	clock clock.Clock

	mu       sync.Mutex
	origin   time.Time
	failures []error
}

// SimulatedOption configures a Simulated source
type SimulatedOption func(*Simulated)

// WithClock replaces the wall clock
func WithClock(c clock.Clock) SimulatedOption {
	return func(s *Simulated) {
		s.clock = c
	}
}

// NewSimulated creates a simulated source
func NewSimulated(cfg SimulatedConfig, opts ...SimulatedOption) *Simulated {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	s := &Simulated{cfg: cfg, clock: clock.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InjectFailure makes the next acquisitions fail with errs, in order
func (s *Simulated) InjectFailure(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, errs...)
}

// PositionAt returns where the walk is at t
func (s *Simulated) PositionAt(t time.Time, highAccuracy bool) models.Position {
	s.mu.Lock()
	if s.origin.IsZero() {
		s.origin = t
	}
	elapsed := t.Sub(s.origin)
	s.mu.Unlock()

	if elapsed < 0 {
		elapsed = 0
	}
	point := utils.Offset(s.cfg.Start, s.cfg.BearingDegrees, s.cfg.SpeedMps*elapsed.Seconds())

	accuracy := s.cfg.AccuracyMeters
	if !highAccuracy {
		accuracy *= lowAccuracyFactor
	}
	return models.Position{
		Latitude:       point.Latitude,
		Longitude:      point.Longitude,
		CapturedAt:     t,
		AccuracyMeters: models.Float64Ptr(accuracy),
	}
}

// Current returns the position at the current time
func (s *Simulated) Current(ctx context.Context, highAccuracy bool) (models.Position, error) {
	if err := ctx.Err(); err != nil {
		return models.Position{}, &tracking.AcquisitionError{Err: tracking.ErrAcquisitionTimeout}
	}
	if err := s.nextFailure(); err != nil {
		return models.Position{}, err
	}
	return s.PositionAt(s.clock.Now(), highAccuracy), nil
}

// Watch emits a sample every Interval until cancelled
func (s *Simulated) Watch(highAccuracy bool, onSample func(models.Position), onError func(error)) func() {
	w := &watcher{source: s, highAccuracy: highAccuracy, onSample: onSample, onError: onError}
	w.arm()
	return w.cancel
}

func (s *Simulated) nextFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failures) == 0 {
		return nil
	}
	err := s.failures[0]
	s.failures = s.failures[1:]
	return err
}

type watcher struct {
	source       *Simulated
	highAccuracy bool
	onSample     func(models.Position)
	onError      func(error)

	mu        sync.Mutex
	timer     clock.Timer
	cancelled bool
}

func (w *watcher) arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled {
		return
	}
	w.timer = w.source.clock.AfterFunc(w.source.cfg.Interval, w.tick)
}

func (w *watcher) tick() {
	w.mu.Lock()
	cancelled := w.cancelled
	w.mu.Unlock()
	if cancelled {
		return
	}

	if err := w.source.nextFailure(); err != nil {
		w.onError(err)
	} else {
		w.onSample(w.source.PositionAt(w.source.clock.Now(), w.highAccuracy))
	}
	w.arm()
}

func (w *watcher) cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelled = true
	if w.timer != nil {
		w.timer.Stop()
	}
}
