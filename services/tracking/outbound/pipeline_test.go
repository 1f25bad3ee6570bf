package outbound

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/piresc/ukdrive/internal/pkg/clock"
	"github.com/piresc/ukdrive/internal/pkg/models"
	"github.com/piresc/ukdrive/services/tracking"
	"github.com/piresc/ukdrive/services/tracking/mocks"
	"github.com/piresc/ukdrive/services/tracking/sharing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	delhi    = models.Position{Latitude: 28.6139, Longitude: 77.2090}
	delhiPt  = delhi.Point()
	testTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
)

type acquisition struct {
	pos models.Position
	err error
}

type fakeWatch struct {
	highAccuracy bool
	onSample     func(models.Position)
	onError      func(error)
	cancelled    atomic.Bool
}

// fakeSource answers Current from a queue and blocks once it is empty
type fakeSource struct {
	mu       sync.Mutex
	queue    []acquisition
	accuracy []bool
	watches  []*fakeWatch
}

func (f *fakeSource) enqueue(results ...acquisition) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, results...)
}

func (f *fakeSource) Current(ctx context.Context, highAccuracy bool) (models.Position, error) {
	f.mu.Lock()
	f.accuracy = append(f.accuracy, highAccuracy)
	if len(f.queue) > 0 {
		next := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return next.pos, next.err
	}
	f.mu.Unlock()
	<-ctx.Done()
	return models.Position{}, ctx.Err()
}

func (f *fakeSource) Watch(highAccuracy bool, onSample func(models.Position), onError func(error)) func() {
	w := &fakeWatch{highAccuracy: highAccuracy, onSample: onSample, onError: onError}
	f.mu.Lock()
	f.watches = append(f.watches, w)
	f.mu.Unlock()
	return func() { w.cancelled.Store(true) }
}

func (f *fakeSource) activeWatch() *fakeWatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.watches) - 1; i >= 0; i-- {
		if !f.watches[i].cancelled.Load() {
			return f.watches[i]
		}
	}
	return nil
}

func (f *fakeSource) emit(pos models.Position) {
	if w := f.activeWatch(); w != nil {
		w.onSample(pos)
	}
}

func (f *fakeSource) fail(err error) {
	if w := f.activeWatch(); w != nil {
		w.onError(err)
	}
}

func (f *fakeSource) accuracyCalls() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.accuracy...)
}

type pipelineFixture struct {
	pipeline  *Pipeline
	transport *mocks.MockTransport
	gw        *mocks.MockLocationGW
	source    *fakeSource
	clock     *clock.Mock
	store     *sharing.Store
}

func newFixture(t *testing.T, role models.Role, actorID string) *pipelineFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &pipelineFixture{
		transport: mocks.NewMockTransport(ctrl),
		gw:        mocks.NewMockLocationGW(ctrl),
		source:    &fakeSource{},
		clock:     clock.NewMock(testTime),
		store:     sharing.NewStore(),
	}
	p, err := NewPipeline(DefaultConfig(role, actorID), f.transport, f.source, f.gw, f.store, WithClock(f.clock))
	require.NoError(t, err)
	f.pipeline = p
	return f
}

// start queues the immediate acquisition and waits for it to be handled
func (f *pipelineFixture) start(t *testing.T, first models.Position) {
	t.Helper()
	f.source.enqueue(acquisition{pos: first})
	require.NoError(t, f.pipeline.Start(context.Background()))
	f.pipeline.Wait()
}

func offsetLat(p models.Position, deg float64) models.Position {
	p.Latitude += deg
	return p
}

func TestPipeline_DriverScenario(t *testing.T) {
	// Arrange
	f := newFixture(t, models.RoleDriver, "driver-1")
	moved := offsetLat(delhi, 0.0005)
	jitter := offsetLat(moved, 0.00001)

	gomock.InOrder(
		f.transport.EXPECT().SendPosition(delhi.Latitude, delhi.Longitude).Return(true),
		f.transport.EXPECT().SendPosition(moved.Latitude, moved.Longitude).Return(true),
	)
	gomock.InOrder(
		f.gw.EXPECT().UpdateDriverLocation(gomock.Any(), "driver-1", delhiPt).Return(nil),
		f.gw.EXPECT().DriverHeartbeat(gomock.Any(), "driver-1", delhiPt).Return(nil),
		f.gw.EXPECT().UpdateDriverLocation(gomock.Any(), "driver-1", moved.Point()).Return(nil),
		f.gw.EXPECT().DriverHeartbeat(gomock.Any(), "driver-1", moved.Point()).Return(nil),
	)

	// Act
	f.start(t, delhi)

	f.clock.Add(16 * time.Second)
	f.source.emit(moved)
	f.pipeline.Wait()

	f.clock.Add(time.Second)
	f.source.emit(jitter)
	f.pipeline.Wait()

	// Assert
	throttle := f.pipeline.Throttle()
	require.NotNil(t, throttle.LastAccepted)
	assert.Equal(t, moved, *throttle.LastAccepted)
	assert.Equal(t, testTime.Add(16*time.Second), throttle.LastSentAt)
	assert.Equal(t, testTime.Add(16*time.Second), throttle.LastServerSyncAt)
	assert.Equal(t, StateSharing, f.pipeline.State())
}

func TestPipeline_JitterSuppression(t *testing.T) {
	f := newFixture(t, models.RoleDriver, "temp_driver")
	f.transport.EXPECT().SendPosition(delhi.Latitude, delhi.Longitude).Return(true).Times(1)

	f.start(t, delhi)
	before := f.pipeline.Throttle()

	f.clock.Add(1999 * time.Millisecond)
	f.source.emit(offsetLat(delhi, 0.00001))

	after := f.pipeline.Throttle()
	assert.Equal(t, before, after)
	assert.Equal(t, delhi, *after.LastAccepted)
}

func TestPipeline_SlowSamplesPassJitterFilter(t *testing.T) {
	f := newFixture(t, models.RoleDriver, "temp_driver")
	f.transport.EXPECT().SendPosition(delhi.Latitude, delhi.Longitude).Return(true).Times(2)

	f.start(t, delhi)
	f.clock.Add(2 * time.Second)
	f.source.emit(delhi)

	assert.Equal(t, testTime.Add(2*time.Second), f.pipeline.Throttle().LastSentAt)
}

func TestPipeline_HeartbeatOverride(t *testing.T) {
	// Arrange
	f := newFixture(t, models.RoleDriver, "driver-1")
	f.transport.EXPECT().SendPosition(gomock.Any(), gomock.Any()).Return(true).AnyTimes()
	f.gw.EXPECT().UpdateDriverLocation(gomock.Any(), "driver-1", delhiPt).Return(nil).Times(2)
	f.gw.EXPECT().DriverHeartbeat(gomock.Any(), "driver-1", delhiPt).Return(nil).Times(2)

	// Act
	f.start(t, delhi)
	for i := 0; i < 3; i++ {
		f.clock.Add(5 * time.Second)
		f.source.emit(delhi)
		f.pipeline.Wait()
	}
	assert.Equal(t, testTime, f.pipeline.Throttle().LastServerSyncAt)

	f.clock.Add(5 * time.Second)
	f.source.emit(delhi)
	f.pipeline.Wait()

	// Assert
	assert.Equal(t, testTime.Add(20*time.Second), f.pipeline.Throttle().LastServerSyncAt)
}

func TestPipeline_PassengerThresholds(t *testing.T) {
	f := newFixture(t, models.RolePassenger, "rider-1")
	far := offsetLat(delhi, 0.0006) // ~67m
	f.transport.EXPECT().SendPosition(gomock.Any(), gomock.Any()).Return(true).Times(2)
	f.gw.EXPECT().UpdatePassengerLocation(gomock.Any(), "rider-1", delhiPt).Return(nil).Times(1)

	f.start(t, delhi)
	f.clock.Add(16 * time.Second)
	f.source.emit(far)
	f.pipeline.Wait()

	assert.Equal(t, testTime, f.pipeline.Throttle().LastServerSyncAt)
}

func TestPipeline_PersistenceFailureIsNotRetried(t *testing.T) {
	f := newFixture(t, models.RolePassenger, "rider-1")
	f.transport.EXPECT().SendPosition(gomock.Any(), gomock.Any()).Return(true)
	f.gw.EXPECT().UpdatePassengerLocation(gomock.Any(), "rider-1", delhiPt).
		Return(errors.New("http 503: unavailable")).Times(1)

	f.start(t, delhi)
	f.clock.Add(10 * time.Second)

	assert.Equal(t, StateSharing, f.pipeline.State())
	assert.Equal(t, 0, f.clock.Pending())
}

func TestPipeline_TemporaryActorSkipsPersistence(t *testing.T) {
	// gw has no expectations: any call fails the test
	f := newFixture(t, models.RoleDriver, "temp_guest")
	f.transport.EXPECT().SendPosition(gomock.Any(), gomock.Any()).Return(true).Times(2)

	f.start(t, delhi)
	f.clock.Add(30 * time.Second)
	f.source.emit(offsetLat(delhi, 0.01))
	f.pipeline.Wait()
	f.pipeline.Stop()
	f.pipeline.Wait()

	assert.Equal(t, StateIdle, f.pipeline.State())
}

func TestPipeline_SendFailureReconnectsAndRetriesOnce(t *testing.T) {
	// Arrange
	f := newFixture(t, models.RoleDriver, "temp_driver")
	gomock.InOrder(
		f.transport.EXPECT().SendPosition(delhi.Latitude, delhi.Longitude).Return(false),
		f.transport.EXPECT().Connect(gomock.Any(), "temp_driver").Return(nil),
		f.transport.EXPECT().SendPosition(delhi.Latitude, delhi.Longitude).Return(false),
	)

	// Act
	f.start(t, delhi)
	f.clock.Add(1999 * time.Millisecond)
	assert.Equal(t, 1, f.clock.Pending())
	f.clock.Add(time.Millisecond)
	f.clock.Add(10 * time.Second)

	// Assert
	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, delhi, *f.pipeline.Throttle().LastAccepted)
}

func TestPipeline_AcquisitionTimeoutRetries(t *testing.T) {
	// Arrange
	f := newFixture(t, models.RoleDriver, "driver-1")
	timeout := acquisition{err: tracking.ErrAcquisitionTimeout}
	f.source.enqueue(timeout, timeout, timeout, timeout)

	// Act
	require.NoError(t, f.pipeline.Start(context.Background()))
	f.pipeline.Wait()
	assert.Equal(t, StateRetrying, f.pipeline.State())
	assert.Equal(t, string(StateRetrying), f.store.State().Phase)

	for attempt, delay := range []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second} {
		calls := len(f.source.accuracyCalls())
		f.clock.Add(delay - time.Millisecond)
		f.pipeline.Wait()
		assert.Len(t, f.source.accuracyCalls(), calls, "retry %d fired early", attempt+1)

		f.clock.Add(time.Millisecond)
		f.pipeline.Wait()
		assert.Len(t, f.source.accuracyCalls(), calls+1, "retry %d did not fire", attempt+1)
	}

	// Assert
	assert.Equal(t, []bool{true, false, false, false}, f.source.accuracyCalls())
	assert.Equal(t, StateFailed, f.pipeline.State())

	var acqErr *tracking.AcquisitionError
	require.ErrorAs(t, f.pipeline.Err(), &acqErr)
	assert.Equal(t, 4, acqErr.Attempt)
	assert.ErrorIs(t, f.pipeline.Err(), tracking.ErrAcquisitionTimeout)

	state := f.store.State()
	assert.False(t, state.Sharing)
	assert.Equal(t, string(StateFailed), state.Phase)
	assert.NotEmpty(t, state.Error)
	assert.Equal(t, 0, f.clock.Pending())

	f.pipeline.mu.Lock()
	ctxErr := f.pipeline.ctx.Err()
	f.pipeline.mu.Unlock()
	assert.ErrorIs(t, ctxErr, context.Canceled, "exhausted retries must release the sharing context")

	watch := f.source.watches[len(f.source.watches)-1]
	assert.False(t, watch.highAccuracy)
	assert.Nil(t, f.source.activeWatch())
}

func TestPipeline_RestartAfterFailureResetsCounter(t *testing.T) {
	f := newFixture(t, models.RoleDriver, "temp_driver")
	timeout := acquisition{err: tracking.ErrAcquisitionTimeout}
	f.source.enqueue(timeout, timeout, timeout, timeout)
	require.NoError(t, f.pipeline.Start(context.Background()))
	f.pipeline.Wait()
	for _, delay := range []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second} {
		f.clock.Add(delay)
		f.pipeline.Wait()
	}
	require.Equal(t, StateFailed, f.pipeline.State())

	f.transport.EXPECT().SendPosition(delhi.Latitude, delhi.Longitude).Return(true)
	f.start(t, delhi)

	assert.Equal(t, StateSharing, f.pipeline.State())
	assert.NoError(t, f.pipeline.Err())
	assert.True(t, f.store.State().Sharing)
	assert.True(t, f.source.activeWatch().highAccuracy)
}

func TestPipeline_RecoversFromRetryingOnSample(t *testing.T) {
	f := newFixture(t, models.RoleDriver, "temp_driver")
	f.source.enqueue(acquisition{err: tracking.ErrAcquisitionTimeout})
	f.transport.EXPECT().SendPosition(delhi.Latitude, delhi.Longitude).Return(true)

	require.NoError(t, f.pipeline.Start(context.Background()))
	f.pipeline.Wait()
	require.Equal(t, StateRetrying, f.pipeline.State())

	f.source.emit(delhi)

	assert.Equal(t, StateSharing, f.pipeline.State())
	assert.Equal(t, string(StateSharing), f.store.State().Phase)
}

func TestPipeline_PermissionDeniedMarksDriverUnavailable(t *testing.T) {
	// Arrange
	f := newFixture(t, models.RoleDriver, "driver-1")
	f.transport.EXPECT().SendPosition(gomock.Any(), gomock.Any()).Return(true)
	f.gw.EXPECT().UpdateDriverLocation(gomock.Any(), "driver-1", delhiPt).Return(nil)
	f.gw.EXPECT().DriverHeartbeat(gomock.Any(), "driver-1", delhiPt).Return(nil)
	f.gw.EXPECT().UpdateDriverStatus(gomock.Any(), "driver-1", models.DriverStatusPatch{
		IsAvailable: models.BoolPtr(false),
	}).Return(nil).Times(1)

	f.start(t, delhi)

	// Act
	f.source.fail(tracking.ErrPermissionDenied)
	f.pipeline.Wait()

	// Assert
	assert.Equal(t, StateFailed, f.pipeline.State())
	assert.ErrorIs(t, f.pipeline.Err(), tracking.ErrPermissionDenied)

	state := f.store.State()
	assert.False(t, state.Sharing)
	assert.Contains(t, state.Error, "permission denied")
	require.NotNil(t, state.LastKnown)
	assert.Equal(t, delhi, *state.LastKnown)
	assert.Nil(t, f.source.activeWatch())
}

func TestPipeline_StopDriver(t *testing.T) {
	// Arrange
	f := newFixture(t, models.RoleDriver, "driver-1")
	f.transport.EXPECT().SendPosition(delhi.Latitude, delhi.Longitude).Return(false)
	f.transport.EXPECT().Connect(gomock.Any(), "driver-1").Return(errors.New("dial failed"))
	f.gw.EXPECT().UpdateDriverLocation(gomock.Any(), "driver-1", delhiPt).Return(nil)
	f.gw.EXPECT().DriverHeartbeat(gomock.Any(), "driver-1", delhiPt).Return(nil)
	f.gw.EXPECT().UpdateDriverStatus(gomock.Any(), "driver-1", models.DriverStatusPatch{
		IsGPSSharing: models.BoolPtr(false),
		IsAvailable:  models.BoolPtr(false),
	}).Return(nil).Times(1)

	f.start(t, delhi)
	require.Equal(t, 1, f.clock.Pending())

	// Act
	f.pipeline.Stop()
	f.pipeline.Stop()
	f.pipeline.Wait()

	// Assert
	assert.Equal(t, StateIdle, f.pipeline.State())
	assert.Equal(t, 0, f.clock.Pending())
	assert.Nil(t, f.source.activeWatch())

	f.clock.Add(5 * time.Second)
	f.source.emit(offsetLat(delhi, 1))

	state := f.store.State()
	assert.False(t, state.Sharing)
	require.NotNil(t, state.LastKnown)
	assert.Equal(t, delhi, *state.LastKnown)
}

func TestPipeline_StopPassengerClearsLocation(t *testing.T) {
	f := newFixture(t, models.RolePassenger, "rider-1")
	f.transport.EXPECT().SendPosition(gomock.Any(), gomock.Any()).Return(true)
	f.gw.EXPECT().UpdatePassengerLocation(gomock.Any(), "rider-1", delhiPt).Return(nil)
	f.gw.EXPECT().ClearPassengerLocation(gomock.Any(), "rider-1").Return(nil).Times(1)

	f.start(t, delhi)
	f.pipeline.Stop()
	f.pipeline.Wait()

	assert.Equal(t, string(StateIdle), f.store.State().Phase)
}

func TestPipeline_StartTwice(t *testing.T) {
	f := newFixture(t, models.RoleDriver, "temp_driver")
	f.transport.EXPECT().SendPosition(gomock.Any(), gomock.Any()).Return(true)
	f.start(t, delhi)

	err := f.pipeline.Start(context.Background())

	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestNewPipeline_Validation(t *testing.T) {
	store := sharing.NewStore()

	_, err := NewPipeline(DefaultConfig(models.RoleDriver, ""), nil, nil, nil, store)
	assert.ErrorIs(t, err, tracking.ErrMissingActorID)

	_, err = NewPipeline(DefaultConfig("pilot", "x"), nil, nil, nil, store)
	assert.Error(t, err)

	_, err = NewPipeline(DefaultConfig(models.RoleDriver, "d1"), nil, nil, nil, store)
	require.NoError(t, err)
	_, err = NewPipeline(DefaultConfig(models.RoleDriver, "d2"), nil, nil, nil, store)
	assert.ErrorIs(t, err, sharing.ErrWriterClaimed)
}

func TestPipeline_CloseReleasesStore(t *testing.T) {
	f := newFixture(t, models.RoleDriver, "temp_driver")

	f.pipeline.Close()

	_, err := f.store.Writer()
	assert.NoError(t, err)
}

func TestPipeline_StopFromSharingListener(t *testing.T) {
	// Arrange
	f := newFixture(t, models.RoleDriver, "driver-1")
	f.gw.EXPECT().UpdateDriverStatus(gomock.Any(), "driver-1", models.DriverStatusPatch{
		IsGPSSharing: models.BoolPtr(false),
		IsAvailable:  models.BoolPtr(false),
	}).Return(nil).Times(1)

	var once sync.Once
	f.store.Subscribe(func(s sharing.State) {
		if s.Sharing && s.LastKnown != nil {
			once.Do(f.pipeline.Stop)
		}
	})

	// Act
	f.source.enqueue(acquisition{pos: delhi})
	require.NoError(t, f.pipeline.Start(context.Background()))

	waited := make(chan struct{})
	go func() {
		f.pipeline.Wait()
		close(waited)
	}()

	// Assert: no SendPosition or persistence after the listener stopped sharing
	select {
	case <-waited:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop called from a sharing listener never returned")
	}
	assert.Equal(t, StateIdle, f.pipeline.State())
	state := f.store.State()
	assert.False(t, state.Sharing)
	assert.Equal(t, string(StateIdle), state.Phase)
	require.NotNil(t, state.LastKnown)
	assert.Equal(t, delhi, *state.LastKnown)
}

func TestPipeline_LateSampleCannotOverwriteStop(t *testing.T) {
	f := newFixture(t, models.RoleDriver, "temp_driver")
	f.transport.EXPECT().SendPosition(gomock.Any(), gomock.Any()).Return(true).AnyTimes()

	var inconsistent atomic.Int32
	f.store.Subscribe(func(s sharing.State) {
		if !s.Sharing && s.Phase == string(StateSharing) {
			inconsistent.Add(1)
		}
	})

	for i := 0; i < 20; i++ {
		require.NoError(t, f.pipeline.Start(context.Background()))
		watch := f.source.activeWatch()
		require.NotNil(t, watch)

		var wg sync.WaitGroup
		for j := 0; j < 8; j++ {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				watch.onSample(offsetLat(delhi, float64(i*8+j)*0.001))
			}(j)
		}
		f.pipeline.Stop()
		wg.Wait()
		f.pipeline.Wait()

		state := f.store.State()
		require.False(t, state.Sharing, "round %d", i)
		require.Equal(t, string(StateIdle), state.Phase, "round %d", i)
	}
	assert.Zero(t, inconsistent.Load())
}
