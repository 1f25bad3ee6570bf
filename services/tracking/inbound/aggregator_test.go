package inbound

import (
	"testing"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/clock"
	"github.com/piresc/ukdrive/internal/pkg/listener"
	"github.com/piresc/ukdrive/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start     = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	reference = models.GeoPoint{Latitude: 28.6139, Longitude: 77.2090}
)

func update(driverID string, lat, lng float64) models.PositionUpdate {
	return models.PositionUpdate{
		Type:      "driver_location_update",
		DriverID:  driverID,
		Latitude:  lat,
		Longitude: lng,
		Timestamp: start.UnixMilli(),
	}
}

type recorder struct {
	snapshots [][]models.RemoteActorPosition
}

func (r *recorder) record(s []models.RemoteActorPosition) {
	r.snapshots = append(r.snapshots, s)
}

func newTestAggregator(opts ...Option) (*Aggregator, *clock.Mock) {
	mock := clock.NewMock(start)
	opts = append([]Option{WithClock(mock)}, opts...)
	return NewAggregator(DefaultConfig(), opts...), mock
}

func TestAggregator_DebounceBatching(t *testing.T) {
	// Arrange
	a, mock := newTestAggregator()
	rec := &recorder{}
	a.Subscribe(rec.record)

	// Act: e1, e2, e3 at t=0, 500ms, 1000ms
	a.Ingest(update("d1", 28.61, 77.20))
	mock.Add(500 * time.Millisecond)
	a.Ingest(update("d2", 28.62, 77.21))
	mock.Add(500 * time.Millisecond)
	a.Ingest(update("d3", 28.63, 77.22))

	a.Ingest(models.PositionUpdate{Latitude: 1, Longitude: 1})
	assert.Empty(t, a.Snapshot(), "ingest must not touch the snapshot")

	mock.Add(1999 * time.Millisecond)
	assert.Empty(t, rec.snapshots)
	assert.Empty(t, a.Snapshot())

	mock.Add(time.Millisecond)

	// Assert: one flush at t=3000ms
	require.Len(t, rec.snapshots, 1)
	assert.Len(t, rec.snapshots[0], 3)
	got, ok := a.Get("d3")
	require.True(t, ok)
	assert.Equal(t, start.Add(3*time.Second), got.LastAcceptedAt)

	mock.Add(time.Minute)
	assert.Len(t, rec.snapshots, 1)
}

func TestAggregator_RelevanceFilter(t *testing.T) {
	a, mock := newTestAggregator(WithReference(reference, 5))
	rec := &recorder{}
	a.Subscribe(rec.record)

	near := update("near", 28.6200, 77.2100)
	far := update("far", 28.6139+0.09, 77.2090) // ~10km north

	a.Ingest(near)
	a.Ingest(far)
	mock.Add(2 * time.Second)

	a.Ingest(near)
	a.Ingest(far)
	mock.Add(2 * time.Second)

	require.Len(t, rec.snapshots, 1, "second cycle with no movement must not notify")
	_, ok := a.Get("far")
	assert.False(t, ok)
	got, ok := a.Get("near")
	require.True(t, ok)
	assert.Equal(t, start.Add(2*time.Second), got.LastAcceptedAt)
	assert.Len(t, a.Snapshot(), 1)
}

func TestAggregator_ReferenceCanChange(t *testing.T) {
	a, _ := newTestAggregator()
	far := update("far", 28.6139+0.09, 77.2090)

	a.SetReference(reference, 5)
	a.Ingest(far)
	a.Flush()
	assert.Empty(t, a.Snapshot())

	a.ClearReference()
	a.Ingest(far)
	a.Flush()
	assert.Len(t, a.Snapshot(), 1)
}

func TestAggregator_MovementFilter(t *testing.T) {
	tests := []struct {
		name     string
		moveLat  float64
		after    time.Duration
		accepted bool
	}{
		{"still and recent", 0.0001, 5 * time.Second, false},
		{"moved far enough", 0.0003, 5 * time.Second, true},
		{"still but stale", 0.0001, 15 * time.Second, true},
		{"just under both", 0.00026, 14999 * time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, mock := newTestAggregator()
			a.Ingest(update("d1", reference.Latitude, reference.Longitude))
			a.Flush()

			mock.Add(tt.after)
			a.Ingest(update("d1", reference.Latitude+tt.moveLat, reference.Longitude))
			a.Flush()

			got, ok := a.Get("d1")
			require.True(t, ok)
			if tt.accepted {
				assert.Equal(t, reference.Latitude+tt.moveLat, got.Position.Latitude)
			} else {
				assert.Equal(t, reference.Latitude, got.Position.Latitude)
				assert.Equal(t, start, got.LastAcceptedAt)
			}
		})
	}
}

func TestAggregator_SameActorAppliedInOrder(t *testing.T) {
	a, _ := newTestAggregator()

	a.Ingest(update("d1", 28.60, 77.20))
	a.Ingest(update("d1", 28.70, 77.20))
	a.Flush()

	got, ok := a.Get("d1")
	require.True(t, ok)
	assert.Equal(t, 28.70, got.Position.Latitude)
}

func TestAggregator_IdentityNormalization(t *testing.T) {
	// Arrange
	a, mock := newTestAggregator()
	legacy := models.PositionUpdate{UserID: "abc123", Latitude: 28.70, Longitude: 77.20}
	both := models.PositionUpdate{DriverID: "Primary", UserID: "fallback", Latitude: 28.80, Longitude: 77.20}

	// Act
	a.Ingest(update(" ABC123 ", 28.60, 77.20))
	a.Flush()
	mock.Add(time.Second)
	a.Ingest(legacy)
	a.Ingest(both)
	a.Ingest(models.PositionUpdate{DriverID: "   ", Latitude: 1, Longitude: 1})
	a.Flush()

	// Assert
	snapshot := a.Snapshot()
	require.Len(t, snapshot, 2)
	got, ok := a.Get("ABC123")
	require.True(t, ok)
	assert.Equal(t, "abc123", got.ActorID)
	assert.Equal(t, 28.70, got.Position.Latitude)

	_, ok = a.Get("primary")
	assert.True(t, ok)
	_, ok = a.Get("fallback")
	assert.False(t, ok)
}

func TestAggregator_UnsubscribeFlushesBufferedEvents(t *testing.T) {
	// Arrange
	a, mock := newTestAggregator()
	rec := &recorder{}
	unsubscribe := a.Subscribe(rec.record)
	a.Ingest(update("d1", 28.61, 77.20))
	a.Ingest(update("d2", 28.62, 77.20))

	// Act
	unsubscribe()

	// Assert
	assert.Len(t, a.Snapshot(), 2)
	require.Len(t, rec.snapshots, 1)
	assert.Len(t, rec.snapshots[0], 2)
	assert.Equal(t, 0, a.Pending())
	assert.Equal(t, 0, mock.Pending())

	unsubscribe()
	a.Ingest(update("d3", 28.63, 77.20))
	a.Flush()
	assert.Len(t, rec.snapshots, 1)
}

func TestAggregator_UnsubscribeInsideCallback(t *testing.T) {
	a, mock := newTestAggregator()
	var unsubscribe listener.Subscription
	calls := 0
	unsubscribe = a.Subscribe(func([]models.RemoteActorPosition) {
		calls++
		unsubscribe()
	})
	other := &recorder{}
	a.Subscribe(other.record)

	a.Ingest(update("d1", 28.61, 77.20))
	mock.Add(2 * time.Second)
	a.Ingest(update("d2", 28.62, 77.20))
	mock.Add(2 * time.Second)

	assert.Equal(t, 1, calls)
	assert.Len(t, other.snapshots, 2)
}

func TestAggregator_StaleActorsAreNotEvicted(t *testing.T) {
	a, mock := newTestAggregator()
	a.Ingest(update("d1", 28.61, 77.20))
	a.Flush()

	mock.Add(24 * time.Hour)
	a.Ingest(update("d2", 28.62, 77.20))
	a.Flush()

	_, ok := a.Get("d1")
	assert.True(t, ok, "actors that stop sending stay in the snapshot until Clear")
	assert.Len(t, a.Snapshot(), 2)
}

func TestAggregator_Clear(t *testing.T) {
	a, _ := newTestAggregator()
	rec := &recorder{}
	a.Subscribe(rec.record)
	a.Clear()
	assert.Empty(t, rec.snapshots)

	a.Ingest(update("d1", 28.61, 77.20))
	a.Flush()
	a.Clear()

	assert.Empty(t, a.Snapshot())
	require.Len(t, rec.snapshots, 2)
	assert.Empty(t, rec.snapshots[1])

	a.Ingest(update("d1", 28.61, 77.20))
	a.Flush()
	_, ok := a.Get("d1")
	assert.True(t, ok, "a cleared actor is accepted again without movement")
}

type fakeFeed struct {
	registry listener.Registry[models.PositionUpdate]
}

func (f *fakeFeed) OnPositionUpdate(cb func(models.PositionUpdate)) listener.Subscription {
	return f.registry.Add(cb)
}

func TestAggregator_Bind(t *testing.T) {
	a, mock := newTestAggregator()
	feed := &fakeFeed{}

	unbind := a.Bind(feed)
	feed.registry.Emit(update("d1", 28.61, 77.20))
	mock.Add(2 * time.Second)
	unbind()
	feed.registry.Emit(update("d2", 28.62, 77.20))
	mock.Add(2 * time.Second)

	assert.Len(t, a.Snapshot(), 1)
	assert.Equal(t, 0, feed.registry.Len())
}
