package nats

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/piresc/ukdrive/internal/pkg/constants"
	"github.com/piresc/ukdrive/internal/pkg/models"
	natspkg "github.com/piresc/ukdrive/internal/pkg/nats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notification struct {
	ActorID string
	Role    models.Role
	Cells   []string
	Frame   interface{}
}

// fakeNotifier records deliveries; online lists the connected actors
type fakeNotifier struct {
	mu            sync.Mutex
	online        map[string]bool
	notifications []notification
}

func newFakeNotifier(online ...string) *fakeNotifier {
	n := &fakeNotifier{online: make(map[string]bool)}
	for _, id := range online {
		n.online[id] = true
	}
	return n
}

func (n *fakeNotifier) NotifyActor(actorID string, frame interface{}) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification{ActorID: actorID, Frame: frame})
	return n.online[actorID]
}

func (n *fakeNotifier) NotifyCells(role models.Role, cells []string, frame interface{}) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification{Role: role, Cells: cells, Frame: frame})
	return 1
}

func (n *fakeNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.notifications...)
}

func TestHandleDriverLocation_FansOutToNeighbourCells(t *testing.T) {
	// Arrange
	notifier := newFakeNotifier()
	h := NewNatsHandler(notifier, nil, nil)
	data, _ := json.Marshal(models.DriverLocationEvent{
		DriverID:  "driver-1",
		Latitude:  28.6139,
		Longitude: 77.2090,
		Timestamp: 1709283600000,
	})

	// Act
	err := h.handleDriverLocation(data)

	// Assert
	require.NoError(t, err)
	got := notifier.all()
	require.Len(t, got, 1)
	assert.Equal(t, models.RolePassenger, got[0].Role)
	assert.Len(t, got[0].Cells, 9)
	assert.Equal(t, "ttnfu", got[0].Cells[0])
	assert.Contains(t, got[0].Cells, "ttnfv")
	assert.Equal(t, models.PositionUpdate{
		Type:      constants.EventDriverLocationUpdate,
		DriverID:  "driver-1",
		Latitude:  28.6139,
		Longitude: 77.2090,
		Timestamp: 1709283600000,
	}, got[0].Frame)
}

func TestHandleDriverLocation_Invalid(t *testing.T) {
	h := NewNatsHandler(newFakeNotifier(), nil, nil)

	assert.Error(t, h.handleDriverLocation([]byte("{")))
	assert.Error(t, h.handleDriverLocation([]byte(`{"driverId":"d1","latitude":120,"longitude":0}`)))
}

func TestHandleLifecycleEvent(t *testing.T) {
	tests := []struct {
		name           string
		payload        string
		wantRecipients []string
		wantErr        error
	}{
		{"wallet update to user", `{"userId":"rider-1","balance":120}`, []string{"rider-1"}, nil},
		{"ride cancelled to both sides", `{"userId":"rider-1","driverId":"driver-1","passengerId":"rider-1","rideId":"ride-1"}`, []string{"rider-1", "driver-1"}, nil},
		{"no recipient", `{"rideId":"ride-1"}`, nil, ErrNoRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := newFakeNotifier("rider-1")
			h := NewNatsHandler(notifier, nil, nil)

			err := h.handleLifecycleEvent(constants.SubjectRideCancelled, constants.EventRideCancelled, []byte(tt.payload))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, notifier.all())
				return
			}
			require.NoError(t, err)
			got := notifier.all()
			require.Len(t, got, len(tt.wantRecipients))
			for i, id := range tt.wantRecipients {
				assert.Equal(t, id, got[i].ActorID)
				frame := got[i].Frame.(map[string]interface{})
				assert.Equal(t, constants.EventRideCancelled, frame["type"])
			}
		})
	}
}

func TestHandleLifecycleEvent_ForwardsAllFields(t *testing.T) {
	notifier := newFakeNotifier("rider-1")
	h := NewNatsHandler(notifier, nil, nil)

	err := h.handleLifecycleEvent(constants.SubjectWalletUpdate, constants.EventWalletUpdate,
		[]byte(`{"userId":"rider-1","balance":120.5,"currency":"INR"}`))

	require.NoError(t, err)
	got := notifier.all()
	require.Len(t, got, 1)
	assert.Equal(t, map[string]interface{}{
		"type":     constants.EventWalletUpdate,
		"userId":   "rider-1",
		"balance":  120.5,
		"currency": "INR",
	}, got[0].Frame)
}

func TestInitNATSConsumers(t *testing.T) {
	// Arrange
	s := natsserver.RunRandClientPortServer()
	defer s.Shutdown()
	client, err := natspkg.NewClient(s.ClientURL(), "relay-handler-test")
	require.NoError(t, err)
	defer client.Close()

	notifier := newFakeNotifier("rider-1")
	h := NewNatsHandler(notifier, client, nil)
	require.NoError(t, h.InitNATSConsumers())
	assert.Len(t, h.subs, 4)
	require.NoError(t, client.Flush())

	// Act
	require.NoError(t, client.PublishJSON(constants.SubjectRideCompleted, map[string]string{"userId": "rider-1", "rideId": "ride-1"}))
	require.NoError(t, client.PublishJSON(constants.SubjectDriverLocationUpdated, models.DriverLocationEvent{DriverID: "driver-1", Latitude: 28.6, Longitude: 77.2}))

	// Assert
	require.Eventually(t, func() bool { return len(notifier.all()) == 2 }, 2*time.Second, 10*time.Millisecond)

	h.Close()
	assert.Empty(t, h.subs)
	require.NoError(t, client.PublishJSON(constants.SubjectRideCompleted, map[string]string{"userId": "rider-1"}))
	require.NoError(t, client.Flush())
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, notifier.all(), 2)
}
