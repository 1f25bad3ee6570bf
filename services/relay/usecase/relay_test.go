package usecase_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/piresc/ukdrive/internal/pkg/models"
	"github.com/piresc/ukdrive/services/relay"
	"github.com/piresc/ukdrive/services/relay/mocks"
	"github.com/piresc/ukdrive/services/relay/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	delhi = models.GeoPoint{Latitude: 28.6139, Longitude: 77.2090}
	at    = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
)

func setup(t *testing.T) (*mocks.MockLocationRepo, *mocks.MockRelayGW, relay.RelayUC) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockLocationRepo(ctrl)
	gw := mocks.NewMockRelayGW(ctrl)
	return repo, gw, usecase.NewRelayUC(repo, gw)
}

func TestUpdateDriverLocation_StoresThenPublishes(t *testing.T) {
	// Arrange
	repo, gw, uc := setup(t)
	ctx := context.Background()
	gomock.InOrder(
		repo.EXPECT().StoreDriverLocation(ctx, "driver-1", delhi, at).Return(nil),
		gw.EXPECT().PublishDriverLocation(ctx, models.DriverLocationEvent{
			DriverID:  "driver-1",
			Latitude:  delhi.Latitude,
			Longitude: delhi.Longitude,
			Timestamp: at.UnixMilli(),
		}).Return(nil),
	)

	// Act
	err := uc.UpdateDriverLocation(ctx, "driver-1", delhi, at)

	// Assert
	assert.NoError(t, err)
}

func TestUpdateDriverLocation_Errors(t *testing.T) {
	t.Run("invalid coordinates", func(t *testing.T) {
		_, _, uc := setup(t)

		for _, point := range []models.GeoPoint{
			{Latitude: 91, Longitude: 0},
			{Latitude: 0, Longitude: -181},
			{Latitude: math.NaN(), Longitude: 0},
		} {
			err := uc.UpdateDriverLocation(context.Background(), "driver-1", point, at)
			assert.ErrorIs(t, err, relay.ErrInvalidLocation)
		}
	})

	t.Run("store failure skips publish", func(t *testing.T) {
		repo, _, uc := setup(t)
		repo.EXPECT().StoreDriverLocation(gomock.Any(), "driver-1", delhi, at).Return(assert.AnError)

		err := uc.UpdateDriverLocation(context.Background(), "driver-1", delhi, at)

		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to store driver location")
	})

	t.Run("publish failure", func(t *testing.T) {
		repo, gw, uc := setup(t)
		repo.EXPECT().StoreDriverLocation(gomock.Any(), "driver-1", delhi, at).Return(nil)
		gw.EXPECT().PublishDriverLocation(gomock.Any(), gomock.Any()).Return(assert.AnError)

		err := uc.UpdateDriverLocation(context.Background(), "driver-1", delhi, at)

		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to publish driver location")
	})
}

func TestUpdatePassengerLocation_ReturnsCell(t *testing.T) {
	repo, _, uc := setup(t)
	repo.EXPECT().StorePassengerLocation(gomock.Any(), "rider-1", delhi, "ttnfu", at).Return(nil)

	cell, err := uc.UpdatePassengerLocation(context.Background(), "rider-1", delhi, at)

	require.NoError(t, err)
	assert.Equal(t, "ttnfu", cell)
}

func TestUpdatePassengerLocation_Errors(t *testing.T) {
	repo, _, uc := setup(t)

	cell, err := uc.UpdatePassengerLocation(context.Background(), "rider-1", models.GeoPoint{Latitude: -91}, at)
	assert.ErrorIs(t, err, relay.ErrInvalidLocation)
	assert.Empty(t, cell)

	repo.EXPECT().StorePassengerLocation(gomock.Any(), "rider-1", delhi, gomock.Any(), at).Return(assert.AnError)
	cell, err = uc.UpdatePassengerLocation(context.Background(), "rider-1", delhi, at)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, cell)
}

func TestRelayChat(t *testing.T) {
	tests := []struct {
		name    string
		msg     models.ChatRelay
		wantErr error
	}{
		{"missing ride", models.ChatRelay{RideID: "  ", Message: "hi"}, relay.ErrMissingRideID},
		{"blank message", models.ChatRelay{RideID: "ride-1", Message: " \n"}, relay.ErrEmptyMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, uc := setup(t)
			assert.ErrorIs(t, uc.RelayChat(context.Background(), tt.msg), tt.wantErr)
		})
	}

	t.Run("publishes trimmed ride id", func(t *testing.T) {
		_, gw, uc := setup(t)
		gw.EXPECT().PublishChat(gomock.Any(), models.ChatRelay{
			RideID:     "ride-1",
			SenderRole: models.RoleDriver,
			SenderID:   "driver-1",
			Message:    "Arriving",
			Timestamp:  at.UnixMilli(),
		}).Return(nil)

		err := uc.RelayChat(context.Background(), models.ChatRelay{
			RideID:     " ride-1 ",
			SenderRole: models.RoleDriver,
			SenderID:   "driver-1",
			Message:    "Arriving",
			Timestamp:  at.UnixMilli(),
		})

		assert.NoError(t, err)
	})
}

func TestGetNearbyDrivers(t *testing.T) {
	repo, _, uc := setup(t)
	expected := []models.NearbyActor{{ActorID: "driver-1", Latitude: 28.62, Longitude: 77.21, DistanceKm: 0.7}}
	repo.EXPECT().NearbyDrivers(gomock.Any(), delhi, 5.0).Return(expected, nil)

	drivers, err := uc.GetNearbyDrivers(context.Background(), delhi, 5)
	require.NoError(t, err)
	assert.Equal(t, expected, drivers)

	_, err = uc.GetNearbyDrivers(context.Background(), delhi, 0)
	assert.ErrorIs(t, err, relay.ErrInvalidRadius)

	_, err = uc.GetNearbyDrivers(context.Background(), models.GeoPoint{Latitude: 100}, 5)
	assert.ErrorIs(t, err, relay.ErrInvalidLocation)
}

func TestGetDriverLocation(t *testing.T) {
	repo, _, uc := setup(t)
	expected := &models.DriverLocationEvent{DriverID: "driver-1", Latitude: 28.6, Longitude: 77.2, Timestamp: at.UnixMilli()}
	repo.EXPECT().GetDriverLocation(gomock.Any(), "driver-1").Return(expected, nil)

	got, err := uc.GetDriverLocation(context.Background(), "driver-1")

	require.NoError(t, err)
	assert.Equal(t, expected, got)
}

func TestDisconnected(t *testing.T) {
	repo, _, uc := setup(t)
	repo.EXPECT().RemoveDriver(gomock.Any(), "driver-1").Return(nil)
	repo.EXPECT().RemovePassenger(gomock.Any(), "rider-1").Return(assert.AnError)

	assert.NoError(t, uc.DriverDisconnected(context.Background(), "driver-1"))
	assert.ErrorIs(t, uc.PassengerDisconnected(context.Background(), "rider-1"), assert.AnError)
}
