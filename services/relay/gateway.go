package relay

import (
	"context"

	"github.com/piresc/ukdrive/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/piresc/ukdrive/services/relay RelayGW

// RelayGW defines the broker operations of the relay
type RelayGW interface {
	// PublishDriverLocation publishes an accepted driver position for fan-out
	PublishDriverLocation(ctx context.Context, event models.DriverLocationEvent) error
	// PublishChat publishes a chat message on the ride's chat subject
	PublishChat(ctx context.Context, msg models.ChatRelay) error
}
