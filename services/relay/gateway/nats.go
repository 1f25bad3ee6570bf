package gateway

import (
	"context"
	"fmt"

	"github.com/piresc/ukdrive/internal/pkg/constants"
	"github.com/piresc/ukdrive/internal/pkg/models"
	natspkg "github.com/piresc/ukdrive/internal/pkg/nats"
	nrpkg "github.com/piresc/ukdrive/internal/pkg/newrelic"
	"github.com/piresc/ukdrive/services/relay"
)

type relayGW struct {
	natsClient *natspkg.Client
}

// NewRelayGW creates a new relay gateway
func NewRelayGW(natsClient *natspkg.Client) relay.RelayGW {
	return &relayGW{
		natsClient: natsClient,
	}
}

// PublishDriverLocation publishes a driver location event to NATS
func (g *relayGW) PublishDriverLocation(ctx context.Context, event models.DriverLocationEvent) error {
	return nrpkg.WithSegment(ctx, "nats.publish."+constants.SubjectDriverLocationUpdated, func() error {
		if err := g.natsClient.PublishJSON(constants.SubjectDriverLocationUpdated, event); err != nil {
			return fmt.Errorf("failed to publish driver location: %w", err)
		}
		return nil
	})
}

// PublishChat publishes a chat message to the ride's chat subject
func (g *relayGW) PublishChat(ctx context.Context, msg models.ChatRelay) error {
	subject := fmt.Sprintf(constants.SubjectRideChat, msg.RideID)
	return nrpkg.WithSegment(ctx, "nats.publish.ride.chat", func() error {
		if err := g.natsClient.PublishJSON(subject, msg); err != nil {
			return fmt.Errorf("failed to publish chat message: %w", err)
		}
		return nil
	})
}
