package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/ukdrive/internal/pkg/constants"
	"github.com/piresc/ukdrive/internal/pkg/logger"
	"github.com/piresc/ukdrive/internal/pkg/models"
	natspkg "github.com/piresc/ukdrive/internal/pkg/nats"
	nrpkg "github.com/piresc/ukdrive/internal/pkg/newrelic"
	"github.com/piresc/ukdrive/internal/utils"
	"github.com/piresc/ukdrive/services/relay/metrics"
)

// ErrNoRecipient is returned for lifecycle events that name nobody
var ErrNoRecipient = errors.New("event has no recipient")

// Notifier delivers frames to connected actors
type Notifier interface {
	NotifyActor(actorID string, frame interface{}) bool
	NotifyCells(role models.Role, cells []string, frame interface{}) int
}

// lifecycleKinds maps broker subjects to the frame kind delivered to clients
var lifecycleKinds = map[string]string{
	constants.SubjectRideCancelled: constants.EventRideCancelled,
	constants.SubjectRideCompleted: constants.EventRideCompleted,
	constants.SubjectWalletUpdate:  constants.EventWalletUpdate,
}

// NatsHandler consumes broker events and forwards them to connected peers
type NatsHandler struct {
	notifier   Notifier
	natsClient *natspkg.Client
	nrApp      *newrelic.Application
	subs       []*nats.Subscription
}

// NewNatsHandler creates a new NATS handler
func NewNatsHandler(notifier Notifier, natsClient *natspkg.Client, nrApp *newrelic.Application) *NatsHandler {
	return &NatsHandler{
		notifier:   notifier,
		natsClient: natsClient,
		nrApp:      nrApp,
		subs:       make([]*nats.Subscription, 0),
	}
}

// InitNATSConsumers subscribes to driver locations and lifecycle events
func (h *NatsHandler) InitNATSConsumers() error {
	locationSub, err := h.natsClient.Subscribe(constants.SubjectDriverLocationUpdated, func(msg *nats.Msg) {
		ctx, end := nrpkg.StartTransaction(context.Background(), h.nrApp, "nats/"+msg.Subject)
		defer end()
		if err := h.handleDriverLocation(msg.Data); err != nil {
			nrpkg.NoticeError(ctx, err)
			logger.Error("Error handling driver location event", logger.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to driver location events: %w", err)
	}
	h.subs = append(h.subs, locationSub)

	for subject, kind := range lifecycleKinds {
		subject, kind := subject, kind
		sub, err := h.natsClient.Subscribe(subject, func(msg *nats.Msg) {
			ctx, end := nrpkg.StartTransaction(context.Background(), h.nrApp, "nats/"+msg.Subject)
			defer end()
			if err := h.handleLifecycleEvent(subject, kind, msg.Data); err != nil {
				nrpkg.NoticeError(ctx, err)
				logger.Error("Error handling lifecycle event",
					logger.String("subject", subject),
					logger.Err(err))
			}
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s events: %w", subject, err)
		}
		h.subs = append(h.subs, sub)
	}

	logger.Info("NATS consumers initialized", logger.Int("subscriptions", len(h.subs)))
	return nil
}

// Close unsubscribes every consumer
func (h *NatsHandler) Close() {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			logger.Warn("Failed to unsubscribe",
				logger.String("subject", sub.Subject),
				logger.Err(err))
		}
	}
	h.subs = nil
}

// handleDriverLocation fans a driver position out to the passengers in the
// driver's cell and the cells around it
func (h *NatsHandler) handleDriverLocation(data []byte) error {
	var event models.DriverLocationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal driver location event: %w", err)
	}

	point := models.GeoPoint{Latitude: event.Latitude, Longitude: event.Longitude}
	if !point.Valid() {
		return fmt.Errorf("invalid driver location: %f,%f", event.Latitude, event.Longitude)
	}

	frame := models.PositionUpdate{
		Type:      constants.EventDriverLocationUpdate,
		DriverID:  event.DriverID,
		Latitude:  event.Latitude,
		Longitude: event.Longitude,
		Timestamp: event.Timestamp,
	}
	cells := utils.CellWithNeighbors(point, constants.FanoutCellPrecision)
	delivered := h.notifier.NotifyCells(models.RolePassenger, cells, frame)
	metrics.FanoutDeliveries.Add(float64(delivered))

	logger.Debug("Driver location fanned out",
		logger.String("driver_id", event.DriverID),
		logger.Int("passengers", delivered))
	return nil
}

// handleLifecycleEvent forwards every field of the payload to the user it
// names, plus the ride's driver and passenger when present
func (h *NatsHandler) handleLifecycleEvent(subject, kind string, data []byte) error {
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to unmarshal %s event: %w", subject, err)
	}
	var event models.LifecycleEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal %s event: %w", subject, err)
	}

	fields["type"] = kind

	recipients := uniqueNonEmpty(event.UserID, event.DriverID, event.PassengerID)
	if len(recipients) == 0 {
		return fmt.Errorf("%s: %w", subject, ErrNoRecipient)
	}

	for _, id := range recipients {
		if h.notifier.NotifyActor(id, fields) {
			metrics.NotificationsDelivered.WithLabelValues(subject, metrics.ResultDelivered).Inc()
			continue
		}
		metrics.NotificationsDelivered.WithLabelValues(subject, metrics.ResultOffline).Inc()
		logger.Debug("Recipient not connected",
			logger.String("subject", subject),
			logger.String("actor_id", id))
	}
	return nil
}

func uniqueNonEmpty(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
