package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/piresc/ukdrive/internal/pkg/circuitbreaker"
	"github.com/piresc/ukdrive/internal/pkg/clock"
	"github.com/piresc/ukdrive/internal/pkg/config"
	"github.com/piresc/ukdrive/internal/pkg/constants"
	httpclient "github.com/piresc/ukdrive/internal/pkg/http"
	jwtpkg "github.com/piresc/ukdrive/internal/pkg/jwt"
	"github.com/piresc/ukdrive/internal/pkg/logger"
	"github.com/piresc/ukdrive/internal/pkg/models"
	wspkg "github.com/piresc/ukdrive/internal/pkg/websocket"
	"github.com/piresc/ukdrive/services/tracking/gateway"
	"github.com/piresc/ukdrive/services/tracking/outbound"
	"github.com/piresc/ukdrive/services/tracking/sharing"
	"github.com/piresc/ukdrive/services/tracking/source"
	"go.uber.org/zap"
)

func main() {
	appName := "simdriver"
	configs := config.InitConfig(os.Getenv("CONFIG_PATH"))

	zapLogger, err := logger.InitZapLoggerFromConfig(configs)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	role := configs.Tracking.Role
	if !role.Valid() {
		zapLogger.Fatal("Invalid tracking role", zap.String("role", string(role)))
	}
	actorID := configs.Tracking.ActorID
	if actorID == "" {
		actorID = constants.TemporaryActorPrefix + uuid.NewString()
	}

	zapLogger.Info("Starting simulator",
		zap.String("app", appName),
		zap.String("role", string(role)),
		zap.String("actor_id", actorID),
		zap.String("relay", configs.Tracking.WebSocketURL),
	)

	// Connection manager
	var clientOpts []wspkg.ClientOption
	if configs.JWT.Secret != "" {
		token, err := jwtpkg.GenerateToken(configs.JWT, actorID, role, 24*time.Hour)
		if err != nil {
			zapLogger.Fatal("Failed to sign relay token", zap.Error(err))
		}
		clientOpts = append(clientOpts, wspkg.WithBearerToken(token))
	}
	client := wspkg.NewClient(role, configs.Tracking.WebSocketURL, clientOpts...)

	// REST persistence behind per-host circuit breakers
	api := httpclient.NewClient(httpclient.Config{
		BaseURL:     configs.Tracking.APIBaseURL,
		Timeout:     configs.Tracking.HTTPTimeout,
		BearerToken: configs.Tracking.APIToken,
		Breakers:    circuitbreaker.NewManager(clock.New()),
	})

	src := source.NewSimulated(source.SimulatedConfig{
		Start: models.GeoPoint{
			Latitude:  config.GetEnvAsFloat("SIM_START_LAT", 28.6139),
			Longitude: config.GetEnvAsFloat("SIM_START_LNG", 77.2090),
		},
		BearingDegrees: config.GetEnvAsFloat("SIM_BEARING_DEG", 45),
		SpeedMps:       config.GetEnvAsFloat("SIM_SPEED_MPS", 8),
		Interval:       configs.Tracking.SampleInterval,
		AccuracyMeters: config.GetEnvAsFloat("SIM_ACCURACY_M", 5),
	})

	store := sharing.Init()
	unsubscribe := store.Subscribe(func(state sharing.State) {
		fields := []logger.Field{
			logger.Bool("sharing", state.Sharing),
			logger.String("phase", state.Phase),
		}
		if state.LastKnown != nil {
			fields = append(fields,
				logger.Float64("latitude", state.LastKnown.Latitude),
				logger.Float64("longitude", state.LastKnown.Longitude))
		}
		if state.Error != "" {
			fields = append(fields, logger.String("error", state.Error))
		}
		logger.Info("Sharing state changed", fields...)
	})
	defer unsubscribe()

	pipeline, err := outbound.NewPipeline(
		outbound.DefaultConfig(role, actorID),
		client,
		src,
		gateway.NewHTTPGateway(api),
		store,
	)
	if err != nil {
		zapLogger.Fatal("Failed to create outbound pipeline", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Connect(ctx, actorID); err != nil {
		zapLogger.Warn("Initial relay connection failed, health check will retry", zap.Error(err))
	}
	go client.RunHealthCheck(ctx, configs.Tracking.HealthCheckInterval)

	if err := pipeline.Start(ctx); err != nil {
		zapLogger.Fatal("Failed to start position sharing", zap.Error(err))
	}

	<-ctx.Done()
	zapLogger.Info("Stopping simulator")

	pipeline.Close()
	client.Disconnect("simulator stopped")
}
