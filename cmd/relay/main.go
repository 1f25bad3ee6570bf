package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/ukdrive/internal/pkg/config"
	"github.com/piresc/ukdrive/internal/pkg/database"
	"github.com/piresc/ukdrive/internal/pkg/health"
	"github.com/piresc/ukdrive/internal/pkg/logger"
	"github.com/piresc/ukdrive/internal/pkg/middleware"
	natspkg "github.com/piresc/ukdrive/internal/pkg/nats"
	nrpkg "github.com/piresc/ukdrive/internal/pkg/newrelic"
	"github.com/piresc/ukdrive/internal/pkg/retry"
	"github.com/piresc/ukdrive/internal/pkg/server"
	wspkg "github.com/piresc/ukdrive/internal/pkg/websocket"
	"github.com/piresc/ukdrive/services/relay/gateway"
	"github.com/piresc/ukdrive/services/relay/handler"
	httpHandler "github.com/piresc/ukdrive/services/relay/handler/http"
	natsHandler "github.com/piresc/ukdrive/services/relay/handler/nats"
	wsHandler "github.com/piresc/ukdrive/services/relay/handler/websocket"
	"github.com/piresc/ukdrive/services/relay/repository"
	"github.com/piresc/ukdrive/services/relay/usecase"
	"go.uber.org/zap"
)

func main() {
	appName := "relay-service"
	configs := config.InitConfig(os.Getenv("CONFIG_PATH"))

	// Initialize New Relic and Zap logger
	nrApp := nrpkg.InitNewRelic(configs)
	if nrApp != nil {
		if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		}
	}

	zapLogger, err := logger.InitZapLoggerFromConfig(configs)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	zapLogger.Info("Starting application",
		zap.String("app", appName),
		zap.String("version", configs.App.Version),
		zap.String("environment", configs.App.Environment),
	)

	// Infrastructure may come up after the relay in local setups
	startup := retry.NewWithDefaults()
	ctx := context.Background()

	var redisClient *database.RedisClient
	if err := startup.Execute(ctx, func(context.Context) error {
		redisClient, err = database.NewRedisClient(configs.Redis)
		return err
	}); err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	var natsClient *natspkg.Client
	if err := startup.Execute(ctx, func(context.Context) error {
		natsClient, err = natspkg.NewClient(configs.NATS.URL, appName)
		return err
	}); err != nil {
		zapLogger.Fatal("Failed to connect to NATS", zap.Error(err))
	}

	// Initialize repository, gateway and use case
	locationRepo := repository.NewLocationRepository(redisClient)
	relayGW := gateway.NewRelayGW(natsClient)
	relayUC := usecase.NewRelayUC(locationRepo, relayGW)

	// Handlers
	manager := wspkg.NewManager(configs.JWT)
	h := handler.NewHandler(
		httpHandler.NewRelayHandler(relayUC, configs.Tracking.SearchRadiusKm),
		wsHandler.NewWebSocketManager(relayUC, manager, nrApp),
		natsHandler.NewNatsHandler(manager, natsClient, nrApp),
	)
	if err := h.InitNATSConsumers(); err != nil {
		zapLogger.Fatal("Failed to initialize NATS consumers", zap.Error(err))
	}

	// Initialize Echo router
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.PanicRecoveryWithZapMiddleware(zapLogger))
	e.Use(nrpkg.EchoMiddleware(nrApp))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	healthSvc := health.NewService(appName)
	healthSvc.AddChecker("redis", health.NewRedisHealthChecker(redisClient))
	healthSvc.AddChecker("nats", health.NewNATSHealthChecker(natsClient))
	health.RegisterHealthEndpoints(e, healthSvc)

	h.RegisterRoutes(e)

	srv := server.NewGracefulServer(e, configs.Server.Port, time.Duration(configs.Server.ShutdownTimeout)*time.Second)
	srv.OnShutdown(func(context.Context) error {
		h.Close()
		natsClient.Close()
		return nil
	})
	srv.OnShutdown(func(context.Context) error {
		return redisClient.Close()
	})
	if nrApp != nil {
		srv.OnShutdown(func(context.Context) error {
			nrApp.Shutdown(5 * time.Second)
			return nil
		})
	}

	if err := srv.Start(); err != nil {
		zapLogger.Fatal("Server stopped with error",
			zap.String("app", appName),
			zap.Error(err),
		)
	}
}
