package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"ride-booking/cmd"
	"ride-booking/internal/data/repository"
	"ride-booking/internal/wire"
	"ride-booking/pkg/cache"
	"ride-booking/pkg/database"
	"ride-booking/pkg/messaging"
	"ride-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Optional delivery channels
	var infra wire.Infra
	if config.Redis.Enabled {
		infra.Redis, err = cache.NewRedisClient(config.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer infra.Redis.Close()
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	}
	if config.RabbitMQ.Enabled {
		infra.AMQP, err = messaging.NewPublisher(config.RabbitMQ)
		if err != nil {
			logger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
		}
		defer infra.AMQP.Close()
		logger.Info("RabbitMQ connected", zap.String("exchange", config.RabbitMQ.Exchange))
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, logger, infra)

	go app.Hub.Run(ctx)
	if app.Bus != nil {
		go func() {
			if err := app.Bus.Run(ctx); err != nil {
				logger.Error("Notification bus stopped", zap.Error(err))
			}
		}()
	}

	// Start server
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, config.App.ShutdownTimeout, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
