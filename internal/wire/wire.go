package wire

import (
	"net/http"

	"ride-booking/internal/adaptor"
	"ride-booking/internal/data/repository"
	"ride-booking/internal/notification"
	"ride-booking/internal/usecase"
	"ride-booking/pkg/messaging"
	"ride-booking/pkg/middleware"
	"ride-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Infra holds the optional connections opened by main. Nil members disable
// the matching delivery channel.
type Infra struct {
	Redis *redis.Client
	AMQP  *messaging.Publisher
}

// App holds the router and the background workers main must run.
type App struct {
	Router *chi.Mux
	Hub    *notification.Hub
	Bus    *notification.RedisBus
}

func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger, infra Infra) *App {
	hub := notification.NewHub(config.App.AllowedOrigins, logger)
	dispatcher := notification.NewDispatcher(repo.Notification, logger)

	var bus *notification.RedisBus
	if infra.Redis != nil {
		bus = notification.NewRedisBus(infra.Redis, config.Redis.Channel, hub, logger)
		dispatcher.Use("redis", bus)
	} else {
		dispatcher.Use("websocket", hub)
	}
	if infra.AMQP != nil {
		dispatcher.Use("amqp", notification.NewAMQPPublisher(infra.AMQP))
	}

	service := usecase.NewService(repo, dispatcher, logger)
	handler := adaptor.NewHandler(service, hub, logger)
	verifier := middleware.NewTokenVerifier(config.JWT)

	return &App{
		Router: setupRouter(handler, verifier, config, logger),
		Hub:    hub,
		Bus:    bus,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	verifier *middleware.TokenVerifier,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.AllowedOrigins))

	wireRide(r, handler.Ride, handler.Search, verifier, logger)
	wireBooking(r, handler.Booking, verifier, logger)
	wireNotification(r, handler.Notification, verifier, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
