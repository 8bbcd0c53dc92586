package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/Eursukkul/group-events/config"
	"github.com/Eursukkul/group-events/internal/consumer"
	"github.com/Eursukkul/group-events/internal/handler"
	"github.com/Eursukkul/group-events/internal/lifecycle"
	"github.com/Eursukkul/group-events/internal/middleware"
	"github.com/Eursukkul/group-events/internal/notify"
	"github.com/Eursukkul/group-events/internal/repository"
	"github.com/Eursukkul/group-events/internal/service"
	"github.com/Eursukkul/group-events/internal/worker"
	"github.com/Eursukkul/group-events/pkg/database"
	"github.com/Eursukkul/group-events/pkg/rabbitmq"
	"github.com/Eursukkul/group-events/pkg/validator"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "group-events").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log = log.Level(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	eventRepo := repository.NewEventRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var sink notify.Sink = notify.NewStoreSink(notificationRepo)
	if cfg.NotifyViaRabbitMQ {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer publisher.Close()
		sink = notify.NewPublisherSink(publisher)

		rmqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, notify.RoutingKeyPrefix+"*", log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create RabbitMQ consumer")
		}
		defer rmqConsumer.Close()

		msgs, err := rmqConsumer.Consume()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start consuming")
		}
		consumer.NewNotificationConsumer(notificationRepo, log).Start(ctx, msgs)
	}

	engine := lifecycle.NewEngine(cfg.EventEndGrace)
	eventSvc := service.NewEventService(eventRepo, userRepo, sink, engine, log, time.Now)
	userSvc := service.NewUserService(userRepo, notificationRepo, log)

	sweeper := worker.NewSweepWorker(eventSvc, cfg.SweepInterval, log)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.NewErrorHandler(log)
	e.Validator = validator.New()
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "group-events"})
	})

	api := e.Group("/api/v1")
	handler.NewSchemaHandler().RegisterRoutes(api.Group("/schemas"))
	handler.NewEventHandler(eventSvc).RegisterRoutes(api.Group("/events"))
	handler.NewUserHandler(userSvc).RegisterRoutes(api.Group("/users"))

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("group events service starting")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
