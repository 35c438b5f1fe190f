package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/aircargo/api"
	"github.com/Domenick1991/aircargo/config"
	"github.com/Domenick1991/aircargo/internal/bootstrap"
	"github.com/Domenick1991/aircargo/internal/cache"
	"github.com/Domenick1991/aircargo/internal/kafka"
	"github.com/Domenick1991/aircargo/internal/lock"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/Domenick1991/aircargo/internal/monitoring"
	"github.com/Domenick1991/aircargo/internal/service/booking"
	"github.com/Domenick1991/aircargo/internal/service/flights"
	"github.com/Domenick1991/aircargo/internal/validator"
	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New(logger.Config{}).Fatal("load config", "path", cfgPath, "error", err)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "cargo-api"})
	slog.SetDefault(log.Logger)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("open stores", "driver", cfg.Storage.Driver, "error", err)
	}
	defer stores.Close()

	locking, err := bootstrap.OpenLocking(ctx, cfg, log)
	if err != nil {
		log.Fatal("open lock store", "driver", cfg.Lock.Driver, "error", err)
	}
	defer locking.Close()

	var flightCache flights.FlightCache
	healthChecks := []api.HealthCheck{{Name: "store", Check: stores.Bookings.Ping}}
	if locking.Redis != nil {
		redisCache := cache.NewRedisCache(locking.Redis,
			time.Duration(cfg.Search.FlightsCacheTTL)*time.Second,
			time.Duration(cfg.Search.RoutesCacheTTL)*time.Second)
		flightCache = redisCache
		healthChecks = append(healthChecks, api.HealthCheck{Name: "redis", Check: redisCache.Ping})
	}

	collector := monitoring.NewCollector()
	v := validator.New(log)

	bookingOpts := []booking.BookingServiceOption{
		booking.WithKeyStrategy(lock.StrategyByName(cfg.Lock.Strategy)),
		booking.WithLockTTL(cfg.Lock.TTL()),
		booking.WithRetryPolicy(lock.RetryPolicy{Attempts: cfg.Lock.Attempts, Backoff: cfg.Lock.Backoff()}),
		booking.WithMetrics(collector),
		booking.WithListLimits(cfg.Booking.DefaultListLimit, cfg.Booking.MaxListLimit),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()
		bookingOpts = append(bookingOpts,
			booking.WithEventProducer(producer, cfg.Kafka.BookingEventsTopic),
			booking.WithPublishAttempts(cfg.Kafka.PublishAttempts))
	}

	flightService := flights.NewFlightService(stores.Flights, flightCache, v, log,
		flights.WithQueryLimits(cfg.Search.DirectLimit, cfg.Search.LegLimit),
		flights.WithSearchOptions(flights.SearchOptions{
			MinLayover:   hours(cfg.Search.MinLayoverHours),
			MaxLayover:   hours(cfg.Search.MaxLayoverHours),
			TransitLimit: cfg.Search.TransitLimit,
		}),
	)
	bookingService := booking.NewBookingService(stores.Bookings, stores.Flights, locking.Locker, v, log, bookingOpts...)

	monitor := monitoring.NewMonitor(collector, stores.Bookings, log)
	go monitor.Run(ctx,
		time.Duration(cfg.Worker.HealthCheckSeconds)*time.Second,
		time.Duration(cfg.Worker.AlertPruneMinutes)*time.Minute)

	router := api.NewRouter(api.RouterDeps{
		Bookings:   api.NewBookingHandler(bookingService),
		Flights:    api.NewFlightHandler(flightService),
		Monitoring: api.NewMonitoringHandler(collector, monitor, bookingService),
		Health:     api.NewHealthHandler(healthChecks...),
		Recorder:   collector,
		Log:        log,
	})

	if err := bootstrap.Run(ctx, cfg.HTTP, router, log); err != nil {
		log.Fatal("server error", "error", err)
	}
	log.Info("server stopped")
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
