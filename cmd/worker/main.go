package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/aircargo/config"
	"github.com/Domenick1991/aircargo/internal/bootstrap"
	"github.com/Domenick1991/aircargo/internal/kafka"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/Domenick1991/aircargo/internal/monitoring"
)

// The worker follows the booking event stream into its own collector and runs
// the periodic health checks against the store.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New(logger.Config{}).Fatal("load config", "path", cfgPath, "error", err)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "cargo-worker"})
	slog.SetDefault(log.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("open stores", "driver", cfg.Storage.Driver, "error", err)
	}
	defer stores.Close()

	collector := monitoring.NewCollector()
	monitor := monitoring.NewMonitor(collector, stores.Bookings, log)

	if len(cfg.Kafka.Brokers) == 0 {
		log.Warn("no kafka brokers configured; running health checks only")
	} else {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic, log)
		defer consumer.Close()

		go func() {
			err := consumer.ConsumeBookingEvents(ctx, func(_ context.Context, ev kafka.BookingEvent) error {
				if !ev.Status.Valid() {
					collector.RecordRejectedEvent()
					log.Warn("dropped booking event with unknown status", "type", ev.Type, "refId", ev.RefID, "status", ev.Status)
					return nil
				}
				collector.RecordBookingEvent(kafka.EventKind(ev.Type), ev.Status)
				log.Info("booking event",
					"type", ev.Type,
					"refId", ev.RefID,
					"status", ev.Status,
					"location", ev.Location,
				)
				return nil
			})
			if err != nil {
				log.Error("consumer stopped", "error", err)
				stop()
			}
		}()
	}

	log.Info("worker started",
		"topic", cfg.Kafka.BookingEventsTopic,
		"healthCheckSeconds", cfg.Worker.HealthCheckSeconds)

	monitor.Run(ctx,
		time.Duration(cfg.Worker.HealthCheckSeconds)*time.Second,
		time.Duration(cfg.Worker.AlertPruneMinutes)*time.Minute)

	status := monitor.Status()
	log.Info("worker stopped", "status", status.Status, "alerts", status.Alerts.Total)
}
