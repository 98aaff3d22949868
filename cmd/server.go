package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SmartTent.api/internal/config"
	"SmartTent.api/internal/controller"
	"SmartTent.api/internal/ingest"
	"SmartTent.api/internal/live"
	"SmartTent.api/internal/logging"
	"SmartTent.api/internal/metrics"
	"SmartTent.api/internal/repository"
	"SmartTent.api/internal/routes"
	"SmartTent.api/internal/service"
	"SmartTent.api/internal/sink"
	"SmartTent.api/web"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Error loading configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("Error creating logger: %v", err)
	}
	if !cfg.EnvFileLoaded {
		logger.Info("No .env file found, relying on system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := live.NewHub(logger, cfg.LiveBuffer)
	go hub.Run(ctx)

	sinks := []sink.Sink{hub}
	if cfg.InfluxEnabled() {
		influx := sink.NewInfluxDBSink(cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket)
		defer influx.Close()
		if err := influx.Ping(ctx); err != nil {
			logger.WithError(err).Warn("InfluxDB sink disabled")
		} else if created, err := influx.EnsureBucket(ctx); err != nil {
			logger.WithError(err).Warn("InfluxDB sink disabled")
		} else {
			if created {
				logger.WithField("bucket", cfg.InfluxDBBucket).Info("✅ Bucket created")
			}
			logger.WithField("bucket", cfg.InfluxDBBucket).Info("Successfully connected to InfluxDB!")
			sinks = append(sinks, influx)
		}
	}
	if cfg.RedisEnabled() {
		rds := sink.NewRedisSink(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisChannel)
		defer rds.Close()
		if err := rds.Ping(ctx); err != nil {
			logger.WithError(err).Warn("Redis sink disabled")
		} else {
			logger.WithField("channel", cfg.RedisChannel).Info("Connected to Redis successfully!")
			sinks = append(sinks, rds)
		}
	}

	// Initialize repository, service, and controllers
	m := metrics.New()
	repo := repository.NewMemoryRepository()
	svc := service.NewDataService(repo, cfg.DefaultDeviceID, logger, m, sinks...)

	if cfg.MQTTEnabled() {
		sub := ingest.NewMQTTSubscriber(cfg.MQTTBroker, cfg.MQTTTopic, cfg.MQTTClientID, byte(cfg.MQTTQoS), svc, logger)
		go func() {
			if err := sub.Run(ctx); err != nil {
				logger.WithError(err).Error("MQTT subscriber stopped")
			}
		}()
	}

	tmpl, err := web.Templates()
	if err != nil {
		logger.Fatalf("Error parsing templates: %v", err)
	}

	router := routes.NewRouter(routes.Handlers{
		Data:    controller.NewDataController(svc, logger),
		Pages:   controller.NewPageController(tmpl, logger),
		Static:  web.Static(),
		Live:    hub,
		Metrics: m.Handler(),
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           routes.WithCORS(router, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": srv.Addr, "sinks": len(sinks)}).Info("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}
