// Command sensorsim emulates a smart tent posting telemetry to the API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SmartTent.api/internal/client"
	"SmartTent.api/internal/logging"
	"SmartTent.api/internal/models"
	"SmartTent.api/internal/simulator"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

func main() {
	url := flag.String("url", "http://localhost:5000", "base URL of the telemetry API")
	device := flag.String("device", models.DefaultDeviceID, "device id to report as")
	interval := flag.Duration("interval", 5*time.Second, "delay between readings")
	count := flag.Int("count", 0, "number of readings to send, 0 for no limit")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger, err := logging.NewLogger(*level, "text")
	if err != nil {
		logrus.Fatalf("Error creating logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*url)
	tent := simulator.NewTent(*device, *seed)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	log := logger.WithFields(logrus.Fields{"device_id": *device, "url": *url})
	log.Info("🏕️ sensor simulator started")

	for sent := 0; *count == 0 || sent < *count; sent++ {
		payload := tent.Next()
		if err := api.Submit(ctx, payload); err != nil {
			log.WithError(err).Warn("❌ failed to send reading")
		} else {
			log.WithField("sensors", payload.Sensors).Debug("✅ reading sent")
		}

		select {
		case <-ctx.Done():
			log.Info("sensor simulator stopped")
			return
		case <-ticker.C:
		}
	}
}
