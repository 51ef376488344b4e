// Command relay polls a station report and republishes it to Kafka topics on
// fixed schedules.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/wx-station/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/wx-station/internal/adapter/kafka"
	"github.com/couchcryptid/wx-station/internal/adapter/station"
	"github.com/couchcryptid/wx-station/internal/config"
	"github.com/couchcryptid/wx-station/internal/observability"
	"github.com/couchcryptid/wx-station/internal/relay"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.LoadRelay()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logging)
	metrics := observability.NewRelayMetrics()

	client := station.NewClient(cfg.StationURL, cfg.StationTimeout, metrics, logger)
	fetcher := station.NewCachedFetcher(client, cfg.StationCacheTTL, clockwork.NewRealClock(), metrics)
	writer := kafkaadapter.NewWriter(cfg, logger)

	r := relay.New(fetcher, writer, relay.Topics{
		Wind:    cfg.KafkaWindTopic,
		THP:     cfg.KafkaTHPTopic,
		Rain:    cfg.KafkaRainTopic,
		Summary: cfg.KafkaSummaryTopic,
	}, cfg.StationID, logger, metrics)

	sched, err := relay.NewScheduler(r, relay.Schedule{
		Wind:      cfg.WindInterval,
		THP:       cfg.THPInterval,
		Rain:      cfg.RainInterval,
		SummaryAt: cfg.SummaryAt,
		Location:  cfg.Timezone,
	}, 2*cfg.StationTimeout, logger, metrics)
	if err != nil {
		logger.Error("failed to schedule relay jobs", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, r, r, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	sched.Start(ctx)
	logger.Info("relay started",
		"station_url", cfg.StationURL,
		"brokers", cfg.KafkaBrokers,
		"summary_at", cfg.SummaryAt,
		"timezone", cfg.Timezone.String(),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
