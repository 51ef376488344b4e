// Command station answers single-byte command flags from the analog front end
// over a serial line and HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/wx-station/internal/adapter/http"
	"github.com/couchcryptid/wx-station/internal/adapter/iio"
	"github.com/couchcryptid/wx-station/internal/adapter/serial"
	"github.com/couchcryptid/wx-station/internal/command"
	"github.com/couchcryptid/wx-station/internal/config"
	"github.com/couchcryptid/wx-station/internal/observability"
	"github.com/couchcryptid/wx-station/internal/sensor"
)

func main() {
	cfg, err := config.LoadStation()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logging)
	metrics := observability.NewStationMetrics()

	adc, err := newADC(cfg)
	if err != nil {
		logger.Error("failed to open adc", "backend", cfg.ADCBackend, "error", err)
		os.Exit(1)
	}

	table, err := loadDirectionTable(cfg.WindCalibrationFile)
	if err != nil {
		logger.Error("failed to load wind calibration", "file", cfg.WindCalibrationFile, "error", err)
		os.Exit(1)
	}

	windCh := sensor.Channel(cfg.WindDirectionChannel)
	dispatcher := command.NewDispatcher(adc, command.Channels{
		Battery: sensor.Channel(cfg.BatteryChannel),
	})
	vane := func() (sensor.VaneReading, error) { return table.ReadVane(adc, windCh) }
	probe := httpadapter.ADCProbe{ADC: adc, Channel: sensor.Channel(cfg.BatteryChannel)}

	srv := httpadapter.NewServer(cfg.HTTPAddr, dispatcher, probe, vane, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var port io.Closer
	if cfg.SerialDevice != "" {
		rw, err := serial.Open(cfg.SerialDevice, cfg.SerialBaud)
		if err != nil {
			logger.Error("failed to open serial port", "error", err)
			os.Exit(1)
		}
		port = rw
		link := serial.NewLink(rw, dispatcher, logger, metrics)
		logger.Info("serial link enabled", "device", cfg.SerialDevice, "baud", cfg.SerialBaud)
		go func() {
			if err := link.Serve(ctx); err != nil {
				logger.Error("serial link error", "error", err)
			}
		}()
	}

	logger.Info("station started", "station_id", cfg.StationID, "adc", cfg.ADCBackend, "flags", len(dispatcher.Flags()))

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if port != nil {
		if err := port.Close(); err != nil {
			logger.Error("serial port close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func newADC(cfg *config.StationConfig) (sensor.ADC, error) {
	switch cfg.ADCBackend {
	case "iio":
		adc, err := iio.NewADC(cfg.IIODevice, cfg.IIOResolutionBits)
		if err != nil {
			return nil, err
		}
		return adc, nil
	case "static":
		return sensor.NewStaticADC(map[sensor.Channel]sensor.Sample{
			sensor.Channel(cfg.BatteryChannel):       sensor.Sample(cfg.StaticBatteryRaw),
			sensor.Channel(cfg.WindDirectionChannel): sensor.Sample(cfg.StaticWindRaw),
		}), nil
	default:
		return nil, fmt.Errorf("unknown adc backend %q", cfg.ADCBackend)
	}
}

func loadDirectionTable(path string) (*sensor.DirectionTable, error) {
	if path == "" {
		return sensor.DefaultDirectionTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sensor.LoadDirectionTable(f)
}
