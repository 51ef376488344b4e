package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Logging controls the slog handler and optional file rotation.
type Logging struct {
	Level      string
	Format     string
	File       string // empty logs to stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// StationConfig holds settings for the station process, populated from
// environment variables.
type StationConfig struct {
	StationID       string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	Logging         Logging

	// Analog front end. Backend is "iio" for a Linux industrial-I/O device or
	// "static" for fixed simulated samples.
	ADCBackend           string
	IIODevice            string
	IIOResolutionBits    int
	BatteryChannel       int
	WindDirectionChannel int
	StaticBatteryRaw     int
	StaticWindRaw        int
	WindCalibrationFile  string

	// Serial command link. An empty device disables it.
	SerialDevice string
	SerialBaud   int
}

// RelayConfig holds settings for the relay process.
type RelayConfig struct {
	StationID       string
	StationURL      string
	StationTimeout  time.Duration
	StationCacheTTL time.Duration
	HTTPAddr        string
	ShutdownTimeout time.Duration
	Logging         Logging

	KafkaBrokers      []string
	KafkaWindTopic    string
	KafkaTHPTopic     string
	KafkaRainTopic    string
	KafkaSummaryTopic string

	WindInterval time.Duration
	THPInterval  time.Duration
	RainInterval time.Duration
	SummaryAt    string // HH:MM in Timezone
	Timezone     *time.Location
}

// LoadStation reads station configuration from environment variables, applying
// defaults where unset.
func LoadStation() (*StationConfig, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	logging, err := loadLogging()
	if err != nil {
		return nil, err
	}

	cfg := &StationConfig{
		StationID:           sharedcfg.EnvOrDefault("STATION_ID", "station-1"),
		HTTPAddr:            sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout:     shutdownTimeout,
		Logging:             logging,
		ADCBackend:          sharedcfg.EnvOrDefault("ADC_BACKEND", "iio"),
		IIODevice:           sharedcfg.EnvOrDefault("IIO_DEVICE", "/sys/bus/iio/devices/iio:device0"),
		WindCalibrationFile: os.Getenv("WIND_CALIBRATION_FILE"),
		SerialDevice:        os.Getenv("SERIAL_DEVICE"),
	}

	ints := []struct {
		name     string
		def      int
		min, max int
		dst      *int
	}{
		{"IIO_RESOLUTION_BITS", 12, 12, 16, &cfg.IIOResolutionBits},
		{"BATTERY_CHANNEL", 0, 0, 255, &cfg.BatteryChannel},
		{"WIND_DIRECTION_CHANNEL", 1, 0, 255, &cfg.WindDirectionChannel},
		{"STATIC_BATTERY_RAW", 2048, 0, 4095, &cfg.StaticBatteryRaw},
		{"STATIC_WIND_DIRECTION_RAW", 0, 0, 4095, &cfg.StaticWindRaw},
		{"SERIAL_BAUD", 9600, 300, 921600, &cfg.SerialBaud},
	}
	for _, f := range ints {
		v, err := parseInt(f.name, f.def, f.min, f.max)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	switch cfg.ADCBackend {
	case "iio", "static":
	default:
		return nil, fmt.Errorf("invalid ADC_BACKEND %q: want iio or static", cfg.ADCBackend)
	}
	if cfg.BatteryChannel == cfg.WindDirectionChannel {
		return nil, errors.New("BATTERY_CHANNEL and WIND_DIRECTION_CHANNEL must differ")
	}

	return cfg, nil
}

// LoadRelay reads relay configuration from environment variables, applying
// defaults where unset.
func LoadRelay() (*RelayConfig, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	logging, err := loadLogging()
	if err != nil {
		return nil, err
	}

	cfg := &RelayConfig{
		StationID:         sharedcfg.EnvOrDefault("STATION_ID", "station-1"),
		StationURL:        sharedcfg.EnvOrDefault("STATION_URL", "http://localhost:8080"),
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8081"),
		ShutdownTimeout:   shutdownTimeout,
		Logging:           logging,
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaWindTopic:    sharedcfg.EnvOrDefault("KAFKA_WIND_TOPIC", "wxWind"),
		KafkaTHPTopic:     sharedcfg.EnvOrDefault("KAFKA_THP_TOPIC", "wxTHP"),
		KafkaRainTopic:    sharedcfg.EnvOrDefault("KAFKA_RAIN_TOPIC", "wxRain"),
		KafkaSummaryTopic: sharedcfg.EnvOrDefault("KAFKA_SUMMARY_TOPIC", "wxTopic"),
		SummaryAt:         sharedcfg.EnvOrDefault("RELAY_SUMMARY_AT", "00:00"),
	}

	durations := []struct {
		name string
		def  string
		dst  *time.Duration
	}{
		{"STATION_TIMEOUT", "5s", &cfg.StationTimeout},
		{"STATION_CACHE_TTL", "500ms", &cfg.StationCacheTTL},
		{"RELAY_WIND_INTERVAL", "1s", &cfg.WindInterval},
		{"RELAY_THP_INTERVAL", "5s", &cfg.THPInterval},
		{"RELAY_RAIN_INTERVAL", "1m", &cfg.RainInterval},
	}
	for _, d := range durations {
		v, err := parseDuration(d.name, d.def)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	tz, err := time.LoadLocation(sharedcfg.EnvOrDefault("RELAY_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid RELAY_TIMEZONE: %w", err)
	}
	cfg.Timezone = tz

	if _, err := time.Parse("15:04", cfg.SummaryAt); err != nil {
		return nil, fmt.Errorf("invalid RELAY_SUMMARY_AT %q: want HH:MM", cfg.SummaryAt)
	}
	if cfg.StationURL == "" {
		return nil, errors.New("STATION_URL is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	for name, topic := range map[string]string{
		"KAFKA_WIND_TOPIC":    cfg.KafkaWindTopic,
		"KAFKA_THP_TOPIC":     cfg.KafkaTHPTopic,
		"KAFKA_RAIN_TOPIC":    cfg.KafkaRainTopic,
		"KAFKA_SUMMARY_TOPIC": cfg.KafkaSummaryTopic,
	} {
		if topic == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	return cfg, nil
}

func loadLogging() (Logging, error) {
	l := Logging{
		Level:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		Format: sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		File:   os.Getenv("LOG_FILE"),
	}
	var err error
	if l.MaxSizeMB, err = parseInt("LOG_MAX_SIZE_MB", 10, 1, 1024); err != nil {
		return Logging{}, err
	}
	if l.MaxBackups, err = parseInt("LOG_MAX_BACKUPS", 3, 0, 100); err != nil {
		return Logging{}, err
	}
	if l.MaxAgeDays, err = parseInt("LOG_MAX_AGE_DAYS", 28, 0, 3650); err != nil {
		return Logging{}, err
	}
	return l, nil
}

func parseInt(name string, def, lo, hi int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", name, lo, hi)
	}
	return n, nil
}

func parseDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}
