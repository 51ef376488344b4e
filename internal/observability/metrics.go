package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StationMetrics holds the Prometheus collectors for the station process.
type StationMetrics struct {
	Commands      *prometheus.CounterVec // labels: flag, status={ok,unimplemented,unknown,error}
	ADCReadErrors prometheus.Counter
	SerialBytes   *prometheus.CounterVec // labels: direction={rx,tx}
	Reports       prometheus.Counter
}

// RelayMetrics holds the Prometheus collectors for the relay process.
type RelayMetrics struct {
	Fetches         *prometheus.CounterVec // labels: variant={current,midnight}, outcome={success,error,cached}
	FetchDuration   prometheus.Histogram
	Published       *prometheus.CounterVec // labels: kind
	PublishErrors   *prometheus.CounterVec // labels: kind
	SchedulerActive prometheus.Gauge
}

// NewStationMetrics creates and registers station metrics with the default registry.
func NewStationMetrics() *StationMetrics {
	m := newStationMetrics()
	prometheus.MustRegister(m.Commands, m.ADCReadErrors, m.SerialBytes, m.Reports)
	return m
}

// NewRelayMetrics creates and registers relay metrics with the default registry.
func NewRelayMetrics() *RelayMetrics {
	m := newRelayMetrics()
	prometheus.MustRegister(m.Fetches, m.FetchDuration, m.Published, m.PublishErrors, m.SchedulerActive)
	return m
}

// NewStationMetricsForTesting creates unregistered station metrics so tests can
// build as many as they need.
func NewStationMetricsForTesting() *StationMetrics { return newStationMetrics() }

// NewRelayMetricsForTesting creates unregistered relay metrics.
func NewRelayMetricsForTesting() *RelayMetrics { return newRelayMetrics() }

func newStationMetrics() *StationMetrics {
	return &StationMetrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wx_station",
			Name:      "commands_total",
			Help:      "Commands dispatched by flag and status.",
		}, []string{"flag", "status"}),
		ADCReadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wx_station",
			Name:      "adc_read_errors_total",
			Help:      "Failed analog channel reads.",
		}),
		SerialBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wx_station",
			Name:      "serial_bytes_total",
			Help:      "Bytes moved over the serial command link.",
		}, []string{"direction"}),
		Reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wx_station",
			Name:      "reports_served_total",
			Help:      "Combined station reports served over HTTP.",
		}),
	}
}

func newRelayMetrics() *RelayMetrics {
	return &RelayMetrics{
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wx_relay",
			Name:      "station_fetches_total",
			Help:      "Station report fetches by variant and outcome.",
		}, []string{"variant", "outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wx_relay",
			Name:      "station_fetch_duration_seconds",
			Help:      "Station report request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		Published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wx_relay",
			Name:      "messages_published_total",
			Help:      "Messages written to Kafka by kind.",
		}, []string{"kind"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wx_relay",
			Name:      "publish_errors_total",
			Help:      "Failed relay jobs by kind.",
		}, []string{"kind"}),
		SchedulerActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wx_relay",
			Name:      "scheduler_active",
			Help:      "1 while the relay scheduler runs, 0 otherwise.",
		}),
	}
}

// ObserveCommand counts one dispatched command. Pass status "error" when the
// builder failed.
func (m *StationMetrics) ObserveCommand(flag, status string) {
	m.Commands.WithLabelValues(flag, status).Inc()
}
