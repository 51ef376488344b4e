package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/wx-station/internal/command"
	"github.com/couchcryptid/wx-station/internal/observability"
	"github.com/couchcryptid/wx-station/internal/sensor"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusHeader carries the dispatcher status of a command response.
const StatusHeader = "X-Command-Status"

// Station builds command documents and the combined report.
type Station interface {
	Dispatch(f command.Flag) (command.Response, error)
	Report() ([]byte, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// VaneFunc takes a diagnostic reading of the wind vane.
type VaneFunc func() (sensor.VaneReading, error)

// Server exposes the station's command, report and diagnostic endpoints next to
// health, readiness and metrics.
type Server struct {
	httpServer *http.Server
	station    Station
	vane       VaneFunc
	metrics    *observability.StationMetrics
	logger     *slog.Logger
}

// NewServer creates the station HTTP server.
func NewServer(addr string, station Station, ready ReadinessChecker, vane VaneFunc, metrics *observability.StationMetrics, logger *slog.Logger) *Server {
	r := mux.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		station: station,
		vane:    vane,
		metrics: metrics,
		logger:  logger,
	}

	r.HandleFunc("/", s.handleReport).Methods(http.MethodGet)
	r.HandleFunc("/m", s.handleReport).Methods(http.MethodGet)
	r.HandleFunc("/command/{flag}", s.handleCommand).Methods(http.MethodGet)
	r.HandleFunc("/diagnostics/vane", s.handleVane).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handleReady(ready)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	body, err := s.station.Report()
	if err != nil {
		s.logger.Error("build report failed", "path", r.URL.Path, "error", err)
		s.metrics.ADCReadErrors.Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.metrics.Reports.Inc()
	writeRaw(w, http.StatusOK, body)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["flag"]
	if len(raw) != 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "flag must be a single character"})
		return
	}
	f := command.Flag(raw[0])

	resp, err := s.station.Dispatch(f)
	if err != nil {
		s.logger.Error("command failed", "flag", f.String(), "error", err)
		s.metrics.ObserveCommand(f.String(), "error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.metrics.ObserveCommand(f.String(), string(resp.Status))
	w.Header().Set(StatusHeader, string(resp.Status))
	writeRaw(w, http.StatusOK, resp.Body)
}

func (s *Server) handleVane(w http.ResponseWriter, _ *http.Request) {
	reading, err := s.vane()
	if err != nil {
		s.metrics.ADCReadErrors.Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// ADCProbe reports ready when a channel of the converter can be read.
type ADCProbe struct {
	ADC     sensor.ADC
	Channel sensor.Channel
}

func (p ADCProbe) CheckReadiness(_ context.Context) error {
	_, err := p.ADC.Read(p.Channel)
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
