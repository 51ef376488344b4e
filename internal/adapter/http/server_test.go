package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/wx-station/internal/adapter/http"
	"github.com/couchcryptid/wx-station/internal/command"
	"github.com/couchcryptid/wx-station/internal/observability"
	"github.com/couchcryptid/wx-station/internal/sensor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	batteryChannel sensor.Channel = 0
	vaneChannel    sensor.Channel = 1
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type failingADC struct{}

func (failingADC) Read(sensor.Channel) (sensor.Sample, error) {
	return 0, errors.New("converter offline")
}

type fixture struct {
	srv     *httpadapter.Server
	metrics *observability.StationMetrics
}

func newFixture(adc sensor.ADC, readyErr error) fixture {
	metrics := observability.NewStationMetricsForTesting()
	d := command.NewDispatcher(adc, command.Channels{Battery: batteryChannel})
	vane := func() (sensor.VaneReading, error) {
		return sensor.DefaultDirectionTable().ReadVane(adc, vaneChannel)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return fixture{
		srv:     httpadapter.NewServer(":0", d, &mockReadiness{err: readyErr}, vane, metrics, logger),
		metrics: metrics,
	}
}

func staticADC() *sensor.StaticADC {
	return sensor.NewStaticADC(map[sensor.Channel]sensor.Sample{batteryChannel: 2048, vaneChannel: 100})
}

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestCommand_Battery(t *testing.T) {
	f := newFixture(staticADC(), nil)

	rec := get(t, f.srv, "/command/b")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", rec.Header().Get(httpadapter.StatusHeader))

	var body map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 4.95, body["battery"], 1e-9)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Commands.WithLabelValues("b", "ok")))
}

func TestCommand_StubAndUnknown(t *testing.T) {
	f := newFixture(staticADC(), nil)

	rec := get(t, f.srv, "/command/t")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unimplemented", rec.Header().Get(httpadapter.StatusHeader))
	assert.Equal(t, "{}", rec.Body.String())

	rec = get(t, f.srv, "/command/q")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unknown", rec.Header().Get(httpadapter.StatusHeader))
	assert.Equal(t, "{}", rec.Body.String())
}

func TestCommand_RejectsMultiCharacterFlag(t *testing.T) {
	f := newFixture(staticADC(), nil)

	rec := get(t, f.srv, "/command/bb")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommand_ReadError(t *testing.T) {
	f := newFixture(failingADC{}, nil)

	rec := get(t, f.srv, "/command/b")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "converter offline")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Commands.WithLabelValues("b", "error")))
}

func TestReport_CurrentAndMidnight(t *testing.T) {
	f := newFixture(staticADC(), nil)

	for _, path := range []string{"/", "/m"} {
		rec := get(t, f.srv, path)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.InDelta(t, 4.95, body["battery"], 1e-9, path)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Reports))
}

func TestReport_ReadError(t *testing.T) {
	f := newFixture(failingADC{}, nil)

	rec := get(t, f.srv, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ADCReadErrors))
}

func TestVaneDiagnostics(t *testing.T) {
	f := newFixture(staticADC(), nil)

	rec := get(t, f.srv, "/diagnostics/vane")
	require.Equal(t, http.StatusOK, rec.Code)

	var reading sensor.VaneReading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reading))
	assert.Equal(t, sensor.Sample(100), reading.Sample)
	assert.Equal(t, "ESE", reading.Compass)
	require.NotNil(t, reading.Degrees)
	assert.Equal(t, 112.5, *reading.Degrees)
}

func TestHealthzReturns200(t *testing.T) {
	f := newFixture(staticADC(), nil)
	rec := get(t, f.srv, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	f := newFixture(staticADC(), fmt.Errorf("adc not answering"))
	rec := get(t, f.srv, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "adc not answering", body["error"])
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(staticADC(), nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/command/b", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(staticADC(), nil)
	rec := get(t, f.srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestADCProbe(t *testing.T) {
	ok := httpadapter.ADCProbe{ADC: staticADC(), Channel: batteryChannel}
	require.NoError(t, ok.CheckReadiness(context.Background()))

	bad := httpadapter.ADCProbe{ADC: failingADC{}, Channel: batteryChannel}
	require.Error(t, bad.CheckReadiness(context.Background()))
}
