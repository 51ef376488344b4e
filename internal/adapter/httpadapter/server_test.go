package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/wx-station/internal/adapter/httpadapter"
	"github.com/couchcryptid/wx-station/internal/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct{ err error }

func (c stubChecker) CheckReadiness(context.Context) error { return c.err }

type stubStatus map[string]relay.JobStatus

func (s stubStatus) Status() map[string]relay.JobStatus { return s }

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Healthz(t *testing.T) {
	srv := httpadapter.NewServer(":0", stubChecker{}, stubStatus{}, slog.Default())
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
}

func TestServer_Readyz(t *testing.T) {
	ready := httpadapter.NewServer(":0", stubChecker{}, stubStatus{}, slog.Default())
	assert.Equal(t, http.StatusOK, get(t, ready, "/readyz").Code)

	notReady := httpadapter.NewServer(":0", stubChecker{err: errors.New("nothing published")}, stubStatus{}, slog.Default())
	assert.Equal(t, http.StatusServiceUnavailable, get(t, notReady, "/readyz").Code)
}

func TestServer_Status(t *testing.T) {
	last := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	status := stubStatus{
		"wind": {Published: 42, LastSuccess: last},
		"rain": {Failures: 1, LastError: "fetch current report: timeout"},
	}
	srv := httpadapter.NewServer(":0", stubChecker{}, status, slog.Default())

	rec := get(t, srv, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]relay.JobStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 42, got["wind"].Published)
	assert.True(t, last.Equal(got["wind"].LastSuccess))
	assert.Equal(t, "fetch current report: timeout", got["rain"].LastError)
}

func TestServer_Metrics(t *testing.T) {
	srv := httpadapter.NewServer(":0", stubChecker{}, stubStatus{}, slog.Default())
	assert.Equal(t, http.StatusOK, get(t, srv, "/metrics").Code)
}
