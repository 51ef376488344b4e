package serial

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/wx-station/internal/command"
	"github.com/couchcryptid/wx-station/internal/observability"
	"github.com/couchcryptid/wx-station/internal/sensor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLine feeds scripted input and records everything written back.
type fakeLine struct {
	in  io.Reader
	out bytes.Buffer
}

func (f *fakeLine) Read(p []byte) (int, error)  { return f.in.Read(p) }
func (f *fakeLine) Write(p []byte) (int, error) { return f.out.Write(p) }

type brokenDispatcher struct{}

func (brokenDispatcher) Dispatch(command.Flag) (command.Response, error) {
	return command.Response{}, errors.New("adc offline")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDispatcher() *command.Dispatcher {
	adc := sensor.NewStaticADC(map[sensor.Channel]sensor.Sample{0: 2048})
	return command.NewDispatcher(adc, command.Channels{Battery: 0})
}

func TestLink_Serve_AnswersEachFlag(t *testing.T) {
	line := &fakeLine{in: strings.NewReader("b\r\nx w")}
	metrics := observability.NewStationMetricsForTesting()

	err := NewLink(line, newDispatcher(), discardLogger(), metrics).Serve(context.Background())
	require.NoError(t, err)

	replies := strings.Split(strings.TrimSuffix(line.out.String(), "\n"), "\n")
	require.Len(t, replies, 3)

	var battery map[string]float64
	require.NoError(t, json.Unmarshal([]byte(replies[0]), &battery))
	assert.InDelta(t, 4.95, battery["battery"], 1e-9)
	assert.Equal(t, "{}", replies[1])
	assert.Equal(t, "{}", replies[2])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Commands.WithLabelValues("b", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Commands.WithLabelValues("x", "unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Commands.WithLabelValues("w", "unimplemented")))
	assert.Equal(t, 6.0, testutil.ToFloat64(metrics.SerialBytes.WithLabelValues("rx")))
	assert.Equal(t, float64(line.out.Len()), testutil.ToFloat64(metrics.SerialBytes.WithLabelValues("tx")))
}

func TestLink_Serve_DispatchErrorRepliesEmpty(t *testing.T) {
	line := &fakeLine{in: strings.NewReader("b")}
	metrics := observability.NewStationMetricsForTesting()

	err := NewLink(line, brokenDispatcher{}, discardLogger(), metrics).Serve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "{}\n", line.out.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Commands.WithLabelValues("b", "error")))
}

// blockingPort blocks reads until closed, like an idle serial device.
type blockingPort struct {
	once   sync.Once
	closed chan struct{}
}

func (p *blockingPort) Read([]byte) (int, error) {
	<-p.closed
	return 0, errors.New("port closed")
}

func (p *blockingPort) Write(b []byte) (int, error) { return len(b), nil }

func (p *blockingPort) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func TestLink_Serve_StopsOnCancel(t *testing.T) {
	port := &blockingPort{closed: make(chan struct{})}
	link := NewLink(port, newDispatcher(), discardLogger(), observability.NewStationMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- link.Serve(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestLink_Serve_ReadError(t *testing.T) {
	port := &blockingPort{closed: make(chan struct{})}
	require.NoError(t, port.Close())

	err := NewLink(port, newDispatcher(), discardLogger(), observability.NewStationMetricsForTesting()).Serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read serial")
}

func TestOpen_MissingDevice(t *testing.T) {
	_, err := Open("/dev/does-not-exist-wx", 9600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open serial port")
}

type countingCloser struct {
	io.ReadWriter
	closes int
}

func (c *countingCloser) Close() error {
	c.closes++
	if c.closes > 1 {
		return errors.New("file already closed")
	}
	return nil
}

func TestPort_CloseAfterServeCancel(t *testing.T) {
	dev := &countingCloser{ReadWriter: &fakeLine{in: strings.NewReader("")}}
	p := &port{ReadWriteCloser: dev}
	link := NewLink(p, newDispatcher(), discardLogger(), observability.NewStationMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, link.Serve(ctx))

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, dev.closes)
}
