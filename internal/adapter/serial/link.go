// Package serial answers single-byte command flags arriving on a serial line.
package serial

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/wx-station/internal/command"
	"github.com/couchcryptid/wx-station/internal/observability"
	goserial "github.com/tarm/goserial"
)

// Dispatcher turns a flag into a serialized document.
type Dispatcher interface {
	Dispatch(f command.Flag) (command.Response, error)
}

// Link reads flags from rw and writes one newline-terminated JSON document back
// for each of them.
type Link struct {
	rw         io.ReadWriter
	dispatcher Dispatcher
	logger     *slog.Logger
	metrics    *observability.StationMetrics
}

// Open opens a serial device at the given baud rate. The returned port may be
// closed more than once; only the first Close reaches the device.
func Open(device string, baud int) (io.ReadWriteCloser, error) {
	dev, err := goserial.OpenPort(&goserial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return &port{ReadWriteCloser: dev}, nil
}

type port struct {
	io.ReadWriteCloser
	once sync.Once
	err  error
}

func (p *port) Close() error {
	p.once.Do(func() { p.err = p.ReadWriteCloser.Close() })
	return p.err
}

// NewLink creates a Link over rw.
func NewLink(rw io.ReadWriter, d Dispatcher, logger *slog.Logger, metrics *observability.StationMetrics) *Link {
	return &Link{rw: rw, dispatcher: d, logger: logger, metrics: metrics}
}

// Serve answers commands until ctx is cancelled or the line reaches EOF. If rw
// is also an io.Closer it is closed on cancellation to unblock the pending read.
func (l *Link) Serve(ctx context.Context) error {
	if c, ok := l.rw.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
	}

	l.logger.Info("serial link started")
	r := bufio.NewReader(l.rw)
	for {
		b, err := r.ReadByte()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				l.logger.Info("serial link stopped")
				return nil
			}
			return fmt.Errorf("read serial: %w", err)
		}
		l.metrics.SerialBytes.WithLabelValues("rx").Inc()

		if isFiller(b) {
			continue
		}
		if err := l.answer(command.Flag(b)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (l *Link) answer(f command.Flag) error {
	body := []byte("{}")
	resp, err := l.dispatcher.Dispatch(f)
	if err != nil {
		l.logger.Error("command failed", "flag", f.String(), "error", err)
		l.metrics.ObserveCommand(f.String(), "error")
	} else {
		l.logger.Debug("command dispatched", "flag", f.String(), "status", resp.Status)
		l.metrics.ObserveCommand(f.String(), string(resp.Status))
		body = resp.Body
	}

	out := append(body, '\n')
	n, err := l.rw.Write(out)
	l.metrics.SerialBytes.WithLabelValues("tx").Add(float64(n))
	if err != nil {
		return fmt.Errorf("write serial: %w", err)
	}
	return nil
}

func isFiller(b byte) bool {
	return b == '\r' || b == '\n' || b == ' ' || b == '\t'
}
