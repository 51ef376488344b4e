// Package iio reads analog channels exposed by the Linux industrial I/O
// subsystem under /sys/bus/iio/devices.
package iio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/wx-station/internal/sensor"
)

// ADC implements sensor.ADC on top of an IIO device directory. Each read opens
// in_voltage<N>_raw, which triggers a one-shot conversion in the driver.
type ADC struct {
	dir   string
	shift uint
}

// NewADC creates an ADC for the device directory dir. Converters wider than 12
// bits are scaled down so samples stay in [0, sensor.MaxSample].
func NewADC(dir string, resolutionBits int) (*ADC, error) {
	if resolutionBits < 12 || resolutionBits > 16 {
		return nil, fmt.Errorf("unsupported resolution %d bits", resolutionBits)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open iio device: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open iio device: %s is not a directory", dir)
	}
	return &ADC{dir: dir, shift: uint(resolutionBits - 12)}, nil
}

// Read returns the current raw sample of ch.
func (a *ADC) Read(ch sensor.Channel) (sensor.Sample, error) {
	path := a.channelPath(ch)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	s := sensor.Sample(n >> a.shift)
	if err := sensor.CheckSample(s); err != nil {
		return 0, fmt.Errorf("channel %d: %w", ch, err)
	}
	return s, nil
}

func (a *ADC) channelPath(ch sensor.Channel) string {
	return filepath.Join(a.dir, fmt.Sprintf("in_voltage%d_raw", ch))
}
