// Package sensor converts raw analog readings from the station's converter into
// physical quantities: wind vane direction, battery voltage and oversampled reads.
package sensor

import (
	"errors"
	"fmt"
	"sync"
)

const (
	// MaxSample is the largest value a 12-bit converter produces.
	MaxSample Sample = 4095
	// FullScale is the number of distinct 12-bit codes.
	FullScale = 4096
)

// ErrSampleOutOfRange is returned by backends that read a code outside [0, MaxSample].
var ErrSampleOutOfRange = errors.New("sample out of 12-bit range")

// Sample is a raw analog-to-digital reading in [0, MaxSample].
type Sample int

// Channel identifies an analog input.
type Channel int

// ADC reads raw samples from analog input channels.
type ADC interface {
	Read(ch Channel) (Sample, error)
}

// CheckSample returns ErrSampleOutOfRange if s is not a valid 12-bit code.
func CheckSample(s Sample) error {
	if s < 0 || s > MaxSample {
		return fmt.Errorf("%w: %d", ErrSampleOutOfRange, s)
	}
	return nil
}

// StaticADC returns fixed samples per channel. It backs the simulated station
// and stands in for hardware in tests.
type StaticADC struct {
	mu      sync.Mutex
	samples map[Channel]Sample
	reads   map[Channel]int
}

// NewStaticADC creates a StaticADC seeded with the given per-channel samples.
// Channels without a sample read as zero.
func NewStaticADC(samples map[Channel]Sample) *StaticADC {
	a := &StaticADC{
		samples: make(map[Channel]Sample, len(samples)),
		reads:   make(map[Channel]int),
	}
	for ch, s := range samples {
		a.samples[ch] = s
	}
	return a
}

func (a *StaticADC) Read(ch Channel) (Sample, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reads[ch]++
	return a.samples[ch], nil
}

// Set replaces the sample returned for ch.
func (a *StaticADC) Set(ch Channel, s Sample) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.samples[ch] = s
}

// Reads reports how many times ch was read.
func (a *StaticADC) Reads(ch Channel) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reads[ch]
}
