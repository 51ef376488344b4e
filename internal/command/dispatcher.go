// Package command maps single-character command flags to sensor report builders
// and serializes their output as JSON.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/couchcryptid/wx-station/internal/sensor"
)

// MaxDocumentSize bounds a serialized document, matching the station's
// transmit buffer.
const MaxDocumentSize = 384

// ErrDocumentTooLarge is returned when a serialized document exceeds MaxDocumentSize.
var ErrDocumentTooLarge = errors.New("document exceeds output buffer")

// Flag selects a sensor report.
type Flag byte

// Known flags.
const (
	FlagBattery Flag = 'b'
	FlagTHP     Flag = 't'
	FlagUV      Flag = 'u'
	FlagWind    Flag = 'w'
	FlagRain    Flag = 'r'
)

func (f Flag) String() string { return string(rune(f)) }

// Status tells a caller which path produced a response.
type Status string

const (
	StatusOK            Status = "ok"
	StatusUnimplemented Status = "unimplemented" // flag is known but its builder is a stub
	StatusUnknown       Status = "unknown"       // flag is not in the table
)

// Document is the JSON object a builder fills in.
type Document map[string]any

// Builder reads what it needs from the ADC and returns a document.
type Builder func(adc sensor.ADC) (Document, error)

// Channels assigns analog inputs to sensors.
type Channels struct {
	Battery sensor.Channel
}

type handler struct {
	build       Builder
	implemented bool
}

// Response is the result of dispatching one flag.
type Response struct {
	Flag   Flag
	Status Status
	Body   []byte
}

// Dispatcher is a flag-to-builder table bound to one ADC.
type Dispatcher struct {
	adc      sensor.ADC
	handlers map[Flag]handler
}

// NewDispatcher builds the station's command table. Only the battery report is
// implemented; temperature/humidity/pressure, UV, wind and rain are registered
// stubs that produce an empty document.
func NewDispatcher(adc sensor.ADC, ch Channels) *Dispatcher {
	return &Dispatcher{
		adc: adc,
		handlers: map[Flag]handler{
			FlagBattery: {build: BatteryBuilder(ch.Battery), implemented: true},
			FlagTHP:     {build: emptyBuilder},
			FlagUV:      {build: emptyBuilder},
			FlagWind:    {build: emptyBuilder},
			FlagRain:    {build: emptyBuilder},
		},
	}
}

// Register installs or replaces the builder for f.
func (d *Dispatcher) Register(f Flag, b Builder) {
	d.handlers[f] = handler{build: b, implemented: true}
}

// Flags returns every flag in the table in ascending order.
func (d *Dispatcher) Flags() []Flag {
	return slices.Sorted(maps.Keys(d.handlers))
}

// Dispatch runs the builder for f and serializes its document. Unknown flags
// yield "{}" with StatusUnknown rather than an error.
func (d *Dispatcher) Dispatch(f Flag) (Response, error) {
	h, ok := d.handlers[f]
	if !ok {
		return Response{Flag: f, Status: StatusUnknown, Body: []byte("{}")}, nil
	}

	doc, err := h.build(d.adc)
	if err != nil {
		return Response{}, fmt.Errorf("build %q report: %w", f, err)
	}
	body, err := Encode(doc)
	if err != nil {
		return Response{}, fmt.Errorf("encode %q report: %w", f, err)
	}

	status := StatusOK
	if !h.implemented {
		status = StatusUnimplemented
	}
	return Response{Flag: f, Status: status, Body: body}, nil
}

// Execute dispatches f and returns the serialized document.
func (d *Dispatcher) Execute(f Flag) (string, error) {
	resp, err := d.Dispatch(f)
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// Report merges the documents of every implemented builder into one station
// report. Keys from later flags overwrite earlier ones.
func (d *Dispatcher) Report() ([]byte, error) {
	merged := Document{}
	for _, f := range d.Flags() {
		h := d.handlers[f]
		if !h.implemented {
			continue
		}
		doc, err := h.build(d.adc)
		if err != nil {
			return nil, fmt.Errorf("build %q report: %w", f, err)
		}
		maps.Copy(merged, doc)
	}
	return json.Marshal(merged)
}

// Encode serializes doc into a fresh buffer of at most MaxDocumentSize bytes.
// A nil document encodes as "{}".
func Encode(doc Document) ([]byte, error) {
	if doc == nil {
		doc = Document{}
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if len(body) > MaxDocumentSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrDocumentTooLarge, len(body))
	}
	return body, nil
}

// BatteryBuilder reads one sample from ch and reports the pack voltage under
// "battery".
func BatteryBuilder(ch sensor.Channel) Builder {
	return func(adc sensor.ADC) (Document, error) {
		raw, err := adc.Read(ch)
		if err != nil {
			return nil, err
		}
		return Document{"battery": sensor.BatteryVoltage(raw)}, nil
	}
}

func emptyBuilder(sensor.ADC) (Document, error) {
	return Document{}, nil
}
