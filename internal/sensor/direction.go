package sensor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// DirectionCount is the number of compass points a wind vane resolves.
const DirectionCount = 16

// Unresolved is the direction returned when a sample lies above every band.
const Unresolved Direction = DirectionCount

// degreesPerDirection is the spacing between adjacent compass points.
const degreesPerDirection = 22.5

// ErrInvalidTable is returned when a calibration table cannot resolve directions
// unambiguously.
var ErrInvalidTable = errors.New("invalid direction table")

var compassPoints = [DirectionCount]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Direction is a compass index in [0, 15], or Unresolved.
type Direction uint8

// Resolved reports whether d names a compass point.
func (d Direction) Resolved() bool { return d < Unresolved }

// Degrees converts d to a heading. No bounds checking is done: Unresolved
// yields 360, which callers must not treat as a heading.
func (d Direction) Degrees() float64 { return Degrees(d) }

func (d Direction) String() string {
	if !d.Resolved() {
		return "unresolved"
	}
	return compassPoints[d]
}

// Degrees returns index × 22.5.
func Degrees(d Direction) float64 {
	return float64(d) * degreesPerDirection
}

// Band maps every sample up to and including Upper to Direction.
type Band struct {
	Upper     Sample    `json:"upper"`
	Direction Direction `json:"direction"`
}

// DirectionTable resolves samples against ascending, non-overlapping bands.
type DirectionTable struct {
	bands []Band
}

// defaultBands are hand-calibrated against the vane's resistor-divider output on
// the station's 12-bit converter. They are not evenly spaced in ADC units.
var defaultBands = []Band{
	{Upper: 106, Direction: 5},   // ESE
	{Upper: 137, Direction: 3},   // ENE
	{Upper: 163, Direction: 4},   // E
	{Upper: 239, Direction: 7},   // SSE
	{Upper: 338, Direction: 6},   // SE
	{Upper: 460, Direction: 9},   // SSW
	{Upper: 571, Direction: 8},   // S
	{Upper: 889, Direction: 1},   // NNE
	{Upper: 1038, Direction: 2},  // NE
	{Upper: 1507, Direction: 11}, // WSW
	{Upper: 1648, Direction: 10}, // SW
	{Upper: 2032, Direction: 15}, // NNW
	{Upper: 2417, Direction: 0},  // N
	{Upper: 2681, Direction: 13}, // WNW
	{Upper: 3111, Direction: 14}, // NW
	{Upper: 3842, Direction: 12}, // W
}

var defaultTable = mustDirectionTable(defaultBands)

// DefaultDirectionTable returns the factory calibration.
func DefaultDirectionTable() *DirectionTable { return defaultTable }

// NewDirectionTable validates bands and builds a table from them. Upper bounds
// must be strictly ascending and every compass point must appear exactly once.
func NewDirectionTable(bands []Band) (*DirectionTable, error) {
	if len(bands) != DirectionCount {
		return nil, fmt.Errorf("%w: want %d bands, got %d", ErrInvalidTable, DirectionCount, len(bands))
	}
	var seen [DirectionCount]bool
	for i, b := range bands {
		if !b.Direction.Resolved() {
			return nil, fmt.Errorf("%w: band %d has direction %d", ErrInvalidTable, i, b.Direction)
		}
		if seen[b.Direction] {
			return nil, fmt.Errorf("%w: direction %s appears twice", ErrInvalidTable, b.Direction)
		}
		seen[b.Direction] = true
		if err := CheckSample(b.Upper); err != nil {
			return nil, fmt.Errorf("%w: band %d: %w", ErrInvalidTable, i, err)
		}
		if i > 0 && b.Upper <= bands[i-1].Upper {
			return nil, fmt.Errorf("%w: band %d upper %d not above %d", ErrInvalidTable, i, b.Upper, bands[i-1].Upper)
		}
	}
	return &DirectionTable{bands: append([]Band(nil), bands...)}, nil
}

func mustDirectionTable(bands []Band) *DirectionTable {
	t, err := NewDirectionTable(bands)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadDirectionTable decodes a JSON array of bands and validates it.
func LoadDirectionTable(r io.Reader) (*DirectionTable, error) {
	var bands []Band
	if err := json.NewDecoder(r).Decode(&bands); err != nil {
		return nil, fmt.Errorf("decode direction table: %w", err)
	}
	return NewDirectionTable(bands)
}

// Bands returns a copy of the table's bands in ascending order.
func (t *DirectionTable) Bands() []Band {
	return append([]Band(nil), t.bands...)
}

// Resolve returns the direction of the first band whose upper bound is at or
// above s, or Unresolved if s exceeds the highest bound.
func (t *DirectionTable) Resolve(s Sample) Direction {
	i := sort.Search(len(t.bands), func(i int) bool { return t.bands[i].Upper >= s })
	if i == len(t.bands) {
		return Unresolved
	}
	return t.bands[i].Direction
}

// ResolveDirection resolves s against the factory calibration. It is the
// package-level form of the conversion for callers that hold a raw sample.
func ResolveDirection(s Sample) Direction {
	return defaultTable.Resolve(s)
}

// ReadDirection takes an averaged read of ch and resolves it against t. ReadVane
// builds its diagnostic snapshot on the same read.
func (t *DirectionTable) ReadDirection(adc ADC, ch Channel) (Direction, error) {
	_, d, err := t.readSample(adc, ch)
	return d, err
}

func (t *DirectionTable) readSample(adc ADC, ch Channel) (Sample, Direction, error) {
	s, err := AverageRead(adc, ch)
	if err != nil {
		return 0, Unresolved, err
	}
	return s, t.Resolve(s), nil
}
