package sensor

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// VaneDivider describes a wind vane read through a resistor divider: the vane's
// resistance at each compass point sits below a fixed pull-up.
type VaneDivider struct {
	PullUpOhms float64
	// Resistance is indexed by Direction.
	Resistance [DirectionCount]float64
}

// ExpectedSample returns the code the converter reads at direction d.
func (v VaneDivider) ExpectedSample(d Direction) Sample {
	r := v.Resistance[d]
	return Sample(math.Round(r / (r + v.PullUpOhms) * float64(MaxSample)))
}

// DeriveDirectionTable places each band boundary halfway between adjacent
// expected codes. The last band extends as far above its code as the band below
// reaches under it, so samples past the top of the divider stay unresolved.
func DeriveDirectionTable(v VaneDivider) (*DirectionTable, error) {
	if v.PullUpOhms <= 0 {
		return nil, fmt.Errorf("%w: pull-up must be positive", ErrInvalidTable)
	}
	type point struct {
		dir  Direction
		code Sample
	}
	points := make([]point, 0, DirectionCount)
	for d := range Direction(DirectionCount) {
		if v.Resistance[d] <= 0 {
			return nil, fmt.Errorf("%w: resistance for %s must be positive", ErrInvalidTable, d)
		}
		points = append(points, point{dir: d, code: v.ExpectedSample(d)})
	}
	slices.SortFunc(points, func(a, b point) int { return cmp.Compare(a.code, b.code) })

	bands := make([]Band, DirectionCount)
	for i, p := range points {
		if i+1 < len(points) {
			next := points[i+1]
			if next.code == p.code {
				return nil, fmt.Errorf("%w: %s and %s read the same code %d", ErrInvalidTable, p.dir, next.dir, p.code)
			}
			bands[i] = Band{Upper: (p.code + next.code) / 2, Direction: p.dir}
			continue
		}
		upper := 2*p.code - bands[i-1].Upper
		bands[i] = Band{Upper: min(upper, MaxSample), Direction: p.dir}
	}
	return NewDirectionTable(bands)
}
