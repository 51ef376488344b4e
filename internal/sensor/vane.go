package sensor

// VaneReading is a diagnostic snapshot of the wind vane channel, used when
// recalibrating the direction table.
type VaneReading struct {
	Sample    Sample    `json:"sample"`
	Direction Direction `json:"direction"`
	Compass   string    `json:"compass"`
	Resolved  bool      `json:"resolved"`
	Degrees   *float64  `json:"degrees,omitempty"`
}

// ReadVane takes an averaged read of ch and resolves it. Degrees is omitted
// when the sample falls outside every band.
func (t *DirectionTable) ReadVane(adc ADC, ch Channel) (VaneReading, error) {
	s, d, err := t.readSample(adc, ch)
	if err != nil {
		return VaneReading{}, err
	}
	r := VaneReading{
		Sample:    s,
		Direction: d,
		Compass:   d.String(),
		Resolved:  d.Resolved(),
	}
	if r.Resolved {
		deg := d.Degrees()
		r.Degrees = &deg
	}
	return r, nil
}
