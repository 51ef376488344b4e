package domain

// Report is the station's combined sensor document.
type Report struct {
	Battery   float64          `json:"battery"`
	UV        UVReading        `json:"uv"`
	Wind      WindReading      `json:"wind"`
	THP       THPReading       `json:"thp"`
	Rain      RainReading      `json:"rain"`
	Lightning LightningReading `json:"lightning"`
}

// UVReading holds the UV sensor's A/B channels and the derived index.
type UVReading struct {
	A     float64 `json:"a"`
	B     float64 `json:"b"`
	Index float64 `json:"index"`
}

// WindReading holds instantaneous, averaged and gust wind values.
// Directions are in degrees.
type WindReading struct {
	Speed                     float64 `json:"speed"`
	Direction                 float64 `json:"direction"`
	Speed2MinuteAverage       float64 `json:"speed2MinuteAverage"`
	Direction2MinuteAverage   float64 `json:"direction2MinuteAverage"`
	GustTenMinuteMaxSpeed     float64 `json:"gustTenMinuteMaxSpeed"`
	GustTenMinuteMaxDirection float64 `json:"gustTenMinueMaxDirection"`
	MaxDailyGust              float64 `json:"maxDailyGust"`
}

// THPReading holds temperature, humidity and pressure.
type THPReading struct {
	TempC    float64 `json:"tempC"`
	TempF    float64 `json:"tempF"`
	Humidity float64 `json:"humidity"`
	Pressure float64 `json:"pressure"`
}

// RainReading holds rainfall over the last hour and since midnight.
type RainReading struct {
	Hour  float64 `json:"hour"`
	Daily float64 `json:"daily"`
}

// LightningReading reports whether a strike was detected and its distance.
type LightningReading struct {
	Strike   bool `json:"strike"`
	Distance int  `json:"distance"`
}
