package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds, sent in the "kind" header.
const (
	KindWind    = "wind"
	KindTHP     = "thp"
	KindRain    = "rain"
	KindSummary = "summary"
)

// WindMessage is the compact wind payload published every second.
type WindMessage struct {
	Speed               float64 `json:"speed"`
	Direction           float64 `json:"direction"`
	Speed2MinAvg        float64 `json:"2mavg"`
	Direction2MinAvg    float64 `json:"2mdavg"`
	GustTenMinSpeed     float64 `json:"10mgust"`
	GustTenMinDirection float64 `json:"10mgdir"`
	MaxDailyGust        float64 `json:"dailyGustMax"`
}

// SummaryMessage is the flat daily snapshot of every sensor.
type SummaryMessage struct {
	Timestamp     int64   `json:"timestamp"`
	TempC         float64 `json:"tempC"`
	TempF         float64 `json:"tempF"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection float64 `json:"windDirection"`
	WindSpeed2M   float64 `json:"2mavg"`
	WindDir2M     float64 `json:"2mdavg"`
	Gust10M       float64 `json:"10mgust"`
	Gust10MDir    float64 `json:"10mgdir"`
	MaxDailyGust  float64 `json:"maxDailyGust"`
	Rain1Hour     float64 `json:"rain1Hour"`
	Rain24Hour    float64 `json:"rain24H"`
	UVIndex       float64 `json:"uvIndex"`
	Lightning     int     `json:"lightning"`
}

// Message is a serialized payload bound for a topic.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// NewWindMessage extracts the wind slice of a report.
func NewWindMessage(r Report) WindMessage {
	return WindMessage{
		Speed:               r.Wind.Speed,
		Direction:           r.Wind.Direction,
		Speed2MinAvg:        r.Wind.Speed2MinuteAverage,
		Direction2MinAvg:    r.Wind.Direction2MinuteAverage,
		GustTenMinSpeed:     r.Wind.GustTenMinuteMaxSpeed,
		GustTenMinDirection: r.Wind.GustTenMinuteMaxDirection,
		MaxDailyGust:        r.Wind.MaxDailyGust,
	}
}

// NewSummaryMessage flattens a report into a daily snapshot stamped with the
// package clock.
func NewSummaryMessage(r Report) SummaryMessage {
	return SummaryMessage{
		Timestamp:     clock.Now().Unix(),
		TempC:         r.THP.TempC,
		TempF:         r.THP.TempF,
		Humidity:      r.THP.Humidity,
		Pressure:      r.THP.Pressure,
		WindSpeed:     r.Wind.Speed,
		WindDirection: r.Wind.Direction,
		WindSpeed2M:   r.Wind.Speed2MinuteAverage,
		WindDir2M:     r.Wind.Direction2MinuteAverage,
		Gust10M:       r.Wind.GustTenMinuteMaxSpeed,
		Gust10MDir:    r.Wind.GustTenMinuteMaxDirection,
		MaxDailyGust:  r.Wind.MaxDailyGust,
		Rain1Hour:     r.Rain.Hour,
		Rain24Hour:    r.Rain.Daily,
		UVIndex:       r.UV.Index,
		Lightning:     r.Lightning.Distance,
	}
}

// SerializeMessage marshals payload into a Message keyed by stationID.
func SerializeMessage(topic, stationID, kind string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("serialize %s message: %w", kind, err)
	}
	return Message{
		Topic: topic,
		Key:   []byte(stationID),
		Value: data,
		Headers: map[string]string{
			"kind":        kind,
			"produced_at": clock.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}
