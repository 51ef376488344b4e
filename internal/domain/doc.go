// Package domain models the weather station report and the messages the relay
// derives from it.
//
// # Station Report
//
// The station serves one JSON document describing everything it measures:
//
//	{
//	  "battery": 4.95,
//	  "uv":        {"a": 0, "b": 0, "index": 0},
//	  "wind":      {"speed": 0, "direction": 0, "speed2MinuteAverage": 0, ...},
//	  "thp":       {"tempC": 0, "tempF": 0, "humidity": 0, "pressure": 0},
//	  "rain":      {"hour": 0, "daily": 0},
//	  "lightning": {"strike": false, "distance": 0}
//	}
//
// Sections a station does not measure are omitted and decode as zero values.
// The "/m" variant of the report is requested once a day at midnight so the
// station can roll over its daily accumulators (rain, max gust).
//
// Wire names are kept exactly as the station firmware emits them, including
// "gustTenMinueMaxDirection".
//
// # Relay Messages
//
// The relay republishes slices of the report:
//
//	wind     every second     -> WindMessage     (short keys: 2mavg, 10mgust, ...)
//	thp      every 5 seconds  -> THPReading
//	rain     every minute     -> RainReading
//	summary  daily at 00:00   -> SummaryMessage  (flat, timestamped)
//
// Every message is keyed by station ID and carries "kind" and "produced_at"
// headers so consumers can route without decoding the value.
package domain
