package sensor

// Battery sense divider: 20k over 10k, so the pin sees a third of the pack voltage.
const (
	batteryDividerHigh = 20000.0
	batteryDividerLow  = 10000.0
	referenceVoltage   = 3.3
)

// BatteryVoltage converts a raw battery-sense sample to volts at the pack.
// No sanity check is applied to the result.
func BatteryVoltage(raw Sample) float64 {
	v := float64(raw)
	v *= (batteryDividerHigh + batteryDividerLow) / batteryDividerLow
	v *= referenceVoltage
	v /= FullScale
	return v
}
