package sensor

import "fmt"

// OversampleCount is the number of consecutive reads averaged by AverageRead.
const OversampleCount = 8

// AverageRead takes OversampleCount consecutive samples from ch and returns
// their truncated integer mean. There is no delay between reads and no outlier
// rejection. The first failing read aborts the average.
func AverageRead(adc ADC, ch Channel) (Sample, error) {
	var acc int
	for i := 0; i < OversampleCount; i++ {
		s, err := adc.Read(ch)
		if err != nil {
			return 0, fmt.Errorf("read channel %d (sample %d of %d): %w", ch, i+1, OversampleCount, err)
		}
		acc += int(s)
	}
	return Sample(acc / OversampleCount), nil
}
