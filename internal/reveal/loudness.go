package reveal

// BlowThreshold is the mean byte-frequency magnitude (0-255) a frame must
// exceed to count as a blow.
const BlowThreshold = 100.0

// MeanMagnitude averages the bins. An empty slice has magnitude 0.
func MeanMagnitude(bins []byte) float64 {
	if len(bins) == 0 {
		return 0
	}
	sum := 0
	for _, b := range bins {
		sum += int(b)
	}
	return float64(sum) / float64(len(bins))
}
