package segment

// GateTokens computes the average recognition confidence across a region's
// tokens and reports whether the region falls below the quality threshold.
// Unknown and zero confidences are excluded from the denominator; a region
// with no confident tokens at all is low quality, not an error.
func GateTokens(tokens []TextFragment, threshold float64) (avg float64, low bool) {
	var sum float64
	n := 0
	for _, t := range tokens {
		if t.Confidence > 0 {
			sum += t.Confidence
			n++
		}
	}
	if n == 0 {
		return 0, true
	}
	avg = sum / float64(n)
	return avg, avg < threshold
}
