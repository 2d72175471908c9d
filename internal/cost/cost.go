// Package cost estimates a usage charge when the caller did not report one.
package cost

// RatePerToken is the flat fallback rate ($0.02 per 1K tokens) applied when
// an event arrives with token counts but no cost.
const RatePerToken = 0.00002

// Estimate returns the linear cost estimate for the given token count.
func Estimate(totalTokens int64) float64 {
	return float64(totalTokens) * RatePerToken
}
