package period

import "math"

// ZeroPolicy decides what a percent change means when the previous value is
// zero. The summary and growth cards treat any growth from zero as +100%,
// while the comparative report treats it as flat; both behaviors are
// deliberate and callers pick one explicitly.
type ZeroPolicy int

const (
	// ZeroAsHundred: previous==0 and current>0 yields 100, else 0.
	ZeroAsHundred ZeroPolicy = iota
	// ZeroAsZero: previous==0 always yields 0.
	ZeroAsZero
)

// PercentChange computes the relative change from previous to current,
// rounded to one decimal place.
func PercentChange(current, previous int64, policy ZeroPolicy) float64 {
	if previous == 0 {
		if policy == ZeroAsHundred && current > 0 {
			return 100
		}
		return 0
	}
	return Round1(float64(current-previous) / float64(previous) * 100)
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
