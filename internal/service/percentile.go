package service

import "math"

// Normal-CDF rational approximation constants, Abramowitz & Stegun 26.2.17
// (the Zelen & Severo handbook formula). Absolute error < 7.5e-8, which is far
// inside the integer-percentile rounding used here.
const (
	cdfP  = 0.2316419
	cdfB1 = 0.319381530
	cdfB2 = -0.356563782
	cdfB3 = 1.781477937
	cdfB4 = -1.821255978
	cdfB5 = 1.330274429
)

// normalCDF approximates the standard normal cumulative distribution.
func normalCDF(z float64) float64 {
	if z < 0 {
		return 1 - normalCDF(-z)
	}
	t := 1 / (1 + cdfP*z)
	poly := t * (cdfB1 + t*(cdfB2+t*(cdfB3+t*(cdfB4+t*cdfB5))))
	density := math.Exp(-z*z/2) / math.Sqrt(2*math.Pi)
	return 1 - density*poly
}

// PercentileForAge converts a z-score to an integer percentile for the
// age-indexed paths (WFA, LHFA, BFA). Unbounded-domain formula; rounding to
// the nearest integer naturally pins extreme scores to 0 or 100.
func PercentileForAge(z float64) int {
	return clampPercentile(int(math.Round(normalCDF(z) * 100)))
}

// PercentileForHeight converts a z-score to an integer percentile for the
// weight-for-height/length path, with the explicit short-circuit at the
// clamped extremes: z <= -8 is 0, z >= 8 is 100.
func PercentileForHeight(z float64) int {
	if z <= -zScoreClamp {
		return 0
	}
	if z >= zScoreClamp {
		return 100
	}
	return clampPercentile(int(math.Round(normalCDF(z) * 100)))
}

func clampPercentile(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
