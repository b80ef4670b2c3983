package service

import (
	"math"

	"github.com/child-growth-server/internal/domain"
)

// zScoreClamp bounds weight-for-height/length z-scores to the WHO practical
// convention for extreme values.
const zScoreClamp = 8.0

// ZScore applies the LMS (Box-Cox power) formula to standardize a measurement
// against its reference L, M, S triplet:
//
//	z = L != 0 ? ((measurement/M)^L - 1) / (L*S)
//	           : ln(measurement/M) / S
//
// A zero S or non-positive M or measurement reaching this point indicates a
// corrupt reference row, not user error, and is returned as a ComputationError.
func ZScore(measurement, l, m, s float64) (float64, error) {
	if s == 0 {
		return 0, domain.NewComputationError("reference row has zero S (coefficient of variation)")
	}
	if m <= 0 {
		return 0, domain.NewComputationError("reference row has non-positive median %v", m)
	}
	if measurement <= 0 {
		return 0, domain.NewComputationError("non-positive measurement %v reached the LMS formula", measurement)
	}

	if l != 0 {
		return (math.Pow(measurement/m, l) - 1) / (l * s), nil
	}
	return math.Log(measurement/m) / s, nil
}

// ClampZScore bounds a weight-for-height/length z-score to [-8, +8] before it
// is used for percentile conversion or display. The unclamped value is not
// retained.
func ClampZScore(z float64) float64 {
	if z > zScoreClamp {
		return zScoreClamp
	}
	if z < -zScoreClamp {
		return -zScoreClamp
	}
	return z
}

// RoundZScore rounds a z-score to two decimals for display.
func RoundZScore(z float64) float64 {
	return math.Round(z*100) / 100
}
