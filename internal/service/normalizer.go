package service

import (
	"math"
	"time"

	"github.com/child-growth-server/internal/domain"
)

const (
	millisPerDay = 86_400_000

	// DaysPerMonth is the average month length used for every age-indexed
	// lookup. The reference tables are indexed by whole months, so this
	// constant must be applied consistently for reproducible results.
	DaysPerMonth = 30.4375

	// DaysPerYear converts age in days to age in years for the flow age gates.
	DaysPerYear = 365.25
)

// AgeInDays returns the completed days between birthDate and asOfDate: the
// floor of the millisecond difference divided by one day.
func AgeInDays(birthDate, asOfDate time.Time) (int, error) {
	if asOfDate.Before(birthDate) {
		return 0, domain.NewValidationError("dob",
			"Date of birth must not be in the future.", birthDate.Format(time.RFC3339))
	}
	return int(asOfDate.Sub(birthDate).Milliseconds() / millisPerDay), nil
}

// AgeInMonths converts an age in days to fractional months.
func AgeInMonths(ageInDays int) float64 {
	return float64(ageInDays) / DaysPerMonth
}

// AgeInYears converts an age in days to fractional years.
func AgeInYears(ageInDays int) float64 {
	return float64(ageInDays) / DaysPerYear
}

// ValidateMeasurement enforces the validation contract shared by every
// assessment flow: a measurement must be a finite number greater than zero.
func ValidateMeasurement(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return domain.NewValidationError(field,
			capitalize(field)+" must be a positive number.", value)
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
