// Package domain contains core business entities and types for child growth
// assessment against the WHO Child Growth Standards (0-5 years).
//
// Reference: WHO Multicentre Growth Reference Study Group (2006). WHO Child
// Growth Standards based on length/height, weight and age. Acta Paediatr Suppl.
package domain

import "strings"

// Sex is the biological sex used to select a reference table.
type Sex string

const (
	MALE   Sex = "male"
	FEMALE Sex = "female"
)

// ParseSex normalizes a client-supplied gender value. Accepts "male"/"female"
// case-insensitively; anything else is rejected as user input, not a fault.
func ParseSex(value string) (Sex, error) {
	switch Sex(strings.ToLower(strings.TrimSpace(value))) {
	case MALE:
		return MALE, nil
	case FEMALE:
		return FEMALE, nil
	default:
		return "", NewValidationError("gender", `Gender must be either "male" or "female".`, value)
	}
}

// IsValid reports whether the Sex is one of the two reference table sexes.
func (s Sex) IsValid() bool {
	return s == MALE || s == FEMALE
}

// String returns the string representation, as used in logs and responses.
func (s Sex) String() string {
	return string(s)
}

// MeasurementType identifies one of the WHO growth-standard assessment types.
type MeasurementType string

const (
	WEIGHT_FOR_AGE    MeasurementType = "weight-for-age"
	WEIGHT_FOR_HEIGHT MeasurementType = "weight-for-height"
	WEIGHT_FOR_LENGTH MeasurementType = "weight-for-length"
	LENGTH_FOR_AGE    MeasurementType = "length-for-age"
	HEIGHT_FOR_AGE    MeasurementType = "height-for-age"
	BMI_FOR_AGE       MeasurementType = "bmi-for-age"
)

// IsValid reports whether the MeasurementType is a supported assessment type.
func (m MeasurementType) IsValid() bool {
	switch m {
	case WEIGHT_FOR_AGE, WEIGHT_FOR_HEIGHT, WEIGHT_FOR_LENGTH, LENGTH_FOR_AGE, HEIGHT_FOR_AGE, BMI_FOR_AGE:
		return true
	default:
		return false
	}
}

// String returns the string representation of the measurement type.
func (m MeasurementType) String() string {
	return string(m)
}

// HeightIndexed reports whether lookups for this type are keyed by measured
// height/length rather than by age in months.
func (m MeasurementType) HeightIndexed() bool {
	return m == WEIGHT_FOR_HEIGHT || m == WEIGHT_FOR_LENGTH
}

// AgeBand splits the 0-5y standards into the under-2 (recumbent length) and
// 2-to-5 (standing height) table families.
type AgeBand string

const (
	// BAND_0_TO_2 covers children under 2 years, measured lying down.
	BAND_0_TO_2 AgeBand = "0-to-2-years"
	// BAND_2_TO_5 covers children from 2 to 5 years, measured standing.
	BAND_2_TO_5 AgeBand = "2-to-5-years"
	// BAND_0_TO_5 covers tables that span the full age range (WFA).
	BAND_0_TO_5 AgeBand = "0-to-5-years"
)

// String returns the string representation of the age band.
func (b AgeBand) String() string {
	return string(b)
}

// Severity grades the clinical concern attached to a classification.
type Severity string

const (
	SEVERITY_CRITICAL Severity = "Critical"
	SEVERITY_HIGH     Severity = "High concern"
	SEVERITY_MODERATE Severity = "Moderate concern"
	SEVERITY_LOW      Severity = "Low concern"
	SEVERITY_NONE     Severity = "No concern"
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}
