package domain

import "fmt"

// Error codes for different failure scenarios
const (
	ErrValidation        = "VALIDATION_ERROR"
	ErrNoReferenceData   = "NO_REFERENCE_DATA"
	ErrComputation       = "COMPUTATION_ERROR"
	ErrDatasetIntegrity  = "DATASET_INTEGRITY_ERROR"
	ErrInternalServer    = "INTERNAL_SERVER_ERROR"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// ValidationError represents invalid user input: bad gender, non-positive
// measurement, or an age/height outside the assessment's supported range.
// Always surfaced as a client error, never retried.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// NoReferenceDataError indicates an exact-age lookup miss: the computed age in
// months fell on a month not covered by the reference table. A client-facing
// error, not a server fault.
type NoReferenceDataError struct {
	MeasurementType MeasurementType `json:"measurement_type"`
	Sex             Sex             `json:"sex"`
	AgeInMonths     float64         `json:"age_in_months"`
}

// Error implements the error interface
func (e *NoReferenceDataError) Error() string {
	return fmt.Sprintf("no %s reference data for sex %s at age %.2f months",
		e.MeasurementType, e.Sex, e.AgeInMonths)
}

// NewNoReferenceDataError creates a new NoReferenceDataError
func NewNoReferenceDataError(mt MeasurementType, sex Sex, ageInMonths float64) *NoReferenceDataError {
	return &NoReferenceDataError{MeasurementType: mt, Sex: sex, AgeInMonths: ageInMonths}
}

// ComputationError indicates a corrupt reference row reaching the LMS formula
// (zero S, non-positive M or measurement). A data-integrity fault on the server
// side: logged and surfaced as a 500, never as user error.
type ComputationError struct {
	Reason string `json:"reason"`
}

// Error implements the error interface
func (e *ComputationError) Error() string {
	return fmt.Sprintf("z-score computation failed: %s", e.Reason)
}

// NewComputationError creates a new ComputationError
func NewComputationError(format string, args ...interface{}) *ComputationError {
	return &ComputationError{Reason: fmt.Sprintf(format, args...)}
}
