package domain

import "time"

// ReferenceRow is one row of a WHO reference table: an index key (age in
// months, or measured length/height in cm), the LMS parameters, and the
// precomputed SD bands used for charting. Rows are loaded once at startup and
// never mutated.
//
// JSON field names follow the WHO table exports (Month/Length/Height, L, M, S,
// SD4neg..SD4). Height-indexed tables and the 2-to-5-year tables carry bands
// only to +/-3 SD, so the outermost bands are optional.
type ReferenceRow struct {
	Month  *int     `json:"Month,omitempty"`
	Length *float64 `json:"Length,omitempty"`
	Height *float64 `json:"Height,omitempty"`

	L float64 `json:"L"`
	M float64 `json:"M"`
	S float64 `json:"S"`

	SD4neg *float64 `json:"SD4neg,omitempty"`
	SD3neg float64  `json:"SD3neg"`
	SD2neg float64  `json:"SD2neg"`
	SD1neg float64  `json:"SD1neg"`
	SD0    float64  `json:"SD0"`
	SD1    float64  `json:"SD1"`
	SD2    float64  `json:"SD2"`
	SD3    float64  `json:"SD3"`
	SD4    *float64 `json:"SD4,omitempty"`
}

// HeightOrLength returns the height/length index key for height-indexed rows.
func (r *ReferenceRow) HeightOrLength() (float64, bool) {
	if r.Height != nil {
		return *r.Height, true
	}
	if r.Length != nil {
		return *r.Length, true
	}
	return 0, false
}

// DatasetKey identifies one of the twelve reference datasets by table family,
// sex, and age band. Dataset selection is a single map lookup on this key
// rather than branch logic repeated across the assessment flows.
type DatasetKey struct {
	Type MeasurementType
	Sex  Sex
	Band AgeBand
}

// ReferenceDataset is an ordered, immutable collection of ReferenceRow scoped
// to one (measurement-type, sex, age-band) combination. Rows are sorted by
// index key with no duplicates; MinIndex/MaxIndex bound the covered range.
type ReferenceDataset struct {
	Key      DatasetKey
	Rows     []ReferenceRow
	MinIndex float64
	MaxIndex float64
}

// AssessmentRequest is the ephemeral, already-validated input to one
// assessment flow.
type AssessmentRequest struct {
	DateOfBirth time.Time
	Sex         Sex
	WeightKg    float64
	HeightCm    float64
	// AsOf is the evaluation instant; zero means time.Now.
	AsOf time.Time
}

// Interpretation is the clinical classification bundle: a pure function of
// (zScore, measurementType, ageInMonths|heightCm).
type Interpretation struct {
	Status            string   `json:"status"`
	Severity          Severity `json:"severity"`
	NutritionalStatus string   `json:"nutritionalStatus,omitempty"`
	Recommendation    string   `json:"recommendation"`
	Details           string   `json:"details"`
}

// InputEcho echoes the client's inputs back in the result envelope.
type InputEcho struct {
	Gender      string   `json:"gender"`
	Weight      *float64 `json:"weight,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	BMI         *float64 `json:"bmi,omitempty"`
	DateOfBirth string   `json:"dateOfBirth,omitempty"`
}

// ReferenceEcho echoes the matched reference row fields used for the score.
type ReferenceEcho struct {
	Month  *int     `json:"month,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Median float64  `json:"median"`
	L      float64  `json:"L"`
	S      float64  `json:"S"`
}

// Results carries the computed score and its interpretation. LHFA returns
// zScore/percentile only, so the interpretation fields are optional.
type Results struct {
	ZScore            float64  `json:"zScore"`
	Percentile        int      `json:"percentile"`
	Status            string   `json:"status,omitempty"`
	Severity          Severity `json:"severity,omitempty"`
	NutritionalStatus string   `json:"nutritionalStatus,omitempty"`
	Recommendation    string   `json:"recommendation,omitempty"`
	Details           string   `json:"details,omitempty"`
}

// ReferenceRanges echoes the matched row's SD bands for charting. The median
// band is SD0. Outer bands are present only where the table defines them.
type ReferenceRanges struct {
	SD4neg *float64 `json:"SD4neg,omitempty"`
	SD3neg float64  `json:"SD3neg"`
	SD2neg float64  `json:"SD2neg"`
	SD1neg float64  `json:"SD1neg"`
	Median float64  `json:"median"`
	SD1    float64  `json:"SD1"`
	SD2    float64  `json:"SD2"`
	SD3    float64  `json:"SD3"`
	SD4    *float64 `json:"SD4,omitempty"`
}

// AssessmentResult is the uniform result envelope shared by all four flows.
// Ephemeral: assembled per request, not persisted by the engine.
type AssessmentResult struct {
	Assessment      MeasurementType `json:"assessment"`
	Input           InputEcho       `json:"input"`
	Reference       ReferenceEcho   `json:"reference"`
	Results         Results         `json:"results"`
	ReferenceRanges ReferenceRanges `json:"referenceRanges"`
}
