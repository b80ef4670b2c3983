package service

import (
	"math"

	"github.com/child-growth-server/internal/domain"
)

// zBand is one row of an ordered classification table: the z-score upper bound
// of the band and whether the bound itself belongs to it. Bands are evaluated
// top to bottom, first match wins; the final band is unbounded, so
// classification is total over the real line and never fails for a finite
// z-score.
type zBand struct {
	upper     float64
	inclusive bool
	interp    domain.Interpretation
}

func classify(bands []zBand, z float64) domain.Interpretation {
	for _, b := range bands {
		if z < b.upper || (b.inclusive && z == b.upper) {
			return b.interp
		}
	}
	return bands[len(bands)-1].interp
}

// weightForAgeBands holds the WHO-derived weight-for-age thresholds.
var weightForAgeBands = []zBand{
	{-3, false, domain.Interpretation{
		Status:         "Severely underweight",
		Severity:       domain.SEVERITY_CRITICAL,
		Recommendation: "Urgent medical attention required. Consult a pediatrician immediately.",
		Details:        "Weight is significantly below the healthy range for this age.",
	}},
	{-2, false, domain.Interpretation{
		Status:         "Underweight",
		Severity:       domain.SEVERITY_MODERATE,
		Recommendation: "Nutritional assessment and feeding support recommended.",
		Details:        "Weight is below the healthy range for this age.",
	}},
	{-1, false, domain.Interpretation{
		Status:         "Mild underweight",
		Severity:       domain.SEVERITY_LOW,
		Recommendation: "Monitor weight and feeding practices closely.",
		Details:        "Weight is slightly below the healthy range for this age.",
	}},
	{1, true, domain.Interpretation{
		Status:         "Normal weight",
		Severity:       domain.SEVERITY_NONE,
		Recommendation: "Continue current feeding practices with regular growth monitoring.",
		Details:        "Weight is within the healthy range for this age.",
	}},
	{2, true, domain.Interpretation{
		Status:         "Possible risk of overweight",
		Severity:       domain.SEVERITY_LOW,
		Recommendation: "Monitor diet and encourage active play.",
		Details:        "Weight is slightly above the healthy range for this age.",
	}},
	{3, true, domain.Interpretation{
		Status:         "Overweight",
		Severity:       domain.SEVERITY_MODERATE,
		Recommendation: "Review feeding practices and consult a healthcare provider.",
		Details:        "Weight is above the healthy range for this age.",
	}},
	{math.Inf(1), true, domain.Interpretation{
		Status:         "Severely overweight",
		Severity:       domain.SEVERITY_HIGH,
		Recommendation: "Medical evaluation and nutritional counseling recommended.",
		Details:        "Weight is significantly above the healthy range for this age.",
	}},
}

// Age-banded feeding notes appended to weight-for-age recommendations.
const (
	breastfeedingNote = " Exclusive breastfeeding is recommended for infants under 6 months of age."
	complementaryNote = " Continue breastfeeding alongside appropriate complementary foods."
)

// InterpretWeightForAge classifies a weight-for-age z-score and augments the
// recommendation with the age-appropriate feeding note. The note is appended,
// never replacing the base recommendation.
func InterpretWeightForAge(z, ageInMonths float64) domain.Interpretation {
	interp := classify(weightForAgeBands, z)

	switch {
	case ageInMonths < 6:
		interp.Recommendation += breastfeedingNote
	case ageInMonths <= 24:
		interp.Recommendation += complementaryNote
	}

	return interp
}

// weightForHeightBands holds the shared weight-for-height/length thresholds
// (WHO acute malnutrition cutoffs).
var weightForHeightBands = []zBand{
	{-3, false, domain.Interpretation{
		Status:            "Severe wasting",
		Severity:          domain.SEVERITY_CRITICAL,
		NutritionalStatus: "Severe acute malnutrition",
		Recommendation:    "Urgent referral for therapeutic feeding and medical care.",
		Details:           "Weight is significantly below the expected range for this height.",
	}},
	{-2, false, domain.Interpretation{
		Status:            "Moderate wasting",
		Severity:          domain.SEVERITY_MODERATE,
		NutritionalStatus: "Moderate acute malnutrition",
		Recommendation:    "Supplementary feeding and close follow-up recommended.",
		Details:           "Weight is below the expected range for this height.",
	}},
	{-1, false, domain.Interpretation{
		Status:            "Mild wasting",
		Severity:          domain.SEVERITY_LOW,
		NutritionalStatus: "At risk of malnutrition",
		Recommendation:    "Monitor feeding and growth closely.",
		Details:           "Weight is slightly below the expected range for this height.",
	}},
	{1, true, domain.Interpretation{
		Status:            "Normal",
		Severity:          domain.SEVERITY_NONE,
		NutritionalStatus: "Normal nutritional status",
		Recommendation:    "Continue a balanced diet with regular growth monitoring.",
		Details:           "Weight is within the expected range for this height.",
	}},
	{2, true, domain.Interpretation{
		Status:            "Possible risk of overweight",
		Severity:          domain.SEVERITY_LOW,
		NutritionalStatus: "At risk of overnutrition",
		Recommendation:    "Monitor diet and encourage physical activity.",
		Details:           "Weight is slightly above the expected range for this height.",
	}},
	{3, true, domain.Interpretation{
		Status:            "Overweight",
		Severity:          domain.SEVERITY_MODERATE,
		NutritionalStatus: "Overweight",
		Recommendation:    "Review diet with a healthcare provider.",
		Details:           "Weight is above the expected range for this height.",
	}},
	{math.Inf(1), true, domain.Interpretation{
		Status:            "Obesity",
		Severity:          domain.SEVERITY_HIGH,
		NutritionalStatus: "Obesity",
		Recommendation:    "Medical evaluation and nutritional counseling recommended.",
		Details:           "Weight is significantly above the expected range for this height.",
	}},
}

const growthMonitoringNote = " For children under 2 years, frequent growth monitoring is especially important."

// Length-banded feeding notes appended to weight-for-length recommendations.
const (
	youngInfantFeedingNote = " Feed on demand with frequent breastfeeding for young infants."
	infantFeedingNote      = " Ensure adequate complementary feeding alongside continued breastfeeding."
	toddlerFeedingNote     = " Provide a varied family diet with continued growth monitoring."
)

// InterpretWeightForHeight classifies a weight-for-height z-score for children
// measured standing (2 years and above, height-indexed tables).
func InterpretWeightForHeight(z, height float64) domain.Interpretation {
	interp := classify(weightForHeightBands, z)
	if height < 87 {
		interp.Recommendation += growthMonitoringNote
	}
	return interp
}

// InterpretWeightForLength classifies a weight-for-length z-score for children
// measured lying down (under 2 years, length-indexed tables).
func InterpretWeightForLength(z, length float64) domain.Interpretation {
	interp := classify(weightForHeightBands, z)
	switch {
	case length < 65:
		interp.Recommendation += youngInfantFeedingNote
	case length < 85:
		interp.Recommendation += infantFeedingNote
	default:
		interp.Recommendation += toddlerFeedingNote
	}
	return interp
}

// bmiForAgeBands holds the BMI-for-age thresholds.
var bmiForAgeBands = []zBand{
	{-3, false, domain.Interpretation{
		Status:            "Severely underweight",
		Severity:          domain.SEVERITY_CRITICAL,
		NutritionalStatus: "Severe acute malnutrition",
		Recommendation:    "Urgent medical evaluation needed. Consider nutritional intervention and medical assessment.",
		Details:           "BMI is significantly below the expected range for age.",
	}},
	{-2, false, domain.Interpretation{
		Status:            "Underweight",
		Severity:          domain.SEVERITY_MODERATE,
		NutritionalStatus: "Moderate acute malnutrition",
		Recommendation:    "Nutritional assessment and intervention recommended.",
		Details:           "BMI is below the expected range for age.",
	}},
	{-1, false, domain.Interpretation{
		Status:            "Risk of underweight",
		Severity:          domain.SEVERITY_LOW,
		NutritionalStatus: "At risk of malnutrition",
		Recommendation:    "Monitor nutrition and growth.",
		Details:           "BMI is slightly below the expected range.",
	}},
	{1, true, domain.Interpretation{
		Status:            "Normal weight",
		Severity:          domain.SEVERITY_NONE,
		NutritionalStatus: "Normal nutritional status",
		Recommendation:    "Continue healthy diet and physical activity.",
		Details:           "BMI is within the normal range.",
	}},
	{2, true, domain.Interpretation{
		Status:            "Risk of overweight",
		Severity:          domain.SEVERITY_LOW,
		NutritionalStatus: "At risk of overnutrition",
		Recommendation:    "Monitor diet and encourage physical activity.",
		Details:           "BMI is slightly above the expected range.",
	}},
	{3, true, domain.Interpretation{
		Status:            "Overweight",
		Severity:          domain.SEVERITY_MODERATE,
		NutritionalStatus: "Overweight",
		Recommendation:    "Consult with a healthcare provider.",
		Details:           "BMI is above the expected range.",
	}},
	{math.Inf(1), true, domain.Interpretation{
		Status:            "Obesity",
		Severity:          domain.SEVERITY_HIGH,
		NutritionalStatus: "Obesity",
		Recommendation:    "Medical evaluation and nutritional counseling recommended.",
		Details:           "BMI is significantly above the expected range.",
	}},
}

// InterpretBMIForAge classifies a BMI-for-age z-score.
func InterpretBMIForAge(z float64) domain.Interpretation {
	return classify(bmiForAgeBands, z)
}
