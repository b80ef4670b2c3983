package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/child-growth-server/internal/domain"
	"github.com/child-growth-server/internal/reference"
)

// maxAgeInDays is the weight-for-age upper bound: 5 years.
const maxAgeInDays = 1827

// Client-facing age range messages, per assessment type.
const (
	msgWfaAgeRange = "This assessment is designed for children up to 5 years of age."
	msgAgeRange    = "This assessment is designed for children between 0 and 5 years of age."
	msgBfaAgeRange = "This assessment is only designed for children between 2 and 5 years of age."
)

// Assessor orchestrates the four WHO growth-standard assessment flows. Each
// flow is a fixed sequence: validate, compute age, select dataset, look up the
// reference row, compute the z-score, convert to percentile, interpret, and
// assemble the result envelope. The assessor itself is stateless per request;
// the only shared state is the immutable reference data and the result cache.
type Assessor struct {
	logger   *logrus.Logger
	provider domain.ReferenceProvider
	cache    *ResultCache
}

// NewAssessor creates a new assessment orchestrator.
func NewAssessor(logger *logrus.Logger, provider domain.ReferenceProvider, cache *ResultCache) *Assessor {
	return &Assessor{
		logger:   logger,
		provider: provider,
		cache:    cache,
	}
}

// WeightForAge runs the WFA flow: weight against the age-indexed 0-5y tables.
func (a *Assessor) WeightForAge(req *domain.AssessmentRequest) (*domain.AssessmentResult, error) {
	if err := ValidateMeasurement("weight", req.WeightKg); err != nil {
		return nil, err
	}

	asOf := a.asOf(req)
	ageInDays, err := AgeInDays(req.DateOfBirth, asOf)
	if err != nil {
		return nil, err
	}
	if ageInDays > maxAgeInDays {
		return nil, domain.NewValidationError("dob", msgWfaAgeRange, ageInDays)
	}

	if cached, ok := a.cached(domain.WEIGHT_FOR_AGE, req, asOf); ok {
		return cached, nil
	}

	dataset, err := a.provider.Dataset(domain.DatasetKey{
		Type: domain.WEIGHT_FOR_AGE, Sex: req.Sex, Band: domain.BAND_0_TO_5,
	})
	if err != nil {
		return nil, err
	}

	ageInMonths := AgeInMonths(ageInDays)
	row, err := reference.FindByAge(dataset, ageInMonths)
	if err != nil {
		return nil, err
	}

	zScore, err := ZScore(req.WeightKg, row.L, row.M, row.S)
	if err != nil {
		return nil, err
	}
	percentile := PercentileForAge(zScore)
	interp := InterpretWeightForAge(zScore, ageInMonths)

	result := a.assemble(domain.WEIGHT_FOR_AGE, req, row, zScore, percentile, &interp)
	result.Input.Weight = floatPtr(req.WeightKg)
	result.Input.DateOfBirth = req.DateOfBirth.Format("2006-01-02")

	a.finish(result, ageInMonths, asOf, req)
	return result, nil
}

// WeightForHeight runs the WFH/WFL flow: weight against the height-indexed
// tables, bifurcated at 2 years between length (lying) and height (standing)
// tables. The measured height must fall inside the chosen table's covered
// range before lookup.
func (a *Assessor) WeightForHeight(req *domain.AssessmentRequest) (*domain.AssessmentResult, error) {
	if err := ValidateMeasurement("weight", req.WeightKg); err != nil {
		return nil, err
	}
	if err := ValidateMeasurement("height", req.HeightCm); err != nil {
		return nil, err
	}

	asOf := a.asOf(req)
	ageInDays, err := AgeInDays(req.DateOfBirth, asOf)
	if err != nil {
		return nil, err
	}
	if AgeInYears(ageInDays) > 5 {
		return nil, domain.NewValidationError("dob", msgAgeRange, ageInDays)
	}

	key := domain.DatasetKey{Type: domain.WEIGHT_FOR_HEIGHT, Sex: req.Sex, Band: domain.BAND_2_TO_5}
	if AgeInYears(ageInDays) < 2 {
		key = domain.DatasetKey{Type: domain.WEIGHT_FOR_LENGTH, Sex: req.Sex, Band: domain.BAND_0_TO_2}
	}

	if cached, ok := a.cached(key.Type, req, asOf); ok {
		return cached, nil
	}

	dataset, err := a.provider.Dataset(key)
	if err != nil {
		return nil, err
	}

	if req.HeightCm < dataset.MinIndex || req.HeightCm > dataset.MaxIndex {
		return nil, domain.NewValidationError("height",
			fmt.Sprintf("Height must be between %g and %g cm for this assessment.",
				dataset.MinIndex, dataset.MaxIndex), req.HeightCm)
	}

	row, err := reference.FindByHeight(dataset, req.HeightCm)
	if err != nil {
		return nil, err
	}

	zScore, err := ZScore(req.WeightKg, row.L, row.M, row.S)
	if err != nil {
		return nil, err
	}
	zScore = ClampZScore(zScore)
	percentile := PercentileForHeight(zScore)

	var interp domain.Interpretation
	if key.Type == domain.WEIGHT_FOR_LENGTH {
		interp = InterpretWeightForLength(zScore, req.HeightCm)
	} else {
		interp = InterpretWeightForHeight(zScore, req.HeightCm)
	}

	result := a.assemble(key.Type, req, row, zScore, percentile, &interp)
	result.Input.Weight = floatPtr(req.WeightKg)
	result.Input.Height = floatPtr(req.HeightCm)

	a.finish(result, AgeInMonths(ageInDays), asOf, req)
	return result, nil
}

// LengthHeightForAge runs the LHFA flow: measured length/height against the
// age-indexed tables. Deliberately indexes by age, not by the measured value,
// even though the tables carry a length/height median.
func (a *Assessor) LengthHeightForAge(req *domain.AssessmentRequest) (*domain.AssessmentResult, error) {
	if err := ValidateMeasurement("height", req.HeightCm); err != nil {
		return nil, err
	}

	asOf := a.asOf(req)
	ageInDays, err := AgeInDays(req.DateOfBirth, asOf)
	if err != nil {
		return nil, err
	}
	if AgeInYears(ageInDays) > 5 {
		return nil, domain.NewValidationError("dob", msgAgeRange, ageInDays)
	}

	key := domain.DatasetKey{Type: domain.HEIGHT_FOR_AGE, Sex: req.Sex, Band: domain.BAND_2_TO_5}
	if AgeInYears(ageInDays) < 2 {
		key = domain.DatasetKey{Type: domain.LENGTH_FOR_AGE, Sex: req.Sex, Band: domain.BAND_0_TO_2}
	}

	if cached, ok := a.cached(key.Type, req, asOf); ok {
		return cached, nil
	}

	dataset, err := a.provider.Dataset(key)
	if err != nil {
		return nil, err
	}

	ageInMonths := AgeInMonths(ageInDays)
	row, err := reference.FindByAge(dataset, ageInMonths)
	if err != nil {
		return nil, err
	}

	zScore, err := ZScore(req.HeightCm, row.L, row.M, row.S)
	if err != nil {
		return nil, err
	}
	percentile := PercentileForHeight(zScore)

	// LHFA reports the score only; no status/severity bundle is defined for it.
	result := a.assemble(key.Type, req, row, zScore, percentile, nil)
	result.Input.Height = floatPtr(req.HeightCm)
	result.Input.DateOfBirth = req.DateOfBirth.Format("2006-01-02")

	a.finish(result, ageInMonths, asOf, req)
	return result, nil
}

// BMIForAge runs the BFA flow: BMI computed from weight and height, scored
// against the age-indexed 2-5y BMI tables.
func (a *Assessor) BMIForAge(req *domain.AssessmentRequest) (*domain.AssessmentResult, error) {
	if err := ValidateMeasurement("weight", req.WeightKg); err != nil {
		return nil, err
	}
	if err := ValidateMeasurement("height", req.HeightCm); err != nil {
		return nil, err
	}

	asOf := a.asOf(req)
	ageInDays, err := AgeInDays(req.DateOfBirth, asOf)
	if err != nil {
		return nil, err
	}
	if years := AgeInYears(ageInDays); years < 2 || years > 5 {
		return nil, domain.NewValidationError("dob", msgBfaAgeRange, ageInDays)
	}

	if cached, ok := a.cached(domain.BMI_FOR_AGE, req, asOf); ok {
		return cached, nil
	}

	dataset, err := a.provider.Dataset(domain.DatasetKey{
		Type: domain.BMI_FOR_AGE, Sex: req.Sex, Band: domain.BAND_2_TO_5,
	})
	if err != nil {
		return nil, err
	}

	ageInMonths := AgeInMonths(ageInDays)
	row, err := reference.FindByAge(dataset, ageInMonths)
	if err != nil {
		return nil, err
	}

	bmi := req.WeightKg / ((req.HeightCm / 100) * (req.HeightCm / 100))
	zScore, err := ZScore(bmi, row.L, row.M, row.S)
	if err != nil {
		return nil, err
	}
	percentile := PercentileForAge(zScore)
	interp := InterpretBMIForAge(zScore)

	result := a.assemble(domain.BMI_FOR_AGE, req, row, zScore, percentile, &interp)
	result.Input.Weight = floatPtr(req.WeightKg)
	result.Input.Height = floatPtr(req.HeightCm)
	result.Input.BMI = floatPtr(RoundZScore(bmi))
	result.Input.DateOfBirth = req.DateOfBirth.Format("2006-01-02")

	a.finish(result, ageInMonths, asOf, req)
	return result, nil
}

// CacheStats exposes the result cache counters for the health endpoint.
func (a *Assessor) CacheStats() (hits, misses int64) {
	return a.cache.Stats()
}

// asOf resolves the evaluation instant.
func (a *Assessor) asOf(req *domain.AssessmentRequest) time.Time {
	if req.AsOf.IsZero() {
		return time.Now()
	}
	return req.AsOf
}

// cached returns a previously assembled result for an identical request on the
// same calendar day.
func (a *Assessor) cached(mt domain.MeasurementType, req *domain.AssessmentRequest, asOf time.Time) (*domain.AssessmentResult, bool) {
	result, ok := a.cache.Get(a.cache.Key(mt, req, asOf))
	if ok {
		a.logger.WithFields(logrus.Fields{
			"assessment": mt.String(),
			"sex":        req.Sex.String(),
		}).Debug("Assessment result served from cache")
	}
	return result, ok
}

// assemble builds the uniform result envelope shared by all four flows.
func (a *Assessor) assemble(mt domain.MeasurementType, req *domain.AssessmentRequest,
	row *domain.ReferenceRow, zScore float64, percentile int, interp *domain.Interpretation) *domain.AssessmentResult {

	results := domain.Results{
		ZScore:     RoundZScore(zScore),
		Percentile: percentile,
	}
	if interp != nil {
		results.Status = interp.Status
		results.Severity = interp.Severity
		results.NutritionalStatus = interp.NutritionalStatus
		results.Recommendation = interp.Recommendation
		results.Details = interp.Details
	}

	ref := domain.ReferenceEcho{Median: row.M, L: row.L, S: row.S}
	if mt.HeightIndexed() {
		if v, ok := row.HeightOrLength(); ok {
			ref.Height = floatPtr(v)
		}
	} else {
		ref.Month = row.Month
	}

	return &domain.AssessmentResult{
		Assessment: mt,
		Input:      domain.InputEcho{Gender: req.Sex.String()},
		Reference:  ref,
		Results:    results,
		ReferenceRanges: domain.ReferenceRanges{
			SD4neg: row.SD4neg,
			SD3neg: row.SD3neg,
			SD2neg: row.SD2neg,
			SD1neg: row.SD1neg,
			Median: row.SD0,
			SD1:    row.SD1,
			SD2:    row.SD2,
			SD3:    row.SD3,
			SD4:    row.SD4,
		},
	}
}

// finish logs the completed assessment and stores it in the result cache.
func (a *Assessor) finish(result *domain.AssessmentResult, ageInMonths float64, asOf time.Time, req *domain.AssessmentRequest) {
	a.cache.Add(a.cache.Key(result.Assessment, req, asOf), result)

	a.logger.WithFields(logrus.Fields{
		"assessment":    result.Assessment.String(),
		"sex":           req.Sex.String(),
		"age_in_months": ageInMonths,
		"z_score":       result.Results.ZScore,
		"percentile":    result.Results.Percentile,
		"status":        result.Results.Status,
	}).Info("Assessment completed")
}

func floatPtr(v float64) *float64 {
	return &v
}
