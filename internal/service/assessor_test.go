package service

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/child-growth-server/internal/domain"
)

// fakeProvider serves synthetic datasets with L=1, S=0.1 so that
// z = 10 * (measurement/M - 1), making expected scores easy to read off.
type fakeProvider struct {
	datasets map[domain.DatasetKey]*domain.ReferenceDataset
}

func (f *fakeProvider) Dataset(key domain.DatasetKey) (*domain.ReferenceDataset, error) {
	ds, ok := f.datasets[key]
	if !ok {
		return nil, fmt.Errorf("no dataset loaded for %s/%s/%s", key.Type, key.Sex, key.Band)
	}
	return ds, nil
}

func (f *fakeProvider) Version() string { return "test" }

func intPtr(v int) *int           { return &v }
func float64Ptr(v float64) *float64 { return &v }

func ageRow(month int, m float64) domain.ReferenceRow {
	return domain.ReferenceRow{
		Month: intPtr(month), L: 1, M: m, S: 0.1,
		SD3neg: 0.7 * m, SD2neg: 0.8 * m, SD1neg: 0.9 * m,
		SD0: m, SD1: 1.1 * m, SD2: 1.2 * m, SD3: 1.3 * m,
	}
}

func heightRow(h, m float64) domain.ReferenceRow {
	return domain.ReferenceRow{
		Height: float64Ptr(h), L: 1, M: m, S: 0.1,
		SD3neg: 0.7 * m, SD2neg: 0.8 * m, SD1neg: 0.9 * m,
		SD0: m, SD1: 1.1 * m, SD2: 1.2 * m, SD3: 1.3 * m,
	}
}

func lengthRow(l, m float64) domain.ReferenceRow {
	r := heightRow(l, m)
	r.Length, r.Height = r.Height, nil
	return r
}

func newTestProvider() *fakeProvider {
	p := &fakeProvider{datasets: map[domain.DatasetKey]*domain.ReferenceDataset{}}

	for _, sex := range []domain.Sex{domain.MALE, domain.FEMALE} {
		wfa := &domain.ReferenceDataset{
			Key: domain.DatasetKey{Type: domain.WEIGHT_FOR_AGE, Sex: sex, Band: domain.BAND_0_TO_5},
		}
		for m := 0; m <= 60; m++ {
			wfa.Rows = append(wfa.Rows, ageRow(m, 8+0.25*float64(m)))
		}
		wfa.MinIndex, wfa.MaxIndex = 0, 60
		p.datasets[wfa.Key] = wfa

		wfh := &domain.ReferenceDataset{
			Key: domain.DatasetKey{Type: domain.WEIGHT_FOR_HEIGHT, Sex: sex, Band: domain.BAND_2_TO_5},
		}
		for h := 65.0; h <= 120; h += 0.5 {
			wfh.Rows = append(wfh.Rows, heightRow(h, h/8))
		}
		wfh.MinIndex, wfh.MaxIndex = 65, 120
		p.datasets[wfh.Key] = wfh

		wfl := &domain.ReferenceDataset{
			Key: domain.DatasetKey{Type: domain.WEIGHT_FOR_LENGTH, Sex: sex, Band: domain.BAND_0_TO_2},
		}
		for l := 45.0; l <= 110; l += 0.5 {
			wfl.Rows = append(wfl.Rows, lengthRow(l, l/8))
		}
		wfl.MinIndex, wfl.MaxIndex = 45, 110
		p.datasets[wfl.Key] = wfl

		lfa := &domain.ReferenceDataset{
			Key: domain.DatasetKey{Type: domain.LENGTH_FOR_AGE, Sex: sex, Band: domain.BAND_0_TO_2},
		}
		for m := 0; m <= 24; m++ {
			lfa.Rows = append(lfa.Rows, ageRow(m, 50+2*float64(m)))
		}
		p.datasets[lfa.Key] = lfa

		hfa := &domain.ReferenceDataset{
			Key: domain.DatasetKey{Type: domain.HEIGHT_FOR_AGE, Sex: sex, Band: domain.BAND_2_TO_5},
		}
		for m := 24; m <= 60; m++ {
			hfa.Rows = append(hfa.Rows, ageRow(m, 85+0.5*float64(m)))
		}
		p.datasets[hfa.Key] = hfa

		bfa := &domain.ReferenceDataset{
			Key: domain.DatasetKey{Type: domain.BMI_FOR_AGE, Sex: sex, Band: domain.BAND_2_TO_5},
		}
		for m := 24; m <= 60; m++ {
			bfa.Rows = append(bfa.Rows, ageRow(m, 15.5))
		}
		p.datasets[bfa.Key] = bfa
	}

	return p
}

func newTestAssessor(cacheEnabled bool) *Assessor {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cache := NewResultCache(domain.CacheConfig{Enabled: cacheEnabled, Size: 16, TTL: time.Minute})
	return NewAssessor(logger, newTestProvider(), cache)
}

var testAsOf = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestWeightForAgeAtMedian(t *testing.T) {
	a := newTestAssessor(false)

	// 370 days is 12.16 months, which floors to month 12 (M = 11).
	req := &domain.AssessmentRequest{
		DateOfBirth: testAsOf.AddDate(0, 0, -370),
		Sex:         domain.MALE,
		WeightKg:    11,
		AsOf:        testAsOf,
	}

	result, err := a.WeightForAge(req)
	require.NoError(t, err)

	assert.Equal(t, domain.WEIGHT_FOR_AGE, result.Assessment)
	assert.Equal(t, 0.0, result.Results.ZScore)
	assert.Equal(t, 50, result.Results.Percentile)
	assert.Equal(t, "Normal weight", result.Results.Status)
	assert.Equal(t, domain.SEVERITY_NONE, result.Results.Severity)
	assert.Contains(t, result.Results.Recommendation, complementaryNote)

	assert.Equal(t, "male", result.Input.Gender)
	require.NotNil(t, result.Input.Weight)
	assert.Equal(t, 11.0, *result.Input.Weight)
	assert.Equal(t, req.DateOfBirth.Format("2006-01-02"), result.Input.DateOfBirth)

	require.NotNil(t, result.Reference.Month)
	assert.Equal(t, 12, *result.Reference.Month)
	assert.Equal(t, 11.0, result.Reference.Median)
	assert.Equal(t, 11.0, result.ReferenceRanges.Median)
}

func TestWeightForAgeClassifiesUnderweight(t *testing.T) {
	a := newTestAssessor(false)

	// z = 10 * (7.15/11 - 1) = -3.5
	req := &domain.AssessmentRequest{
		DateOfBirth: testAsOf.AddDate(0, 0, -370),
		Sex:         domain.FEMALE,
		WeightKg:    7.15,
		AsOf:        testAsOf,
	}

	result, err := a.WeightForAge(req)
	require.NoError(t, err)
	assert.Equal(t, "Severely underweight", result.Results.Status)
	assert.Equal(t, domain.SEVERITY_CRITICAL, result.Results.Severity)
	assert.InDelta(t, -3.5, result.Results.ZScore, 1e-9)
}

func TestWeightForAgeAgeGate(t *testing.T) {
	a := newTestAssessor(false)

	tests := []struct {
		name      string
		ageInDays int
		wantErr   bool
	}{
		{"fifth birthday still accepted", 1827, false},
		{"one day past five years rejected", 1828, true},
		{"well past five years rejected", 2000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &domain.AssessmentRequest{
				DateOfBirth: testAsOf.AddDate(0, 0, -tt.ageInDays),
				Sex:         domain.MALE,
				WeightKg:    15,
				AsOf:        testAsOf,
			}
			_, err := a.WeightForAge(req)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "dob", vErr.Field)
			assert.Equal(t, msgWfaAgeRange, vErr.Message)
		})
	}
}

func TestWeightForAgeRejectsNonPositiveWeight(t *testing.T) {
	a := newTestAssessor(false)

	req := &domain.AssessmentRequest{
		DateOfBirth: testAsOf.AddDate(0, 0, -370),
		Sex:         domain.MALE,
		WeightKg:    0,
		AsOf:        testAsOf,
	}
	_, err := a.WeightForAge(req)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "weight", vErr.Field)
}

func TestWeightForHeightUsesStandingTablesFromTwoYears(t *testing.T) {
	a := newTestAssessor(false)

	// 3 years old, 100 cm: M = 12.5, so 12.5 kg sits on the median.
	req := &domain.AssessmentRequest{
		DateOfBirth: testAsOf.AddDate(-3, 0, 0),
		Sex:         domain.MALE,
		WeightKg:    12.5,
		HeightCm:    100,
		AsOf:        testAsOf,
	}

	result, err := a.WeightForHeight(req)
	require.NoError(t, err)

	assert.Equal(t, domain.WEIGHT_FOR_HEIGHT, result.Assessment)
	assert.Equal(t, 0.0, result.Results.ZScore)
	assert.Equal(t, 50, result.Results.Percentile)
	assert.Equal(t, "Normal", result.Results.Status)
	assert.Equal(t, "Normal nutritional status", result.Results.NutritionalStatus)
	assert.NotContains(t, result.Results.Recommendation, growthMonitoringNote)

	require.NotNil(t, result.Reference.Height)
	assert.Equal(t, 100.0, *result.Reference.Height)
	assert.Nil(t, result.Reference.Month)
}

func TestWeightForHeightUsesLengthTablesUnderTwoYears(t *testing.T) {
	a := newTestAssessor(false)

	// 1 year old, 70 cm length: M = 8.75.
	req := &domain.AssessmentRequest{
		DateOfBirth: testAsOf.AddDate(-1, 0, 0),
		Sex:         domain.FEMALE,
		WeightKg:    8.75,
		HeightCm:    70,
		AsOf:        testAsOf,
	}

	result, err := a.WeightForHeight(req)
	require.NoError(t, err)

	assert.Equal(t, domain.WEIGHT_FOR_LENGTH, result.Assessment)
	assert.Equal(t, 0.0, result.Results.ZScore)
	assert.Contains(t, result.Results.Recommendation, infantFeedingNote)
}

func TestWeightForHeightRejectsHeightOutsideTable(t *testing.T) {
	a := newTestAssessor(false)

	req := &domain.AssessmentRequest{
		DateOfBirth: testAsOf.AddDate(-3, 0, 0),
		Sex:         domain.MALE,
		WeightKg:    14,
		HeightCm:    130,
		AsOf:        testAsOf,
	}

	_, err := a.WeightForHeight(req)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "height", vErr.Field)
	assert.Equal(t, "Height must be between 65 and 120 cm for this assessment.", vErr.Message)
}

func TestWeightForHeightClampsExtremeZScores(t *testing.T) {
	a := newTestAssessor(false)

	// z = 10 * (37.5/12.5 - 1) = 20 before clamping.
	req := &domain.AssessmentRequest{
		DateOfBirth: testAsOf.AddDate(-3, 0, 0),
		Sex:         domain.MALE,
		WeightKg:    37.5,
		HeightCm:    100,
		AsOf:        testAsOf,
	}

	result, err := a.WeightForHeight(req)
	require.NoError(t, err)
	assert.Equal(t, 8.0, result.Results.ZScore)
	assert.Equal(t, 100, result.Results.Percentile)
	assert.Equal(t, "Obesity", result.Results.Status)
}

func TestLengthHeightForAgeReportsScoreOnly(t *testing.T) {
	a := newTestAssessor(false)

	// 3 years back spans the 2024 leap day: 1096 days, 36.01 months, floor 36,
	// so M = 85 + 0.5*36 = 103.
	req := &domain.AssessmentRequest{
		DateOfBirth: testAsOf.AddDate(-3, 0, 0),
		Sex:         domain.MALE,
		HeightCm:    103,
		AsOf:        testAsOf,
	}

	result, err := a.LengthHeightForAge(req)
	require.NoError(t, err)

	assert.Equal(t, domain.HEIGHT_FOR_AGE, result.Assessment)
	assert.Equal(t, 0.0, result.Results.ZScore)
	assert.Equal(t, 50, result.Results.Percentile)
	assert.Empty(t, result.Results.Status)
	assert.Empty(t, result.Results.Recommendation)

	require.NotNil(t, result.Input.Height)
	assert.Equal(t, 103.0, *result.Input.Height)
}

func TestLengthHeightForAgeUnderTwoUsesLengthTables(t *testing.T) {
	a := newTestAssessor(false)

	// 1 year is 365 days, 11.99 months, floor 11: M = 50 + 2*11 = 72.
	req := &domain.AssessmentRequest{
		DateOfBirth: testAsOf.AddDate(-1, 0, 0),
		Sex:         domain.FEMALE,
		HeightCm:    72,
		AsOf:        testAsOf,
	}

	result, err := a.LengthHeightForAge(req)
	require.NoError(t, err)
	assert.Equal(t, domain.LENGTH_FOR_AGE, result.Assessment)
	assert.Equal(t, 0.0, result.Results.ZScore)
}

func TestBMIForAge(t *testing.T) {
	a := newTestAssessor(false)

	// 15.5 kg at 100 cm gives BMI 15.5, the synthetic table's median.
	req := &domain.AssessmentRequest{
		DateOfBirth: testAsOf.AddDate(-3, 0, 0),
		Sex:         domain.MALE,
		WeightKg:    15.5,
		HeightCm:    100,
		AsOf:        testAsOf,
	}

	result, err := a.BMIForAge(req)
	require.NoError(t, err)

	assert.Equal(t, domain.BMI_FOR_AGE, result.Assessment)
	assert.Equal(t, 0.0, result.Results.ZScore)
	assert.Equal(t, 50, result.Results.Percentile)
	assert.Equal(t, "Normal weight", result.Results.Status)

	require.NotNil(t, result.Input.BMI)
	assert.Equal(t, 15.5, *result.Input.BMI)
}

func TestBMIForAgeAgeGate(t *testing.T) {
	a := newTestAssessor(false)

	tests := []struct {
		name string
		dob  time.Time
	}{
		{"too young", testAsOf.AddDate(-1, -6, 0)},
		{"too old", testAsOf.AddDate(-6, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &domain.AssessmentRequest{
				DateOfBirth: tt.dob,
				Sex:         domain.MALE,
				WeightKg:    15.5,
				HeightCm:    100,
				AsOf:        testAsOf,
			}
			_, err := a.BMIForAge(req)
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, msgBfaAgeRange, vErr.Message)
		})
	}
}

func TestAssessorServesRepeatRequestsFromCache(t *testing.T) {
	a := newTestAssessor(true)

	req := &domain.AssessmentRequest{
		DateOfBirth: testAsOf.AddDate(0, 0, -370),
		Sex:         domain.MALE,
		WeightKg:    10.4,
		AsOf:        testAsOf,
	}

	first, err := a.WeightForAge(req)
	require.NoError(t, err)
	second, err := a.WeightForAge(req)
	require.NoError(t, err)
	assert.Same(t, first, second)

	hits, misses := a.cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestAssessorMissingDatasetSurfacesError(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	empty := &fakeProvider{datasets: map[domain.DatasetKey]*domain.ReferenceDataset{}}
	a := NewAssessor(logger, empty, NewResultCache(domain.CacheConfig{}))

	req := &domain.AssessmentRequest{
		DateOfBirth: testAsOf.AddDate(0, 0, -370),
		Sex:         domain.MALE,
		WeightKg:    10.4,
		AsOf:        testAsOf,
	}
	_, err := a.WeightForAge(req)
	assert.Error(t, err)
}
