// Package reference loads and indexes the WHO growth-standard reference
// tables. The twelve tables (weight-for-age, weight-for-height,
// weight-for-length, length/height-for-age, BMI-for-age; each split by sex)
// are an external, versioned input: JSON exports of the WHO LMS tables, read
// once at process start and immutable thereafter. Concurrent reads need no
// synchronization.
package reference

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/child-growth-server/internal/domain"
)

// tableFile maps one JSON export to its dataset key.
type tableFile struct {
	name string
	key  domain.DatasetKey
}

// tableFiles lists the twelve WHO table exports by their download names.
var tableFiles = []tableFile{
	{"wfa_boys_0-to-5-years_zscores.json", domain.DatasetKey{Type: domain.WEIGHT_FOR_AGE, Sex: domain.MALE, Band: domain.BAND_0_TO_5}},
	{"wfa_girls_0-to-5-years_zscores.json", domain.DatasetKey{Type: domain.WEIGHT_FOR_AGE, Sex: domain.FEMALE, Band: domain.BAND_0_TO_5}},
	{"wfh_boys_2-to-5-years_zscores.json", domain.DatasetKey{Type: domain.WEIGHT_FOR_HEIGHT, Sex: domain.MALE, Band: domain.BAND_2_TO_5}},
	{"wfh_girls_2-to-5-years_zscores.json", domain.DatasetKey{Type: domain.WEIGHT_FOR_HEIGHT, Sex: domain.FEMALE, Band: domain.BAND_2_TO_5}},
	{"wfl_boys_0-to-2-years_zscores.json", domain.DatasetKey{Type: domain.WEIGHT_FOR_LENGTH, Sex: domain.MALE, Band: domain.BAND_0_TO_2}},
	{"wfl_girls_0-to-2-years_zscores.json", domain.DatasetKey{Type: domain.WEIGHT_FOR_LENGTH, Sex: domain.FEMALE, Band: domain.BAND_0_TO_2}},
	{"lhfa_boys_0-to-2-years_zscores.json", domain.DatasetKey{Type: domain.LENGTH_FOR_AGE, Sex: domain.MALE, Band: domain.BAND_0_TO_2}},
	{"lhfa_girls_0-to-2-years_zscores.json", domain.DatasetKey{Type: domain.LENGTH_FOR_AGE, Sex: domain.FEMALE, Band: domain.BAND_0_TO_2}},
	{"lhfa_boys_2-to-5-years_zscores.json", domain.DatasetKey{Type: domain.HEIGHT_FOR_AGE, Sex: domain.MALE, Band: domain.BAND_2_TO_5}},
	{"lhfa_girls_2-to-5-years_zscores.json", domain.DatasetKey{Type: domain.HEIGHT_FOR_AGE, Sex: domain.FEMALE, Band: domain.BAND_2_TO_5}},
	{"bmi_boys_2-to-5-years_zscores.json", domain.DatasetKey{Type: domain.BMI_FOR_AGE, Sex: domain.MALE, Band: domain.BAND_2_TO_5}},
	{"bmi_girls_2-to-5-years_zscores.json", domain.DatasetKey{Type: domain.BMI_FOR_AGE, Sex: domain.FEMALE, Band: domain.BAND_2_TO_5}},
}

// Provider holds the loaded, validated reference datasets keyed by
// (measurement-type, sex, age-band).
type Provider struct {
	logger   *logrus.Logger
	version  string
	datasets map[domain.DatasetKey]*domain.ReferenceDataset
}

// NewProvider creates an empty provider; call Load before serving requests.
func NewProvider(logger *logrus.Logger) *Provider {
	return &Provider{
		logger:   logger,
		datasets: make(map[domain.DatasetKey]*domain.ReferenceDataset),
	}
}

// Load reads and validates all twelve reference tables from dataDir. It is an
// initialization-time operation: any integrity failure aborts startup rather
// than surfacing later as a per-request computation fault.
func (p *Provider) Load(dataDir, version string) error {
	for _, tf := range tableFiles {
		path := filepath.Join(dataDir, tf.name)
		rows, err := readTable(path)
		if err != nil {
			return fmt.Errorf("failed to load reference table %s: %w", tf.name, err)
		}

		ds, err := buildDataset(tf.key, rows)
		if err != nil {
			return fmt.Errorf("invalid reference table %s: %w", tf.name, err)
		}

		p.datasets[tf.key] = ds
		p.logger.WithFields(logrus.Fields{
			"table":     tf.key.Type.String(),
			"sex":       tf.key.Sex.String(),
			"age_band":  tf.key.Band.String(),
			"rows":      len(ds.Rows),
			"min_index": ds.MinIndex,
			"max_index": ds.MaxIndex,
		}).Debug("Loaded reference table")
	}

	p.version = version
	p.logger.WithFields(logrus.Fields{
		"datasets": len(p.datasets),
		"version":  version,
		"data_dir": dataDir,
	}).Info("Reference datasets loaded")

	return nil
}

// Dataset returns the reference dataset for the given key.
func (p *Provider) Dataset(key domain.DatasetKey) (*domain.ReferenceDataset, error) {
	ds, ok := p.datasets[key]
	if !ok {
		return nil, fmt.Errorf("no reference dataset for %s/%s/%s", key.Type, key.Sex, key.Band)
	}
	return ds, nil
}

// Version returns the loaded reference data version.
func (p *Provider) Version() string {
	return p.version
}

// readTable parses a WHO table export. The scraper emits either a bare row
// array or an object keyed by sheet name; both forms are accepted.
func readTable(path string) ([]domain.ReferenceRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows []domain.ReferenceRow
	if err := json.Unmarshal(data, &rows); err == nil {
		return rows, nil
	}

	var sheets map[string][]domain.ReferenceRow
	if err := json.Unmarshal(data, &sheets); err != nil {
		return nil, fmt.Errorf("not a row array or sheet map: %w", err)
	}
	for _, sheetRows := range sheets {
		if len(sheetRows) > 0 {
			return sheetRows, nil
		}
	}
	return nil, fmt.Errorf("no populated sheet found")
}

// buildDataset validates row invariants (index key present, strictly
// ascending, M > 0, S != 0) and computes the covered index range.
func buildDataset(key domain.DatasetKey, rows []domain.ReferenceRow) (*domain.ReferenceDataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("table is empty")
	}

	heightIndexed := key.Type.HeightIndexed()
	var prev float64
	var min, max float64

	for i := range rows {
		row := &rows[i]

		var idx float64
		if heightIndexed {
			v, ok := row.HeightOrLength()
			if !ok {
				return nil, fmt.Errorf("row %d: missing height/length index", i)
			}
			idx = v
		} else {
			if row.Month == nil {
				return nil, fmt.Errorf("row %d: missing month index", i)
			}
			idx = float64(*row.Month)
		}

		if row.M <= 0 {
			return nil, fmt.Errorf("row %d: non-positive median %v", i, row.M)
		}
		if row.S == 0 {
			return nil, fmt.Errorf("row %d: zero coefficient of variation", i)
		}

		if i == 0 {
			min = idx
		} else if idx <= prev {
			return nil, fmt.Errorf("row %d: index %v not strictly ascending after %v", i, idx, prev)
		}
		prev = idx
		max = idx
	}

	return &domain.ReferenceDataset{
		Key:      key,
		Rows:     rows,
		MinIndex: min,
		MaxIndex: max,
	}, nil
}
