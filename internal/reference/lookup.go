package reference

import (
	"math"
	"sort"

	"github.com/child-growth-server/internal/domain"
)

// FindByAge returns the row whose month index equals floor(ageInMonths)
// exactly. No interpolation and no nearest-match fallback: switching to
// nearest-match changes clinical results, so a miss is an explicit
// NoReferenceDataError instead.
func FindByAge(ds *domain.ReferenceDataset, ageInMonths float64) (*domain.ReferenceRow, error) {
	target := int(math.Floor(ageInMonths))

	// Rows are strictly ascending by month, so binary search.
	i := sort.Search(len(ds.Rows), func(i int) bool {
		return ds.Rows[i].Month != nil && *ds.Rows[i].Month >= target
	})
	if i < len(ds.Rows) && ds.Rows[i].Month != nil && *ds.Rows[i].Month == target {
		return &ds.Rows[i], nil
	}

	return nil, domain.NewNoReferenceDataError(ds.Key.Type, ds.Key.Sex, ageInMonths)
}

// FindByHeight returns the row whose height/length index is closest to the
// measured value, ties broken by first occurrence in sorted order. Always
// returns a row for a non-empty dataset.
func FindByHeight(ds *domain.ReferenceDataset, height float64) (*domain.ReferenceRow, error) {
	if len(ds.Rows) == 0 {
		return nil, domain.NewNoReferenceDataError(ds.Key.Type, ds.Key.Sex, 0)
	}

	best := 0
	bestDist := math.Inf(1)
	for i := range ds.Rows {
		idx, ok := ds.Rows[i].HeightOrLength()
		if !ok {
			continue
		}
		if dist := math.Abs(idx - height); dist < bestDist {
			best = i
			bestDist = dist
		}
	}

	return &ds.Rows[best], nil
}
