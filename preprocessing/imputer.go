// Package preprocessing provides the data-preparation stages of the
// pipeline: mean imputation, class rebalancing by oversampling,
// standardization, and label/one-hot encoding.
package preprocessing

import (
	"math"

	"github.com/YuminosukeSato/sensorbench/dataset"
	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// MeanImputer fills missing numeric values with the per-column mean over the
// non-missing entries. Categorical columns pass through untouched.
type MeanImputer struct{}

// NewMeanImputer creates a MeanImputer.
func NewMeanImputer() *MeanImputer {
	return &MeanImputer{}
}

// FitTransform returns a new table with every missing numeric entry replaced
// by its column mean. A numeric column whose values are all missing has no
// defined mean and aborts with DataQualityError. Columns without missing
// entries are copied unchanged, so imputation is idempotent on clean data.
func (imp *MeanImputer) FitTransform(t *dataset.Table) (*dataset.Table, error) {
	if t.NumRows() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "MeanImputer.FitTransform")
	}

	out := t.Clone()
	for _, name := range out.NumericColumnNames() {
		col, _ := out.Column(name)

		sum := 0.0
		count := 0
		for _, v := range col.Floats {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
		if count == 0 {
			return nil, errors.NewDataQualityError("impute", name, "all values missing, mean undefined")
		}
		mean := sum / float64(count)

		for i, v := range col.Floats {
			if math.IsNaN(v) {
				col.Floats[i] = mean
			}
		}
	}
	return out, nil
}
