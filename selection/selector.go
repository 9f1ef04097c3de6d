// Package selection provides correlation-based feature selection. The
// selector is fitted on standardized training data only and then projects
// train and test matrices identically, so no test information leaks into the
// chosen feature set.
package selection

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/sensorbench/core/model"
	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// Mode selects which correlation the threshold applies to.
type Mode int

const (
	// ByTarget keeps features whose absolute Pearson correlation with the
	// numeric-encoded target exceeds the threshold. This is the corrected
	// reading of "correlation to the target" selection.
	ByTarget Mode = iota

	// ByMaxInterFeature keeps features whose maximum absolute correlation
	// with any other feature exceeds the threshold, self-correlation
	// excluded. This reproduces pipelines that drop the label before the
	// correlation step, where thresholding "against the target" silently
	// becomes an inter-feature filter.
	ByMaxInterFeature
)

// CorrelationSelector computes the full Pearson correlation matrix over the
// training features (plus the target in ByTarget mode) and retains features
// above the threshold, preserving the original column order.
type CorrelationSelector struct {
	state *model.StateManager

	featureNames []string
	threshold    float64
	mode         Mode

	mask     []bool
	selected []string
}

// Option is a functional option for CorrelationSelector.
type Option func(*CorrelationSelector)

// WithThreshold sets the absolute-correlation threshold (default 0.5).
func WithThreshold(threshold float64) Option {
	return func(s *CorrelationSelector) {
		s.threshold = threshold
	}
}

// WithMode sets the selection mode (default ByTarget).
func WithMode(mode Mode) Option {
	return func(s *CorrelationSelector) {
		s.mode = mode
	}
}

// NewCorrelationSelector creates a selector over the named feature columns.
// featureNames must match the column order of the matrices passed to Fit and
// Project.
func NewCorrelationSelector(featureNames []string, opts ...Option) *CorrelationSelector {
	s := &CorrelationSelector{
		state:        model.NewStateManager(),
		featureNames: featureNames,
		threshold:    0.5,
		mode:         ByTarget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fit computes the correlation matrix from the training features X and the
// encoded labels y, and freezes the selected feature set. Selection is a
// pure function of the training data; calling Fit twice on the same input
// yields the same set.
func (s *CorrelationSelector) Fit(X mat.Matrix, y []int) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "CorrelationSelector.Fit")
	}
	if c != len(s.featureNames) {
		return errors.NewDimensionError("CorrelationSelector.Fit", len(s.featureNames), c, 1)
	}
	if len(y) != r {
		return errors.NewDimensionError("CorrelationSelector.Fit", r, len(y), 0)
	}

	// Augment with the numeric-encoded target as the last column; the
	// matrix is computed once and serves both modes.
	aug := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			aug.Set(i, j, X.At(i, j))
		}
		aug.Set(i, c, float64(y[i]))
	}

	corr := mat.NewSymDense(c+1, nil)
	stat.CorrelationMatrix(corr, aug, nil)

	s.mask = make([]bool, c)
	s.selected = s.selected[:0]
	for j := 0; j < c; j++ {
		var score float64
		switch s.mode {
		case ByTarget:
			score = absCorr(corr.At(j, c))
		case ByMaxInterFeature:
			for k := 0; k < c; k++ {
				if k == j {
					continue
				}
				if v := absCorr(corr.At(j, k)); v > score {
					score = v
				}
			}
		}
		if score > s.threshold {
			s.mask[j] = true
			s.selected = append(s.selected, s.featureNames[j])
		}
	}

	if len(s.selected) == 0 {
		return errors.NewValueError("CorrelationSelector.Fit",
			"no feature exceeds the correlation threshold")
	}

	s.state.SetDimensions(c, r)
	s.state.SetFitted()
	return nil
}

// absCorr maps a correlation value to its magnitude. A constant column has
// undefined correlation (NaN); it can never exceed a positive threshold, so
// it scores zero.
func absCorr(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Abs(v)
}

// FeatureSet returns the selected column names in original order.
func (s *CorrelationSelector) FeatureSet() ([]string, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("CorrelationSelector", "FeatureSet")
	}
	out := make([]string, len(s.selected))
	copy(out, s.selected)
	return out, nil
}

// SupportMask returns, per input feature, whether it was selected.
func (s *CorrelationSelector) SupportMask() ([]bool, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("CorrelationSelector", "SupportMask")
	}
	out := make([]bool, len(s.mask))
	copy(out, s.mask)
	return out, nil
}

// Project returns the columns of X corresponding to the selected features.
// The same projection is applied to train and test matrices.
func (s *CorrelationSelector) Project(X mat.Matrix) (*mat.Dense, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("CorrelationSelector", "Project")
	}
	r, c := X.Dims()
	if c != len(s.mask) {
		return nil, errors.NewDimensionError("CorrelationSelector.Project", len(s.mask), c, 1)
	}

	out := mat.NewDense(r, len(s.selected), nil)
	col := 0
	for j := 0; j < c; j++ {
		if !s.mask[j] {
			continue
		}
		for i := 0; i < r; i++ {
			out.Set(i, col, X.At(i, j))
		}
		col++
	}
	return out, nil
}
