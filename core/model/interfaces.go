package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is the interface for estimators that learn from labeled data.
type Fitter interface {
	// Fit trains the estimator on X with labels y (a column vector).
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for fitted estimators that produce labels.
type Predictor interface {
	// Predict returns a column vector of predicted labels for X.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Classifier combines training, prediction and scoring. Grid search accepts
// any Classifier; the two kernel families are interchangeable behind it.
type Classifier interface {
	Fitter
	Predictor

	// Score returns the mean accuracy on the given test data and labels.
	Score(X, y mat.Matrix) (float64, error)

	// Classes returns the class labels seen during fitting, sorted ascending.
	Classes() []int
}

// Transformer is the interface for fitted data transformations. Fit learns
// the transform parameters from training data only; Transform applies them
// without refitting.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}
