package svm

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sensorbench/core/model"
	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// SVC is a margin classifier with a configurable kernel. The linear kernel
// trains directly in feature space; the RBF kernel trains on the empirical
// kernel map, keeping a copy of the training rows to evaluate the kernel
// against at prediction time. Multi-class problems are handled one-vs-rest
// with one machine per class; ties resolve to the highest decision score.
type SVC struct {
	state *model.StateManager

	// Hyperparameters
	kernel  KernelType
	c       float64 // regularization strength (inverse of penalty weight)
	gamma   float64 // RBF kernel width
	maxIter int
	tol     float64

	// Learned parameters
	classes    []int
	coef       [][]float64 // one weight vector per machine
	intercepts []float64
	trainX     *mat.Dense // retained for kernel evaluation, RBF only
	nFeatures  int
}

// Option is a functional option for SVC.
type Option func(*SVC)

// WithKernel sets the kernel family (default linear).
func WithKernel(kernel KernelType) Option {
	return func(s *SVC) { s.kernel = kernel }
}

// WithC sets the regularization strength (default 1.0). Larger C penalizes
// margin violations harder.
func WithC(c float64) Option {
	return func(s *SVC) { s.c = c }
}

// WithGamma sets the RBF kernel width (default 0.1). Ignored by the linear
// kernel.
func WithGamma(gamma float64) Option {
	return func(s *SVC) { s.gamma = gamma }
}

// WithMaxIter sets the iteration budget per one-vs-rest machine (default 500).
func WithMaxIter(maxIter int) Option {
	return func(s *SVC) { s.maxIter = maxIter }
}

// WithTol sets the gradient-norm stopping tolerance (default 1e-4).
func WithTol(tol float64) Option {
	return func(s *SVC) { s.tol = tol }
}

// NewSVC creates an unfitted SVC.
func NewSVC(opts ...Option) *SVC {
	s := &SVC{
		state:   model.NewStateManager(),
		kernel:  KernelLinear,
		c:       1.0,
		gamma:   0.1,
		maxIter: 500,
		tol:     1e-4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParamString formats the hyperparameters for error and log context.
func (s *SVC) ParamString() string {
	if s.kernel == KernelRBF {
		return fmt.Sprintf("kernel=rbf C=%g gamma=%g", s.c, s.gamma)
	}
	return fmt.Sprintf("kernel=linear C=%g", s.c)
}

func (s *SVC) name() string {
	return fmt.Sprintf("SVC(%s)", s.ParamString())
}

// Fit trains the classifier on X with labels y (a column vector of class
// codes). The model is immutable after a successful Fit: Predict only reads
// the learned parameters.
func (s *SVC) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrap(errors.ErrEmptyData, "SVC.Fit")
	}
	if yRows != nSamples {
		return errors.NewDimensionError("SVC.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("SVC.Fit", 1, yCols, 1)
	}

	s.extractClasses(y)
	if len(s.classes) < 2 {
		return errors.NewDataQualityError("fit", "", "training data contains a single class")
	}
	s.nFeatures = nFeatures

	// The RBF machine trains on the empirical kernel map: sample i becomes
	// the vector of kernel values against every training row.
	design := mat.DenseCopyOf(X)
	if s.kernel == KernelRBF {
		s.trainX = design
		design = kernelMatrix(s.trainX, s.trainX, s.gamma)
	}
	_, designCols := design.Dims()

	machines := len(s.classes)
	if machines == 2 {
		machines = 1 // binary needs a single separating machine
	}
	s.coef = make([][]float64, machines)
	s.intercepts = make([]float64, machines)

	for m := 0; m < machines; m++ {
		target := s.classes[m]
		if len(s.classes) == 2 {
			target = s.classes[1]
		}
		// +1 for the target class, -1 for the rest.
		signs := make([]float64, nSamples)
		for i := 0; i < nSamples; i++ {
			if int(y.At(i, 0)) == target {
				signs[i] = 1
			} else {
				signs[i] = -1
			}
		}

		w := make([]float64, designCols)
		b, err := s.fitMachine(design, signs, w)
		if err != nil {
			return err
		}
		s.coef[m] = w
		s.intercepts[m] = b
	}

	s.state.SetDimensions(nFeatures, nSamples)
	s.state.SetFitted()
	return nil
}

// fitMachine runs full-batch subgradient descent on the regularized hinge
// loss for one binary machine. It returns the learned intercept. Divergence
// to NaN/Inf fails with ConvergenceError; exhausting the iteration budget
// without reaching tol only raises ConvergenceWarning.
func (s *SVC) fitMachine(X *mat.Dense, signs []float64, w []float64) (float64, error) {
	nSamples, nFeatures := X.Dims()
	lambda := 1.0 / (s.c * float64(nSamples))
	b := 0.0

	baseLearningRate := 1.0
	converged := false

	for iter := 0; iter < s.maxIter; iter++ {
		gradW := make([]float64, nFeatures)
		gradB := 0.0

		for i := 0; i < nSamples; i++ {
			row := X.RawRowView(i)
			score := b
			for j, v := range row {
				score += v * w[j]
			}
			if signs[i]*score < 1 {
				// Margin violation contributes a hinge subgradient.
				for j, v := range row {
					gradW[j] -= signs[i] * v
				}
				gradB -= signs[i]
			}
		}
		for j := range gradW {
			gradW[j] = gradW[j]/float64(nSamples) + lambda*w[j]
		}
		gradB /= float64(nSamples)

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range w {
			w[j] -= learningRate * gradW[j]
		}
		b -= learningRate * gradB

		maxGrad := math.Abs(gradB)
		for _, g := range gradW {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if math.IsNaN(maxGrad) || math.IsInf(maxGrad, 0) {
			return 0, errors.NewConvergenceError(s.name(), s.ParamString(), iter+1,
				"weights diverged to NaN/Inf")
		}
		if maxGrad < s.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning(s.name(), s.maxIter, ""))
	}
	return b, nil
}

// extractClasses records the unique class codes, sorted ascending.
func (s *SVC) extractClasses(y mat.Matrix) {
	rows, _ := y.Dims()
	seen := make(map[int]bool)
	for i := 0; i < rows; i++ {
		seen[int(y.At(i, 0))] = true
	}
	s.classes = make([]int, 0, len(seen))
	for class := range seen {
		s.classes = append(s.classes, class)
	}
	sort.Ints(s.classes)
}

// decisionScores returns the per-machine decision values for every row of X.
func (s *SVC) decisionScores(X mat.Matrix) (*mat.Dense, error) {
	nSamples, nFeatures := X.Dims()
	if nFeatures != s.nFeatures {
		return nil, errors.NewDimensionError("SVC.Predict", s.nFeatures, nFeatures, 1)
	}

	design := mat.DenseCopyOf(X)
	if s.kernel == KernelRBF {
		design = kernelMatrix(design, s.trainX, s.gamma)
	}

	scores := mat.NewDense(nSamples, len(s.coef), nil)
	for i := 0; i < nSamples; i++ {
		row := design.RawRowView(i)
		for m, w := range s.coef {
			score := s.intercepts[m]
			for j, v := range row {
				score += v * w[j]
			}
			scores.Set(i, m, score)
		}
	}
	return scores, nil
}

// Predict returns a column vector of predicted class codes for X.
func (s *SVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("SVC", "Predict")
	}

	scores, err := s.decisionScores(X)
	if err != nil {
		return nil, err
	}

	nSamples, _ := scores.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	if len(s.classes) == 2 {
		for i := 0; i < nSamples; i++ {
			if scores.At(i, 0) >= 0 {
				predictions.Set(i, 0, float64(s.classes[1]))
			} else {
				predictions.Set(i, 0, float64(s.classes[0]))
			}
		}
		return predictions, nil
	}

	for i := 0; i < nSamples; i++ {
		best := 0
		bestScore := math.Inf(-1)
		for m := range s.coef {
			if v := scores.At(i, m); v > bestScore {
				bestScore = v
				best = m
			}
		}
		predictions.Set(i, 0, float64(s.classes[best]))
	}
	return predictions, nil
}

// Score returns the mean accuracy of Predict(X) against y.
func (s *SVC) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := s.Predict(X)
	if err != nil {
		return 0, err
	}

	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// Classes returns the class codes seen during fitting, sorted ascending.
func (s *SVC) Classes() []int {
	out := make([]int, len(s.classes))
	copy(out, s.classes)
	return out
}

// String returns the classifier's textual representation.
func (s *SVC) String() string {
	return s.name()
}
