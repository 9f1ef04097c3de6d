package modelselection

import (
	"context"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/sensorbench/core/model"
	"github.com/YuminosukeSato/sensorbench/core/parallel"
	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// Factory builds a fresh, unfitted estimator for a parameter combination.
// Grid search never reuses an estimator across folds.
type Factory func(p Params) model.Classifier

// CandidateResult records the cross-validation outcome for one combination.
type CandidateResult struct {
	Params     Params
	FoldScores []float64
	MeanScore  float64
	Evaluated  bool // false when cancellation struck before completion
	Skipped    bool // true when the optimizer failed to converge
	Err        error
}

// GridSearchCV evaluates every combination of a ParamGrid with stratified
// k-fold cross-validation and refits the winner on the full training set.
//
// Combinations may be evaluated in parallel, but results are aggregated by
// grid position, so the winner (and the first-in-grid-order tie-break) is
// reproducible regardless of scheduling. Combinations whose optimizer fails
// to converge are skipped; the search only fails outright when every
// combination does. Context cancellation stops the remaining combinations
// and reports the best result found so far through PartialSearchError.
type GridSearchCV struct {
	state   *model.StateManager
	factory Factory
	grid    *ParamGrid
	nSplits int
	seed    uint64
	workers int

	BestParams Params
	BestScore  float64
	BestIndex  int
	BestModel  model.Classifier
	Results    []CandidateResult
}

// SearchOption configures a GridSearchCV.
type SearchOption func(*GridSearchCV)

// WithCV sets the number of cross-validation folds (default 5).
func WithCV(nSplits int) SearchOption {
	return func(gs *GridSearchCV) { gs.nSplits = nSplits }
}

// WithSeed sets the fold-assignment seed (default 42).
func WithSeed(seed uint64) SearchOption {
	return func(gs *GridSearchCV) { gs.seed = seed }
}

// WithWorkers caps the number of combinations evaluated concurrently.
// Zero or negative uses one worker per CPU.
func WithWorkers(workers int) SearchOption {
	return func(gs *GridSearchCV) { gs.workers = workers }
}

// NewGridSearchCV creates a grid search over the given grid.
func NewGridSearchCV(factory Factory, grid *ParamGrid, opts ...SearchOption) *GridSearchCV {
	gs := &GridSearchCV{
		state:   model.NewStateManager(),
		factory: factory,
		grid:    grid,
		nSplits: 5,
		seed:    42,
	}
	for _, opt := range opts {
		opt(gs)
	}
	return gs
}

// Fit runs the search on the training set. X is the feature matrix and y a
// column matrix of integer class codes.
//
// On cancellation Fit still selects and refits the best fully evaluated
// combination (when one exists) before returning PartialSearchError, so the
// caller can use BestModel with the error as a completeness warning.
func (gs *GridSearchCV) Fit(ctx context.Context, X, y mat.Matrix) error {
	combos := gs.grid.Combinations()
	if len(combos) == 0 {
		return errors.NewValueError("grid_search", "empty parameter grid")
	}

	// One fold assignment shared by all combinations keeps candidates
	// comparable and the search deterministic.
	folds := NewStratifiedKFold(gs.nSplits, gs.seed).Split(X, y)

	gs.Results = make([]CandidateResult, len(combos))
	workers := gs.workers
	if workers <= 0 {
		parallel.Parallelize(len(combos), func(start, end int) {
			for i := start; i < end; i++ {
				gs.Results[i] = gs.evaluate(ctx, combos[i], folds, X, y)
			}
		})
	} else {
		parallel.ParallelizeWithWorkers(len(combos), workers, func(start, end int) {
			for i := start; i < end; i++ {
				gs.Results[i] = gs.evaluate(ctx, combos[i], folds, X, y)
			}
		})
	}

	evaluated := 0
	for _, r := range gs.Results {
		if !r.Evaluated {
			continue
		}
		evaluated++
		if r.Err != nil && !r.Skipped {
			return errors.Wrapf(r.Err, "grid search: combination %s failed", r.Params)
		}
	}

	bestIdx := -1
	for i, r := range gs.Results {
		if !r.Evaluated || r.Skipped {
			continue
		}
		if bestIdx < 0 || r.MeanScore > gs.Results[bestIdx].MeanScore {
			bestIdx = i
		}
	}

	canceled := ctx.Err() != nil
	if bestIdx < 0 {
		if canceled {
			return errors.NewPartialSearchError(evaluated, len(combos), ctx.Err())
		}
		return errors.Newf("grid search: all %d parameter combinations failed to converge", len(combos))
	}

	gs.BestIndex = bestIdx
	gs.BestParams = gs.Results[bestIdx].Params
	gs.BestScore = gs.Results[bestIdx].MeanScore

	refit := gs.factory(gs.BestParams)
	if err := refit.Fit(X, y); err != nil {
		return errors.Wrapf(err, "grid search: refit of winning combination %s failed", gs.BestParams)
	}
	gs.BestModel = refit
	gs.state.SetFitted()

	if canceled {
		return errors.NewPartialSearchError(evaluated, len(combos), ctx.Err())
	}
	return nil
}

// evaluate cross-validates a single combination. A result with Evaluated
// false means cancellation interrupted the folds; Skipped true means every
// caller should pass over this combination without failing the search.
func (gs *GridSearchCV) evaluate(ctx context.Context, p Params, folds []Fold, X, y mat.Matrix) CandidateResult {
	res := CandidateResult{Params: p}
	scores := make([]float64, 0, len(folds))

	for _, fold := range folds {
		if ctx.Err() != nil {
			return res
		}

		trainX, trainY := subset(X, y, fold.TrainIndices)
		testX, testY := subset(X, y, fold.TestIndices)

		est := gs.factory(p)
		if err := est.Fit(trainX, trainY); err != nil {
			var ce *errors.ConvergenceError
			if errors.As(err, &ce) {
				res.Evaluated = true
				res.Skipped = true
				res.Err = err
				return res
			}
			res.Evaluated = true
			res.Err = err
			return res
		}

		score, err := est.Score(testX, testY)
		if err != nil {
			res.Evaluated = true
			res.Err = err
			return res
		}
		scores = append(scores, score)
	}

	res.Evaluated = true
	res.FoldScores = scores
	res.MeanScore = stat.Mean(scores, nil)
	return res
}

// Predict delegates to the refit best model.
func (gs *GridSearchCV) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !gs.state.IsFitted() {
		return nil, errors.NewNotFittedError("GridSearchCV", "Predict")
	}
	return gs.BestModel.Predict(X)
}

// Score delegates to the refit best model.
func (gs *GridSearchCV) Score(X, y mat.Matrix) (float64, error) {
	if !gs.state.IsFitted() {
		return 0, errors.NewNotFittedError("GridSearchCV", "Score")
	}
	return gs.BestModel.Score(X, y)
}
