package modelselection

import (
	"context"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sensorbench/core/model"
	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// stubClassifier scores a fixed value regardless of data, so search behavior
// can be asserted without depending on a real optimizer.
type stubClassifier struct {
	score  float64
	fitErr error
}

func (s *stubClassifier) Fit(X, y mat.Matrix) error { return s.fitErr }

func (s *stubClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, _ := X.Dims()
	return mat.NewDense(rows, 1, nil), nil
}

func (s *stubClassifier) Score(X, y mat.Matrix) (float64, error) { return s.score, nil }

func (s *stubClassifier) Classes() []int { return []int{0, 1} }

// cvData is a minimal two-class set large enough for five stratified folds.
func cvData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(20, 1, nil)
	y := mat.NewDense(20, 1, nil)
	for i := 0; i < 20; i++ {
		X.Set(i, 0, float64(i))
		if i >= 10 {
			y.Set(i, 0, 1)
		}
	}
	return X, y
}

func scoreByC(scores map[float64]float64) Factory {
	return func(p Params) model.Classifier {
		return &stubClassifier{score: scores[p.C]}
	}
}

func TestGridSearchSelectsHighestMeanScore(t *testing.T) {
	X, y := cvData()
	factory := scoreByC(map[float64]float64{0.1: 0.6, 1: 0.7, 10: 0.95, 100: 0.8})

	gs := NewGridSearchCV(factory, DefaultLinearGrid())
	if err := gs.Fit(context.Background(), X, y); err != nil {
		t.Fatal(err)
	}

	if gs.BestParams.C != 10 {
		t.Errorf("BestParams.C = %v, want 10", gs.BestParams.C)
	}
	if gs.BestScore != 0.95 {
		t.Errorf("BestScore = %v, want 0.95", gs.BestScore)
	}
	if gs.BestModel == nil {
		t.Error("winner was not refit")
	}
	if len(gs.Results) != 4 {
		t.Errorf("got %d results, want 4", len(gs.Results))
	}
}

func TestGridSearchTieBreaksFirstInGridOrder(t *testing.T) {
	X, y := cvData()
	factory := scoreByC(map[float64]float64{0.1: 0.9, 1: 0.9, 10: 0.9, 100: 0.9})

	gs := NewGridSearchCV(factory, DefaultLinearGrid())
	if err := gs.Fit(context.Background(), X, y); err != nil {
		t.Fatal(err)
	}

	if gs.BestIndex != 0 || gs.BestParams.C != 0.1 {
		t.Errorf("tie resolved to index %d (C=%v), want the first grid entry", gs.BestIndex, gs.BestParams.C)
	}
}

func TestGridSearchSkipsNonConvergingCombinations(t *testing.T) {
	X, y := cvData()
	factory := func(p Params) model.Classifier {
		if p.C == 10 {
			// The would-be winner never converges.
			return &stubClassifier{fitErr: errors.NewConvergenceError("test", p.String(), 500, "diverged")}
		}
		return &stubClassifier{score: map[float64]float64{0.1: 0.6, 1: 0.7, 100: 0.8}[p.C]}
	}

	gs := NewGridSearchCV(factory, DefaultLinearGrid())
	if err := gs.Fit(context.Background(), X, y); err != nil {
		t.Fatal(err)
	}

	if gs.BestParams.C != 100 {
		t.Errorf("BestParams.C = %v, want 100 after skipping the diverging combination", gs.BestParams.C)
	}
	if !gs.Results[2].Skipped {
		t.Error("diverging combination not marked skipped")
	}
}

func TestGridSearchAllCombinationsFailIsFatal(t *testing.T) {
	X, y := cvData()
	factory := func(p Params) model.Classifier {
		return &stubClassifier{fitErr: errors.NewConvergenceError("test", p.String(), 500, "diverged")}
	}

	err := NewGridSearchCV(factory, DefaultLinearGrid()).Fit(context.Background(), X, y)
	if err == nil {
		t.Fatal("expected an error when every combination fails to converge")
	}
	var pse *errors.PartialSearchError
	if errors.As(err, &pse) {
		t.Fatalf("got PartialSearchError %v, want a fatal search error", err)
	}
}

func TestGridSearchNonConvergenceErrorIsFatal(t *testing.T) {
	X, y := cvData()
	factory := func(p Params) model.Classifier {
		if p.C == 1 {
			return &stubClassifier{fitErr: errors.New("disk on fire")}
		}
		return &stubClassifier{score: 0.9}
	}

	err := NewGridSearchCV(factory, DefaultLinearGrid()).Fit(context.Background(), X, y)
	if err == nil {
		t.Fatal("expected estimator failure to abort the search")
	}
}

func TestGridSearchCancellationReturnsPartialResult(t *testing.T) {
	X, y := cvData()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gs := NewGridSearchCV(scoreByC(map[float64]float64{0.1: 0.9}), DefaultLinearGrid())
	err := gs.Fit(ctx, X, y)

	var pse *errors.PartialSearchError
	if !errors.As(err, &pse) {
		t.Fatalf("expected PartialSearchError, got %v", err)
	}
	if pse.Total != 4 {
		t.Errorf("Total = %d, want 4", pse.Total)
	}
	if pse.Evaluated != 0 {
		t.Errorf("Evaluated = %d, want 0 for a pre-canceled context", pse.Evaluated)
	}
}

func TestGridSearchPredictBeforeFit(t *testing.T) {
	gs := NewGridSearchCV(scoreByC(nil), DefaultLinearGrid())
	_, err := gs.Predict(mat.NewDense(1, 1, nil))
	var nfe *errors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}
}

func TestDefaultGrids(t *testing.T) {
	linear := DefaultLinearGrid().Combinations()
	if len(linear) != 4 {
		t.Fatalf("linear grid has %d combinations, want 4", len(linear))
	}
	if linear[0].C != 0.1 || linear[3].C != 100 {
		t.Errorf("linear grid order = %v", linear)
	}

	rbf := DefaultRBFGrid().Combinations()
	if len(rbf) != 16 {
		t.Fatalf("rbf grid has %d combinations, want 16", len(rbf))
	}
	if rbf[0].C != 0.1 || rbf[0].Gamma != 1 {
		t.Errorf("rbf grid first entry = %v, want C=0.1 gamma=1", rbf[0])
	}
	for _, p := range rbf {
		if p.Kernel != "rbf" {
			t.Fatalf("unexpected kernel %q in rbf grid", p.Kernel)
		}
	}
}
