package selection

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// correlatedData builds a matrix where "signal" tracks the label, "noise" is
// independent of it, and "constant" never varies.
func correlatedData(n int) (*mat.Dense, []int) {
	rng := rand.New(rand.NewPCG(1, 1))
	X := mat.NewDense(n, 3, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		y[i] = i % 3
		X.Set(i, 0, float64(y[i])+rng.Float64()*0.1) // signal
		X.Set(i, 1, rng.Float64())                   // noise
		X.Set(i, 2, 1.0)                             // constant
	}
	return X, y
}

func TestSelectByTargetKeepsInformativeFeatures(t *testing.T) {
	X, y := correlatedData(90)
	names := []string{"signal", "noise", "constant"}

	sel := NewCorrelationSelector(names)
	if err := sel.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	got, err := sel.FeatureSet()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"signal"}) {
		t.Errorf("FeatureSet() = %v, want [signal]", got)
	}
}

func TestSelectionDeterministic(t *testing.T) {
	X, y := correlatedData(60)
	names := []string{"signal", "noise", "constant"}

	first := NewCorrelationSelector(names)
	if err := first.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	second := NewCorrelationSelector(names)
	if err := second.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	a, _ := first.FeatureSet()
	b, _ := second.FeatureSet()
	if !reflect.DeepEqual(a, b) {
		t.Errorf("re-running selection changed the feature set: %v vs %v", a, b)
	}
}

func TestSelectionOutputIsSubsetInOriginalOrder(t *testing.T) {
	n := 80
	rng := rand.New(rand.NewPCG(2, 2))
	X := mat.NewDense(n, 4, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		y[i] = i % 2
		X.Set(i, 0, float64(y[i]))
		X.Set(i, 1, rng.Float64())
		X.Set(i, 2, float64(y[i])*2+rng.Float64()*0.05)
		X.Set(i, 3, rng.Float64())
	}
	names := []string{"a", "b", "c", "d"}

	sel := NewCorrelationSelector(names)
	if err := sel.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	got, _ := sel.FeatureSet()
	if !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("FeatureSet() = %v, want [a c]", got)
	}
}

func TestSelectByMaxInterFeature(t *testing.T) {
	n := 50
	rng := rand.New(rand.NewPCG(3, 3))
	X := mat.NewDense(n, 3, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		y[i] = i % 2
		base := rng.Float64()
		X.Set(i, 0, base)                      // pair member
		X.Set(i, 1, base*3+0.01*rng.Float64()) // highly correlated with column 0
		X.Set(i, 2, rng.Float64())             // uncorrelated with everything
	}
	names := []string{"p", "q", "lone"}

	sel := NewCorrelationSelector(names, WithMode(ByMaxInterFeature), WithThreshold(0.9))
	if err := sel.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	got, _ := sel.FeatureSet()
	if !reflect.DeepEqual(got, []string{"p", "q"}) {
		t.Errorf("FeatureSet() = %v, want [p q]", got)
	}
}

func TestProjectAppliesSameColumnsToAnyMatrix(t *testing.T) {
	X, y := correlatedData(60)
	names := []string{"signal", "noise", "constant"}

	sel := NewCorrelationSelector(names)
	if err := sel.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	test := mat.NewDense(2, 3, []float64{
		10, 20, 30,
		40, 50, 60,
	})
	proj, err := sel.Project(test)
	if err != nil {
		t.Fatal(err)
	}
	r, c := proj.Dims()
	if r != 2 || c != 1 {
		t.Fatalf("Project() dims = %dx%d, want 2x1", r, c)
	}
	if proj.At(0, 0) != 10 || proj.At(1, 0) != 40 {
		t.Errorf("Project() kept wrong column: %v, %v", proj.At(0, 0), proj.At(1, 0))
	}
}

func TestNoFeaturePassesThreshold(t *testing.T) {
	n := 40
	rng := rand.New(rand.NewPCG(4, 4))
	X := mat.NewDense(n, 2, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		y[i] = i % 2
		X.Set(i, 0, rng.Float64())
		X.Set(i, 1, rng.Float64())
	}

	sel := NewCorrelationSelector([]string{"a", "b"}, WithThreshold(0.99))
	if err := sel.Fit(X, y); err == nil {
		t.Error("Fit should fail when no feature passes the threshold")
	}
}
