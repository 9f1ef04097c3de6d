package modelselection

import (
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sensorbench/dataset"
	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// labeledTable builds a table with the given per-label row counts, one
// distinct numeric value per row.
func labeledTable(t *testing.T, counts map[string]int) *dataset.Table {
	t.Helper()
	var xs []float64
	var ys []string
	i := 0.0
	for _, label := range dataset.SortedLabels(counts) {
		for j := 0; j < counts[label]; j++ {
			xs = append(xs, i)
			ys = append(ys, label)
			i++
		}
	}
	tbl, err := dataset.New(
		dataset.Column{Name: "x", Kind: dataset.KindNumeric, Floats: xs},
		dataset.Column{Name: "label", Kind: dataset.KindCategorical, Strings: ys},
	)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestTrainTestSplitStratifiedProportions(t *testing.T) {
	tbl := labeledTable(t, map[string]int{"A": 100, "B": 100, "C": 100})

	train, test, err := TrainTestSplit(tbl, "label", 0.2, 42)
	if err != nil {
		t.Fatal(err)
	}

	if train.NumRows() != 240 || test.NumRows() != 60 {
		t.Fatalf("split sizes = %d/%d, want 240/60", train.NumRows(), test.NumRows())
	}

	testDist, err := test.ClassDistribution("label")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"A": 20, "B": 20, "C": 20}
	if !reflect.DeepEqual(testDist, want) {
		t.Errorf("test distribution = %v, want %v", testDist, want)
	}
}

func TestTrainTestSplitDisjoint(t *testing.T) {
	tbl := labeledTable(t, map[string]int{"A": 30, "B": 20})

	train, test, err := TrainTestSplit(tbl, "label", 0.2, 7)
	if err != nil {
		t.Fatal(err)
	}

	// Row values are unique, so overlap shows up as a repeated value.
	seen := make(map[float64]bool)
	for _, tb := range []*dataset.Table{train, test} {
		col, _ := tb.Column("x")
		for _, v := range col.Floats {
			if seen[v] {
				t.Fatalf("row %v appears in both splits", v)
			}
			seen[v] = true
		}
	}
	if len(seen) != 50 {
		t.Errorf("splits cover %d rows, want all 50", len(seen))
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	tbl := labeledTable(t, map[string]int{"A": 40, "B": 25})

	train1, _, err := TrainTestSplit(tbl, "label", 0.2, 42)
	if err != nil {
		t.Fatal(err)
	}
	train2, _, err := TrainTestSplit(tbl, "label", 0.2, 42)
	if err != nil {
		t.Fatal(err)
	}
	x1, _ := train1.Column("x")
	x2, _ := train2.Column("x")
	if !reflect.DeepEqual(x1.Floats, x2.Floats) {
		t.Error("same seed produced different train rows")
	}

	train3, _, err := TrainTestSplit(tbl, "label", 0.2, 43)
	if err != nil {
		t.Fatal(err)
	}
	x3, _ := train3.Column("x")
	if reflect.DeepEqual(x1.Floats, x3.Floats) {
		t.Error("different seeds produced identical train rows")
	}
}

func TestTrainTestSplitInsufficientClass(t *testing.T) {
	cases := []struct {
		name   string
		counts map[string]int
	}{
		{"single row class", map[string]int{"A": 50, "B": 1}},
		{"empty test allocation", map[string]int{"A": 50, "B": 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := TrainTestSplit(labeledTable(t, tc.counts), "label", 0.2, 1)
			var ide *errors.InsufficientDataError
			if !errors.As(err, &ide) {
				t.Fatalf("expected InsufficientDataError, got %v", err)
			}
		})
	}
}

func TestTrainTestSplitBadFraction(t *testing.T) {
	tbl := labeledTable(t, map[string]int{"A": 10, "B": 10})
	for _, fraction := range []float64{0, 1, -0.5, 1.5} {
		_, _, err := TrainTestSplit(tbl, "label", fraction, 1)
		var ve *errors.ValueError
		if !errors.As(err, &ve) {
			t.Errorf("fraction %v: expected ValueError, got %v", fraction, err)
		}
	}
}

func TestStratifiedKFoldPreservesClassRatio(t *testing.T) {
	// 40 samples of class 0, 20 of class 1.
	X := mat.NewDense(60, 1, nil)
	y := mat.NewDense(60, 1, nil)
	for i := 40; i < 60; i++ {
		y.Set(i, 0, 1)
	}

	folds := NewStratifiedKFold(5, 42).Split(X, y)
	if len(folds) != 5 {
		t.Fatalf("got %d folds, want 5", len(folds))
	}

	covered := make(map[int]int)
	for f, fold := range folds {
		if len(fold.TrainIndices)+len(fold.TestIndices) != 60 {
			t.Errorf("fold %d: train+test = %d, want 60", f, len(fold.TrainIndices)+len(fold.TestIndices))
		}
		zeros, ones := 0, 0
		for _, idx := range fold.TestIndices {
			if y.At(idx, 0) == 0 {
				zeros++
			} else {
				ones++
			}
			covered[idx]++
		}
		if zeros != 8 || ones != 4 {
			t.Errorf("fold %d test class counts = %d/%d, want 8/4", f, zeros, ones)
		}
	}
	// Every sample is tested exactly once across folds.
	for i := 0; i < 60; i++ {
		if covered[i] != 1 {
			t.Fatalf("sample %d appears in %d test folds, want 1", i, covered[i])
		}
	}
}

func TestStratifiedKFoldDeterministic(t *testing.T) {
	X := mat.NewDense(30, 1, nil)
	y := mat.NewDense(30, 1, nil)
	for i := 15; i < 30; i++ {
		y.Set(i, 0, 1)
	}

	first := NewStratifiedKFold(5, 9).Split(X, y)
	second := NewStratifiedKFold(5, 9).Split(X, y)
	if !reflect.DeepEqual(first, second) {
		t.Error("same seed produced different folds")
	}
}
