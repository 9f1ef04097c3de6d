package modelselection

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sensorbench/dataset"
	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// TrainTestSplit partitions a table into disjoint train and test tables,
// drawing a proportional share of every class into the test set. The split is
// deterministic for a given seed: rows are shuffled per class with a seeded
// PCG source and the selected indices are re-sorted into original row order.
//
// Classes with fewer than two rows, or whose allocation would leave either
// side empty, fail with InsufficientDataError.
func TrainTestSplit(t *dataset.Table, label string, testFraction float64, seed uint64) (train, test *dataset.Table, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, errors.NewValueError("train_test_split", "testFraction must be in (0, 1)")
	}

	labels, err := t.Labels(label)
	if err != nil {
		return nil, nil, err
	}

	// Group row indices by class, visiting classes in sorted label order so
	// the shared random stream is consumed identically on every run.
	byClass := make(map[string][]int)
	for i, l := range labels {
		byClass[l] = append(byClass[l], i)
	}
	classes := make([]string, 0, len(byClass))
	for l := range byClass {
		classes = append(classes, l)
	}
	sort.Strings(classes)

	rng := rand.New(rand.NewPCG(seed, seed))
	var trainRows, testRows []int
	for _, class := range classes {
		rows := byClass[class]
		if len(rows) < 2 {
			return nil, nil, errors.NewInsufficientDataError("train_test_split", class, len(rows), testFraction)
		}
		testCount := int(math.Round(testFraction * float64(len(rows))))
		if testCount == 0 || testCount == len(rows) {
			return nil, nil, errors.NewInsufficientDataError("train_test_split", class, len(rows), testFraction)
		}

		shuffled := make([]int, len(rows))
		copy(shuffled, rows)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		testRows = append(testRows, shuffled[:testCount]...)
		trainRows = append(trainRows, shuffled[testCount:]...)
	}

	sort.Ints(trainRows)
	sort.Ints(testRows)
	return t.Select(trainRows), t.Select(testRows), nil
}

// Fold is a single train/test index pair produced by a splitter.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// StratifiedKFold yields k folds that preserve the class proportions of y.
// Folds are deterministic for a given seed.
type StratifiedKFold struct {
	NSplits int
	Seed    uint64
}

// NewStratifiedKFold creates a stratified splitter. Fewer than two splits
// falls back to the default of five.
func NewStratifiedKFold(nSplits int, seed uint64) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &StratifiedKFold{NSplits: nSplits, Seed: seed}
}

// Split generates stratified train/test indices for each fold. y is a column
// matrix of class codes.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) []Fold {
	nSamples, _ := X.Dims()

	byClass := make(map[float64][]int)
	for i := 0; i < nSamples; i++ {
		label := y.At(i, 0)
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]float64, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	sort.Float64s(classes)

	rng := rand.New(rand.NewPCG(skf.Seed, skf.Seed))
	folds := make([]Fold, skf.NSplits)

	// Shuffle within each class, then deal the class round-robin style across
	// folds so every fold keeps roughly the full class ratio.
	for _, label := range classes {
		indices := byClass[label]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		foldSize := len(indices) / skf.NSplits
		remainder := len(indices) % skf.NSplits
		cursor := 0
		for f := 0; f < skf.NSplits; f++ {
			take := foldSize
			if f < remainder {
				take++
			}
			folds[f].TestIndices = append(folds[f].TestIndices, indices[cursor:cursor+take]...)
			cursor += take
		}
	}

	for f := range folds {
		sort.Ints(folds[f].TestIndices)
		inTest := make(map[int]bool, len(folds[f].TestIndices))
		for _, idx := range folds[f].TestIndices {
			inTest[idx] = true
		}
		folds[f].TrainIndices = make([]int, 0, nSamples-len(folds[f].TestIndices))
		for i := 0; i < nSamples; i++ {
			if !inTest[i] {
				folds[f].TrainIndices = append(folds[f].TrainIndices, i)
			}
		}
	}

	return folds
}

// subset copies the rows named by indices out of X and y.
func subset(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	_, xCols := X.Dims()
	xs := mat.NewDense(len(indices), xCols, nil)
	ys := mat.NewDense(len(indices), 1, nil)
	for i, idx := range indices {
		for j := 0; j < xCols; j++ {
			xs.Set(i, j, X.At(idx, j))
		}
		ys.Set(i, 0, y.At(idx, 0))
	}
	return xs, ys
}
