package preprocessing

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/sensorbench/dataset"
	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// Oversampler rebalances class frequencies by resampling every minority
// class with replacement up to the majority-class count. The majority class
// passes through unchanged; ties for the majority are broken by canonical
// sorted label order. Resampling and the final shuffle share one explicit
// seeded generator, so the result is reproducible bit-for-bit.
type Oversampler struct {
	labelColumn string
	seed        uint64
}

// NewOversampler creates an Oversampler for the given label column and seed.
func NewOversampler(labelColumn string, seed uint64) *Oversampler {
	return &Oversampler{labelColumn: labelColumn, seed: seed}
}

// Balance returns a new table in which every label has exactly the
// majority-class row count. The concatenated result is uniformly shuffled to
// destroy the per-class grouping. A single-class table cannot be rebalanced
// and fails with DataQualityError.
func (o *Oversampler) Balance(t *dataset.Table) (*dataset.Table, error) {
	dist, err := t.ClassDistribution(o.labelColumn)
	if err != nil {
		return nil, err
	}
	if len(dist) < 2 {
		return nil, errors.NewDataQualityError("balance", o.labelColumn, "dataset contains a single class")
	}

	labels, err := t.Labels(o.labelColumn)
	if err != nil {
		return nil, err
	}

	// Row indices per label, in original row order.
	byLabel := make(map[string][]int, len(dist))
	for i, l := range labels {
		byLabel[l] = append(byLabel[l], i)
	}

	sorted := dataset.SortedLabels(dist)
	majority := sorted[0]
	for _, l := range sorted[1:] {
		if dist[l] > dist[majority] {
			majority = l
		}
	}
	target := dist[majority]

	rng := rand.New(rand.NewPCG(o.seed, o.seed))

	rows := make([]int, 0, target*len(sorted))
	for _, l := range sorted {
		idx := byLabel[l]
		if l == majority {
			rows = append(rows, idx...)
			continue
		}
		// Draw target samples with replacement from this label's rows.
		for i := 0; i < target; i++ {
			rows = append(rows, idx[rng.IntN(len(idx))])
		}
	}

	rng.Shuffle(len(rows), func(i, j int) {
		rows[i], rows[j] = rows[j], rows[i]
	})

	// Select rebuilds the table, which also resets any positional ordering
	// carried over from the source rows.
	return t.Select(rows), nil
}
