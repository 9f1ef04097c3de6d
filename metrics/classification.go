// Package metrics provides the classification scoring functions consumed by
// the evaluator: accuracy, confusion matrix, and per-label
// precision/recall/F1. Labels are integer class codes; ordering is always
// the canonical ascending code order.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// Accuracy computes the fraction of exact label matches.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionMatrix holds label-by-label prediction counts. Rows index the
// true label, columns the predicted label, both in Labels order.
type ConfusionMatrix struct {
	Labels []int
	Counts [][]int
}

// NewConfusionMatrix builds a confusion matrix over the given label set,
// sorted ascending. When labels is nil the set is the union of the labels
// appearing in yTrue and yPred. A label that never appears in the
// predictions simply has a zero column.
func NewConfusionMatrix(yTrue, yPred *mat.VecDense, labels []int) (*ConfusionMatrix, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError("NewConfusionMatrix", "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("NewConfusionMatrix", n, yPred.Len(), 0)
	}

	if labels == nil {
		seen := make(map[int]bool)
		for i := 0; i < n; i++ {
			seen[int(yTrue.AtVec(i))] = true
			seen[int(yPred.AtVec(i))] = true
		}
		for l := range seen {
			labels = append(labels, l)
		}
	} else {
		labels = append([]int(nil), labels...)
	}
	sort.Ints(labels)

	index := make(map[int]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}
	for i := 0; i < n; i++ {
		ti, tok := index[int(yTrue.AtVec(i))]
		pi, pok := index[int(yPred.AtVec(i))]
		if tok && pok {
			counts[ti][pi]++
		}
	}

	return &ConfusionMatrix{Labels: labels, Counts: counts}, nil
}

// ClassMetrics holds the per-label scores of a classification report.
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// ClassificationReport is the terminal evaluation artifact: accuracy,
// confusion matrix, and per-label precision/recall/F1 with macro and
// support-weighted averages.
type ClassificationReport struct {
	Accuracy  float64
	Confusion *ConfusionMatrix
	PerClass  map[int]ClassMetrics

	MacroPrecision    float64
	MacroRecall       float64
	MacroF1           float64
	WeightedPrecision float64
	WeightedRecall    float64
	WeightedF1        float64
}

// NewClassificationReport scores predictions against the true labels. An
// ill-defined metric (a label with no predictions, or no true rows) is set
// to zero and reported through UndefinedMetricWarning instead of dividing
// by zero.
func NewClassificationReport(yTrue, yPred *mat.VecDense, labels []int) (*ClassificationReport, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	cm, err := NewConfusionMatrix(yTrue, yPred, labels)
	if err != nil {
		return nil, err
	}

	report := &ClassificationReport{
		Accuracy:  acc,
		Confusion: cm,
		PerClass:  make(map[int]ClassMetrics, len(cm.Labels)),
	}

	totalSupport := 0
	for i, label := range cm.Labels {
		tp := cm.Counts[i][i]
		fp, fn := 0, 0
		for j := range cm.Labels {
			if j == i {
				continue
			}
			fp += cm.Counts[j][i]
			fn += cm.Counts[i][j]
		}
		support := tp + fn

		precision, ok := safeDivide(float64(tp), float64(tp+fp))
		if !ok {
			errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted samples", 0))
		}
		recall, ok := safeDivide(float64(tp), float64(tp+fn))
		if !ok {
			errors.Warn(errors.NewUndefinedMetricWarning("recall", "no true samples", 0))
		}
		f1, _ := safeDivide(2*precision*recall, precision+recall)

		report.PerClass[label] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support,
		}

		report.MacroPrecision += precision
		report.MacroRecall += recall
		report.MacroF1 += f1
		report.WeightedPrecision += precision * float64(support)
		report.WeightedRecall += recall * float64(support)
		report.WeightedF1 += f1 * float64(support)
		totalSupport += support
	}

	nLabels := float64(len(cm.Labels))
	report.MacroPrecision /= nLabels
	report.MacroRecall /= nLabels
	report.MacroF1 /= nLabels
	if totalSupport > 0 {
		report.WeightedPrecision /= float64(totalSupport)
		report.WeightedRecall /= float64(totalSupport)
		report.WeightedF1 /= float64(totalSupport)
	}

	return report, nil
}

// safeDivide returns numerator/denominator, or (0, false) when the quotient
// is undefined.
func safeDivide(numerator, denominator float64) (float64, bool) {
	if denominator == 0 {
		return 0, false
	}
	v := numerator / denominator
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
