package metrics

import (
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func vec(vals ...float64) *mat.VecDense {
	return mat.NewVecDense(len(vals), vals)
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect predictions",
			yTrue: []float64{0, 1, 2, 1},
			yPred: []float64{0, 1, 2, 1},
			want:  1.0,
		},
		{
			name:  "half correct",
			yTrue: []float64{0, 1, 2, 1},
			yPred: []float64{0, 1, 0, 0},
			want:  0.5,
		},
		{
			name:  "all wrong",
			yTrue: []float64{0, 0},
			yPred: []float64{1, 1},
			want:  0.0,
		},
		{
			name:    "dimension mismatch",
			yTrue:   []float64{0, 1},
			yPred:   []float64{0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(vec(tt.yTrue...), vec(tt.yPred...))
			if (err != nil) != tt.wantErr {
				t.Errorf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfusionMatrixCanonicalOrdering(t *testing.T) {
	yTrue := vec(2, 0, 2, 1, 0)
	yPred := vec(2, 0, 1, 1, 2)

	cm, err := NewConfusionMatrix(yTrue, yPred, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(cm.Labels, []int{0, 1, 2}) {
		t.Fatalf("Labels = %v, want sorted [0 1 2]", cm.Labels)
	}
	want := [][]int{
		{1, 0, 1}, // true 0: one predicted 0, one predicted 2
		{0, 1, 0}, // true 1: predicted 1
		{0, 1, 1}, // true 2: one predicted 1, one predicted 2
	}
	if !reflect.DeepEqual(cm.Counts, want) {
		t.Errorf("Counts = %v, want %v", cm.Counts, want)
	}
}

func TestConfusionMatrixAbsentPredictedLabel(t *testing.T) {
	// Label 2 exists in training but never appears in test predictions.
	yTrue := vec(0, 1, 2)
	yPred := vec(0, 1, 1)

	cm, err := NewConfusionMatrix(yTrue, yPred, []int{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}

	for i := range cm.Labels {
		if cm.Counts[i][2] != 0 {
			t.Errorf("column for absent label should be zero, got %v", cm.Counts[i][2])
		}
	}
}

func TestClassificationReport(t *testing.T) {
	yTrue := vec(0, 0, 1, 1, 2, 2)
	yPred := vec(0, 0, 1, 0, 2, 1)

	report, err := NewClassificationReport(yTrue, yPred, nil)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(report.Accuracy-4.0/6.0) > 1e-9 {
		t.Errorf("Accuracy = %v, want %v", report.Accuracy, 4.0/6.0)
	}

	// Class 0: tp=2, fp=1, fn=0.
	c0 := report.PerClass[0]
	if math.Abs(c0.Precision-2.0/3.0) > 1e-9 {
		t.Errorf("class 0 precision = %v", c0.Precision)
	}
	if c0.Recall != 1.0 {
		t.Errorf("class 0 recall = %v", c0.Recall)
	}
	if c0.Support != 2 {
		t.Errorf("class 0 support = %v", c0.Support)
	}

	// Class 2: tp=1, fp=0, fn=1.
	c2 := report.PerClass[2]
	if c2.Precision != 1.0 {
		t.Errorf("class 2 precision = %v", c2.Precision)
	}
	if c2.Recall != 0.5 {
		t.Errorf("class 2 recall = %v", c2.Recall)
	}
	wantF1 := 2 * 1.0 * 0.5 / 1.5
	if math.Abs(c2.F1-wantF1) > 1e-9 {
		t.Errorf("class 2 F1 = %v, want %v", c2.F1, wantF1)
	}
}

func TestClassificationReportUndefinedMetricsDoNotCrash(t *testing.T) {
	// Label 2 never predicted: its precision is ill-defined and must come
	// back as 0, not NaN.
	yTrue := vec(0, 1, 2, 2)
	yPred := vec(0, 1, 0, 1)

	report, err := NewClassificationReport(yTrue, yPred, []int{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}

	c2 := report.PerClass[2]
	if c2.Precision != 0 || c2.Recall != 0 || c2.F1 != 0 {
		t.Errorf("absent label metrics = %+v, want zeros", c2)
	}
	for _, v := range []float64{report.MacroPrecision, report.MacroRecall, report.MacroF1,
		report.WeightedPrecision, report.WeightedRecall, report.WeightedF1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("aggregate metric is %v", v)
		}
	}
}
