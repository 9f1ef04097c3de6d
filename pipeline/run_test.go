package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// writeBenchmarkCSV produces an imbalanced three-class file whose first and
// third features track the class while the second is pure noise, so the
// pipeline has real work to do at every stage: imputation (a few holes),
// balancing, scaling, and selection.
func writeBenchmarkCSV(t *testing.T) string {
	t.Helper()
	rng := rand.New(rand.NewPCG(5, 5))

	var sb strings.Builder
	sb.WriteString("f1,f2,f3,label\n")
	counts := map[string]int{"A": 30, "B": 20, "C": 10}
	classIdx := map[string]float64{"A": 0, "B": 1, "C": 2}
	row := 0
	for _, label := range []string{"A", "B", "C"} {
		for i := 0; i < counts[label]; i++ {
			f1 := fmt.Sprintf("%g", classIdx[label]*4+rng.Float64()*0.5)
			if row%17 == 0 {
				f1 = "" // missing, later imputed
			}
			fmt.Fprintf(&sb, "%s,%g,%g,%s\n",
				f1,
				rng.Float64(),
				classIdx[label]*-3+rng.Float64()*0.5,
				label)
			row++
		}
	}

	path := filepath.Join(t.TempDir(), "bench.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func TestRunEndToEnd(t *testing.T) {
	cfg := &Config{Input: writeBenchmarkCSV(t), Label: "label"}
	cfg.ApplyDefaults()

	reports, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	linear, rbf := reports[0], reports[1]
	require.Equal(t, "linear", linear.Family)
	require.Equal(t, "rbf", rbf.Family)

	// Full grids were evaluated.
	require.False(t, linear.Partial)
	require.Len(t, linear.Results, 4)
	require.Equal(t, 4, linear.Evaluated)
	require.False(t, rbf.Partial)
	require.Len(t, rbf.Results, 16)

	require.Equal(t, []string{"A", "B", "C"}, linear.ClassNames)
	require.NotEmpty(t, linear.Features)
	require.Equal(t, "linear", linear.BestParams.Kernel)
	require.Equal(t, "rbf", rbf.BestParams.Kernel)

	// The informative features make the classes linearly separable.
	require.GreaterOrEqual(t, linear.Report.Accuracy, 0.8)
	require.GreaterOrEqual(t, rbf.Report.Accuracy, 0.5)
	require.Len(t, linear.Report.Confusion.Labels, 3)
}

func TestRunDeterministicForSeed(t *testing.T) {
	path := writeBenchmarkCSV(t)
	cfg := &Config{Input: path, Label: "label"}
	cfg.ApplyDefaults()

	first, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	second, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	for i := range first {
		require.Equal(t, first[i].BestParams, second[i].BestParams)
		require.Equal(t, first[i].BestCVScore, second[i].BestCVScore)
		require.Equal(t, first[i].Report.Accuracy, second[i].Report.Accuracy)
		require.Equal(t, first[i].Report.Confusion.Counts, second[i].Report.Confusion.Counts)
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := &Config{Input: writeBenchmarkCSV(t), Label: "label"}
	cfg.ApplyDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg)
	var pse *errors.PartialSearchError
	require.ErrorAs(t, err, &pse)
}

func TestRunValidatesConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing input", Config{Label: "label"}},
		{"missing label", Config{Input: "x.csv"}},
		{"bad fraction", Config{Input: "x.csv", Label: "label", TestFraction: 1.5}},
		{"bad mode", Config{Input: "x.csv", Label: "label", SelectionMode: "chi2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			_, err := Run(context.Background(), &tc.cfg)
			var ve *errors.ValueError
			require.ErrorAs(t, err, &ve)
		})
	}
}
