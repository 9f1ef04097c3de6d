// Package report renders pipeline results for the terminal and to disk.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/YuminosukeSato/sensorbench/pipeline"
)

// WriteSummary prints one comparison row per kernel family.
func WriteSummary(w io.Writer, reports []pipeline.ModelReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Family", "Best Params", "CV Accuracy", "Test Accuracy", "Grid", "Duration"})

	for _, r := range reports {
		grid := fmt.Sprintf("%d/%d", r.Evaluated, r.Total)
		if r.Partial {
			grid += " (partial)"
		}
		t.AppendRow(table.Row{
			r.Family,
			r.BestParams.String(),
			fmt.Sprintf("%.4f", r.BestCVScore),
			fmt.Sprintf("%.4f", r.Report.Accuracy),
			grid,
			r.Duration.Round(time.Millisecond),
		})
	}
	t.Render()
}

// WriteReport prints the per-class metrics and the confusion matrix of one
// kernel family.
func WriteReport(w io.Writer, r pipeline.ModelReport) {
	fmt.Fprintf(w, "\n%s kernel — test accuracy %.4f\n", r.Family, r.Report.Accuracy)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Label", "Precision", "Recall", "F1", "Support"})
	for _, code := range r.Report.Confusion.Labels {
		m := r.Report.PerClass[code]
		t.AppendRow(table.Row{
			className(r, code),
			fmt.Sprintf("%.4f", m.Precision),
			fmt.Sprintf("%.4f", m.Recall),
			fmt.Sprintf("%.4f", m.F1),
			m.Support,
		})
	}
	t.AppendFooter(table.Row{
		"macro avg",
		fmt.Sprintf("%.4f", r.Report.MacroPrecision),
		fmt.Sprintf("%.4f", r.Report.MacroRecall),
		fmt.Sprintf("%.4f", r.Report.MacroF1),
		"",
	})
	t.AppendFooter(table.Row{
		"weighted avg",
		fmt.Sprintf("%.4f", r.Report.WeightedPrecision),
		fmt.Sprintf("%.4f", r.Report.WeightedRecall),
		fmt.Sprintf("%.4f", r.Report.WeightedF1),
		"",
	})
	t.Render()

	writeConfusion(w, r)
}

// writeConfusion prints the confusion matrix, true labels down the side and
// predicted labels across the top.
func writeConfusion(w io.Writer, r pipeline.ModelReport) {
	cm := r.Report.Confusion

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"true \\ pred"}
	for _, code := range cm.Labels {
		header = append(header, className(r, code))
	}
	t.AppendHeader(header)

	for i, code := range cm.Labels {
		row := table.Row{className(r, code)}
		for j := range cm.Labels {
			row = append(row, cm.Counts[i][j])
		}
		t.AppendRow(row)
	}
	t.Render()
}

// className resolves an integer code back to the input label, falling back
// to the code itself when the mapping is absent.
func className(r pipeline.ModelReport, code int) string {
	if code >= 0 && code < len(r.ClassNames) {
		return r.ClassNames[code]
	}
	return fmt.Sprintf("%d", code)
}
