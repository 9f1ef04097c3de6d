package report

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/sensorbench/metrics"
	"github.com/YuminosukeSato/sensorbench/pipeline"
)

// confusionGrid adapts a ConfusionMatrix to plotter.GridXYZ. Grid row 0 is
// drawn at the bottom, so true-label rows are flipped to keep the first
// class at the top, matching the printed matrix.
type confusionGrid struct {
	cm *metrics.ConfusionMatrix
}

func (g confusionGrid) Dims() (c, r int) {
	return len(g.cm.Labels), len(g.cm.Labels)
}

func (g confusionGrid) Z(c, r int) float64 {
	n := len(g.cm.Labels)
	return float64(g.cm.Counts[n-1-r][c])
}

func (g confusionGrid) X(c int) float64 { return float64(c) }
func (g confusionGrid) Y(r int) float64 { return float64(r) }

// classTicks labels integer axis positions with class names.
type classTicks struct {
	names   []string
	flipped bool
}

func (ct classTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, name := range ct.names {
		pos := float64(i)
		if ct.flipped {
			pos = float64(len(ct.names) - 1 - i)
		}
		if pos < min || pos > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: pos, Label: name})
	}
	return ticks
}

// SaveHeatmap renders the confusion matrix of a report as a PNG.
func SaveHeatmap(r pipeline.ModelReport, path string) error {
	p := plot.New()
	p.Title.Text = r.Family + " kernel confusion matrix"
	p.X.Label.Text = "predicted label"
	p.Y.Label.Text = "true label"

	hm := plotter.NewHeatMap(confusionGrid{cm: r.Report.Confusion}, palette.Heat(16, 1))
	p.Add(hm)

	names := make([]string, len(r.Report.Confusion.Labels))
	for i, code := range r.Report.Confusion.Labels {
		names[i] = className(r, code)
	}
	p.X.Tick.Marker = classTicks{names: names}
	p.Y.Tick.Marker = classTicks{names: names, flipped: true}

	return p.Save(5*vg.Inch, 5*vg.Inch, path)
}
