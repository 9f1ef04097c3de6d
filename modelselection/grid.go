package modelselection

import (
	"strconv"
)

// Params is one point of a hyper-parameter grid. Gamma is meaningful only for
// the RBF kernel and is zero otherwise.
type Params struct {
	Kernel string
	C      float64
	Gamma  float64
}

func (p Params) String() string {
	s := "kernel=" + p.Kernel + " C=" + strconv.FormatFloat(p.C, 'g', -1, 64)
	if p.Kernel == "rbf" {
		s += " gamma=" + strconv.FormatFloat(p.Gamma, 'g', -1, 64)
	}
	return s
}

// ParamGrid is an ordered list of candidate parameter combinations. Order is
// load-bearing: grid search breaks score ties in favor of the earliest entry.
type ParamGrid struct {
	combinations []Params
}

// NewParamGrid builds a grid from explicit combinations in the given order.
func NewParamGrid(combinations ...Params) *ParamGrid {
	return &ParamGrid{combinations: combinations}
}

// LinearGrid enumerates the linear kernel over the given C values.
func LinearGrid(cs ...float64) *ParamGrid {
	g := &ParamGrid{}
	for _, c := range cs {
		g.combinations = append(g.combinations, Params{Kernel: "linear", C: c})
	}
	return g
}

// RBFGrid enumerates the full cross product of C and gamma values for the RBF
// kernel, C-major.
func RBFGrid(cs, gammas []float64) *ParamGrid {
	g := &ParamGrid{}
	for _, c := range cs {
		for _, gamma := range gammas {
			g.combinations = append(g.combinations, Params{Kernel: "rbf", C: c, Gamma: gamma})
		}
	}
	return g
}

// Concat joins grids into one, preserving each grid's internal order.
func Concat(grids ...*ParamGrid) *ParamGrid {
	out := &ParamGrid{}
	for _, g := range grids {
		out.combinations = append(out.combinations, g.combinations...)
	}
	return out
}

// Combinations returns the grid entries in declaration order.
func (g *ParamGrid) Combinations() []Params {
	out := make([]Params, len(g.combinations))
	copy(out, g.combinations)
	return out
}

// Len returns the number of combinations.
func (g *ParamGrid) Len() int { return len(g.combinations) }

// DefaultLinearGrid is the benchmark search space for the linear kernel.
func DefaultLinearGrid() *ParamGrid {
	return LinearGrid(0.1, 1, 10, 100)
}

// DefaultRBFGrid is the benchmark search space for the RBF kernel: the same
// regularization values crossed with four kernel widths, 16 combinations.
func DefaultRBFGrid() *ParamGrid {
	return RBFGrid([]float64{0.1, 1, 10, 100}, []float64{1, 0.1, 0.01, 0.001})
}
