// Package dataset provides the tabular data model flowing through the
// pipeline: ordered named columns, each numeric or categorical, with one
// designated label column. Tables are immutable from the caller's view;
// every transformation returns a new Table.
package dataset

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// Kind distinguishes numeric from categorical columns.
type Kind int

const (
	// KindNumeric marks a float64 column. Missing entries are NaN.
	KindNumeric Kind = iota
	// KindCategorical marks a string column. Missing entries are "".
	KindCategorical
)

// Column is a single named column. Exactly one of Floats or Strings is
// populated, matching Kind.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// Missing reports whether row i holds a missing value.
func (c *Column) Missing(i int) bool {
	if c.Kind == KindNumeric {
		return math.IsNaN(c.Floats[i])
	}
	return c.Strings[i] == ""
}

// clone returns a deep copy of the column.
func (c *Column) clone() Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == KindNumeric {
		out.Floats = make([]float64, len(c.Floats))
		copy(out.Floats, c.Floats)
	} else {
		out.Strings = make([]string, len(c.Strings))
		copy(out.Strings, c.Strings)
	}
	return out
}

// Table is an ordered sequence of rows over a fixed column set.
type Table struct {
	cols  []Column
	index map[string]int
	nRows int
}

// New creates a Table from columns. All columns must have the same length
// and unique names.
func New(cols ...Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.New")
	}
	n := cols[0].Len()
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if c.Len() != n {
			return nil, errors.NewDimensionError("dataset.New", n, c.Len(), 0)
		}
		if _, dup := index[c.Name]; dup {
			return nil, errors.NewValueError("dataset.New", "duplicate column name: "+c.Name)
		}
		index[c.Name] = i
	}
	return &Table{cols: cols, index: index, nRows: n}, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nRows }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.cols) }

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or false when absent.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.cols[i], true
}

// NumericColumnNames returns the names of numeric columns in table order,
// excluding any names listed in exclude.
func (t *Table) NumericColumnNames(exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}
	var names []string
	for _, c := range t.cols {
		if c.Kind == KindNumeric && !skip[c.Name] {
			names = append(names, c.Name)
		}
	}
	return names
}

// CategoricalColumnNames returns the names of categorical columns in table
// order, excluding any names listed in exclude.
func (t *Table) CategoricalColumnNames(exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}
	var names []string
	for _, c := range t.cols {
		if c.Kind == KindCategorical && !skip[c.Name] {
			names = append(names, c.Name)
		}
	}
	return names
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cols := make([]Column, len(t.cols))
	for i := range t.cols {
		cols[i] = t.cols[i].clone()
	}
	out, _ := New(cols...)
	return out
}

// Select returns a new table containing the given rows, in order. Row
// indices may repeat, which is how oversampling duplicates rows.
func (t *Table) Select(rows []int) *Table {
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		out := Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == KindNumeric {
			out.Floats = make([]float64, len(rows))
			for j, r := range rows {
				out.Floats[j] = c.Floats[r]
			}
		} else {
			out.Strings = make([]string, len(rows))
			for j, r := range rows {
				out.Strings[j] = c.Strings[r]
			}
		}
		cols[i] = out
	}
	sel, _ := New(cols...)
	return sel
}

// Labels returns the string representation of the label column, one entry
// per row. Numeric labels are formatted with the shortest exact
// representation so equal values always map to the same string.
func (t *Table) Labels(name string) ([]string, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, errors.NewValueError("Table.Labels", "no such column: "+name)
	}
	if col.Kind == KindCategorical {
		out := make([]string, t.nRows)
		copy(out, col.Strings)
		return out, nil
	}
	out := make([]string, t.nRows)
	for i, v := range col.Floats {
		if math.IsNaN(v) {
			return nil, errors.NewDataQualityError("labels", name, "missing label value")
		}
		out[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return out, nil
}

// ClassDistribution returns the row count per label value. It is recomputed
// on every call; the table carries no derived state.
func (t *Table) ClassDistribution(label string) (map[string]int, error) {
	labels, err := t.Labels(label)
	if err != nil {
		return nil, err
	}
	dist := make(map[string]int)
	for _, l := range labels {
		dist[l]++
	}
	return dist, nil
}

// SortedLabels returns the distribution's label values in canonical sorted
// order. Iteration order over the map is not deterministic; every tie-break
// in the pipeline goes through this ordering instead.
func SortedLabels(dist map[string]int) []string {
	labels := make([]string, 0, len(dist))
	for l := range dist {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Matrix assembles the named numeric columns into a dense row-major matrix.
// Categorical columns and columns with missing values are rejected: matrices
// are only built after imputation and encoding.
func (t *Table) Matrix(features []string) (*mat.Dense, error) {
	if len(features) == 0 {
		return nil, errors.NewValueError("Table.Matrix", "no feature columns given")
	}
	m := mat.NewDense(t.nRows, len(features), nil)
	for j, name := range features {
		col, ok := t.Column(name)
		if !ok {
			return nil, errors.NewValueError("Table.Matrix", "no such column: "+name)
		}
		if col.Kind != KindNumeric {
			return nil, errors.NewValueError("Table.Matrix", "column is not numeric: "+name)
		}
		for i, v := range col.Floats {
			if math.IsNaN(v) {
				return nil, errors.NewDataQualityError("matrix", name, "missing value after imputation")
			}
			m.Set(i, j, v)
		}
	}
	return m, nil
}
