package preprocessing

import (
	"sort"

	"github.com/YuminosukeSato/sensorbench/dataset"
	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// LabelEncoder maps string class labels to integer codes. Classes are
// assigned codes in sorted order, never map iteration order, so the encoding
// is stable across runs.
type LabelEncoder struct {
	classToInt map[string]int
	intToClass []string
}

// NewLabelEncoder creates an unfitted LabelEncoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit learns the label set from the given labels.
func (le *LabelEncoder) Fit(labels []string) {
	unique := make(map[string]bool)
	for _, l := range labels {
		unique[l] = true
	}

	le.intToClass = make([]string, 0, len(unique))
	for l := range unique {
		le.intToClass = append(le.intToClass, l)
	}
	sort.Strings(le.intToClass)

	le.classToInt = make(map[string]int, len(le.intToClass))
	for i, l := range le.intToClass {
		le.classToInt[l] = i
	}
}

// Transform encodes labels into integer codes.
func (le *LabelEncoder) Transform(labels []string) ([]int, error) {
	if le.classToInt == nil {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		code, ok := le.classToInt[l]
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform", "unknown label: "+l)
		}
		out[i] = code
	}
	return out, nil
}

// FitTransform fits on labels and returns their codes.
func (le *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	le.Fit(labels)
	return le.Transform(labels)
}

// InverseTransform decodes integer codes back into labels.
func (le *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	if le.intToClass == nil {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}
	out := make([]string, len(codes))
	for i, code := range codes {
		if code < 0 || code >= len(le.intToClass) {
			return nil, errors.Newf("sensorbench: LabelEncoder.InverseTransform: unknown code: %d", code)
		}
		out[i] = le.intToClass[code]
	}
	return out, nil
}

// Classes returns the learned labels in code order.
func (le *LabelEncoder) Classes() []string {
	out := make([]string, len(le.intToClass))
	copy(out, le.intToClass)
	return out
}

// OneHotEncoder expands categorical columns of a table into numeric
// indicator columns named "<column>=<category>". Categories are learned from
// the training table only; a category unseen during Fit encodes as all
// zeros rather than failing, since the test split may contain values the
// training split never produced.
type OneHotEncoder struct {
	columns    []string
	categories map[string][]string // column -> sorted categories
}

// NewOneHotEncoder creates an encoder for the given categorical columns.
func NewOneHotEncoder(columns []string) *OneHotEncoder {
	return &OneHotEncoder{columns: columns}
}

// Fit learns the category sets from the training table.
func (oe *OneHotEncoder) Fit(t *dataset.Table) error {
	oe.categories = make(map[string][]string, len(oe.columns))
	for _, name := range oe.columns {
		col, ok := t.Column(name)
		if !ok {
			return errors.NewValueError("OneHotEncoder.Fit", "no such column: "+name)
		}
		if col.Kind != dataset.KindCategorical {
			return errors.NewValueError("OneHotEncoder.Fit", "column is not categorical: "+name)
		}

		unique := make(map[string]bool)
		for i := 0; i < col.Len(); i++ {
			if col.Missing(i) {
				continue
			}
			unique[col.Strings[i]] = true
		}
		cats := make([]string, 0, len(unique))
		for c := range unique {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		oe.categories[name] = cats
	}
	return nil
}

// Transform returns a new table in which every encoded categorical column is
// replaced by its indicator columns. Column order is preserved: indicators
// appear where the source column stood.
func (oe *OneHotEncoder) Transform(t *dataset.Table) (*dataset.Table, error) {
	if oe.categories == nil {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}

	encode := make(map[string]bool, len(oe.columns))
	for _, name := range oe.columns {
		encode[name] = true
	}

	var cols []dataset.Column
	for _, name := range t.ColumnNames() {
		col, _ := t.Column(name)
		if !encode[name] {
			cols = append(cols, *col)
			continue
		}

		cats, ok := oe.categories[name]
		if !ok {
			return nil, errors.NewValueError("OneHotEncoder.Transform", "column not fitted: "+name)
		}
		for _, cat := range cats {
			indicator := dataset.Column{
				Name:   name + "=" + cat,
				Kind:   dataset.KindNumeric,
				Floats: make([]float64, col.Len()),
			}
			for i := 0; i < col.Len(); i++ {
				if col.Strings[i] == cat {
					indicator.Floats[i] = 1
				}
			}
			cols = append(cols, indicator)
		}
	}
	return dataset.New(cols...)
}

// FitTransform fits on t and returns the encoded table.
func (oe *OneHotEncoder) FitTransform(t *dataset.Table) (*dataset.Table, error) {
	if err := oe.Fit(t); err != nil {
		return nil, err
	}
	return oe.Transform(t)
}
