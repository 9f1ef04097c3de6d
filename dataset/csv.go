package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// missingTokens are the cell values treated as missing on load.
var missingTokens = map[string]bool{
	"":    true,
	"NA":  true,
	"N/A": true,
	"NaN": true,
	"nan": true,
	"?":   true,
}

// ReadCSV loads a headered CSV file into a Table. A column is numeric when
// every non-missing cell parses as a float; otherwise it is categorical.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.ReadCSV: open %s", path)
	}
	defer func() { _ = f.Close() }()
	return ReadCSVFrom(f)
}

// ReadCSVFrom loads a headered CSV stream into a Table.
func ReadCSVFrom(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "dataset.ReadCSVFrom: read header")
	}

	raw := make([][]string, len(header))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "dataset.ReadCSVFrom: read record")
		}
		if len(record) != len(header) {
			return nil, errors.NewDimensionError("dataset.ReadCSVFrom", len(header), len(record), 1)
		}
		for j, cell := range record {
			raw[j] = append(raw[j], strings.TrimSpace(cell))
		}
	}
	if len(raw[0]) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.ReadCSVFrom")
	}

	cols := make([]Column, len(header))
	for j, name := range header {
		cols[j] = inferColumn(name, raw[j])
	}
	return New(cols...)
}

// inferColumn decides between a numeric and a categorical column. A column
// with only missing cells is kept numeric so the imputer can report it as a
// data-quality defect.
func inferColumn(name string, cells []string) Column {
	numeric := true
	for _, cell := range cells {
		if missingTokens[cell] {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			numeric = false
			break
		}
	}

	if numeric {
		floats := make([]float64, len(cells))
		for i, cell := range cells {
			if missingTokens[cell] {
				floats[i] = math.NaN()
				continue
			}
			v, _ := strconv.ParseFloat(cell, 64)
			floats[i] = v
		}
		return Column{Name: name, Kind: KindNumeric, Floats: floats}
	}

	strs := make([]string, len(cells))
	for i, cell := range cells {
		if missingTokens[cell] {
			strs[i] = ""
			continue
		}
		strs[i] = cell
	}
	return Column{Name: name, Kind: KindCategorical, Strings: strs}
}
