package pca

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
)

// Dataset is a named observation matrix: one row per observation, one column
// per feature.
type Dataset struct {
	Names []string
	X     *mat.Dense
}

// LoadCSV reads a dataset whose first row is the feature names and whose
// remaining rows are all numeric. Missing values are not handled: a cell
// that does not parse as a float is an error.
func LoadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)

	names, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	for i, name := range names {
		names[i] = strings.TrimSpace(name)
	}

	var data []float64
	n := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read csv row %d", n+1)
		}
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column %q is not numeric", n+1, names[i])
			}
			data = append(data, v)
		}
		n++
	}
	if n == 0 {
		return nil, errors.New("csv has no data rows")
	}

	return &Dataset{Names: names, X: mat.NewDense(n, len(names), data)}, nil
}
