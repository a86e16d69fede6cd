package pca

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/marcboeker/go-duckdb/v2"
	"gonum.org/v1/gonum/mat"
)

// OpenDuckDB opens a DuckDB database. An empty dsn opens an in-memory one.
func OpenDuckDB(dsn string) (*sql.DB, error) {
	if len(dsn) == 0 {
		dsn = ":memory:"
	}

	connector, err := duckdb.NewConnector(dsn, nil)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open duckdb")
	}
	return sql.OpenDB(connector), nil
}

// QueryMatrix runs query and scans the result set into a Dataset. Every
// selected column must be numeric; column names become feature names.
func QueryMatrix(ctx context.Context, db *sql.DB, query string) (*Dataset, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	d := len(names)
	values := make([]float64, d)
	dest := make([]any, d)
	for i := range values {
		dest[i] = &values[i]
	}

	var data []float64
	n := 0
	for rows.Next() {
		if err = rows.Scan(dest...); err != nil {
			return nil, errors.Wrapf(err, "row %d is not numeric", n)
		}
		data = append(data, values...)
		n++
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.New("query returned no rows")
	}

	return &Dataset{Names: names, X: mat.NewDense(n, d, data)}, nil
}
