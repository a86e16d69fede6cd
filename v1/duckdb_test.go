package pca

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueryMatrix(t *testing.T) {
	db, err := OpenDuckDB("")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds, err := QueryMatrix(context.Background(), db,
		"SELECT CAST(a AS DOUBLE) AS a, CAST(b AS DOUBLE) AS b FROM (VALUES (1.0, 2.0), (3.0, 4.0), (5.0, 6.0)) t(a, b)")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ds.Names)

	n, d := ds.X.Dims()
	require.Equal(t, 3, n)
	require.Equal(t, 2, d)
	require.Equal(t, 4.0, ds.X.At(1, 1))
}

func TestQueryMatrixNoRows(t *testing.T) {
	db, err := OpenDuckDB("")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = QueryMatrix(context.Background(), db, "SELECT CAST(1.0 AS DOUBLE) AS a WHERE false")
	require.Error(t, err)
}

func TestQueryMatrixNonNumericColumn(t *testing.T) {
	db, err := OpenDuckDB("")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = QueryMatrix(context.Background(), db, "SELECT 'oops' AS a")
	require.Error(t, err)
}
