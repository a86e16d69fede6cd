package pca

import (
	"sort"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Solver selects the decomposition used to derive principal directions from
// a centered data matrix.
type Solver int

const (
	// SolverSVD decomposes the centered data matrix directly. Preferred for
	// ill-conditioned or rank-deficient data: forming the covariance matrix
	// squares the data, which amplifies floating-point error; SVD avoids it.
	SolverSVD Solver = iota

	// SolverCovariance forms the sample covariance matrix of the centered
	// data and eigen-decomposes it.
	SolverCovariance
)

func (s Solver) String() string {
	switch s {
	case SolverSVD:
		return "svd"
	case SolverCovariance:
		return "covariance"
	default:
		return "unknown"
	}
}

// ParseSolver maps a CLI/config string to a Solver. The empty string selects
// the SVD default.
func ParseSolver(s string) (Solver, error) {
	switch s {
	case "", "svd":
		return SolverSVD, nil
	case "covariance", "cov":
		return SolverCovariance, nil
	default:
		return 0, errors.Newf("unknown solver %q, want svd or covariance", s)
	}
}

// fitCovariance eigen-decomposes the sample covariance (divisor n-1) of the
// already-centered matrix. The symmetric solver yields real eigenpairs by
// construction, so no imaginary residue needs discarding. Eigenvalues come
// out ascending and are explicitly reordered to descending.
//
// For repeated eigenvalues the basis of the tied subspace is
// decomposition-dependent; only its span is stable across implementations.
func fitCovariance(centered *mat.Dense) ([]float64, *mat.Dense, error) {
	_, d := centered.Dims()

	cov := mat.NewSymDense(d, nil)
	stat.CovarianceMatrix(cov, centered, nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return nil, nil, errors.Wrap(ErrDecomposition, "eigen-decomposition of covariance matrix did not converge")
	}

	variances := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	return orderDescending(variances, &vectors), &vectors, nil
}

// fitSVD takes the thin SVD of the centered matrix and rescales the squared
// singular values by 1/(n-1) so they are comparable to covariance
// eigenvalues. Singular values are descending by contract, but that is
// verified rather than trusted.
func fitSVD(centered *mat.Dense) ([]float64, *mat.Dense, error) {
	n, _ := centered.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThinV); !ok {
		return nil, nil, errors.Wrap(ErrDecomposition, "svd did not converge")
	}

	sigma := svd.Values(nil)
	var vectors mat.Dense
	svd.VTo(&vectors)

	variances := make([]float64, len(sigma))
	for i, s := range sigma {
		variances[i] = s * s / float64(n-1)
	}
	if !sort.IsSorted(sort.Reverse(sort.Float64Slice(variances))) {
		variances = orderDescending(variances, &vectors)
	}
	return variances, &vectors, nil
}

// orderDescending jointly reorders variances and the corresponding columns
// of directions so index 0 is the highest-variance direction. Returns the
// reordered variances; directions is permuted in place.
func orderDescending(variances []float64, directions *mat.Dense) []float64 {
	idx := make([]int, len(variances))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return variances[idx[a]] > variances[idx[b]]
	})

	rows, cols := directions.Dims()
	ordered := make([]float64, len(variances))
	permuted := mat.NewDense(rows, cols, nil)
	for j, src := range idx {
		ordered[j] = variances[src]
		for i := 0; i < rows; i++ {
			permuted.Set(i, j, directions.At(i, src))
		}
	}
	directions.Copy(permuted)
	return ordered
}
