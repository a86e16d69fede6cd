package pca

import (
	"math"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/negrel/assert"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PCA projects observations onto an orthonormal basis of principal
// directions ordered by the variance each one explains.
//
// A PCA value is not safe for concurrent Fit calls. Once fitted, any number
// of goroutines may call Transform, InverseTransform and
// ExplainedVarianceRatio concurrently; none of them mutate the model.
type PCA struct {
	// K is the number of requested components. It is not validated against
	// the feature count: Transform always returns every fitted component and
	// callers slice to the first K columns, while ExplainedVarianceRatio
	// clamps K to the number of fitted components.
	K int

	// Solver selects the decomposition strategy. The zero value is SolverSVD.
	Solver Solver

	mean       []float64
	variances  []float64
	directions *mat.Dense // d x p, column j is the j-th principal direction
}

// New returns an unfitted model for the top k components.
func New(k int, solver Solver) *PCA {
	return &PCA{K: k, Solver: solver}
}

// Fit computes the principal directions of x (n observations by d features).
// The input is never mutated; centering works on a copy. Model state is
// replaced only when the whole fit succeeds, so a failed re-fit leaves the
// previous fit intact.
func (p *PCA) Fit(x mat.Matrix) error {
	n, d := x.Dims()
	if n < 2 {
		return errors.Wrapf(ErrShapeMismatch, "need at least 2 observations, got %d", n)
	}
	if err := checkFinite(x); err != nil {
		return err
	}

	mean := columnMeans(x)
	centered := center(x, mean)

	var variances []float64
	var directions *mat.Dense
	var err error
	switch p.Solver {
	case SolverCovariance:
		variances, directions, err = fitCovariance(centered)
	case SolverSVD:
		variances, directions, err = fitSVD(centered)
	default:
		return errors.Newf("unknown solver %v", p.Solver)
	}
	if err != nil {
		return err
	}

	rows, cols := directions.Dims()
	assert.Equal(d, rows)
	assert.Equal(len(variances), cols)

	p.mean = mean
	p.variances = variances
	p.directions = directions
	return nil
}

// Transform re-centers x by the fit-time mean and projects it onto every
// fitted direction. The output is n x p with columns ordered by descending
// variance; slicing to the first K columns is the caller's job.
//
// The fit-time mean is used on purpose: re-centering by the mean of the data
// being transformed would project training and new data inconsistently.
func (p *PCA) Transform(x mat.Matrix) (*mat.Dense, error) {
	if p.directions == nil {
		return nil, errors.Wrap(ErrNotFitted, "transform")
	}
	n, d := x.Dims()
	if d != len(p.mean) {
		return nil, errors.Wrapf(ErrShapeMismatch, "input has %d features, model was fitted on %d", d, len(p.mean))
	}

	_, cols := p.directions.Dims()
	projected := mat.NewDense(n, cols, nil)
	projected.Mul(center(x, p.mean), p.directions)
	return projected, nil
}

// FitTransform fits on x and projects the same x, with the same per-feature
// mean used for both steps.
func (p *PCA) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	if err := p.Fit(x); err != nil {
		return nil, err
	}
	return p.Transform(x)
}

// InverseTransform maps projected coordinates back to feature space via the
// transpose projection and adds the fit-time mean. With the full set of
// directions this inverts Transform up to floating-point error.
func (p *PCA) InverseTransform(y mat.Matrix) (*mat.Dense, error) {
	if p.directions == nil {
		return nil, errors.Wrap(ErrNotFitted, "inverse transform")
	}
	n, k := y.Dims()
	d, cols := p.directions.Dims()
	if k != cols {
		return nil, errors.Wrapf(ErrShapeMismatch, "input has %d columns, model has %d directions", k, cols)
	}

	restored := mat.NewDense(n, d, nil)
	restored.Mul(y, p.directions.T())
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			restored.Set(i, j, restored.At(i, j)+p.mean[j])
		}
	}
	return restored, nil
}

// ExplainedVarianceRatio reports the fraction of total variance captured by
// the top K components. K greater than the number of fitted components
// clamps, so the ratio saturates at 1.
func (p *PCA) ExplainedVarianceRatio() (float64, error) {
	if p.variances == nil {
		return 0, errors.Wrap(ErrNotFitted, "explained variance ratio")
	}
	total := floats.Sum(p.variances)
	if total == 0 {
		return 0, ErrDegenerateVariance
	}

	k := p.K
	if k < 0 {
		k = 0
	}
	if k > len(p.variances) {
		k = len(p.variances)
	}
	return floats.Sum(p.variances[:k]) / total, nil
}

// Variances returns a copy of the per-component variances, descending.
func (p *PCA) Variances() []float64 {
	return slices.Clone(p.variances)
}

// Mean returns a copy of the per-feature mean computed at fit time.
func (p *PCA) Mean() []float64 {
	return slices.Clone(p.mean)
}

// Directions returns a copy of the fitted directions, one unit-norm column
// per component, ordered by descending variance.
func (p *PCA) Directions() *mat.Dense {
	if p.directions == nil {
		return nil
	}
	return mat.DenseCopyOf(p.directions)
}

func columnMeans(x mat.Matrix) []float64 {
	n, d := x.Dims()
	mean := make([]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		mean[j] = floats.Sum(col) / float64(n)
	}
	return mean
}

func center(x mat.Matrix, mean []float64) *mat.Dense {
	n, d := x.Dims()
	centered := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			centered.Set(i, j, x.At(i, j)-mean[j])
		}
	}
	return centered
}

func checkFinite(x mat.Matrix) error {
	n, d := x.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			if v := x.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Wrapf(ErrDecomposition, "non-finite value %v at row %d, column %d", v, i, j)
			}
		}
	}
	return nil
}
