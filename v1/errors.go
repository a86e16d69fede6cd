package pca

import "github.com/cockroachdb/errors"

var (
	// ErrDecomposition reports that the underlying eigen-decomposition or SVD
	// failed to converge or was handed non-finite input. Retrying without
	// changing the input is pointless.
	ErrDecomposition = errors.New("decomposition failed")

	// ErrNotFitted reports a projection or variance query on a model that has
	// not completed a successful Fit.
	ErrNotFitted = errors.New("model is not fitted")

	// ErrShapeMismatch reports input whose dimensions disagree with the
	// fitted model.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDegenerateVariance reports constant input data: total variance is
	// zero, so no explained-variance ratio exists.
	ErrDegenerateVariance = errors.New("total variance is zero")
)
