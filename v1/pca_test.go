package pca

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type PCATestSuite struct {
	suite.Suite
}

func TestPCA(t *testing.T) {
	suite.Run(t, new(PCATestSuite))
}

var solvers = []Solver{SolverSVD, SolverCovariance}

// The 10x2 dataset from Lindsay Smith's PCA tutorial. Its sample covariance
// eigenvalues are 1.28402771 and 0.0490833989.
func smithData() *mat.Dense {
	return mat.NewDense(10, 2, []float64{
		2.5, 2.4,
		0.5, 0.7,
		2.2, 2.9,
		1.9, 2.2,
		3.1, 3.0,
		2.3, 2.7,
		2.0, 1.6,
		1.0, 1.1,
		1.5, 1.6,
		1.1, 0.9,
	})
}

func lineData() *mat.Dense {
	return mat.NewDense(4, 2, []float64{
		0, 0,
		1, 1,
		2, 2,
		3, 3,
	})
}

func boxData() *mat.Dense {
	return mat.NewDense(6, 3, []float64{
		1.2, 0.5, 3.1,
		0.7, 1.8, 2.2,
		2.4, 0.9, 0.8,
		1.9, 2.2, 1.5,
		3.1, 1.4, 2.7,
		0.4, 2.9, 1.1,
	})
}

func (s *PCATestSuite) TestSmithEigenvalues() {
	for _, solver := range solvers {
		p := New(1, solver)
		err := p.Fit(smithData())
		s.Require().NoError(err)

		variances := p.Variances()
		s.Require().Len(variances, 2)
		s.InDelta(1.28402771, variances[0], 1e-6)
		s.InDelta(0.0490834, variances[1], 1e-6)
	}
}

func (s *PCATestSuite) TestSolversAgree() {
	x := boxData()

	cov := New(2, SolverCovariance)
	s.Require().NoError(cov.Fit(x))
	svd := New(2, SolverSVD)
	s.Require().NoError(svd.Fit(x))

	covVar := cov.Variances()
	svdVar := svd.Variances()
	s.Require().Len(covVar, 3)
	s.Require().Len(svdVar, 3)
	for i := range covVar {
		s.InDelta(covVar[i], svdVar[i], 1e-9)
	}

	// Directions may differ by sign between decompositions, so compare the
	// absolute value of the inner product of corresponding columns.
	covDir := cov.Directions()
	svdDir := svd.Directions()
	a := make([]float64, 3)
	b := make([]float64, 3)
	for j := 0; j < 3; j++ {
		mat.Col(a, j, covDir)
		mat.Col(b, j, svdDir)
		s.InDelta(1.0, math.Abs(floats.Dot(a, b)), 1e-9)
	}

	covRatio, err := cov.ExplainedVarianceRatio()
	s.Require().NoError(err)
	svdRatio, err := svd.ExplainedVarianceRatio()
	s.Require().NoError(err)
	s.InDelta(covRatio, svdRatio, 1e-12)
}

func (s *PCATestSuite) TestVariancesDescending() {
	for _, solver := range solvers {
		p := New(2, solver)
		s.Require().NoError(p.Fit(boxData()))

		variances := p.Variances()
		for i := 1; i < len(variances); i++ {
			s.LessOrEqual(variances[i], variances[i-1])
		}
	}
}

func (s *PCATestSuite) TestDirectionsOrthonormal() {
	for _, solver := range solvers {
		p := New(2, solver)
		s.Require().NoError(p.Fit(boxData()))

		dir := p.Directions()
		_, cols := dir.Dims()
		a := make([]float64, 3)
		b := make([]float64, 3)
		for i := 0; i < cols; i++ {
			mat.Col(a, i, dir)
			s.InDelta(1.0, floats.Norm(a, 2), 1e-9)
			for j := i + 1; j < cols; j++ {
				mat.Col(b, j, dir)
				s.InDelta(0.0, floats.Dot(a, b), 1e-9)
			}
		}
	}
}

func (s *PCATestSuite) TestPerfectLine() {
	for _, solver := range solvers {
		p := New(1, solver)
		s.Require().NoError(p.Fit(lineData()))

		variances := p.Variances()
		s.Require().Len(variances, 2)
		s.Greater(variances[0], 1.0)
		s.InDelta(0.0, variances[1], 1e-9)

		ratio, err := p.ExplainedVarianceRatio()
		s.Require().NoError(err)
		s.InDelta(1.0, ratio, 1e-12)
	}
}

func (s *PCATestSuite) TestRatioMonotone() {
	for _, solver := range solvers {
		prev := 0.0
		for k := 1; k <= 3; k++ {
			p := New(k, solver)
			s.Require().NoError(p.Fit(boxData()))

			ratio, err := p.ExplainedVarianceRatio()
			s.Require().NoError(err)
			s.GreaterOrEqual(ratio, prev)
			prev = ratio
		}
		s.InDelta(1.0, prev, 1e-12)
	}
}

func (s *PCATestSuite) TestRoundTrip() {
	for _, solver := range solvers {
		x := smithData()
		p := New(2, solver)
		projected, err := p.FitTransform(x)
		s.Require().NoError(err)

		restored, err := p.InverseTransform(projected)
		s.Require().NoError(err)

		n, d := x.Dims()
		for i := 0; i < n; i++ {
			for j := 0; j < d; j++ {
				s.InDelta(x.At(i, j), restored.At(i, j), 1e-8)
			}
		}
	}
}

func (s *PCATestSuite) TestFitTransformMatchesFitThenTransform() {
	x := smithData()

	p1 := New(2, SolverSVD)
	combined, err := p1.FitTransform(x)
	s.Require().NoError(err)

	p2 := New(2, SolverSVD)
	s.Require().NoError(p2.Fit(x))
	separate, err := p2.Transform(x)
	s.Require().NoError(err)

	n, d := combined.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			s.InDelta(separate.At(i, j), combined.At(i, j), 1e-12)
		}
	}
}

func (s *PCATestSuite) TestInputNotMutated() {
	x := smithData()
	want := mat.DenseCopyOf(x)

	p := New(2, SolverSVD)
	_, err := p.FitTransform(x)
	s.Require().NoError(err)
	s.True(mat.Equal(want, x))
}

func (s *PCATestSuite) TestNotFitted() {
	p := New(2, SolverSVD)

	_, err := p.Transform(smithData())
	s.ErrorIs(err, ErrNotFitted)

	_, err = p.InverseTransform(smithData())
	s.ErrorIs(err, ErrNotFitted)

	_, err = p.ExplainedVarianceRatio()
	s.ErrorIs(err, ErrNotFitted)

	s.Nil(p.Directions())
}

func (s *PCATestSuite) TestShapeMismatch() {
	p := New(2, SolverSVD)
	s.Require().NoError(p.Fit(smithData()))

	_, err := p.Transform(boxData())
	s.ErrorIs(err, ErrShapeMismatch)
}

func (s *PCATestSuite) TestTooFewObservations() {
	p := New(1, SolverSVD)
	err := p.Fit(mat.NewDense(1, 2, []float64{1, 2}))
	s.ErrorIs(err, ErrShapeMismatch)
}

func (s *PCATestSuite) TestDegenerateVariance() {
	constant := mat.NewDense(4, 2, []float64{
		1, 2,
		1, 2,
		1, 2,
		1, 2,
	})
	for _, solver := range solvers {
		p := New(1, solver)
		s.Require().NoError(p.Fit(constant))

		_, err := p.ExplainedVarianceRatio()
		s.ErrorIs(err, ErrDegenerateVariance)
	}
}

func (s *PCATestSuite) TestNonFiniteInput() {
	for _, v := range []float64{math.NaN(), math.Inf(1)} {
		x := smithData()
		x.Set(3, 1, v)
		for _, solver := range solvers {
			p := New(2, solver)
			err := p.Fit(x)
			s.ErrorIs(err, ErrDecomposition)
		}
	}
}

func (s *PCATestSuite) TestKExceedsFeatureCount() {
	p := New(5, SolverSVD)
	s.Require().NoError(p.Fit(smithData()))

	projected, err := p.Transform(smithData())
	s.Require().NoError(err)
	_, cols := projected.Dims()
	s.Equal(2, cols)

	ratio, err := p.ExplainedVarianceRatio()
	s.Require().NoError(err)
	s.InDelta(1.0, ratio, 1e-12)
}

func (s *PCATestSuite) TestFailedRefitKeepsPriorState() {
	p := New(2, SolverSVD)
	s.Require().NoError(p.Fit(smithData()))
	wantMean := p.Mean()

	bad := smithData()
	bad.Set(0, 0, math.NaN())
	s.ErrorIs(p.Fit(bad), ErrDecomposition)

	s.Equal(wantMean, p.Mean())
	_, err := p.Transform(smithData())
	s.NoError(err)
}

func (s *PCATestSuite) TestRefitOverwrites() {
	p := New(2, SolverCovariance)
	s.Require().NoError(p.Fit(smithData()))
	s.Len(p.Variances(), 2)

	s.Require().NoError(p.Fit(boxData()))
	s.Len(p.Variances(), 3)
	s.Len(p.Mean(), 3)
}
