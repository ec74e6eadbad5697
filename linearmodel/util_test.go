package linearmodel

import (
	"math"
	"testing"

	"github.com/aouyang1/go-pls/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var (
	// coefficients mapping 4 inputs onto 2 outputs with full column rank
	testCoef = mat.NewDense(4, 2, []float64{
		1.0, 0.5,
		2.0, -1.0,
		0.0, 3.0,
		-1.5, 0.25,
	})
	testIntercept = []float64{10.0, -4.0}
)

func testModel(t *testing.T, model Model, x, y mat.Matrix, intercept []float64, coef mat.Matrix, tol float64) {
	err := model.Fit(x, y)
	require.Nil(t, err)

	assert.InDeltaSlice(t, intercept, model.Intercept(), tol, "intercept")
	assertMatrixInDelta(t, coef, model.Coef(), tol, "coefficients")

	r2, err := model.Score(x, y)
	require.Nil(t, err)
	for _, r := range r2 {
		assert.InDelta(t, 1.0, r, tol, "score")
	}
}

func assertMatrixInDelta(t *testing.T, expected, actual mat.Matrix, tol float64, msg string) {
	t.Helper()
	er, ec := expected.Dims()
	ar, ac := actual.Dims()
	require.Equal(t, er, ar, "%s rows", msg)
	require.Equal(t, ec, ac, "%s cols", msg)
	for i := 0; i < er; i++ {
		assert.InDeltaSlice(t, mat.Row(nil, i, expected), mat.Row(nil, i, actual), tol, "%s row %d", msg, i)
	}
}

// assertMatrixRelClose checks every element agrees within tol relative to its magnitude, or
// absolutely for values below 1
func assertMatrixRelClose(t *testing.T, expected, actual mat.Matrix, tol float64, msg string) {
	t.Helper()
	er, ec := expected.Dims()
	ar, ac := actual.Dims()
	require.Equal(t, er, ar, "%s rows", msg)
	require.Equal(t, ec, ac, "%s cols", msg)
	for i := 0; i < er; i++ {
		for j := 0; j < ec; j++ {
			e, a := expected.At(i, j), actual.At(i, j)
			scale := math.Max(1.0, math.Abs(e))
			assert.LessOrEqual(t, math.Abs(e-a)/scale, tol, "%s at %d,%d: %g vs %g", msg, i, j, e, a)
		}
	}
}

// fourierCalibration builds calibration data whose centered inputs are mutually orthogonal so
// that the latent scores of every extracted component are orthogonal too
func fourierCalibration(tb testing.TB, n int, coef mat.Matrix, intercept []float64, noise float64, seed uint64) (*mat.Dense, *mat.Dense) {
	tb.Helper()
	p, _ := coef.Dims()
	x, err := dataset.GenerateFourierX(n, p)
	require.Nil(tb, err)

	y, err := dataset.GenerateLinearY(x, coef, intercept, noise, dataset.NewRand(seed))
	require.Nil(tb, err)
	return x, y
}

func uniformCalibration(tb testing.TB, n int, coef mat.Matrix, intercept []float64, noise float64, seed uint64) (*mat.Dense, *mat.Dense) {
	tb.Helper()
	p, _ := coef.Dims()
	rng := dataset.NewRand(seed)
	x := dataset.GenerateUniformX(n, p, 1.0, rng)

	y, err := dataset.GenerateLinearY(x, coef, intercept, noise, rng)
	require.Nil(tb, err)
	return x, y
}

func generateBenchData(tb testing.TB, nObs, nFeat, nTarget int) (mat.Matrix, mat.Matrix) {
	rng := dataset.NewRand(1)
	coef := dataset.GenerateUniformX(nFeat, nTarget, 2.0, rng)
	x := dataset.GenerateUniformX(nObs, nFeat, 1.0, rng)
	y, err := dataset.GenerateLinearY(x, coef, nil, 0.1, rng)
	require.Nil(tb, err)
	return x, y
}
