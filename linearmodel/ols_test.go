package linearmodel

import (
	"testing"

	mat_ "github.com/aouyang1/go-pls/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestOLSOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *OLSOptions
		err      error
		expected *OLSOptions
	}{
		"nil": {nil, nil, NewDefaultOLSOptions()},
		"valid": {
			&OLSOptions{
				FitIntercept: true,
			}, nil,
			&OLSOptions{
				FitIntercept: true,
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, opt)
		})
	}
}

func TestOLSRegression(t *testing.T) {
	tol := 1e-5
	testData := map[string]struct {
		x         [][]float64
		y         [][]float64
		opt       *OLSOptions
		intercept []float64
		coef      [][]float64
	}{
		"ols model intercept": {
			x: [][]float64{
				{0, 0},
				{3, 5},
				{9, 20},
				{12, 6},
				{15, 10},
			},
			// y0 = 2 + 3*x0 + 4*x1, y1 = -1 + x0 - x1
			y: [][]float64{
				{2, -1},
				{31, -3},
				{109, -12},
				{62, 5},
				{87, 4},
			},
			intercept: []float64{2.0, -1.0},
			coef: [][]float64{
				{3.0, 1.0},
				{4.0, -1.0},
			},
		},
		"ols model no intercept": {
			x: [][]float64{
				{1, 0, 0},
				{1, 3, 5},
				{1, 9, 20},
				{1, 12, 6},
				{1, 15, 10},
			},
			y: [][]float64{
				{2},
				{31},
				{109},
				{62},
				{87},
			},
			opt: &OLSOptions{
				FitIntercept: false,
			},
			intercept: []float64{0.0},
			coef: [][]float64{
				{2.0},
				{3.0},
				{4.0},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x, err := mat_.NewDenseFromArray(td.x)
			require.Nil(t, err)
			y, err := mat_.NewDenseFromArray(td.y)
			require.Nil(t, err)
			coef, err := mat_.NewDenseFromArray(td.coef)
			require.Nil(t, err)

			model, err := NewOLSRegression(td.opt)
			require.Nil(t, err)

			testModel(t, model, x, y, td.intercept, coef, tol)
		})
	}
}

func TestOLSRegressionErrors(t *testing.T) {
	model, err := NewOLSRegression(nil)
	require.Nil(t, err)

	_, err = model.Predict(mat.NewDense(1, 2, nil))
	assert.ErrorIs(t, err, ErrUntrainedModel)

	err = model.Fit(mat.NewDense(3, 2, nil), mat.NewDense(2, 1, nil))
	assert.ErrorIs(t, err, ErrTargetLenMismatch)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	err = model.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), mat.NewDense(2, 1, nil))
	assert.ErrorIs(t, err, ErrInsufficientSamples)

	x, y := fourierCalibration(t, 20, testCoef, testIntercept, 0, 1)
	require.Nil(t, model.Fit(x, y))

	_, err = model.Predict(mat.NewDense(1, 3, nil))
	assert.ErrorIs(t, err, ErrFeatureLenMismatch)
}

func BenchmarkOLSRegression(b *testing.B) {
	x, y := generateBenchData(b, 1000, 100, 4)

	for b.Loop() {
		model, err := NewOLSRegression(
			&OLSOptions{
				FitIntercept: false,
			},
		)
		if err != nil {
			b.Error(err)
			continue
		}
		if err := model.Fit(x, y); err != nil {
			b.Error(err)
			continue
		}
	}
}
