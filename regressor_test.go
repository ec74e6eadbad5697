package pls

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aouyang1/go-pls/dataset"
	"github.com/aouyang1/go-pls/linearmodel"
	mat_ "github.com/aouyang1/go-pls/mat"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var (
	exampleCoef = mat.NewDense(4, 2, []float64{
		1.0, 0.5,
		2.0, -1.0,
		0.0, 3.0,
		-1.5, 0.25,
	})
	exampleIntercept = []float64{10.0, -4.0}
)

// generateCalibration returns samples of an orthogonal design with outputs following
// exampleCoef and exampleIntercept
func generateCalibration(tb testing.TB, n int, noise float64, seed uint64) ([][]float64, [][]float64) {
	tb.Helper()
	x, err := dataset.GenerateFourierX(n, 4)
	require.Nil(tb, err)
	y, err := dataset.GenerateLinearY(x, exampleCoef, exampleIntercept, noise, dataset.NewRand(seed))
	require.Nil(tb, err)
	return mat_.ToArray(x), mat_.ToArray(y)
}

func TestRegressorFit(t *testing.T) {
	x, y := generateCalibration(t, 50, 1e-3, 1)

	testData := map[string]struct {
		opt *Options
	}{
		"direct":    {&Options{Components: 2, Method: linearmodel.MethodDirect}},
		"iterative": {&Options{Components: 2, Method: linearmodel.MethodIterative}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			r, err := New(td.opt)
			require.Nil(t, err)
			require.Nil(t, r.Fit(x, y))

			scores := r.FitScores()
			require.Len(t, scores, 2)
			for _, s := range scores {
				assert.Less(t, s.MSE, 1e-6)
				assert.InDelta(t, 1.0, s.R2, 1e-4)
			}

			assert.InDeltaSlice(t, exampleIntercept, r.Intercept(), 1e-2)
			coef := r.Coefficients()
			for i := range coef {
				assert.InDeltaSlice(t, exampleCoef.RawRowView(i), coef[i], 1e-2)
			}

			residuals, fitted := r.Residuals(), r.Fitted()
			require.Len(t, residuals, 50)
			require.Len(t, fitted, 50)
			for i := range residuals {
				for j := range residuals[i] {
					assert.InDelta(t, y[i][j], fitted[i][j]+residuals[i][j], 1e-12)
				}
			}

			z := []float64{0.3, -0.2, 0.5, 0.1}
			res, err := r.PredictSample(z)
			require.Nil(t, err)
			batch, err := r.Predict([][]float64{z})
			require.Nil(t, err)
			assert.InDeltaSlice(t, batch[0], res, 1e-12)
			assert.InDeltaSlice(t, []float64{9.75, -2.125}, res, 1e-2)
		})
	}
}

func TestRegressorFitDoesNotMutateInput(t *testing.T) {
	x, y := generateCalibration(t, 20, 1e-2, 2)
	xOrig := mat_.ToArray(mat.NewDense(20, 4, flatten(x)))

	r, err := New(&Options{Components: 2})
	require.Nil(t, err)
	require.Nil(t, r.Fit(x, y))
	assert.Equal(t, xOrig, x)

	// training data is a copy
	x[0][0] = 1e6
	assert.NotEqual(t, 1e6, r.TrainingData().X[0][0])
}

func flatten(rows [][]float64) []float64 {
	out := make([]float64, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

func TestRegressorErrors(t *testing.T) {
	x, y := generateCalibration(t, 20, 1e-2, 3)

	testData := map[string]struct {
		opt     *Options
		x       [][]float64
		y       [][]float64
		err     error
		numeric bool
	}{
		"no samples":          {&Options{Components: 1}, nil, y, dataset.ErrNoTrainingData, false},
		"row mismatch":        {&Options{Components: 1}, x[:10], y, dataset.ErrDatasetLenMismatch, false},
		"too many components": {&Options{Components: 5}, x, y, linearmodel.ErrInvalidComponents, false},
		"degenerate": {
			&Options{Components: 2},
			[][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}},
			[][]float64{{1}, {3}, {2}, {5}},
			linearmodel.ErrDegenerateComponent,
			true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			r, err := New(td.opt)
			require.Nil(t, err)

			err = r.Fit(td.x, td.y)
			require.ErrorIs(t, err, td.err)
			assert.Equal(t, td.numeric, errors.Is(err, linearmodel.ErrNumeric))
			assert.Equal(t, !td.numeric, errors.Is(err, linearmodel.ErrInvalidParameter))
			assert.Nil(t, r.PLSSB())
		})
	}

	r, err := New(nil)
	require.Nil(t, err)
	_, err = r.Predict(x)
	assert.ErrorIs(t, err, linearmodel.ErrUntrainedModel)
	_, err = r.PredictSample(x[0])
	assert.ErrorIs(t, err, linearmodel.ErrUntrainedModel)
	_, err = r.Model()
	assert.ErrorIs(t, err, linearmodel.ErrUntrainedModel)
	assert.ErrorIs(t, r.PlotFit(&bytes.Buffer{}), ErrNoTrainingData)

	require.Nil(t, r.Fit(x, y))
	_, err = r.Predict([][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, linearmodel.ErrFeatureLenMismatch)
	_, err = r.Predict(nil)
	assert.ErrorIs(t, err, linearmodel.ErrInvalidParameter)

	_, err = New(&Options{Components: 0})
	assert.ErrorIs(t, err, linearmodel.ErrInvalidComponents)
}

func TestRegressorLabels(t *testing.T) {
	x, y := generateCalibration(t, 20, 1e-2, 4)

	r, err := New(&Options{Components: 2})
	require.Nil(t, err)
	require.Nil(t, r.SetLabels([]string{"a", "b"}, nil))
	assert.ErrorIs(t, r.Fit(x, y), ErrLabelLenMismatch)

	require.Nil(t, r.SetLabels([]string{"a", "b", "c", "d"}, []string{"u", "v"}))
	require.Nil(t, r.Fit(x, y))
	assert.ErrorIs(t, r.SetLabels(nil, []string{"u"}), ErrLabelLenMismatch)

	m, err := r.Model()
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, m.XLabels)
	assert.Equal(t, []string{"u", "v"}, m.YLabels)
}

func TestRegressorModelRoundTrip(t *testing.T) {
	x, y := generateCalibration(t, 40, 1e-2, 5)

	r, err := New(&Options{Components: 3, Method: linearmodel.MethodIterative})
	require.Nil(t, err)
	require.Nil(t, r.Fit(x, y))

	m, err := r.Model()
	require.Nil(t, err)
	data, err := json.Marshal(m)
	require.Nil(t, err)
	assert.Contains(t, string(data), `"method":"iterative"`)

	var restored Model
	require.Nil(t, json.Unmarshal(data, &restored))
	assert.Equal(t, linearmodel.MethodIterative, restored.Options.Method)

	rr, err := NewFromModel(restored)
	require.Nil(t, err)
	assert.Equal(t, r.FitScores(), rr.FitScores())

	expected, err := r.Predict(x)
	require.Nil(t, err)
	res, err := rr.Predict(x)
	require.Nil(t, err)
	assert.Equal(t, expected, res)

	_, err = NewFromModel(Model{})
	assert.ErrorIs(t, err, ErrNoOptionsInModel)
	assert.ErrorIs(t, err, linearmodel.ErrInvalidParameter)

	mismatch := m
	mismatch.Options = &Options{Components: 2}
	_, err = NewFromModel(mismatch)
	assert.ErrorIs(t, err, ErrModelOptionMismatch)

	broken := m
	broken.Weights.B = nil
	_, err = NewFromModel(broken)
	assert.ErrorIs(t, err, linearmodel.ErrInvalidWeights)
}

func TestRegressorConcurrentPredict(t *testing.T) {
	x, y := generateCalibration(t, 50, 1e-2, 6)

	r, err := New(&Options{Components: 2})
	require.Nil(t, err)
	require.Nil(t, r.Fit(x, y))

	expected, err := r.Predict(x)
	require.Nil(t, err)

	var wg sync.WaitGroup
	results := make([][][]float64, 8)
	errs := make([]error, 8)
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.Predict(x)
		}(i)
	}
	wg.Wait()

	for i := range 8 {
		require.Nil(t, errs[i])
		assert.Equal(t, expected, results[i])
	}
}

func TestRegressorPlotFit(t *testing.T) {
	x, y := generateCalibration(t, 20, 1e-2, 7)

	r, err := New(&Options{Components: 2})
	require.Nil(t, err)
	require.Nil(t, r.SetLabels(nil, []string{"response", "other"}))
	require.Nil(t, r.Fit(x, y))

	var buf bytes.Buffer
	require.Nil(t, r.PlotFit(&buf))
	out := buf.String()
	assert.True(t, strings.Contains(out, "response Fit"))
	assert.True(t, strings.Contains(out, "Fit Residual"))
}

func TestRegressorBaselineR2(t *testing.T) {
	x, y := generateCalibration(t, 40, 0.5, 8)

	r, err := New(&Options{Components: 1})
	require.Nil(t, err)
	_, err = r.BaselineR2()
	assert.ErrorIs(t, err, ErrNoTrainingData)
	assert.ErrorIs(t, err, linearmodel.ErrInvalidParameter)

	for _, g := range []int{1, 2, 4} {
		r, err := New(&Options{Components: g})
		require.Nil(t, err)
		require.Nil(t, r.Fit(x, y))

		baseline, err := r.BaselineR2()
		require.Nil(t, err)
		require.Len(t, baseline, 2)
		for j, s := range r.FitScores() {
			assert.LessOrEqual(t, s.R2, baseline[j]+1e-9, "components %d output %d", g, j)
			if g == 4 {
				assert.InDelta(t, baseline[j], s.R2, 1e-9, "full rank output %d", j)
			}
		}
	}
}
