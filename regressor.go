// Package pls fits multivariate partial least squares regressions with the PLS-SB algorithm and
// predicts outputs for new samples, either directly or through sequential deflation.
package pls

import (
	"errors"
	"fmt"
	"io"

	"github.com/aouyang1/go-pls/dataset"
	"github.com/aouyang1/go-pls/linearmodel"
	"github.com/aouyang1/go-pls/logger"
	mat_ "github.com/aouyang1/go-pls/mat"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoOptionsInModel    = fmt.Errorf("no options set in model, %w", linearmodel.ErrInvalidParameter)
	ErrModelOptionMismatch = fmt.Errorf("model options do not match the model weights, %w", linearmodel.ErrInvalidParameter)
	ErrLabelLenMismatch    = fmt.Errorf("label count does not match the number of variables, %w", linearmodel.ErrInvalidParameter)
	ErrNoTrainingData      = fmt.Errorf("no training data available, fit was not called, %w", linearmodel.ErrInvalidParameter)
)

// Regressor fits a PLS-SB model on calibration data and predicts outputs for new samples. Fit
// must complete before any concurrent calls to the prediction methods begin, after which any
// number of goroutines may predict at once.
type Regressor struct {
	opt *Options

	model *linearmodel.PLSSB

	xLabels []string
	yLabels []string

	fitTrainingData *dataset.Dataset
	fitted          *mat.Dense
	residual        *mat.Dense
	scores          []Scores
}

// New creates a new instance of a Regressor using the provided options. If no options are
// provided a default is used.
func New(opt *Options) (*Regressor, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid regressor options, %w", err)
	}
	return &Regressor{
		opt: opt,
	}, nil
}

// NewFromModel creates a new instance of Regressor from a pre-existing model. This should be
// generated from a previous regressor call to Model().
func NewFromModel(model Model) (*Regressor, error) {
	if model.Options == nil {
		return nil, ErrNoOptionsInModel
	}
	opt, err := model.Options.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid model options, %w", err)
	}

	pm, err := linearmodel.NewPLSSBFromWeights(model.Weights)
	if err != nil {
		return nil, fmt.Errorf("unable to load from model weights, %w", err)
	}
	if pm.Components() != opt.Components {
		return nil, fmt.Errorf("options request %d components but weights hold %d, %w",
			opt.Components, pm.Components(), ErrModelOptionMismatch)
	}

	r := &Regressor{
		opt:    opt,
		model:  pm,
		scores: model.Scores,
	}
	if err := r.SetLabels(model.XLabels, model.YLabels); err != nil {
		return nil, err
	}
	return r, nil
}

// SetLabels names the input and output variables. Either may be nil. Labels are checked against
// the variable counts of the fitted model.
func (r *Regressor) SetLabels(x, y []string) error {
	if r.model != nil {
		if x != nil && len(x) != r.model.XVariables() {
			return fmt.Errorf("got %d input labels for %d inputs, %w", len(x), r.model.XVariables(), ErrLabelLenMismatch)
		}
		if y != nil && len(y) != r.model.YVariables() {
			return fmt.Errorf("got %d output labels for %d outputs, %w", len(y), r.model.YVariables(), ErrLabelLenMismatch)
		}
	}
	r.xLabels = copyLabels(x)
	r.yLabels = copyLabels(y)
	return nil
}

func copyLabels(labels []string) []string {
	if labels == nil {
		return nil
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// Fit extracts the configured number of components from the calibration data x (one row per
// sample, one column per input) and y (one row per sample, one column per output)
func (r *Regressor) Fit(x, y [][]float64) error {
	ds, err := dataset.NewDataset(x, y)
	if err != nil {
		return fmt.Errorf("unable to create training dataset, %w, %w", err, linearmodel.ErrInvalidParameter)
	}
	xm, err := mat_.NewDenseFromArray(ds.X)
	if err != nil {
		return fmt.Errorf("unable to build training matrix, %w", err)
	}
	ym, err := mat_.NewDenseFromArray(ds.Y)
	if err != nil {
		return fmt.Errorf("unable to build target matrix, %w", err)
	}

	if (r.xLabels != nil && len(r.xLabels) != ds.XVariables()) || (r.yLabels != nil && len(r.yLabels) != ds.YVariables()) {
		return fmt.Errorf("labels do not match %d inputs and %d outputs, %w", ds.XVariables(), ds.YVariables(), ErrLabelLenMismatch)
	}

	logger.Log.Debug().
		Int("samples", ds.Samples()).
		Int("inputs", ds.XVariables()).
		Int("outputs", ds.YVariables()).
		Int("components", r.opt.Components).
		Msg("fitting pls-sb model")

	model, err := linearmodel.FitPLSSB(xm, ym, r.opt.Components)
	if err != nil {
		logger.Log.Error().Err(err).Bool("numeric", errors.Is(err, linearmodel.ErrNumeric)).Msg("unable to fit model")
		return fmt.Errorf("unable to fit pls-sb model, %w", err)
	}

	fitted, err := model.PredictWith(r.opt.Method, xm)
	if err != nil {
		return fmt.Errorf("unable to get predicted values from training set, %w", err)
	}
	scores, err := NewOutputScores(fitted, ym)
	if err != nil {
		return fmt.Errorf("unable to score fit, %w", err)
	}

	residual := new(mat.Dense)
	residual.Sub(ym, fitted)

	r.model = model
	r.fitTrainingData = ds
	r.fitted = fitted
	r.residual = residual
	r.scores = scores

	ev := model.Eigenvalues()
	logger.Log.Info().
		Int("components", model.Components()).
		Float64("largest_eigenvalue", ev[0]).
		Float64("smallest_eigenvalue", ev[len(ev)-1]).
		Msg("fit pls-sb model")
	return nil
}

// Predict returns the outputs for every row of z using the configured prediction method
func (r *Regressor) Predict(z [][]float64) ([][]float64, error) {
	return r.PredictWith(r.opt.Method, z)
}

// PredictWith returns the outputs for every row of z using the given prediction method
func (r *Regressor) PredictWith(method linearmodel.Method, z [][]float64) ([][]float64, error) {
	if r.model == nil {
		return nil, linearmodel.ErrUntrainedModel
	}
	zm, err := mat_.NewDenseFromArray(z)
	if err != nil {
		return nil, fmt.Errorf("unable to build design matrix, %w, %w", err, linearmodel.ErrInvalidParameter)
	}
	res, err := r.model.PredictWith(method, zm)
	if err != nil {
		return nil, fmt.Errorf("unable to predict, %w", err)
	}
	return mat_.ToArray(res), nil
}

// PredictSample returns the outputs of a single sample using the configured prediction method
func (r *Regressor) PredictSample(z []float64) ([]float64, error) {
	if r.model == nil {
		return nil, linearmodel.ErrUntrainedModel
	}
	if r.opt.Method == linearmodel.MethodIterative {
		return r.model.PredictSampleIterative(z)
	}
	return r.model.PredictSample(z)
}

// FitScores returns the per output scores of the fit against the calibration data
func (r *Regressor) FitScores() []Scores {
	if r.scores == nil {
		return nil
	}
	out := make([]Scores, len(r.scores))
	copy(out, r.scores)
	return out
}

// Residuals returns the difference between the calibration outputs and the fitted values, one
// row per sample
func (r *Regressor) Residuals() [][]float64 {
	if r.residual == nil {
		return nil
	}
	return mat_.ToArray(r.residual)
}

// Fitted returns the predictions for the calibration inputs
func (r *Regressor) Fitted() [][]float64 {
	if r.fitted == nil {
		return nil
	}
	return mat_.ToArray(r.fitted)
}

// TrainingData returns the calibration data used to fit the current model
func (r *Regressor) TrainingData() *dataset.Dataset {
	return r.fitTrainingData
}

// PLSSB returns the underlying fitted model, nil before Fit
func (r *Regressor) PLSSB() *linearmodel.PLSSB {
	return r.model
}

// Intercept returns the per output intercept of the affine form of the model
func (r *Regressor) Intercept() []float64 {
	if r.model == nil {
		return nil
	}
	return r.model.Intercept()
}

// Coefficients returns the combined coefficient matrix as one row per input and one column per
// output
func (r *Regressor) Coefficients() [][]float64 {
	if r.model == nil {
		return nil
	}
	return mat_.ToArray(r.model.Coef())
}

// BaselineR2 fits an ordinary least squares model with an intercept on the calibration data and
// returns its per output coefficient of determination. PLS-SB with every component supported by
// the data cannot do better in sample, so this bounds what adding components can gain.
func (r *Regressor) BaselineR2() ([]float64, error) {
	if r.fitTrainingData == nil {
		return nil, ErrNoTrainingData
	}
	x, err := mat_.NewDenseFromArray(r.fitTrainingData.X)
	if err != nil {
		return nil, err
	}
	y, err := mat_.NewDenseFromArray(r.fitTrainingData.Y)
	if err != nil {
		return nil, err
	}

	ols, err := linearmodel.NewOLSRegression(nil)
	if err != nil {
		return nil, err
	}
	if err := ols.Fit(x, y); err != nil {
		return nil, fmt.Errorf("unable to fit baseline, %w", err)
	}
	return ols.Score(x, y)
}

// Model generates a serializeable representation of the options, scores and prediction weights.
// This can be used to initialize a new Regressor for immediate predictions skipping the fit.
func (r *Regressor) Model() (Model, error) {
	if r.model == nil {
		return Model{}, linearmodel.ErrUntrainedModel
	}
	opt := *r.opt
	return Model{
		Options: &opt,
		XLabels: copyLabels(r.xLabels),
		YLabels: copyLabels(r.yLabels),
		Scores:  r.FitScores(),
		Weights: r.model.Weights(),
	}, nil
}

// PlotFit uses the Apache Echarts library to generate an html page comparing the actual and
// fitted values of every output, followed by the fit residuals
func (r *Regressor) PlotFit(w io.Writer) error {
	if r.fitTrainingData == nil {
		return ErrNoTrainingData
	}
	yLabels := labelsOrDefault(r.yLabels, "y", r.fitTrainingData.YVariables())

	actual, err := mat_.NewDenseFromArray(r.fitTrainingData.Y)
	if err != nil {
		return err
	}

	lines := make([]*charts.Line, 0, len(yLabels)+1)
	residuals := make([][]float64, len(yLabels))
	for j, label := range yLabels {
		lines = append(lines, LineFit(label, mat.Col(nil, j, actual), mat.Col(nil, j, r.fitted)))
		residuals[j] = mat.Col(nil, j, r.residual)
	}
	lines = append(lines, LineSeries("Fit Residual", yLabels, residuals))

	page := components.NewPage()
	for _, line := range lines {
		page.AddCharts(line)
	}
	return page.Render(w)
}
