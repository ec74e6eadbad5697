package linearmodel

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// OLSOptions represents input options to run the OLS Regression
type OLSOptions struct {
	// FitIntercept adds a constant 1.0 feature as the first column if set to true
	FitIntercept bool
}

// Validate runs basic validation on OLS options
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}

	return o, nil
}

// NewDefaultOLSOptions returns a default set of OLS Regression options
func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression computes ordinary least squares for every target column using QR factorization
type OLSRegression struct {
	opt       *OLSOptions
	coef      *mat.Dense
	intercept []float64
}

// NewOLSRegression initializes an ordinary least squares model ready for fitting
func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

func withOnes(x mat.Matrix) mat.Matrix {
	m, _ := x.Dims()
	ones := make([]float64, m)
	floats.AddConst(1.0, ones)
	onesMx := mat.NewDense(1, m, ones)

	var xWithOnes mat.Dense
	xWithOnes.Stack(onesMx, x.T())
	return xWithOnes.T()
}

// Fit the model according to the given training data
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, n := x.Dims()

	ym, targets := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}

	if o.opt.FitIntercept {
		x = withOnes(x)
		_, n = x.Dims()
	}
	if m < n {
		return fmt.Errorf("got %d samples for %d coefficients, %w", m, n, ErrInsufficientSamples)
	}

	qr := new(mat.QR)
	qr.Factorize(x)

	q := new(mat.Dense)
	r := new(mat.Dense)

	qr.QTo(q)
	qr.RTo(r)
	yq := new(mat.Dense)
	yq.Mul(y.T(), q)

	// back substitution once per target column
	c := mat.NewDense(n, targets, nil)
	for k := 0; k < targets; k++ {
		for i := n - 1; i >= 0; i-- {
			ci := yq.At(k, i)
			for j := i + 1; j < n; j++ {
				ci -= c.At(j, k) * r.At(i, j)
			}
			c.Set(i, k, ci/r.At(i, i))
		}
	}

	o.intercept = make([]float64, targets)
	if o.opt.FitIntercept {
		mat.Row(o.intercept, 0, c)
		o.coef = mat.DenseCopyOf(c.Slice(1, n, 0, targets))
	} else {
		o.coef = c
	}

	return nil
}

// Predict using the OLS model
func (o *OLSRegression) Predict(x mat.Matrix) (*mat.Dense, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if o.coef == nil {
		return nil, ErrUntrainedModel
	}

	n, _ := o.coef.Dims()
	_, xn := x.Dims()
	if xn != n {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", xn, n, ErrFeatureLenMismatch)
	}

	res := new(mat.Dense)
	res.Mul(x, o.coef)
	rows, _ := res.Dims()
	for i := 0; i < rows; i++ {
		floats.Add(res.RawRowView(i), o.intercept)
	}
	return res, nil
}

// Score computes the coefficient of determination of the prediction for every target column
func (o *OLSRegression) Score(x, y mat.Matrix) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if y == nil {
		return nil, ErrNoTargetMatrix
	}

	res, err := o.Predict(x)
	if err != nil {
		return nil, err
	}
	return rSquaredCols(res, y)
}

// Intercept returns the computed intercept per target if FitIntercept is set to true. Defaults to 0.0 if not set.
func (o *OLSRegression) Intercept() []float64 {
	return copySlice(o.intercept)
}

// Coef returns the trained coefficients with one row per feature column and one column per target.
func (o *OLSRegression) Coef() *mat.Dense {
	return copyDense(o.coef)
}
