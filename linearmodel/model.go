// Package linearmodel is a collection of multivariate linear regression fitting implementations.
// The partial least squares model extracts latent components with a single eigendecomposition
// (PLS-SB) and the ordinary least squares model serves as a full rank baseline.
package linearmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Model is a fitted linear map from a design matrix with one row per sample to a target matrix
// with one row per sample and one column per output variable.
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) (*mat.Dense, error)
	Score(x, y mat.Matrix) ([]float64, error)
	Intercept() []float64
	Coef() *mat.Dense
}

// rSquaredCols computes the coefficient of determination for every output column
func rSquaredCols(predicted, actual mat.Matrix) ([]float64, error) {
	pm, pn := predicted.Dims()
	am, an := actual.Dims()
	if pm != am {
		return nil, fmt.Errorf("predicted has %d rows and target has %d rows, %w", pm, am, ErrTargetLenMismatch)
	}
	if pn != an {
		return nil, fmt.Errorf("predicted has %d outputs and target has %d outputs, %w", pn, an, ErrTargetLenMismatch)
	}

	r2 := make([]float64, pn)
	for j := 0; j < pn; j++ {
		r2[j] = stat.RSquaredFrom(mat.Col(nil, j, predicted), mat.Col(nil, j, actual), nil)
	}
	return r2, nil
}
