package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmptyArray     = errors.New("array has no rows or no columns")
	ErrColMismatch    = errors.New("column size mismatch")
	ErrOffsetLen      = errors.New("offset length does not match number of columns")
	ErrZeroNormColumn = errors.New("column has zero euclidean norm")
)

// NewDenseFromArray copies a row ordered 2d slice into a new dense matrix. Every row must have
// the same number of columns.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)
	if m == 0 {
		return nil, ErrEmptyArray
	}

	n := len(x[0])
	for i, row := range x {
		if len(row) != n {
			return nil, fmt.Errorf("at row %d expected %d columns but got %d, %w", i, n, len(row), ErrColMismatch)
		}
	}
	if n == 0 {
		return nil, ErrEmptyArray
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// ToArray copies a matrix into a row ordered 2d slice
func ToArray(x mat.Matrix) [][]float64 {
	m, _ := x.Dims()
	out := make([][]float64, m)
	for i := 0; i < m; i++ {
		out[i] = mat.Row(nil, i, x)
	}
	return out
}

// ColMeans returns the mean of every column of x
func ColMeans(x mat.Matrix) []float64 {
	_, n := x.Dims()
	means := make([]float64, n)
	for j := 0; j < n; j++ {
		means[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	return means
}

// CenterCols returns a new matrix with offset subtracted from every row of x. x is left untouched.
func CenterCols(x mat.Matrix, offset []float64) (*mat.Dense, error) {
	m, n := x.Dims()
	if len(offset) != n {
		return nil, fmt.Errorf("got %d offsets for %d columns, %w", len(offset), n, ErrOffsetLen)
	}

	centered := mat.NewDense(m, n, nil)
	centered.Apply(func(i, j int, v float64) float64 {
		return v - offset[j]
	}, x)
	return centered, nil
}

// NormalizeCols scales every column of x in place to unit euclidean norm and returns the norms
// found before scaling.
func NormalizeCols(x *mat.Dense) ([]float64, error) {
	m, n := x.Dims()
	norms := make([]float64, n)
	col := make([]float64, m)
	for j := 0; j < n; j++ {
		mat.Col(col, j, x)
		norm := floats.Norm(col, 2)
		if norm == 0 {
			return nil, fmt.Errorf("column %d, %w", j, ErrZeroNormColumn)
		}
		floats.Scale(1/norm, col)
		x.SetCol(j, col)
		norms[j] = norm
	}
	return norms, nil
}
