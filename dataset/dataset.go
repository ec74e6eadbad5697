package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrDatasetLenMismatch = errors.New("inputs have a different number of samples than outputs")
	ErrRaggedRows         = errors.New("samples do not all have the same number of variables")
)

// Dataset represents calibration data storing one input row and one output row per sample. Both
// must have the same number of samples.
type Dataset struct {
	X [][]float64
	Y [][]float64
}

// NewDataset returns a copy of the input and output samples after checking that every sample has
// the same number of variables.
func NewDataset(x, y [][]float64) (*Dataset, error) {
	if len(x) == 0 || len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf(
			"inputs have %d samples, but outputs have %d samples, %w",
			len(x), len(y), ErrDatasetLenMismatch,
		)
	}
	if err := checkWidth(x); err != nil {
		return nil, fmt.Errorf("inputs, %w", err)
	}
	if err := checkWidth(y); err != nil {
		return nil, fmt.Errorf("outputs, %w", err)
	}

	return &Dataset{
		X: copyRows(x),
		Y: copyRows(y),
	}, nil
}

func checkWidth(rows [][]float64) error {
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width || width == 0 {
			return fmt.Errorf("row %d has %d variables, expected %d, %w", i, len(row), width, ErrRaggedRows)
		}
	}
	return nil
}

func copyRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// Copy returns a deep copy of the dataset
func (d *Dataset) Copy() *Dataset {
	return &Dataset{
		X: copyRows(d.X),
		Y: copyRows(d.Y),
	}
}

// Samples returns the number of samples
func (d *Dataset) Samples() int {
	return len(d.X)
}

// XVariables returns the number of input variables per sample
func (d *Dataset) XVariables() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// YVariables returns the number of output variables per sample
func (d *Dataset) YVariables() int {
	if len(d.Y) == 0 {
		return 0
	}
	return len(d.Y[0])
}
