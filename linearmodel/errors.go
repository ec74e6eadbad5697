package linearmodel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidParameter is wrapped by every error caused by caller supplied shapes, counts or
	// options. These are detected before any numeric work begins.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNumeric is wrapped by every error caused by degenerate calibration data. Fitting with
	// fewer components or different data is required to recover.
	ErrNumeric = errors.New("numerically degenerate model")
)

var (
	ErrNoOptions           = fmt.Errorf("no initialized model options, %w", ErrInvalidParameter)
	ErrNoTrainingMatrix    = fmt.Errorf("no training matrix, %w", ErrInvalidParameter)
	ErrNoTargetMatrix      = fmt.Errorf("no target matrix, %w", ErrInvalidParameter)
	ErrNoDesignMatrix      = fmt.Errorf("no design matrix for inference, %w", ErrInvalidParameter)
	ErrTargetLenMismatch   = fmt.Errorf("target row count does not match training rows, %w", ErrInvalidParameter)
	ErrFeatureLenMismatch  = fmt.Errorf("number of features does not match the model, %w", ErrInvalidParameter)
	ErrInvalidComponents   = fmt.Errorf("number of components is impossible for the training data, %w", ErrInvalidParameter)
	ErrInsufficientSamples = fmt.Errorf("fewer samples than coefficients to fit, %w", ErrInvalidParameter)
	ErrInvalidWeights      = fmt.Errorf("model weights have inconsistent shapes, %w", ErrInvalidParameter)
	ErrUntrainedModel      = fmt.Errorf("model has not been fit yet, %w", ErrInvalidParameter)
	ErrUnknownMethod       = fmt.Errorf("unknown prediction method, %w", ErrInvalidParameter)

	ErrEigenFactorization  = fmt.Errorf("symmetric eigendecomposition did not converge, %w", ErrNumeric)
	ErrDegenerateComponent = fmt.Errorf("latent component has no variance, %w", ErrNumeric)
)

var (
	// ErrNearSingular matches a ConditionError raised for an ill conditioned but factorizable matrix
	ErrNearSingular = &ConditionError{isExactlySingular: false}
	// ErrExactlySingular matches a ConditionError raised for a matrix gonum could not factorize
	ErrExactlySingular = &ConditionError{isExactlySingular: true}

	matConditionErrorInf = mat.Condition(math.Inf(1)) // matrix exactly singular
)

// ConditionError reports a failed matrix inversion during fitting. The gonum mat.Condition error
// is kept in the chain so errors.As against mat.Condition still works.
type ConditionError struct {
	err               error
	isExactlySingular bool
	Components        int
}

func (e ConditionError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e ConditionError) Is(err error) bool {
	if err == ErrNumeric {
		return true
	}
	if condErr, ok := err.(*ConditionError); ok {
		return e.isExactlySingular == condErr.isExactlySingular
	}
	return false
}

func (e ConditionError) Unwrap() error {
	return e.err
}

func wrapAsConditionError(err error, components int) *ConditionError {
	return &ConditionError{
		err:               err,
		isExactlySingular: errors.Is(err, matConditionErrorInf),
		Components:        components,
	}
}
