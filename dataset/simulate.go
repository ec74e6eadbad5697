package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrTooFewSamples  = errors.New("not enough samples for the requested fourier orders")
	ErrCoefDimensions = errors.New("coefficient matrix does not match the design matrix")
)

// NewRand returns a deterministic generator for the given seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GenerateFourierX returns an n x p design whose columns alternate the sine and cosine of
// increasing orders sampled over one full period. Every column has zero mean and the columns are
// mutually orthogonal with a sum of squares of n/2.
func GenerateFourierX(n, p int) (*mat.Dense, error) {
	orders := (p + 1) / 2
	if n <= 2*orders {
		return nil, fmt.Errorf("%d samples cannot hold %d orders, %w", n, orders, ErrTooFewSamples)
	}

	x := mat.NewDense(n, p, nil)
	for order := 1; order <= orders; order++ {
		omega := 2.0 * math.Pi * float64(order) / float64(n)
		for i := 0; i < n; i++ {
			rad := omega * float64(i)
			x.Set(i, 2*order-2, math.Sin(rad))
			if 2*order-1 < p {
				x.Set(i, 2*order-1, math.Cos(rad))
			}
		}
	}
	return x, nil
}

// GenerateUniformX returns an n x p design with values drawn uniformly from [-amp, amp)
func GenerateUniformX(n, p int, amp float64, rng *rand.Rand) *mat.Dense {
	data := make([]float64, n*p)
	for i := range data {
		data[i] = GenerateNoise(rng, amp)
	}
	return mat.NewDense(n, p, data)
}

// GenerateNoise returns a single value drawn uniformly from [-amp, amp)
func GenerateNoise(rng *rand.Rand, amp float64) float64 {
	return amp * (2*rng.Float64() - 1)
}

// GenerateLinearY returns x·coef + intercept with symmetric uniform noise of the given amplitude
// added to every value. intercept may be nil.
func GenerateLinearY(x, coef mat.Matrix, intercept []float64, noise float64, rng *rand.Rand) (*mat.Dense, error) {
	_, p := x.Dims()
	cp, m := coef.Dims()
	if cp != p {
		return nil, fmt.Errorf("design has %d columns but coefficients have %d rows, %w", p, cp, ErrCoefDimensions)
	}
	if intercept != nil && len(intercept) != m {
		return nil, fmt.Errorf("got %d intercepts for %d outputs, %w", len(intercept), m, ErrCoefDimensions)
	}

	y := new(mat.Dense)
	y.Mul(x, coef)
	rows, _ := y.Dims()
	for i := 0; i < rows; i++ {
		row := y.RawRowView(i)
		if intercept != nil {
			floats.Add(row, intercept)
		}
		if noise > 0 {
			for j := range row {
				row[j] += GenerateNoise(rng, noise)
			}
		}
	}
	return y, nil
}
