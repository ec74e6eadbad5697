package linearmodel

import (
	"fmt"
	"strings"

	mat_ "github.com/aouyang1/go-pls/mat"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DegenerateTolerance is the smallest accepted ratio between a component's score sum of squares
// and the largest one among the extracted components.
const DegenerateTolerance = 1e-12

// Method selects one of the two prediction paths of a fitted PLS-SB model
type Method int

const (
	// MethodDirect applies the combined coefficient matrix B in one step
	MethodDirect Method = iota
	// MethodIterative extracts each latent score in turn and deflates the input
	MethodIterative
)

func (m Method) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodIterative:
		return "iterative"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod converts a method name into a Method
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "direct":
		return MethodDirect, nil
	case "iterative":
		return MethodIterative, nil
	default:
		return MethodDirect, fmt.Errorf("%q, %w", s, ErrUnknownMethod)
	}
}

func (m Method) MarshalText() ([]byte, error) {
	switch m {
	case MethodDirect, MethodIterative:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("%d, %w", int(m), ErrUnknownMethod)
	}
}

func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// PLSSB is a partial least squares model whose latent components are all found at once from the
// eigendecomposition of XcᵗYc·YcᵗXc. It is immutable once fit and safe for concurrent predictions;
// every accessor returns a copy.
type PLSSB struct {
	samples int

	xOffset []float64 // column means of X
	yOffset []float64 // column means of Y

	eigenvalues []float64 // selected eigenvalues, descending

	w *mat.Dense // x weights, p x g
	t *mat.Dense // x scores, N x g
	q *mat.Dense // y loadings, m x g
	u *mat.Dense // y scores, N x g
	c []float64  // diagonal of the per component regression scale
	p *mat.Dense // x loadings, p x g
	b *mat.Dense // combined coefficients, p x m

	cq *mat.Dense // C·Qᵗ, g x m
}

// FitPLSSB extracts the requested number of latent components from the calibration data x (N
// samples by p variables) and y (N samples by m variables). Neither input is modified.
func FitPLSSB(x, y mat.Matrix, components int) (*PLSSB, error) {
	if x == nil {
		return nil, ErrNoTrainingMatrix
	}
	if y == nil {
		return nil, ErrNoTargetMatrix
	}

	n, p := x.Dims()
	yn, _ := y.Dims()
	if yn != n {
		return nil, fmt.Errorf("training data has %d rows and target has %d rows, %w", n, yn, ErrTargetLenMismatch)
	}
	maxRank := min(n, p)
	if components < 1 || components > maxRank {
		return nil, fmt.Errorf("requested %d components but must be within [1, %d], %w", components, maxRank, ErrInvalidComponents)
	}

	xOffset := mat_.ColMeans(x)
	xc, err := mat_.CenterCols(x, xOffset)
	if err != nil {
		return nil, err
	}
	yOffset := mat_.ColMeans(y)
	yc, err := mat_.CenterCols(y, yOffset)
	if err != nil {
		return nil, err
	}

	var s mat.Dense
	s.Mul(xc.T(), yc)

	var ss mat.SymDense
	ss.SymOuterK(1, &s)

	var eig mat.EigenSym
	if ok := eig.Factorize(&ss, true); !ok {
		return nil, ErrEigenFactorization
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// eigenvalues are ascending so walk backwards from the largest
	w := mat.NewDense(p, components, nil)
	eigenvalues := make([]float64, components)
	for j := 0; j < components; j++ {
		src := p - 1 - j
		w.SetCol(j, mat.Col(nil, src, &vectors))
		eigenvalues[j] = values[src]
	}

	t := new(mat.Dense)
	t.Mul(xc, w)

	q := new(mat.Dense)
	q.Mul(yc.T(), t)
	if _, err := mat_.NormalizeCols(q); err != nil {
		return nil, fmt.Errorf("unable to normalize y loadings, %w, %w", err, ErrDegenerateComponent)
	}

	u := new(mat.Dense)
	u.Mul(yc, q)

	tt := make([]float64, components)
	cols := make([][]float64, components)
	var maxTT float64
	for j := 0; j < components; j++ {
		cols[j] = mat.Col(nil, j, t)
		tt[j] = floats.Dot(cols[j], cols[j])
		maxTT = max(maxTT, tt[j])
	}

	c := make([]float64, components)
	uCol := make([]float64, n)
	for j := 0; j < components; j++ {
		if tt[j] <= DegenerateTolerance*maxTT {
			return nil, fmt.Errorf("component %d has score sum of squares %g, %w", j, tt[j], ErrDegenerateComponent)
		}
		mat.Col(uCol, j, u)
		c[j] = floats.Dot(cols[j], uCol) / tt[j]
	}

	var xtt mat.Dense
	xtt.Mul(xc.T(), t)
	pl := mat.NewDense(p, components, nil)
	pl.Apply(func(_, j int, v float64) float64 {
		return v / tt[j]
	}, &xtt)

	var ptw mat.Dense
	ptw.Mul(pl.T(), w)
	ptwInv, err := invertLoadingWeights(&ptw)
	if err != nil {
		return nil, err
	}

	cq := scaleRows(q.T(), c)

	b := new(mat.Dense)
	b.Product(w, ptwInv, cq)

	return &PLSSB{
		samples:     n,
		xOffset:     xOffset,
		yOffset:     yOffset,
		eigenvalues: eigenvalues,
		w:           w,
		t:           t,
		q:           q,
		u:           u,
		c:           c,
		p:           pl,
		b:           b,
		cq:          cq,
	}, nil
}

// scaleRows returns a new matrix with row i of a multiplied by scale[i]
func scaleRows(a mat.Matrix, scale []float64) *mat.Dense {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, _ int, v float64) float64 {
		return scale[i] * v
	}, a)
	return out
}

// Predict computes Y_offset + (z - X_offset)·B for every row of z
func (m *PLSSB) Predict(z mat.Matrix) (*mat.Dense, error) {
	zc, err := m.center(z)
	if err != nil {
		return nil, err
	}

	res := new(mat.Dense)
	res.Mul(zc, m.b)
	m.addYOffset(res)
	return res, nil
}

// PredictIterative produces the same output as Predict, but extracts each latent score in turn
// and removes the part of the input explained by that component before extracting the next.
func (m *PLSSB) PredictIterative(z mat.Matrix) (*mat.Dense, error) {
	zc, err := m.center(z)
	if err != nil {
		return nil, err
	}

	g := len(m.c)
	wCols := make([][]float64, g)
	pCols := make([][]float64, g)
	for j := 0; j < g; j++ {
		wCols[j] = mat.Col(nil, j, m.w)
		pCols[j] = mat.Col(nil, j, m.p)
	}

	rows, cols := zc.Dims()
	scores := mat.NewDense(rows, g, nil)
	residual := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(residual, i, zc)
		for j := 0; j < g; j++ {
			tj := floats.Dot(residual, wCols[j])
			floats.AddScaled(residual, -tj, pCols[j])
			scores.Set(i, j, tj)
		}
	}

	res := new(mat.Dense)
	res.Mul(scores, m.cq)
	m.addYOffset(res)
	return res, nil
}

// PredictWith dispatches to the prediction path selected by method
func (m *PLSSB) PredictWith(method Method, z mat.Matrix) (*mat.Dense, error) {
	switch method {
	case MethodDirect:
		return m.Predict(z)
	case MethodIterative:
		return m.PredictIterative(z)
	default:
		return nil, fmt.Errorf("%s, %w", method, ErrUnknownMethod)
	}
}

// PredictSample predicts the output of a single input sample with the direct method
func (m *PLSSB) PredictSample(z []float64) ([]float64, error) {
	return m.predictSample(MethodDirect, z)
}

// PredictSampleIterative predicts the output of a single input sample with the iterative method
func (m *PLSSB) PredictSampleIterative(z []float64) ([]float64, error) {
	return m.predictSample(MethodIterative, z)
}

func (m *PLSSB) predictSample(method Method, z []float64) ([]float64, error) {
	if m == nil {
		return nil, ErrUntrainedModel
	}
	if len(z) != len(m.xOffset) {
		return nil, fmt.Errorf("got %d features in sample, but expected %d, %w", len(z), len(m.xOffset), ErrFeatureLenMismatch)
	}
	res, err := m.PredictWith(method, mat.NewDense(1, len(z), z))
	if err != nil {
		return nil, err
	}
	return res.RawRowView(0), nil
}

func (m *PLSSB) center(z mat.Matrix) (*mat.Dense, error) {
	if m == nil {
		return nil, ErrUntrainedModel
	}
	if z == nil {
		return nil, ErrNoDesignMatrix
	}
	_, n := z.Dims()
	if n != len(m.xOffset) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(m.xOffset), ErrFeatureLenMismatch)
	}
	return mat_.CenterCols(z, m.xOffset)
}

func (m *PLSSB) addYOffset(res *mat.Dense) {
	rows, _ := res.Dims()
	for i := 0; i < rows; i++ {
		floats.Add(res.RawRowView(i), m.yOffset)
	}
}

// Intercept returns Y_offset - X_offset·B so that a prediction equals Intercept + z·B
func (m *PLSSB) Intercept() []float64 {
	xb := new(mat.Dense)
	xb.Mul(mat.NewDense(1, len(m.xOffset), m.XOffset()), m.b)

	intercept := make([]float64, len(m.yOffset))
	floats.SubTo(intercept, m.yOffset, xb.RawRowView(0))
	return intercept
}

// Coef returns the combined regression coefficients B
func (m *PLSSB) Coef() *mat.Dense {
	return m.B()
}

// Components returns the number of extracted latent components
func (m *PLSSB) Components() int {
	return len(m.c)
}

// MaxRank returns the largest component count the calibration data supported
func (m *PLSSB) MaxRank() int {
	return min(m.samples, len(m.xOffset))
}

// Samples returns the number of calibration samples
func (m *PLSSB) Samples() int {
	return m.samples
}

// XVariables returns the number of input variables
func (m *PLSSB) XVariables() int {
	return len(m.xOffset)
}

// YVariables returns the number of output variables
func (m *PLSSB) YVariables() int {
	return len(m.yOffset)
}

func (m *PLSSB) XOffset() []float64 {
	return copySlice(m.xOffset)
}

func (m *PLSSB) YOffset() []float64 {
	return copySlice(m.yOffset)
}

// Eigenvalues returns the eigenvalues belonging to each component in descending order
func (m *PLSSB) Eigenvalues() []float64 {
	return copySlice(m.eigenvalues)
}

// C returns the diagonal of the per component regression scale matrix
func (m *PLSSB) C() []float64 {
	return copySlice(m.c)
}

func (m *PLSSB) W() *mat.Dense { return copyDense(m.w) }
func (m *PLSSB) P() *mat.Dense { return copyDense(m.p) }
func (m *PLSSB) Q() *mat.Dense { return copyDense(m.q) }
func (m *PLSSB) B() *mat.Dense { return copyDense(m.b) }

// T returns the x scores of the calibration data. Models restored from weights return nil.
func (m *PLSSB) T() *mat.Dense { return copyDense(m.t) }

// U returns the y scores of the calibration data. Models restored from weights return nil.
func (m *PLSSB) U() *mat.Dense { return copyDense(m.u) }

func copySlice(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

func copyDense(d *mat.Dense) *mat.Dense {
	if d == nil {
		return nil
	}
	return mat.DenseCopyOf(d)
}

// PLSSBWeights holds everything needed to predict with a fitted PLSSB model
type PLSSBWeights struct {
	Samples     int         `json:"samples"`
	XOffset     []float64   `json:"x_offset"`
	YOffset     []float64   `json:"y_offset"`
	Eigenvalues []float64   `json:"eigenvalues"`
	W           [][]float64 `json:"w"`
	P           [][]float64 `json:"p"`
	Q           [][]float64 `json:"q"`
	C           []float64   `json:"c"`
	B           [][]float64 `json:"b"`
}

// Weights exports the prediction state of the model
func (m *PLSSB) Weights() PLSSBWeights {
	return PLSSBWeights{
		Samples:     m.samples,
		XOffset:     m.XOffset(),
		YOffset:     m.YOffset(),
		Eigenvalues: m.Eigenvalues(),
		W:           mat_.ToArray(m.w),
		P:           mat_.ToArray(m.p),
		Q:           mat_.ToArray(m.q),
		C:           m.C(),
		B:           mat_.ToArray(m.b),
	}
}

// NewPLSSBFromWeights restores a model from exported weights. The calibration scores T and U are
// not part of the weights and are unavailable on the restored model.
func NewPLSSBFromWeights(wt PLSSBWeights) (*PLSSB, error) {
	p, m, g := len(wt.XOffset), len(wt.YOffset), len(wt.C)
	if p == 0 || m == 0 || g == 0 {
		return nil, fmt.Errorf("got %d x variables, %d y variables and %d components, %w", p, m, g, ErrInvalidWeights)
	}
	if len(wt.Eigenvalues) != g {
		return nil, fmt.Errorf("got %d eigenvalues for %d components, %w", len(wt.Eigenvalues), g, ErrInvalidWeights)
	}
	if maxRank := min(wt.Samples, p); g > maxRank {
		return nil, fmt.Errorf("got %d components but %d samples and %d x variables allow at most %d, %w",
			g, wt.Samples, p, maxRank, ErrInvalidWeights)
	}

	w, err := denseWithShape("w", wt.W, p, g)
	if err != nil {
		return nil, err
	}
	pl, err := denseWithShape("p", wt.P, p, g)
	if err != nil {
		return nil, err
	}
	q, err := denseWithShape("q", wt.Q, m, g)
	if err != nil {
		return nil, err
	}
	b, err := denseWithShape("b", wt.B, p, m)
	if err != nil {
		return nil, err
	}

	c := copySlice(wt.C)
	return &PLSSB{
		samples:     wt.Samples,
		xOffset:     copySlice(wt.XOffset),
		yOffset:     copySlice(wt.YOffset),
		eigenvalues: copySlice(wt.Eigenvalues),
		w:           w,
		q:           q,
		c:           c,
		p:           pl,
		b:           b,
		cq:          scaleRows(q.T(), c),
	}, nil
}

// invertLoadingWeights inverts the g x g product PᵗW. A singular or ill conditioned product is
// reported as a ConditionError.
func invertLoadingWeights(ptw mat.Matrix) (*mat.Dense, error) {
	components, _ := ptw.Dims()
	inv := new(mat.Dense)
	if err := inv.Inverse(ptw); err != nil {
		return nil, wrapAsConditionError(fmt.Errorf("cannot invert loading and weight product, %w", err), components)
	}
	return inv, nil
}

func denseWithShape(name string, x [][]float64, r, c int) (*mat.Dense, error) {
	d, err := mat_.NewDenseFromArray(x)
	if err != nil {
		return nil, fmt.Errorf("%s: %w, %w", name, err, ErrInvalidWeights)
	}
	dr, dc := d.Dims()
	if dr != r || dc != c {
		return nil, fmt.Errorf("%s is %dx%d but expected %dx%d, %w", name, dr, dc, r, c, ErrInvalidWeights)
	}
	return d, nil
}

// PLSSBOptions represents input options to run the PLS-SB regression
type PLSSBOptions struct {
	// Components is the number of latent components to extract
	Components int
}

// Validate runs basic validation on PLS-SB options
func (o *PLSSBOptions) Validate() (*PLSSBOptions, error) {
	if o == nil {
		o = NewDefaultPLSSBOptions()
	}
	if o.Components < 1 {
		return nil, fmt.Errorf("got %d components, %w", o.Components, ErrInvalidComponents)
	}
	return o, nil
}

// NewDefaultPLSSBOptions returns a default set of PLS-SB options
func NewDefaultPLSSBOptions() *PLSSBOptions {
	return &PLSSBOptions{
		Components: 1,
	}
}

// PLSSBRegression fits a PLSSB model and exposes it through the Model interface
type PLSSBRegression struct {
	opt   *PLSSBOptions
	model *PLSSB
}

// NewPLSSBRegression initializes a PLS-SB regression ready for fitting
func NewPLSSBRegression(opt *PLSSBOptions) (*PLSSBRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &PLSSBRegression{
		opt: opt,
	}, nil
}

// NewPLSSBRegressionFromModel wraps an already fitted model
func NewPLSSBRegressionFromModel(model *PLSSB) (*PLSSBRegression, error) {
	if model == nil {
		return nil, ErrUntrainedModel
	}
	return &PLSSBRegression{
		opt:   &PLSSBOptions{Components: model.Components()},
		model: model,
	}, nil
}

// Fit the model according to the given training data
func (o *PLSSBRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	model, err := FitPLSSB(x, y, o.opt.Components)
	if err != nil {
		return err
	}
	o.model = model
	return nil
}

// Predict using the combined coefficient matrix
func (o *PLSSBRegression) Predict(x mat.Matrix) (*mat.Dense, error) {
	return o.model.Predict(x)
}

// PredictIterative predicts by sequential score extraction and deflation
func (o *PLSSBRegression) PredictIterative(x mat.Matrix) (*mat.Dense, error) {
	return o.model.PredictIterative(x)
}

// Score computes the coefficient of determination of the prediction for every output
func (o *PLSSBRegression) Score(x, y mat.Matrix) ([]float64, error) {
	if y == nil {
		return nil, ErrNoTargetMatrix
	}
	res, err := o.Predict(x)
	if err != nil {
		return nil, err
	}
	return rSquaredCols(res, y)
}

// Intercept returns the per output intercept of the affine form of the model
func (o *PLSSBRegression) Intercept() []float64 {
	if o.model == nil {
		return nil
	}
	return o.model.Intercept()
}

// Coef returns the combined regression coefficients, one row per input and one column per output
func (o *PLSSBRegression) Coef() *mat.Dense {
	if o.model == nil {
		return nil
	}
	return o.model.Coef()
}

// Fitted returns the underlying fitted model, nil before Fit
func (o *PLSSBRegression) Fitted() *PLSSB {
	return o.model
}
