package pls

import (
	"fmt"
	"os"

	"github.com/aouyang1/go-pls/linearmodel"
	"gopkg.in/yaml.v3"
)

// Options configures the number of latent components to extract and the prediction path used by
// the regressor
type Options struct {
	// Components is the number of latent components g, 1 <= g <= min(samples, inputs)
	Components int `json:"components" yaml:"components"`

	// Method selects direct or iterative prediction. Both give the same result when the
	// calibration scores are mutually orthogonal.
	Method linearmodel.Method `json:"method" yaml:"method"`
}

// NewDefaultOptions returns options extracting a single component and predicting directly
func NewDefaultOptions() *Options {
	return &Options{
		Components: 1,
		Method:     linearmodel.MethodDirect,
	}
}

// Validate checks the options, falling back to defaults when nil
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.Components < 1 {
		return nil, fmt.Errorf("got %d components, %w", o.Components, linearmodel.ErrInvalidComponents)
	}
	switch o.Method {
	case linearmodel.MethodDirect, linearmodel.MethodIterative:
	default:
		return nil, fmt.Errorf("%s, %w", o.Method, linearmodel.ErrUnknownMethod)
	}
	return o, nil
}

// LoadOptions reads yaml encoded options from path. Fields missing from the file keep their
// default values.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read options file, %w", err)
	}

	opt := NewDefaultOptions()
	if err := yaml.Unmarshal(data, opt); err != nil {
		return nil, fmt.Errorf("unable to parse options file %s, %w", path, err)
	}
	return opt.Validate()
}
