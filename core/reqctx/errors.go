package reqctx

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/dispatch/core/plan"
	"github.com/dmitrymomot/dispatch/core/template"
)

var (
	ErrMissingParameter  = errors.New("missing required parameter")
	ErrCoercion          = errors.New("parameter coercion failed")
	ErrProviderExecution = errors.New("provider execution failed")
)

// MissingParameterError reports a required request value that was absent.
type MissingParameterError struct {
	Param  string
	Source plan.Source
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required %s parameter %q", e.Source, e.Param)
}

func (e *MissingParameterError) Unwrap() error {
	return ErrMissingParameter
}

// CoercionError reports a raw request value that could not be converted to
// the parameter's declared type. It names the parameter and the expected
// type so the error-response translator can build a precise message.
type CoercionError struct {
	Param string
	Want  template.ParamType
	Raw   string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("parameter %q expects %s, got %q", e.Param, e.Want, e.Raw)
}

func (e *CoercionError) Unwrap() error {
	return ErrCoercion
}

// ProviderError wraps a failure inside a provider call, tagged with the
// provider's name.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %q failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{ErrProviderExecution, e.Err}
}
