package template

import (
	"errors"
	"fmt"
)

// ErrMalformedTemplate is the root error for every template parsing failure.
// The specific errors below wrap it, so callers can match either the broad
// category or the exact cause with errors.Is.
var ErrMalformedTemplate = errors.New("malformed path template")

var (
	ErrEmptyTemplate     = fmt.Errorf("%w: template must begin with '/'", ErrMalformedTemplate)
	ErrEmptyParamName    = fmt.Errorf("%w: parameter name cannot be empty", ErrMalformedTemplate)
	ErrParamDelimiter    = fmt.Errorf("%w: unbalanced parameter braces", ErrMalformedTemplate)
	ErrUnknownParamType  = fmt.Errorf("%w: unknown parameter type", ErrMalformedTemplate)
	ErrDuplicateParam    = fmt.Errorf("%w: duplicate parameter name", ErrMalformedTemplate)
	ErrWildcardPosition  = fmt.Errorf("%w: wildcard must be the final segment", ErrMalformedTemplate)
	ErrInvalidConstraint = fmt.Errorf("%w: invalid constraint regexp", ErrMalformedTemplate)
)

// ErrCoerce reports a raw value that cannot be converted to its declared type.
var ErrCoerce = errors.New("cannot coerce value")
