package app

import (
	"errors"
	"fmt"
)

var (
	ErrNotCompiled        = errors.New("application is not compiled")
	ErrAlreadyCompiled    = errors.New("application is already compiled")
	ErrRegistrationClosed = errors.New("registration after compile")
	ErrNilHandler         = errors.New("handler cannot be nil")
	ErrPathParamMismatch  = errors.New("declared path parameter does not match route template")
)

// PanicError gives error handlers access to a recovered panic's value and
// the stack captured at the panic point.
type PanicError interface {
	error
	Value() any
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Value() any {
	return e.value
}

func (e *panicError) Stack() []byte {
	return e.stack
}
