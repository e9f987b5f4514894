package plan

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyParamName  = errors.New("parameter name cannot be empty")
	ErrParamRedeclared = errors.New("parameter declared more than once")

	// ErrCyclicDependency is returned when the provider graph contains a
	// cycle. The wrapped CyclicDependencyError names it.
	ErrCyclicDependency = errors.New("cyclic dependency")
)

// CyclicDependencyError names the providers forming a dependency cycle,
// in traversal order with the starting provider repeated at the end.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Cycle, " -> "))
}

func (e *CyclicDependencyError) Unwrap() error {
	return ErrCyclicDependency
}
