package trie

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Registration-time errors. These abort startup.
	ErrAmbiguousRoute = errors.New("ambiguous route")
	ErrDuplicateRoute = errors.New("duplicate route")
	ErrInvalidMethod  = errors.New("invalid http method")

	// Request-time errors. Translated to client responses by the caller.
	ErrNotFound         = errors.New("route not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// MethodNotAllowedError reports a path that matched structurally but has no
// binding for the requested method. Allowed carries the methods that would
// have matched, for the Allow response header.
type MethodNotAllowedError struct {
	Method  string
	Path    string
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s not allowed for %s (allowed: %s)",
		e.Method, e.Path, strings.Join(e.Allowed, ", "))
}

func (e *MethodNotAllowedError) Unwrap() error {
	return ErrMethodNotAllowed
}
