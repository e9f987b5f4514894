package provider

import (
	"context"
	"fmt"
)

// Mode declares how a provider executes. Sync providers run inline on the
// request goroutine; Async providers may block and are awaited, so
// independent async providers in the same plan batch run concurrently.
type Mode uint8

const (
	Sync Mode = iota
	Async
)

func (m Mode) String() string {
	if m == Async {
		return "async"
	}
	return "sync"
}

// Values carries resolved dependency values into a provider call,
// keyed by dependency name.
type Values map[string]any

// Func is the callable unit of a provider. It receives the request context
// and the already-resolved values of its declared dependencies.
type Func func(ctx context.Context, deps Values) (any, error)

// Provider is a named unit of per-request computation. Providers are
// registered at one of the four scope levels and may depend on other
// providers visible from the same scope chain. Results are cached per
// request: a provider executes at most once per request regardless of how
// many consumers reference it.
type Provider struct {
	Name      string
	Fn        Func
	DependsOn []string
	Mode      Mode
}

// Value wraps a constant into a sync provider with no dependencies.
func Value(name string, v any) Provider {
	return Provider{
		Name: name,
		Fn: func(context.Context, Values) (any, error) {
			return v, nil
		},
	}
}

func (p Provider) validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Fn == nil {
		return fmt.Errorf("%w: provider %q", ErrNilFunc, p.Name)
	}
	for _, dep := range p.DependsOn {
		if dep == p.Name {
			return fmt.Errorf("%w: provider %q depends on itself", ErrSelfDependency, p.Name)
		}
	}
	return nil
}
