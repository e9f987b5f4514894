package reqctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/dispatch/core/plan"
	"github.com/dmitrymomot/dispatch/core/provider"
	"github.com/dmitrymomot/dispatch/core/template"
	"github.com/dmitrymomot/dispatch/pkg/async"
)

// Args is the fully assembled argument set handed to a handler, keyed by the
// declared parameter names.
type Args map[string]any

// Int returns the argument as an int, its zero value when absent or of a
// different type.
func (a Args) Int(name string) int {
	v, _ := a[name].(int)
	return v
}

// String returns the argument as a string.
func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

// Bool returns the argument as a bool.
func (a Args) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

// Evaluate runs an execution plan against a request context and assembles
// the handler's arguments.
//
// Batches execute in plan order. Within one batch, extract steps and sync
// providers run inline while async providers are launched together and
// awaited, so independent async branches overlap. Cancellation is checked
// between batches and propagated into provider calls through ctx.
//
// The final assembly reads only cached values; it never invokes anything
// that is not a step of the plan.
func Evaluate(ctx context.Context, p *plan.Plan, rc *Context) (Args, error) {
	for _, batch := range p.Batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Launch the async providers of this batch first so they overlap
		// with the inline work below.
		var futures []*async.Future[any]
		for _, step := range batch {
			if step.Kind == plan.StepProvide && step.Provider.Mode == provider.Async {
				prov := step.Provider
				futures = append(futures, async.Go(ctx, func(ctx context.Context) (any, error) {
					return rc.resolve(ctx, prov)
				}))
			}
		}

		for _, step := range batch {
			switch {
			case step.Kind == plan.StepExtract:
				if err := rc.extract(step.Param); err != nil {
					return nil, err
				}
			case step.Provider.Mode == provider.Sync:
				if _, err := rc.resolve(ctx, step.Provider); err != nil {
					return nil, err
				}
			}
		}

		for _, f := range futures {
			if _, err := f.Await(ctx); err != nil {
				return nil, err
			}
		}
	}

	args := make(Args, len(p.Args))
	for _, name := range p.Args {
		v, ok := rc.Resolved(name)
		if !ok {
			// Every declared argument corresponds to a plan step, so this
			// indicates a planner bug rather than bad input.
			return nil, fmt.Errorf("argument %q was not resolved by the plan", name)
		}
		args[name] = v
	}
	return args, nil
}

// extract reads one raw request value, applies the required/default policy,
// coerces it to the declared type, and caches the result.
func (rc *Context) extract(prm plan.Param) error {
	if prm.Source == plan.SourceState {
		v, ok := rc.state[prm.Name]
		if !ok {
			if prm.Required {
				return &MissingParameterError{Param: prm.Name, Source: prm.Source}
			}
			v = prm.Default
		}
		rc.store(prm.Name, v)
		return nil
	}

	raw, found := rc.rawValue(prm)
	if !found {
		if prm.Required {
			return &MissingParameterError{Param: prm.Name, Source: prm.Source}
		}
		if prm.HasDefault {
			rc.store(prm.Name, prm.Default)
		} else {
			rc.store(prm.Name, zeroValue(prm.Type))
		}
		return nil
	}

	val, err := prm.Type.Coerce(raw)
	if err != nil {
		return &CoercionError{Param: prm.Name, Want: prm.Type, Raw: raw}
	}
	rc.store(prm.Name, val)
	return nil
}

func (rc *Context) rawValue(prm plan.Param) (string, bool) {
	switch prm.Source {
	case plan.SourcePath:
		return rc.PathParam(prm.Name)
	case plan.SourceQuery:
		if vs, ok := rc.query[prm.Name]; ok && len(vs) > 0 {
			return vs[0], true
		}
	case plan.SourceHeader:
		if vs := rc.req.Header.Values(prm.Name); len(vs) > 0 {
			return vs[0], true
		}
	case plan.SourceCookie:
		if ck, err := rc.req.Cookie(prm.Name); err == nil {
			return ck.Value, true
		}
	}
	return "", false
}

func zeroValue(t template.ParamType) any {
	switch t {
	case template.TypeInt:
		return 0
	case template.TypeFloat:
		return 0.0
	case template.TypeBool:
		return false
	case template.TypeUUID:
		return uuid.Nil
	case template.TypeDate:
		return time.Time{}
	default:
		return ""
	}
}
