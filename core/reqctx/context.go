package reqctx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/dmitrymomot/dispatch/core/provider"
)

// Context is the per-request execution context. It owns the raw request
// values, the matched path parameters, a snapshot of application state, and
// the memoized provider results for this request.
//
// A Context lives exactly as long as its request and is never shared across
// requests. It is safe for concurrent use by the goroutines evaluating one
// plan batch.
type Context struct {
	req    *http.Request
	params map[string]string // raw path parameter strings from the trie match
	state  map[string]any
	query  url.Values

	mu    sync.Mutex
	calls map[string]*call
}

// call tracks one memoized value. The channel latches completion so that
// concurrent attempts to resolve the same provider wait for the first one
// instead of executing again.
type call struct {
	done chan struct{}
	val  any
	err  error
}

// New creates a request execution context. params holds the raw path
// parameter strings extracted by the trie; state is the application state
// snapshot (read-only, shared).
func New(r *http.Request, params map[string]string, state map[string]any) *Context {
	return &Context{
		req:    r,
		params: params,
		state:  state,
		query:  r.URL.Query(),
		calls:  make(map[string]*call),
	}
}

// Request returns the underlying HTTP request.
func (c *Context) Request() *http.Request {
	return c.req
}

// PathParam returns the raw string captured for a named path parameter.
func (c *Context) PathParam(name string) (string, bool) {
	v, ok := c.params[name]
	return v, ok
}

// Resolved returns the cached value for a name after evaluation, whether it
// came from extraction or a provider.
func (c *Context) Resolved(name string) (any, bool) {
	c.mu.Lock()
	cl, ok := c.calls[name]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-cl.done:
	default:
		return nil, false
	}
	if cl.err != nil {
		return nil, false
	}
	return cl.val, true
}

// store records an already-computed value (extracted request values use
// this path).
func (c *Context) store(name string, val any) {
	cl := &call{done: make(chan struct{}), val: val}
	close(cl.done)
	c.mu.Lock()
	c.calls[name] = cl
	c.mu.Unlock()
}

// resolve invokes a provider at most once per request. The first caller
// executes; concurrent callers for the same name block on the latch and
// share the result. Failures are wrapped in *ProviderError and cached too,
// so a failing provider also runs only once.
func (c *Context) resolve(ctx context.Context, p provider.Provider) (any, error) {
	c.mu.Lock()
	if cl, ok := c.calls[p.Name]; ok {
		c.mu.Unlock()
		select {
		case <-cl.done:
			return cl.val, cl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	cl := &call{done: make(chan struct{})}
	c.calls[p.Name] = cl
	c.mu.Unlock()

	defer close(cl.done)

	deps := make(provider.Values, len(p.DependsOn))
	for _, dep := range p.DependsOn {
		// Plan ordering guarantees prerequisites completed in an earlier
		// batch; a miss here is a programming error in the planner.
		v, ok := c.Resolved(dep)
		if !ok {
			cl.err = &ProviderError{Provider: p.Name, Err: fmt.Errorf("dependency %q not resolved", dep)}
			return nil, cl.err
		}
		deps[dep] = v
	}

	val, err := p.Fn(ctx, deps)
	if err != nil {
		cl.err = &ProviderError{Provider: p.Name, Err: err}
		return nil, cl.err
	}
	cl.val = val
	return val, nil
}
