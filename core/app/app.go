package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/dispatch/core/plan"
	"github.com/dmitrymomot/dispatch/core/provider"
	"github.com/dmitrymomot/dispatch/core/reqctx"
	"github.com/dmitrymomot/dispatch/core/template"
	"github.com/dmitrymomot/dispatch/core/trie"
)

// HandlerFunc is the handler callable. It receives the request context and
// the fully assembled argument set declared at registration.
type HandlerFunc func(ctx context.Context, args reqctx.Args) (any, error)

// ErrorHandler translates dispatch and handler failures into responses.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// App is the application core: it owns the routing trie, the
// application-level provider table and state, and the precompiled execution
// plans. Construct it once at startup, register everything, then call
// Compile before serving. A compiled App is read-only and safe for
// concurrent use.
type App struct {
	providers    *provider.Table
	state        map[string]any
	logger       *slog.Logger
	errorHandler ErrorHandler
	renderer     Renderer
	middlewares  []Middleware

	routers []*Router
	regs    []*registration

	tr       *trie.Trie[*Binding]
	compiled bool
}

// Binding is the immutable registration record of one handler: its callable
// (with middleware applied), declared parameters, and precomputed plan.
type Binding struct {
	Method   string
	Pattern  string
	Template template.Template
	Handler  HandlerFunc
	Params   []plan.Param
	Plan     *plan.Plan
}

// registration is the mutable pre-Compile form of a Binding.
type registration struct {
	method      string
	pattern     string // path relative to its owner
	handler     HandlerFunc
	params      []plan.Param
	providers   *provider.Table // handler scope, nil when unused
	middlewares []Middleware
}

// New creates an application core.
func New(opts ...Option) *App {
	a := &App{
		providers:    provider.NewTable(provider.ScopeApplication),
		state:        make(map[string]any),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		errorHandler: defaultErrorHandler,
		renderer:     defaultRenderer,
		tr:           trie.New[*Binding](),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Provide registers an application-scope provider.
func (a *App) Provide(p provider.Provider) error {
	if a.compiled {
		return ErrRegistrationClosed
	}
	return a.providers.Register(p)
}

// SetState stores an application state value, readable by handlers through
// state-sourced parameters.
func (a *App) SetState(key string, val any) {
	a.state[key] = val
}

// Router creates a sub-router mounted under prefix. Routers carry their own
// provider table that shadows the application's.
func (a *App) Router(prefix string) *Router {
	r := &Router{
		app:       a,
		prefix:    prefix,
		providers: provider.NewTable(provider.ScopeRouter),
	}
	a.routers = append(a.routers, r)
	return r
}

// Handle registers a handler directly on the application root.
func (a *App) Handle(method, pattern string, h HandlerFunc, opts ...RouteOption) error {
	if a.compiled {
		return ErrRegistrationClosed
	}
	reg, err := newRegistration(method, pattern, h, opts)
	if err != nil {
		return err
	}
	a.regs = append(a.regs, reg)
	return nil
}

// Get registers a GET handler on the application root.
func (a *App) Get(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return a.Handle(http.MethodGet, pattern, h, opts...)
}

// Post registers a POST handler on the application root.
func (a *App) Post(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return a.Handle(http.MethodPost, pattern, h, opts...)
}

// Put registers a PUT handler on the application root.
func (a *App) Put(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return a.Handle(http.MethodPut, pattern, h, opts...)
}

// Patch registers a PATCH handler on the application root.
func (a *App) Patch(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return a.Handle(http.MethodPatch, pattern, h, opts...)
}

// Delete registers a DELETE handler on the application root.
func (a *App) Delete(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return a.Handle(http.MethodDelete, pattern, h, opts...)
}

// Head registers a HEAD handler on the application root.
func (a *App) Head(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return a.Handle(http.MethodHead, pattern, h, opts...)
}

// Options registers an OPTIONS handler on the application root.
func (a *App) Options(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return a.Handle(http.MethodOptions, pattern, h, opts...)
}

// Compile parses every route template, computes every handler's scope chain
// and execution plan, and builds the routing trie. Every registration-time
// failure (malformed template, ambiguous or duplicate route, unknown or
// cyclic dependency) surfaces here, before the application serves anything.
//
// Compile must be called exactly once, after all registration.
func (a *App) Compile() error {
	if a.compiled {
		return ErrAlreadyCompiled
	}

	for _, reg := range a.regs {
		if err := a.bind(reg, []string{reg.pattern}, reg.providers, nil, nil, a.middlewares); err != nil {
			return err
		}
	}

	for _, r := range a.routers {
		routerMW := slices.Concat(a.middlewares, r.middlewares)
		for _, reg := range r.regs {
			if err := a.bind(reg, []string{r.prefix, reg.pattern}, reg.providers, nil, r.providers, routerMW); err != nil {
				return err
			}
		}
		for _, c := range r.controllers {
			controllerMW := slices.Concat(routerMW, c.middlewares)
			for _, reg := range c.regs {
				if err := a.bind(reg, []string{r.prefix, c.prefix, reg.pattern}, reg.providers, c.providers, r.providers, controllerMW); err != nil {
					return err
				}
			}
		}
	}

	a.compiled = true
	a.logger.Debug("application compiled", "routes", len(a.tr.Routes()))
	return nil
}

// bind turns one registration into a Binding and inserts it into the trie.
func (a *App) bind(reg *registration, parts []string, handlerTbl, controllerTbl, routerTbl *provider.Table, mws []Middleware) error {
	pattern := joinPaths(parts)

	fail := func(err error) error {
		return fmt.Errorf("route %s %s: %w", reg.method, pattern, err)
	}

	tmpl, err := template.Parse(pattern)
	if err != nil {
		return fail(err)
	}

	if err := validatePathParams(reg.params, tmpl); err != nil {
		return fail(err)
	}

	scopes := provider.NewChain(handlerTbl, controllerTbl, routerTbl, a.providers)

	pl, err := plan.Build(reg.params, scopes)
	if err != nil {
		return fail(err)
	}

	b := &Binding{
		Method:   reg.method,
		Pattern:  pattern,
		Template: tmpl,
		Handler:  chain(slices.Concat(mws, reg.middlewares), reg.handler),
		Params:   reg.params,
		Plan:     pl,
	}

	if err := a.tr.Insert(tmpl, reg.method, b); err != nil {
		return fail(err)
	}
	return nil
}

// validatePathParams checks every declared path parameter against the route
// template: the name must exist and the declared type must agree, otherwise
// request-time extraction could never succeed.
func validatePathParams(params []plan.Param, tmpl template.Template) error {
	for _, prm := range params {
		if prm.Source != plan.SourcePath {
			continue
		}
		declared, ok := tmpl.ParamType(prm.Name)
		if !ok {
			return fmt.Errorf("%w: %q is not in template %q", ErrPathParamMismatch, prm.Name, tmpl.Raw)
		}
		if declared != prm.Type {
			return fmt.Errorf("%w: %q is %s in template %q, declared as %s",
				ErrPathParamMismatch, prm.Name, declared, tmpl.Raw, prm.Type)
		}
	}
	return nil
}

// Dispatch resolves a request to its binding and fully evaluated argument
// set. This is the outbound contract of the core: the caller invokes the
// handler (or uses ServeHTTP, which does both).
func (a *App) Dispatch(ctx context.Context, r *http.Request) (*Binding, reqctx.Args, error) {
	if !a.compiled {
		return nil, nil, ErrNotCompiled
	}

	m, err := a.tr.Lookup(r.Method, r.URL.Path)
	if err != nil {
		return nil, nil, err
	}

	rc := reqctx.New(r, m.Params, a.state)
	args, err := reqctx.Evaluate(ctx, m.Binding.Plan, rc)
	if err != nil {
		return m.Binding, nil, err
	}
	return m.Binding, args, nil
}

// Routes returns every compiled (method, pattern) pair.
func (a *App) Routes() []trie.Route {
	return a.tr.Routes()
}

func newRegistration(method, pattern string, h HandlerFunc, opts []RouteOption) (*registration, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNilHandler, method, pattern)
	}
	reg := &registration{
		method:  strings.ToUpper(method),
		pattern: pattern,
		handler: h,
	}
	for _, opt := range opts {
		if err := opt(reg); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// joinPaths joins path fragments into a normalized absolute pattern:
// single slashes between fragments, no trailing slash except for the root.
func joinPaths(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(p)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}
