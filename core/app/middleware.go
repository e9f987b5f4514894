package app

// Middleware wraps a handler with cross-cutting behavior. Middleware runs
// after dispatch, so it sees the fully evaluated argument set; scopes apply
// outermost-first (application, then router, then controller, then the
// handler's own).
type Middleware func(HandlerFunc) HandlerFunc

// Use adds application-level middleware, applied to every handler.
func (a *App) Use(mw ...Middleware) {
	a.middlewares = append(a.middlewares, mw...)
}

// Use adds middleware applied to every handler mounted under this router.
func (r *Router) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

// Use adds middleware applied to every handler of this controller.
func (c *Controller) Use(mw ...Middleware) {
	c.middlewares = append(c.middlewares, mw...)
}

// WithMiddleware adds handler-level middleware, the innermost wrapping.
func WithMiddleware(mw ...Middleware) RouteOption {
	return func(reg *registration) error {
		reg.middlewares = append(reg.middlewares, mw...)
		return nil
	}
}

// chain builds a single handler from a middleware stack and endpoint.
func chain(middlewares []Middleware, endpoint HandlerFunc) HandlerFunc {
	// Start with the endpoint
	handler := endpoint

	// Wrap in middleware in reverse order
	// so the first middleware runs first
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	return handler
}
