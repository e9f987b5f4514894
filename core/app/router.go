package app

import (
	"net/http"

	"github.com/dmitrymomot/dispatch/core/provider"
)

// Router groups handlers and controllers under a shared path prefix with its
// own provider table. Providers registered here shadow application-level
// providers of the same name for everything mounted below.
type Router struct {
	app         *App
	prefix      string
	providers   *provider.Table
	controllers []*Controller
	regs        []*registration
	middlewares []Middleware
}

// Provide registers a router-scope provider.
func (r *Router) Provide(p provider.Provider) error {
	if r.app.compiled {
		return ErrRegistrationClosed
	}
	return r.providers.Register(p)
}

// Controller creates a controller nested under this router. Controllers are
// the third scope level; their providers shadow the router's and the
// application's.
func (r *Router) Controller(prefix string) *Controller {
	c := &Controller{
		router:    r,
		prefix:    prefix,
		providers: provider.NewTable(provider.ScopeController),
	}
	r.controllers = append(r.controllers, c)
	return c
}

// Handle registers a handler under this router's prefix.
func (r *Router) Handle(method, pattern string, h HandlerFunc, opts ...RouteOption) error {
	if r.app.compiled {
		return ErrRegistrationClosed
	}
	reg, err := newRegistration(method, pattern, h, opts)
	if err != nil {
		return err
	}
	r.regs = append(r.regs, reg)
	return nil
}

// Get registers a GET handler under this router's prefix.
func (r *Router) Get(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodGet, pattern, h, opts...)
}

// Post registers a POST handler under this router's prefix.
func (r *Router) Post(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodPost, pattern, h, opts...)
}

// Put registers a PUT handler under this router's prefix.
func (r *Router) Put(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodPut, pattern, h, opts...)
}

// Patch registers a PATCH handler under this router's prefix.
func (r *Router) Patch(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodPatch, pattern, h, opts...)
}

// Delete registers a DELETE handler under this router's prefix.
func (r *Router) Delete(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodDelete, pattern, h, opts...)
}

// Head registers a HEAD handler under this router's prefix.
func (r *Router) Head(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodHead, pattern, h, opts...)
}

// Options registers an OPTIONS handler under this router's prefix.
func (r *Router) Options(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodOptions, pattern, h, opts...)
}

// Controller groups handlers under a router with a fourth, innermost shared
// scope level above individual handlers.
type Controller struct {
	router      *Router
	prefix      string
	providers   *provider.Table
	regs        []*registration
	middlewares []Middleware
}

// Provide registers a controller-scope provider.
func (c *Controller) Provide(p provider.Provider) error {
	if c.router.app.compiled {
		return ErrRegistrationClosed
	}
	return c.providers.Register(p)
}

// Handle registers a handler under this controller's prefix.
func (c *Controller) Handle(method, pattern string, h HandlerFunc, opts ...RouteOption) error {
	if c.router.app.compiled {
		return ErrRegistrationClosed
	}
	reg, err := newRegistration(method, pattern, h, opts)
	if err != nil {
		return err
	}
	c.regs = append(c.regs, reg)
	return nil
}

// Get registers a GET handler under this controller's prefix.
func (c *Controller) Get(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return c.Handle(http.MethodGet, pattern, h, opts...)
}

// Post registers a POST handler under this controller's prefix.
func (c *Controller) Post(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return c.Handle(http.MethodPost, pattern, h, opts...)
}

// Put registers a PUT handler under this controller's prefix.
func (c *Controller) Put(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return c.Handle(http.MethodPut, pattern, h, opts...)
}

// Patch registers a PATCH handler under this controller's prefix.
func (c *Controller) Patch(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return c.Handle(http.MethodPatch, pattern, h, opts...)
}

// Delete registers a DELETE handler under this controller's prefix.
func (c *Controller) Delete(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return c.Handle(http.MethodDelete, pattern, h, opts...)
}

// Head registers a HEAD handler under this controller's prefix.
func (c *Controller) Head(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return c.Handle(http.MethodHead, pattern, h, opts...)
}

// Options registers an OPTIONS handler under this controller's prefix.
func (c *Controller) Options(pattern string, h HandlerFunc, opts ...RouteOption) error {
	return c.Handle(http.MethodOptions, pattern, h, opts...)
}
