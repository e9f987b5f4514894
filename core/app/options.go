package app

import (
	"log/slog"

	"github.com/dmitrymomot/dispatch/core/plan"
	"github.com/dmitrymomot/dispatch/core/provider"
)

// Option configures an App during creation.
type Option func(*App)

// WithLogger sets the logger used for startup and dispatch logging.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithErrorHandler overrides the default error-to-response translation.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithRenderer overrides how handler return values are written.
func WithRenderer(r Renderer) Option {
	return func(a *App) {
		if r != nil {
			a.renderer = r
		}
	}
}

// WithState seeds application state values at construction.
func WithState(key string, val any) Option {
	return func(a *App) {
		a.state[key] = val
	}
}

// RouteOption configures a single handler registration.
type RouteOption func(*registration) error

// WithParams declares the values the handler requires; they drive plan
// construction at Compile time.
func WithParams(params ...plan.Param) RouteOption {
	return func(reg *registration) error {
		reg.params = append(reg.params, params...)
		return nil
	}
}

// WithProviders registers handler-scope providers, the innermost override
// level: they shadow controller, router, and application providers of the
// same name for this handler only.
func WithProviders(ps ...provider.Provider) RouteOption {
	return func(reg *registration) error {
		if reg.providers == nil {
			reg.providers = provider.NewTable(provider.ScopeHandler)
		}
		for _, p := range ps {
			if err := reg.providers.Register(p); err != nil {
				return err
			}
		}
		return nil
	}
}
