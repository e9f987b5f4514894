// Package provider holds the named dependency providers and the four-level
// scope chain they are resolved through.
//
// Providers are registered into per-level Tables (application, router,
// controller, handler). At route registration each handler gets a Chain: a
// flattened snapshot of the tables on its nesting path, innermost first.
// Resolving a name walks handler -> controller -> router -> application and
// returns the first hit, which is how an inner registration shadows an outer
// one (a controller-level "db" overrides the application-level "db" for
// every handler under that controller).
//
// Tables are mutated only during setup; a Chain is read-only and safe to
// share across request goroutines.
package provider
