// Package app is the application core that ties routing and dependency
// injection together.
//
// An App is built once at startup: routes are registered on the app itself
// or grouped under routers and controllers, providers are registered at any
// of the four scope levels (application, router, controller, handler), and
// Compile validates everything — template syntax, route ambiguity, unknown
// and cyclic dependencies — before a single request is served.
//
//	a := app.New()
//	a.Provide(provider.Provider{Name: "db", Fn: openDB})
//
//	api := a.Router("/api")
//	users := api.Controller("/users")
//	users.Get("/{id:int}", showUser,
//		app.WithParams(plan.Path("id", template.TypeInt), plan.Provided("db")),
//	)
//
//	if err := a.Compile(); err != nil {
//		log.Fatal(err) // registration errors fail fast, before serving
//	}
//	http.ListenAndServe(":8080", a)
//
// At request time the precompiled plan is all that runs: one trie lookup,
// one pass over the plan's batches, then the handler call. Handlers receive
// a reqctx.Args map holding every declared parameter, extracted and coerced
// or computed by providers with per-request memoization.
//
// App implements http.Handler, but Dispatch exposes the raw contract —
// binding plus resolved arguments — for callers that bring their own
// invocation or serialization layer.
package app
