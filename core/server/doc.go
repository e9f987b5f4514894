// Package server provides a graceful HTTP server for hosting a compiled
// application core.
//
//	a := app.New()
//	// ... register routes and providers, then a.Compile()
//
//	var cfg server.Config
//	config.MustLoad(&cfg)
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := srv.Start(ctx, a); err != nil {
//		log.Fatal(err)
//	}
package server
