// Package bootstrap orchestrates the lifecycle of applications built on xnio.
//
// An App owns a provider.Manager registered as its first component, so the
// configured provider is created on start and closed last on shutdown.
// Servers opened through Serve are components too and stop before the
// provider that backs them.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp("echo", &cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.Serve("echo-tcp", provider.KindTCPServer, openEcho)
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT/SIGTERM or context cancellation. RunTask runs a
// finite task with the same startup and shutdown sequence.
package bootstrap
