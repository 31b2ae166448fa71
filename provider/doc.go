// Package provider locates the network I/O provider configured for the
// process and defines the capability surface every provider exposes.
//
// A provider is a named class registered with a Loader. The Locator reads
// the class name from the "xnio.provider" key (XNIO_PROVIDER in the
// environment), falls back to DefaultName, loads the class, checks that its
// declared type implements Provider and calls its exported Create function:
//
//	func init() {
//	    provider.Register(provider.Define[*Provider](Name,
//	        provider.WithEntryPoint(func() (provider.Provider, error) { return New() })))
//	}
//
//	p, err := provider.Create(ctx)
//	if errors.Is(err, xerrors.ErrProviderAcquisition) {
//	    // not found, wrong type, no entry point, or initialization failed
//	}
//
// Classes may also come from Go plugins: a name ending in ".so" is opened
// with PluginLoader, which reads the exported Provider variable for the
// declared type and Create for the entry point.
//
// # Capabilities
//
// Providers embed Unsupported and override the kinds they implement. Every
// other Create method fails with OPERATION_UNSUPPORTED naming the kind, so
// callers can try any kind. Providers that know their kinds up front implement
// CapabilityReporter; Supports(p, kind) queries it without a failed call.
//
// # Middleware
//
// Middleware wraps a Provider. Use Chain to compose multiple middlewares:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging(log),
//	    provider.WithMetrics(metrics),
//	    provider.WithTracing("my-service"),
//	)(p)
//
// # Sharing one instance
//
// Create never caches. Manager holds one provider for the application and
// plugs into component.Registry:
//
//	mgr := provider.NewManager(provider.NewLocator(), provider.WithLogging(log))
//	reg.Register(mgr)
//	p, _ := mgr.Get(ctx)
package provider
