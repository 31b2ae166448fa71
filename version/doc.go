// Package version reports the build version of xnio and of the providers
// built from it.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/unbreakablehf/xnio/version.Version=1.0.0"
package version
