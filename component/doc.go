// Package component defines lifecycle-managed infrastructure: anything an
// application starts, stops and health-checks alongside its provider.
//
// # Interfaces
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: one-line self description
//
// Registry starts components in registration order and stops them in
// reverse. Lazy builds a value on first use and refuses to rebuild it once
// closed.
package component
