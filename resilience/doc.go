// Package resilience provides the fault-tolerance patterns providers use
// around sockets.
//
// This package includes:
//   - Retry: retries failed connects with exponential backoff
//   - Bulkhead: caps how many connections a server keeps open
//   - RateLimiter: paces accepts with a token bucket
//
// Example:
//
//	conn, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (net.Conn, error) {
//	    return dialer.DialContext(ctx, "tcp", addr)
//	})
package resilience
